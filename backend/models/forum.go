package models

import "gorm.io/gorm"

const (
	ReportPending  = "pending"
	ReportResolved = "resolved"
)

type ForumThread struct {
	gorm.Model
	AuthorID   uint        `gorm:"index;not null" json:"author_id"`
	AuthorName string      `json:"author_name"`
	Title      string      `gorm:"not null" json:"title"`
	Body       string      `gorm:"type:text" json:"body"`
	Pinned     bool        `json:"pinned"`
	Locked     bool        `json:"locked"`
	Posts      []ForumPost `gorm:"foreignKey:ThreadID" json:"posts,omitempty"`
}

type ForumPost struct {
	gorm.Model
	ThreadID   uint   `gorm:"index;not null" json:"thread_id"`
	AuthorID   uint   `gorm:"not null" json:"author_id"`
	AuthorName string `json:"author_name"`
	Body       string `gorm:"type:text;not null" json:"body"`
}

type ForumReport struct {
	gorm.Model
	PostID     uint   `gorm:"index;not null" json:"post_id"`
	ReportedBy uint   `json:"reported_by"`
	Reason     string `json:"reason"`
	Status     string `gorm:"index;default:pending" json:"status"`
}
