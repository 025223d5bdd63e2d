package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Subscription tiers. Pro and premium have no daily quiz limit.
const (
	TierFree    = "free"
	TierPro     = "pro"
	TierPremium = "premium"
)

type User struct {
	gorm.Model
	Username     string `gorm:"unique;not null" json:"username"`
	Email        string `gorm:"unique;not null" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`
	DisplayName  string `json:"display_name"`
	Role         string `gorm:"default:user" json:"role"`
	Tier         string `gorm:"default:free" json:"tier"`
}

// PublicName is the name shown on the leaderboard for this user.
func (u User) PublicName() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	if u.Username != "" {
		return u.Username
	}
	return u.Email
}

type LoginHistory struct {
	gorm.Model
	UserID    uint
	LoginTime time.Time
}
