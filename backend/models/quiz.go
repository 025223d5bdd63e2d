package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Question struct {
	gorm.Model
	Category           string                      `gorm:"index;not null" json:"category"`
	Difficulty         string                      `gorm:"not null;default:medium" json:"difficulty"` // easy, medium, hard
	TextEn             string                      `json:"text_en"`
	TextRu             string                      `json:"text_ru"`
	AnswersEn          datatypes.JSONSlice[string] `json:"answers_en"`
	AnswersRu          datatypes.JSONSlice[string] `json:"answers_ru"`
	CorrectAnswerIndex int                         `json:"correct_answer_index"`
	ExplanationEn      string                      `json:"explanation_en"`
	ExplanationRu      string                      `json:"explanation_ru"`
	AuthorID           uint                        `json:"author_id"`
}

// QuizSettings is a singleton row, always stored with ID 1.
type QuizSettings struct {
	ID               uint      `gorm:"primaryKey" json:"-"`
	QuestionsPerTest int       `gorm:"not null;default:10" json:"questions_per_test" validate:"min=5,max=100"`
	TimePerQuestion  int       `gorm:"not null;default:30" json:"time_per_question" validate:"min=10,max=300"`
	UpdatedAt        time.Time `json:"updated_at"`
}

const SettingsID = 1

// AttemptCounter counts test generations per identity and UTC day.
// Exactly one of UserID or IPAddress is set.
type AttemptCounter struct {
	ID          uint    `gorm:"primaryKey"`
	IdentityKey string  `gorm:"uniqueIndex:idx_attempt_identity_day;not null"`
	Day         string  `gorm:"uniqueIndex:idx_attempt_identity_day;size:10;not null"` // YYYY-MM-DD, UTC
	UserID      *uint   `gorm:"index"`
	IPAddress   *string `gorm:"size:64"`
	Count       int     `gorm:"not null;default:0"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type QuizResult struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	UserID         *uint     `gorm:"index" json:"user_id"`
	ProfileID      *uint     `json:"profile_id,omitempty"`
	DisplayName    string    `json:"display_name"`
	Category       string    `gorm:"index;not null" json:"category"`
	Language       string    `gorm:"size:8" json:"language"`
	Score          int       `gorm:"not null" json:"score"`
	TotalQuestions int       `gorm:"not null" json:"total_questions"`
	TimeTaken      int       `gorm:"not null" json:"time_taken"` // seconds
	CreatedAt      time.Time `gorm:"index" json:"created_at"`
}
