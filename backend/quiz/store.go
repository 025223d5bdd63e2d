package quiz

import (
	"context"

	"csshub/backend/models"
)

// QuestionFilter selects the candidate pool for a test.
// An empty Category matches every category; Language requires a non-empty
// question text in that language.
type QuestionFilter struct {
	Category string
	Language string
}

type ResultOrder int

const (
	// OrderLeaderboard is score DESC, time_taken ASC, created_at DESC.
	OrderLeaderboard ResultOrder = iota
	// OrderRecent is created_at DESC.
	OrderRecent
)

// ResultFilter selects persisted results. Zero values mean "no filter";
// Limit <= 0 means unbounded.
type ResultFilter struct {
	Category string
	UserID   *uint
	Order    ResultOrder
	Limit    int
}

type QuestionStore interface {
	FindQuestionIDs(ctx context.Context, filter QuestionFilter) ([]uint, error)
	// FindQuestionsByIDs returns the questions that exist, in no particular order.
	FindQuestionsByIDs(ctx context.Context, ids []uint) ([]models.Question, error)
	// FindSettings returns nil when the settings row does not exist yet.
	FindSettings(ctx context.Context) (*models.QuizSettings, error)
}

type ResultStore interface {
	CreateResult(ctx context.Context, result *models.QuizResult) error
	FindResults(ctx context.Context, filter ResultFilter) ([]models.QuizResult, error)
}

type CounterStore interface {
	FindOrCreateAttemptCounter(ctx context.Context, identity Identity, day string) (*models.AttemptCounter, error)
	IncrementCounter(ctx context.Context, counter *models.AttemptCounter) error
}

type ProfileStore interface {
	// FindUser returns nil when the user does not exist.
	FindUser(ctx context.Context, id uint) (*models.User, error)
}

// Store is everything the engine reads and writes.
type Store interface {
	QuestionStore
	ResultStore
	CounterStore
	ProfileStore
}
