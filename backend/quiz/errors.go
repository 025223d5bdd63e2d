package quiz

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrRateLimited       = errors.New("daily test limit exceeded")
	ErrNoContent         = errors.New("no questions available for this category and language")
	ErrQuestionsNotFound = errors.New("some questions not found")
	ErrInvalidCategory   = errors.New("invalid category")
	ErrInvalidLanguage   = errors.New("invalid language")
	ErrInvalidSubmission = errors.New("invalid submission")
)

// RateLimitError carries the quota that was exhausted. It matches ErrRateLimited.
type RateLimitError struct {
	Limit   int
	ResetAt time.Time
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s: limit %d, resets at %s", ErrRateLimited, e.Limit, e.ResetAt.Format(time.RFC3339))
}

func (e *RateLimitError) Is(target error) bool {
	return target == ErrRateLimited
}
