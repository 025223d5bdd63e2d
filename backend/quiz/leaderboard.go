package quiz

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"csshub/backend/models"
)

const (
	DefaultLeaderboardLimit = 10
	MaxLeaderboardLimit     = 100
)

type RankedEntry struct {
	Rank           int       `json:"rank"`
	UserID         *uint     `json:"user_id,omitempty"`
	DisplayName    string    `json:"display_name"`
	Category       string    `json:"category"`
	Score          int       `json:"score"`
	TotalQuestions int       `json:"total_questions"`
	Percentage     int       `json:"percentage"`
	TimeTaken      int       `json:"time_taken"`
	CreatedAt      time.Time `json:"created_at"`
}

// Ranker builds the public leaderboard: best entry per player and category.
type Ranker struct {
	store ResultStore
}

func NewRanker(store ResultStore) *Ranker {
	return &Ranker{store: store}
}

// Rank returns at most limit entries for category, or for every category when
// category is "all" or empty. limit is clamped to 1..100, default 10.
func (r *Ranker) Rank(ctx context.Context, category string, limit int) ([]RankedEntry, error) {
	if category == "" {
		category = AllCategories
	}
	if err := checkCategory(category); err != nil {
		return nil, err
	}
	limit = clampLimit(limit)

	filter := ResultFilter{Order: OrderLeaderboard}
	if category != AllCategories {
		filter.Category = category
	}
	results, err := r.store.FindResults(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("load results: %w", err)
	}

	SortResults(results)

	entries := make([]RankedEntry, 0, min(limit, len(results)))
	seen := make(map[string]struct{}, len(results))
	for _, res := range results {
		key := dedupKey(res) + "|" + res.Category
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		entries = append(entries, RankedEntry{
			Rank:           len(entries) + 1,
			UserID:         res.UserID,
			DisplayName:    res.DisplayName,
			Category:       res.Category,
			Score:          res.Score,
			TotalQuestions: res.TotalQuestions,
			Percentage:     Percentage(res.Score, res.TotalQuestions),
			TimeTaken:      res.TimeTaken,
			CreatedAt:      res.CreatedAt,
		})
		if len(entries) == limit {
			break
		}
	}
	return entries, nil
}

// SortResults orders by score DESC, time taken ASC, then most recent first.
func SortResults(results []models.QuizResult) {
	sort.SliceStable(results, func(i, j int) bool {
		return resultBefore(results[i], results[j])
	})
}

func resultBefore(a, b models.QuizResult) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	if a.TimeTaken != b.TimeTaken {
		return a.TimeTaken < b.TimeTaken
	}
	return a.CreatedAt.After(b.CreatedAt)
}

// dedupKey identifies the player behind a result: user id, linked profile,
// normalized name, or a key unique to the row for nameless guests.
func dedupKey(r models.QuizResult) string {
	if r.UserID != nil {
		return "user:" + strconv.FormatUint(uint64(*r.UserID), 10)
	}
	if r.ProfileID != nil {
		return "profile:" + strconv.FormatUint(uint64(*r.ProfileID), 10)
	}
	name := strings.ToLower(strings.TrimSpace(r.DisplayName))
	if name != "" && name != strings.ToLower(GuestName) {
		return "name:" + name
	}
	if r.ID != 0 {
		return "guest:" + strconv.FormatUint(uint64(r.ID), 10)
	}
	return "guest:" + uuid.NewString()
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLeaderboardLimit
	}
	return min(limit, MaxLeaderboardLimit)
}

// Percentage is round(score / total * 100); 0 when total is 0.
func Percentage(score, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(score) / float64(total) * 100))
}
