package quiz

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"csshub/backend/models"
)

var t0 = time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

func uintPtr(v uint) *uint {
	return &v
}

func result(userID *uint, name, category string, score, timeTaken int, at time.Time) models.QuizResult {
	return models.QuizResult{
		UserID:         userID,
		DisplayName:    name,
		Category:       category,
		Score:          score,
		TotalQuestions: 10,
		TimeTaken:      timeTaken,
		CreatedAt:      at,
	}
}

func rankerWith(results ...models.QuizResult) *Ranker {
	store := newFakeStore()
	for i := range results {
		r := results[i]
		_ = store.CreateResult(context.Background(), &r)
	}
	return NewRanker(store)
}

func TestRankTieBreaks(t *testing.T) {
	r := rankerWith(
		result(nil, "slow", "grid", 8, 120, t0),
		result(nil, "fast", "grid", 8, 60, t0),
		result(nil, "older", "grid", 9, 90, t0),
		result(nil, "newer", "grid", 9, 90, t0.Add(time.Hour)),
	)

	entries, err := r.Rank(context.Background(), "grid", 10)
	require.NoError(t, err)

	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.DisplayName
		assert.Equal(t, i+1, e.Rank)
	}
	assert.Equal(t, []string{"newer", "older", "fast", "slow"}, names)
}

func TestRankKeepsBestEntryPerPlayer(t *testing.T) {
	user := uintPtr(3)
	r := rankerWith(
		result(user, "ada", "grid", 10, 100, t0),
		result(user, "ada", "grid", 8, 50, t0.Add(time.Hour)),
		result(user, "ada", "grid", 10, 80, t0.Add(2*time.Hour)),
		result(nil, "bob", "grid", 9, 30, t0),
	)

	entries, err := r.Rank(context.Background(), "grid", 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "ada", entries[0].DisplayName)
	assert.Equal(t, 10, entries[0].Score)
	assert.Equal(t, 80, entries[0].TimeTaken)
	assert.Equal(t, 100, entries[0].Percentage)
	assert.Equal(t, "bob", entries[1].DisplayName)
	assert.Equal(t, 2, entries[1].Rank)
}

func TestRankDedupIsPerCategory(t *testing.T) {
	user := uintPtr(3)
	r := rankerWith(
		result(user, "ada", "grid", 10, 100, t0),
		result(user, "ada", "flexbox", 7, 100, t0),
	)

	entries, err := r.Rank(context.Background(), AllCategories, 10)
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	entries, err = r.Rank(context.Background(), "flexbox", 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 7, entries[0].Score)
}

func TestRankGuestIdentity(t *testing.T) {
	r := rankerWith(
		result(nil, "Kim", "grid", 5, 10, t0),
		result(nil, " kim ", "grid", 6, 10, t0),
		result(nil, GuestName, "grid", 4, 10, t0),
		result(nil, GuestName, "grid", 3, 10, t0),
		result(nil, "", "grid", 2, 10, t0),
	)

	entries, err := r.Rank(context.Background(), "grid", 10)
	require.NoError(t, err)

	require.Len(t, entries, 4, "same name collapses, nameless guests stay separate")
	assert.Equal(t, 6, entries[0].Score)
}

func TestRankProfileLinkedResults(t *testing.T) {
	legacy := result(nil, "ada (old)", "grid", 9, 10, t0)
	legacy.ProfileID = uintPtr(3)
	other := result(nil, "ada", "grid", 7, 10, t0)
	other.ProfileID = uintPtr(3)

	entries, err := rankerWith(legacy, other).Rank(context.Background(), "grid", 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 9, entries[0].Score)
}

func TestRankLimit(t *testing.T) {
	var results []models.QuizResult
	for i := 0; i < 120; i++ {
		results = append(results, result(uintPtr(uint(i+1)), "p", "grid", i%10, i, t0))
	}
	r := rankerWith(results...)
	ctx := context.Background()

	entries, err := r.Rank(ctx, "grid", 0)
	require.NoError(t, err)
	assert.Len(t, entries, DefaultLeaderboardLimit)

	entries, err = r.Rank(ctx, "grid", 500)
	require.NoError(t, err)
	assert.Len(t, entries, MaxLeaderboardLimit)

	entries, err = r.Rank(ctx, "grid", 3)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestRankRejectsUnknownCategory(t *testing.T) {
	_, err := rankerWith().Rank(context.Background(), "tables", 10)
	assert.ErrorIs(t, err, ErrInvalidCategory)
}

func TestPercentage(t *testing.T) {
	assert.Equal(t, 67, Percentage(2, 3))
	assert.Equal(t, 33, Percentage(1, 3))
	assert.Equal(t, 0, Percentage(0, 0))
	assert.Equal(t, 100, Percentage(5, 5))
}
