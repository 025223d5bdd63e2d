package quiz

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"csshub/backend/models"
)

func TestLimiterTiers(t *testing.T) {
	l := NewLimiter(newFakeStore(), DefaultTierLimits(), nil)

	assert.Equal(t, 3, l.LimitFor(Anonymous("10.0.0.1")))
	assert.Equal(t, 5, l.LimitFor(Authenticated(1, models.TierFree)))
	assert.Equal(t, 5, l.LimitFor(Authenticated(1, "gold")))
	assert.Equal(t, Unlimited, l.LimitFor(Authenticated(1, models.TierPro)))
	assert.Equal(t, Unlimited, l.LimitFor(Authenticated(1, models.TierPremium)))
}

func TestLimiterRemainingDecreasesUntilBlocked(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock(time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC))
	l := NewLimiter(newFakeStore(), DefaultTierLimits(), clock.Now)
	id := Authenticated(7, models.TierFree)

	for want := 5; want > 0; want-- {
		status, err := l.CheckLimit(ctx, id)
		require.NoError(t, err)
		assert.True(t, status.Allowed)
		assert.Equal(t, want, status.Remaining)
		assert.Equal(t, 5, status.Limit)
		require.NoError(t, l.Increment(ctx, id))
	}

	status, err := l.CheckLimit(ctx, id)
	require.NoError(t, err)
	assert.False(t, status.Allowed)
	assert.Equal(t, 0, status.Remaining)
	assert.Equal(t, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), status.ResetAt)
}

func TestLimiterWindowIsUTCDay(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock(time.Date(2026, 3, 14, 23, 59, 0, 0, time.UTC))
	l := NewLimiter(newFakeStore(), DefaultTierLimits(), clock.Now)
	id := Anonymous("203.0.113.9")

	for i := 0; i < 3; i++ {
		require.NoError(t, l.Increment(ctx, id))
	}
	status, err := l.CheckLimit(ctx, id)
	require.NoError(t, err)
	assert.False(t, status.Allowed)

	clock.Advance(2 * time.Minute)
	status, err = l.CheckLimit(ctx, id)
	require.NoError(t, err)
	assert.True(t, status.Allowed)
	assert.Equal(t, 3, status.Remaining)
}

func TestLimiterAnonymousKeyedByIP(t *testing.T) {
	ctx := context.Background()
	l := NewLimiter(newFakeStore(), DefaultTierLimits(), nil)

	require.NoError(t, l.Increment(ctx, Anonymous("::ffff:198.51.100.4")))

	status, err := l.CheckLimit(ctx, Anonymous("198.51.100.4"))
	require.NoError(t, err)
	assert.Equal(t, 2, status.Remaining)

	status, err = l.CheckLimit(ctx, Anonymous("198.51.100.5"))
	require.NoError(t, err)
	assert.Equal(t, 3, status.Remaining)
}

func TestLimiterUnlimitedTierBypassesCounter(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	l := NewLimiter(store, DefaultTierLimits(), nil)
	id := Authenticated(3, models.TierPremium)

	for i := 0; i < 20; i++ {
		require.NoError(t, l.Increment(ctx, id))
	}
	status, err := l.CheckLimit(ctx, id)
	require.NoError(t, err)
	assert.True(t, status.Allowed)
	assert.Equal(t, Unlimited, status.Limit)
	assert.Equal(t, Unlimited, status.Remaining)
	assert.Zero(t, store.incrementCalls)
	assert.Empty(t, store.counters)
}

func TestNormalizeIP(t *testing.T) {
	tests := map[string]string{
		"":                     "unknown",
		"  ":                   "unknown",
		"192.0.2.1":            "192.0.2.1",
		"192.0.2.1:8080":       "192.0.2.1",
		"::ffff:192.0.2.1":     "192.0.2.1",
		"[2001:db8::1]:443":    "2001:db8::1",
		"2001:DB8:0:0:0:0:0:1": "2001:db8::1",
		"192.0.2.7, 10.0.0.1":  "192.0.2.7",
		"not-an-ip":            "not-an-ip",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeIP(in), "input %q", in)
	}
}

func TestIdentityKey(t *testing.T) {
	assert.Equal(t, "user:42", Authenticated(42, models.TierFree).Key())
	assert.Equal(t, "ip:unknown", Anonymous("").Key())
	assert.Equal(t, "ip:192.0.2.1", Anonymous("192.0.2.1").Key())

	id, ok := Anonymous("192.0.2.1").UserID()
	assert.False(t, ok)
	assert.Zero(t, id)
}
