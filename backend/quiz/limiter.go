package quiz

import (
	"context"
	"fmt"
	"time"

	"csshub/backend/models"
)

// Unlimited is reported as Limit and Remaining for tiers without a quota.
const Unlimited = -1

// TierLimits is the daily number of generated tests per identity.
type TierLimits struct {
	Anonymous int
	Free      int
}

func DefaultTierLimits() TierLimits {
	return TierLimits{Anonymous: 3, Free: 5}
}

type LimitStatus struct {
	Allowed   bool      `json:"allowed"`
	Remaining int       `json:"remaining"`
	Limit     int       `json:"limit"`
	ResetAt   time.Time `json:"reset_at"`
}

// Limiter is a fixed-window daily quota. The window is the UTC calendar day:
// counters are keyed by identity and date, so nothing has to be reset.
type Limiter struct {
	store  CounterStore
	limits TierLimits
	now    func() time.Time
}

func NewLimiter(store CounterStore, limits TierLimits, now func() time.Time) *Limiter {
	if now == nil {
		now = time.Now
	}
	return &Limiter{store: store, limits: limits, now: now}
}

// LimitFor returns the daily limit for id, or Unlimited.
func (l *Limiter) LimitFor(id Identity) int {
	if !id.IsAuthenticated() {
		return l.limits.Anonymous
	}
	switch id.Tier() {
	case models.TierPro, models.TierPremium:
		return Unlimited
	default:
		return l.limits.Free
	}
}

func (l *Limiter) CheckLimit(ctx context.Context, id Identity) (LimitStatus, error) {
	now := l.now().UTC()
	status := LimitStatus{ResetAt: NextReset(now)}

	limit := l.LimitFor(id)
	if limit == Unlimited {
		status.Allowed = true
		status.Remaining = Unlimited
		status.Limit = Unlimited
		return status, nil
	}

	counter, err := l.store.FindOrCreateAttemptCounter(ctx, id, Day(now))
	if err != nil {
		return LimitStatus{}, fmt.Errorf("load attempt counter: %w", err)
	}

	status.Limit = limit
	status.Remaining = limit - counter.Count
	if status.Remaining < 0 {
		status.Remaining = 0
	}
	status.Allowed = counter.Count < limit
	return status, nil
}

// Increment records one generated test. Unlimited tiers are not counted.
func (l *Limiter) Increment(ctx context.Context, id Identity) error {
	if l.LimitFor(id) == Unlimited {
		return nil
	}

	counter, err := l.store.FindOrCreateAttemptCounter(ctx, id, Day(l.now().UTC()))
	if err != nil {
		return fmt.Errorf("load attempt counter: %w", err)
	}
	if err := l.store.IncrementCounter(ctx, counter); err != nil {
		return fmt.Errorf("increment attempt counter: %w", err)
	}
	return nil
}

// Day formats the UTC calendar date used as the counter window.
func Day(t time.Time) string {
	return t.UTC().Format(time.DateOnly)
}

// NextReset is the next UTC midnight after t.
func NextReset(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
}
