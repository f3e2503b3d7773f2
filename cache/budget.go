package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"trade-signals/models"
	"trade-signals/observability"
	"trade-signals/repository"
)

const dateLayout = "2006-01-02"

// Budget enforces a cooldown between commentary calls and a per-day call cap.
// Calendar days are evaluated in the configured location.
type Budget struct {
	cooldown time.Duration
	maxCalls int
	loc      *time.Location
	store    repository.Store
	now      func() time.Time

	mu    sync.Mutex
	state models.CallBudget
}

// NewBudget creates a Budget. A nil location means UTC.
func NewBudget(cooldown time.Duration, maxCalls int, loc *time.Location, store repository.Store) *Budget {
	if loc == nil {
		loc = time.UTC
	}
	return &Budget{
		cooldown: cooldown,
		maxCalls: maxCalls,
		loc:      loc,
		store:    store,
		now:      time.Now,
	}
}

// WithClock replaces the time source (useful for testing)
func (b *Budget) WithClock(now func() time.Time) *Budget {
	b.now = now
	return b
}

// Acquire reserves one call. It returns ErrRateLimited during the cooldown and
// ErrBudgetExhausted once the day's calls are used up. A granted call is written
// through to the store; a failed write is logged and the call stays granted.
func (b *Budget) Acquire(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	if !b.state.LastCallAt.IsZero() && now.Sub(b.state.LastCallAt) < b.cooldown {
		return models.ErrRateLimited
	}

	b.rollover(now)
	if b.state.CallsToday >= b.maxCalls {
		return models.ErrBudgetExhausted
	}

	b.state.CallsToday++
	b.state.LastCallAt = now
	b.state.LastCallDate = now.In(b.loc).Format(dateLayout)

	observability.GetMetrics().SetBudgetCallsToday(b.state.CallsToday)
	b.persist(ctx)
	return nil
}

// Release returns a call granted by Acquire, used when the upstream throttled it
func (b *Budget) Release(ctx context.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state.CallsToday > 0 {
		b.state.CallsToday--
	}
	observability.GetMetrics().SetBudgetCallsToday(b.state.CallsToday)
	b.persist(ctx)
}

// Snapshot returns a copy of the current state with the day rollover applied
func (b *Budget) Snapshot() models.CallBudget {
	b.mu.Lock()
	defer b.mu.Unlock()

	state := b.state
	if state.LastCallDate != b.now().In(b.loc).Format(dateLayout) {
		state.CallsToday = 0
	}
	return state
}

// Remaining returns how many calls are left today
func (b *Budget) Remaining() int {
	left := b.maxCalls - b.Snapshot().CallsToday
	if left < 0 {
		return 0
	}
	return left
}

// Load restores the persisted state, resetting the count when it belongs to an earlier day
func (b *Budget) Load(ctx context.Context) error {
	if b.store == nil {
		return nil
	}
	saved, err := b.store.LoadBudget(ctx)
	if err != nil {
		return fmt.Errorf("load call budget: %w", err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if saved != nil {
		b.state = *saved
	}
	b.rollover(b.now())

	observability.GetMetrics().SetBudgetCallsToday(b.state.CallsToday)
	return nil
}

// rollover zeroes the count on the first use of a new calendar day. Caller must hold b.mu.
func (b *Budget) rollover(now time.Time) {
	today := now.In(b.loc).Format(dateLayout)
	if b.state.LastCallDate != today {
		b.state.CallsToday = 0
		b.state.LastCallDate = today
	}
}

// persist writes the state through to the store. Caller must hold b.mu.
func (b *Budget) persist(ctx context.Context) {
	if b.store == nil {
		return
	}
	if err := b.store.SaveBudget(context.WithoutCancel(ctx), b.state); err != nil {
		observability.Warn("failed to persist call budget", "error", err)
	}
}
