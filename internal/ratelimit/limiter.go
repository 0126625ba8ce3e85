// Package ratelimit implements a sliding-window attempt limiter over a
// pluggable store.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/exitdebt/exitdebt_backend/internal/core/ports/providers"
)

const (
	// DefaultLimit is the number of bureau pulls allowed per window.
	DefaultLimit = 3
	// DefaultWindow is the rolling window length.
	DefaultWindow = 24 * time.Hour
)

// AttemptStore keeps timestamped attempts per key. Implementations must make
// TryAdd atomic per key.
type AttemptStore interface {
	// Prune drops attempts at or before cutoff and returns the survivors, oldest first.
	Prune(ctx context.Context, key string, cutoff time.Time) ([]time.Time, error)
	// Add appends an attempt.
	Add(ctx context.Context, key string, at time.Time, ttl time.Duration) error
	// TryAdd prunes like Prune and then adds at only if fewer than limit
	// attempts survive. It reports whether at was added and the resulting count.
	TryAdd(ctx context.Context, key string, at, cutoff time.Time, limit int, ttl time.Duration) (bool, int, error)
	// Remove drops the attempt recorded at exactly at, if present.
	Remove(ctx context.Context, key string, at time.Time) error
	// Sweep prunes every key and deletes the empty ones. It returns the number of keys deleted.
	Sweep(ctx context.Context, cutoff time.Time) (int, error)
}

// Limiter caps attempts per key within a rolling window.
type Limiter struct {
	store  AttemptStore
	limit  int
	window time.Duration
	now    func() time.Time
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithLimit sets the maximum attempts per window.
func WithLimit(limit int) Option {
	return func(l *Limiter) {
		l.limit = limit
	}
}

// WithWindow sets the window length.
func WithWindow(window time.Duration) Option {
	return func(l *Limiter) {
		l.window = window
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) {
		l.now = now
	}
}

// New creates a limiter over store with the default 3 attempts per 24 hours.
func New(store AttemptStore, options ...Option) *Limiter {
	l := &Limiter{
		store:  store,
		limit:  DefaultLimit,
		window: DefaultWindow,
		now:    time.Now,
	}
	for _, option := range options {
		option(l)
	}
	return l
}

var _ providers.AttemptLimiter = (*Limiter)(nil)

// Limit returns the configured attempts per window.
func (l *Limiter) Limit() int {
	return l.limit
}

func (l *Limiter) cutoff(now time.Time) time.Time {
	return now.Add(-l.window)
}

// IsAllowed prunes expired attempts and reports whether another one fits.
// Callers that go on to Record should use Acquire instead to avoid racing.
func (l *Limiter) IsAllowed(ctx context.Context, key string) (bool, error) {
	attempts, err := l.store.Prune(ctx, key, l.cutoff(l.now()))
	if err != nil {
		return false, fmt.Errorf("failed to prune attempts for %s: %w", key, err)
	}
	return len(attempts) < l.limit, nil
}

// Record appends an attempt at the current time.
func (l *Limiter) Record(ctx context.Context, key string) error {
	if err := l.store.Add(ctx, key, l.now(), l.window); err != nil {
		return fmt.Errorf("failed to record attempt for %s: %w", key, err)
	}
	return nil
}

// Remaining returns how many attempts are left in the current window.
func (l *Limiter) Remaining(ctx context.Context, key string) (int, error) {
	attempts, err := l.store.Prune(ctx, key, l.cutoff(l.now()))
	if err != nil {
		return 0, fmt.Errorf("failed to prune attempts for %s: %w", key, err)
	}
	return max(0, l.limit-len(attempts)), nil
}

// Acquire checks and records in one atomic step, so two concurrent callers
// can never both take the last slot.
func (l *Limiter) Acquire(ctx context.Context, key string) (providers.AttemptDecision, error) {
	now := l.now()
	added, count, err := l.store.TryAdd(ctx, key, now, l.cutoff(now), l.limit, l.window)
	if err != nil {
		return providers.AttemptDecision{}, fmt.Errorf("failed to acquire attempt for %s: %w", key, err)
	}
	decision := providers.AttemptDecision{
		Allowed:   added,
		Remaining: max(0, l.limit-count),
	}
	if added {
		decision.At = now
	}
	return decision, nil
}

// Release gives back an attempt taken by Acquire.
func (l *Limiter) Release(ctx context.Context, key string, at time.Time) error {
	if at.IsZero() {
		return nil
	}
	if err := l.store.Remove(ctx, key, at); err != nil {
		return fmt.Errorf("failed to release attempt for %s: %w", key, err)
	}
	return nil
}

// GC prunes every key and drops empty ones.
func (l *Limiter) GC(ctx context.Context) (int, error) {
	return l.store.Sweep(ctx, l.cutoff(l.now()))
}

// Key builds the store key for an action performed by an identifier.
func Key(action, identifier string) string {
	return action + ":" + identifier
}
