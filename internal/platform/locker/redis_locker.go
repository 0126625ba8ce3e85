package locker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bsm/redislock"
	"github.com/exitdebt/exitdebt_backend/internal/apperrors"
	"github.com/exitdebt/exitdebt_backend/internal/core/ports/providers"
)

const (
	defaultLockTTL = 30 * time.Second
	retryBackoff   = 50 * time.Millisecond
)

// RedisLocker holds keys across processes with redislock.
type RedisLocker struct {
	client *redislock.Client
	prefix string
	ttl    time.Duration
	logger *slog.Logger
}

// NewRedisLocker creates a RedisLocker. Keys are stored as "<prefix>:<key>".
func NewRedisLocker(client *redislock.Client, prefix string, logger *slog.Logger) *RedisLocker {
	if prefix == "" {
		prefix = "lock"
	}
	return &RedisLocker{client: client, prefix: prefix, ttl: defaultLockTTL, logger: logger}
}

var _ providers.Locker = (*RedisLocker)(nil)

// Lock retries until the key is obtained or ctx is done.
func (r *RedisLocker) Lock(ctx context.Context, key string) (func(), error) {
	lockKey := fmt.Sprintf("%s:%s", r.prefix, key)
	lock, err := r.client.Obtain(ctx, lockKey, r.ttl, &redislock.Options{
		RetryStrategy: redislock.LinearBackoff(retryBackoff),
	})
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, fmt.Errorf("%w: could not obtain lock %s", apperrors.ErrConflict, lockKey)
	}
	if err != nil {
		return nil, fmt.Errorf("error obtaining lock %s: %w", lockKey, err)
	}
	return func() {
		// Release with a fresh context so a cancelled request still frees the key.
		if releaseErr := lock.Release(context.Background()); releaseErr != nil && !errors.Is(releaseErr, redislock.ErrLockNotHeld) {
			r.logger.Warn("failed to release redis lock", "key", lockKey, "error", releaseErr)
		}
	}, nil
}
