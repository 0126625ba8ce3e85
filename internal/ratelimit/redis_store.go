package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const defaultRedisPrefix = "exitdebt:attempts"

// tryAddScript prunes, counts and conditionally adds in one round trip.
// KEYS[1]=key ARGV: cutoff(us) at(us) member limit ttl(ms)
var tryAddScript = redis.NewScript(`
redis.call("ZREMRANGEBYSCORE", KEYS[1], "-inf", ARGV[1])
local count = redis.call("ZCARD", KEYS[1])
if count >= tonumber(ARGV[4]) then
  return {0, count}
end
redis.call("ZADD", KEYS[1], ARGV[2], ARGV[3])
redis.call("PEXPIRE", KEYS[1], ARGV[5])
return {1, count + 1}
`)

// removeOneScript drops a single member scored exactly at ARGV[1], leaving
// other attempts taken in the same microsecond.
var removeOneScript = redis.NewScript(`
local members = redis.call("ZRANGEBYSCORE", KEYS[1], ARGV[1], ARGV[1], "LIMIT", 0, 1)
if #members == 0 then
  return 0
end
return redis.call("ZREM", KEYS[1], members[1])
`)

// RedisStore keeps attempts in a sorted set per key, scored by Unix microseconds,
// so every API replica shares the same limit.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisStore creates a RedisStore. An empty prefix uses the default.
func NewRedisStore(client redis.UniversalClient, prefix string) *RedisStore {
	trimmed := strings.TrimSuffix(strings.TrimSpace(prefix), ":")
	if trimmed == "" {
		trimmed = defaultRedisPrefix
	}
	return &RedisStore{client: client, prefix: trimmed}
}

var _ AttemptStore = (*RedisStore)(nil)

func (s *RedisStore) key(key string) string {
	return s.prefix + ":" + key
}

func score(t time.Time) string {
	return strconv.FormatInt(t.UnixMicro(), 10)
}

func member(at time.Time) string {
	return score(at) + "-" + uuid.NewString()
}

func (s *RedisStore) Prune(ctx context.Context, key string, cutoff time.Time) ([]time.Time, error) {
	k := s.key(key)
	var rangeCmd *redis.ZSliceCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZRemRangeByScore(ctx, k, "-inf", score(cutoff))
		rangeCmd = pipe.ZRangeWithScores(ctx, k, 0, -1)
		return nil
	})
	if err != nil {
		return nil, err
	}
	entries := rangeCmd.Val()
	out := make([]time.Time, 0, len(entries))
	for _, z := range entries {
		out = append(out, time.UnixMicro(int64(z.Score)))
	}
	return out, nil
}

func (s *RedisStore) Add(ctx context.Context, key string, at time.Time, ttl time.Duration) error {
	k := s.key(key)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZAdd(ctx, k, redis.Z{Score: float64(at.UnixMicro()), Member: member(at)})
		pipe.PExpire(ctx, k, ttl)
		return nil
	})
	return err
}

func (s *RedisStore) TryAdd(ctx context.Context, key string, at, cutoff time.Time, limit int, ttl time.Duration) (bool, int, error) {
	raw, err := tryAddScript.Run(ctx, s.client, []string{s.key(key)},
		score(cutoff), score(at), member(at), limit, ttl.Milliseconds()).Result()
	if err != nil {
		return false, 0, err
	}
	values, ok := raw.([]interface{})
	if !ok || len(values) != 2 {
		return false, 0, fmt.Errorf("unexpected redis limiter response shape: %T", raw)
	}
	added, ok := values[0].(int64)
	if !ok {
		return false, 0, fmt.Errorf("unexpected redis limiter flag type: %T", values[0])
	}
	count, ok := values[1].(int64)
	if !ok {
		return false, 0, fmt.Errorf("unexpected redis limiter count type: %T", values[1])
	}
	return added == 1, int(count), nil
}

func (s *RedisStore) Remove(ctx context.Context, key string, at time.Time) error {
	return removeOneScript.Run(ctx, s.client, []string{s.key(key)}, score(at)).Err()
}

func (s *RedisStore) Sweep(ctx context.Context, cutoff time.Time) (int, error) {
	removed := 0
	iter := s.client.Scan(ctx, 0, s.prefix+":*", 100).Iterator()
	for iter.Next(ctx) {
		k := iter.Val()
		if err := s.client.ZRemRangeByScore(ctx, k, "-inf", score(cutoff)).Err(); err != nil {
			return removed, err
		}
		n, err := s.client.ZCard(ctx, k).Result()
		if err != nil {
			return removed, err
		}
		if n == 0 {
			if err := s.client.Del(ctx, k).Err(); err != nil {
				return removed, err
			}
			removed++
		}
	}
	return removed, iter.Err()
}
