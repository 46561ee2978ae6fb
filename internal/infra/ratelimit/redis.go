package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"roboterms/internal/domain"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "roboterms:ratelimit:"

// Redis shares fixed windows across instances through INCR and PEXPIRE.
type Redis struct {
	client *redis.Client
	now    func() time.Time
}

var allowScript = redis.NewScript(`
local hits = redis.call("INCR", KEYS[1])
if hits == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return {hits, redis.call("PTTL", KEYS[1])}
`)

func NewRedis(addr, password string, db int) (*Redis, error) {
	if addr == "" {
		return nil, errors.New("redis addr is required")
	}
	return NewRedisWithClient(redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	}), nil), nil
}

func NewRedisWithClient(client *redis.Client, now func() time.Time) *Redis {
	if now == nil {
		now = time.Now
	}
	return &Redis{client: client, now: now}
}

func (r *Redis) Allow(ctx context.Context, key string, limit int, period time.Duration) (domain.RateLimitDecision, error) {
	if limit <= 0 {
		return domain.RateLimitDecision{Allowed: true, Limit: limit, Remaining: limit}, nil
	}
	periodMillis := period.Milliseconds()
	if periodMillis <= 0 {
		periodMillis = 1000
	}
	values, err := allowScript.Run(ctx, r.client, []string{keyPrefix + key}, periodMillis).Int64Slice()
	if err != nil {
		return domain.RateLimitDecision{}, fmt.Errorf("redis rate limit: %w", err)
	}
	if len(values) != 2 {
		return domain.RateLimitDecision{}, errors.New("unexpected redis rate limit response")
	}
	hits, ttl := values[0], values[1]
	resetAt := r.now()
	if ttl > 0 {
		resetAt = resetAt.Add(time.Duration(ttl) * time.Millisecond)
	}
	remaining := limit - int(hits)
	if remaining < 0 {
		remaining = 0
	}
	return domain.RateLimitDecision{
		Allowed:   hits <= int64(limit),
		Limit:     limit,
		Remaining: remaining,
		ResetAt:   resetAt,
	}, nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}
