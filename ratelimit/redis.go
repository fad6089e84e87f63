// Package ratelimit, Redis-backed window store. When several API instances
// share one Redis, they also share the counting windows, so a client cannot
// multiply its quota by spraying requests across instances.
package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "ratelimit:"

// fixedWindowScript counts a hit inside a fixed window atomically: the first
// hit creates the key with the window TTL, later hits only increment. Running
// it as a Lua script keeps INCR and PEXPIRE from interleaving with another
// client's hit.
var fixedWindowScript = redis.NewScript(`
	local current = redis.call('INCR', KEYS[1])
	if current == 1 then
		redis.call('PEXPIRE', KEYS[1], ARGV[1])
	end
	local ttl = redis.call('PTTL', KEYS[1])
	return {current, ttl}
`)

// RedisStore implements Store on a shared Redis counter.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a RedisStore over an existing client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Hit implements Store.
func (s *RedisStore) Hit(ctx context.Context, class, key string, policy Policy) (Decision, error) {
	redisKey := redisKeyPrefix + windowKey(class, key)

	result, err := fixedWindowScript.Run(ctx, s.client,
		[]string{redisKey},
		policy.Window.Milliseconds(),
	).Int64Slice()
	if err != nil {
		return Decision{}, err
	}

	count := int(result[0])
	ttl := time.Duration(result[1]) * time.Millisecond
	if ttl < 0 {
		// PTTL returns a negative value if the key somehow has no expiry;
		// treat the full window as remaining rather than denying forever.
		ttl = policy.Window
	}
	resetAt := time.Now().Add(ttl)

	if count > policy.Quota {
		return Decision{
			Allowed:    false,
			Limit:      policy.Quota,
			Remaining:  0,
			RetryAfter: ttl,
			ResetAt:    resetAt,
		}, nil
	}

	return Decision{
		Allowed:   true,
		Limit:     policy.Quota,
		Remaining: policy.Quota - count,
		ResetAt:   resetAt,
	}, nil
}
