// Package ratelimit counts hits per key in Redis so every server instance
// shares one budget.
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultPrefix = "frutti:ratelimit"

// incrWithTTL bumps the counter and arms its expiry on the first hit of a window
var incrWithTTL = redis.NewScript(`
local n = redis.call("INCR", KEYS[1])
if n == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return n
`)

// FixedWindowLimiter admits at most limit hits per key in each window.
// Windows are aligned to the Unix epoch.
type FixedWindowLimiter struct {
	rdb    *redis.Client
	prefix string
	limit  int64
	window time.Duration
}

// NewRedisFixedWindowLimiter connects lazily to the Redis at addr
func NewRedisFixedWindowLimiter(addr, password, prefix string, limit int, window time.Duration) (*FixedWindowLimiter, error) {
	switch {
	case limit <= 0 || window < time.Millisecond:
		return nil, errors.New("ratelimit: limit and window must be positive")
	case strings.TrimSpace(addr) == "":
		return nil, errors.New("ratelimit: redis address is required")
	}

	if prefix = strings.TrimSpace(prefix); prefix == "" {
		prefix = defaultPrefix
	}
	rdb := redis.NewClient(&redis.Options{Addr: strings.TrimSpace(addr), Password: password})
	return &FixedWindowLimiter{rdb: rdb, prefix: prefix, limit: int64(limit), window: window}, nil
}

// Allow counts one hit for key. A nil limiter or an unreachable Redis denies.
func (l *FixedWindowLimiter) Allow(ctx context.Context, key string) bool {
	if l == nil {
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	n, err := incrWithTTL.Run(ctx, l.rdb, []string{l.bucket(key, time.Now())}, l.window.Milliseconds()).Int64()
	if err != nil {
		return false
	}
	return n <= l.limit
}

// bucket names the Redis counter of key for the window containing at
func (l *FixedWindowLimiter) bucket(key string, at time.Time) string {
	if key = strings.TrimSpace(key); key == "" {
		key = "unknown"
	}
	slot := at.UnixMilli() / l.window.Milliseconds()
	return fmt.Sprintf("%s:%s:%d", l.prefix, key, slot)
}

// Close releases the Redis connection pool
func (l *FixedWindowLimiter) Close() error {
	return l.rdb.Close()
}
