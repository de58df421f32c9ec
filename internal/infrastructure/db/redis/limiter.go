package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "eventboard:rl:"

// INCR and PEXPIRE run atomically so a window always gets its expiry.
var incrExpire = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return current
`)

// Decision is the outcome of one Allow call.
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	Reset     time.Duration
}

// Limiter is a fixed-window request counter backed by Redis.
// Key format: eventboard:rl:<key>
type Limiter struct {
	client *redis.Client
	max    int
	window time.Duration
}

// NewLimiter creates a Limiter allowing max hits per window.
func NewLimiter(client *redis.Client, max int, window time.Duration) *Limiter {
	return &Limiter{client: client, max: max, window: window}
}

// Enabled reports whether the limiter has a client and usable bounds.
func (l *Limiter) Enabled() bool {
	return l != nil && l.client != nil && l.max > 0 && l.window > 0
}

// Allow counts one hit for key. Callers should fail open on error.
func (l *Limiter) Allow(ctx context.Context, key string) (Decision, error) {
	k := keyPrefix + key

	res, err := incrExpire.Run(ctx, l.client, []string{k}, l.window.Milliseconds()).Int64()
	if err != nil {
		return Decision{}, fmt.Errorf("rate limit incr: %w", err)
	}

	d := Decision{
		Allowed:   int(res) <= l.max,
		Limit:     l.max,
		Remaining: l.max - int(res),
	}
	if d.Remaining < 0 {
		d.Remaining = 0
	}

	if ttl, err := l.client.PTTL(ctx, k).Result(); err == nil && ttl > 0 {
		d.Reset = ttl
	} else {
		d.Reset = l.window
	}
	return d, nil
}
