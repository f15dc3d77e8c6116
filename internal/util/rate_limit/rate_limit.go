package rate_limit

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/valkey-io/valkey-go"
)

// RateLimiter implements a token bucket over valkey. It is shared by
// all processes, so a burst of invitation redemptions from one client
// is bounded no matter which instance serves it.
type RateLimiter struct {
	client valkey.Client
}

type RateLimitResult struct {
	Allowed       bool      `json:"allowed"`
	Remaining     int       `json:"remaining"`
	ResetTime     time.Time `json:"resetTime"`
	RetryAfterSec int       `json:"retryAfterSec,omitempty"`
}

const (
	defaultTimeout = 5 * time.Second
	keyPrefix      = "rate_limit:invite:"
)

// Lua script for token bucket rate limiting. Runs atomically on the
// server: refills tokens from elapsed time, takes one if available,
// then reports how long until the bucket is full again.
const tokenBucketLuaScript = `
local key = KEYS[1]
local now = tonumber(ARGV[1])
local rps_limit = tonumber(ARGV[2])
local burst_limit = tonumber(ARGV[3])
local ttl = tonumber(ARGV[4])

local current = redis.call('HMGET', key, 'tokens', 'last_refill')
local tokens = tonumber(current[1]) or burst_limit
local last_refill = tonumber(current[2]) or now

local elapsed = math.max(0, now - last_refill)
local tokens_to_add = math.floor(elapsed * rps_limit / 1000)
tokens = math.min(burst_limit, tokens + tokens_to_add)

local allowed = 0
local remaining = tokens
if tokens >= 1 then
    allowed = 1
    tokens = tokens - 1
    remaining = tokens
end

redis.call('HMSET', key, 'tokens', tokens, 'last_refill', now)
redis.call('EXPIRE', key, ttl)

local time_to_full = 0
if tokens < burst_limit then
    time_to_full = math.ceil((burst_limit - tokens) * 1000 / rps_limit)
end

return {allowed, remaining, time_to_full}
`

func NewRateLimiter(client valkey.Client) *RateLimiter {
	return &RateLimiter{client: client}
}

// CheckLimit consumes one token from the bucket identified by key
// (e.g. a client IP) and reports whether the request is allowed.
func (r *RateLimiter) CheckLimit(key string, perSecondLimit, burstLimit int) (*RateLimitResult, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	nowMs := time.Now().UnixMilli()
	ttlSec := int64(math.Ceil(float64(burstLimit)/float64(perSecondLimit))) + 60

	resp := r.client.Do(ctx, r.client.B().Eval().
		Script(tokenBucketLuaScript).
		Numkeys(1).
		Key(keyPrefix+key).
		Arg(
			fmt.Sprintf("%d", nowMs),
			fmt.Sprintf("%d", perSecondLimit),
			fmt.Sprintf("%d", burstLimit),
			fmt.Sprintf("%d", ttlSec),
		).
		Build())

	values, err := resp.ToArray()
	if err != nil {
		return nil, fmt.Errorf("rate limit script failed: %w", err)
	}

	if len(values) != 3 {
		return nil, fmt.Errorf("rate limit script returned %d values, expected 3", len(values))
	}

	allowed, _ := values[0].AsInt64()
	remaining, _ := values[1].AsInt64()
	msToFull, _ := values[2].AsInt64()

	result := &RateLimitResult{
		Allowed:   allowed == 1,
		Remaining: int(remaining),
		ResetTime: time.Now().Add(time.Duration(msToFull) * time.Millisecond),
	}

	if !result.Allowed {
		result.RetryAfterSec = int(math.Ceil(float64(msToFull) / 1000.0))
		if result.RetryAfterSec < 1 {
			result.RetryAfterSec = 1
		}
	}

	return result, nil
}
