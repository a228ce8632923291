package notion

import (
	"context"
	"strconv"
	"sync"
	"time"
)

// Notion allows roughly 3 requests per second per integration, with some
// tolerance for short bursts.
const (
	defaultRequestsPerSecond = 3.0
	defaultBurstSize         = 5

	// maxRetryAfter caps the backoff applied after repeated 429 responses.
	maxRetryAfter = 30 * time.Second
)

// RateLimiter implements token bucket rate limiting for Notion API requests.
// It allows bursts up to the bucket size and refills at a steady rate.
// Safe for concurrent use: the worker pool calls Wait from many goroutines.
type RateLimiter struct {
	mu         sync.Mutex
	tokens     float64
	maxTokens  float64
	refillRate float64 // tokens per second
	lastRefill time.Time
	retryAfter time.Time // earliest next request time after a 429

	// Adaptive backoff state: consecutive 429s within a short window
	// double the wait each time.
	consecutiveThrottles int
	lastThrottleTime     time.Time
}

// NewRateLimiter creates a limiter averaging requestsPerSecond with bursts
// up to burstSize.
func NewRateLimiter(requestsPerSecond float64, burstSize int) *RateLimiter {
	return &RateLimiter{
		tokens:     float64(burstSize),
		maxTokens:  float64(burstSize),
		refillRate: requestsPerSecond,
		lastRefill: time.Now(),
	}
}

// DefaultRateLimiter creates a rate limiter configured for Notion's
// published API limits.
func DefaultRateLimiter() *RateLimiter {
	return NewRateLimiter(defaultRequestsPerSecond, defaultBurstSize)
}

// refillLocked adds tokens accrued since the last refill. Caller holds mu.
func (r *RateLimiter) refillLocked(now time.Time) {
	elapsed := now.Sub(r.lastRefill).Seconds()
	r.tokens += elapsed * r.refillRate
	if r.tokens > r.maxTokens {
		r.tokens = r.maxTokens
	}
	r.lastRefill = now
}

// sleep releases mu for the duration, honoring context cancellation.
// Returns with mu re-acquired on success; on error mu is released.
func (r *RateLimiter) sleep(ctx context.Context, d time.Duration) error {
	r.mu.Unlock()
	select {
	case <-time.After(d):
	case <-ctx.Done():
		return ctx.Err()
	}
	r.mu.Lock()
	return nil
}

// Wait blocks until a request can be made without exceeding rate limits.
// It respects any Retry-After time set by SetRetryAfter.
func (r *RateLimiter) Wait(ctx context.Context) error {
	r.mu.Lock()

	now := time.Now()
	if now.Before(r.retryAfter) {
		if err := r.sleep(ctx, r.retryAfter.Sub(now)); err != nil {
			return err
		}
		now = time.Now()
	}

	r.refillLocked(now)

	if r.tokens < 1 {
		wait := time.Duration((1 - r.tokens) / r.refillRate * float64(time.Second))
		if err := r.sleep(ctx, wait); err != nil {
			return err
		}
		r.refillLocked(time.Now())
	}

	r.tokens--
	r.mu.Unlock()
	return nil
}

// SetRetryAfter sets a time to wait before making more requests.
// Call this when receiving a 429 response. Consecutive 429s within a
// 30-second window increase the wait exponentially (1x, 2x, 4x, 8x cap).
func (r *RateLimiter) SetRetryAfter(duration time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	if now.Sub(r.lastThrottleTime) < 30*time.Second {
		r.consecutiveThrottles++
	} else {
		r.consecutiveThrottles = 1
	}
	r.lastThrottleTime = now

	multiplier := 1 << min(r.consecutiveThrottles-1, 3)
	adjusted := duration * time.Duration(multiplier)
	if adjusted > maxRetryAfter {
		adjusted = maxRetryAfter
	}

	r.retryAfter = now.Add(adjusted)
	// Clear tokens to prevent a burst right after the retry window.
	r.tokens = 0
}

// ResetThrottleState resets the consecutive throttle counter.
// Call this after a successful request following a throttle period.
func (r *RateLimiter) ResetThrottleState() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if time.Since(r.lastThrottleTime) > 10*time.Second {
		r.consecutiveThrottles = 0
	}
}

// ParseRetryAfter parses a Retry-After header value, handling both
// delta-seconds and HTTP-date formats. Defaults to one second.
func ParseRetryAfter(value string) time.Duration {
	if value == "" {
		return time.Second
	}

	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}

	if t, err := time.Parse(time.RFC1123, value); err == nil {
		return time.Until(t)
	}

	return time.Second
}
