package spclient

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimitConfig holds the sustained request rate against one tenant.
type RateLimitConfig struct {
	RequestsPerSecond float64
	BurstSize         int
	// ThrottleBackoff is used when a throttled response carries no
	// Retry-After.
	ThrottleBackoff time.Duration
}

// DefaultRateLimit stays well under the SharePoint Online per-user limits.
var DefaultRateLimit = RateLimitConfig{
	RequestsPerSecond: 10,
	BurstSize:         20,
	ThrottleBackoff:   30 * time.Second,
}

// RateLimiter is a token bucket shared by all requests of a Service, with
// a pause window opened by throttled responses.
type RateLimiter struct {
	mu       sync.Mutex
	limiter  *rate.Limiter
	retryAt  time.Time
	fallback time.Duration
}

func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	limit := rate.Limit(cfg.RequestsPerSecond)
	if cfg.RequestsPerSecond <= 0 {
		limit = rate.Inf
	}
	burst := cfg.BurstSize
	if burst <= 0 {
		burst = 1
	}
	fallback := cfg.ThrottleBackoff
	if fallback <= 0 {
		fallback = DefaultRateLimit.ThrottleBackoff
	}
	return &RateLimiter{
		limiter:  rate.NewLimiter(limit, burst),
		fallback: fallback,
	}
}

// Wait blocks until a request may be sent.
func (r *RateLimiter) Wait(ctx context.Context) error {
	r.mu.Lock()
	retryAt := r.retryAt
	r.mu.Unlock()

	if d := time.Until(retryAt); d > 0 {
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}
	return r.limiter.Wait(ctx)
}

// RecordThrottle pauses all requests for retryAfter, or for the fallback
// backoff when the server did not say.
func (r *RateLimiter) RecordThrottle(retryAfter time.Duration) {
	if retryAfter < 0 {
		retryAfter = r.fallback
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if at := time.Now().Add(retryAfter); at.After(r.retryAt) {
		r.retryAt = at
	}
}

// Allow reports whether a request could be sent right now.
func (r *RateLimiter) Allow() bool {
	r.mu.Lock()
	retryAt := r.retryAt
	r.mu.Unlock()
	if time.Now().Before(retryAt) {
		return false
	}
	return r.limiter.Allow()
}
