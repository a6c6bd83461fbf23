package xero

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	// HeaderRetryAfter is the retry-after header (seconds).
	HeaderRetryAfter = "Retry-After"

	// HeaderRateProblem names the limit that was hit on a 429.
	HeaderRateProblem = "X-Rate-Limit-Problem"

	// HeaderMinRemaining is the remaining calls this minute for the tenant.
	HeaderMinRemaining = "X-MinLimit-Remaining"

	// HeaderDayRemaining is the remaining calls today for the tenant.
	HeaderDayRemaining = "X-DayLimit-Remaining"

	// DefaultRetryAfter is used when a 429 carries no usable Retry-After.
	DefaultRetryAfter = 5 * time.Second

	// MaxRetryAfter caps a single back-off so a daily limit cannot park the
	// process for hours.
	MaxRetryAfter = 2 * time.Minute
)

// RateLimiter combines proactive token-bucket throttling with reactive
// back-off from Xero's rate limit headers.
type RateLimiter struct {
	mu           sync.Mutex
	bucket       *rate.Limiter
	retryAt      time.Time
	minRemaining int
	dayRemaining int
}

// NewRateLimiter creates a limiter allowing requestsPerMinute calls per minute.
func NewRateLimiter(requestsPerMinute int) *RateLimiter {
	if requestsPerMinute < 1 {
		requestsPerMinute = 1
	}
	return &RateLimiter{
		bucket:       rate.NewLimiter(rate.Every(time.Minute/time.Duration(requestsPerMinute)), 1),
		minRemaining: -1,
		dayRemaining: -1,
	}
}

// Wait blocks until it's safe to make a request.
func (r *RateLimiter) Wait(ctx context.Context) error {
	r.mu.Lock()
	retryAt := r.retryAt
	r.mu.Unlock()

	if wait := time.Until(retryAt); wait > 0 {
		timer := time.NewTimer(wait)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	return r.bucket.Wait(ctx)
}

// UpdateFromResponse records the remaining quotas reported by Xero.
func (r *RateLimiter) UpdateFromResponse(resp *http.Response) {
	if resp == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if v, err := strconv.Atoi(resp.Header.Get(HeaderMinRemaining)); err == nil {
		r.minRemaining = v
	}
	if v, err := strconv.Atoi(resp.Header.Get(HeaderDayRemaining)); err == nil {
		r.dayRemaining = v
	}
}

// Backoff parses the Retry-After of a 429 response and defers the next
// Wait by that long. Returns the delay applied.
func (r *RateLimiter) Backoff(resp *http.Response) time.Duration {
	delay := DefaultRetryAfter
	if resp != nil {
		if seconds, err := strconv.Atoi(resp.Header.Get(HeaderRetryAfter)); err == nil && seconds >= 0 {
			delay = time.Duration(seconds) * time.Second
		}
	}
	delay = min(delay, MaxRetryAfter)

	r.mu.Lock()
	defer r.mu.Unlock()
	if until := time.Now().Add(delay); until.After(r.retryAt) {
		r.retryAt = until
	}
	return delay
}

// MinuteRemaining returns the last reported per-minute quota, or -1 if unknown.
func (r *RateLimiter) MinuteRemaining() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.minRemaining
}

// DayRemaining returns the last reported daily quota, or -1 if unknown.
func (r *RateLimiter) DayRemaining() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dayRemaining
}
