package github

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	// authenticatedQuota is the authenticated hourly request quota.
	authenticatedQuota = 5000

	// proactiveRate throttles below the quota (~1.2 req/s = 4320/hr).
	proactiveRate = 1.2

	// minBuffer is the remaining-request reserve before waiting for reset.
	minBuffer = 100

	headerRateRemaining = "X-RateLimit-Remaining"
	headerRateReset     = "X-RateLimit-Reset"
)

// rateLimiter combines proactive token-bucket throttling with reactive
// header tracking: it slows down before the quota is consumed and waits out
// the reset window when the reserve is gone.
type rateLimiter struct {
	mu        sync.Mutex
	remaining int
	resetTime time.Time
	bucket    *rate.Limiter
}

func newRateLimiter() *rateLimiter {
	return &rateLimiter{
		remaining: authenticatedQuota,
		bucket:    rate.NewLimiter(rate.Limit(proactiveRate), 1),
	}
}

// wait blocks until a request may be sent.
func (r *rateLimiter) wait(ctx context.Context) error {
	if err := r.bucket.Wait(ctx); err != nil {
		return err
	}

	r.mu.Lock()
	remaining, reset := r.remaining, r.resetTime
	r.mu.Unlock()

	if remaining < minBuffer && time.Now().Before(reset) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Until(reset)):
		}
	}
	return nil
}

// observe updates limiter state from response headers.
func (r *rateLimiter) observe(resp *http.Response) {
	if resp == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if v := resp.Header.Get(headerRateRemaining); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			r.remaining = n
		}
	}
	if v := resp.Header.Get(headerRateReset); v != "" {
		if ts, err := strconv.ParseInt(v, 10, 64); err == nil {
			r.resetTime = time.Unix(ts, 0)
		}
	}
}
