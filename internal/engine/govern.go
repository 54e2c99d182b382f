package engine

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// RateLimitError is returned when the per-minute quota is exhausted.
// RetryAfter is how long the caller must wait for the next free slot.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded, retry in %s", e.RetryAfter.Round(time.Second))
}

// Governor is the single gate every search call passes before any network
// work: a per-minute request quota plus a cap on concurrent executions.
type Governor struct {
	limiter *rate.Limiter
	sem     *semaphore.Weighted
}

// NewGovernor builds a governor allowing perMinute requests per minute and
// maxConcurrent in-flight calls.
func NewGovernor(perMinute, maxConcurrent int) *Governor {
	if perMinute <= 0 {
		perMinute = 30
	}
	if maxConcurrent <= 0 {
		maxConcurrent = 5
	}
	return &Governor{
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute),
		sem:     semaphore.NewWeighted(int64(maxConcurrent)),
	}
}

// Acquire claims a quota token and a concurrency slot. Quota exhaustion is
// rejected immediately with a *RateLimitError carrying the remaining wait;
// the concurrency slot is waited for (bounded by ctx). The returned release
// func must be called exactly once.
func (g *Governor) Acquire(ctx context.Context) (func(), error) {
	r := g.limiter.Reserve()
	if !r.OK() {
		return nil, &RateLimitError{RetryAfter: time.Minute}
	}
	if delay := r.Delay(); delay > 0 {
		r.Cancel()
		return nil, &RateLimitError{RetryAfter: delay}
	}

	if err := g.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("acquire slot: %w", err)
	}
	return func() { g.sem.Release(1) }, nil
}
