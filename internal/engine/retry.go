package engine

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// retryMaxTries bounds direct-HTTP retry attempts.
const retryMaxTries = 3

// RetryDo runs fn with exponential backoff until it succeeds, returns a
// permanent error, or the attempt budget runs out.
func RetryDo[T any](ctx context.Context, fn func() (T, error)) (T, error) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 500 * time.Millisecond
	bo.MaxInterval = 5 * time.Second

	return backoff.Retry(ctx, fn,
		backoff.WithBackOff(bo),
		backoff.WithMaxTries(retryMaxTries),
		backoff.WithMaxElapsedTime(20*time.Second))
}

// Permanent marks err as non-retryable for RetryDo.
func Permanent(err error) error {
	return backoff.Permanent(err)
}
