package rpc

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"
)

func permanent(err error) error {
	return backoff.Permanent(err)
}

func withRetry[T any](
	ctx context.Context,
	maxRetries int,
	baseDelay time.Duration,
	fn func(context.Context) (T, error),
	notify func(error, time.Duration),
) (T, error) {
	if maxRetries < 0 {
		maxRetries = 0
	}
	if baseDelay <= 0 {
		baseDelay = 100 * time.Millisecond
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = baseDelay
	policy.Multiplier = 2

	opts := []backoff.RetryOption{
		backoff.WithBackOff(policy),
		backoff.WithMaxTries(uint(maxRetries + 1)),
	}
	if notify != nil {
		opts = append(opts, backoff.WithNotify(notify))
	}

	return backoff.Retry(ctx, func() (T, error) {
		return fn(ctx)
	}, opts...)
}
