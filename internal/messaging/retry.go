package messaging

import (
	"context"
	"time"

	"go.uber.org/zap"
)

type RetryPolicy struct {
	Attempts int
	Delay    time.Duration
}

// DefaultConnectRetry bounds consumer connects to 5 attempts, 3 seconds apart.
var DefaultConnectRetry = RetryPolicy{Attempts: 5, Delay: 3 * time.Second}

// Retry runs fn until it succeeds or the policy is exhausted, returning the number of
// attempts made and the last error.
func Retry(ctx context.Context, policy RetryPolicy, log *zap.Logger, fn func(ctx context.Context) error) (int, error) {
	attempts := policy.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = fn(ctx); err == nil {
			return attempt, nil
		}
		if attempt == attempts {
			return attempt, err
		}

		log.Warn("connect attempt failed, retrying",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", attempts),
			zap.Duration("delay", policy.Delay),
			zap.Error(err),
		)

		select {
		case <-time.After(policy.Delay):
		case <-ctx.Done():
			return attempt, ctx.Err()
		}
	}
	return attempts, err
}
