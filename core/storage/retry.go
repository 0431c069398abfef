package storage

import (
	"context"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"
)

// withRetry runs fn up to cfg.RetryAttempts times with a fixed cfg.RetryDelay pause.
// Every failed attempt is logged; when attempts run out the last error is returned
// unchanged.
func withRetry[T any](ctx context.Context, s *MediaStorage, op, key string, fn func() (T, error)) (T, error) {
	attempt := 0
	operation := func() (T, error) {
		attempt++
		res, err := fn()
		s.metrics.ObserveAttempt(op, err)
		if err != nil {
			s.logger.Error("Storage operation failed",
				zap.String("op", op),
				zap.String("key", key),
				zap.Int("attempt", attempt),
				zap.Int("max_attempts", s.cfg.RetryAttempts),
				zap.Error(err),
			)
		}
		return res, err
	}

	res, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoff.NewConstantBackOff(s.cfg.RetryDelay)),
		backoff.WithMaxTries(uint(s.cfg.RetryAttempts)),
		backoff.WithMaxElapsedTime(0),
	)
	if err != nil && attempt >= s.cfg.RetryAttempts {
		s.metrics.ObserveExhausted(op)
	}
	return res, err
}
