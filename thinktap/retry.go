package thinktap

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"
)

// RetryConfig configures retry behavior for live thought forwarding.
type RetryConfig struct {
	MaxAttempts       int
	InitialBackoff    time.Duration
	MaxBackoff        time.Duration
	BackoffMultiplier float64
	RetryableErrors   []error // Specific errors that should trigger retry
}

var DefaultRetryConfig = RetryConfig{
	MaxAttempts:       3,
	InitialBackoff:    100 * time.Millisecond,
	MaxBackoff:        10 * time.Second,
	BackoffMultiplier: 2.0,
}

// RetryableSink wraps a thought sink with retry logic. Forwarding stays
// best-effort overall: once attempts are exhausted the final error is
// returned to the reconciler, which logs and absorbs it like any other
// forwarding failure.
func RetryableSink(sink ThoughtSink, config RetryConfig) ThoughtSink {
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = DefaultRetryConfig.MaxAttempts
	}
	return SinkFunc(func(ctx context.Context, text string) error {
		var lastErr error

		for attempt := 0; attempt < config.MaxAttempts; attempt++ {
			err := sink.SendThought(ctx, text)
			if err == nil {
				return nil
			}

			lastErr = err

			if !isRetryable(err, config.RetryableErrors) {
				return fmt.Errorf("non-retryable error: %w", err)
			}

			if attempt < config.MaxAttempts-1 {
				backoff := calculateBackoff(attempt, config)

				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(backoff):
					// Continue to next attempt
				}
			}
		}

		return fmt.Errorf("max retry attempts (%d) exceeded: %w", config.MaxAttempts, lastErr)
	})
}

func isRetryable(err error, retryableErrors []error) bool {
	if len(retryableErrors) == 0 {
		// Default: any forwarding failure is worth one more try, since
		// the transport owns its own semantics.
		return !errors.Is(err, context.Canceled)
	}

	for _, retryableErr := range retryableErrors {
		if errors.Is(err, retryableErr) {
			return true
		}
	}
	return false
}

func calculateBackoff(attempt int, config RetryConfig) time.Duration {
	backoff := float64(config.InitialBackoff) * math.Pow(config.BackoffMultiplier, float64(attempt))
	if backoff > float64(config.MaxBackoff) {
		backoff = float64(config.MaxBackoff)
	}
	return time.Duration(backoff)
}
