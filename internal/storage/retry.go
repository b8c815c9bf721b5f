package storage

import (
	"context"
	"time"
)

// RetryConfig configures exponential backoff when connecting to a database server
type RetryConfig struct {
	MaxAttempts int           // Total attempts including the first
	BaseDelay   time.Duration // Delay after the first failure
	MaxDelay    time.Duration // Upper bound on any single delay
	Multiplier  float64       // Growth factor between delays
}

// DefaultRetryConfig suits a database container that is still starting up
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 5,
		BaseDelay:   200 * time.Millisecond,
		MaxDelay:    5 * time.Second,
		Multiplier:  2.0,
	}
}

// retryWithBackoff runs fn until it succeeds, attempts run out or ctx ends.
// The last error from fn is returned when attempts run out.
func retryWithBackoff(ctx context.Context, config RetryConfig, fn func(context.Context) error) error {
	var lastErr error
	backoff := config.BaseDelay

	for attempt := 0; attempt < max(config.MaxAttempts, 1); attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		// Don't retry on context cancellation
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if attempt < config.MaxAttempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
				backoff = min(time.Duration(float64(backoff)*config.Multiplier), config.MaxDelay)
			}
		}
	}

	return lastErr
}
