package proxy

import (
	"context"
	"errors"
	"time"
)

const (
	DefaultMaxRetries        = 3
	DefaultInitialBackoffMs  = 200
	DefaultMaxBackoffMs      = 2000
	DefaultBackoffMultiplier = 2.0
)

// RetryConfig configures exponential backoff retry behavior
type RetryConfig struct {
	MaxRetries int           // Maximum number of attempts
	BaseDelay  time.Duration // Initial delay between retries
	MaxDelay   time.Duration // Maximum delay between retries
	Multiplier float64       // Exponential backoff multiplier
}

func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries: DefaultMaxRetries,
		BaseDelay:  DefaultInitialBackoffMs * time.Millisecond,
		MaxDelay:   DefaultMaxBackoffMs * time.Millisecond,
		Multiplier: DefaultBackoffMultiplier,
	}
}

// retryWithBackoff executes fn with exponential backoff. Upstream replies
// below 500 are final and returned at once, as is context cancellation.
func retryWithBackoff[T any](ctx context.Context, config RetryConfig, fn func() (T, error)) (T, error) {
	var lastErr error
	var zero T
	backoff := config.BaseDelay

	attempts := config.MaxRetries
	if attempts < 1 {
		attempts = 1
	}

	for attempt := 0; attempt < attempts; attempt++ {
		result, err := fn()
		if err == nil {
			return result, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return zero, ctx.Err()
		}
		var ue *UpstreamError
		if errors.As(err, &ue) && ue.Status < 500 {
			return zero, err
		}

		if attempt < attempts-1 {
			select {
			case <-ctx.Done():
				return zero, ctx.Err()
			case <-time.After(backoff):
				backoff = time.Duration(float64(backoff) * config.Multiplier)
				if backoff > config.MaxDelay {
					backoff = config.MaxDelay
				}
			}
		}
	}

	return zero, lastErr
}
