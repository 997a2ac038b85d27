// Package retry provides retry with exponential backoff.
//
// The review fetch pipeline never retries automatically; interrupted runs
// checkpoint and stop. Retry is used only by ancillary lookups such as the
// game-details fetch.
package retry

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	errs "steamreviews/pkg/errors"
	"steamreviews/pkg/logger"
)

// Operation is a function that returns a result and might need retrying.
type Operation[T any] func() (T, error)

// Config holds retry configuration.
type Config struct {
	// MaxAttempts is the maximum number of attempts (0 means unlimited).
	MaxAttempts int
	// InitialDelay before the first retry.
	InitialDelay time.Duration
	// MaxDelay caps the backoff.
	MaxDelay time.Duration
	// Multiplier grows the delay between attempts.
	Multiplier float64
	// Jitter randomizes delays by up to this fraction.
	Jitter float64
	// RetryIf determines if an error should be retried.
	RetryIf func(error) bool
	// Context for cancellation between attempts.
	Context context.Context
	// Logger for retry attempts.
	Logger logger.Logger
}

// DefaultConfig returns a retry configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		MaxAttempts:  3,
		InitialDelay: time.Second,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
		Jitter:       0.1,
		RetryIf:      DefaultRetryIf,
		Context:      context.Background(),
		Logger:       logger.GetLogger(),
	}
}

// DefaultRetryIf is the default retry predicate.
func DefaultRetryIf(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *errs.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Kind {
		case errs.KindTimeout, errs.KindConnection:
			return true
		case errs.KindAPIFailure, errs.KindMalformed:
			return false
		}
		return errs.IsRetryableStatusCode(apiErr.Code)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return true
}

// Do executes an operation with retry logic and returns its result.
func Do[T any](op Operation[T], cfg *Config) (T, error) {
	var zero T
	if cfg == nil {
		cfg = DefaultConfig()
	}

	delay := cfg.InitialDelay
	var lastErr error

	for attempt := 1; cfg.MaxAttempts == 0 || attempt <= cfg.MaxAttempts; attempt++ {
		result, err := op()
		if err == nil {
			if attempt > 1 && cfg.Logger != nil {
				cfg.Logger.DebugWithFields("operation succeeded after retry", map[string]interface{}{
					"attempt": attempt,
				})
			}
			return result, nil
		}
		lastErr = err

		if cfg.RetryIf != nil && !cfg.RetryIf(err) {
			return zero, err
		}
		if cfg.MaxAttempts > 0 && attempt == cfg.MaxAttempts {
			break
		}

		wait := delay
		if cfg.Jitter > 0 {
			wait += time.Duration(rand.Float64() * cfg.Jitter * float64(delay))
		}
		if cfg.Logger != nil {
			cfg.Logger.WarnWithFields("retrying operation", map[string]interface{}{
				"attempt": attempt,
				"delay":   wait,
				"error":   err.Error(),
			})
		}

		select {
		case <-cfg.Context.Done():
			return zero, cfg.Context.Err()
		case <-time.After(wait):
		}

		delay = time.Duration(float64(delay) * cfg.Multiplier)
		if delay > cfg.MaxDelay {
			delay = cfg.MaxDelay
		}
	}

	return zero, fmt.Errorf("max retry attempts (%d) exceeded: %w", cfg.MaxAttempts, lastErr)
}
