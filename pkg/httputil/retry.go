// Package httputil provides shared HTTP helpers: retry with exponential
// backoff and the error wrapper that marks a failure as transient.
package httputil

import (
	"context"
	"errors"
	"time"
)

// RetryableError marks an error as transient. Wrap network timeouts and 5xx
// responses with this type so [Retry] attempts the operation again; all other
// errors abort immediately.
type RetryableError struct{ Err error }

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Retryable wraps err as a RetryableError. Returns nil if err is nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

// Retry executes fn up to attempts times, doubling delay after each failure.
// Only errors wrapped with [RetryableError] trigger another attempt.
// Returns the last error if all attempts fail, or ctx.Err() if cancelled
// while waiting between attempts.
func Retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	attempts = max(attempts, 1)
	var lastErr error

	for i := 0; i < attempts; i++ {
		if err := fn(); err == nil {
			return nil
		} else if lastErr = err; !errors.As(err, new(*RetryableError)) {
			return err
		}

		if i < attempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
				delay *= 2
			}
		}
	}
	return lastErr
}

// RetryWithBackoff runs fn with the default policy: 3 attempts starting at
// one second between retries.
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	return Retry(ctx, 3, time.Second, fn)
}
