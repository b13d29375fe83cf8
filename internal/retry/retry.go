// Package retry provides a bounded retry helper with exponential backoff.
package retry

import (
	"context"
	"log"
	"time"
)

// Policy controls how an operation is retried. A Policy belongs to the call
// site that builds it; it is never shared across requests.
type Policy struct {
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts int
	// BaseDelay is the wait before the second attempt; it doubles on every
	// subsequent attempt.
	BaseDelay time.Duration
	// Retryable reports whether an error is worth another attempt. A nil
	// predicate retries every error.
	Retryable func(error) bool
}

// Do runs op up to p.MaxAttempts times. Non-retryable errors propagate
// immediately; the final attempt's error propagates unwrapped.
func Do[T any](ctx context.Context, p Policy, op func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		result, err := op(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if p.Retryable != nil && !p.Retryable(err) {
			return zero, err
		}
		if attempt == attempts {
			log.Printf("[retry] all %d attempts failed: %v", attempts, err)
			return zero, err
		}

		delay := p.BaseDelay * (1 << (attempt - 1))
		log.Printf("[retry] attempt %d/%d failed (%v), retrying in %s", attempt, attempts, err, delay)

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(delay):
		}
	}

	return zero, lastErr
}
