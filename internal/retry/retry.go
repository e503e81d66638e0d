// Package retry provides a bounded retry-with-backoff combinator for
// transient store failures.
package retry

import (
	"context"
	"time"
)

// Policy bounds the retry loop. Delay doubles after every failed
// attempt starting from BaseDelay.
type Policy struct {
	MaxRetries int
	BaseDelay  time.Duration
}

// DefaultPolicy matches the write path: up to 3 retries, 1s base delay.
func DefaultPolicy() Policy {
	return Policy{MaxRetries: 3, BaseDelay: time.Second}
}

// Do runs op, retrying per the policy. It returns the first success or
// the last error once attempts are exhausted. Context cancellation cuts
// the loop short and returns the context error.
func Do(ctx context.Context, p Policy, op func(ctx context.Context) error) error {
	var lastErr error

	delay := p.BaseDelay
	for attempt := 0; attempt <= p.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(delay):
				delay *= 2
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		if lastErr = op(ctx); lastErr == nil {
			return nil
		}
	}

	return lastErr
}
