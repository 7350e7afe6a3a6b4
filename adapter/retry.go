package adapter

import (
	"context"
	"fmt"
	"time"
)

// BaseBackoff is the delay before the first retry. Each later retry doubles it.
const BaseBackoff = 250 * time.Millisecond

// Retry calls fn up to 1+retries times with exponential backoff between
// attempts. permanent, when non-nil, marks errors that must not be retried.
func Retry(ctx context.Context, retries int, fn func(context.Context) error, permanent func(error) bool) error {
	var lastErr error
	for i := range 1 + retries {
		if i > 0 {
			select {
			case <-ctx.Done():
				return fmt.Errorf("canceled during backoff: %w", ctx.Err())
			case <-time.After(BaseBackoff << uint(i-1)):
			}
		}
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("canceled: %w", err)
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if permanent != nil && permanent(lastErr) {
			return fmt.Errorf("non-retriable: %w", lastErr)
		}
	}
	return fmt.Errorf("failed after %d attempts: %w", 1+retries, lastErr)
}
