package report

import (
	"context"
	"time"
)

// retryWithBackoff runs fn until it succeeds, the attempts are exhausted,
// or the context is cancelled. Backoff doubles per attempt up to maxBackoff.
//
// Delivery is the only retried operation in this service; the analysis path
// makes a single attempt and falls back instead.
func retryWithBackoff(ctx context.Context, attempts int, base, maxBackoff time.Duration, fn func() error) error {
	if attempts < 1 {
		attempts = 1
	}

	backoff := base
	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(); err == nil {
			return nil
		}
		if i == attempts-1 {
			break
		}

		delay := backoff
		if delay > maxBackoff {
			delay = maxBackoff
		}
		select {
		case <-time.After(delay):
			backoff *= 2
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}
