package worker

import (
	"context"
	"time"
)

type RetryConfig struct {
	Attempts int
	Delay    time.Duration
}

// Retry runs fn up to Attempts times, doubling Delay between tries. It
// returns the last error, or ctx.Err() when ctx ends while waiting.
func Retry(ctx context.Context, config RetryConfig, fn func() error) error {
	attempts := config.Attempts
	if attempts <= 0 {
		attempts = 1
	}

	delay := config.Delay
	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(); err == nil {
			return nil
		}
		if i == attempts-1 {
			break
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		delay *= 2
	}
	return err
}
