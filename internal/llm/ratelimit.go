package llm

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// newLimiter returns nil when rps <= 0, which disables limiting.
func newLimiter(rps float64, burst int) *rate.Limiter {
	if rps <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}

// acquire waits for a slot. A wait that cannot finish before the deadline
// fails fast and is reported as context.DeadlineExceeded.
func acquire(ctx context.Context, l *rate.Limiter) error {
	if l == nil {
		return nil
	}
	if err := l.Wait(ctx); err != nil {
		if cerr := ctx.Err(); cerr != nil {
			return cerr
		}
		return fmt.Errorf("%w: %v", context.DeadlineExceeded, err)
	}
	return nil
}
