package retry

import (
	"context"
	"fmt"
	"time"
)

// backoff is the schedule between attempts of one Do call.
type backoff struct {
	retries    int
	delay      time.Duration
	maxDelay   time.Duration
	multiplier float64
	retryIf    func(error) bool
}

// Option adjusts the backoff schedule.
type Option func(*backoff)

func newBackoff(opts []Option) *backoff {
	b := &backoff{
		retries:    3,
		delay:      100 * time.Millisecond,
		maxDelay:   2 * time.Second,
		multiplier: 2,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *backoff) next() time.Duration {
	d := b.delay
	b.delay = min(time.Duration(float64(b.delay)*b.multiplier), b.maxDelay)
	return d
}

// Do runs op until it succeeds, the retries are spent, ctx ends, or op
// returns an error the WithRetryIf predicate rejects. A rejected error is
// returned as is; the other failures wrap the last error.
func Do(ctx context.Context, op func() error, opts ...Option) error {
	b := newBackoff(opts)

	for attempt := 1; ; attempt++ {
		err := op()
		if err == nil {
			return nil
		}
		if b.retryIf != nil && !b.retryIf(err) {
			return err
		}
		if attempt > b.retries {
			return fmt.Errorf("gave up after %d attempts: %w", attempt, err)
		}

		timer := time.NewTimer(b.next())
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("canceled after %d attempts: %w", attempt, ctx.Err())
		case <-timer.C:
		}
	}
}

// OnConflict re-runs a read-modify-write mutation while isConflict reports
// that another writer got there first.
func OnConflict(ctx context.Context, isConflict func(error) bool, op func() error, opts ...Option) error {
	return Do(ctx, op, append([]Option{WithRetryIf(isConflict)}, opts...)...)
}

// WithMaxRetries sets how many times op is re-run after the first attempt.
func WithMaxRetries(n int) Option {
	return func(b *backoff) { b.retries = n }
}

// WithInitialDelay sets the wait before the first retry.
func WithInitialDelay(d time.Duration) Option {
	return func(b *backoff) { b.delay = d }
}

// WithMaxDelay caps the wait between retries.
func WithMaxDelay(d time.Duration) Option {
	return func(b *backoff) { b.maxDelay = d }
}

// WithMultiplier sets the growth factor of the wait.
func WithMultiplier(m float64) Option {
	return func(b *backoff) { b.multiplier = m }
}

// WithRetryIf retries only errors for which pred returns true.
func WithRetryIf(pred func(error) bool) Option {
	return func(b *backoff) { b.retryIf = pred }
}
