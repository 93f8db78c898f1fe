package ratelimit

import (
	"context"
	"errors"
	"time"

	"golang.org/x/time/rate"
)

// ErrAcquireTimeout indicates the permit wait exceeded the configured maximum
var ErrAcquireTimeout = errors.New("rate limit permit wait timed out")

// Class is a named token bucket definition.
// Rate is in tokens per second, Burst is the bucket capacity
type Class struct {
	Name  string
	Rate  float64
	Burst int
}

// Limiter gates units of work through per-class token buckets.
// Classes without a configured bucket share the default unlimited
// class, for which Acquire returns immediately
type Limiter struct {
	buckets map[string]*rate.Limiter

	maxWait time.Duration
}

type Option func(l *Limiter)

// WithMaxWait caps how long a single Acquire call may wait for a permit
func WithMaxWait(d time.Duration) Option {
	return func(l *Limiter) {
		l.maxWait = d
	}
}

// New creates a new limiter from the given class definitions.
// Classes with a non-positive rate are treated as unlimited
func New(classes []Class, opts ...Option) *Limiter {
	l := &Limiter{
		buckets: make(map[string]*rate.Limiter, len(classes)),
	}

	for _, c := range classes {
		if c.Name == "" || c.Rate <= 0 {
			continue
		}

		burst := c.Burst
		if burst < 1 {
			burst = 1
		}

		l.buckets[c.Name] = rate.NewLimiter(rate.Limit(c.Rate), burst)
	}

	// Apply the options
	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Acquire consumes a single token for the given class, suspending the
// caller until one is available. Waits are serialized per class only,
// never across classes. It returns ErrAcquireTimeout if the wait would
// exceed the configured maximum, and context.DeadlineExceeded if it
// would run past the context deadline — both without sleeping
func (l *Limiter) Acquire(ctx context.Context, class string) error {
	bucket, ok := l.buckets[class]
	if !ok {
		return nil // default unlimited class
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	res := bucket.Reserve()
	if !res.OK() {
		return ErrAcquireTimeout // request can never be satisfied
	}

	delay := res.Delay()

	if l.maxWait > 0 && delay > l.maxWait {
		res.Cancel()

		return ErrAcquireTimeout
	}

	if deadline, hasDeadline := ctx.Deadline(); hasDeadline && delay > time.Until(deadline) {
		res.Cancel()

		return context.DeadlineExceeded
	}

	if delay == 0 {
		return nil
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		res.Cancel()

		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
