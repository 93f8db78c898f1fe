package ingest

import (
	"log/slog"

	"github.com/sig-0/harvest/ratelimit"
)

type Option func(r *Runner)

// WithLogger specifies the logger for the runner
func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = l
	}
}

// WithLimiter specifies the rate limiter for the runner.
// Defaults to a limiter with no configured classes (unlimited)
func WithLimiter(l *ratelimit.Limiter) Option {
	return func(r *Runner) {
		r.limiter = l
	}
}

// WithMaxConcurrency caps how many providers may execute at once.
// Values <= 0 mean one worker per assigned provider
func WithMaxConcurrency(n int) Option {
	return func(r *Runner) {
		r.maxConcurrency = n
	}
}
