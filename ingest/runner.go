package ingest

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/rs/xid"
	"github.com/sig-0/iq"
	"golang.org/x/sync/errgroup"

	"github.com/sig-0/harvest/ratelimit"
	"github.com/sig-0/harvest/storage"
	"github.com/sig-0/harvest/storage/types"
)

var noopLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// Runner is the rate-limited concurrent execution scheduler for a
// single shard's providers
type Runner struct {
	sink    storage.Sink
	limiter *ratelimit.Limiter
	logger  *slog.Logger

	maxConcurrency int
}

// NewRunner creates a new Runner instance
func NewRunner(sink storage.Sink, opts ...Option) *Runner {
	r := &Runner{
		sink:    sink,
		limiter: ratelimit.New(nil),
		logger:  noopLogger,
	}

	// Apply the options
	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Run drives every assigned provider to a terminal state and reports
// the aggregate outcome [BLOCKING].
//
// Providers execute concurrently, bounded by the configured maximum
// concurrency (defaults to the shard size). The deadline is cooperative:
// it is checked before a provider acquires a permit and before its fetch
// starts, while in-flight fetch / write operations are left to finish.
// A zero deadline means no deadline. Individual provider failures are
// isolated, the run itself always completes and reports
func (r *Runner) Run(
	ctx context.Context,
	assignment Assignment,
	descriptors []*Descriptor,
	deadline time.Time,
) *types.RunReport {
	startedAt := time.Now().UTC()

	var (
		gateCtx  = ctx
		cancelFn = func() {}
	)

	if !deadline.IsZero() {
		gateCtx, cancelFn = context.WithDeadline(ctx, deadline)
	}

	defer cancelFn()

	// Queue up the shard's providers, by weight and canonical order
	var (
		q    = iq.NewQueue[task]()
		qMux sync.Mutex
	)

	for _, descriptor := range descriptors {
		q.Push(task{descriptor: descriptor})
	}

	nextTask := func() *task {
		qMux.Lock()
		defer qMux.Unlock()

		if q.Len() == 0 {
			return nil // shard is drained
		}

		return q.PopFront()
	}

	var (
		outcomes    = make([]*types.ProviderOutcome, 0, len(descriptors))
		outcomesMux sync.Mutex
	)

	workers := r.maxConcurrency
	if workers <= 0 || workers > len(descriptors) {
		workers = len(descriptors)
	}

	var group errgroup.Group

	for range workers {
		group.Go(func() error {
			// Each worker owns one provider's full lifecycle at a time
			for {
				next := nextTask()
				if next == nil {
					return nil
				}

				r.logger.Info(
					"starting provider",
					"id", next.descriptor.ID,
				)

				outcome := r.runProvider(gateCtx, ctx, next.descriptor)

				r.logger.Info(
					"provider finished",
					"id", outcome.ProviderID,
					"status", outcome.Status.String(),
					"records", outcome.RecordsWritten,
					"duration", outcome.Duration.String(),
				)

				outcomesMux.Lock()
				outcomes = append(outcomes, outcome)
				outcomesMux.Unlock()
			}
		})
	}

	// Workers never surface errors, provider failures are
	// downgraded into their outcomes
	_ = group.Wait()

	sortOutcomes(outcomes)

	return &types.RunReport{
		ID:         xid.New().String(),
		ShardIndex: assignment.Index,
		ShardTotal: assignment.Total,
		StartedAt:  startedAt,
		FinishedAt: time.Now().UTC(),
		Status:     reportStatus(outcomes),
		Outcomes:   outcomes,
	}
}
