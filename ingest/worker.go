package ingest

import (
	"context"
	"errors"
	"time"

	"github.com/sig-0/harvest/ratelimit"
	"github.com/sig-0/harvest/storage/types"
)

// task is a single pending provider execution
type task struct {
	descriptor *Descriptor
}

// Less orders pending tasks by priority weight (highest first),
// falling back to the canonical ID ordering
func (a task) Less(b task) bool {
	if a.descriptor.Metadata.Weight != b.descriptor.Metadata.Weight {
		return a.descriptor.Metadata.Weight > b.descriptor.Metadata.Weight
	}

	return a.descriptor.ID < b.descriptor.ID
}

// runProvider drives a single provider through its full lifecycle:
// permit wait -> fetch -> streamed sink writes. gateCtx carries the run
// deadline and only gates state transitions; fetchCtx is handed to the
// provider so in-flight work is never forcibly interrupted
func (r *Runner) runProvider(
	gateCtx context.Context,
	fetchCtx context.Context,
	descriptor *Descriptor,
) *types.ProviderOutcome {
	var (
		start   = time.Now()
		outcome = &types.ProviderOutcome{
			ProviderID: descriptor.ID,
		}
	)

	finish := func() *types.ProviderOutcome {
		outcome.Duration = time.Since(start)

		return outcome
	}

	// Providers whose turn starts after the deadline skip, they never run
	if gateCtx.Err() != nil {
		outcome.Status = types.OutcomeSkipped

		return finish()
	}

	// Acquire a rate limit permit for the provider's class
	if err := r.limiter.Acquire(gateCtx, descriptor.Metadata.Class); err != nil {
		if errors.Is(err, ratelimit.ErrAcquireTimeout) {
			outcome.Status = types.OutcomeFailed
			outcome.ErrorKind = types.ErrorKindRateLimit
			outcome.Error = err.Error()

			return finish()
		}

		// The permit wait would run past the run deadline
		outcome.Status = types.OutcomeSkipped

		return finish()
	}

	// Build the provider instance
	provider, err := descriptor.Factory()
	if err != nil {
		outcome.Status = types.OutcomeFailed
		outcome.ErrorKind = types.ErrorKindProvider
		outcome.Error = err.Error()

		return finish()
	}

	defer func() {
		closer, ok := provider.(Closer)
		if !ok {
			return
		}

		if closeErr := closer.Close(); closeErr != nil {
			r.logger.Error(
				"unable to close provider",
				"id", descriptor.ID,
				"err", closeErr,
			)
		}
	}()

	var (
		written int64
		sinkErr error
	)

	emit := func(records []types.Record) error {
		if sinkErr != nil {
			return sinkErr // sink already rejected a batch
		}

		if len(records) == 0 {
			return nil
		}

		count, writeErr := r.sink.WriteRecords(fetchCtx, descriptor.ID, records)

		// Count only what the sink acknowledged
		written += int64(count)

		if writeErr != nil {
			sinkErr = writeErr

			return writeErr
		}

		return nil
	}

	fetchErr := provider.Fetch(fetchCtx, emit)

	outcome.RecordsWritten = written

	switch {
	case sinkErr != nil:
		outcome.Status = types.OutcomeFailed
		outcome.ErrorKind = types.ErrorKindSinkWrite
		outcome.Error = sinkErr.Error()
	case fetchErr != nil:
		outcome.Status = types.OutcomeFailed
		outcome.ErrorKind = types.ErrorKindProvider
		outcome.Error = fetchErr.Error()
	default:
		outcome.Status = types.OutcomeSucceeded
	}

	return finish()
}
