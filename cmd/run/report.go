package run

import (
	"fmt"
	"io"
	"time"

	"github.com/sig-0/harvest/storage/types"
)

// Exit codes for completed runs
const (
	ExitCodePartialFailure = 2
	ExitCodeTotalFailure   = 3
)

// StatusError maps a non-AllOk run status to a process exit code
type StatusError struct {
	Status types.RunStatus
	Code   int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("run finished with status %s", e.Status.String())
}

// statusError returns the exit error for the run status, if any
func statusError(status types.RunStatus) error {
	switch status {
	case types.RunPartialFailure:
		return &StatusError{
			Status: status,
			Code:   ExitCodePartialFailure,
		}
	case types.RunTotalFailure:
		return &StatusError{
			Status: status,
			Code:   ExitCodeTotalFailure,
		}
	default:
		return nil
	}
}

// printReport writes a human-readable run summary
func printReport(w io.Writer, report *types.RunReport) {
	fmt.Fprintf(
		w,
		"Run %s (shard %d/%d): %s\n",
		report.ID,
		report.ShardIndex,
		report.ShardTotal,
		report.Status.String(),
	)

	for _, outcome := range report.Outcomes {
		fmt.Fprintf(
			w,
			"  %-24s %-10s records=%d duration=%s",
			outcome.ProviderID,
			outcome.Status.String(),
			outcome.RecordsWritten,
			outcome.Duration.Round(time.Millisecond),
		)

		if outcome.Error != "" {
			fmt.Fprintf(w, " error(%s)=%s", outcome.ErrorKind.String(), outcome.Error)
		}

		fmt.Fprintln(w)
	}
}
