package types

import "time"

// Record is a single normalized data point produced by a provider.
// The orchestrator never interprets its contents, it only forwards
// them to the configured sink.
type Record map[string]any

type OutcomeStatus string

const (
	OutcomeSucceeded OutcomeStatus = "SUCCEEDED"
	OutcomeFailed    OutcomeStatus = "FAILED"
	OutcomeSkipped   OutcomeStatus = "SKIPPED"
)

func (s OutcomeStatus) String() string {
	return string(s)
}

type ErrorKind string

const (
	ErrorKindProvider  ErrorKind = "provider"
	ErrorKindRateLimit ErrorKind = "rate_limit"
	ErrorKindSinkWrite ErrorKind = "sink_write"
)

func (k ErrorKind) String() string {
	return string(k)
}

type RunStatus string

const (
	RunAllOk          RunStatus = "ALL_OK"
	RunPartialFailure RunStatus = "PARTIAL_FAILURE"
	RunTotalFailure   RunStatus = "TOTAL_FAILURE"
)

func (s RunStatus) String() string {
	return string(s)
}

// ProviderOutcome is the terminal result of a single provider in one run
type ProviderOutcome struct {
	ProviderID     string        `json:"provider_id"`
	Status         OutcomeStatus `json:"status"`
	RecordsWritten int64         `json:"records_written"`
	ErrorKind      ErrorKind     `json:"error_kind,omitempty"`
	Error          string        `json:"error,omitempty"`
	Duration       time.Duration `json:"duration"`
}

// RunReport is the per-run outcome summary. Outcomes are kept in the
// canonical provider ordering, so reports are diffable across runs
type RunReport struct {
	ID         string             `json:"id"`
	ShardIndex int                `json:"shard_index"`
	ShardTotal int                `json:"shard_total"`
	StartedAt  time.Time          `json:"started_at"`
	FinishedAt time.Time          `json:"finished_at"`
	Status     RunStatus          `json:"status"`
	Outcomes   []*ProviderOutcome `json:"outcomes"`
}

// Page wraps the results for pagination
type Page[T any] struct {
	Results []T   `json:"results"`
	Total   int64 `json:"total"`
}
