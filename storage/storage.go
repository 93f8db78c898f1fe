package storage

import (
	"context"

	"github.com/sig-0/harvest/storage/types"
)

// Sink receives normalized provider records for persistence.
// Implementations must be safe for concurrent WriteRecords calls
type Sink interface {
	// WriteRecords persists the given record batch for the provider,
	// returning the number of records durably written
	WriteRecords(ctx context.Context, providerID string, records []types.Record) (int, error)
}

// Storage is an abstraction over ingested data and run reports
type Storage interface {
	Sink

	// SaveRunReport saves the given run report
	SaveRunReport(context.Context, *types.RunReport) error

	// RunReports fetches saved run reports, most recent first
	RunReports(ctx context.Context, limit int32, offset int64) (*types.Page[*types.RunReport], error)

	// RunReport fetches a single run report by ID
	RunReport(ctx context.Context, id string) (*types.RunReport, error)

	// ListProviders lists all provider IDs with ingested records
	ListProviders(context.Context) ([]string, error)
}
