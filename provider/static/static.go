// Package static provides a provider that replays a fixed set of records.
// It is the stand-in data source for smoke runs and wiring tests
package static

import (
	"context"

	"github.com/sig-0/harvest/ingest"
	"github.com/sig-0/harvest/storage/types"
)

// Provider is a fixed-record provider
type Provider struct {
	name    string
	records []types.Record
}

// New creates a new static provider with the given records
func New(name string, records []types.Record) *Provider {
	return &Provider{
		name:    name,
		records: records,
	}
}

func (p *Provider) Name() string {
	return p.name
}

func (p *Provider) Fetch(ctx context.Context, emit ingest.Emit) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return emit(p.records)
}
