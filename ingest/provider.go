package ingest

import (
	"context"

	"github.com/sig-0/harvest/storage/types"
)

// Emit forwards a batch of fetched records to the run's sink.
// A non-nil error means the sink rejected the batch and the
// provider should stop fetching
type Emit func(records []types.Record) error

// Provider is a single pluggable data source
type Provider interface {
	// Name returns the human-readable name of the provider
	Name() string

	// Fetch is the provider's main fetch job. Records are streamed
	// out through emit in batches as they become available
	Fetch(ctx context.Context, emit Emit) error
}

// Closer is optionally implemented by providers that hold resources
type Closer interface {
	Close() error
}

// Factory produces a runnable provider instance
type Factory func() (Provider, error)

// Metadata is the optional static provider metadata
type Metadata struct {
	// Weight orders execution within a shard (higher runs earlier)
	Weight int

	// Class is the rate limit class. Providers with no class share
	// the default unlimited class
	Class string
}

// Descriptor binds a provider ID to its factory and metadata.
// Immutable once registered
type Descriptor struct {
	ID       string
	Factory  Factory
	Metadata Metadata
}
