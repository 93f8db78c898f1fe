package ingest

import (
	"context"

	"github.com/sig-0/harvest/storage/types"
)

type (
	nameDelegate  func() string
	fetchDelegate func(context.Context, Emit) error
	closeDelegate func() error
)

type mockProvider struct {
	nameFn  nameDelegate
	fetchFn fetchDelegate
}

func (m *mockProvider) Name() string {
	if m.nameFn != nil {
		return m.nameFn()
	}

	return ""
}

func (m *mockProvider) Fetch(ctx context.Context, emit Emit) error {
	if m.fetchFn != nil {
		return m.fetchFn(ctx, emit)
	}

	return nil
}

type mockClosingProvider struct {
	mockProvider

	closeFn closeDelegate
}

func (m *mockClosingProvider) Close() error {
	if m.closeFn != nil {
		return m.closeFn()
	}

	return nil
}

// staticRecords generates n opaque records
func staticRecords(n int) []types.Record {
	records := make([]types.Record, 0, n)

	for i := 0; i < n; i++ {
		records = append(records, types.Record{
			"index": i,
		})
	}

	return records
}

// descriptorFor wraps the given provider into a registered-style descriptor
func descriptorFor(id string, provider Provider, metadata Metadata) *Descriptor {
	return &Descriptor{
		ID: id,
		Factory: func() (Provider, error) {
			return provider, nil
		},
		Metadata: metadata,
	}
}
