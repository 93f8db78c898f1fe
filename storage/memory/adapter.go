package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/sig-0/harvest/storage/types"
)

type storedRecord struct {
	providerID string
	payload    types.Record
}

// Storage is an in-memory storage adapter, for dry runs and tests
type Storage struct {
	records []storedRecord
	reports map[string]*types.RunReport
	order   []string // report IDs, insertion order

	mu sync.RWMutex
}

func NewStorage() *Storage {
	return &Storage{
		reports: make(map[string]*types.RunReport),
	}
}

func (s *Storage) WriteRecords(
	_ context.Context,
	providerID string,
	records []types.Record,
) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, record := range records {
		s.records = append(s.records, storedRecord{
			providerID: providerID,
			payload:    record,
		})
	}

	return len(records), nil
}

func (s *Storage) SaveRunReport(_ context.Context, report *types.RunReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.reports[report.ID]; !exists {
		s.order = append(s.order, report.ID)
	}

	s.reports[report.ID] = report

	return nil
}

func (s *Storage) RunReports(
	_ context.Context,
	limit int32,
	offset int64,
) (*types.Page[*types.RunReport], error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// Most recent first
	out := make([]*types.RunReport, 0, len(s.order))

	for i := len(s.order) - 1; i >= 0; i-- {
		out = append(out, s.reports[s.order[i]])
	}

	total := int64(len(out))

	if offset > total {
		return &types.Page[*types.RunReport]{
			Results: nil,
			Total:   total,
		}, nil
	}

	start := int(offset)
	end := start + int(limit)

	if end > len(out) {
		end = len(out)
	}

	return &types.Page[*types.RunReport]{
		Results: out[start:end],
		Total:   total,
	}, nil
}

func (s *Storage) RunReport(_ context.Context, id string) (*types.RunReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	report, exists := s.reports[id]
	if !exists {
		return nil, nil //nolint:nilnil // valid case
	}

	return report, nil
}

func (s *Storage) ListProviders(_ context.Context) ([]string, error) {
	s.mu.RLock()

	seen := make(map[string]struct{})

	for _, record := range s.records {
		seen[record.providerID] = struct{}{}
	}

	s.mu.RUnlock()

	out := make([]string, 0, len(seen))

	for id := range seen {
		out = append(out, id)
	}

	sort.Strings(out)

	return out, nil
}

// RecordCount returns the number of stored records for the provider
func (s *Storage) RecordCount(providerID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0

	for _, record := range s.records {
		if record.providerID == providerID {
			count++
		}
	}

	return count
}
