package ingest

import (
	"errors"
	"fmt"
	"sort"
)

var ErrInvalidAssignment = errors.New("invalid shard assignment")

// Assignment identifies a single execution slot within a sharded run.
// Invariant: 0 <= Index < Total
type Assignment struct {
	Index int
	Total int
}

// Validate validates the shard assignment bounds
func (a Assignment) Validate() error {
	if a.Total <= 0 {
		return fmt.Errorf("%w: total must be positive, got %d", ErrInvalidAssignment, a.Total)
	}

	if a.Index < 0 || a.Index >= a.Total {
		return fmt.Errorf(
			"%w: index %d outside [0, %d)",
			ErrInvalidAssignment, a.Index, a.Total,
		)
	}

	return nil
}

// Plan selects the subset of descriptors owned by the given shard.
// Descriptors are first sorted by ID into the canonical ordering, and the
// descriptor at canonical position i belongs to shard i mod Total. The
// result is deterministic for a fixed input set regardless of registration
// order, balanced within one descriptor across shards, and the union over
// all shard indices is an exact partition of the input
func Plan(descriptors []*Descriptor, assignment Assignment) ([]*Descriptor, error) {
	if err := assignment.Validate(); err != nil {
		return nil, err
	}

	canonical := make([]*Descriptor, len(descriptors))
	copy(canonical, descriptors)

	sort.Slice(canonical, func(i, j int) bool {
		return canonical[i].ID < canonical[j].ID
	})

	owned := make([]*Descriptor, 0, (len(canonical)+assignment.Total-1)/assignment.Total)

	for i, descriptor := range canonical {
		if i%assignment.Total == assignment.Index {
			owned = append(owned, descriptor)
		}
	}

	return owned, nil
}
