package ingest

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateDescriptors(t *testing.T, count int) []*Descriptor {
	t.Helper()

	descriptors := make([]*Descriptor, 0, count)

	for i := 0; i < count; i++ {
		descriptors = append(
			descriptors,
			descriptorFor(fmt.Sprintf("provider-%02d", i), &mockProvider{}, Metadata{}),
		)
	}

	return descriptors
}

func TestAssignment_Validate(t *testing.T) {
	t.Parallel()

	testTable := []struct {
		name       string
		assignment Assignment
		valid      bool
	}{
		{
			"zero total",
			Assignment{Index: 0, Total: 0},
			false,
		},
		{
			"negative total",
			Assignment{Index: 0, Total: -1},
			false,
		},
		{
			"negative index",
			Assignment{Index: -1, Total: 2},
			false,
		},
		{
			"index out of range",
			Assignment{Index: 2, Total: 2},
			false,
		},
		{
			"single shard",
			Assignment{Index: 0, Total: 1},
			true,
		},
		{
			"last shard",
			Assignment{Index: 4, Total: 5},
			true,
		},
	}

	for _, testCase := range testTable {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			err := testCase.assignment.Validate()

			if testCase.valid {
				assert.NoError(t, err)

				return
			}

			assert.ErrorIs(t, err, ErrInvalidAssignment)
		})
	}
}

func TestPlan_InvalidAssignment(t *testing.T) {
	t.Parallel()

	_, err := Plan(generateDescriptors(t, 3), Assignment{Index: 3, Total: 3})

	assert.ErrorIs(t, err, ErrInvalidAssignment)
}

func TestPlan_SingleShard(t *testing.T) {
	t.Parallel()

	descriptors := generateDescriptors(t, 5)

	owned, err := Plan(descriptors, Assignment{Index: 0, Total: 1})
	require.NoError(t, err)

	// A single shard owns everything, in canonical order
	require.Len(t, owned, len(descriptors))

	for i, descriptor := range owned {
		assert.Equal(t, fmt.Sprintf("provider-%02d", i), descriptor.ID)
	}
}

func TestPlan_TwoShards(t *testing.T) {
	t.Parallel()

	descriptors := generateDescriptors(t, 5)

	first, err := Plan(descriptors, Assignment{Index: 0, Total: 2})
	require.NoError(t, err)

	second, err := Plan(descriptors, Assignment{Index: 1, Total: 2})
	require.NoError(t, err)

	assert.Equal(t, []string{"provider-00", "provider-02", "provider-04"}, planIDs(first))
	assert.Equal(t, []string{"provider-01", "provider-03"}, planIDs(second))
}

func TestPlan_Partition(t *testing.T) {
	t.Parallel()

	var (
		descriptors = generateDescriptors(t, 17)
		totals      = []int{1, 2, 3, 5, 17, 20}
	)

	for _, total := range totals {
		seen := make(map[string]int)

		minOwned, maxOwned := len(descriptors), 0

		for index := 0; index < total; index++ {
			owned, err := Plan(descriptors, Assignment{Index: index, Total: total})
			require.NoError(t, err)

			for _, descriptor := range owned {
				seen[descriptor.ID]++
			}

			if len(owned) < minOwned {
				minOwned = len(owned)
			}

			if len(owned) > maxOwned {
				maxOwned = len(owned)
			}
		}

		// Every descriptor is owned by exactly one shard
		require.Len(t, seen, len(descriptors))

		for id, count := range seen {
			assert.Equalf(t, 1, count, "descriptor %s owned %d times", id, count)
		}

		// Shard sizes differ by at most one descriptor
		assert.LessOrEqual(t, maxOwned-minOwned, 1)
	}
}

func TestPlan_Deterministic(t *testing.T) {
	t.Parallel()

	var (
		descriptors = generateDescriptors(t, 8)
		assignment  = Assignment{Index: 1, Total: 3}
	)

	reference, err := Plan(descriptors, assignment)
	require.NoError(t, err)

	// Shuffle the input ordering; ownership must not change
	shuffled := []*Descriptor{
		descriptors[5], descriptors[0], descriptors[7], descriptors[2],
		descriptors[6], descriptors[1], descriptors[3], descriptors[4],
	}

	owned, err := Plan(shuffled, assignment)
	require.NoError(t, err)

	assert.Equal(t, planIDs(reference), planIDs(owned))
}

func TestPlan_EmptyInput(t *testing.T) {
	t.Parallel()

	owned, err := Plan(nil, Assignment{Index: 0, Total: 4})
	require.NoError(t, err)

	assert.Empty(t, owned)
}

func planIDs(descriptors []*Descriptor) []string {
	ids := make([]string, 0, len(descriptors))

	for _, descriptor := range descriptors {
		ids = append(ids, descriptor.ID)
	}

	return ids
}
