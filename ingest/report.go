package ingest

import (
	"sort"

	"github.com/sig-0/harvest/storage/types"
)

// sortOutcomes orders outcomes into the canonical provider ordering,
// regardless of completion order
func sortOutcomes(outcomes []*types.ProviderOutcome) {
	sort.Slice(outcomes, func(i, j int) bool {
		return outcomes[i].ProviderID < outcomes[j].ProviderID
	})
}

// reportStatus derives the overall run status from the outcomes.
// AllOk iff every outcome succeeded (vacuously, for an empty shard),
// TotalFailure iff none did, PartialFailure otherwise
func reportStatus(outcomes []*types.ProviderOutcome) types.RunStatus {
	succeeded := 0

	for _, outcome := range outcomes {
		if outcome.Status == types.OutcomeSucceeded {
			succeeded++
		}
	}

	switch {
	case succeeded == len(outcomes):
		return types.RunAllOk
	case succeeded == 0:
		return types.RunTotalFailure
	default:
		return types.RunPartialFailure
	}
}
