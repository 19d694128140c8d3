// Package tally stores aggregate outcome counters keyed by (outcome, device
// class). Nothing here can reconstruct an individual candidate.
package tally

import (
	"sort"

	"screening/internal/eligibility"
	"screening/internal/platform/device"
)

type key struct {
	outcome eligibility.Outcome
	device  device.Class
}

// sorted flattens counts into rows ordered by outcome precedence then device.
func sorted(counts map[key]int64) []eligibility.OutcomeCount {
	rows := make([]eligibility.OutcomeCount, 0, len(counts))
	for k, n := range counts {
		rows = append(rows, eligibility.OutcomeCount{
			Outcome:     k.outcome,
			DeviceClass: string(k.device),
			Count:       n,
		})
	}
	rank := make(map[eligibility.Outcome]int, len(eligibility.Outcomes))
	for i, o := range eligibility.Outcomes {
		rank[o] = i
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Outcome != rows[j].Outcome {
			return rank[rows[i].Outcome] < rank[rows[j].Outcome]
		}
		return rows[i].DeviceClass < rows[j].DeviceClass
	})
	return rows
}
