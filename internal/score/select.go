package score

import (
	"sort"

	"vizplan/internal/charts"
)

// Skip reasons reported in the manifest.
const (
	ReasonBelowThreshold = "below quality threshold"
	ReasonExceededCap    = "exceeded chart cap"
)

// Skipped is a candidate that was not selected, with the reason.
type Skipped struct {
	Candidate charts.Candidate
	Reason    string
}

// Select orders scored candidates and applies the score threshold and the
// chart cap. Ordering is deterministic: score descending, then catalog
// priority, then ID. Ineligible candidates pass straight through to the
// skipped list with their rejection reason.
func Select(candidates []charts.Candidate, minScore float64, maxCharts int) (selected []charts.Candidate, skipped []Skipped) {
	var eligible []charts.Candidate
	for _, c := range candidates {
		if c.Eligible {
			eligible = append(eligible, c)
			continue
		}
		skipped = append(skipped, Skipped{Candidate: c, Reason: c.RejectionReason})
	}

	sort.SliceStable(eligible, func(i, j int) bool {
		if eligible[i].Score != eligible[j].Score {
			return eligible[i].Score > eligible[j].Score
		}
		pi, pj := charts.Priority(eligible[i].Type), charts.Priority(eligible[j].Type)
		if pi != pj {
			return pi < pj
		}
		return eligible[i].ID < eligible[j].ID
	})

	for _, c := range eligible {
		switch {
		case c.Score < minScore:
			skipped = append(skipped, Skipped{Candidate: c, Reason: ReasonBelowThreshold})
		case len(selected) >= maxCharts:
			skipped = append(skipped, Skipped{Candidate: c, Reason: ReasonExceededCap})
		default:
			selected = append(selected, c)
		}
	}
	return selected, skipped
}
