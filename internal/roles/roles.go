// Package roles decides which profiled columns serve as the primary
// measure, primary date, dimensions, secondary measures, or are ignored.
// An external suggester is tried first; a deterministic heuristic is always
// available. Using the fallback is an expected outcome, not an error: the
// result carries a plan source tag instead.
package roles

import (
	"sort"

	"vizplan/internal/profile"
)

// Plan sources.
const (
	SourceLLM      = "llm"
	SourceFallback = "fallback"
)

// MaxDimensions caps how many categorical columns are kept for grouping.
const MaxDimensions = 5

// Assignment maps profiled columns to semantic roles.
type Assignment struct {
	PrimaryMeasure    string   `json:"primary_measure,omitempty"`
	PrimaryDate       string   `json:"primary_date,omitempty"`
	Dimensions        []string `json:"dimensions"`
	SecondaryMeasures []string `json:"secondary_measures"`
	Ignore            []string `json:"ignore"`
}

// SuggestedChart is one chart proposed by the suggester alongside roles.
type SuggestedChart struct {
	ID        string            `json:"id"`
	Type      string            `json:"type"`
	Title     string            `json:"title"`
	Spec      map[string]string `json:"spec"`
	Rationale string            `json:"rationale"`
}

// Suggestion is a full role+chart proposal from the suggester.
type Suggestion struct {
	Roles  Assignment
	Charts []SuggestedChart
}

// Outcome is the result of role assignment, tagged with how it was produced.
type Outcome struct {
	Roles          Assignment
	PlanSource     string
	FallbackReason string           // set when PlanSource is "fallback"
	Suggested      []SuggestedChart // only on the suggester path
}

// Valid checks the assignment against the profile set: every referenced
// column must exist, primary measure/date must have the matching type, and
// no column may be both a dimension and ignored.
func (a Assignment) Valid(profiles *profile.Profiles) bool {
	if a.PrimaryMeasure != "" {
		p := profiles.ByName(a.PrimaryMeasure)
		if p == nil || p.Type != profile.TypeNumeric {
			return false
		}
	}
	if a.PrimaryDate != "" {
		p := profiles.ByName(a.PrimaryDate)
		if p == nil || p.Type != profile.TypeDate {
			return false
		}
	}
	if len(a.Dimensions) > MaxDimensions {
		return false
	}

	ignored := map[string]bool{}
	for _, name := range a.Ignore {
		if profiles.ByName(name) == nil {
			return false
		}
		ignored[name] = true
	}
	for _, name := range a.Dimensions {
		if profiles.ByName(name) == nil || ignored[name] {
			return false
		}
	}
	for _, name := range a.SecondaryMeasures {
		if profiles.ByName(name) == nil {
			return false
		}
	}
	return true
}

// Ignored reports whether a column is excluded from charting.
func (a Assignment) Ignored(name string) bool {
	for _, n := range a.Ignore {
		if n == name {
			return true
		}
	}
	return false
}

// Heuristic derives an assignment from profiles alone. Deterministic:
// identical profiles always produce the identical assignment.
//
//   - primary measure: the numeric column with the highest coefficient of
//     variation (most analytical signal)
//   - primary date: the date column with the best parse rate
//   - dimensions: up to 5 categoricals, lowest cardinality first
//   - secondary measures: remaining numerics in source order
//   - ignore: all id and text columns
func Heuristic(profiles *profile.Profiles) Assignment {
	var a Assignment
	a.Dimensions = []string{}
	a.SecondaryMeasures = []string{}
	a.Ignore = []string{}

	bestCV := -1.0
	for _, c := range profiles.Columns {
		switch c.Type {
		case profile.TypeNumeric:
			if c.Numeric == nil {
				continue
			}
			cv := 0.0
			if mean := abs(c.Numeric.Mean); mean > 0 {
				cv = c.Numeric.Std / mean
			}
			if cv > bestCV {
				bestCV = cv
				a.PrimaryMeasure = c.Name
			}
		case profile.TypeDate:
			if c.Date == nil {
				continue
			}
			if a.PrimaryDate == "" || c.Date.ValidPct > profiles.ByName(a.PrimaryDate).Date.ValidPct {
				a.PrimaryDate = c.Name
			}
		case profile.TypeID, profile.TypeText:
			a.Ignore = append(a.Ignore, c.Name)
		}
	}

	type dim struct {
		name        string
		cardinality int
		order       int
	}
	var dims []dim
	for i, c := range profiles.Columns {
		if c.Type == profile.TypeCategorical {
			dims = append(dims, dim{c.Name, c.Cardinality, i})
		}
	}
	// Lowest cardinality first: few distinct values chart best.
	sort.Slice(dims, func(i, j int) bool {
		if dims[i].cardinality != dims[j].cardinality {
			return dims[i].cardinality < dims[j].cardinality
		}
		return dims[i].order < dims[j].order
	})
	for _, d := range dims {
		if len(a.Dimensions) == MaxDimensions {
			break
		}
		a.Dimensions = append(a.Dimensions, d.name)
	}

	for _, c := range profiles.Columns {
		if c.Type == profile.TypeNumeric && c.Name != a.PrimaryMeasure {
			a.SecondaryMeasures = append(a.SecondaryMeasures, c.Name)
		}
	}

	return a
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
