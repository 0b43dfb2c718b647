// Package quality derives a 0-100 data quality score from column profiles.
// The score is a pure function of the profiles: identical inputs always
// produce the identical score and grade. The summary score later scales all
// chart scores, so a weak dataset depresses every chart uniformly.
package quality

import (
	"math"

	"vizplan/internal/profile"
)

// Component weights. Fixed and documented; they sum to 1.0.
const (
	weightCompleteness = 0.30
	weightVariance     = 0.20
	weightCardinality  = 0.15
	weightValidDates   = 0.20
	weightOutliers     = 0.15
)

// Categorical cardinality bounds for charting. Below minUsefulCardinality a
// dimension has no discriminating power; above maxFriendlyCardinality it is
// chart-unfriendly.
const (
	minUsefulCardinality   = 2
	maxFriendlyCardinality = 50
)

// Components holds the five independent quality scores, each in [0,100].
type Components struct {
	Completeness float64 `json:"completeness"`
	Variance     float64 `json:"variance"`
	Cardinality  float64 `json:"cardinality"`
	ValidDates   float64 `json:"valid_dates"`
	Outliers     float64 `json:"outliers"`
}

// Summary combines the components into one overall score and letter grade.
type Summary struct {
	Score      float64    `json:"score"`
	Grade      string     `json:"grade"`
	Components Components `json:"component_scores"`
	Notes      []string   `json:"notes,omitempty"`
}

// Profile is the full data quality profile of a dataset.
type Profile struct {
	Summary  Summary `json:"summary"`
	RowCount int     `json:"row_count"`
}

// Build computes the quality profile from column profiles and row count.
func Build(profiles *profile.Profiles) *Profile {
	c := Components{
		Completeness: completenessScore(profiles),
		Variance:     varianceScore(profiles),
		Cardinality:  cardinalityScore(profiles),
		ValidDates:   validDatesScore(profiles),
		Outliers:     outliersScore(profiles),
	}

	score := c.Completeness*weightCompleteness +
		c.Variance*weightVariance +
		c.Cardinality*weightCardinality +
		c.ValidDates*weightValidDates +
		c.Outliers*weightOutliers
	score = round1(score)

	return &Profile{
		Summary: Summary{
			Score:      score,
			Grade:      Grade(score),
			Components: c,
			Notes:      notes(c, profiles),
		},
		RowCount: profiles.RowCount,
	}
}

// Grade maps a score to a letter grade.
func Grade(score float64) string {
	switch {
	case score >= 85:
		return "A"
	case score >= 70:
		return "B"
	case score >= 55:
		return "C"
	default:
		return "D"
	}
}

// completenessScore is 100 minus the mean null percentage across columns.
func completenessScore(p *profile.Profiles) float64 {
	if len(p.Columns) == 0 {
		return 0
	}
	total := 0.0
	for _, c := range p.Columns {
		total += c.NullPct
	}
	return clamp(round1(100 - total/float64(len(p.Columns))))
}

// varianceScore rewards numeric spread. A column scores by its coefficient
// of variation; near-constant columns drag the component down. Neutral 100
// when the dataset has no numeric columns.
func varianceScore(p *profile.Profiles) float64 {
	var scores []float64
	for _, c := range p.Columns {
		if c.Type != profile.TypeNumeric || c.Numeric == nil {
			continue
		}
		cv := 0.0
		if mean := math.Abs(c.Numeric.Mean); mean > 0 {
			cv = c.Numeric.Std / mean
		}
		scores = append(scores, clamp(cv*400))
	}
	if len(scores) == 0 {
		return 100
	}
	return round1(average(scores))
}

// cardinalityScore penalizes categorical columns that are either
// single-valued or far too granular to chart.
func cardinalityScore(p *profile.Profiles) float64 {
	var scores []float64
	for _, c := range p.Columns {
		if c.Type != profile.TypeCategorical {
			continue
		}
		switch {
		case c.Cardinality < minUsefulCardinality:
			scores = append(scores, 0)
		case c.Cardinality > maxFriendlyCardinality:
			over := float64(c.Cardinality - maxFriendlyCardinality)
			scores = append(scores, clamp(100-over*2))
		default:
			scores = append(scores, 100)
		}
	}
	if len(scores) == 0 {
		return 100
	}
	return round1(average(scores))
}

// validDatesScore is the percentage of date columns whose parse success
// rate exceeds 90%. Neutral 100 when no date column exists.
func validDatesScore(p *profile.Profiles) float64 {
	total, valid := 0, 0
	for _, c := range p.Columns {
		if c.Type != profile.TypeDate || c.Date == nil {
			continue
		}
		total++
		if c.Date.ValidPct > 90 {
			valid++
		}
	}
	if total == 0 {
		return 100
	}
	return round1(float64(valid) / float64(total) * 100)
}

// outliersScore penalizes numeric columns with many values beyond three
// standard deviations from the mean.
func outliersScore(p *profile.Profiles) float64 {
	var scores []float64
	for _, c := range p.Columns {
		if c.Type != profile.TypeNumeric || c.Numeric == nil {
			continue
		}
		scores = append(scores, clamp(100-c.Numeric.OutlierPct*2.5))
	}
	if len(scores) == 0 {
		return 100
	}
	return round1(average(scores))
}

func notes(c Components, p *profile.Profiles) []string {
	var out []string
	if c.Completeness < 90 {
		out = append(out, "Some columns have missing values.")
	}
	if c.ValidDates < 90 {
		out = append(out, "Date validity is low; time-based charts may be incomplete.")
	}
	if c.Outliers < 75 {
		out = append(out, "Numeric columns contain many outliers that may distort charts.")
	}
	if c.Variance < 15 {
		out = append(out, "Numeric columns have very low variance; trend charts may add little insight.")
	}
	if p.RowCount < 20 {
		out = append(out, "Very few rows; aggregates may be unstable.")
	}
	return out
}

func average(values []float64) float64 {
	total := 0.0
	for _, v := range values {
		total += v
	}
	return total / float64(len(values))
}

func clamp(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
