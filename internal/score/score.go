// Package score rates chart candidates and selects which ones to generate.
// Each chart type has its own heuristic starting at a common base; the
// result is scaled by the dataset's overall quality score, so a weak dataset
// depresses all charts uniformly.
package score

import (
	"math"
	"time"

	"vizplan/internal/charts"
	"vizplan/internal/profile"
)

const base = 70.0

// Rate computes the heuristic score for every eligible candidate, scaled by
// the dataset quality score (0-100). Candidates are scored in place.
func Rate(candidates []charts.Candidate, profiles *profile.Profiles, qualityScore float64) {
	scale := qualityScore / 100
	for i := range candidates {
		if !candidates[i].Eligible {
			continue
		}
		h := heuristic(&candidates[i], profiles)
		candidates[i].Score = round1(clamp(h) * scale)
	}
}

func heuristic(c *charts.Candidate, profiles *profile.Profiles) float64 {
	switch c.Type {
	case charts.TypeLine:
		return lineScore(c, profiles)
	case charts.TypeBarHorizontal:
		return barScore(c, profiles)
	case charts.TypeDonut:
		return donutScore(c, profiles)
	case charts.TypeBarGrouped:
		return groupedScore(c, profiles)
	case charts.TypeScatter:
		return scatterScore(c, profiles)
	case charts.TypeAreaStacked:
		return areaScore(c, profiles)
	case charts.TypeHeatmap:
		return heatmapScore(c, profiles)
	case charts.TypeFunnel:
		return funnelScore(c, profiles)
	}
	return base
}

// lineScore rewards long, well-parsed date ranges and visible variance;
// outliers and bad dates pull it down.
func lineScore(c *charts.Candidate, profiles *profile.Profiles) float64 {
	s := base
	if d := profiles.ByName(c.Spec["x"]); d != nil && d.Date != nil {
		s += math.Min(18, float64(periods(d.Date))*2.2)
		s -= math.Max(0, (90-d.Date.ValidPct)*0.6)
	}
	if m := profiles.ByName(c.Spec["y"]); m != nil && m.Numeric != nil {
		s += math.Min(8, cv(m.Numeric)*100)
		s -= math.Min(20, m.Numeric.OutlierPct*0.8)
	}
	return s
}

// barScore rewards category diversity and penalizes a dominant category.
func barScore(c *charts.Candidate, profiles *profile.Profiles) float64 {
	s := base
	if d := profiles.ByName(c.Spec["y"]); d != nil {
		s += math.Min(12, float64(d.Cardinality-1)*1.8)
		if d.Categorical != nil {
			s -= math.Max(0, d.Categorical.TopSharePct-70) * 0.7
		}
	}
	return s
}

// donutScore likes a handful of slices and hates one slice owning the pie.
func donutScore(c *charts.Candidate, profiles *profile.Profiles) float64 {
	s := base
	if d := profiles.ByName(c.Spec["category"]); d != nil {
		s += math.Min(10, float64(d.Cardinality)*1.5)
		if d.Categorical != nil {
			s -= math.Max(0, d.Categorical.TopSharePct-55) * 1.1
		}
	}
	return s
}

func groupedScore(c *charts.Candidate, profiles *profile.Profiles) float64 {
	s := base
	if axis := profiles.ByName(c.Spec["x"]); axis != nil {
		s += math.Min(10, float64(axis.Cardinality-1)*1.5)
		s -= math.Max(0, float64(axis.Cardinality-12))
	}
	if group := profiles.ByName(c.Spec["group"]); group != nil {
		s += math.Min(6, float64(group.Cardinality-1)*1.2)
	}
	return s
}

// scatterScore rewards variance on both axes; heavy outliers distort the
// point cloud, so they cost more here than elsewhere.
func scatterScore(c *charts.Candidate, profiles *profile.Profiles) float64 {
	s := base
	for _, axis := range []string{"x", "y"} {
		if m := profiles.ByName(c.Spec[axis]); m != nil && m.Numeric != nil {
			s += math.Min(6, cv(m.Numeric)*80)
			s -= math.Min(12, m.Numeric.OutlierPct*1.0)
		}
	}
	return s
}

func areaScore(c *charts.Candidate, profiles *profile.Profiles) float64 {
	s := lineScore(c, profiles)
	if group := profiles.ByName(c.Spec["group"]); group != nil {
		s += math.Min(6, float64(group.Cardinality))
		// Too many bands make a stacked area unreadable.
		s -= math.Max(0, float64(group.Cardinality-6)*2)
	}
	return s
}

// heatmapScore wants enough rows to fill the grid; sparse grids render as
// mostly empty cells.
func heatmapScore(c *charts.Candidate, profiles *profile.Profiles) float64 {
	s := base
	x := profiles.ByName(c.Spec["x"])
	y := profiles.ByName(c.Spec["y"])
	if x != nil && y != nil {
		cells := float64(x.Cardinality * y.Cardinality)
		if cells > 0 {
			density := float64(profiles.RowCount) / cells
			s += math.Min(10, density*2)
			if density < 1 {
				s -= (1 - density) * 25
			}
		}
	}
	return s
}

func funnelScore(c *charts.Candidate, profiles *profile.Profiles) float64 {
	s := base
	if d := profiles.ByName(c.Spec["stage"]); d != nil {
		s += math.Min(10, float64(d.Cardinality)*2)
		s -= math.Max(0, float64(d.Cardinality-8)*3)
	}
	return s
}

// periods counts time buckets between min and max at the column granularity.
func periods(d *profile.DateStats) int {
	min, err1 := time.Parse("2006-01-02", d.Min)
	max, err2 := time.Parse("2006-01-02", d.Max)
	if err1 != nil || err2 != nil || max.Before(min) {
		return 1
	}
	if d.Granularity == "day" {
		return int(max.Sub(min).Hours()/24) + 1
	}
	y1, m1, _ := min.Date()
	y2, m2, _ := max.Date()
	return (y2-y1)*12 + int(m2) - int(m1) + 1
}

func cv(n *profile.NumericStats) float64 {
	if mean := math.Abs(n.Mean); mean > 0 {
		return n.Std / mean
	}
	return 0
}

func clamp(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
