package quality

import (
	"testing"

	"vizplan/internal/profile"
)

func profilesOf(cols ...profile.ColumnProfile) *profile.Profiles {
	return &profile.Profiles{Columns: cols, RowCount: 100, Source: "test.csv"}
}

func numericCol(name string, mean, std, outlierPct float64) profile.ColumnProfile {
	return profile.ColumnProfile{
		Name: name, Type: profile.TypeNumeric,
		Numeric: &profile.NumericStats{Mean: mean, Std: std, OutlierPct: outlierPct},
	}
}

func TestGrades(t *testing.T) {
	cases := []struct {
		score float64
		want  string
	}{
		{92, "A"}, {85, "A"}, {84.9, "B"}, {70, "B"}, {60, "C"}, {55, "C"}, {54.9, "D"}, {0, "D"},
	}
	for _, c := range cases {
		if got := Grade(c.score); got != c.want {
			t.Errorf("Grade(%v) = %s, want %s", c.score, got, c.want)
		}
	}
}

func TestPerfectDataset(t *testing.T) {
	p := profilesOf(
		numericCol("sales", 100, 50, 0),
		profile.ColumnProfile{
			Name: "region", Type: profile.TypeCategorical, Cardinality: 4,
			Categorical: &profile.CategoricalStats{TopSharePct: 30},
		},
		profile.ColumnProfile{
			Name: "month", Type: profile.TypeDate,
			Date: &profile.DateStats{ValidPct: 100},
		},
	)
	q := Build(p)
	if q.Summary.Score != 100 {
		t.Errorf("expected score 100, got %.1f", q.Summary.Score)
	}
	if q.Summary.Grade != "A" {
		t.Errorf("expected grade A, got %s", q.Summary.Grade)
	}
}

func TestDeterministicScore(t *testing.T) {
	p := profilesOf(
		numericCol("a", 50, 10, 2),
		profile.ColumnProfile{Name: "b", Type: profile.TypeCategorical, Cardinality: 80},
	)
	s1 := Build(p).Summary.Score
	s2 := Build(p).Summary.Score
	if s1 != s2 {
		t.Errorf("identical profiles scored differently: %v vs %v", s1, s2)
	}
}

func TestCompletenessPenalty(t *testing.T) {
	full := profilesOf(numericCol("a", 100, 50, 0))
	sparse := profilesOf(func() profile.ColumnProfile {
		c := numericCol("a", 100, 50, 0)
		c.NullPct = 40
		return c
	}())
	if Build(sparse).Summary.Score >= Build(full).Summary.Score {
		t.Error("missing values should lower the score")
	}
}

func TestNeutralComponentsWithoutMatchingColumns(t *testing.T) {
	// Only a categorical column: variance, dates, and outliers are neutral.
	p := profilesOf(profile.ColumnProfile{
		Name: "region", Type: profile.TypeCategorical, Cardinality: 5,
	})
	c := Build(p).Summary.Components
	if c.Variance != 100 || c.ValidDates != 100 || c.Outliers != 100 {
		t.Errorf("expected neutral 100 components, got %+v", c)
	}
}

func TestSingleValuedCategoricalScoresZeroCardinality(t *testing.T) {
	p := profilesOf(profile.ColumnProfile{
		Name: "constant", Type: profile.TypeCategorical, Cardinality: 1,
	})
	if c := Build(p).Summary.Components.Cardinality; c != 0 {
		t.Errorf("expected cardinality component 0, got %.1f", c)
	}
}

func TestHighCardinalityPenalty(t *testing.T) {
	p := profilesOf(profile.ColumnProfile{
		Name: "sku", Type: profile.TypeCategorical, Cardinality: 70,
	})
	c := Build(p).Summary.Components.Cardinality
	if c != 60 {
		t.Errorf("expected cardinality component 60 for 70 distinct values, got %.1f", c)
	}
}

func TestBadDatesPenalty(t *testing.T) {
	p := profilesOf(profile.ColumnProfile{
		Name: "when", Type: profile.TypeDate,
		Date: &profile.DateStats{ValidPct: 60},
	})
	if c := Build(p).Summary.Components.ValidDates; c != 0 {
		t.Errorf("expected valid-dates component 0, got %.1f", c)
	}
}

func TestOutlierPenalty(t *testing.T) {
	clean := profilesOf(numericCol("a", 100, 50, 0))
	noisy := profilesOf(numericCol("a", 100, 50, 20))
	if Build(noisy).Summary.Score >= Build(clean).Summary.Score {
		t.Error("outliers should lower the score")
	}
}

func TestNotesOnWeakData(t *testing.T) {
	p := &profile.Profiles{
		Columns:  []profile.ColumnProfile{{Name: "a", Type: profile.TypeCategorical, Cardinality: 3, NullPct: 50}},
		RowCount: 5,
	}
	q := Build(p)
	if len(q.Summary.Notes) == 0 {
		t.Error("expected notes for sparse, tiny dataset")
	}
}
