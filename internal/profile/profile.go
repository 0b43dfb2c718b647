package profile

import (
	"errors"
	"math"
	"sort"
	"strings"

	"vizplan/internal/dataset"
)

// ErrInsufficientData is returned when a dataset has no columns or no rows.
// Nothing meaningful can be profiled, so the whole pipeline fails.
var ErrInsufficientData = errors.New("insufficient data: dataset needs at least one column and one row")

// Type is the semantic type inferred for a column.
type Type string

const (
	TypeDate        Type = "date"
	TypeNumeric     Type = "numeric"
	TypeCategorical Type = "categorical"
	TypeBoolean     Type = "boolean"
	TypeID          Type = "id"
	TypeText        Type = "text"
)

// Classification thresholds. A column is an id when its distinct-value
// ratio exceeds idRatio; text when its average string length exceeds
// textAvgLen; date/numeric when at least parseShare of non-null values
// parse as such.
const (
	idRatio    = 0.70
	textAvgLen = 60.0
	parseShare = 0.50
	sampleSize = 3
)

// NumericStats describes a numeric column.
type NumericStats struct {
	Min        float64 `json:"min"`
	Max        float64 `json:"max"`
	Mean       float64 `json:"mean"`
	Std        float64 `json:"std"`
	OutlierPct float64 `json:"outlier_pct"` // % of values beyond 3 std from mean
}

// DateStats describes a date column.
type DateStats struct {
	Min         string  `json:"min"`
	Max         string  `json:"max"`
	Granularity string  `json:"granularity"` // "day" or "month"
	ValidPct    float64 `json:"valid_pct"`   // % of non-null values that parsed
}

// CategoricalStats describes a categorical or boolean column.
type CategoricalStats struct {
	Sample      []string `json:"sample"`        // most frequent distinct values
	TopSharePct float64  `json:"top_share_pct"` // share of the dominant value
}

// ColumnProfile is the immutable statistical summary of one source column.
// Type is a pure function of the raw values and is never revised afterwards.
type ColumnProfile struct {
	Name        string            `json:"name"`
	DType       string            `json:"dtype"` // raw storage type from the loader
	Type        Type              `json:"inferred_type"`
	Cardinality int               `json:"cardinality"` // distinct non-null values
	NullPct     float64           `json:"null_pct"`    // 0..100
	Numeric     *NumericStats     `json:"numeric,omitempty"`
	Date        *DateStats        `json:"date,omitempty"`
	Categorical *CategoricalStats `json:"categorical,omitempty"`
	Note        string            `json:"note,omitempty"`
}

// Profiles is the full profile of a dataset.
type Profiles struct {
	Columns  []ColumnProfile `json:"columns"`
	RowCount int             `json:"row_count"`
	Source   string          `json:"source_file"`
}

// ByName returns the profile of the named column, or nil.
func (p *Profiles) ByName(name string) *ColumnProfile {
	for i := range p.Columns {
		if p.Columns[i].Name == name {
			return &p.Columns[i]
		}
	}
	return nil
}

// Names returns all column names in source order.
func (p *Profiles) Names() []string {
	names := make([]string, len(p.Columns))
	for i, c := range p.Columns {
		names[i] = c.Name
	}
	return names
}

// Build profiles every column of a table. It fails only for an empty
// dataset; individual anomalies (empty columns, unparseable dates) are
// absorbed into conservative classifications.
func Build(t *dataset.Table) (*Profiles, error) {
	if len(t.Headers) == 0 || len(t.Rows) == 0 {
		return nil, ErrInsufficientData
	}

	columns := make([]ColumnProfile, len(t.Headers))
	for i, name := range t.Headers {
		kind := dataset.KindString
		if i < len(t.RawKinds) {
			kind = t.RawKinds[i]
		}
		columns[i] = profileColumn(name, kind, t.Column(i), len(t.Rows))
	}

	return &Profiles{
		Columns:  columns,
		RowCount: len(t.Rows),
		Source:   t.SourceFile,
	}, nil
}

// profileColumn classifies one column. Rules are checked in a fixed order;
// the first match wins.
func profileColumn(name, rawKind string, values []string, rowCount int) ColumnProfile {
	var nonNull []string
	for _, v := range values {
		if !dataset.IsMissing(v) {
			nonNull = append(nonNull, strings.TrimSpace(v))
		}
	}

	distinct := map[string]int{}
	for _, v := range nonNull {
		distinct[v]++
	}

	p := ColumnProfile{
		Name:        name,
		DType:       rawKind,
		Cardinality: len(distinct),
		NullPct:     round1(float64(rowCount-len(nonNull)) / float64(rowCount) * 100),
	}

	// A fully null column carries no signal at all.
	if len(nonNull) == 0 {
		p.Type = TypeCategorical
		p.Note = "all values missing"
		return p
	}

	// 1. Boolean: exactly two distinct non-null values.
	if len(distinct) == 2 {
		p.Type = TypeBoolean
		p.Categorical = categoricalStats(distinct, len(nonNull))
		return p
	}

	// 2. Date: at least half of the non-null values parse as dates.
	if parsed, stats := tryDates(nonNull); parsed {
		p.Type = TypeDate
		p.Date = stats
		return p
	}

	// 3. Numeric: native numeric storage, or strings that become floats
	// after stripping currency and thousands symbols.
	if stats, cleaned, ok := tryNumeric(nonNull, rawKind); ok {
		p.Type = TypeNumeric
		p.Numeric = stats
		if cleaned {
			p.Note = "currency/string cleaned to numeric"
		}
		return p
	}

	// 4. ID: nearly every value is distinct.
	if float64(len(distinct))/float64(len(nonNull)) > idRatio {
		p.Type = TypeID
		p.Note = "high cardinality identifier, excluded from charting"
		return p
	}

	// 5. Text: long free-form strings.
	if avgLen(nonNull) > textAvgLen {
		p.Type = TypeText
		return p
	}

	// 6. Everything else is categorical.
	p.Type = TypeCategorical
	p.Categorical = categoricalStats(distinct, len(nonNull))
	return p
}

// tryNumeric parses the values as floats, stripping currency symbols and
// thousands separators from string columns. Succeeds when the column is
// natively numeric or at least half the values convert.
func tryNumeric(nonNull []string, rawKind string) (stats *NumericStats, cleaned bool, ok bool) {
	var parsed []float64
	cleanedAny := false
	for _, v := range nonNull {
		f, cleaned, ok := parseFloat(v)
		if !ok {
			continue
		}
		parsed = append(parsed, f)
		cleanedAny = cleanedAny || cleaned
	}

	enough := float64(len(parsed)) >= float64(len(nonNull))*parseShare
	if rawKind != dataset.KindNumber && !enough {
		return nil, false, false
	}
	if len(parsed) == 0 {
		return nil, false, false
	}

	return numericStats(parsed), cleanedAny, true
}

func numericStats(values []float64) *NumericStats {
	min, max := values[0], values[0]
	sum := 0.0
	for _, v := range values {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
		sum += v
	}
	mean := sum / float64(len(values))

	variance := 0.0
	for _, v := range values {
		variance += (v - mean) * (v - mean)
	}
	std := math.Sqrt(variance / float64(len(values)))

	outliers := 0
	if std > 0 {
		for _, v := range values {
			if math.Abs(v-mean) > 3*std {
				outliers++
			}
		}
	}

	return &NumericStats{
		Min:        round4(min),
		Max:        round4(max),
		Mean:       round4(mean),
		Std:        round4(std),
		OutlierPct: round1(float64(outliers) / float64(len(values)) * 100),
	}
}

// categoricalStats records the most frequent values and the dominant
// value's share. Sample order is frequency-descending with a lexical
// tie-break so output is deterministic.
func categoricalStats(distinct map[string]int, total int) *CategoricalStats {
	type vc struct {
		value string
		count int
	}
	all := make([]vc, 0, len(distinct))
	for v, c := range distinct {
		all = append(all, vc{v, c})
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].count != all[j].count {
			return all[i].count > all[j].count
		}
		return all[i].value < all[j].value
	})

	n := sampleSize
	if n > len(all) {
		n = len(all)
	}
	sample := make([]string, n)
	for i := 0; i < n; i++ {
		sample[i] = all[i].value
	}

	topShare := 0.0
	if total > 0 && len(all) > 0 {
		topShare = round1(float64(all[0].count) / float64(total) * 100)
	}

	return &CategoricalStats{Sample: sample, TopSharePct: topShare}
}

func avgLen(values []string) float64 {
	if len(values) == 0 {
		return 0
	}
	total := 0
	for _, v := range values {
		total += len([]rune(v))
	}
	return float64(total) / float64(len(values))
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round4(v float64) float64 { return math.Round(v*10000) / 10000 }
