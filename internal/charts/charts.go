// Package charts turns role assignments into concrete chart candidates.
// Every catalog type yields at least one candidate; ineligible ones are kept
// with a rejection reason so the manifest can explain what was considered.
package charts

import (
	"fmt"
	"strings"

	"vizplan/internal/profile"
	"vizplan/internal/roles"
)

// Type identifies a chart type from the catalog.
type Type string

const (
	TypeLine          Type = "line"
	TypeBarHorizontal Type = "bar_horizontal"
	TypeDonut         Type = "donut"
	TypeBarGrouped    Type = "bar_grouped"
	TypeScatter       Type = "scatter"
	TypeAreaStacked   Type = "area_stacked"
	TypeHeatmap       Type = "heatmap"
	TypeFunnel        Type = "funnel"
)

// Catalog lists all chart types in priority order. When two candidates tie
// on score, the earlier type wins.
var Catalog = []Type{
	TypeLine,
	TypeBarHorizontal,
	TypeDonut,
	TypeBarGrouped,
	TypeScatter,
	TypeAreaStacked,
	TypeHeatmap,
	TypeFunnel,
}

// Priority returns the catalog rank of a type, lower is better. Unknown
// types sort last.
func Priority(t Type) int {
	for i, c := range Catalog {
		if c == t {
			return i
		}
	}
	return len(Catalog)
}

// Eligibility bounds.
const (
	maxDonutSlices     = 8
	minHeatmapCard     = 2
	maxHeatmapCard     = 25
	maxGroupedSegments = 6
)

// Candidate is one concrete chart proposal. Score and selection state are
// filled in later by the scorer.
type Candidate struct {
	ID              string            `json:"id"`
	Type            Type              `json:"type"`
	Title           string            `json:"title"`
	Spec            map[string]string `json:"spec"`
	Rationale       string            `json:"rationale"`
	Eligible        bool              `json:"eligible"`
	RejectionReason string            `json:"rejection_reason,omitempty"`
	Score           float64           `json:"score"`
	Suggested       bool              `json:"suggested,omitempty"` // seeded by the plan suggester
}

// Generate builds the candidate set from roles and profiles. Output order
// and content are deterministic for identical inputs. Suggested charts from
// the planner are folded in first and marked; generation then guarantees at
// least one candidate per catalog type.
func Generate(profiles *profile.Profiles, assignment roles.Assignment, suggested []roles.SuggestedChart) []Candidate {
	g := generator{profiles: profiles, roles: assignment, seen: map[string]bool{}}

	for _, s := range suggested {
		g.addSuggested(s)
	}

	g.line()
	g.barHorizontal()
	g.donut()
	g.barGrouped()
	g.scatter()
	g.areaStacked()
	g.heatmap()
	g.funnel()

	return g.out
}

type generator struct {
	profiles *profile.Profiles
	roles    roles.Assignment
	out      []Candidate
	seen     map[string]bool
}

func (g *generator) add(c Candidate) {
	if g.seen[c.ID] {
		return
	}
	g.seen[c.ID] = true
	g.out = append(g.out, c)
}

// addSuggested folds in a planner-proposed chart. Proposals with unknown
// types or columns are dropped silently; everything else goes through the
// same structural rules as generated candidates, so a suggested donut over a
// 20-value dimension comes out ineligible just like a generated one would.
func (g *generator) addSuggested(s roles.SuggestedChart) {
	t := Type(s.Type)
	if Priority(t) == len(Catalog) {
		return
	}
	for _, col := range s.Spec {
		if g.profiles.ByName(col) == nil {
			return
		}
	}
	spec := g.normalizeSpec(t, s.Spec)
	eligible, reason := g.checkSpec(t, spec)
	title := s.Title
	if title == "" {
		title = string(t)
	}
	g.add(Candidate{
		ID:              s.ID,
		Type:            t,
		Title:           title,
		Spec:            spec,
		Rationale:       s.Rationale,
		Eligible:        eligible,
		RejectionReason: reason,
		Suggested:       true,
	})
}

// suggestedSpecKeys is the fixed read order for normalizing proposed specs,
// so the result is deterministic regardless of map iteration.
var suggestedSpecKeys = []string{"x", "y", "group", "value", "category", "stage"}

// normalizeSpec rewrites a proposed spec onto the catalog's per-type keys.
// Models tend to emit x/y/group for every chart type; the roles are
// re-derived from the referenced columns' profiled types so the scorer sees
// the same shape on both paths.
func (g *generator) normalizeSpec(t Type, spec map[string]string) map[string]string {
	var dates, nums, cats []string
	seen := map[string]bool{}
	for _, key := range suggestedSpecKeys {
		col, ok := spec[key]
		if !ok || seen[col] {
			continue
		}
		seen[col] = true
		switch g.profiles.ByName(col).Type {
		case profile.TypeDate:
			dates = append(dates, col)
		case profile.TypeNumeric:
			nums = append(nums, col)
		default:
			cats = append(cats, col)
		}
	}

	pick := func(cols []string, i int) (string, bool) {
		if i < len(cols) {
			return cols[i], true
		}
		return "", false
	}
	out := map[string]string{}
	set := func(key string, cols []string, i int) {
		if col, ok := pick(cols, i); ok {
			out[key] = col
		}
	}
	switch t {
	case TypeLine:
		set("x", dates, 0)
		set("y", nums, 0)
	case TypeBarHorizontal:
		set("x", nums, 0)
		set("y", cats, 0)
	case TypeDonut:
		set("value", nums, 0)
		set("category", cats, 0)
	case TypeBarGrouped:
		set("x", cats, 0)
		set("y", nums, 0)
		set("group", cats, 1)
	case TypeScatter:
		set("x", nums, 0)
		set("y", nums, 1)
	case TypeAreaStacked:
		set("x", dates, 0)
		set("y", nums, 0)
		set("group", cats, 0)
	case TypeHeatmap:
		set("x", cats, 0)
		set("y", cats, 1)
		set("value", nums, 0)
	case TypeFunnel:
		set("value", nums, 0)
		set("stage", cats, 0)
	}
	return out
}

// checkSpec applies the catalog's structural rules to a normalized spec:
// every role slot filled, no ignored columns, cardinality bounds honored.
func (g *generator) checkSpec(t Type, spec map[string]string) (bool, string) {
	for _, col := range spec {
		if g.roles.Ignored(col) {
			return false, fmt.Sprintf("column %q is excluded from charting", col)
		}
	}
	has := func(keys ...string) bool {
		for _, k := range keys {
			if _, ok := spec[k]; !ok {
				return false
			}
		}
		return true
	}

	switch t {
	case TypeLine:
		if !has("x", "y") {
			return false, "needs a date and a numeric column"
		}
	case TypeBarHorizontal:
		if !has("x", "y") {
			return false, "needs a categorical and a numeric column"
		}
	case TypeDonut:
		if !has("value", "category") {
			return false, "needs a categorical and a numeric column"
		}
		if p := g.profiles.ByName(spec["category"]); p.Cardinality > maxDonutSlices {
			return false, fmt.Sprintf("category %q has more than %d distinct values", spec["category"], maxDonutSlices)
		}
	case TypeBarGrouped:
		if !has("x", "y", "group") {
			return false, "needs two categorical columns and a numeric column"
		}
		if p := g.profiles.ByName(spec["group"]); p.Cardinality > maxGroupedSegments {
			return false, fmt.Sprintf("group dimension %q has more than %d distinct values", spec["group"], maxGroupedSegments)
		}
	case TypeScatter:
		if !has("x", "y") {
			return false, "needs two numeric columns"
		}
	case TypeAreaStacked:
		if !has("x", "y", "group") {
			return false, "needs a date, a categorical, and a numeric column"
		}
	case TypeHeatmap:
		if !has("x", "y", "value") {
			return false, "needs two categorical columns and a numeric column"
		}
		for _, key := range []string{"x", "y"} {
			if p := g.profiles.ByName(spec[key]); p.Cardinality < minHeatmapCard || p.Cardinality > maxHeatmapCard {
				return false, fmt.Sprintf("dimension %q needs %d-%d distinct values", spec[key], minHeatmapCard, maxHeatmapCard)
			}
		}
	case TypeFunnel:
		if !has("value", "stage") {
			return false, "needs a stage column and a numeric column"
		}
		p := g.profiles.ByName(spec["stage"])
		if p.Categorical == nil || !looksOrdered(p.Categorical.Sample) {
			return false, fmt.Sprintf("column %q does not look like ordered stages", spec["stage"])
		}
	}
	return true, ""
}

// hasType reports whether a candidate of this type already exists.
func (g *generator) hasType(t Type) bool {
	for _, c := range g.out {
		if c.Type == t {
			return true
		}
	}
	return false
}

// reject records an ineligible placeholder so every type appears.
func (g *generator) reject(t Type, reason string) {
	if g.hasType(t) {
		return
	}
	g.add(Candidate{
		ID:              fmt.Sprintf("%s_ineligible", t),
		Type:            t,
		Title:           titleCase(string(t)),
		Spec:            map[string]string{},
		Eligible:        false,
		RejectionReason: reason,
	})
}

func (g *generator) line() {
	if g.roles.PrimaryDate == "" {
		g.reject(TypeLine, "no date column available")
		return
	}
	if g.roles.PrimaryMeasure == "" {
		g.reject(TypeLine, "no numeric measure available")
		return
	}
	g.add(Candidate{
		ID:    fmt.Sprintf("line_%s_over_%s", slug(g.roles.PrimaryMeasure), slug(g.roles.PrimaryDate)),
		Type:  TypeLine,
		Title: fmt.Sprintf("%s over time", titleCase(g.roles.PrimaryMeasure)),
		Spec: map[string]string{
			"x": g.roles.PrimaryDate,
			"y": g.roles.PrimaryMeasure,
		},
		Rationale: fmt.Sprintf("Shows how %s develops across the date range.", g.roles.PrimaryMeasure),
		Eligible:  true,
	})
}

func (g *generator) barHorizontal() {
	if g.roles.PrimaryMeasure == "" {
		g.reject(TypeBarHorizontal, "no numeric measure available")
		return
	}
	if len(g.roles.Dimensions) == 0 {
		g.reject(TypeBarHorizontal, "no categorical dimension available")
		return
	}
	for _, dim := range g.roles.Dimensions {
		g.add(Candidate{
			ID:    fmt.Sprintf("bar_%s_by_%s", slug(g.roles.PrimaryMeasure), slug(dim)),
			Type:  TypeBarHorizontal,
			Title: fmt.Sprintf("%s by %s", titleCase(g.roles.PrimaryMeasure), titleCase(dim)),
			Spec: map[string]string{
				"x": g.roles.PrimaryMeasure,
				"y": dim,
			},
			Rationale: fmt.Sprintf("Compares %s across %s categories.", g.roles.PrimaryMeasure, dim),
			Eligible:  true,
		})
	}
}

func (g *generator) donut() {
	if g.roles.PrimaryMeasure == "" {
		g.reject(TypeDonut, "no numeric measure available")
		return
	}
	added := false
	for _, dim := range g.roles.Dimensions {
		p := g.profiles.ByName(dim)
		if p == nil || p.Cardinality > maxDonutSlices {
			continue
		}
		g.add(Candidate{
			ID:    fmt.Sprintf("donut_%s_by_%s", slug(g.roles.PrimaryMeasure), slug(dim)),
			Type:  TypeDonut,
			Title: fmt.Sprintf("%s share by %s", titleCase(g.roles.PrimaryMeasure), titleCase(dim)),
			Spec: map[string]string{
				"value":    g.roles.PrimaryMeasure,
				"category": dim,
			},
			Rationale: fmt.Sprintf("Shows each %s's share of total %s.", dim, g.roles.PrimaryMeasure),
			Eligible:  true,
		})
		added = true
	}
	if !added {
		g.reject(TypeDonut, fmt.Sprintf("no dimension with at most %d distinct values", maxDonutSlices))
	}
}

func (g *generator) barGrouped() {
	if g.roles.PrimaryMeasure == "" {
		g.reject(TypeBarGrouped, "no numeric measure available")
		return
	}
	if len(g.roles.Dimensions) < 2 {
		g.reject(TypeBarGrouped, "needs two categorical dimensions")
		return
	}
	// First dimension on the axis, second as group; the group must stay
	// small or the bars become unreadable.
	axis, group := g.roles.Dimensions[0], g.roles.Dimensions[1]
	if p := g.profiles.ByName(group); p != nil && p.Cardinality > maxGroupedSegments {
		g.reject(TypeBarGrouped, fmt.Sprintf("group dimension %q has more than %d distinct values", group, maxGroupedSegments))
		return
	}
	g.add(Candidate{
		ID:    fmt.Sprintf("bar_grouped_%s_by_%s_and_%s", slug(g.roles.PrimaryMeasure), slug(axis), slug(group)),
		Type:  TypeBarGrouped,
		Title: fmt.Sprintf("%s by %s and %s", titleCase(g.roles.PrimaryMeasure), titleCase(axis), titleCase(group)),
		Spec: map[string]string{
			"x":     axis,
			"y":     g.roles.PrimaryMeasure,
			"group": group,
		},
		Rationale: fmt.Sprintf("Breaks %s down by %s within each %s.", g.roles.PrimaryMeasure, group, axis),
		Eligible:  true,
	})
}

func (g *generator) scatter() {
	if g.roles.PrimaryMeasure == "" || len(g.roles.SecondaryMeasures) == 0 {
		g.reject(TypeScatter, "needs two numeric measures")
		return
	}
	other := g.roles.SecondaryMeasures[0]
	g.add(Candidate{
		ID:    fmt.Sprintf("scatter_%s_vs_%s", slug(g.roles.PrimaryMeasure), slug(other)),
		Type:  TypeScatter,
		Title: fmt.Sprintf("%s vs %s", titleCase(g.roles.PrimaryMeasure), titleCase(other)),
		Spec: map[string]string{
			"x": other,
			"y": g.roles.PrimaryMeasure,
		},
		Rationale: fmt.Sprintf("Reveals the relationship between %s and %s.", other, g.roles.PrimaryMeasure),
		Eligible:  true,
	})
}

func (g *generator) areaStacked() {
	if g.roles.PrimaryDate == "" {
		g.reject(TypeAreaStacked, "no date column available")
		return
	}
	if g.roles.PrimaryMeasure == "" || len(g.roles.Dimensions) == 0 {
		g.reject(TypeAreaStacked, "needs a measure and a dimension alongside the date")
		return
	}
	dim := g.roles.Dimensions[0]
	g.add(Candidate{
		ID:    fmt.Sprintf("area_%s_over_%s_by_%s", slug(g.roles.PrimaryMeasure), slug(g.roles.PrimaryDate), slug(dim)),
		Type:  TypeAreaStacked,
		Title: fmt.Sprintf("%s over time by %s", titleCase(g.roles.PrimaryMeasure), titleCase(dim)),
		Spec: map[string]string{
			"x":     g.roles.PrimaryDate,
			"y":     g.roles.PrimaryMeasure,
			"group": dim,
		},
		Rationale: fmt.Sprintf("Shows how each %s contributes to %s over time.", dim, g.roles.PrimaryMeasure),
		Eligible:  true,
	})
}

func (g *generator) heatmap() {
	var usable []string
	for _, dim := range g.roles.Dimensions {
		p := g.profiles.ByName(dim)
		if p != nil && p.Cardinality >= minHeatmapCard && p.Cardinality <= maxHeatmapCard {
			usable = append(usable, dim)
		}
	}
	if len(usable) < 2 {
		g.reject(TypeHeatmap, fmt.Sprintf("needs two dimensions with %d-%d distinct values", minHeatmapCard, maxHeatmapCard))
		return
	}
	if g.roles.PrimaryMeasure == "" {
		g.reject(TypeHeatmap, "no numeric measure available")
		return
	}
	g.add(Candidate{
		ID:    fmt.Sprintf("heatmap_%s_by_%s_and_%s", slug(g.roles.PrimaryMeasure), slug(usable[0]), slug(usable[1])),
		Type:  TypeHeatmap,
		Title: fmt.Sprintf("%s heatmap: %s x %s", titleCase(g.roles.PrimaryMeasure), titleCase(usable[0]), titleCase(usable[1])),
		Spec: map[string]string{
			"x":     usable[0],
			"y":     usable[1],
			"value": g.roles.PrimaryMeasure,
		},
		Rationale: fmt.Sprintf("Highlights %s concentrations across %s and %s.", g.roles.PrimaryMeasure, usable[0], usable[1]),
		Eligible:  true,
	})
}

func (g *generator) funnel() {
	if g.roles.PrimaryMeasure == "" {
		g.reject(TypeFunnel, "no numeric measure available")
		return
	}
	for _, dim := range g.roles.Dimensions {
		p := g.profiles.ByName(dim)
		if p == nil || p.Categorical == nil {
			continue
		}
		if !looksOrdered(p.Categorical.Sample) {
			continue
		}
		g.add(Candidate{
			ID:    fmt.Sprintf("funnel_%s_by_%s", slug(g.roles.PrimaryMeasure), slug(dim)),
			Type:  TypeFunnel,
			Title: fmt.Sprintf("%s funnel by %s", titleCase(g.roles.PrimaryMeasure), titleCase(dim)),
			Spec: map[string]string{
				"value": g.roles.PrimaryMeasure,
				"stage": dim,
			},
			Rationale: fmt.Sprintf("%s looks like ordered stages; shows drop-off in %s.", dim, g.roles.PrimaryMeasure),
			Eligible:  true,
		})
		return
	}
	g.reject(TypeFunnel, "no dimension with ordered stage values")
}

// stageKeywords mark categorical values that represent process stages.
var stageKeywords = []string{
	"lead", "qualified", "proposal", "negotiation", "won", "lost", "closed",
	"awareness", "interest", "consideration", "conversion", "retention",
	"applied", "screened", "interviewed", "offered", "hired",
	"stage", "step", "phase",
}

// looksOrdered detects ordered stage values: numeric prefixes like "1. Lead"
// or known funnel-stage vocabulary.
func looksOrdered(sample []string) bool {
	if len(sample) == 0 {
		return false
	}
	prefixed := 0
	keyword := 0
	for _, v := range sample {
		trimmed := strings.TrimSpace(v)
		if len(trimmed) > 1 && trimmed[0] >= '0' && trimmed[0] <= '9' {
			switch trimmed[1] {
			case '.', ')', '-', ' ', ':':
				prefixed++
			}
		}
		lower := strings.ToLower(trimmed)
		for _, kw := range stageKeywords {
			if strings.Contains(lower, kw) {
				keyword++
				break
			}
		}
	}
	return prefixed == len(sample) || keyword >= (len(sample)+1)/2
}

func slug(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return strings.Trim(b.String(), "_")
}

func titleCase(name string) string {
	words := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-' || r == ' '
	})
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
