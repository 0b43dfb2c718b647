// Package manifest assembles the final run manifest. Build is pure: it only
// arranges results produced by earlier stages, so rebuilding from the same
// inputs yields a byte-identical manifest.
package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"vizplan/internal/quality"
	"vizplan/internal/render"
	"vizplan/internal/roles"
	"vizplan/internal/score"
)

// GeneratedChart is a chart that rendered successfully.
type GeneratedChart struct {
	ID        string            `json:"id"`
	Type      string            `json:"type"`
	Title     string            `json:"title"`
	Spec      map[string]string `json:"spec"`
	Rationale string            `json:"rationale,omitempty"`
	Score     float64           `json:"score"`
	Artifact  string            `json:"artifact"`
	Suggested bool              `json:"suggested,omitempty"`
}

// SkippedChart is a candidate that was considered but not generated.
type SkippedChart struct {
	ID     string  `json:"id"`
	Type   string  `json:"type"`
	Title  string  `json:"title"`
	Score  float64 `json:"score,omitempty"`
	Reason string  `json:"reason"`
}

// Selection records the parameters and provenance of the chart selection.
// FallbackReason explains why the heuristic planner was used; it is empty
// on the suggester path.
type Selection struct {
	Threshold      float64 `json:"threshold"`
	Cap            int     `json:"cap"`
	PlanSource     string  `json:"plan_source"`
	FallbackReason string  `json:"fallback_reason,omitempty"`
}

// DataQuality is the manifest view of the quality summary.
type DataQuality struct {
	Score      float64            `json:"score"`
	Grade      string             `json:"grade"`
	Components quality.Components `json:"component_scores"`
	Notes      []string           `json:"notes,omitempty"`
}

// Manifest is the complete record of one analysis run.
type Manifest struct {
	SourceFile  string           `json:"source_file"`
	RowCount    int              `json:"row_count"`
	ColumnCount int              `json:"column_count"`
	Roles       roles.Assignment `json:"roles"`
	DataQuality DataQuality      `json:"data_quality"`
	Selection   Selection        `json:"selection"`
	Generated   []GeneratedChart `json:"generated"`
	Skipped     []SkippedChart   `json:"skipped"`
}

// Inputs collects everything Build needs from the pipeline stages.
type Inputs struct {
	SourceFile     string
	RowCount       int
	ColumnCount    int
	Roles          roles.Assignment
	PlanSource     string
	FallbackReason string
	Quality        *quality.Profile
	MinScore       float64
	MaxCharts      int
	Outcomes       []render.Outcome
	Skipped        []score.Skipped
}

// Build assembles the manifest. Render failures demote the chart from
// generated to skipped, carrying the error text as the reason.
func Build(in Inputs) *Manifest {
	m := &Manifest{
		SourceFile:  in.SourceFile,
		RowCount:    in.RowCount,
		ColumnCount: in.ColumnCount,
		Roles:       in.Roles,
		DataQuality: DataQuality{
			Score:      in.Quality.Summary.Score,
			Grade:      in.Quality.Summary.Grade,
			Components: in.Quality.Summary.Components,
			Notes:      in.Quality.Summary.Notes,
		},
		Selection: Selection{
			Threshold:      in.MinScore,
			Cap:            in.MaxCharts,
			PlanSource:     in.PlanSource,
			FallbackReason: in.FallbackReason,
		},
		Generated: []GeneratedChart{},
		Skipped:   []SkippedChart{},
	}

	for _, o := range in.Outcomes {
		c := o.Candidate
		if o.Err != nil {
			m.Skipped = append(m.Skipped, SkippedChart{
				ID:     c.ID,
				Type:   string(c.Type),
				Title:  c.Title,
				Score:  c.Score,
				Reason: fmt.Sprintf("render failed: %v", o.Err),
			})
			continue
		}
		m.Generated = append(m.Generated, GeneratedChart{
			ID:        c.ID,
			Type:      string(c.Type),
			Title:     c.Title,
			Spec:      c.Spec,
			Rationale: c.Rationale,
			Score:     c.Score,
			Artifact:  o.Artifact,
			Suggested: c.Suggested,
		})
	}

	for _, s := range in.Skipped {
		m.Skipped = append(m.Skipped, SkippedChart{
			ID:     s.Candidate.ID,
			Type:   string(s.Candidate.Type),
			Title:  s.Candidate.Title,
			Score:  s.Candidate.Score,
			Reason: s.Reason,
		})
	}

	return m
}

// WriteJSON writes the manifest as manifest.json into outDir and returns
// its path. The manifest is emitted exactly once per run.
func (m *Manifest) WriteJSON(outDir string) (string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("creating output dir: %w", err)
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding manifest: %w", err)
	}
	path := filepath.Join(outDir, "manifest.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing manifest: %w", err)
	}
	return path, nil
}
