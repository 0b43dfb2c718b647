package render

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"vizplan/internal/charts"
)

// SpecRenderer writes a chart as a self-contained JSON spec that a frontend
// charting library can consume directly.
type SpecRenderer struct{}

type chartSpec struct {
	ID      string            `json:"id"`
	Type    string            `json:"type"`
	Title   string            `json:"title"`
	Encode  map[string]string `json:"encode"`
	Comment string            `json:"comment,omitempty"`
}

// Render writes chart_<id>.json into outDir and returns its path.
func (r *SpecRenderer) Render(_ context.Context, c charts.Candidate, outDir string) (string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("creating output dir: %w", err)
	}

	spec := chartSpec{
		ID:      c.ID,
		Type:    string(c.Type),
		Title:   c.Title,
		Encode:  c.Spec,
		Comment: c.Rationale,
	}
	data, err := json.MarshalIndent(spec, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding chart spec: %w", err)
	}

	path := filepath.Join(outDir, fmt.Sprintf("chart_%s.json", c.ID))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing chart spec: %w", err)
	}
	return path, nil
}
