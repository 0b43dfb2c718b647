// Package render turns selected chart candidates into artifacts on disk.
// Renderers are looked up in a closed registry keyed by chart type; a
// missing or failing renderer demotes the chart to skipped rather than
// failing the run.
package render

import (
	"context"
	"fmt"

	"vizplan/internal/charts"
)

// Renderer produces an artifact file for one chart and returns its path.
type Renderer interface {
	Render(ctx context.Context, c charts.Candidate, outDir string) (string, error)
}

// Registry maps chart types to renderers. The set is fixed at construction.
type Registry struct {
	renderers map[charts.Type]Renderer
}

// NewRegistry builds a registry covering the whole chart catalog with the
// spec renderer. Individual types can be overridden before use.
func NewRegistry() *Registry {
	r := &Registry{renderers: map[charts.Type]Renderer{}}
	spec := &SpecRenderer{}
	for _, t := range charts.Catalog {
		r.renderers[t] = spec
	}
	return r
}

// Register replaces the renderer for a chart type.
func (r *Registry) Register(t charts.Type, renderer Renderer) {
	r.renderers[t] = renderer
}

// Outcome is the result of rendering one chart.
type Outcome struct {
	Candidate charts.Candidate
	Artifact  string // path of the written artifact, empty on failure
	Err       error
}

// RenderAll renders every selected chart. A failure is captured in the
// outcome, never propagated; the manifest reports the chart as skipped.
func (r *Registry) RenderAll(ctx context.Context, selected []charts.Candidate, outDir string) []Outcome {
	outcomes := make([]Outcome, 0, len(selected))
	for _, c := range selected {
		renderer, ok := r.renderers[c.Type]
		if !ok {
			outcomes = append(outcomes, Outcome{
				Candidate: c,
				Err:       fmt.Errorf("no renderer registered for type %q", c.Type),
			})
			continue
		}
		artifact, err := renderer.Render(ctx, c, outDir)
		outcomes = append(outcomes, Outcome{Candidate: c, Artifact: artifact, Err: err})
	}
	return outcomes
}
