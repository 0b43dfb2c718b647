// Package pipeline orchestrates the 6-step chart planning pipeline:
// profile, quality, roles, candidates, select+render, manifest.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"vizplan/internal/charts"
	"vizplan/internal/config"
	"vizplan/internal/database"
	"vizplan/internal/dataset"
	"vizplan/internal/llm"
	"vizplan/internal/manifest"
	"vizplan/internal/profile"
	"vizplan/internal/quality"
	"vizplan/internal/render"
	"vizplan/internal/report"
	"vizplan/internal/roles"
	"vizplan/internal/score"
	"vizplan/internal/suggest"
)

// StepResult holds the result of a single pipeline step.
type StepResult struct {
	Name    string
	Summary string
	Err     error
}

// Result holds the results of a full pipeline run.
type Result struct {
	SourceFile   string
	Steps        []StepResult
	Manifest     *manifest.Manifest
	ManifestPath string
	ReportPath   string
	RunID        int64
}

// Options are per-run overrides of the configured defaults.
type Options struct {
	MinScore  float64
	MaxCharts int
	OutDir    string
}

// Pipeline orchestrates one analysis run end to end.
type Pipeline struct {
	cfg      *config.Config
	db       *database.DB
	assigner *roles.Assigner
	registry *render.Registry
}

// New creates a pipeline. The suggester is resolved from config; when no
// provider is reachable (or noSuggester is set) role assignment uses the
// heuristic planner.
func New(cfg *config.Config, db *database.DB, noSuggester bool) *Pipeline {
	var suggester roles.Suggester
	if !noSuggester {
		sg := cfg.Suggester
		provider := llm.CreateProvider(sg.Provider, sg.Model, sg.OllamaURL, sg.OpenAIModel, sg.APIKeyEnv)
		if provider != nil {
			suggester = suggest.New(provider, sg.MaxTokens)
		}
	}

	timeout := time.Duration(cfg.Suggester.TimeoutSeconds) * time.Second
	return &Pipeline{
		cfg:      cfg,
		db:       db,
		assigner: roles.NewAssigner(suggester, timeout, cfg.Suggester.RetryAttempts),
		registry: render.NewRegistry(),
	}
}

// Run executes the full pipeline for one dataset file. A nil step error on
// every step means the manifest and report were written; a fatal error (the
// dataset cannot be loaded or profiled) short-circuits the run.
func (p *Pipeline) Run(ctx context.Context, path string, opts Options) *Result {
	r := &Result{SourceFile: path}

	// Step 1: Load + Profile
	table, profiles, step := p.runProfile(path)
	r.Steps = append(r.Steps, step)
	if step.Err != nil {
		return r
	}

	// Step 2: Quality
	qp := quality.Build(profiles)
	r.Steps = append(r.Steps, StepResult{
		Name:    "Quality",
		Summary: fmt.Sprintf("score %.1f (grade %s)", qp.Summary.Score, qp.Summary.Grade),
	})

	// Step 3: Roles
	outcome := p.assigner.Assign(ctx, profiles, table.SampleRows(p.cfg.Profiling.SampleRows))
	summary := fmt.Sprintf("plan source %s", outcome.PlanSource)
	if outcome.FallbackReason != "" {
		summary += " (" + outcome.FallbackReason + ")"
	}
	r.Steps = append(r.Steps, StepResult{Name: "Roles", Summary: summary})

	// Step 4: Candidates
	candidates := charts.Generate(profiles, outcome.Roles, outcome.Suggested)
	r.Steps = append(r.Steps, StepResult{
		Name:    "Candidates",
		Summary: fmt.Sprintf("%d candidates across %d chart types", len(candidates), len(charts.Catalog)),
	})

	// Step 5: Select + Render
	minScore, maxCharts := p.cfg.Selection.MinScore, p.cfg.Selection.MaxCharts
	if opts.MinScore > 0 {
		minScore = opts.MinScore
	}
	if opts.MaxCharts > 0 {
		maxCharts = opts.MaxCharts
	}
	score.Rate(candidates, profiles, qp.Summary.Score)
	selected, skipped := score.Select(candidates, minScore, maxCharts)
	outcomes := p.registry.RenderAll(ctx, selected, opts.OutDir)
	rendered := 0
	for _, o := range outcomes {
		if o.Err == nil {
			rendered++
		} else {
			log.Printf("rendering %s failed: %v", o.Candidate.ID, o.Err)
		}
	}
	r.Steps = append(r.Steps, StepResult{
		Name:    "Render",
		Summary: fmt.Sprintf("%d selected, %d rendered, %d skipped", len(selected), rendered, len(skipped)),
	})

	// Step 6: Manifest
	step = p.runManifest(manifest.Inputs{
		SourceFile:     path,
		RowCount:       profiles.RowCount,
		ColumnCount:    len(profiles.Columns),
		Roles:          outcome.Roles,
		PlanSource:     outcome.PlanSource,
		FallbackReason: outcome.FallbackReason,
		Quality:        qp,
		MinScore:       minScore,
		MaxCharts:      maxCharts,
		Outcomes:       outcomes,
		Skipped:        skipped,
	}, opts.OutDir, r)
	r.Steps = append(r.Steps, step)

	return r
}

func (p *Pipeline) runProfile(path string) (*dataset.Table, *profile.Profiles, StepResult) {
	table, err := dataset.Load(path)
	if err != nil {
		return nil, nil, StepResult{Name: "Profile", Err: fmt.Errorf("loading dataset: %w", err)}
	}

	profiles, err := profile.Build(table)
	if err != nil {
		return nil, nil, StepResult{Name: "Profile", Err: err}
	}

	return table, profiles, StepResult{
		Name:    "Profile",
		Summary: fmt.Sprintf("%d rows, %d columns", profiles.RowCount, len(profiles.Columns)),
	}
}

func (p *Pipeline) runManifest(in manifest.Inputs, outDir string, r *Result) StepResult {
	m := manifest.Build(in)
	r.Manifest = m

	path, err := m.WriteJSON(outDir)
	if err != nil {
		return StepResult{Name: "Manifest", Err: err}
	}
	r.ManifestPath = path

	mdPath, _, err := report.Write(m, outDir)
	if err != nil {
		return StepResult{Name: "Manifest", Err: err}
	}
	r.ReportPath = mdPath

	if p.db != nil {
		if id, err := p.storeRun(m); err != nil {
			log.Printf("recording run: %v", err)
		} else {
			r.RunID = id
		}
	}

	return StepResult{
		Name:    "Manifest",
		Summary: fmt.Sprintf("%d generated, %d skipped -> %s", len(m.Generated), len(m.Skipped), path),
	}
}

func (p *Pipeline) storeRun(m *manifest.Manifest) (int64, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return 0, fmt.Errorf("encoding manifest: %w", err)
	}
	return p.db.InsertRun(&database.Run{
		SourceFile:     m.SourceFile,
		RowCount:       m.RowCount,
		ColumnCount:    m.ColumnCount,
		PlanSource:     m.Selection.PlanSource,
		QualityScore:   m.DataQuality.Score,
		QualityGrade:   m.DataQuality.Grade,
		MinScore:       m.Selection.Threshold,
		MaxCharts:      m.Selection.Cap,
		GeneratedCount: len(m.Generated),
		SkippedCount:   len(m.Skipped),
		Manifest:       string(data),
	})
}
