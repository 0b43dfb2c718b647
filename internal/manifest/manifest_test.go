package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"vizplan/internal/charts"
	"vizplan/internal/quality"
	"vizplan/internal/render"
	"vizplan/internal/roles"
	"vizplan/internal/score"
)

func testInputs() Inputs {
	line := charts.Candidate{
		ID: "line_sales", Type: charts.TypeLine, Title: "Sales over time",
		Spec: map[string]string{"x": "month", "y": "sales"}, Score: 88, Eligible: true,
	}
	donut := charts.Candidate{
		ID: "donut_sales", Type: charts.TypeDonut, Title: "Sales share", Score: 42, Eligible: true,
	}
	return Inputs{
		SourceFile:  "sales.csv",
		RowCount:    120,
		ColumnCount: 5,
		Roles:       roles.Assignment{PrimaryMeasure: "sales", PrimaryDate: "month"},
		PlanSource:  roles.SourceFallback,
		Quality: &quality.Profile{Summary: quality.Summary{
			Score: 91.5, Grade: "A",
		}},
		MinScore:  55,
		MaxCharts: 6,
		Outcomes: []render.Outcome{
			{Candidate: line, Artifact: "/out/chart_line_sales.json"},
		},
		Skipped: []score.Skipped{
			{Candidate: donut, Reason: score.ReasonBelowThreshold},
		},
	}
}

func TestBuild(t *testing.T) {
	m := Build(testInputs())

	if len(m.Generated) != 1 || m.Generated[0].ID != "line_sales" {
		t.Fatalf("wrong generated charts: %+v", m.Generated)
	}
	if m.Generated[0].Artifact != "/out/chart_line_sales.json" {
		t.Errorf("artifact path not carried: %q", m.Generated[0].Artifact)
	}
	if len(m.Skipped) != 1 || m.Skipped[0].Reason != score.ReasonBelowThreshold {
		t.Fatalf("wrong skipped charts: %+v", m.Skipped)
	}
	if m.Selection.PlanSource != "fallback" || m.Selection.Threshold != 55 || m.Selection.Cap != 6 {
		t.Errorf("wrong selection block: %+v", m.Selection)
	}
	if m.DataQuality.Score != 91.5 || m.DataQuality.Grade != "A" {
		t.Errorf("wrong quality block: %+v", m.DataQuality)
	}
}

func TestFallbackReasonReachesManifest(t *testing.T) {
	in := testInputs()
	in.FallbackReason = "no suggester configured"

	m := Build(in)
	if m.Selection.FallbackReason != "no suggester configured" {
		t.Errorf("fallback reason not carried: %+v", m.Selection)
	}

	// Empty reason must stay out of the JSON entirely.
	data, _ := json.Marshal(Build(testInputs()))
	if strings.Contains(string(data), "fallback_reason") {
		t.Error("empty fallback reason should be omitted from the manifest")
	}
}

func TestRenderFailureDemotesToSkipped(t *testing.T) {
	in := testInputs()
	in.Outcomes = append(in.Outcomes, render.Outcome{
		Candidate: charts.Candidate{ID: "heatmap_x", Type: charts.TypeHeatmap, Title: "Heatmap", Score: 70},
		Err:       fmt.Errorf("renderer crashed"),
	})

	m := Build(in)
	if len(m.Generated) != 1 {
		t.Errorf("failed render must not appear as generated")
	}
	found := false
	for _, s := range m.Skipped {
		if s.ID == "heatmap_x" {
			found = true
			if s.Reason != "render failed: renderer crashed" {
				t.Errorf("wrong reason: %q", s.Reason)
			}
		}
	}
	if !found {
		t.Error("failed render missing from skipped")
	}
}

func TestBuildIsIdempotent(t *testing.T) {
	m1, _ := json.Marshal(Build(testInputs()))
	m2, _ := json.Marshal(Build(testInputs()))
	if string(m1) != string(m2) {
		t.Error("identical inputs produced different manifests")
	}
}

func TestEmptySlicesNotNull(t *testing.T) {
	in := testInputs()
	in.Outcomes = nil
	in.Skipped = nil

	data, _ := json.Marshal(Build(in))
	var decoded map[string]any
	json.Unmarshal(data, &decoded)
	if decoded["generated"] == nil || decoded["skipped"] == nil {
		t.Error("generated and skipped must encode as [] rather than null")
	}
}

func TestWriteJSON(t *testing.T) {
	dir := t.TempDir()
	path, err := Build(testInputs()).WriteJSON(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if filepath.Base(path) != "manifest.json" {
		t.Errorf("wrong manifest filename: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading manifest: %v", err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("manifest is not valid JSON: %v", err)
	}
	if m.SourceFile != "sales.csv" {
		t.Errorf("round-trip lost data: %+v", m)
	}
}
