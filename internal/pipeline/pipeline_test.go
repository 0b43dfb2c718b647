package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"vizplan/internal/config"
	"vizplan/internal/database"
)

func testConfig() *config.Config {
	return &config.Config{
		Selection: config.Selection{MinScore: 55, MaxCharts: 6},
		Profiling: config.Profiling{SampleRows: 5},
		Suggester: config.Suggester{TimeoutSeconds: 1, RetryAttempts: 0},
	}
}

func writeSalesCSV(t *testing.T) string {
	t.Helper()
	var b strings.Builder
	b.WriteString("order_id,month,sales,region\n")
	months := []string{"01", "02", "03", "04", "05", "06", "07", "08", "09", "10", "11", "12"}
	regions := []string{"north", "south", "east"}
	sales := []string{"100", "180", "90", "240", "130", "310", "170", "220", "80", "290", "150", "260"}
	for i, m := range months {
		b.WriteString(strings.Join([]string{
			"ORD-" + m, "2024-" + m + "-01", sales[i], regions[i%3],
		}, ","))
		b.WriteString("\n")
	}

	path := filepath.Join(t.TempDir(), "sales.csv")
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	return path
}

func openTestDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestRunEndToEnd(t *testing.T) {
	db := openTestDB(t)
	pipe := New(testConfig(), db, true)
	outDir := t.TempDir()

	result := pipe.Run(context.Background(), writeSalesCSV(t), Options{OutDir: outDir})

	if len(result.Steps) != 6 {
		t.Fatalf("expected 6 steps, got %d", len(result.Steps))
	}
	for _, step := range result.Steps {
		if step.Err != nil {
			t.Fatalf("step %s failed: %v", step.Name, step.Err)
		}
	}

	m := result.Manifest
	if m == nil {
		t.Fatal("expected a manifest")
	}
	if m.Selection.PlanSource != "fallback" {
		t.Errorf("heuristic-only run must report fallback, got %s", m.Selection.PlanSource)
	}
	if m.Selection.FallbackReason != "no suggester configured" {
		t.Errorf("fallback reason missing from manifest: %+v", m.Selection)
	}
	if m.RowCount != 12 || m.ColumnCount != 4 {
		t.Errorf("wrong dataset shape: %d rows, %d columns", m.RowCount, m.ColumnCount)
	}
	if len(m.Generated) == 0 {
		t.Error("expected at least one generated chart")
	}
	if m.Roles.PrimaryDate != "month" || m.Roles.PrimaryMeasure != "sales" {
		t.Errorf("wrong roles: %+v", m.Roles)
	}

	if _, err := os.Stat(result.ManifestPath); err != nil {
		t.Errorf("manifest file missing: %v", err)
	}
	for _, g := range m.Generated {
		if _, err := os.Stat(g.Artifact); err != nil {
			t.Errorf("artifact missing for %s: %v", g.ID, err)
		}
	}

	if result.RunID == 0 {
		t.Fatal("expected the run to be recorded")
	}
	run, err := db.GetRun(result.RunID)
	if err != nil || run == nil {
		t.Fatalf("stored run not readable: %v", err)
	}
	if run.GeneratedCount != len(m.Generated) {
		t.Errorf("stored counts disagree with manifest")
	}
}

func TestRunFailsOnEmptyDataset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	os.WriteFile(path, []byte("a,b\n"), 0o644)

	pipe := New(testConfig(), nil, true)
	result := pipe.Run(context.Background(), path, Options{OutDir: t.TempDir()})

	if len(result.Steps) != 1 {
		t.Fatalf("expected the run to stop after profiling, got %d steps", len(result.Steps))
	}
	if result.Steps[0].Err == nil {
		t.Error("expected a fatal profiling error")
	}
	if result.Manifest != nil {
		t.Error("no manifest must be written for a failed run")
	}
}

func TestRunOverrides(t *testing.T) {
	pipe := New(testConfig(), nil, true)
	result := pipe.Run(context.Background(), writeSalesCSV(t), Options{
		OutDir:    t.TempDir(),
		MinScore:  95,
		MaxCharts: 1,
	})

	m := result.Manifest
	if m == nil {
		t.Fatal("expected a manifest")
	}
	if m.Selection.Threshold != 95 || m.Selection.Cap != 1 {
		t.Errorf("overrides not applied: %+v", m.Selection)
	}
	if len(m.Generated) > 1 {
		t.Errorf("cap not enforced: %d generated", len(m.Generated))
	}
}
