package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfigParses(t *testing.T) {
	cfg, err := parse(DefaultConfigYAML)
	if err != nil {
		t.Fatalf("embedded default config must parse: %v", err)
	}
	if cfg.Suggester.Provider != "ollama" {
		t.Errorf("unexpected default provider: %s", cfg.Suggester.Provider)
	}
	if cfg.Selection.MinScore != 55 || cfg.Selection.MaxCharts != 6 {
		t.Errorf("unexpected selection defaults: %+v", cfg.Selection)
	}
}

func TestParseAppliesDefaults(t *testing.T) {
	cfg, err := parse([]byte("logging:\n  level: DEBUG\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Logging.Level != "DEBUG" {
		t.Errorf("explicit value not applied: %s", cfg.Logging.Level)
	}
	if cfg.Suggester.TimeoutSeconds != 30 || cfg.Profiling.SampleRows != 5 {
		t.Errorf("defaults not applied: %+v", cfg)
	}
}

func TestParseOverridesDefaults(t *testing.T) {
	cfg, err := parse([]byte("selection:\n  min_score: 70\n  max_charts: 3\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Selection.MinScore != 70 || cfg.Selection.MaxCharts != 3 {
		t.Errorf("overrides not applied: %+v", cfg.Selection)
	}
}

func TestParseRejectsInvalidYAML(t *testing.T) {
	if _, err := parse([]byte("selection: [not a map")); err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestResolveConfigPathExplicit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	os.WriteFile(path, []byte("{}"), 0o644)

	got, err := ResolveConfigPath(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != path {
		t.Errorf("expected explicit path, got %s", got)
	}
}

func TestResolveConfigPathMissingExplicit(t *testing.T) {
	if _, err := ResolveConfigPath("/nonexistent/config.yaml"); err == nil {
		t.Error("expected error for missing explicit path")
	}
}

func TestGetDataDir(t *testing.T) {
	cfg := &Config{}
	if cfg.GetDataDir() == "" {
		t.Error("expected XDG default data dir")
	}

	cfg.Output.DataDir = "/tmp/custom"
	if cfg.GetDataDir() != "/tmp/custom" {
		t.Errorf("configured data dir not used: %s", cfg.GetDataDir())
	}
}
