package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var DefaultConfigYAML []byte

type Config struct {
	Suggester Suggester `yaml:"suggester"`
	Selection Selection `yaml:"selection"`
	Profiling Profiling `yaml:"profiling"`
	Output    Output    `yaml:"output"`
	Logging   Logging   `yaml:"logging"`
}

// Suggester configures the optional AI plan suggester. When no provider is
// reachable the pipeline uses the heuristic planner instead.
type Suggester struct {
	Provider       string `yaml:"provider"`
	Model          string `yaml:"model"`
	OllamaURL      string `yaml:"ollama_url"`
	OpenAIModel    string `yaml:"openai_model"`
	APIKeyEnv      string `yaml:"api_key_env"`
	MaxTokens      int    `yaml:"max_tokens"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	RetryAttempts  int    `yaml:"retry_attempts"`
}

// Selection holds the default chart selection parameters. Both can be
// overridden per run with --min-score / --max-charts.
type Selection struct {
	MinScore  float64 `yaml:"min_score"`
	MaxCharts int     `yaml:"max_charts"`
}

type Profiling struct {
	SampleRows int `yaml:"sample_rows"`
}

type Output struct {
	DataDir string `yaml:"data_dir"`
}

type Logging struct {
	Level string `yaml:"level"`
}

// ConfigDir returns the XDG config directory for vizplan.
func ConfigDir() string {
	return filepath.Join(homeDir(), ".config", "vizplan")
}

// DataDir returns the XDG data directory for vizplan.
func DataDir() string {
	return filepath.Join(homeDir(), ".local", "share", "vizplan")
}

// ResolveConfigPath finds the config file following priority:
// explicit path > ~/.config/vizplan/config.yaml > ./config.yaml
func ResolveConfigPath(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	xdgConfig := filepath.Join(ConfigDir(), "config.yaml")
	if _, err := os.Stat(xdgConfig); err == nil {
		return xdgConfig, nil
	}

	cwdConfig := "config.yaml"
	if _, err := os.Stat(cwdConfig); err == nil {
		return cwdConfig, nil
	}

	return "", fmt.Errorf(
		"no config file found; searched:\n  %s\n  ./config.yaml\n\nRun 'vizplan init' to create a default config",
		xdgConfig,
	)
}

// Load reads and parses a config YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return parse(data)
}

// parse parses YAML bytes into a Config, applying defaults.
func parse(data []byte) (*Config, error) {
	cfg := &Config{
		Suggester: Suggester{
			Provider:       "ollama",
			Model:          "qwen2.5:7b",
			OllamaURL:      "http://localhost:11434",
			OpenAIModel:    "gpt-4o-mini",
			APIKeyEnv:      "OPENAI_API_KEY",
			MaxTokens:      2000,
			TimeoutSeconds: 30,
			RetryAttempts:  1,
		},
		Selection: Selection{MinScore: 55, MaxCharts: 6},
		Profiling: Profiling{SampleRows: 5},
		Logging:   Logging{Level: "INFO"},
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// GetDataDir returns the effective data directory from config or XDG default.
func (c *Config) GetDataDir() string {
	if c.Output.DataDir != "" {
		return c.Output.DataDir
	}
	return DataDir()
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
