// Package suggest implements the LLM-backed plan suggester. It renders the
// column profiles and a handful of sample rows into a prompt, asks the
// provider for a JSON plan, and converts the response into role and chart
// suggestions. Anything malformed is an error; the caller falls back to the
// heuristic planner.
package suggest

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"vizplan/internal/llm"
	"vizplan/internal/profile"
	"vizplan/internal/roles"
)

// Suggester asks an LLM provider for a chart plan.
type Suggester struct {
	provider  llm.Provider
	maxTokens int
}

// New creates a suggester over an LLM provider.
func New(provider llm.Provider, maxTokens int) *Suggester {
	return &Suggester{provider: provider, maxTokens: maxTokens}
}

// Suggest implements roles.Suggester.
func (s *Suggester) Suggest(ctx context.Context, profiles *profile.Profiles, samples []map[string]string) (*roles.Suggestion, error) {
	prompt, err := buildPrompt(profiles, samples)
	if err != nil {
		return nil, fmt.Errorf("building prompt: %w", err)
	}

	response, err := s.provider.Generate(ctx, prompt, s.maxTokens)
	if err != nil {
		return nil, fmt.Errorf("generating plan: %w", err)
	}

	parsed := llm.ParseJSONResponse(response)
	if parsed == nil {
		return nil, fmt.Errorf("response is not valid JSON")
	}

	return parseSuggestion(parsed)
}

const promptTemplate = `You are a data visualization planner. Given column profiles and sample rows
from a tabular dataset, assign columns to chart roles and propose charts.

Column profiles:
%s

Sample rows:
%s

Respond with ONLY a JSON object, no prose, in this exact shape:
{
  "roles": {
    "primary_measure": "<numeric column or empty string>",
    "primary_date": "<date column or empty string>",
    "dimensions": ["<up to 5 categorical columns>"],
    "secondary_measures": ["<other numeric columns>"],
    "ignore": ["<id and free-text columns>"]
  },
  "charts": [
    {
      "id": "<short_snake_case_id>",
      "type": "<one of: line, bar_horizontal, bar_grouped, donut, scatter, area_stacked, heatmap, funnel>",
      "title": "<human readable title>",
      "spec": {"x": "<column>", "y": "<column>", "group": "<optional column>"},
      "rationale": "<one sentence why this chart fits the data>"
    }
  ]
}

Rules:
- primary_measure must be a numeric column; primary_date must be a date column.
- Only reference columns that exist in the profiles.
- Propose 2 to 6 charts that genuinely fit the data.`

func buildPrompt(profiles *profile.Profiles, samples []map[string]string) (string, error) {
	profJSON, err := json.MarshalIndent(profiles.Columns, "", "  ")
	if err != nil {
		return "", err
	}
	sampleJSON, err := json.MarshalIndent(samples, "", "  ")
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(promptTemplate, profJSON, sampleJSON), nil
}

// parseSuggestion converts the decoded JSON map into a typed suggestion.
// Structural validation against the profiles happens in the assigner.
func parseSuggestion(m map[string]any) (*roles.Suggestion, error) {
	rolesMap, ok := m["roles"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("missing roles object")
	}

	sug := &roles.Suggestion{
		Roles: roles.Assignment{
			PrimaryMeasure:    str(rolesMap["primary_measure"]),
			PrimaryDate:       str(rolesMap["primary_date"]),
			Dimensions:        strSlice(rolesMap["dimensions"]),
			SecondaryMeasures: strSlice(rolesMap["secondary_measures"]),
			Ignore:            strSlice(rolesMap["ignore"]),
		},
	}

	chartsRaw, _ := m["charts"].([]any)
	for _, raw := range chartsRaw {
		cm, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		chart := roles.SuggestedChart{
			ID:        sanitizeID(str(cm["id"])),
			Type:      strings.TrimSpace(str(cm["type"])),
			Title:     strings.TrimSpace(str(cm["title"])),
			Rationale: strings.TrimSpace(str(cm["rationale"])),
			Spec:      map[string]string{},
		}
		if spec, ok := cm["spec"].(map[string]any); ok {
			for k, v := range spec {
				if sv := str(v); sv != "" {
					chart.Spec[k] = sv
				}
			}
		}
		if chart.ID == "" || chart.Type == "" {
			continue
		}
		sug.Charts = append(sug.Charts, chart)
	}

	return sug, nil
}

func str(v any) string {
	s, _ := v.(string)
	return s
}

func strSlice(v any) []string {
	out := []string{}
	raw, _ := v.([]any)
	for _, item := range raw {
		if s, ok := item.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}

// sanitizeID normalizes a model-produced id to snake_case ASCII.
func sanitizeID(id string) string {
	id = strings.ToLower(strings.TrimSpace(id))
	var b strings.Builder
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '-', r == '_':
			b.WriteRune('_')
		}
	}
	return strings.Trim(b.String(), "_")
}
