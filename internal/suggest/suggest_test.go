package suggest

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"vizplan/internal/profile"
)

// mockProvider implements llm.Provider for testing.
type mockProvider struct {
	response string
	err      error
	prompt   string
}

func (m *mockProvider) Generate(_ context.Context, prompt string, _ int) (string, error) {
	m.prompt = prompt
	return m.response, m.err
}

func (m *mockProvider) IsConfigured() bool { return true }

func testProfiles() *profile.Profiles {
	return &profile.Profiles{
		RowCount: 50,
		Columns: []profile.ColumnProfile{
			{Name: "month", Type: profile.TypeDate},
			{Name: "sales", Type: profile.TypeNumeric},
			{Name: "region", Type: profile.TypeCategorical, Cardinality: 4},
		},
	}
}

func validResponse() string {
	resp, _ := json.Marshal(map[string]any{
		"roles": map[string]any{
			"primary_measure":    "sales",
			"primary_date":       "month",
			"dimensions":         []string{"region"},
			"secondary_measures": []string{},
			"ignore":             []string{},
		},
		"charts": []map[string]any{
			{
				"id":        "Sales Over Time",
				"type":      "line",
				"title":     "Sales over time",
				"spec":      map[string]string{"x": "month", "y": "sales"},
				"rationale": "Monthly trend.",
			},
		},
	})
	return string(resp)
}

func TestSuggestParsesResponse(t *testing.T) {
	provider := &mockProvider{response: validResponse()}
	s := New(provider, 2000)

	sug, err := s.Suggest(context.Background(), testProfiles(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sug.Roles.PrimaryMeasure != "sales" || sug.Roles.PrimaryDate != "month" {
		t.Errorf("wrong roles: %+v", sug.Roles)
	}
	if len(sug.Charts) != 1 {
		t.Fatalf("expected 1 chart, got %d", len(sug.Charts))
	}
	if sug.Charts[0].ID != "sales_over_time" {
		t.Errorf("id not sanitized: %q", sug.Charts[0].ID)
	}
	if sug.Charts[0].Spec["x"] != "month" {
		t.Errorf("spec not carried over: %v", sug.Charts[0].Spec)
	}
}

func TestSuggestHandlesFencedResponse(t *testing.T) {
	provider := &mockProvider{response: "```json\n" + validResponse() + "\n```"}
	s := New(provider, 2000)
	if _, err := s.Suggest(context.Background(), testProfiles(), nil); err != nil {
		t.Fatalf("fenced JSON should parse: %v", err)
	}
}

func TestSuggestRejectsNonJSON(t *testing.T) {
	provider := &mockProvider{response: "I cannot help with that."}
	s := New(provider, 2000)
	if _, err := s.Suggest(context.Background(), testProfiles(), nil); err == nil {
		t.Error("expected error for non-JSON response")
	}
}

func TestSuggestRejectsMissingRoles(t *testing.T) {
	provider := &mockProvider{response: `{"charts": []}`}
	s := New(provider, 2000)
	if _, err := s.Suggest(context.Background(), testProfiles(), nil); err == nil {
		t.Error("expected error when roles object is missing")
	}
}

func TestSuggestPropagatesProviderError(t *testing.T) {
	provider := &mockProvider{err: fmt.Errorf("timeout")}
	s := New(provider, 2000)
	if _, err := s.Suggest(context.Background(), testProfiles(), nil); err == nil {
		t.Error("expected provider error to propagate")
	}
}

func TestPromptContainsProfilesAndSamples(t *testing.T) {
	provider := &mockProvider{response: validResponse()}
	s := New(provider, 2000)
	samples := []map[string]string{{"month": "2024-01-01", "sales": "120", "region": "north"}}

	if _, err := s.Suggest(context.Background(), testProfiles(), samples); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"sales", "region", "2024-01-01", "bar_horizontal"} {
		if !strings.Contains(provider.prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestChartsWithoutIDOrTypeAreDropped(t *testing.T) {
	resp, _ := json.Marshal(map[string]any{
		"roles":  map[string]any{"dimensions": []string{}, "secondary_measures": []string{}, "ignore": []string{}},
		"charts": []map[string]any{{"title": "no id or type"}},
	})
	provider := &mockProvider{response: string(resp)}
	s := New(provider, 2000)

	sug, err := s.Suggest(context.Background(), testProfiles(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sug.Charts) != 0 {
		t.Errorf("expected malformed chart to be dropped, got %d", len(sug.Charts))
	}
}
