package llm

import "testing"

func TestParseJSONResponsePlain(t *testing.T) {
	result := ParseJSONResponse(`{"key": "value"}`)
	if result == nil || result["key"] != "value" {
		t.Errorf("failed to parse plain JSON: %v", result)
	}
}

func TestParseJSONResponseFenced(t *testing.T) {
	result := ParseJSONResponse("```json\n{\"key\": \"value\"}\n```")
	if result == nil || result["key"] != "value" {
		t.Errorf("failed to parse fenced JSON: %v", result)
	}
}

func TestParseJSONResponseWrappedInProse(t *testing.T) {
	result := ParseJSONResponse(`Here is the plan you asked for: {"key": "value"} Hope it helps!`)
	if result == nil || result["key"] != "value" {
		t.Errorf("failed to extract JSON from prose: %v", result)
	}
}

func TestParseJSONResponseGarbage(t *testing.T) {
	if result := ParseJSONResponse("not json at all"); result != nil {
		t.Errorf("expected nil for garbage, got %v", result)
	}
	if result := ParseJSONResponse(""); result != nil {
		t.Errorf("expected nil for empty input, got %v", result)
	}
}
