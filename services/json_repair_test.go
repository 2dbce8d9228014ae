package services

import (
	"encoding/json"
	"testing"
)

func TestRepairJSONCodeFence(t *testing.T) {
	raw := "```json\n{\"answer\": \"hello\"}\n```"
	repaired := repairJSON(raw)

	var parsed struct {
		Answer string `json:"answer"`
	}
	if err := json.Unmarshal([]byte(repaired), &parsed); err != nil {
		t.Fatalf("expected valid JSON after repair, got error: %v (repaired: %q)", err, repaired)
	}
	if parsed.Answer != "hello" {
		t.Errorf("expected answer 'hello', got %q", parsed.Answer)
	}
}

func TestRepairJSONSurroundingProse(t *testing.T) {
	raw := `Sure, here is the JSON you asked for:
{"claims": [{"claim_text": "Acme was founded in 2010"}]}
Let me know if you need anything else.`
	repaired := repairJSON(raw)

	var parsed ClaimsExtractionResponse
	if err := json.Unmarshal([]byte(repaired), &parsed); err != nil {
		t.Fatalf("expected valid JSON after repair, got error: %v", err)
	}
	if len(parsed.Claims) != 1 || parsed.Claims[0].ClaimText != "Acme was founded in 2010" {
		t.Errorf("unexpected parsed claims: %+v", parsed.Claims)
	}
}

func TestRepairJSONTrailingCommas(t *testing.T) {
	raw := `{"items": ["a", "b",], "count": 2,}`
	repaired := repairJSON(raw)

	var parsed struct {
		Items []string `json:"items"`
		Count int      `json:"count"`
	}
	if err := json.Unmarshal([]byte(repaired), &parsed); err != nil {
		t.Fatalf("expected valid JSON after repair, got error: %v (repaired: %q)", err, repaired)
	}
	if len(parsed.Items) != 2 || parsed.Count != 2 {
		t.Errorf("unexpected parsed result: %+v", parsed)
	}
}

func TestRepairJSONArrayPayload(t *testing.T) {
	raw := "Here you go: [1, 2, 3] hope that helps"
	repaired := repairJSON(raw)

	var parsed []int
	if err := json.Unmarshal([]byte(repaired), &parsed); err != nil {
		t.Fatalf("expected valid JSON after repair, got error: %v (repaired: %q)", err, repaired)
	}
	if len(parsed) != 3 {
		t.Errorf("expected 3 elements, got %d", len(parsed))
	}
}

func TestRepairJSONNoJSONPresent(t *testing.T) {
	raw := "I could not produce a structured answer."
	if repaired := repairJSON(raw); repaired != raw {
		t.Errorf("plain text should pass through unchanged, got %q", repaired)
	}
}
