// services/hallucination_service_test.go
package services

import (
	"strings"
	"testing"
)

func TestNormalizeVerdict(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"supported", "supported"},
		{"Supported", "supported"},
		{"  TRUE  ", "supported"},
		{"verified", "supported"},
		{"contradicted", "contradicted"},
		{"FALSE", "contradicted"},
		{"refuted", "contradicted"},
		{"unverifiable", "unverifiable"},
		{"partially supported", "unverifiable"},
		{"", "unverifiable"},
	}

	for _, tt := range tests {
		if got := normalizeVerdict(tt.input); got != tt.expected {
			t.Errorf("normalizeVerdict(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestBuildVerdictPrompt(t *testing.T) {
	s := &hallucinationService{}

	chunks := []RetrievedChunk{
		{Title: "Pricing", URL: "https://acme.com/pricing", Content: "Plans start at $49 per month."},
		{Title: "About", URL: "https://acme.com/about", Content: "Founded in 2019 in Berlin."},
	}

	prompt := s.buildVerdictPrompt("Acme costs $10 per month", chunks)

	if !strings.Contains(prompt, "Acme costs $10 per month") {
		t.Error("expected prompt to contain the claim text")
	}
	if !strings.Contains(prompt, "[Source 1] Pricing (https://acme.com/pricing)") {
		t.Error("expected prompt to contain the first numbered source")
	}
	if !strings.Contains(prompt, "Founded in 2019 in Berlin.") {
		t.Error("expected prompt to contain the second chunk content")
	}
	if !strings.Contains(prompt, `"unverifiable"`) {
		t.Error("expected prompt to document the unverifiable verdict")
	}
}
