package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/beenruuu/mentha/internal/models"
)

func newTestGeminiProvider(serverURL string) *geminiProvider {
	return &geminiProvider{
		apiKey:      "gm-test",
		model:       "gemini-2.0-flash",
		baseURL:     serverURL,
		costService: NewCostService(),
		httpClient:  &http.Client{Timeout: 5 * time.Second},
	}
}

func TestGeminiRunPromptWithGrounding(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "models/gemini-2.0-flash:generateContent") {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if key := r.URL.Query().Get("key"); key != "gm-test" {
			t.Errorf("unexpected api key: %s", key)
		}

		var req GeminiRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		if len(req.Tools) != 1 {
			t.Errorf("expected google search tool when websearch enabled, got %d tools", len(req.Tools))
		}

		json.NewEncoder(w).Encode(GeminiResponse{
			Candidates: []GeminiCandidate{{
				Content: GeminiContent{
					Role:  "model",
					Parts: []GeminiPart{{Text: "Acme leads the market."}},
				},
				FinishReason: "STOP",
				GroundingMetadata: &GeminiGroundingMetadata{
					GroundingChunks: []GeminiGroundingChunk{
						{Web: &GeminiWebSource{URI: "https://example.com/report", Title: "Market report"}},
					},
				},
			}},
			UsageMetadata: GeminiUsage{PromptTokenCount: 30, CandidatesTokenCount: 12, TotalTokenCount: 42},
		})
	}))
	defer server.Close()

	provider := newTestGeminiProvider(server.URL)

	city := "Berlin"
	resp, err := provider.RunPrompt(context.Background(), "Who leads the widget market?", true, &models.Location{Country: "DE", City: &city})
	if err != nil {
		t.Fatalf("RunPrompt failed: %v", err)
	}

	if resp.Response != "Acme leads the market." {
		t.Errorf("unexpected response: %q", resp.Response)
	}
	if len(resp.Citations) != 1 || resp.Citations[0] != "https://example.com/report" {
		t.Errorf("unexpected citations: %v", resp.Citations)
	}
	if resp.InputTokens != 30 || resp.OutputTokens != 12 {
		t.Errorf("unexpected token counts: %d/%d", resp.InputTokens, resp.OutputTokens)
	}
}

func TestGeminiRunPromptNoCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(GeminiResponse{})
	}))
	defer server.Close()

	provider := newTestGeminiProvider(server.URL)

	if _, err := provider.RunPrompt(context.Background(), "anything", false, nil); err == nil {
		t.Error("expected error when no candidates returned")
	}
}
