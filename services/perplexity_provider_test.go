package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestPerplexityProvider(serverURL string) *perplexityProvider {
	return &perplexityProvider{
		apiKey:      "pplx-test",
		model:       "sonar",
		baseURL:     serverURL,
		costService: NewCostService(),
		httpClient:  &http.Client{Timeout: 5 * time.Second},
	}
}

func TestPerplexityRunPrompt(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer pplx-test" {
			t.Errorf("unexpected auth header: %s", auth)
		}

		var req PerplexityRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		if req.Model != "sonar" {
			t.Errorf("unexpected model: %s", req.Model)
		}
		if len(req.Messages) != 2 || req.Messages[1].Role != "user" {
			t.Errorf("unexpected messages: %+v", req.Messages)
		}

		json.NewEncoder(w).Encode(PerplexityResponse{
			ID:        "resp-1",
			Model:     "sonar",
			Citations: []string{"https://example.com/source"},
			Choices: []PerplexityChoice{
				{Index: 0, FinishReason: "stop", Message: PerplexityMessage{Role: "assistant", Content: "Acme is a leading widget maker."}},
			},
			Usage: PerplexityUsage{PromptTokens: 42, CompletionTokens: 17, TotalTokens: 59},
		})
	}))
	defer server.Close()

	provider := newTestPerplexityProvider(server.URL)

	resp, err := provider.RunPrompt(context.Background(), "Who makes the best widgets?", true, nil)
	if err != nil {
		t.Fatalf("RunPrompt failed: %v", err)
	}

	if resp.Response != "Acme is a leading widget maker." {
		t.Errorf("unexpected response text: %q", resp.Response)
	}
	if resp.InputTokens != 42 || resp.OutputTokens != 17 {
		t.Errorf("unexpected token counts: %d/%d", resp.InputTokens, resp.OutputTokens)
	}
	if len(resp.Citations) != 1 || resp.Citations[0] != "https://example.com/source" {
		t.Errorf("unexpected citations: %v", resp.Citations)
	}
	if resp.Cost <= 0 {
		t.Errorf("expected positive cost, got %f", resp.Cost)
	}
}

func TestPerplexityRunPromptAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error": "rate limited"}`))
	}))
	defer server.Close()

	provider := newTestPerplexityProvider(server.URL)

	if _, err := provider.RunPrompt(context.Background(), "anything", false, nil); err == nil {
		t.Error("expected error on non-200 response")
	}
}

func TestPerplexityRunPromptEmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(PerplexityResponse{ID: "resp-2"})
	}))
	defer server.Close()

	provider := newTestPerplexityProvider(server.URL)

	if _, err := provider.RunPrompt(context.Background(), "anything", false, nil); err == nil {
		t.Error("expected error when no choices returned")
	}
}
