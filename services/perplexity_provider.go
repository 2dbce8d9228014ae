// services/perplexity_provider.go
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/beenruuu/mentha/internal/config"
	"github.com/beenruuu/mentha/internal/models"
)

type perplexityProvider struct {
	apiKey      string
	model       string
	baseURL     string
	costService CostService
	httpClient  *http.Client
}

func NewPerplexityProvider(cfg *config.Config, model string, costService CostService) AIProvider {
	return &perplexityProvider{
		apiKey:      cfg.PerplexityAPIKey,
		model:       model,
		baseURL:     "https://api.perplexity.ai",
		costService: costService,
		httpClient: &http.Client{
			Timeout: 5 * time.Minute,
		},
	}
}

func (p *perplexityProvider) GetProviderName() string {
	return "perplexity"
}

// Perplexity chat completions API structures (OpenAI-compatible)
type PerplexityRequest struct {
	Model    string              `json:"model"`
	Messages []PerplexityMessage `json:"messages"`
}

type PerplexityMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type PerplexityResponse struct {
	ID        string             `json:"id"`
	Model     string             `json:"model"`
	Citations []string           `json:"citations,omitempty"`
	Choices   []PerplexityChoice `json:"choices"`
	Usage     PerplexityUsage    `json:"usage"`
}

type PerplexityChoice struct {
	Index        int               `json:"index"`
	FinishReason string            `json:"finish_reason"`
	Message      PerplexityMessage `json:"message"`
}

type PerplexityUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// RunPrompt calls the Sonar chat completions API. Sonar always searches the
// web, so the websearch flag only affects cost accounting.
func (p *perplexityProvider) RunPrompt(ctx context.Context, query string, websearch bool, location *models.Location) (*AIResponse, error) {
	prompt := buildLocationPrompt(query, location)

	requestBody := PerplexityRequest{
		Model: p.model,
		Messages: []PerplexityMessage{
			{Role: "system", Content: "You are a helpful assistant that provides accurate, comprehensive answers to questions."},
			{Role: "user", Content: prompt},
		},
	}

	jsonData, err := json.Marshal(requestBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", p.baseURL+"/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errorBody bytes.Buffer
		errorBody.ReadFrom(resp.Body)
		return nil, fmt.Errorf("Perplexity API returned status %d: %s", resp.StatusCode, errorBody.String())
	}

	var sonarResp PerplexityResponse
	if err := json.NewDecoder(resp.Body).Decode(&sonarResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if len(sonarResp.Choices) == 0 {
		return nil, fmt.Errorf("no response choices returned")
	}

	responseText := sonarResp.Choices[0].Message.Content
	if responseText == "" {
		return nil, fmt.Errorf("empty response content")
	}

	return &AIResponse{
		Response:     responseText,
		InputTokens:  sonarResp.Usage.PromptTokens,
		OutputTokens: sonarResp.Usage.CompletionTokens,
		Cost:         p.costService.CalculateCost(p.GetProviderName(), p.model, sonarResp.Usage.PromptTokens, sonarResp.Usage.CompletionTokens, true),
		Citations:    sonarResp.Citations,
	}, nil
}

// SupportsBatching returns false for Perplexity (synchronous API)
func (p *perplexityProvider) SupportsBatching() bool {
	return false
}

// GetMaxBatchSize returns 1 for Perplexity (no batching)
func (p *perplexityProvider) GetMaxBatchSize() int {
	return 1
}

// RunPromptBatch processes prompts sequentially (no native batching)
func (p *perplexityProvider) RunPromptBatch(ctx context.Context, queries []string, websearch bool, location *models.Location) ([]*AIResponse, error) {
	responses := make([]*AIResponse, len(queries))
	for i, query := range queries {
		response, err := p.RunPrompt(ctx, query, websearch, location)
		if err != nil {
			return nil, fmt.Errorf("failed to process prompt %d: %w", i+1, err)
		}
		responses[i] = response
	}

	return responses, nil
}
