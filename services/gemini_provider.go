// services/gemini_provider.go
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

type geminiProvider struct {
	apiKey      string
	model       string
	baseURL     string
	costService CostService
	httpClient  *http.Client
}

func NewGeminiProvider(cfg *config.Config, model string, costService CostService) AIProvider {
	return &geminiProvider{
		apiKey:      cfg.GeminiAPIKey,
		model:       model,
		baseURL:     "https://generativelanguage.googleapis.com/v1beta",
		costService: costService,
		httpClient: &http.Client{
			Timeout: 5 * time.Minute,
		},
	}
}

func (p *geminiProvider) GetProviderName() string {
	return "gemini"
}

// Gemini generateContent API structures
type GeminiRequest struct {
	Contents []GeminiContent `json:"contents"`
	Tools    []GeminiTool    `json:"tools,omitempty"`
}

type GeminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []GeminiPart `json:"parts"`
}

type GeminiPart struct {
	Text string `json:"text"`
}

type GeminiTool struct {
	GoogleSearch *struct{} `json:"google_search,omitempty"`
}

type GeminiResponse struct {
	Candidates    []GeminiCandidate `json:"candidates"`
	UsageMetadata GeminiUsage       `json:"usageMetadata"`
}

type GeminiCandidate struct {
	Content           GeminiContent            `json:"content"`
	FinishReason      string                   `json:"finishReason"`
	GroundingMetadata *GeminiGroundingMetadata `json:"groundingMetadata,omitempty"`
}

type GeminiGroundingMetadata struct {
	GroundingChunks []GeminiGroundingChunk `json:"groundingChunks,omitempty"`
}

type GeminiGroundingChunk struct {
	Web *GeminiWebSource `json:"web,omitempty"`
}

type GeminiWebSource struct {
	URI   string `json:"uri"`
	Title string `json:"title"`
}

type GeminiUsage struct {
	PromptTokenCount     int `json:"promptTokenCount"`
	CandidatesTokenCount int `json:"candidatesTokenCount"`
	TotalTokenCount      int `json:"totalTokenCount"`
}

// RunPrompt calls the Generative Language generateContent API, attaching the
// Google Search grounding tool when websearch is enabled.
func (p *geminiProvider) RunPrompt(ctx context.Context, query string, websearch bool, location *models.Location) (*AIResponse, error) {
	prompt := buildLocationPrompt(query, location)

	requestBody := GeminiRequest{
		Contents: []GeminiContent{
			{
				Role:  "user",
				Parts: []GeminiPart{{Text: prompt}},
			},
		},
	}
	if websearch {
		requestBody.Tools = []GeminiTool{{GoogleSearch: &struct{}{}}}
	}

	jsonData, err := json.Marshal(requestBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", p.baseURL, p.model, p.apiKey)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errorBody bytes.Buffer
		errorBody.ReadFrom(resp.Body)
		return nil, fmt.Errorf("Gemini API returned status %d: %s", resp.StatusCode, errorBody.String())
	}

	var geminiResp GeminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&geminiResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if len(geminiResp.Candidates) == 0 {
		return nil, fmt.Errorf("no candidates returned")
	}

	candidate := geminiResp.Candidates[0]
	responseText := ""
	for _, part := range candidate.Content.Parts {
		responseText += part.Text
	}
	if responseText == "" {
		return nil, fmt.Errorf("empty candidate content")
	}

	var citations []string
	if candidate.GroundingMetadata != nil {
		for _, chunk := range candidate.GroundingMetadata.GroundingChunks {
			if chunk.Web != nil && chunk.Web.URI != "" {
				citations = append(citations, chunk.Web.URI)
			}
		}
	}

	return &AIResponse{
		Response:     responseText,
		InputTokens:  geminiResp.UsageMetadata.PromptTokenCount,
		OutputTokens: geminiResp.UsageMetadata.CandidatesTokenCount,
		Cost:         p.costService.CalculateCost(p.GetProviderName(), p.model, geminiResp.UsageMetadata.PromptTokenCount, geminiResp.UsageMetadata.CandidatesTokenCount, websearch),
		Citations:    citations,
	}, nil
}

// SupportsBatching returns false for Gemini (synchronous API)
func (p *geminiProvider) SupportsBatching() bool {
	return false
}

// GetMaxBatchSize returns 1 for Gemini (no batching)
func (p *geminiProvider) GetMaxBatchSize() int {
	return 1
}

// RunPromptBatch processes prompts sequentially (no native batching)
func (p *geminiProvider) RunPromptBatch(ctx context.Context, queries []string, websearch bool, location *models.Location) ([]*AIResponse, error) {
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
