// services/anthropic_provider.go
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/beenruuu/mentha/internal/config"
	"github.com/beenruuu/mentha/internal/models"
	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

type anthropicProvider struct {
	client      *anthropic.Client
	model       string
	costService CostService
}

func NewAnthropicProvider(cfg *config.Config, model string, costService CostService) AIProvider {
	client := anthropic.NewClient(
		option.WithAPIKey(cfg.AnthropicAPIKey),
	)

	return &anthropicProvider{
		client:      &client,
		model:       model,
		costService: costService,
	}
}

func (p *anthropicProvider) GetProviderName() string {
	return "anthropic"
}

func (p *anthropicProvider) RunPrompt(ctx context.Context, query string, websearch bool, location *models.Location) (*AIResponse, error) {
	prompt := buildLocationPrompt(query, location)

	// Web search is not exposed separately; the structured call covers both paths.
	return p.runStructuredSearch(ctx, prompt, websearch)
}

func (p *anthropicProvider) runStructuredSearch(ctx context.Context, query string, websearch bool) (*AIResponse, error) {
	// Use JSON structured prompting
	structuredPrompt := fmt.Sprintf(`You are a knowledgeable assistant providing accurate information about brands, products and companies.

Please provide a comprehensive answer to the following question, returning ONLY a valid JSON object with this structure:

{
  "answer": "Your detailed answer here",
  "key_points": ["Key point 1", "Key point 2", "Key point 3"],
  "confidence": "high|medium|low"
}

Question: %s

Remember: Return ONLY the JSON object, no other text.`, query)

	messages := []anthropic.MessageParam{{
		Content: []anthropic.ContentBlockParamUnion{{
			OfText: &anthropic.TextBlockParam{Text: structuredPrompt},
		}},
		Role: anthropic.MessageParamRoleUser,
	}}

	response, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(p.model),
		MaxTokens:   2000,
		Messages:    messages,
		Temperature: anthropic.Float(0.7),
	})
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	fullResponse := p.extractResponseText(*response)

	// Parse the JSON response
	parsedResponse := p.parseJSONResponse(fullResponse)

	result := &AIResponse{
		Response:     parsedResponse,
		InputTokens:  int(response.Usage.InputTokens),
		OutputTokens: int(response.Usage.OutputTokens),
		Cost:         p.costService.CalculateCost(p.GetProviderName(), p.model, int(response.Usage.InputTokens), int(response.Usage.OutputTokens), websearch),
	}

	return result, nil
}

func (p *anthropicProvider) parseJSONResponse(response string) string {
	var structuredResp struct {
		Answer     string   `json:"answer"`
		KeyPoints  []string `json:"key_points"`
		Confidence string   `json:"confidence"`
	}

	if err := json.Unmarshal([]byte(repairJSON(response)), &structuredResp); err != nil || structuredResp.Answer == "" {
		// If parsing fails, return the raw response
		return response
	}

	answer := structuredResp.Answer

	if len(structuredResp.KeyPoints) > 0 {
		answer += "\n\nKey Points:\n"
		for _, point := range structuredResp.KeyPoints {
			answer += fmt.Sprintf("• %s\n", point)
		}
	}

	return answer
}

func (p *anthropicProvider) extractResponseText(response anthropic.Message) string {
	var textParts []string

	for _, block := range response.Content {
		switch variant := block.AsAny().(type) {
		case anthropic.TextBlock:
			textParts = append(textParts, variant.Text)
		}
	}

	return strings.Join(textParts, "")
}

// SupportsBatching returns false for Anthropic (no native batching support)
func (p *anthropicProvider) SupportsBatching() bool {
	return false
}

// GetMaxBatchSize returns 1 for Anthropic (no batching)
func (p *anthropicProvider) GetMaxBatchSize() int {
	return 1
}

// RunPromptBatch processes prompts sequentially for Anthropic (no batching support)
func (p *anthropicProvider) RunPromptBatch(ctx context.Context, queries []string, websearch bool, location *models.Location) ([]*AIResponse, error) {
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
