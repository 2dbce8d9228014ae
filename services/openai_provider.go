// services/openai_provider.go
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/beenruuu/mentha/internal/config"
	"github.com/beenruuu/mentha/internal/models"
	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

type openAIProvider struct {
	client      *openai.Client
	model       string
	costService CostService
	apiKey      string
}

func NewOpenAIProvider(cfg *config.Config, model string, costService CostService) AIProvider {
	client := openai.NewClient(
		option.WithAPIKey(cfg.OpenAIAPIKey),
	)

	return &openAIProvider{
		client:      &client,
		model:       model,
		costService: costService,
		apiKey:      cfg.OpenAIAPIKey, // Kept for web search API calls
	}
}

func (p *openAIProvider) GetProviderName() string {
	return "openai"
}

// PromptResponse represents the structured output for prompt responses
type PromptResponse struct {
	Answer     string   `json:"answer" jsonschema_description:"The comprehensive answer to the question"`
	KeyPoints  []string `json:"key_points" jsonschema_description:"3-5 key points from the answer"`
	Confidence string   `json:"confidence" jsonschema:"enum=high,enum=medium,enum=low" jsonschema_description:"Confidence level in the answer accuracy"`
}

// WebSearchRequest represents the request structure for OpenAI web search API
type WebSearchRequest struct {
	Model string          `json:"model"`
	Tools []WebSearchTool `json:"tools"`
	Input string          `json:"input"`
}

type WebSearchTool struct {
	Type         string           `json:"type"`
	UserLocation *WebUserLocation `json:"user_location,omitempty"`
}

type WebUserLocation struct {
	Type    string  `json:"type"`
	Country string  `json:"country"`
	Region  *string `json:"region,omitempty"`
	City    *string `json:"city,omitempty"`
}

// WebSearchResponse represents the response from OpenAI web search API
type WebSearchResponse struct {
	ID     string                `json:"id"`
	Object string                `json:"object"`
	Status string                `json:"status"`
	Output []WebSearchOutputItem `json:"output"`
	Usage  WebSearchUsage        `json:"usage"`
}

type WebSearchOutputItem struct {
	ID      string             `json:"id"`
	Type    string             `json:"type"`
	Status  string             `json:"status,omitempty"`
	Content []WebSearchContent `json:"content,omitempty"`
}

type WebSearchContent struct {
	Type        string                `json:"type"`
	Text        string                `json:"text,omitempty"`
	Annotations []WebSearchAnnotation `json:"annotations,omitempty"`
}

type WebSearchAnnotation struct {
	Type       string `json:"type"`
	StartIndex int    `json:"start_index"`
	EndIndex   int    `json:"end_index"`
	Title      string `json:"title,omitempty"`
	URL        string `json:"url,omitempty"`
}

type WebSearchUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

// Generate the JSON schema at initialization time
var PromptResponseSchema = GeneratePromptSchema[PromptResponse]()

func GeneratePromptSchema[T any]() interface{} {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	schema := reflector.Reflect(v)
	return schema
}

// RunPrompt implements AIProvider using web search when enabled
func (p *openAIProvider) RunPrompt(ctx context.Context, query string, websearch bool, location *models.Location) (*AIResponse, error) {
	// Build location-aware prompt
	prompt := buildLocationPrompt(query, location)

	// Use web search API when websearch is enabled
	if websearch {
		return p.runWebSearch(ctx, prompt, location)
	}

	// Use structured output for non-websearch queries via SDK
	schemaParam := openai.ResponseFormatJSONSchemaJSONSchemaParam{
		Name:        "prompt_response",
		Description: openai.String("Structured response to the question"),
		Schema:      PromptResponseSchema,
		Strict:      openai.Bool(true),
	}

	response, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage("You are a helpful assistant that provides accurate, comprehensive answers to questions."),
			openai.UserMessage(prompt),
		},
		Model: openai.ChatModel(p.model),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{JSONSchema: schemaParam},
		},
		Temperature: openai.Float(0.7),
		MaxTokens:   openai.Int(2000),
	})

	if err != nil {
		return nil, fmt.Errorf("chat completion failed: %w", err)
	}

	if len(response.Choices) == 0 {
		return nil, fmt.Errorf("no response choices returned")
	}

	// Parse the structured response
	responseContent := response.Choices[0].Message.Content
	var structuredResp PromptResponse
	if err := json.Unmarshal([]byte(responseContent), &structuredResp); err == nil {
		// Use the answer field as the main response
		responseContent = structuredResp.Answer

		if len(structuredResp.KeyPoints) > 0 {
			responseContent += "\n\nKey Points:\n"
			for _, point := range structuredResp.KeyPoints {
				responseContent += fmt.Sprintf("• %s\n", point)
			}
		}
	}

	result := &AIResponse{
		Response:     responseContent,
		InputTokens:  int(response.Usage.PromptTokens),
		OutputTokens: int(response.Usage.CompletionTokens),
		Cost:         p.costService.CalculateCost(p.GetProviderName(), p.model, int(response.Usage.PromptTokens), int(response.Usage.CompletionTokens), false),
	}

	return result, nil
}

// webSearchLocation converts a job location for the web search API. Jobs
// without a configured location run the search unlocalized.
func webSearchLocation(location *models.Location) *WebUserLocation {
	if location == nil || location.Country == "" {
		return nil
	}
	userLocation := &WebUserLocation{
		Type:    "approximate",
		Country: strings.ToUpper(location.Country), // API expects uppercase country codes
	}
	if location.Region != nil && *location.Region != "" {
		userLocation.Region = location.Region
	}
	if location.City != nil && *location.City != "" {
		userLocation.City = location.City
	}
	return userLocation
}

// runWebSearch uses OpenAI's web search API directly
func (p *openAIProvider) runWebSearch(ctx context.Context, query string, location *models.Location) (*AIResponse, error) {
	userLocation := webSearchLocation(location)

	requestBody := WebSearchRequest{
		Model: p.model,
		Tools: []WebSearchTool{
			{
				Type:         "web_search_preview",
				UserLocation: userLocation,
			},
		},
		Input: query,
	}

	jsonData, err := json.Marshal(requestBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", "https://api.openai.com/v1/responses", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("web search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("web search API returned status %d", resp.StatusCode)
	}

	var webSearchResp WebSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&webSearchResp); err != nil {
		return nil, fmt.Errorf("failed to decode web search response: %w", err)
	}

	// Extract the final message content and any cited URLs from the response
	responseText := ""
	var citations []string
	for _, output := range webSearchResp.Output {
		if output.Type != "message" || len(output.Content) == 0 {
			continue
		}
		for _, content := range output.Content {
			if content.Type != "output_text" {
				continue
			}
			responseText = content.Text
			for _, annotation := range content.Annotations {
				if annotation.Type == "url_citation" && annotation.URL != "" {
					citations = append(citations, annotation.URL)
				}
			}
			break
		}
		if responseText != "" {
			break
		}
	}

	if responseText == "" {
		return nil, fmt.Errorf("no message content found in web search response")
	}

	result := &AIResponse{
		Response:     responseText,
		InputTokens:  webSearchResp.Usage.InputTokens,
		OutputTokens: webSearchResp.Usage.OutputTokens,
		Cost:         p.costService.CalculateCost(p.GetProviderName(), p.model, webSearchResp.Usage.InputTokens, webSearchResp.Usage.OutputTokens, true),
		Citations:    citations,
	}

	return result, nil
}

// SupportsBatching returns false for OpenAI (runs are processed one at a time)
func (p *openAIProvider) SupportsBatching() bool {
	return false
}

// GetMaxBatchSize returns 1 for OpenAI (no batching)
func (p *openAIProvider) GetMaxBatchSize() int {
	return 1
}

// RunPromptBatch processes prompts sequentially (no native batching)
func (p *openAIProvider) RunPromptBatch(ctx context.Context, queries []string, websearch bool, location *models.Location) ([]*AIResponse, error) {
	responses := make([]*AIResponse, 0, len(queries))
	for _, query := range queries {
		resp, err := p.RunPrompt(ctx, query, websearch, location)
		if err != nil {
			return nil, err
		}
		responses = append(responses, resp)
	}
	return responses, nil
}

// buildLocationPrompt adds geographic context shared by all providers.
func buildLocationPrompt(query string, location *models.Location) string {
	if location == nil || location.Country == "" {
		return query
	}
	return fmt.Sprintf("Answer the following question with specific information relevant to %s:\n\n%s",
		formatLocation(location), query)
}

func formatLocation(location *models.Location) string {
	parts := []string{}
	if location.City != nil && *location.City != "" {
		parts = append(parts, *location.City)
	}
	if location.Region != nil && *location.Region != "" {
		parts = append(parts, *location.Region)
	}
	parts = append(parts, location.Country)
	return strings.Join(parts, ", ")
}
