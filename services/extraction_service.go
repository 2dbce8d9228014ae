// services/extraction_service.go
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/beenruuu/mentha/internal/config"
	"github.com/beenruuu/mentha/internal/models"
	"github.com/google/uuid"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"golang.org/x/net/publicsuffix"
	"mvdan.cc/xurls/v2"
)

type extractionService struct {
	cfg          *config.Config
	openAIClient *openai.Client
	costService  CostService
}

func NewExtractionService(cfg *config.Config) ExtractionService {
	client := openai.NewClient(option.WithAPIKey(cfg.OpenAIAPIKey))

	return &extractionService{
		cfg:          cfg,
		openAIClient: &client,
		costService:  NewCostService(),
	}
}

// ExtractMentions parses an engine answer and extracts brand mentions
func (s *extractionService) ExtractMentions(ctx context.Context, promptRunID uuid.UUID, response string, targetBrand string, competitors []string) ([]*models.PromptRunMention, error) {
	fmt.Printf("[ExtractMentions] Processing mentions for prompt run %s\n", promptRunID)

	prompt := s.buildMentionsExtractionPrompt(response, targetBrand, competitors)

	// Use a model that supports structured outputs
	model := openai.ChatModelGPT4_1

	schemaParam := openai.ResponseFormatJSONSchemaJSONSchemaParam{
		Name:        "brand_mentions_extraction",
		Description: openai.String("Extract brand mentions from AI response"),
		Schema:      GenerateSchema[MentionsExtractionResponse](),
		Strict:      openai.Bool(true),
	}

	chatResponse, err := s.openAIClient.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage("You are an expert brand analyst. Extract brand and company mentions accurately and comprehensively."),
			openai.UserMessage(prompt),
		},
		Model: model,
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{JSONSchema: schemaParam},
		},
		Temperature: openai.Float(0), // Deterministic extraction
	})

	if err != nil {
		return nil, fmt.Errorf("failed to extract mentions: %w", err)
	}

	if len(chatResponse.Choices) == 0 {
		return nil, fmt.Errorf("no response choices returned from OpenAI")
	}

	responseContent := chatResponse.Choices[0].Message.Content

	var extractedData MentionsExtractionResponse
	if err := json.Unmarshal([]byte(repairJSON(responseContent)), &extractedData); err != nil {
		return nil, fmt.Errorf("failed to parse mentions extraction response: %w", err)
	}

	// Capture token and cost data from the AI call
	inputTokens := int(chatResponse.Usage.PromptTokens)
	outputTokens := int(chatResponse.Usage.CompletionTokens)
	totalCost := s.costService.CalculateCost("openai", string(model), inputTokens, outputTokens, false)

	var mentions []*models.PromptRunMention
	now := time.Now()

	if extractedData.TargetBrand != nil {
		sentiment := normalizeSentiment(extractedData.TargetBrand.TextSentiment)
		mentions = append(mentions, &models.PromptRunMention{
			MentionID:    uuid.New(),
			PromptRunID:  promptRunID,
			MentionOrg:   extractedData.TargetBrand.Name,
			MentionText:  extractedData.TargetBrand.MentionedText,
			MentionRank:  &extractedData.TargetBrand.Rank,
			Sentiment:    &sentiment,
			TargetBrand:  true,
			InputTokens:  &inputTokens,
			OutputTokens: &outputTokens,
			TotalCost:    &totalCost,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
	}

	for _, comp := range extractedData.Competitors {
		sentiment := normalizeSentiment(comp.TextSentiment)
		mentions = append(mentions, &models.PromptRunMention{
			MentionID:    uuid.New(),
			PromptRunID:  promptRunID,
			MentionOrg:   comp.Name,
			MentionText:  comp.MentionedText,
			MentionRank:  &comp.Rank,
			Sentiment:    &sentiment,
			TargetBrand:  false,
			InputTokens:  &inputTokens,
			OutputTokens: &outputTokens,
			TotalCost:    &totalCost,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
	}

	fmt.Printf("[ExtractMentions] Successfully extracted %d mentions\n", len(mentions))
	return mentions, nil
}

// ExtractClaims parses an engine answer and extracts factual claims
func (s *extractionService) ExtractClaims(ctx context.Context, promptRunID uuid.UUID, response string, targetBrand string) ([]*models.PromptRunClaim, error) {
	fmt.Printf("[ExtractClaims] Processing claims for prompt run %s\n", promptRunID)

	prompt := s.buildClaimsExtractionPrompt(response, targetBrand)

	model := openai.ChatModelGPT4_1

	schemaParam := openai.ResponseFormatJSONSchemaJSONSchemaParam{
		Name:        "claims_extraction",
		Description: openai.String("Extract factual claims from AI response"),
		Schema:      GenerateSchema[ClaimsExtractionResponse](),
		Strict:      openai.Bool(true),
	}

	chatResponse, err := s.openAIClient.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage("You are an expert fact-checker. Break down the response into individual, verifiable factual claims."),
			openai.UserMessage(prompt),
		},
		Model: model,
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{JSONSchema: schemaParam},
		},
		Temperature: openai.Float(0),
	})

	if err != nil {
		return nil, fmt.Errorf("failed to extract claims: %w", err)
	}

	if len(chatResponse.Choices) == 0 {
		return nil, fmt.Errorf("no response choices returned from OpenAI")
	}

	responseContent := chatResponse.Choices[0].Message.Content

	var extractedData ClaimsExtractionResponse
	if err := json.Unmarshal([]byte(repairJSON(responseContent)), &extractedData); err != nil {
		return nil, fmt.Errorf("failed to parse claims extraction response: %w", err)
	}

	inputTokens := int(chatResponse.Usage.PromptTokens)
	outputTokens := int(chatResponse.Usage.CompletionTokens)
	totalCost := s.costService.CalculateCost("openai", string(model), inputTokens, outputTokens, false)

	var claims []*models.PromptRunClaim
	now := time.Now()

	for i, claim := range extractedData.Claims {
		sentiment := normalizeSentiment(claim.ClaimSentiment)
		brandMentioned := claim.BrandMentioned

		claims = append(claims, &models.PromptRunClaim{
			ClaimID:        uuid.New(),
			PromptRunID:    promptRunID,
			ClaimText:      claim.ClaimText,
			ClaimOrder:     i + 1,
			Sentiment:      &sentiment,
			BrandMentioned: &brandMentioned,
			InputTokens:    &inputTokens,
			OutputTokens:   &outputTokens,
			TotalCost:      &totalCost,
			CreatedAt:      now,
			UpdatedAt:      now,
		})
	}

	fmt.Printf("[ExtractClaims] Successfully extracted %d claims\n", len(claims))
	return claims, nil
}

// ExtractCitations finds URLs inside each claim's verbatim text and classifies
// them against the brand's domains. No AI call is needed for this step.
func (s *extractionService) ExtractCitations(ctx context.Context, claims []*models.PromptRunClaim, response string, brandWebsites []string) ([]*models.PromptRunCitation, error) {
	fmt.Printf("[ExtractCitations] Processing citations for %d claims\n", len(claims))

	var allCitations []*models.PromptRunCitation
	now := time.Now()

	imageExtensions := []string{".png", ".jpg", ".jpeg", ".gif", ".bmp", ".svg", ".webp"}

	for _, claim := range claims {
		// Claims are verbatim copies of the response, so their citations are
		// the URLs inside the claim text itself.
		matches := xurls.Strict().FindAllString(claim.ClaimText, -1)
		seenURLs := make(map[string]bool)
		order := 0

		for _, match := range matches {
			urlStr := strings.TrimSpace(match)

			u, err := url.Parse(urlStr)
			if err != nil {
				fmt.Printf("[ExtractCitations] Skipping unparseable URL: %s\n", urlStr)
				continue
			}

			if u.Scheme != "http" && u.Scheme != "https" {
				continue // Skip mailto:, ftp:, etc.
			}

			// Clean the URL: drop www., UTM parameters and trailing slash
			u.Host = strings.TrimPrefix(u.Hostname(), "www.")
			q := u.Query()
			for param := range q {
				if strings.HasPrefix(strings.ToLower(param), "utm_") {
					q.Del(param)
				}
			}
			u.RawQuery = q.Encode()
			finalURL := strings.TrimRight(u.String(), "/")

			if finalURL == "" || seenURLs[finalURL] {
				continue
			}

			pathLower := strings.ToLower(u.Path)
			isImage := false
			for _, ext := range imageExtensions {
				if strings.HasSuffix(pathLower, ext) {
					isImage = true
					break
				}
			}
			if isImage {
				continue
			}

			citationType := "secondary"
			if isPrimaryDomain(finalURL, brandWebsites) {
				citationType = "primary"
			}

			order++
			sourceURL := finalURL
			allCitations = append(allCitations, &models.PromptRunCitation{
				CitationID:    uuid.New(),
				ClaimID:       claim.ClaimID,
				SourceURL:     &sourceURL,
				CitationType:  citationType,
				CitationOrder: order,
				CreatedAt:     now,
				UpdatedAt:     now,
			})
			seenURLs[finalURL] = true
		}
	}

	fmt.Printf("[ExtractCitations] Successfully extracted %d total citations\n", len(allCitations))
	return allCitations, nil
}

// CalculateMetrics computes brand visibility metrics from mentions
func (s *extractionService) CalculateMetrics(ctx context.Context, mentions []*models.PromptRunMention, targetBrand string) (*BrandMetrics, error) {
	var targetMention *models.PromptRunMention

	// Find target brand mention that actually has content
	for _, mention := range mentions {
		if mention.TargetBrand && mention.MentionText != "" && mention.MentionOrg != "" {
			targetMention = mention
			break
		}
	}

	metrics := &BrandMetrics{
		BrandMentioned: targetMention != nil,
	}

	if targetMention == nil {
		return metrics, nil
	}

	// Share of voice: target mention length over all mention text (decimal)
	totalLen := 0.0
	for _, mention := range mentions {
		totalLen += float64(len(mention.MentionText))
	}
	if totalLen > 0 {
		shareOfVoice := float64(len(targetMention.MentionText)) / totalLen
		metrics.ShareOfVoice = &shareOfVoice
	}

	if targetMention.MentionRank != nil {
		metrics.BrandRank = targetMention.MentionRank
	} else {
		defaultRank := 1
		metrics.BrandRank = &defaultRank
	}

	if targetMention.Sentiment != nil {
		sentimentFloat := convertSentimentToFloat(*targetMention.Sentiment)
		metrics.BrandSentiment = &sentimentFloat
	}

	return metrics, nil
}

func (s *extractionService) buildMentionsExtractionPrompt(response, targetBrand string, competitors []string) string {
	competitorsList := ""
	if len(competitors) > 0 {
		competitorsList = "## KNOWN COMPETITORS (look for these in particular):\n"
		for _, comp := range competitors {
			competitorsList += fmt.Sprintf("- %s\n", comp)
		}
		competitorsList += "\n"
	}

	return fmt.Sprintf(`You are an expert competitive intelligence analyst extracting SPECIFIC BRAND AND COMPANY NAMES from the response text below.

## MOST CRITICAL RULE: ONLY EXTRACT WHAT IS ACTUALLY MENTIONED

**You MUST only extract brands that are explicitly mentioned in the response text.**
**IGNORE any brand names that appear in these instructions, they are context only.**

## EXTRACTION CRITERIA

**EXTRACT** (only if actually mentioned in the response text):
- Specific companies, brands, products and platforms

**NEVER EXTRACT**:
- Lists or rankings ("Top 10 tools")
- Generic categories ("SEO platforms", "leading providers")
- Descriptive phrases without a specific named entity

## TARGET BRAND ANALYSIS

**Your target brand for this analysis is: "%s"**

- IF this brand (or recognizable variations, short names, domain-stripped forms) appears in the response text, create the target_brand record
- IF it does NOT appear, set target_brand to null

%s## EXTRACTION REQUIREMENTS

1. Rank brands by their FIRST appearance in the text
2. Extract the complete sentence or phrase containing each mention
3. Sentiment per mention: "positive", "negative", or "neutral"
4. Better to extract 0 brands than to invent mentions

## RESPONSE TEXT TO ANALYZE
"""
%s
"""`, targetBrand, competitorsList, response)
}

func (s *extractionService) buildClaimsExtractionPrompt(response, targetBrand string) string {
	return fmt.Sprintf(`You are an expert fact-checker. Extract INDIVIDUAL factual claims from an AI response, splitting text into atomic, verifiable facts.

## REQUIREMENTS

1. **VERBATIM COPYING**: Extract claims EXACTLY as written in the source text. Do not paraphrase, fix grammar, or clean up formatting. The downstream system requires exact text matches.

2. **WHAT COUNTS AS A CLAIM**: A statement that can be verified as true or false: statistics, comparisons, feature descriptions, historical facts, current states, prices, counts. NOT opinions, vague generalizations, questions or predictions.

3. **SPLITTING**: Prefer whole paragraphs as single claims. Only split at clear topic shifts. Include URLs that appear within the claim text.

4. **PER-CLAIM ANALYSIS**:
   - sentiment: "positive", "negative", or "neutral"
   - brand_mentioned: true if the target brand "%s" is mentioned in this specific claim

Extract ALL factual claims regardless of whether the target brand is mentioned. The brand_mentioned field is for tracking only, never filter claims on it.

## RESPONSE TO ANALYZE
%s`, targetBrand, response)
}

// normalizeSentiment ensures sentiment is a valid enum value, defaulting to "neutral" for invalid inputs
func normalizeSentiment(sentiment string) string {
	normalized := strings.TrimSpace(strings.ToLower(sentiment))

	switch normalized {
	case "positive":
		return "positive"
	case "negative":
		return "negative"
	case "neutral":
		return "neutral"
	default:
		return "neutral"
	}
}

func convertSentimentToFloat(sentiment string) float64 {
	switch strings.ToLower(sentiment) {
	case "positive":
		return 1.0
	case "neutral":
		return 0.5
	case "negative":
		return 0.0
	default:
		return 0.5 // Default to neutral
	}
}

// getBaseDomain extracts the base domain (eTLD+1) from a URL using publicsuffix
func getBaseDomain(urlStr string) (string, error) {
	if !strings.HasPrefix(urlStr, "http://") && !strings.HasPrefix(urlStr, "https://") {
		urlStr = "https://" + urlStr
	}

	u, err := url.Parse(urlStr)
	if err != nil {
		return "", fmt.Errorf("failed to parse URL %s: %w", urlStr, err)
	}

	hostname := u.Hostname()
	if hostname == "" {
		return "", fmt.Errorf("no hostname found in URL: %s", urlStr)
	}

	baseDomain, err := publicsuffix.EffectiveTLDPlusOne(hostname)
	if err != nil {
		return "", fmt.Errorf("failed to get base domain for %s: %w", hostname, err)
	}

	return baseDomain, nil
}

// isPrimaryDomain checks if a citation URL belongs to any of the brand's domains
func isPrimaryDomain(citationURL string, brandDomains []string) bool {
	citationBase, err := getBaseDomain(citationURL)
	if err != nil {
		return false
	}

	for _, brandDomain := range brandDomains {
		brandBase, err := getBaseDomain(brandDomain)
		if err != nil {
			continue
		}

		if strings.EqualFold(citationBase, brandBase) {
			return true
		}
	}
	return false
}
