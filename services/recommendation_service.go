// services/recommendation_service.go
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/beenruuu/mentha/internal/config"
	"github.com/beenruuu/mentha/internal/models"
	"github.com/google/uuid"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const maxRecommendations = 10

type recommendationService struct {
	cfg          *config.Config
	repos        *RepositoryManager
	openAIClient *openai.Client
	costService  CostService
}

func NewRecommendationService(cfg *config.Config, repos *RepositoryManager) RecommendationService {
	client := openai.NewClient(option.WithAPIKey(cfg.OpenAIAPIKey))

	return &recommendationService{
		cfg:          cfg,
		repos:        repos,
		openAIClient: &client,
		costService:  NewCostService(),
	}
}

// GenerateRecommendations turns the batch report into actionable suggestions
// and replaces any earlier recommendations for the batch.
func (s *recommendationService) GenerateRecommendations(ctx context.Context, brandID, batchID uuid.UUID, report *VisibilityReport) ([]*models.Recommendation, float64, error) {
	fmt.Printf("[RecommendationService] Generating recommendations for brand %s, batch %s\n", brandID, batchID)

	brand, err := s.repos.BrandRepo.GetByID(ctx, brandID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get brand %s: %w", brandID, err)
	}
	if brand == nil {
		return nil, 0, fmt.Errorf("brand %s not found", brandID)
	}

	hallucinations, err := s.repos.HallucinationRepo.GetByBatch(ctx, batchID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get hallucinations for batch %s: %w", batchID, err)
	}

	prompt := s.buildRecommendationsPrompt(brand, report, hallucinations)

	model := openai.ChatModelGPT4_1

	schemaParam := openai.ResponseFormatJSONSchemaJSONSchemaParam{
		Name:        "visibility_recommendations",
		Description: openai.String("Actionable recommendations to improve brand visibility in AI answers"),
		Schema:      GenerateSchema[RecommendationsResponse](),
		Strict:      openai.Bool(true),
	}

	chatResponse, err := s.openAIClient.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage("You are a generative engine optimization consultant. Recommend concrete, prioritized actions grounded in the metrics provided."),
			openai.UserMessage(prompt),
		},
		Model: model,
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{JSONSchema: schemaParam},
		},
		Temperature: openai.Float(0.3),
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to generate recommendations: %w", err)
	}

	if len(chatResponse.Choices) == 0 {
		return nil, 0, fmt.Errorf("no response choices returned from OpenAI")
	}

	cost := s.costService.CalculateCost("openai", string(model), int(chatResponse.Usage.PromptTokens), int(chatResponse.Usage.CompletionTokens), false)

	var parsed RecommendationsResponse
	if err := json.Unmarshal([]byte(repairJSON(chatResponse.Choices[0].Message.Content)), &parsed); err != nil {
		return nil, 0, fmt.Errorf("failed to parse recommendations response: %w", err)
	}

	now := time.Now()
	var recommendations []*models.Recommendation
	for i, rec := range parsed.Recommendations {
		if i >= maxRecommendations {
			break
		}
		batchRef := batchID
		recommendations = append(recommendations, &models.Recommendation{
			RecommendationID: uuid.New(),
			BrandID:          brandID,
			BatchID:          &batchRef,
			Title:            rec.Title,
			Detail:           rec.Detail,
			Category:         normalizeCategory(rec.Category),
			Priority:         normalizePriority(rec.Priority),
			CreatedAt:        now,
		})
	}

	// Regeneration replaces, never appends.
	if err := s.repos.RecommendationRepo.DeleteByBatch(ctx, batchID); err != nil {
		return nil, 0, fmt.Errorf("failed to clear previous recommendations: %w", err)
	}

	if len(recommendations) > 0 {
		if err := s.repos.RecommendationRepo.BulkCreate(ctx, recommendations); err != nil {
			return nil, 0, fmt.Errorf("failed to store recommendations: %w", err)
		}
	}

	fmt.Printf("[RecommendationService] Stored %d recommendations for batch %s\n", len(recommendations), batchID)
	return recommendations, cost, nil
}

func (s *recommendationService) buildRecommendationsPrompt(brand *models.Brand, report *VisibilityReport, hallucinations []*models.Hallucination) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "## BRAND\nName: %s\n", brand.Name)
	if brand.Industry != nil {
		fmt.Fprintf(&sb, "Industry: %s\n", *brand.Industry)
	}

	fmt.Fprintf(&sb, "\n## LATEST ANALYSIS METRICS\n")
	fmt.Fprintf(&sb, "- Visibility score: %.2f (share of AI answers mentioning the brand)\n", report.VisibilityScore)
	fmt.Fprintf(&sb, "- Share of voice: %.2f\n", report.ShareOfVoice)
	if report.AvgSentiment != nil {
		fmt.Fprintf(&sb, "- Average sentiment: %.2f (0 negative, 0.5 neutral, 1 positive)\n", *report.AvgSentiment)
	}
	fmt.Fprintf(&sb, "- Hallucination rate: %.2f\n", report.HallucinationRate)

	if len(report.Engines) > 0 {
		fmt.Fprintf(&sb, "\n## PER-ENGINE VISIBILITY\n")
		for _, engine := range report.Engines {
			fmt.Fprintf(&sb, "- %s: %d/%d runs mentioned the brand\n", engine.EngineName, engine.RunsWithMentions, engine.TotalRuns)
		}
	}

	if len(report.Competitive) > 0 {
		fmt.Fprintf(&sb, "\n## COMPETITIVE LANDSCAPE\n")
		for _, org := range report.Competitive {
			marker := ""
			if org.IsTargetBrand {
				marker = " (target brand)"
			}
			fmt.Fprintf(&sb, "- %s%s: %d mentions, avg rank %.1f, avg sentiment %.2f\n",
				org.MentionOrg, marker, org.MentionCount, org.AverageRank, org.AverageSentiment)
		}
	}

	if len(hallucinations) > 0 {
		fmt.Fprintf(&sb, "\n## HALLUCINATED CLAIMS ABOUT THE BRAND\n")
		for i, h := range hallucinations {
			if i >= 5 {
				fmt.Fprintf(&sb, "- ... and %d more\n", len(hallucinations)-5)
				break
			}
			fmt.Fprintf(&sb, "- [%s] %s\n", h.Verdict, h.ClaimText)
		}
	}

	fmt.Fprintf(&sb, `
## TASK
Produce up to %d recommendations to improve this brand's visibility and accuracy in AI engine answers. Each recommendation needs:
- title: short imperative headline
- detail: 2-4 sentences of concrete guidance referencing the metrics above
- category: "content", "technical", or "authority"
- priority: 1 (highest) to 3

Focus on the weakest metrics and on correcting hallucinated claims.`, maxRecommendations)

	return sb.String()
}

func normalizeCategory(category string) string {
	switch strings.TrimSpace(strings.ToLower(category)) {
	case "content", "technical", "authority":
		return strings.TrimSpace(strings.ToLower(category))
	default:
		return "content"
	}
}

func normalizePriority(priority int) int {
	if priority < 1 {
		return 1
	}
	if priority > 3 {
		return 3
	}
	return priority
}
