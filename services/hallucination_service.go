// services/hallucination_service.go
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

const verdictChunkLimit = 5

type hallucinationService struct {
	cfg          *config.Config
	ragService   RAGService
	openAIClient *openai.Client
	costService  CostService
	repos        *RepositoryManager
}

// NewHallucinationService creates the claim verification service. Claims are
// judged only against the brand's own indexed content, never against the
// model's general knowledge.
func NewHallucinationService(cfg *config.Config, ragService RAGService, repos *RepositoryManager) HallucinationService {
	client := openai.NewClient(option.WithAPIKey(cfg.OpenAIAPIKey))

	return &hallucinationService{
		cfg:          cfg,
		ragService:   ragService,
		openAIClient: &client,
		costService:  NewCostService(),
		repos:        repos,
	}
}

// VerifyRunClaims checks every brand-mentioning claim of the run against the
// brand's crawled content. Verdicts are persisted per claim; contradicted and
// unverifiable ones also produce hallucination records.
func (s *hallucinationService) VerifyRunClaims(ctx context.Context, brandID uuid.UUID, run *models.PromptRun, claims []*models.PromptRunClaim) (*HallucinationResult, error) {
	result := &HallucinationResult{}
	now := time.Now()

	for _, claim := range claims {
		// Only claims about the brand can hallucinate about the brand.
		if claim.BrandMentioned == nil || !*claim.BrandMentioned {
			continue
		}

		verdict, cost, err := s.verifyClaim(ctx, brandID, claim)
		if err != nil {
			fmt.Printf("[HallucinationService] Warning: failed to verify claim %s: %v\n", claim.ClaimID, err)
			continue
		}

		result.Checked++
		result.TotalCost += cost

		if err := s.repos.ClaimRepo.UpdateVerification(ctx, claim.ClaimID, verdict.Verdict); err != nil {
			fmt.Printf("[HallucinationService] Warning: failed to persist verdict for claim %s: %v\n", claim.ClaimID, err)
		}

		if verdict.Verdict == "supported" {
			continue
		}

		evidence := verdict.Evidence
		confidence := verdict.Confidence
		result.Hallucinations = append(result.Hallucinations, &models.Hallucination{
			HallucinationID: uuid.New(),
			PromptRunID:     run.PromptRunID,
			ClaimID:         claim.ClaimID,
			ClaimText:       claim.ClaimText,
			Verdict:         verdict.Verdict,
			Evidence:        &evidence,
			Confidence:      &confidence,
			CreatedAt:       now,
		})
	}

	if len(result.Hallucinations) > 0 {
		if err := s.repos.HallucinationRepo.BulkCreate(ctx, result.Hallucinations); err != nil {
			return nil, fmt.Errorf("failed to store hallucinations: %w", err)
		}
	}

	fmt.Printf("[HallucinationService] Verified %d claims for run %s, found %d hallucinations\n",
		result.Checked, run.PromptRunID, len(result.Hallucinations))

	return result, nil
}

func (s *hallucinationService) verifyClaim(ctx context.Context, brandID uuid.UUID, claim *models.PromptRunClaim) (*ClaimVerdictResponse, float64, error) {
	chunks, err := s.ragService.Retrieve(ctx, brandID, claim.ClaimText, verdictChunkLimit)
	if err != nil {
		// No indexed content means nothing to judge against.
		return &ClaimVerdictResponse{
			Verdict:    "unverifiable",
			Evidence:   "No indexed brand content available for verification",
			Confidence: 1.0,
		}, 0, nil
	}

	prompt := s.buildVerdictPrompt(claim.ClaimText, chunks)

	model := openai.ChatModelGPT4_1

	schemaParam := openai.ResponseFormatJSONSchemaJSONSchemaParam{
		Name:        "claim_verdict",
		Description: openai.String("Verdict on a claim against brand source content"),
		Schema:      GenerateSchema[ClaimVerdictResponse](),
		Strict:      openai.Bool(true),
	}

	chatResponse, err := s.openAIClient.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage("You are a strict fact-checker. Judge claims ONLY against the provided source material, never against your own knowledge."),
			openai.UserMessage(prompt),
		},
		Model: model,
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{JSONSchema: schemaParam},
		},
		Temperature: openai.Float(0),
	})
	if err != nil {
		return nil, 0, fmt.Errorf("verdict request failed: %w", err)
	}

	if len(chatResponse.Choices) == 0 {
		return nil, 0, fmt.Errorf("no response choices returned from OpenAI")
	}

	var verdict ClaimVerdictResponse
	if err := json.Unmarshal([]byte(repairJSON(chatResponse.Choices[0].Message.Content)), &verdict); err != nil {
		return nil, 0, fmt.Errorf("failed to parse verdict response: %w", err)
	}

	verdict.Verdict = normalizeVerdict(verdict.Verdict)

	cost := s.costService.CalculateCost("openai", string(model), int(chatResponse.Usage.PromptTokens), int(chatResponse.Usage.CompletionTokens), false)

	return &verdict, cost, nil
}

func (s *hallucinationService) buildVerdictPrompt(claimText string, chunks []RetrievedChunk) string {
	var sources []string
	for i, chunk := range chunks {
		sources = append(sources, fmt.Sprintf("[Source %d] %s (%s)\n%s", i+1, chunk.Title, chunk.URL, chunk.Content))
	}

	return fmt.Sprintf(`Judge the claim below against the brand's own published content.

## VERDICT RULES

- "supported": the source material confirms the claim
- "contradicted": the source material directly conflicts with the claim
- "unverifiable": the source material says nothing about the claim either way

Evidence must quote or closely reference the source material that drove your verdict. Confidence is 0.0 to 1.0.

## CLAIM
"""
%s
"""

## SOURCE MATERIAL
%s`, claimText, strings.Join(sources, "\n\n"))
}

// normalizeVerdict maps any off-enum model output onto the three valid
// verdicts, treating unknowns as unverifiable.
func normalizeVerdict(verdict string) string {
	switch strings.TrimSpace(strings.ToLower(verdict)) {
	case "supported", "true", "verified":
		return "supported"
	case "contradicted", "false", "refuted":
		return "contradicted"
	default:
		return "unverifiable"
	}
}
