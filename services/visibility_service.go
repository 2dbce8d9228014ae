// services/visibility_service.go
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type visibilityService struct {
	repos *RepositoryManager
}

func NewVisibilityService(repos *RepositoryManager) VisibilityService {
	return &visibilityService{repos: repos}
}

// BuildReport aggregates the brand's runs in the date window into the batch
// report. Scores are decimals in [0,1].
func (s *visibilityService) BuildReport(ctx context.Context, brandID, batchID uuid.UUID, startDate, endDate time.Time) (*VisibilityReport, error) {
	fmt.Printf("[VisibilityService] Building report for brand %s, batch %s\n", brandID, batchID)

	mentionsRows, err := s.repos.PromptRunRepo.GetMentionsAnalytics(ctx, brandID, startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("failed to get mentions analytics: %w", err)
	}

	report := &VisibilityReport{
		BrandID:     brandID,
		BatchID:     batchID,
		GeneratedAt: time.Now(),
	}

	totalRuns := 0
	runsWithMentions := 0
	for _, row := range mentionsRows {
		visibility := 0.0
		if row.TotalRuns > 0 {
			visibility = float64(row.RunsWithMentions) / float64(row.TotalRuns)
		}
		report.PromptVisibility = append(report.PromptVisibility, PromptVisibility{
			PromptID:         row.PromptID,
			TotalRuns:        row.TotalRuns,
			RunsWithMentions: row.RunsWithMentions,
			VisibilityScore:  visibility,
		})
		totalRuns += row.TotalRuns
		runsWithMentions += row.RunsWithMentions
	}

	if totalRuns > 0 {
		report.VisibilityScore = float64(runsWithMentions) / float64(totalRuns)
	}

	sovRows, err := s.repos.PromptRunRepo.GetShareOfVoiceAnalytics(ctx, brandID, startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("failed to get share of voice analytics: %w", err)
	}
	if len(sovRows) > 0 {
		sum := 0.0
		for _, row := range sovRows {
			sum += row.ShareOfVoicePercentage
		}
		report.ShareOfVoice = sum / float64(len(sovRows))
	}

	engines, err := s.repos.PromptRunRepo.GetEngineAnalytics(ctx, brandID, startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("failed to get engine analytics: %w", err)
	}
	report.Engines = engines

	competitive, err := s.repos.PromptRunRepo.GetCompetitiveAnalytics(ctx, brandID)
	if err != nil {
		return nil, fmt.Errorf("failed to get competitive analytics: %w", err)
	}
	report.Competitive = competitive

	avgSentiment, err := s.averageSentimentForBatch(ctx, batchID)
	if err != nil {
		return nil, err
	}
	report.AvgSentiment = avgSentiment

	hallucinationRate, err := s.hallucinationRateForBatch(ctx, batchID)
	if err != nil {
		return nil, err
	}
	report.HallucinationRate = hallucinationRate

	fmt.Printf("[VisibilityService] Report ready: visibility %.2f, SOV %.2f, hallucination rate %.2f\n",
		report.VisibilityScore, report.ShareOfVoice, report.HallucinationRate)

	return report, nil
}

func (s *visibilityService) averageSentimentForBatch(ctx context.Context, batchID uuid.UUID) (*float64, error) {
	runs, err := s.repos.PromptRunRepo.GetByBatch(ctx, batchID)
	if err != nil {
		return nil, fmt.Errorf("failed to get runs for batch %s: %w", batchID, err)
	}

	sum := 0.0
	count := 0
	for _, run := range runs {
		if run.BrandSentiment != nil {
			sum += *run.BrandSentiment
			count++
		}
	}

	if count == 0 {
		return nil, nil
	}

	avg := sum / float64(count)
	return &avg, nil
}

// hallucinationRateForBatch is hallucinations over brand-mentioning claims in
// the batch. Runs without brand claims contribute nothing to either side.
func (s *visibilityService) hallucinationRateForBatch(ctx context.Context, batchID uuid.UUID) (float64, error) {
	hallucinations, err := s.repos.HallucinationRepo.GetByBatch(ctx, batchID)
	if err != nil {
		return 0, fmt.Errorf("failed to get hallucinations for batch %s: %w", batchID, err)
	}

	runs, err := s.repos.PromptRunRepo.GetByBatch(ctx, batchID)
	if err != nil {
		return 0, fmt.Errorf("failed to get runs for batch %s: %w", batchID, err)
	}

	brandClaims := 0
	for _, run := range runs {
		claims, err := s.repos.ClaimRepo.GetByRun(ctx, run.PromptRunID)
		if err != nil {
			return 0, fmt.Errorf("failed to get claims for run %s: %w", run.PromptRunID, err)
		}
		for _, claim := range claims {
			if claim.BrandMentioned != nil && *claim.BrandMentioned {
				brandClaims++
			}
		}
	}

	if brandClaims == 0 {
		return 0, nil
	}

	return float64(len(hallucinations)) / float64(brandClaims), nil
}
