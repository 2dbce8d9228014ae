// services/runner_service.go
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/beenruuu/mentha/internal/config"
	"github.com/beenruuu/mentha/internal/models"
	"github.com/google/uuid"
)

type runnerService struct {
	cfg                  *config.Config
	repos                *RepositoryManager
	extractionService    ExtractionService
	hallucinationService HallucinationService
	costService          CostService
}

func NewRunnerService(
	cfg *config.Config,
	repos *RepositoryManager,
	extractionService ExtractionService,
	hallucinationService HallucinationService,
) RunnerService {
	return &runnerService{
		cfg:                  cfg,
		repos:                repos,
		extractionService:    extractionService,
		hallucinationService: hallucinationService,
		costService:          NewCostService(),
	}
}

// CalculatePromptMatrix expands the brand's prompts, engines and locations
// into the full list of jobs for one analysis pass. Brands with no locations
// get one location-less job per prompt×engine pair.
func (s *runnerService) CalculatePromptMatrix(ctx context.Context, details *BrandDetails) ([]*PromptJob, error) {
	if len(details.Prompts) == 0 {
		return nil, fmt.Errorf("brand %s has no tracked prompts", details.Brand.BrandID)
	}
	if len(details.Engines) == 0 {
		return nil, fmt.Errorf("brand %s has no engines configured", details.Brand.BrandID)
	}

	var jobs []*PromptJob

	for _, prompt := range details.Prompts {
		for _, engine := range details.Engines {
			if len(details.Locations) == 0 {
				jobs = append(jobs, &PromptJob{
					PromptID:   prompt.PromptID,
					EngineID:   engine.BrandEngineID,
					PromptText: prompt.PromptText,
					EngineName: engine.Name,
					WebSearch:  engine.WebSearch,
				})
				continue
			}

			for _, location := range details.Locations {
				locationID := location.BrandLocationID
				jobs = append(jobs, &PromptJob{
					PromptID:     prompt.PromptID,
					EngineID:     engine.BrandEngineID,
					LocationID:   &locationID,
					PromptText:   prompt.PromptText,
					EngineName:   engine.Name,
					WebSearch:    engine.WebSearch,
					LocationCode: location.CountryCode,
				})
			}
		}
	}

	for i, job := range jobs {
		job.JobIndex = i
		job.TotalJobs = len(jobs)
	}

	fmt.Printf("[RunnerService] Calculated matrix for brand %s: %d prompts × %d engines × %d locations = %d jobs\n",
		details.Brand.BrandID, len(details.Prompts), len(details.Engines), max(len(details.Locations), 1), len(jobs))

	return jobs, nil
}

// ProcessSinglePromptJob runs one prompt against one engine, persists the run
// and extracts everything downstream needs. Extraction failures degrade the
// run instead of failing it: the raw response is always kept.
func (s *runnerService) ProcessSinglePromptJob(ctx context.Context, job *PromptJob, details *BrandDetails, batchID uuid.UUID) (*PromptJobResult, error) {
	fmt.Printf("[RunnerService] Processing job %d/%d: prompt %s on %s\n",
		job.JobIndex+1, job.TotalJobs, job.PromptID, job.EngineName)

	result := &PromptJobResult{JobIndex: job.JobIndex}

	provider, err := GetProviderForEngine(s.cfg, job.EngineName, s.costService)
	if err != nil {
		result.Status = "failed"
		result.ErrorMessage = err.Error()
		return result, fmt.Errorf("failed to get provider for %s: %w", job.EngineName, err)
	}

	location := s.resolveLocation(job, details)

	aiResponse, err := provider.RunPrompt(ctx, job.PromptText, job.WebSearch, location)
	if err != nil {
		result.Status = "failed"
		result.ErrorMessage = err.Error()
		return result, fmt.Errorf("engine call failed for %s: %w", job.EngineName, err)
	}

	now := time.Now()
	run := &models.PromptRun{
		PromptRunID:  uuid.New(),
		PromptID:     job.PromptID,
		BatchID:      batchID,
		EngineName:   job.EngineName,
		LocationID:   job.LocationID,
		ResponseText: &aiResponse.Response,
		InputTokens:  &aiResponse.InputTokens,
		OutputTokens: &aiResponse.OutputTokens,
		TotalCost:    &aiResponse.Cost,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repos.PromptRunRepo.Create(ctx, run); err != nil {
		result.Status = "failed"
		result.ErrorMessage = err.Error()
		return result, fmt.Errorf("failed to store prompt run: %w", err)
	}

	result.PromptRunID = run.PromptRunID
	result.TotalCost = aiResponse.Cost

	competitorNames := make([]string, 0, len(details.Competitors))
	for _, competitor := range details.Competitors {
		competitorNames = append(competitorNames, competitor.Name)
	}

	// Mentions
	mentions, err := s.extractionService.ExtractMentions(ctx, run.PromptRunID, aiResponse.Response, details.Brand.Name, competitorNames)
	if err != nil {
		fmt.Printf("[RunnerService] Warning: mention extraction failed for run %s: %v\n", run.PromptRunID, err)
	} else if len(mentions) > 0 {
		if err := s.repos.MentionRepo.BulkCreate(ctx, mentions); err != nil {
			fmt.Printf("[RunnerService] Warning: failed to store mentions for run %s: %v\n", run.PromptRunID, err)
		} else {
			result.MentionCount = len(mentions)
			for _, mention := range mentions {
				if mention.TotalCost != nil {
					result.TotalCost += *mention.TotalCost
					break // Extraction cost is shared across the call's mentions
				}
			}
		}
	}

	// Claims
	claims, err := s.extractionService.ExtractClaims(ctx, run.PromptRunID, aiResponse.Response, details.Brand.Name)
	if err != nil {
		fmt.Printf("[RunnerService] Warning: claim extraction failed for run %s: %v\n", run.PromptRunID, err)
		claims = nil
	} else if len(claims) > 0 {
		if err := s.repos.ClaimRepo.BulkCreate(ctx, claims); err != nil {
			fmt.Printf("[RunnerService] Warning: failed to store claims for run %s: %v\n", run.PromptRunID, err)
			claims = nil
		} else {
			result.ClaimCount = len(claims)
			for _, claim := range claims {
				if claim.TotalCost != nil {
					result.TotalCost += *claim.TotalCost
					break
				}
			}
		}
	}

	// Citations are derived from stored claims, no AI call involved.
	if len(claims) > 0 {
		citations, err := s.extractionService.ExtractCitations(ctx, claims, aiResponse.Response, details.Websites)
		if err != nil {
			fmt.Printf("[RunnerService] Warning: citation extraction failed for run %s: %v\n", run.PromptRunID, err)
		} else if len(citations) > 0 {
			if err := s.repos.CitationRepo.BulkCreate(ctx, citations); err != nil {
				fmt.Printf("[RunnerService] Warning: failed to store citations for run %s: %v\n", run.PromptRunID, err)
			}
		}
	}

	// Competitive metrics on the run itself
	metrics, err := s.extractionService.CalculateMetrics(ctx, mentions, details.Brand.Name)
	if err != nil {
		fmt.Printf("[RunnerService] Warning: metric calculation failed for run %s: %v\n", run.PromptRunID, err)
	} else {
		run.BrandMentioned = metrics.BrandMentioned
		run.BrandSOV = metrics.ShareOfVoice
		run.BrandRank = metrics.BrandRank
		run.BrandSentiment = metrics.BrandSentiment
	}

	// Hallucination check against the brand's own indexed content
	if len(claims) > 0 {
		verification, err := s.hallucinationService.VerifyRunClaims(ctx, details.Brand.BrandID, run, claims)
		if err != nil {
			fmt.Printf("[RunnerService] Warning: hallucination check failed for run %s: %v\n", run.PromptRunID, err)
		} else {
			result.TotalCost += verification.TotalCost
		}
	}

	totalCost := result.TotalCost
	run.TotalCost = &totalCost
	run.UpdatedAt = time.Now()
	if err := s.repos.PromptRunRepo.Update(ctx, run); err != nil {
		fmt.Printf("[RunnerService] Warning: failed to update run %s with metrics: %v\n", run.PromptRunID, err)
	}

	result.Status = "completed"
	return result, nil
}

// GetOrCreateTodaysBatch returns the open batch created today, or creates a
// new pending one. The bool reports whether a batch was created.
func (s *runnerService) GetOrCreateTodaysBatch(ctx context.Context, brandID uuid.UUID, totalPrompts int) (*models.AnalysisBatch, bool, error) {
	existing, err := s.repos.AnalysisBatchRepo.GetOpenForDate(ctx, brandID, time.Now())
	if err != nil {
		return nil, false, fmt.Errorf("failed to look up today's batch: %w", err)
	}
	if existing != nil {
		fmt.Printf("[RunnerService] Reusing open batch %s for brand %s\n", existing.BatchID, brandID)
		return existing, false, nil
	}

	now := time.Now()
	batch := &models.AnalysisBatch{
		BatchID:      uuid.New(),
		BrandID:      brandID,
		Status:       "pending",
		TotalPrompts: totalPrompts,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repos.AnalysisBatchRepo.Create(ctx, batch); err != nil {
		return nil, false, fmt.Errorf("failed to create batch: %w", err)
	}

	fmt.Printf("[RunnerService] Created batch %s for brand %s (%d jobs)\n", batch.BatchID, brandID, totalPrompts)
	return batch, true, nil
}

func (s *runnerService) StartBatch(ctx context.Context, batchID uuid.UUID) error {
	batch, err := s.repos.AnalysisBatchRepo.GetByID(ctx, batchID)
	if err != nil {
		return fmt.Errorf("failed to get batch %s: %w", batchID, err)
	}
	if batch == nil {
		return fmt.Errorf("batch %s not found", batchID)
	}

	now := time.Now()
	batch.Status = "running"
	batch.StartedAt = &now
	batch.UpdatedAt = now

	return s.repos.AnalysisBatchRepo.Update(ctx, batch)
}

// CompleteBatch transitions the batch to completed and attaches the report
// metrics and the accumulated cost.
func (s *runnerService) CompleteBatch(ctx context.Context, batchID uuid.UUID, report *VisibilityReport, totalCost float64) error {
	batch, err := s.repos.AnalysisBatchRepo.GetByID(ctx, batchID)
	if err != nil {
		return fmt.Errorf("failed to get batch %s: %w", batchID, err)
	}
	if batch == nil {
		return fmt.Errorf("batch %s not found", batchID)
	}

	now := time.Now()
	batch.Status = "completed"
	batch.CompletedAt = &now
	batch.UpdatedAt = now
	batch.TotalCost = totalCost

	if report != nil {
		visibility := report.VisibilityScore
		shareOfVoice := report.ShareOfVoice
		hallucinationRate := report.HallucinationRate
		batch.VisibilityScore = &visibility
		batch.ShareOfVoice = &shareOfVoice
		batch.AvgSentiment = report.AvgSentiment
		batch.HallucinationRate = &hallucinationRate
	}

	return s.repos.AnalysisBatchRepo.Update(ctx, batch)
}

func (s *runnerService) FailBatch(ctx context.Context, batchID uuid.UUID) error {
	batch, err := s.repos.AnalysisBatchRepo.GetByID(ctx, batchID)
	if err != nil {
		return fmt.Errorf("failed to get batch %s: %w", batchID, err)
	}
	if batch == nil {
		return fmt.Errorf("batch %s not found", batchID)
	}

	now := time.Now()
	batch.Status = "failed"
	batch.CompletedAt = &now
	batch.UpdatedAt = now

	return s.repos.AnalysisBatchRepo.Update(ctx, batch)
}

func (s *runnerService) UpdateBatchProgress(ctx context.Context, batchID uuid.UUID, completed, failed int) error {
	return s.repos.AnalysisBatchRepo.UpdateProgress(ctx, batchID, completed, failed)
}

// UpdateLatestFlagsForBatch marks the most recent run of each prompt in the
// batch as the latest, clearing the flags of older runs.
func (s *runnerService) UpdateLatestFlagsForBatch(ctx context.Context, batchID uuid.UUID) error {
	runs, err := s.repos.PromptRunRepo.GetByBatch(ctx, batchID)
	if err != nil {
		return fmt.Errorf("failed to get runs for batch %s: %w", batchID, err)
	}

	latestByPrompt := make(map[uuid.UUID]*models.PromptRun)
	for _, run := range runs {
		current, ok := latestByPrompt[run.PromptID]
		if !ok || run.CreatedAt.After(current.CreatedAt) {
			latestByPrompt[run.PromptID] = run
		}
	}

	for promptID, run := range latestByPrompt {
		if err := s.repos.PromptRunRepo.UpdateLatestFlags(ctx, promptID, run.PromptRunID); err != nil {
			return fmt.Errorf("failed to update latest flag for prompt %s: %w", promptID, err)
		}
	}

	fmt.Printf("[RunnerService] Updated latest flags for %d prompts in batch %s\n", len(latestByPrompt), batchID)
	return nil
}

func (s *runnerService) resolveLocation(job *PromptJob, details *BrandDetails) *models.Location {
	if job.LocationID == nil {
		return nil
	}

	for _, location := range details.Locations {
		if location.BrandLocationID == *job.LocationID {
			return &models.Location{
				Country: location.CountryCode,
				City:    location.City,
				Region:  location.RegionName,
			}
		}
	}

	return nil
}
