// workflows/analysis_processor.go
package workflows

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/inngest/inngestgo"
	"github.com/inngest/inngestgo/step"

	"github.com/beenruuu/mentha/internal/config"
	"github.com/beenruuu/mentha/services"
	"github.com/google/uuid"
)

// reportWindowDays is the lookback used when aggregating runs into the batch
// report, covering one full weekly cycle.
const reportWindowDays = 7

type AnalysisProcessor struct {
	brandService          services.BrandService
	runnerService         services.RunnerService
	visibilityService     services.VisibilityService
	recommendationService services.RecommendationService
	client                inngestgo.Client
	cfg                   *config.Config
}

func NewAnalysisProcessor(
	brandService services.BrandService,
	runnerService services.RunnerService,
	visibilityService services.VisibilityService,
	recommendationService services.RecommendationService,
	cfg *config.Config,
) *AnalysisProcessor {
	return &AnalysisProcessor{
		brandService:          brandService,
		runnerService:         runnerService,
		visibilityService:     visibilityService,
		recommendationService: recommendationService,
		cfg:                   cfg,
	}
}

func (p *AnalysisProcessor) SetClient(client inngestgo.Client) {
	p.client = client
}

// BrandAnalyzeEvent is the event data for a brand analysis run.
type BrandAnalyzeEvent struct {
	BrandID     string `json:"brand_id"`
	TriggeredBy string `json:"triggered_by,omitempty"`
	UserID      string `json:"user_id,omitempty"`
}

func (p *AnalysisProcessor) ProcessBrandAnalysis() inngestgo.ServableFunction {
	fn, err := inngestgo.CreateFunction(
		p.client,
		inngestgo.FunctionOpts{
			ID:      "process-brand-analysis",
			Name:    "Process Brand Analysis - Visibility Pipeline",
			Retries: inngestgo.IntPtr(3),
		},
		inngestgo.EventTrigger("brand.analyze", nil),
		func(ctx context.Context, input inngestgo.Input[BrandAnalyzeEvent]) (any, error) {
			brandID := input.Event.Data.BrandID
			fmt.Printf("[ProcessBrandAnalysis] Starting visibility pipeline for brand: %s\n", brandID)

			// Step 1: Create or reuse today's batch
			batchData, err := step.Run(ctx, "create-analysis-batch", func(ctx context.Context) (interface{}, error) {
				fmt.Printf("[ProcessBrandAnalysis] Step 1: Creating analysis batch for brand: %s\n", brandID)

				brandUUID, err := uuid.Parse(brandID)
				if err != nil {
					return nil, fmt.Errorf("invalid brand ID: %w", err)
				}

				details, err := p.brandService.GetBrandDetails(ctx, brandID)
				if err != nil {
					return nil, fmt.Errorf("failed to get brand details: %w", err)
				}

				jobs, err := p.runnerService.CalculatePromptMatrix(ctx, details)
				if err != nil {
					return nil, fmt.Errorf("failed to calculate prompt matrix: %w", err)
				}

				batch, created, err := p.runnerService.GetOrCreateTodaysBatch(ctx, brandUUID, len(jobs))
				if err != nil {
					return nil, fmt.Errorf("failed to get or create batch: %w", err)
				}

				return map[string]interface{}{
					"batch_id":   batch.BatchID.String(),
					"created":    created,
					"total_jobs": len(jobs),
					"brand_name": details.Brand.Name,
				}, nil
			})
			if err != nil {
				return nil, fmt.Errorf("step 1 failed: %w", err)
			}

			batchInfo := batchData.(map[string]interface{})
			batchID := batchInfo["batch_id"].(string)
			brandName := batchInfo["brand_name"].(string)

			// Step 2: Mark the batch as running
			_, err = step.Run(ctx, "start-batch", func(ctx context.Context) (interface{}, error) {
				batchUUID, err := uuid.Parse(batchID)
				if err != nil {
					return nil, fmt.Errorf("invalid batch ID: %w", err)
				}

				if err := p.runnerService.StartBatch(ctx, batchUUID); err != nil {
					return nil, fmt.Errorf("failed to start batch: %w", err)
				}

				return map[string]interface{}{"batch_id": batchID, "status": "running"}, nil
			})
			if err != nil {
				return nil, fmt.Errorf("step 2 failed: %w", err)
			}

			// Step 3: Calculate the prompt matrix
			matrixResult, err := step.Run(ctx, "calculate-prompt-matrix", func(ctx context.Context) (interface{}, error) {
				details, err := p.brandService.GetBrandDetails(ctx, brandID)
				if err != nil {
					return nil, fmt.Errorf("failed to get brand details: %w", err)
				}

				jobs, err := p.runnerService.CalculatePromptMatrix(ctx, details)
				if err != nil {
					return nil, fmt.Errorf("failed to calculate prompt matrix: %w", err)
				}

				fmt.Printf("[ProcessBrandAnalysis] ✅ Created %d prompt jobs\n", len(jobs))
				return map[string]interface{}{
					"jobs":       jobs,
					"total_jobs": len(jobs),
				}, nil
			})
			if err != nil {
				return nil, fmt.Errorf("step 3 failed: %w", err)
			}

			matrixData := matrixResult.(map[string]interface{})
			jobs := matrixData["jobs"].([]interface{})
			totalJobs := int(matrixData["total_jobs"].(float64))

			// Steps 4-N: Process each prompt job individually
			batchUUID, err := uuid.Parse(batchID)
			if err != nil {
				return nil, fmt.Errorf("invalid batch ID: %w", err)
			}

			totalCost := 0.0
			totalProcessed := 0
			totalFailed := 0

			for i, jobInterface := range jobs {
				jobData := jobInterface.(map[string]interface{})
				jobIndex := i + 1
				stepName := fmt.Sprintf("process-prompt-job-%d", jobIndex)

				result, err := step.Run(ctx, stepName, func(ctx context.Context) (interface{}, error) {
					fmt.Printf("[ProcessBrandAnalysis] Processing prompt job %d/%d\n", jobIndex, totalJobs)

					job, err := parsePromptJob(jobData)
					if err != nil {
						return nil, err
					}

					details, err := p.brandService.GetBrandDetails(ctx, brandID)
					if err != nil {
						return nil, fmt.Errorf("failed to get brand details: %w", err)
					}

					result, err := p.runnerService.ProcessSinglePromptJob(ctx, job, details, batchUUID)
					if err != nil {
						return nil, fmt.Errorf("failed to process prompt job: %w", err)
					}

					if result.Status == "completed" {
						if updateErr := p.runnerService.UpdateBatchProgress(ctx, batchUUID, 1, 0); updateErr != nil {
							fmt.Printf("[ProcessBrandAnalysis] Warning: Failed to update batch progress: %v\n", updateErr)
						}
					} else {
						if updateErr := p.runnerService.UpdateBatchProgress(ctx, batchUUID, 0, 1); updateErr != nil {
							fmt.Printf("[ProcessBrandAnalysis] Warning: Failed to update batch progress: %v\n", updateErr)
						}
					}

					fmt.Printf("[ProcessBrandAnalysis] ✅ Completed prompt job %d/%d: %s\n", jobIndex, totalJobs, result.Status)

					return map[string]interface{}{
						"job_index":     result.JobIndex,
						"prompt_run_id": result.PromptRunID.String(),
						"status":        result.Status,
						"mention_count": result.MentionCount,
						"claim_count":   result.ClaimCount,
						"total_cost":    result.TotalCost,
						"error_message": result.ErrorMessage,
					}, nil
				})
				if err != nil {
					fmt.Printf("[ProcessBrandAnalysis] Warning: Failed to process prompt job %d/%d: %v\n", jobIndex, totalJobs, err)
					totalFailed++
					continue
				}

				resultData := result.(map[string]interface{})
				if resultData["status"].(string) == "completed" {
					totalProcessed++
					totalCost += resultData["total_cost"].(float64)
				} else {
					totalFailed++
				}
			}

			// Every job failing means something systemic broke
			if totalProcessed == 0 && totalJobs > 0 {
				failErr := fmt.Errorf("all %d prompt jobs failed", totalJobs)
				_, _ = step.Run(ctx, "fail-batch", func(ctx context.Context) (interface{}, error) {
					return nil, p.runnerService.FailBatch(ctx, batchUUID)
				})
				if slackErr := ReportAnalysisFailureToSlack("brand_analysis", brandID, brandName, "all_jobs_failed", failErr); slackErr != nil {
					fmt.Printf("[ProcessBrandAnalysis] Warning: Failed to report to Slack: %v\n", slackErr)
				}
				return nil, failErr
			}

			// Step N+1: Update latest flags
			_, err = step.Run(ctx, "update-latest-flags", func(ctx context.Context) (interface{}, error) {
				if err := p.runnerService.UpdateLatestFlagsForBatch(ctx, batchUUID); err != nil {
					return nil, fmt.Errorf("failed to update latest flags: %w", err)
				}
				return map[string]interface{}{"batch_id": batchID, "status": "flags_updated"}, nil
			})
			if err != nil {
				return nil, fmt.Errorf("update latest flags step failed: %w", err)
			}

			// Step N+2: Build the visibility report
			reportResult, err := step.Run(ctx, "build-visibility-report", func(ctx context.Context) (interface{}, error) {
				brandUUID, err := uuid.Parse(brandID)
				if err != nil {
					return nil, fmt.Errorf("invalid brand ID: %w", err)
				}

				endDate := time.Now()
				startDate := endDate.AddDate(0, 0, -reportWindowDays)

				return p.visibilityService.BuildReport(ctx, brandUUID, batchUUID, startDate, endDate)
			})
			if err != nil {
				return nil, fmt.Errorf("build report step failed: %w", err)
			}

			var report services.VisibilityReport
			reportBytes, err := json.Marshal(reportResult)
			if err != nil {
				return nil, fmt.Errorf("failed to marshal report result: %w", err)
			}
			if err := json.Unmarshal(reportBytes, &report); err != nil {
				return nil, fmt.Errorf("failed to unmarshal visibility report: %w", err)
			}

			// Step N+3: Generate recommendations from the report
			recResult, err := step.Run(ctx, "generate-recommendations", func(ctx context.Context) (interface{}, error) {
				brandUUID, err := uuid.Parse(brandID)
				if err != nil {
					return nil, fmt.Errorf("invalid brand ID: %w", err)
				}

				recommendations, cost, err := p.recommendationService.GenerateRecommendations(ctx, brandUUID, batchUUID, &report)
				if err != nil {
					return nil, fmt.Errorf("failed to generate recommendations: %w", err)
				}

				return map[string]interface{}{"recommendation_count": len(recommendations), "cost": cost}, nil
			})
			if err != nil {
				// Recommendations are additive, a failure doesn't invalidate the batch
				fmt.Printf("[ProcessBrandAnalysis] Warning: recommendation generation failed: %v\n", err)
			} else if resultMap, ok := recResult.(map[string]interface{}); ok {
				if cost, ok := resultMap["cost"].(float64); ok {
					totalCost += cost
				}
			}

			// Step N+4: Complete the batch with the report attached
			_, err = step.Run(ctx, "complete-batch", func(ctx context.Context) (interface{}, error) {
				if err := p.runnerService.CompleteBatch(ctx, batchUUID, &report, totalCost); err != nil {
					return nil, fmt.Errorf("failed to complete batch: %w", err)
				}

				fmt.Printf("[ProcessBrandAnalysis] ✅ Batch %s completed successfully\n", batchID)
				return map[string]interface{}{"batch_id": batchID, "status": "completed"}, nil
			})
			if err != nil {
				return nil, fmt.Errorf("complete batch step failed: %w", err)
			}

			fmt.Printf("[ProcessBrandAnalysis] 🎉 Visibility pipeline completed for brand: %s\n", brandName)

			return map[string]interface{}{
				"brand_id":         brandID,
				"brand_name":       brandName,
				"batch_id":         batchID,
				"total_processed":  totalProcessed,
				"total_failed":     totalFailed,
				"total_cost":       totalCost,
				"visibility_score": report.VisibilityScore,
				"status":           "completed",
			}, nil
		},
	)

	if err != nil {
		panic(fmt.Sprintf("Failed to create ProcessBrandAnalysis function: %v", err))
	}

	return fn
}

// parsePromptJob rebuilds a typed job from the generic map that step results
// serialize through.
func parsePromptJob(jobData map[string]interface{}) (*services.PromptJob, error) {
	promptID, err := uuid.Parse(jobData["prompt_id"].(string))
	if err != nil {
		return nil, fmt.Errorf("invalid prompt ID: %w", err)
	}
	engineID, err := uuid.Parse(jobData["engine_id"].(string))
	if err != nil {
		return nil, fmt.Errorf("invalid engine ID: %w", err)
	}

	job := &services.PromptJob{
		PromptID:   promptID,
		EngineID:   engineID,
		PromptText: jobData["prompt_text"].(string),
		EngineName: jobData["engine_name"].(string),
		WebSearch:  jobData["web_search"].(bool),
		JobIndex:   int(jobData["job_index"].(float64)),
		TotalJobs:  int(jobData["total_jobs"].(float64)),
	}

	if code, ok := jobData["location_code"].(string); ok {
		job.LocationCode = code
	}
	if locationStr, ok := jobData["location_id"].(string); ok && locationStr != "" {
		locationID, err := uuid.Parse(locationStr)
		if err != nil {
			return nil, fmt.Errorf("invalid location ID: %w", err)
		}
		job.LocationID = &locationID
	}

	return job, nil
}
