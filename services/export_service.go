// services/export_service.go
package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
)

type exportService struct {
	repos *RepositoryManager
}

func NewExportService(repos *RepositoryManager) ExportService {
	return &exportService{repos: repos}
}

// ExportRuns renders all runs of a batch as CSV.
func (s *exportService) ExportRuns(ctx context.Context, batchID uuid.UUID) ([]byte, error) {
	runs, err := s.repos.PromptRunRepo.GetByBatch(ctx, batchID)
	if err != nil {
		return nil, fmt.Errorf("failed to get runs for batch %s: %w", batchID, err)
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	header := []string{"prompt_run_id", "prompt_id", "engine_name", "brand_mentioned", "share_of_voice", "brand_rank", "brand_sentiment", "total_cost", "created_at"}
	if err := writer.Write(header); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, run := range runs {
		record := []string{
			run.PromptRunID.String(),
			run.PromptID.String(),
			run.EngineName,
			strconv.FormatBool(run.BrandMentioned),
			formatFloatPtr(run.BrandSOV),
			formatIntPtr(run.BrandRank),
			formatFloatPtr(run.BrandSentiment),
			formatFloatPtr(run.TotalCost),
			run.CreatedAt.Format(time.RFC3339),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush CSV: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportMentions renders all extracted mentions of a batch as CSV.
func (s *exportService) ExportMentions(ctx context.Context, batchID uuid.UUID) ([]byte, error) {
	runs, err := s.repos.PromptRunRepo.GetByBatch(ctx, batchID)
	if err != nil {
		return nil, fmt.Errorf("failed to get runs for batch %s: %w", batchID, err)
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	header := []string{"mention_id", "prompt_run_id", "engine_name", "mention_org", "target_brand", "mention_rank", "sentiment", "mention_text"}
	if err := writer.Write(header); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, run := range runs {
		mentions, err := s.repos.MentionRepo.GetByRun(ctx, run.PromptRunID)
		if err != nil {
			return nil, fmt.Errorf("failed to get mentions for run %s: %w", run.PromptRunID, err)
		}

		for _, mention := range mentions {
			sentiment := ""
			if mention.Sentiment != nil {
				sentiment = *mention.Sentiment
			}
			record := []string{
				mention.MentionID.String(),
				mention.PromptRunID.String(),
				run.EngineName,
				mention.MentionOrg,
				strconv.FormatBool(mention.TargetBrand),
				formatIntPtr(mention.MentionRank),
				sentiment,
				mention.MentionText,
			}
			if err := writer.Write(record); err != nil {
				return nil, fmt.Errorf("failed to write CSV record: %w", err)
			}
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush CSV: %w", err)
	}

	return buf.Bytes(), nil
}

func formatFloatPtr(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}

func formatIntPtr(i *int) string {
	if i == nil {
		return ""
	}
	return strconv.Itoa(*i)
}
