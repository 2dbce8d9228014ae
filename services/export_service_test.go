// services/export_service_test.go
package services

import (
	"context"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/beenruuu/mentha/internal/models"
	"github.com/google/uuid"
)

type stubMentionRepo struct {
	mentionsByRun map[uuid.UUID][]*models.PromptRunMention
}

func (r *stubMentionRepo) BulkCreate(ctx context.Context, mentions []*models.PromptRunMention) error {
	return nil
}
func (r *stubMentionRepo) GetByRun(ctx context.Context, runID uuid.UUID) ([]*models.PromptRunMention, error) {
	return r.mentionsByRun[runID], nil
}

func TestExportRuns(t *testing.T) {
	runID := uuid.New()
	promptID := uuid.New()

	repos := &RepositoryManager{
		PromptRunRepo: &stubRunRepo{
			runs: []*models.PromptRun{
				{
					PromptRunID:    runID,
					PromptID:       promptID,
					EngineName:     "gpt-4.1",
					BrandMentioned: true,
					BrandSOV:       floatPtr(0.42),
					BrandSentiment: floatPtr(1.0),
					TotalCost:      floatPtr(0.013),
					CreatedAt:      time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC),
				},
			},
		},
	}

	service := NewExportService(repos)
	data, err := service.ExportRuns(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("ExportRuns returned error: %v", err)
	}

	records, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}

	if len(records) != 2 {
		t.Fatalf("expected header plus 1 record, got %d rows", len(records))
	}
	if records[0][0] != "prompt_run_id" {
		t.Errorf("unexpected header: %v", records[0])
	}

	row := records[1]
	if row[2] != "gpt-4.1" {
		t.Errorf("expected engine gpt-4.1, got %s", row[2])
	}
	if row[3] != "true" {
		t.Errorf("expected brand_mentioned true, got %s", row[3])
	}
	if row[4] != "0.42" {
		t.Errorf("expected share_of_voice 0.42, got %s", row[4])
	}
	if row[5] != "" {
		t.Errorf("expected empty brand_rank for nil value, got %s", row[5])
	}
	if row[8] != "2026-08-01T09:00:00Z" {
		t.Errorf("unexpected created_at: %s", row[8])
	}
}

func TestExportMentions(t *testing.T) {
	runID := uuid.New()

	rank := 2
	repos := &RepositoryManager{
		PromptRunRepo: &stubRunRepo{
			runs: []*models.PromptRun{
				{PromptRunID: runID, EngineName: "sonar"},
			},
		},
		MentionRepo: &stubMentionRepo{
			mentionsByRun: map[uuid.UUID][]*models.PromptRunMention{
				runID: {
					{
						MentionID:   uuid.New(),
						PromptRunID: runID,
						MentionOrg:  "Acme",
						MentionText: "Acme offers competitive, affordable pricing",
						MentionRank: &rank,
						Sentiment:   strPtr("positive"),
						TargetBrand: true,
					},
				},
			},
		},
	}

	service := NewExportService(repos)
	data, err := service.ExportMentions(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("ExportMentions returned error: %v", err)
	}

	records, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}

	if len(records) != 2 {
		t.Fatalf("expected header plus 1 record, got %d rows", len(records))
	}

	row := records[1]
	if row[2] != "sonar" || row[3] != "Acme" || row[4] != "true" || row[5] != "2" || row[6] != "positive" {
		t.Errorf("unexpected mention row: %v", row)
	}
	// Commas inside mention text must survive the round trip
	if row[7] != "Acme offers competitive, affordable pricing" {
		t.Errorf("unexpected mention text: %s", row[7])
	}
}
