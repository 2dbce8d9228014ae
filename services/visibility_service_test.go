// services/visibility_service_test.go
package services

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/beenruuu/mentha/internal/models"
	"github.com/beenruuu/mentha/internal/repositories"
	"github.com/google/uuid"
)

type stubRunRepo struct {
	runs         []*models.PromptRun
	mentions     []repositories.MentionsAnalytics
	shareOfVoice []repositories.ShareOfVoiceAnalytics
	competitive  []repositories.CompetitiveAnalytics
	engines      []repositories.EngineAnalytics
}

func (r *stubRunRepo) Create(ctx context.Context, run *models.PromptRun) error { return nil }
func (r *stubRunRepo) Update(ctx context.Context, run *models.PromptRun) error { return nil }
func (r *stubRunRepo) GetByBatch(ctx context.Context, batchID uuid.UUID) ([]*models.PromptRun, error) {
	return r.runs, nil
}
func (r *stubRunRepo) GetLatestByBrand(ctx context.Context, brandID uuid.UUID) ([]*models.PromptRun, error) {
	return r.runs, nil
}
func (r *stubRunRepo) UpdateLatestFlags(ctx context.Context, promptID, latestRunID uuid.UUID) error {
	return nil
}
func (r *stubRunRepo) GetMentionsAnalytics(ctx context.Context, brandID uuid.UUID, startDate, endDate time.Time) ([]repositories.MentionsAnalytics, error) {
	return r.mentions, nil
}
func (r *stubRunRepo) GetShareOfVoiceAnalytics(ctx context.Context, brandID uuid.UUID, startDate, endDate time.Time) ([]repositories.ShareOfVoiceAnalytics, error) {
	return r.shareOfVoice, nil
}
func (r *stubRunRepo) GetCompetitiveAnalytics(ctx context.Context, brandID uuid.UUID) ([]repositories.CompetitiveAnalytics, error) {
	return r.competitive, nil
}
func (r *stubRunRepo) GetEngineAnalytics(ctx context.Context, brandID uuid.UUID, startDate, endDate time.Time) ([]repositories.EngineAnalytics, error) {
	return r.engines, nil
}

type stubHallucinationRepo struct {
	hallucinations []*models.Hallucination
}

func (r *stubHallucinationRepo) BulkCreate(ctx context.Context, hallucinations []*models.Hallucination) error {
	return nil
}
func (r *stubHallucinationRepo) GetByBatch(ctx context.Context, batchID uuid.UUID) ([]*models.Hallucination, error) {
	return r.hallucinations, nil
}

type stubClaimRepo struct {
	claimsByRun map[uuid.UUID][]*models.PromptRunClaim
}

func (r *stubClaimRepo) BulkCreate(ctx context.Context, claims []*models.PromptRunClaim) error {
	return nil
}
func (r *stubClaimRepo) GetByRun(ctx context.Context, runID uuid.UUID) ([]*models.PromptRunClaim, error) {
	return r.claimsByRun[runID], nil
}
func (r *stubClaimRepo) UpdateVerification(ctx context.Context, claimID uuid.UUID, verification string) error {
	return nil
}

func boolPtr(b bool) *bool        { return &b }
func floatPtr(f float64) *float64 { return &f }

func TestBuildReport(t *testing.T) {
	brandID := uuid.New()
	batchID := uuid.New()
	promptA := uuid.New()
	promptB := uuid.New()
	runA := uuid.New()
	runB := uuid.New()

	runRepo := &stubRunRepo{
		runs: []*models.PromptRun{
			{PromptRunID: runA, PromptID: promptA, BrandSentiment: floatPtr(1.0)},
			{PromptRunID: runB, PromptID: promptB, BrandSentiment: floatPtr(0.5)},
		},
		mentions: []repositories.MentionsAnalytics{
			{PromptID: promptA, TotalRuns: 4, RunsWithMentions: 3},
			{PromptID: promptB, TotalRuns: 4, RunsWithMentions: 1},
		},
		shareOfVoice: []repositories.ShareOfVoiceAnalytics{
			{PromptID: promptA, ShareOfVoicePercentage: 0.6},
			{PromptID: promptB, ShareOfVoicePercentage: 0.2},
		},
		engines: []repositories.EngineAnalytics{
			{EngineName: "gpt-4.1", TotalRuns: 4, RunsWithMentions: 2},
		},
		competitive: []repositories.CompetitiveAnalytics{
			{MentionOrg: "Acme", IsTargetBrand: true, MentionCount: 4},
		},
	}

	claimRepo := &stubClaimRepo{
		claimsByRun: map[uuid.UUID][]*models.PromptRunClaim{
			runA: {
				{ClaimID: uuid.New(), BrandMentioned: boolPtr(true)},
				{ClaimID: uuid.New(), BrandMentioned: boolPtr(true)},
				{ClaimID: uuid.New(), BrandMentioned: boolPtr(false)},
			},
			runB: {
				{ClaimID: uuid.New(), BrandMentioned: boolPtr(true)},
				{ClaimID: uuid.New(), BrandMentioned: boolPtr(true)},
			},
		},
	}

	hallucinationRepo := &stubHallucinationRepo{
		hallucinations: []*models.Hallucination{
			{HallucinationID: uuid.New(), Verdict: "contradicted"},
		},
	}

	repos := &RepositoryManager{
		PromptRunRepo:     runRepo,
		ClaimRepo:         claimRepo,
		HallucinationRepo: hallucinationRepo,
	}

	service := NewVisibilityService(repos)
	report, err := service.BuildReport(context.Background(), brandID, batchID, time.Now().AddDate(0, 0, -1), time.Now())
	if err != nil {
		t.Fatalf("BuildReport returned error: %v", err)
	}

	// 4 of 8 runs mentioned the brand
	if math.Abs(report.VisibilityScore-0.5) > 1e-9 {
		t.Errorf("expected visibility 0.5, got %f", report.VisibilityScore)
	}

	// mean of 0.6 and 0.2
	if math.Abs(report.ShareOfVoice-0.4) > 1e-9 {
		t.Errorf("expected share of voice 0.4, got %f", report.ShareOfVoice)
	}

	if report.AvgSentiment == nil || math.Abs(*report.AvgSentiment-0.75) > 1e-9 {
		t.Errorf("expected avg sentiment 0.75, got %v", report.AvgSentiment)
	}

	// 1 hallucination across 4 brand-mentioning claims
	if math.Abs(report.HallucinationRate-0.25) > 1e-9 {
		t.Errorf("expected hallucination rate 0.25, got %f", report.HallucinationRate)
	}

	if len(report.PromptVisibility) != 2 {
		t.Fatalf("expected 2 prompt visibility rows, got %d", len(report.PromptVisibility))
	}
	if math.Abs(report.PromptVisibility[0].VisibilityScore-0.75) > 1e-9 {
		t.Errorf("expected first prompt visibility 0.75, got %f", report.PromptVisibility[0].VisibilityScore)
	}

	if len(report.Engines) != 1 || report.Engines[0].EngineName != "gpt-4.1" {
		t.Errorf("expected engine analytics to pass through")
	}
	if len(report.Competitive) != 1 || !report.Competitive[0].IsTargetBrand {
		t.Errorf("expected competitive analytics to pass through")
	}
}

func TestBuildReportEmptyBatch(t *testing.T) {
	repos := &RepositoryManager{
		PromptRunRepo:     &stubRunRepo{},
		ClaimRepo:         &stubClaimRepo{},
		HallucinationRepo: &stubHallucinationRepo{},
	}

	service := NewVisibilityService(repos)
	report, err := service.BuildReport(context.Background(), uuid.New(), uuid.New(), time.Now().AddDate(0, 0, -1), time.Now())
	if err != nil {
		t.Fatalf("BuildReport returned error: %v", err)
	}

	if report.VisibilityScore != 0 {
		t.Errorf("expected zero visibility, got %f", report.VisibilityScore)
	}
	if report.AvgSentiment != nil {
		t.Errorf("expected nil sentiment for empty batch, got %v", report.AvgSentiment)
	}
	if report.HallucinationRate != 0 {
		t.Errorf("expected zero hallucination rate, got %f", report.HallucinationRate)
	}
}
