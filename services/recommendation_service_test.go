// services/recommendation_service_test.go
package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/beenruuu/mentha/internal/config"
	"github.com/beenruuu/mentha/internal/models"
	"github.com/beenruuu/mentha/internal/repositories"
	"github.com/google/uuid"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

func TestNormalizeCategory(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"content", "content"},
		{"Technical", "technical"},
		{" AUTHORITY ", "authority"},
		{"seo", "content"},
		{"", "content"},
	}

	for _, tt := range tests {
		if got := normalizeCategory(tt.input); got != tt.expected {
			t.Errorf("normalizeCategory(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestNormalizePriority(t *testing.T) {
	tests := []struct {
		input    int
		expected int
	}{
		{0, 1},
		{-2, 1},
		{1, 1},
		{2, 2},
		{3, 3},
		{7, 3},
	}

	for _, tt := range tests {
		if got := normalizePriority(tt.input); got != tt.expected {
			t.Errorf("normalizePriority(%d) = %d, want %d", tt.input, got, tt.expected)
		}
	}
}

func TestBuildRecommendationsPrompt(t *testing.T) {
	s := &recommendationService{}

	industry := "Developer Tools"
	brand := &models.Brand{Name: "Acme", Industry: &industry}

	sentiment := 0.75
	report := &VisibilityReport{
		VisibilityScore:   0.42,
		ShareOfVoice:      0.31,
		AvgSentiment:      &sentiment,
		HallucinationRate: 0.1,
		Engines: []repositories.EngineAnalytics{
			{EngineName: "sonar", TotalRuns: 5, RunsWithMentions: 2},
		},
		Competitive: []repositories.CompetitiveAnalytics{
			{MentionOrg: "Acme", IsTargetBrand: true, MentionCount: 3, AverageRank: 2.0, AverageSentiment: 0.8},
			{MentionOrg: "Rival", MentionCount: 6, AverageRank: 1.2, AverageSentiment: 0.6},
		},
	}

	hallucinations := []*models.Hallucination{
		{HallucinationID: uuid.New(), Verdict: "contradicted", ClaimText: "Acme was founded in 1950"},
	}

	prompt := s.buildRecommendationsPrompt(brand, report, hallucinations)

	for _, want := range []string{
		"Name: Acme",
		"Industry: Developer Tools",
		"Visibility score: 0.42",
		"sonar: 2/5 runs mentioned the brand",
		"Acme (target brand)",
		"[contradicted] Acme was founded in 1950",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("expected prompt to contain %q", want)
		}
	}
}

type fixedBrandRepo struct {
	brand *models.Brand
}

func (r *fixedBrandRepo) Create(ctx context.Context, brand *models.Brand) error { return nil }
func (r *fixedBrandRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Brand, error) {
	return r.brand, nil
}
func (r *fixedBrandRepo) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.Brand, error) {
	return nil, nil
}
func (r *fixedBrandRepo) Update(ctx context.Context, brand *models.Brand) error { return nil }
func (r *fixedBrandRepo) SoftDelete(ctx context.Context, id uuid.UUID) error    { return nil }
func (r *fixedBrandRepo) GetIDsByScheduledDOW(ctx context.Context, dow int) ([]uuid.UUID, error) {
	return nil, nil
}

type recordingRecommendationRepo struct {
	created        []*models.Recommendation
	deletedBatches []uuid.UUID
}

func (r *recordingRecommendationRepo) BulkCreate(ctx context.Context, recommendations []*models.Recommendation) error {
	r.created = append(r.created, recommendations...)
	return nil
}

func (r *recordingRecommendationRepo) GetByBrand(ctx context.Context, brandID uuid.UUID, limit int) ([]*models.Recommendation, error) {
	return r.created, nil
}

func (r *recordingRecommendationRepo) DeleteByBatch(ctx context.Context, batchID uuid.UUID) error {
	r.deletedBatches = append(r.deletedBatches, batchID)
	return nil
}

func TestGenerateRecommendationsAccruesCost(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "chatcmpl-test",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "{\"recommendations\": [{\"title\": \"Publish an FAQ page\", \"detail\": \"Answer the tracked prompts directly on the brand site.\", \"category\": \"content\", \"priority\": 1}]}"}}],
			"usage": {"prompt_tokens": 1200, "completion_tokens": 300}
		}`))
	}))
	defer server.Close()

	client := openai.NewClient(option.WithAPIKey("test-key"), option.WithBaseURL(server.URL))
	store := &recordingRecommendationRepo{}
	svc := &recommendationService{
		cfg: &config.Config{},
		repos: &RepositoryManager{
			BrandRepo:          &fixedBrandRepo{brand: &models.Brand{BrandID: uuid.New(), Name: "Acme"}},
			HallucinationRepo:  &stubHallucinationRepo{},
			RecommendationRepo: store,
		},
		openAIClient: &client,
		costService:  NewCostService(),
	}

	brandID := uuid.New()
	batchID := uuid.New()
	recommendations, cost, err := svc.GenerateRecommendations(context.Background(), brandID, batchID, &VisibilityReport{})
	if err != nil {
		t.Fatalf("GenerateRecommendations returned error: %v", err)
	}
	if len(recommendations) != 1 {
		t.Fatalf("expected 1 recommendation, got %d", len(recommendations))
	}

	wantCost := NewCostService().CalculateCost("openai", "gpt-4.1", 1200, 300, false)
	if cost != wantCost {
		t.Errorf("expected cost %f from reported usage, got %f", wantCost, cost)
	}
	if len(store.deletedBatches) != 1 || store.deletedBatches[0] != batchID {
		t.Errorf("expected previous recommendations for batch %s to be cleared", batchID)
	}
	if len(store.created) != 1 {
		t.Errorf("expected 1 stored recommendation, got %d", len(store.created))
	}
}
