// internal/repositories/interfaces.go
package repositories

import (
	"context"
	"time"

	"github.com/beenruuu/mentha/internal/models"
	"github.com/google/uuid"
)

// MentionsAnalytics is one row of the per-prompt visibility aggregation.
type MentionsAnalytics struct {
	PromptID         uuid.UUID `db:"prompt_id"`
	TotalRuns        int       `db:"total_runs"`
	RunsWithMentions int       `db:"runs_with_mentions"`
}

// ShareOfVoiceAnalytics is one row of the per-prompt share-of-voice aggregation.
type ShareOfVoiceAnalytics struct {
	PromptID               uuid.UUID `db:"prompt_id"`
	ShareOfVoicePercentage float64   `db:"share_of_voice_percentage"`
}

// CompetitiveAnalytics is one row of the per-organization mention aggregation.
type CompetitiveAnalytics struct {
	MentionOrg       string  `db:"mention_org"`
	IsTargetBrand    bool    `db:"is_target_brand"`
	MentionCount     int     `db:"mention_count"`
	AverageSentiment float64 `db:"average_sentiment"`
	AverageRank      float64 `db:"average_rank"`
}

// EngineAnalytics is one row of the per-engine visibility aggregation.
type EngineAnalytics struct {
	EngineName       string  `db:"engine_name"`
	TotalRuns        int     `db:"total_runs"`
	RunsWithMentions int     `db:"runs_with_mentions"`
	AverageSentiment float64 `db:"average_sentiment"`
}

type BrandRepository interface {
	Create(ctx context.Context, brand *models.Brand) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Brand, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.Brand, error)
	Update(ctx context.Context, brand *models.Brand) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
	GetIDsByScheduledDOW(ctx context.Context, dow int) ([]uuid.UUID, error)
}

type BrandWebsiteRepository interface {
	Create(ctx context.Context, website *models.BrandWebsite) error
	GetByBrand(ctx context.Context, brandID uuid.UUID) ([]*models.BrandWebsite, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type CompetitorRepository interface {
	Create(ctx context.Context, competitor *models.Competitor) error
	GetByBrand(ctx context.Context, brandID uuid.UUID) ([]*models.Competitor, error)
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

type TrackedPromptRepository interface {
	Create(ctx context.Context, prompt *models.TrackedPrompt) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.TrackedPrompt, error)
	GetByBrand(ctx context.Context, brandID uuid.UUID) ([]*models.TrackedPrompt, error)
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

type BrandEngineRepository interface {
	Create(ctx context.Context, engine *models.BrandEngine) error
	GetByBrand(ctx context.Context, brandID uuid.UUID) ([]*models.BrandEngine, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type BrandLocationRepository interface {
	Create(ctx context.Context, location *models.BrandLocation) error
	GetByBrand(ctx context.Context, brandID uuid.UUID) ([]*models.BrandLocation, error)
}

type AnalysisBatchRepository interface {
	Create(ctx context.Context, batch *models.AnalysisBatch) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.AnalysisBatch, error)
	GetByBrand(ctx context.Context, brandID uuid.UUID, limit int) ([]*models.AnalysisBatch, error)
	GetOpenForDate(ctx context.Context, brandID uuid.UUID, date time.Time) (*models.AnalysisBatch, error)
	Update(ctx context.Context, batch *models.AnalysisBatch) error
	UpdateProgress(ctx context.Context, batchID uuid.UUID, completed, failed int) error
}

type PromptRunRepository interface {
	Create(ctx context.Context, run *models.PromptRun) error
	Update(ctx context.Context, run *models.PromptRun) error
	GetByBatch(ctx context.Context, batchID uuid.UUID) ([]*models.PromptRun, error)
	GetLatestByBrand(ctx context.Context, brandID uuid.UUID) ([]*models.PromptRun, error)
	UpdateLatestFlags(ctx context.Context, promptID, latestRunID uuid.UUID) error
	GetMentionsAnalytics(ctx context.Context, brandID uuid.UUID, startDate, endDate time.Time) ([]MentionsAnalytics, error)
	GetShareOfVoiceAnalytics(ctx context.Context, brandID uuid.UUID, startDate, endDate time.Time) ([]ShareOfVoiceAnalytics, error)
	GetCompetitiveAnalytics(ctx context.Context, brandID uuid.UUID) ([]CompetitiveAnalytics, error)
	GetEngineAnalytics(ctx context.Context, brandID uuid.UUID, startDate, endDate time.Time) ([]EngineAnalytics, error)
}

type MentionRepository interface {
	BulkCreate(ctx context.Context, mentions []*models.PromptRunMention) error
	GetByRun(ctx context.Context, runID uuid.UUID) ([]*models.PromptRunMention, error)
}

type ClaimRepository interface {
	BulkCreate(ctx context.Context, claims []*models.PromptRunClaim) error
	GetByRun(ctx context.Context, runID uuid.UUID) ([]*models.PromptRunClaim, error)
	UpdateVerification(ctx context.Context, claimID uuid.UUID, verification string) error
}

type CitationRepository interface {
	BulkCreate(ctx context.Context, citations []*models.PromptRunCitation) error
	GetByClaim(ctx context.Context, claimID uuid.UUID) ([]*models.PromptRunCitation, error)
}

type HallucinationRepository interface {
	BulkCreate(ctx context.Context, hallucinations []*models.Hallucination) error
	GetByBatch(ctx context.Context, batchID uuid.UUID) ([]*models.Hallucination, error)
}

type RecommendationRepository interface {
	BulkCreate(ctx context.Context, recommendations []*models.Recommendation) error
	GetByBrand(ctx context.Context, brandID uuid.UUID, limit int) ([]*models.Recommendation, error)
	DeleteByBatch(ctx context.Context, batchID uuid.UUID) error
}

type CrawlPageRepository interface {
	Upsert(ctx context.Context, page *models.CrawlPage) error
	GetByBrand(ctx context.Context, brandID uuid.UUID) ([]*models.CrawlPage, error)
}
