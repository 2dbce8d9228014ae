// services/interfaces.go
package services

import (
	"context"
	"time"

	"github.com/beenruuu/mentha/internal/database"
	"github.com/beenruuu/mentha/internal/models"
	"github.com/beenruuu/mentha/internal/repositories"
	"github.com/beenruuu/mentha/internal/repositories/postgresql"
	"github.com/google/uuid"
	"github.com/invopop/jsonschema"
	"github.com/jmoiron/sqlx"
)

// RepositoryManager manages all database repositories
type RepositoryManager struct {
	db                 *database.Client
	BrandRepo          repositories.BrandRepository
	BrandWebsiteRepo   repositories.BrandWebsiteRepository
	CompetitorRepo     repositories.CompetitorRepository
	TrackedPromptRepo  repositories.TrackedPromptRepository
	BrandEngineRepo    repositories.BrandEngineRepository
	BrandLocationRepo  repositories.BrandLocationRepository
	AnalysisBatchRepo  repositories.AnalysisBatchRepository
	PromptRunRepo      repositories.PromptRunRepository
	MentionRepo        repositories.MentionRepository
	ClaimRepo          repositories.ClaimRepository
	CitationRepo       repositories.CitationRepository
	HallucinationRepo  repositories.HallucinationRepository
	RecommendationRepo repositories.RecommendationRepository
	CrawlPageRepo      repositories.CrawlPageRepository
}

// NewRepositoryManager creates a new repository manager with all repositories
func NewRepositoryManager(db *database.Client) *RepositoryManager {
	return &RepositoryManager{
		db:                 db,
		BrandRepo:          postgresql.NewBrandRepo(db),
		BrandWebsiteRepo:   postgresql.NewBrandWebsiteRepo(db),
		CompetitorRepo:     postgresql.NewCompetitorRepo(db),
		TrackedPromptRepo:  postgresql.NewTrackedPromptRepo(db),
		BrandEngineRepo:    postgresql.NewBrandEngineRepo(db),
		BrandLocationRepo:  postgresql.NewBrandLocationRepo(db),
		AnalysisBatchRepo:  postgresql.NewAnalysisBatchRepo(db),
		PromptRunRepo:      postgresql.NewPromptRunRepo(db),
		MentionRepo:        postgresql.NewMentionRepo(db),
		ClaimRepo:          postgresql.NewClaimRepo(db),
		CitationRepo:       postgresql.NewCitationRepo(db),
		HallucinationRepo:  postgresql.NewHallucinationRepo(db),
		RecommendationRepo: postgresql.NewRecommendationRepo(db),
		CrawlPageRepo:      postgresql.NewCrawlPageRepo(db),
	}
}

// BeginTx starts a database transaction
func (rm *RepositoryManager) BeginTx(ctx context.Context) (*sqlx.Tx, error) {
	return rm.db.BeginTxx(ctx)
}

// BrandDetails contains complete brand data from database
type BrandDetails struct {
	Brand       *models.Brand
	Engines     []*models.BrandEngine
	Locations   []*models.BrandLocation
	Prompts     []*models.TrackedPrompt
	Competitors []*models.Competitor
	Websites    []string // Brand website URLs for citation classification
}

// BrandMetrics contains calculated competitive metrics for a single run
type BrandMetrics struct {
	BrandMentioned bool
	ShareOfVoice   *float64
	BrandRank      *int
	BrandSentiment *float64
}

// ExtractedData contains all extracted data from AI responses
type ExtractedData struct {
	Mentions  []*models.PromptRunMention
	Claims    []*models.PromptRunClaim
	Citations []*models.PromptRunCitation
}

// AIProvider interface for different AI engines
type AIProvider interface {
	RunPrompt(ctx context.Context, query string, websearch bool, location *models.Location) (*AIResponse, error)

	// Batch processing support
	SupportsBatching() bool
	GetMaxBatchSize() int
	RunPromptBatch(ctx context.Context, queries []string, websearch bool, location *models.Location) ([]*AIResponse, error)
}

// AIResponse contains the response from an AI engine
type AIResponse struct {
	Response     string
	InputTokens  int
	OutputTokens int
	Cost         float64
	Citations    []string
}

// PromptJob represents a single prompt×engine×location combination to process
type PromptJob struct {
	PromptID     uuid.UUID  `json:"prompt_id"`
	EngineID     uuid.UUID  `json:"engine_id"`
	LocationID   *uuid.UUID `json:"location_id,omitempty"`
	PromptText   string     `json:"prompt_text"`
	EngineName   string     `json:"engine_name"`
	WebSearch    bool       `json:"web_search"`
	LocationCode string     `json:"location_code"`
	JobIndex     int        `json:"job_index"`
	TotalJobs    int        `json:"total_jobs"`
}

// PromptJobResult represents the result of processing a single prompt job
type PromptJobResult struct {
	PromptRunID  uuid.UUID `json:"prompt_run_id"`
	JobIndex     int       `json:"job_index"`
	Status       string    `json:"status"` // "completed" or "failed"
	MentionCount int       `json:"mention_count"`
	ClaimCount   int       `json:"claim_count"`
	TotalCost    float64   `json:"total_cost"`
	ErrorMessage string    `json:"error_message,omitempty"`
}

// BatchSummary represents the summary of an analysis batch run
type BatchSummary struct {
	BatchID          uuid.UUID `json:"batch_id"`
	TotalProcessed   int       `json:"total_processed"`
	TotalFailed      int       `json:"total_failed"`
	TotalMentions    int       `json:"total_mentions"`
	TotalClaims      int       `json:"total_claims"`
	TotalCost        float64   `json:"total_cost"`
	ProcessingErrors []string  `json:"processing_errors"`
}

// VisibilityReport is the aggregated report attached to a completed batch.
type VisibilityReport struct {
	BrandID           uuid.UUID                        `json:"brand_id"`
	BatchID           uuid.UUID                        `json:"batch_id"`
	VisibilityScore   float64                          `json:"visibility_score"`
	ShareOfVoice      float64                          `json:"share_of_voice"`
	AvgSentiment      *float64                         `json:"avg_sentiment,omitempty"`
	HallucinationRate float64                          `json:"hallucination_rate"`
	PromptVisibility  []PromptVisibility               `json:"prompt_visibility"`
	Engines           []repositories.EngineAnalytics   `json:"engines"`
	Competitive       []repositories.CompetitiveAnalytics `json:"competitive"`
	GeneratedAt       time.Time                        `json:"generated_at"`
}

// PromptVisibility is the per-prompt slice of a visibility report.
type PromptVisibility struct {
	PromptID         uuid.UUID `json:"prompt_id"`
	TotalRuns        int       `json:"total_runs"`
	RunsWithMentions int       `json:"runs_with_mentions"`
	VisibilityScore  float64   `json:"visibility_score"`
}

// HallucinationResult is the outcome of verifying the claims of one run.
type HallucinationResult struct {
	Checked        int
	Hallucinations []*models.Hallucination
	TotalCost      float64
}

// BrandService interface for brand operations
type BrandService interface {
	GetBrandDetails(ctx context.Context, brandID string) (*BrandDetails, error)
	GetBrandIDsByScheduledDOW(ctx context.Context, dow int) ([]uuid.UUID, error)
	GetBrandsScheduledForDate(ctx context.Context, date time.Time) ([]string, error)
}

// RunnerService executes the prompt×engine×location matrix for a brand and
// persists each run.
type RunnerService interface {
	CalculatePromptMatrix(ctx context.Context, details *BrandDetails) ([]*PromptJob, error)
	ProcessSinglePromptJob(ctx context.Context, job *PromptJob, details *BrandDetails, batchID uuid.UUID) (*PromptJobResult, error)
	GetOrCreateTodaysBatch(ctx context.Context, brandID uuid.UUID, totalPrompts int) (*models.AnalysisBatch, bool, error)
	StartBatch(ctx context.Context, batchID uuid.UUID) error
	CompleteBatch(ctx context.Context, batchID uuid.UUID, report *VisibilityReport, totalCost float64) error
	FailBatch(ctx context.Context, batchID uuid.UUID) error
	UpdateBatchProgress(ctx context.Context, batchID uuid.UUID, completed, failed int) error
	UpdateLatestFlagsForBatch(ctx context.Context, batchID uuid.UUID) error
}

// ExtractionService parses raw engine answers into mentions, claims and
// citations.
type ExtractionService interface {
	ExtractMentions(ctx context.Context, promptRunID uuid.UUID, response string, targetBrand string, competitors []string) ([]*models.PromptRunMention, error)
	ExtractClaims(ctx context.Context, promptRunID uuid.UUID, response string, targetBrand string) ([]*models.PromptRunClaim, error)
	ExtractCitations(ctx context.Context, claims []*models.PromptRunClaim, response string, brandWebsites []string) ([]*models.PromptRunCitation, error)
	CalculateMetrics(ctx context.Context, mentions []*models.PromptRunMention, targetBrand string) (*BrandMetrics, error)
}

// HallucinationService verifies extracted claims against the brand's own
// indexed content.
type HallucinationService interface {
	VerifyRunClaims(ctx context.Context, brandID uuid.UUID, run *models.PromptRun, claims []*models.PromptRunClaim) (*HallucinationResult, error)
}

// VisibilityService aggregates persisted runs into the batch report.
type VisibilityService interface {
	BuildReport(ctx context.Context, brandID, batchID uuid.UUID, startDate, endDate time.Time) (*VisibilityReport, error)
}

// RecommendationService generates actionable suggestions from a completed
// batch report.
type RecommendationService interface {
	GenerateRecommendations(ctx context.Context, brandID, batchID uuid.UUID, report *VisibilityReport) ([]*models.Recommendation, float64, error)
}

// CrawlService fetches brand and competitor pages as markdown.
type CrawlService interface {
	ScrapeURL(ctx context.Context, url string) (*ScrapedPage, error)
	CrawlSite(ctx context.Context, url string, maxPages int) ([]*ScrapedPage, error)
}

// ScrapedPage is one page of crawler output.
type ScrapedPage struct {
	URL      string
	Title    string
	Markdown string
}

// IngestionService chunks, embeds and indexes crawled content.
type IngestionService interface {
	IngestPage(ctx context.Context, brandID uuid.UUID, page *ScrapedPage) (int, error)
	EnsureCollections(ctx context.Context) error
}

// RAGService answers a query from the brand's indexed content.
type RAGService interface {
	Query(ctx context.Context, brandID uuid.UUID, query string, topK int) (*RAGResult, error)
	Retrieve(ctx context.Context, brandID uuid.UUID, query string, topK int) ([]RetrievedChunk, error)
}

// RetrievedChunk is one indexed chunk returned for a query.
type RetrievedChunk struct {
	ChunkID   string  `json:"chunk_id"`
	URL       string  `json:"url"`
	Title     string  `json:"title"`
	Content   string  `json:"content"`
	Score     float64 `json:"score"`
	Retriever string  `json:"retriever"` // "vector" or "keyword"
}

// RAGResult is a simulated AI answer grounded in the brand's own content.
type RAGResult struct {
	Answer    string           `json:"answer"`
	Chunks    []RetrievedChunk `json:"chunks"`
	TotalCost float64          `json:"total_cost"`
}

// SchemaService generates JSON-LD structured data for brand pages.
type SchemaService interface {
	GenerateOrganizationSchema(ctx context.Context, details *BrandDetails) (map[string]interface{}, error)
	GenerateFAQSchema(ctx context.Context, details *BrandDetails) (map[string]interface{}, error)
}

// ExportService renders batch data as CSV.
type ExportService interface {
	ExportRuns(ctx context.Context, batchID uuid.UUID) ([]byte, error)
	ExportMentions(ctx context.Context, batchID uuid.UUID) ([]byte, error)
}

// SearchConsoleService pulls organic search metrics for brand sites.
type SearchConsoleService interface {
	GetTopQueries(ctx context.Context, siteURL string, startDate, endDate time.Time, limit int) ([]SearchQueryMetrics, error)
}

// SearchQueryMetrics is one row of Search Console query data.
type SearchQueryMetrics struct {
	Query       string  `json:"query"`
	Clicks      float64 `json:"clicks"`
	Impressions float64 `json:"impressions"`
	CTR         float64 `json:"ctr"`
	Position    float64 `json:"position"`
}

type CostService interface {
	CalculateCost(provider, model string, inputTokens, outputTokens int, webSearch bool) float64
}

// Structured output types for AI extraction
type MentionsExtractionResponse struct {
	TargetBrand *BrandExtract  `json:"target_brand"`
	Competitors []BrandExtract `json:"competitors"`
}

type BrandExtract struct {
	Name          string `json:"name"`
	Rank          int    `json:"rank"`
	MentionedText string `json:"mentioned_text"`
	TextSentiment string `json:"text_sentiment"`
}

type ClaimsExtractionResponse struct {
	Claims []ClaimExtract `json:"claims"`
}

type ClaimExtract struct {
	ClaimText      string `json:"claim_text"`
	ClaimSentiment string `json:"claim_sentiment"`
	BrandMentioned bool   `json:"brand_mentioned"`
}

type CitationsExtractionResponse struct {
	Citations []CitationExtract `json:"citations"`
}

type CitationExtract struct {
	SourceURL *string `json:"source_url"`
	Type      string  `json:"type"`
}

type ClaimVerdictResponse struct {
	Verdict    string  `json:"verdict"` // supported, contradicted, unverifiable
	Evidence   string  `json:"evidence"`
	Confidence float64 `json:"confidence"`
}

type RecommendationsResponse struct {
	Recommendations []RecommendationExtract `json:"recommendations"`
}

type RecommendationExtract struct {
	Title    string `json:"title"`
	Detail   string `json:"detail"`
	Category string `json:"category"`
	Priority int    `json:"priority"`
}

// GenerateSchema generates a JSON schema for structured outputs
func GenerateSchema[T any]() interface{} {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}

	var zero T
	schema := reflector.Reflect(zero)

	// Convert to the format expected by OpenAI
	result := map[string]interface{}{
		"type":       "object",
		"properties": schema.Properties,
		"required":   schema.Required,
	}

	if schema.AdditionalProperties != nil {
		result["additionalProperties"] = false
	}

	return result
}
