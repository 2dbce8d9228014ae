// internal/models/models.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// Brand is a tenant-owned brand being tracked across AI engines.
type Brand struct {
	BrandID     uuid.UUID  `db:"brand_id" json:"brand_id"`
	UserID      uuid.UUID  `db:"user_id" json:"user_id"`
	Name        string     `db:"name" json:"name"`
	Description *string    `db:"description" json:"description,omitempty"`
	Industry    *string    `db:"industry" json:"industry,omitempty"`
	ScheduleDOW int        `db:"schedule_dow" json:"schedule_dow"` // 0=Monday .. 6=Sunday
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
	DeletedAt   *time.Time `db:"deleted_at" json:"deleted_at,omitempty"`
}

// BrandWebsite is an official domain for a brand, used to classify citations
// and to scope the crawl.
type BrandWebsite struct {
	BrandWebsiteID uuid.UUID `db:"brand_website_id" json:"brand_website_id"`
	BrandID        uuid.UUID `db:"brand_id" json:"brand_id"`
	URL            string    `db:"url" json:"url"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// Competitor is a rival brand tracked alongside the target brand.
type Competitor struct {
	CompetitorID uuid.UUID  `db:"competitor_id" json:"competitor_id"`
	BrandID      uuid.UUID  `db:"brand_id" json:"brand_id"`
	Name         string     `db:"name" json:"name"`
	Website      *string    `db:"website" json:"website,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	DeletedAt    *time.Time `db:"deleted_at" json:"deleted_at,omitempty"`
}

// TrackedPrompt is a question the platform periodically asks every engine.
type TrackedPrompt struct {
	PromptID   uuid.UUID  `db:"prompt_id" json:"prompt_id"`
	BrandID    uuid.UUID  `db:"brand_id" json:"brand_id"`
	PromptText string     `db:"prompt_text" json:"prompt_text"`
	Category   *string    `db:"category" json:"category,omitempty"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	DeletedAt  *time.Time `db:"deleted_at" json:"deleted_at,omitempty"`
}

// BrandEngine is an AI engine configuration enabled for a brand.
type BrandEngine struct {
	BrandEngineID uuid.UUID `db:"brand_engine_id" json:"brand_engine_id"`
	BrandID       uuid.UUID `db:"brand_id" json:"brand_id"`
	Name          string    `db:"name" json:"name"` // e.g. "gpt-4.1", "claude-sonnet-4-20250514", "sonar", "gemini-2.0-flash"
	WebSearch     bool      `db:"web_search" json:"web_search"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// BrandLocation is a geography the prompt matrix runs from.
type BrandLocation struct {
	BrandLocationID uuid.UUID `db:"brand_location_id" json:"brand_location_id"`
	BrandID         uuid.UUID `db:"brand_id" json:"brand_id"`
	CountryCode     string    `db:"country_code" json:"country_code"`
	RegionName      *string   `db:"region_name" json:"region_name,omitempty"`
	City            *string   `db:"city" json:"city,omitempty"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

// AnalysisBatch groups the prompt runs of one analysis pass and carries the
// aggregated report once the pass completes.
type AnalysisBatch struct {
	BatchID           uuid.UUID  `db:"batch_id" json:"batch_id"`
	BrandID           uuid.UUID  `db:"brand_id" json:"brand_id"`
	Status            string     `db:"status" json:"status"` // pending, running, completed, failed
	TotalPrompts      int        `db:"total_prompts" json:"total_prompts"`
	CompletedCount    int        `db:"completed_count" json:"completed_count"`
	FailedCount       int        `db:"failed_count" json:"failed_count"`
	VisibilityScore   *float64   `db:"visibility_score" json:"visibility_score,omitempty"`
	ShareOfVoice      *float64   `db:"share_of_voice" json:"share_of_voice,omitempty"`
	AvgSentiment      *float64   `db:"avg_sentiment" json:"avg_sentiment,omitempty"`
	HallucinationRate *float64   `db:"hallucination_rate" json:"hallucination_rate,omitempty"`
	TotalCost         float64    `db:"total_cost" json:"total_cost"`
	StartedAt         *time.Time `db:"started_at" json:"started_at,omitempty"`
	CompletedAt       *time.Time `db:"completed_at" json:"completed_at,omitempty"`
	CreatedAt         time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time  `db:"updated_at" json:"updated_at"`
}

// PromptRun is one prompt executed against one engine from one location.
// Runs are immutable apart from the extracted metric columns and is_latest.
type PromptRun struct {
	PromptRunID    uuid.UUID  `db:"prompt_run_id" json:"prompt_run_id"`
	PromptID       uuid.UUID  `db:"prompt_id" json:"prompt_id"`
	BatchID        uuid.UUID  `db:"batch_id" json:"batch_id"`
	EngineName     string     `db:"engine_name" json:"engine_name"`
	LocationID     *uuid.UUID `db:"location_id" json:"location_id,omitempty"`
	ResponseText   *string    `db:"response_text" json:"response_text,omitempty"`
	InputTokens    *int       `db:"input_tokens" json:"input_tokens,omitempty"`
	OutputTokens   *int       `db:"output_tokens" json:"output_tokens,omitempty"`
	TotalCost      *float64   `db:"total_cost" json:"total_cost,omitempty"`
	BrandMentioned bool       `db:"brand_mentioned" json:"brand_mentioned"`
	BrandSOV       *float64   `db:"brand_sov" json:"brand_sov,omitempty"`
	BrandRank      *int       `db:"brand_rank" json:"brand_rank,omitempty"`
	BrandSentiment *float64   `db:"brand_sentiment" json:"brand_sentiment,omitempty"`
	IsLatest       bool       `db:"is_latest" json:"is_latest"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
}

// PromptRunMention is a brand or competitor surfaced in an engine answer.
type PromptRunMention struct {
	MentionID    uuid.UUID `db:"mention_id" json:"mention_id"`
	PromptRunID  uuid.UUID `db:"prompt_run_id" json:"prompt_run_id"`
	MentionOrg   string    `db:"mention_org" json:"mention_org"`
	MentionText  string    `db:"mention_text" json:"mention_text"`
	MentionRank  *int      `db:"mention_rank" json:"mention_rank,omitempty"`
	Sentiment    *string   `db:"sentiment" json:"sentiment,omitempty"`
	TargetBrand  bool      `db:"target_brand" json:"target_brand"`
	InputTokens  *int      `db:"input_tokens" json:"input_tokens,omitempty"`
	OutputTokens *int      `db:"output_tokens" json:"output_tokens,omitempty"`
	TotalCost    *float64  `db:"total_cost" json:"total_cost,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// PromptRunClaim is an individual factual claim extracted from an answer.
// Verification is filled by the hallucination check: supported, contradicted,
// or unverifiable.
type PromptRunClaim struct {
	ClaimID        uuid.UUID `db:"claim_id" json:"claim_id"`
	PromptRunID    uuid.UUID `db:"prompt_run_id" json:"prompt_run_id"`
	ClaimText      string    `db:"claim_text" json:"claim_text"`
	ClaimOrder     int       `db:"claim_order" json:"claim_order"`
	Sentiment      *string   `db:"sentiment" json:"sentiment,omitempty"`
	BrandMentioned *bool     `db:"brand_mentioned" json:"brand_mentioned,omitempty"`
	Verification   *string   `db:"verification" json:"verification,omitempty"`
	InputTokens    *int      `db:"input_tokens" json:"input_tokens,omitempty"`
	OutputTokens   *int      `db:"output_tokens" json:"output_tokens,omitempty"`
	TotalCost      *float64  `db:"total_cost" json:"total_cost,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// PromptRunCitation is a URL cited near a claim. Type is "primary" when the
// registrable domain matches one of the brand's websites, "secondary"
// otherwise.
type PromptRunCitation struct {
	CitationID    uuid.UUID `db:"citation_id" json:"citation_id"`
	ClaimID       uuid.UUID `db:"claim_id" json:"claim_id"`
	SourceURL     *string   `db:"source_url" json:"source_url,omitempty"`
	CitationType  string    `db:"citation_type" json:"citation_type"`
	CitationOrder int       `db:"citation_order" json:"citation_order"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// Hallucination records a claim about the brand that the brand's own crawled
// content contradicts or cannot support.
type Hallucination struct {
	HallucinationID uuid.UUID `db:"hallucination_id" json:"hallucination_id"`
	PromptRunID     uuid.UUID `db:"prompt_run_id" json:"prompt_run_id"`
	ClaimID         uuid.UUID `db:"claim_id" json:"claim_id"`
	ClaimText       string    `db:"claim_text" json:"claim_text"`
	Verdict         string    `db:"verdict" json:"verdict"` // contradicted, unverifiable
	Evidence        *string   `db:"evidence" json:"evidence,omitempty"`
	Confidence      *float64  `db:"confidence" json:"confidence,omitempty"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

// Recommendation is an actionable suggestion generated from a completed
// analysis batch.
type Recommendation struct {
	RecommendationID uuid.UUID  `db:"recommendation_id" json:"recommendation_id"`
	BrandID          uuid.UUID  `db:"brand_id" json:"brand_id"`
	BatchID          *uuid.UUID `db:"batch_id" json:"batch_id,omitempty"`
	Title            string     `db:"title" json:"title"`
	Detail           string     `db:"detail" json:"detail"`
	Category         string     `db:"category" json:"category"` // content, technical, authority
	Priority         int        `db:"priority" json:"priority"` // 1 = highest
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
}

// CrawlPage tracks a crawled page of a brand or competitor website.
type CrawlPage struct {
	CrawlPageID uuid.UUID `db:"crawl_page_id" json:"crawl_page_id"`
	BrandID     uuid.UUID `db:"brand_id" json:"brand_id"`
	URL         string    `db:"url" json:"url"`
	Title       *string   `db:"title" json:"title,omitempty"`
	ChunkCount  int       `db:"chunk_count" json:"chunk_count"`
	Status      string    `db:"status" json:"status"` // pending, indexed, failed
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// Location is the geography context passed to engine calls.
type Location struct {
	Country string  `json:"country"`          // Required
	City    *string `json:"city,omitempty"`   // Optional
	Region  *string `json:"region,omitempty"` // Optional (state/region)
}
