// internal/repositories/postgresql/extraction_repos.go
package postgresql

import (
	"context"
	"fmt"

	"github.com/beenruuu/mentha/internal/database"
	"github.com/beenruuu/mentha/internal/models"
	"github.com/beenruuu/mentha/internal/repositories"
	"github.com/google/uuid"
)

type mentionRepo struct {
	db *database.Client
}

func NewMentionRepo(db *database.Client) repositories.MentionRepository {
	return &mentionRepo{db: db}
}

func (r *mentionRepo) BulkCreate(ctx context.Context, mentions []*models.PromptRunMention) error {
	if len(mentions) == 0 {
		return nil
	}
	query := `
		INSERT INTO prompt_run_mentions (
			mention_id, prompt_run_id, mention_org, mention_text, mention_rank,
			sentiment, target_brand, input_tokens, output_tokens, total_cost,
			created_at, updated_at
		) VALUES (
			:mention_id, :prompt_run_id, :mention_org, :mention_text, :mention_rank,
			:sentiment, :target_brand, :input_tokens, :output_tokens, :total_cost,
			:created_at, :updated_at
		)`
	if _, err := r.db.DB.NamedExecContext(ctx, query, mentions); err != nil {
		return fmt.Errorf("failed to bulk insert mentions: %w", err)
	}
	return nil
}

func (r *mentionRepo) GetByRun(ctx context.Context, runID uuid.UUID) ([]*models.PromptRunMention, error) {
	var mentions []*models.PromptRunMention
	query := `SELECT * FROM prompt_run_mentions WHERE prompt_run_id = $1 ORDER BY mention_rank NULLS LAST`
	if err := r.db.DB.SelectContext(ctx, &mentions, query, runID); err != nil {
		return nil, fmt.Errorf("failed to get mentions: %w", err)
	}
	return mentions, nil
}

type claimRepo struct {
	db *database.Client
}

func NewClaimRepo(db *database.Client) repositories.ClaimRepository {
	return &claimRepo{db: db}
}

func (r *claimRepo) BulkCreate(ctx context.Context, claims []*models.PromptRunClaim) error {
	if len(claims) == 0 {
		return nil
	}
	query := `
		INSERT INTO prompt_run_claims (
			claim_id, prompt_run_id, claim_text, claim_order, sentiment,
			brand_mentioned, verification, input_tokens, output_tokens, total_cost,
			created_at, updated_at
		) VALUES (
			:claim_id, :prompt_run_id, :claim_text, :claim_order, :sentiment,
			:brand_mentioned, :verification, :input_tokens, :output_tokens, :total_cost,
			:created_at, :updated_at
		)`
	if _, err := r.db.DB.NamedExecContext(ctx, query, claims); err != nil {
		return fmt.Errorf("failed to bulk insert claims: %w", err)
	}
	return nil
}

func (r *claimRepo) GetByRun(ctx context.Context, runID uuid.UUID) ([]*models.PromptRunClaim, error) {
	var claims []*models.PromptRunClaim
	query := `SELECT * FROM prompt_run_claims WHERE prompt_run_id = $1 ORDER BY claim_order`
	if err := r.db.DB.SelectContext(ctx, &claims, query, runID); err != nil {
		return nil, fmt.Errorf("failed to get claims: %w", err)
	}
	return claims, nil
}

func (r *claimRepo) UpdateVerification(ctx context.Context, claimID uuid.UUID, verification string) error {
	query := `UPDATE prompt_run_claims SET verification = $2, updated_at = NOW() WHERE claim_id = $1`
	if _, err := r.db.DB.ExecContext(ctx, query, claimID, verification); err != nil {
		return fmt.Errorf("failed to update claim verification: %w", err)
	}
	return nil
}

type citationRepo struct {
	db *database.Client
}

func NewCitationRepo(db *database.Client) repositories.CitationRepository {
	return &citationRepo{db: db}
}

func (r *citationRepo) BulkCreate(ctx context.Context, citations []*models.PromptRunCitation) error {
	if len(citations) == 0 {
		return nil
	}
	query := `
		INSERT INTO prompt_run_citations (
			citation_id, claim_id, source_url, citation_type, citation_order,
			created_at, updated_at
		) VALUES (
			:citation_id, :claim_id, :source_url, :citation_type, :citation_order,
			:created_at, :updated_at
		)`
	if _, err := r.db.DB.NamedExecContext(ctx, query, citations); err != nil {
		return fmt.Errorf("failed to bulk insert citations: %w", err)
	}
	return nil
}

func (r *citationRepo) GetByClaim(ctx context.Context, claimID uuid.UUID) ([]*models.PromptRunCitation, error) {
	var citations []*models.PromptRunCitation
	query := `SELECT * FROM prompt_run_citations WHERE claim_id = $1 ORDER BY citation_order`
	if err := r.db.DB.SelectContext(ctx, &citations, query, claimID); err != nil {
		return nil, fmt.Errorf("failed to get citations: %w", err)
	}
	return citations, nil
}

type hallucinationRepo struct {
	db *database.Client
}

func NewHallucinationRepo(db *database.Client) repositories.HallucinationRepository {
	return &hallucinationRepo{db: db}
}

func (r *hallucinationRepo) BulkCreate(ctx context.Context, hallucinations []*models.Hallucination) error {
	if len(hallucinations) == 0 {
		return nil
	}
	query := `
		INSERT INTO hallucinations (
			hallucination_id, prompt_run_id, claim_id, claim_text, verdict,
			evidence, confidence, created_at
		) VALUES (
			:hallucination_id, :prompt_run_id, :claim_id, :claim_text, :verdict,
			:evidence, :confidence, :created_at
		)`
	if _, err := r.db.DB.NamedExecContext(ctx, query, hallucinations); err != nil {
		return fmt.Errorf("failed to bulk insert hallucinations: %w", err)
	}
	return nil
}

func (r *hallucinationRepo) GetByBatch(ctx context.Context, batchID uuid.UUID) ([]*models.Hallucination, error) {
	var hallucinations []*models.Hallucination
	query := `
		SELECT h.* FROM hallucinations h
		JOIN prompt_runs pr ON pr.prompt_run_id = h.prompt_run_id
		WHERE pr.batch_id = $1
		ORDER BY h.created_at`
	if err := r.db.DB.SelectContext(ctx, &hallucinations, query, batchID); err != nil {
		return nil, fmt.Errorf("failed to get hallucinations: %w", err)
	}
	return hallucinations, nil
}

type recommendationRepo struct {
	db *database.Client
}

func NewRecommendationRepo(db *database.Client) repositories.RecommendationRepository {
	return &recommendationRepo{db: db}
}

func (r *recommendationRepo) BulkCreate(ctx context.Context, recommendations []*models.Recommendation) error {
	if len(recommendations) == 0 {
		return nil
	}
	query := `
		INSERT INTO recommendations (
			recommendation_id, brand_id, batch_id, title, detail, category,
			priority, created_at
		) VALUES (
			:recommendation_id, :brand_id, :batch_id, :title, :detail, :category,
			:priority, :created_at
		)`
	if _, err := r.db.DB.NamedExecContext(ctx, query, recommendations); err != nil {
		return fmt.Errorf("failed to bulk insert recommendations: %w", err)
	}
	return nil
}

func (r *recommendationRepo) GetByBrand(ctx context.Context, brandID uuid.UUID, limit int) ([]*models.Recommendation, error) {
	var recommendations []*models.Recommendation
	query := `SELECT * FROM recommendations WHERE brand_id = $1 ORDER BY priority, created_at DESC LIMIT $2`
	if err := r.db.DB.SelectContext(ctx, &recommendations, query, brandID, limit); err != nil {
		return nil, fmt.Errorf("failed to get recommendations: %w", err)
	}
	return recommendations, nil
}

func (r *recommendationRepo) DeleteByBatch(ctx context.Context, batchID uuid.UUID) error {
	query := `DELETE FROM recommendations WHERE batch_id = $1`
	if _, err := r.db.DB.ExecContext(ctx, query, batchID); err != nil {
		return fmt.Errorf("failed to delete recommendations: %w", err)
	}
	return nil
}

type crawlPageRepo struct {
	db *database.Client
}

func NewCrawlPageRepo(db *database.Client) repositories.CrawlPageRepository {
	return &crawlPageRepo{db: db}
}

func (r *crawlPageRepo) Upsert(ctx context.Context, page *models.CrawlPage) error {
	query := `
		INSERT INTO crawl_pages (
			crawl_page_id, brand_id, url, title, chunk_count, status, created_at, updated_at
		) VALUES (
			:crawl_page_id, :brand_id, :url, :title, :chunk_count, :status, :created_at, :updated_at
		)
		ON CONFLICT (brand_id, url) DO UPDATE
		SET title = EXCLUDED.title, chunk_count = EXCLUDED.chunk_count,
		    status = EXCLUDED.status, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.DB.NamedExecContext(ctx, query, page); err != nil {
		return fmt.Errorf("failed to upsert crawl page: %w", err)
	}
	return nil
}

func (r *crawlPageRepo) GetByBrand(ctx context.Context, brandID uuid.UUID) ([]*models.CrawlPage, error) {
	var pages []*models.CrawlPage
	query := `SELECT * FROM crawl_pages WHERE brand_id = $1 ORDER BY url`
	if err := r.db.DB.SelectContext(ctx, &pages, query, brandID); err != nil {
		return nil, fmt.Errorf("failed to get crawl pages: %w", err)
	}
	return pages, nil
}
