// internal/repositories/postgresql/run_repo.go
package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/beenruuu/mentha/internal/database"
	"github.com/beenruuu/mentha/internal/models"
	"github.com/beenruuu/mentha/internal/repositories"
	"github.com/google/uuid"
)

type promptRunRepo struct {
	db *database.Client
}

func NewPromptRunRepo(db *database.Client) repositories.PromptRunRepository {
	return &promptRunRepo{db: db}
}

func (r *promptRunRepo) Create(ctx context.Context, run *models.PromptRun) error {
	query := `
		INSERT INTO prompt_runs (
			prompt_run_id, prompt_id, batch_id, engine_name, location_id,
			response_text, input_tokens, output_tokens, total_cost,
			brand_mentioned, brand_sov, brand_rank, brand_sentiment,
			is_latest, created_at, updated_at
		) VALUES (
			:prompt_run_id, :prompt_id, :batch_id, :engine_name, :location_id,
			:response_text, :input_tokens, :output_tokens, :total_cost,
			:brand_mentioned, :brand_sov, :brand_rank, :brand_sentiment,
			:is_latest, :created_at, :updated_at
		)`
	if _, err := r.db.DB.NamedExecContext(ctx, query, run); err != nil {
		return fmt.Errorf("failed to insert prompt run: %w", err)
	}
	return nil
}

func (r *promptRunRepo) Update(ctx context.Context, run *models.PromptRun) error {
	query := `
		UPDATE prompt_runs
		SET brand_mentioned = :brand_mentioned, brand_sov = :brand_sov,
		    brand_rank = :brand_rank, brand_sentiment = :brand_sentiment,
		    updated_at = :updated_at
		WHERE prompt_run_id = :prompt_run_id`
	if _, err := r.db.DB.NamedExecContext(ctx, query, run); err != nil {
		return fmt.Errorf("failed to update prompt run: %w", err)
	}
	return nil
}

func (r *promptRunRepo) GetByBatch(ctx context.Context, batchID uuid.UUID) ([]*models.PromptRun, error) {
	var runs []*models.PromptRun
	query := `SELECT * FROM prompt_runs WHERE batch_id = $1 ORDER BY created_at`
	if err := r.db.DB.SelectContext(ctx, &runs, query, batchID); err != nil {
		return nil, fmt.Errorf("failed to get prompt runs by batch: %w", err)
	}
	return runs, nil
}

func (r *promptRunRepo) GetLatestByBrand(ctx context.Context, brandID uuid.UUID) ([]*models.PromptRun, error) {
	var runs []*models.PromptRun
	query := `
		SELECT pr.* FROM prompt_runs pr
		JOIN tracked_prompts tp ON tp.prompt_id = pr.prompt_id
		WHERE tp.brand_id = $1 AND pr.is_latest = TRUE
		ORDER BY pr.created_at`
	if err := r.db.DB.SelectContext(ctx, &runs, query, brandID); err != nil {
		return nil, fmt.Errorf("failed to get latest prompt runs: %w", err)
	}
	return runs, nil
}

// UpdateLatestFlags clears is_latest on all runs of the prompt, then marks the
// given run as latest.
func (r *promptRunRepo) UpdateLatestFlags(ctx context.Context, promptID, latestRunID uuid.UUID) error {
	tx, err := r.db.BeginTxx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`UPDATE prompt_runs SET is_latest = FALSE, updated_at = NOW() WHERE prompt_id = $1 AND is_latest = TRUE`,
		promptID); err != nil {
		return fmt.Errorf("failed to clear latest flags: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE prompt_runs SET is_latest = TRUE, updated_at = NOW() WHERE prompt_run_id = $1`,
		latestRunID); err != nil {
		return fmt.Errorf("failed to set latest flag: %w", err)
	}

	return tx.Commit()
}

func (r *promptRunRepo) GetMentionsAnalytics(ctx context.Context, brandID uuid.UUID, startDate, endDate time.Time) ([]repositories.MentionsAnalytics, error) {
	var rows []repositories.MentionsAnalytics
	query := `
		SELECT pr.prompt_id,
		       COUNT(*) AS total_runs,
		       COUNT(*) FILTER (WHERE pr.brand_mentioned) AS runs_with_mentions
		FROM prompt_runs pr
		JOIN tracked_prompts tp ON tp.prompt_id = pr.prompt_id
		WHERE tp.brand_id = $1 AND pr.created_at BETWEEN $2 AND $3
		GROUP BY pr.prompt_id`
	if err := r.db.DB.SelectContext(ctx, &rows, query, brandID, startDate, endDate); err != nil {
		return nil, fmt.Errorf("failed to get mentions analytics: %w", err)
	}
	return rows, nil
}

func (r *promptRunRepo) GetShareOfVoiceAnalytics(ctx context.Context, brandID uuid.UUID, startDate, endDate time.Time) ([]repositories.ShareOfVoiceAnalytics, error) {
	var rows []repositories.ShareOfVoiceAnalytics
	query := `
		SELECT pr.prompt_id,
		       COALESCE(AVG(pr.brand_sov) * 100, 0) AS share_of_voice_percentage
		FROM prompt_runs pr
		JOIN tracked_prompts tp ON tp.prompt_id = pr.prompt_id
		WHERE tp.brand_id = $1
		  AND pr.brand_sov IS NOT NULL
		  AND pr.created_at BETWEEN $2 AND $3
		GROUP BY pr.prompt_id`
	if err := r.db.DB.SelectContext(ctx, &rows, query, brandID, startDate, endDate); err != nil {
		return nil, fmt.Errorf("failed to get share of voice analytics: %w", err)
	}
	return rows, nil
}

func (r *promptRunRepo) GetCompetitiveAnalytics(ctx context.Context, brandID uuid.UUID) ([]repositories.CompetitiveAnalytics, error) {
	var rows []repositories.CompetitiveAnalytics
	query := `
		SELECT m.mention_org,
		       m.target_brand AS is_target_brand,
		       COUNT(*) AS mention_count,
		       COALESCE(AVG(CASE m.sentiment
		           WHEN 'positive' THEN 1.0
		           WHEN 'neutral' THEN 0.5
		           WHEN 'negative' THEN 0.0
		       END), 0.5) AS average_sentiment,
		       COALESCE(AVG(m.mention_rank), 0) AS average_rank
		FROM prompt_run_mentions m
		JOIN prompt_runs pr ON pr.prompt_run_id = m.prompt_run_id
		JOIN tracked_prompts tp ON tp.prompt_id = pr.prompt_id
		WHERE tp.brand_id = $1 AND pr.is_latest = TRUE
		GROUP BY m.mention_org, m.target_brand
		ORDER BY mention_count DESC`
	if err := r.db.DB.SelectContext(ctx, &rows, query, brandID); err != nil {
		return nil, fmt.Errorf("failed to get competitive analytics: %w", err)
	}
	return rows, nil
}

func (r *promptRunRepo) GetEngineAnalytics(ctx context.Context, brandID uuid.UUID, startDate, endDate time.Time) ([]repositories.EngineAnalytics, error) {
	var rows []repositories.EngineAnalytics
	query := `
		SELECT pr.engine_name,
		       COUNT(*) AS total_runs,
		       COUNT(*) FILTER (WHERE pr.brand_mentioned) AS runs_with_mentions,
		       COALESCE(AVG(pr.brand_sentiment), 0) AS average_sentiment
		FROM prompt_runs pr
		JOIN tracked_prompts tp ON tp.prompt_id = pr.prompt_id
		WHERE tp.brand_id = $1 AND pr.created_at BETWEEN $2 AND $3
		GROUP BY pr.engine_name
		ORDER BY pr.engine_name`
	if err := r.db.DB.SelectContext(ctx, &rows, query, brandID, startDate, endDate); err != nil {
		return nil, fmt.Errorf("failed to get engine analytics: %w", err)
	}
	return rows, nil
}
