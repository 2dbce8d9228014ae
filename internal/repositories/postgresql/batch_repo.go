// internal/repositories/postgresql/batch_repo.go
package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/beenruuu/mentha/internal/database"
	"github.com/beenruuu/mentha/internal/models"
	"github.com/beenruuu/mentha/internal/repositories"
	"github.com/google/uuid"
)

type analysisBatchRepo struct {
	db *database.Client
}

func NewAnalysisBatchRepo(db *database.Client) repositories.AnalysisBatchRepository {
	return &analysisBatchRepo{db: db}
}

func (r *analysisBatchRepo) Create(ctx context.Context, batch *models.AnalysisBatch) error {
	query := `
		INSERT INTO analysis_batches (
			batch_id, brand_id, status, total_prompts, completed_count, failed_count,
			total_cost, created_at, updated_at
		) VALUES (
			:batch_id, :brand_id, :status, :total_prompts, :completed_count, :failed_count,
			:total_cost, :created_at, :updated_at
		)`
	if _, err := r.db.DB.NamedExecContext(ctx, query, batch); err != nil {
		return fmt.Errorf("failed to insert analysis batch: %w", err)
	}
	return nil
}

func (r *analysisBatchRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.AnalysisBatch, error) {
	var batch models.AnalysisBatch
	query := `SELECT * FROM analysis_batches WHERE batch_id = $1`
	if err := r.db.DB.GetContext(ctx, &batch, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get analysis batch: %w", err)
	}
	return &batch, nil
}

func (r *analysisBatchRepo) GetByBrand(ctx context.Context, brandID uuid.UUID, limit int) ([]*models.AnalysisBatch, error) {
	var batches []*models.AnalysisBatch
	query := `SELECT * FROM analysis_batches WHERE brand_id = $1 ORDER BY created_at DESC LIMIT $2`
	if err := r.db.DB.SelectContext(ctx, &batches, query, brandID, limit); err != nil {
		return nil, fmt.Errorf("failed to get analysis batches: %w", err)
	}
	return batches, nil
}

// GetOpenForDate returns a pending or running batch created on the given day,
// used to keep scheduled reruns idempotent.
func (r *analysisBatchRepo) GetOpenForDate(ctx context.Context, brandID uuid.UUID, date time.Time) (*models.AnalysisBatch, error) {
	var batch models.AnalysisBatch
	query := `
		SELECT * FROM analysis_batches
		WHERE brand_id = $1
		  AND status IN ('pending', 'running')
		  AND created_at::date = $2::date
		ORDER BY created_at DESC
		LIMIT 1`
	if err := r.db.DB.GetContext(ctx, &batch, query, brandID, date); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get open batch: %w", err)
	}
	return &batch, nil
}

func (r *analysisBatchRepo) Update(ctx context.Context, batch *models.AnalysisBatch) error {
	query := `
		UPDATE analysis_batches
		SET status = :status, total_prompts = :total_prompts,
		    completed_count = :completed_count, failed_count = :failed_count,
		    visibility_score = :visibility_score, share_of_voice = :share_of_voice,
		    avg_sentiment = :avg_sentiment, hallucination_rate = :hallucination_rate,
		    total_cost = :total_cost, started_at = :started_at,
		    completed_at = :completed_at, updated_at = :updated_at
		WHERE batch_id = :batch_id`
	if _, err := r.db.DB.NamedExecContext(ctx, query, batch); err != nil {
		return fmt.Errorf("failed to update analysis batch: %w", err)
	}
	return nil
}

func (r *analysisBatchRepo) UpdateProgress(ctx context.Context, batchID uuid.UUID, completed, failed int) error {
	query := `
		UPDATE analysis_batches
		SET completed_count = completed_count + $2,
		    failed_count = failed_count + $3,
		    updated_at = NOW()
		WHERE batch_id = $1`
	if _, err := r.db.DB.ExecContext(ctx, query, batchID, completed, failed); err != nil {
		return fmt.Errorf("failed to update batch progress: %w", err)
	}
	return nil
}
