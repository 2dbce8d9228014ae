// internal/repositories/postgresql/prompt_repo.go
package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/beenruuu/mentha/internal/database"
	"github.com/beenruuu/mentha/internal/models"
	"github.com/beenruuu/mentha/internal/repositories"
	"github.com/google/uuid"
)

type trackedPromptRepo struct {
	db *database.Client
}

func NewTrackedPromptRepo(db *database.Client) repositories.TrackedPromptRepository {
	return &trackedPromptRepo{db: db}
}

func (r *trackedPromptRepo) Create(ctx context.Context, prompt *models.TrackedPrompt) error {
	query := `
		INSERT INTO tracked_prompts (prompt_id, brand_id, prompt_text, category, created_at)
		VALUES (:prompt_id, :brand_id, :prompt_text, :category, :created_at)`
	if _, err := r.db.DB.NamedExecContext(ctx, query, prompt); err != nil {
		return fmt.Errorf("failed to insert tracked prompt: %w", err)
	}
	return nil
}

func (r *trackedPromptRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.TrackedPrompt, error) {
	var prompt models.TrackedPrompt
	query := `SELECT * FROM tracked_prompts WHERE prompt_id = $1 AND deleted_at IS NULL`
	if err := r.db.DB.GetContext(ctx, &prompt, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get tracked prompt: %w", err)
	}
	return &prompt, nil
}

func (r *trackedPromptRepo) GetByBrand(ctx context.Context, brandID uuid.UUID) ([]*models.TrackedPrompt, error) {
	var prompts []*models.TrackedPrompt
	query := `SELECT * FROM tracked_prompts WHERE brand_id = $1 AND deleted_at IS NULL ORDER BY created_at`
	if err := r.db.DB.SelectContext(ctx, &prompts, query, brandID); err != nil {
		return nil, fmt.Errorf("failed to get tracked prompts: %w", err)
	}
	return prompts, nil
}

func (r *trackedPromptRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE tracked_prompts SET deleted_at = NOW() WHERE prompt_id = $1 AND deleted_at IS NULL`
	if _, err := r.db.DB.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("failed to soft delete tracked prompt: %w", err)
	}
	return nil
}
