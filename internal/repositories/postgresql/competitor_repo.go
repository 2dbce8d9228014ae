// internal/repositories/postgresql/competitor_repo.go
package postgresql

import (
	"context"
	"fmt"

	"github.com/beenruuu/mentha/internal/database"
	"github.com/beenruuu/mentha/internal/models"
	"github.com/beenruuu/mentha/internal/repositories"
	"github.com/google/uuid"
)

type competitorRepo struct {
	db *database.Client
}

func NewCompetitorRepo(db *database.Client) repositories.CompetitorRepository {
	return &competitorRepo{db: db}
}

func (r *competitorRepo) Create(ctx context.Context, competitor *models.Competitor) error {
	query := `
		INSERT INTO competitors (competitor_id, brand_id, name, website, created_at)
		VALUES (:competitor_id, :brand_id, :name, :website, :created_at)`
	if _, err := r.db.DB.NamedExecContext(ctx, query, competitor); err != nil {
		return fmt.Errorf("failed to insert competitor: %w", err)
	}
	return nil
}

func (r *competitorRepo) GetByBrand(ctx context.Context, brandID uuid.UUID) ([]*models.Competitor, error) {
	var competitors []*models.Competitor
	query := `SELECT * FROM competitors WHERE brand_id = $1 AND deleted_at IS NULL ORDER BY created_at`
	if err := r.db.DB.SelectContext(ctx, &competitors, query, brandID); err != nil {
		return nil, fmt.Errorf("failed to get competitors: %w", err)
	}
	return competitors, nil
}

func (r *competitorRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE competitors SET deleted_at = NOW() WHERE competitor_id = $1 AND deleted_at IS NULL`
	if _, err := r.db.DB.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("failed to soft delete competitor: %w", err)
	}
	return nil
}
