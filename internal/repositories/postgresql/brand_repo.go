// internal/repositories/postgresql/brand_repo.go
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

type brandRepo struct {
	db *database.Client
}

func NewBrandRepo(db *database.Client) repositories.BrandRepository {
	return &brandRepo{db: db}
}

func (r *brandRepo) Create(ctx context.Context, brand *models.Brand) error {
	query := `
		INSERT INTO brands (brand_id, user_id, name, description, industry, schedule_dow, created_at, updated_at)
		VALUES (:brand_id, :user_id, :name, :description, :industry, :schedule_dow, :created_at, :updated_at)`
	if _, err := r.db.DB.NamedExecContext(ctx, query, brand); err != nil {
		return fmt.Errorf("failed to insert brand: %w", err)
	}
	return nil
}

func (r *brandRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Brand, error) {
	var brand models.Brand
	query := `SELECT * FROM brands WHERE brand_id = $1 AND deleted_at IS NULL`
	if err := r.db.DB.GetContext(ctx, &brand, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get brand: %w", err)
	}
	return &brand, nil
}

func (r *brandRepo) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.Brand, error) {
	var brands []*models.Brand
	query := `
		SELECT * FROM brands
		WHERE user_id = $1 AND deleted_at IS NULL
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`
	if err := r.db.DB.SelectContext(ctx, &brands, query, userID, limit, offset); err != nil {
		return nil, fmt.Errorf("failed to list brands: %w", err)
	}
	return brands, nil
}

func (r *brandRepo) Update(ctx context.Context, brand *models.Brand) error {
	query := `
		UPDATE brands
		SET name = :name, description = :description, industry = :industry,
		    schedule_dow = :schedule_dow, updated_at = :updated_at
		WHERE brand_id = :brand_id AND deleted_at IS NULL`
	if _, err := r.db.DB.NamedExecContext(ctx, query, brand); err != nil {
		return fmt.Errorf("failed to update brand: %w", err)
	}
	return nil
}

func (r *brandRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE brands SET deleted_at = NOW(), updated_at = NOW() WHERE brand_id = $1 AND deleted_at IS NULL`
	if _, err := r.db.DB.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("failed to soft delete brand: %w", err)
	}
	return nil
}

func (r *brandRepo) GetIDsByScheduledDOW(ctx context.Context, dow int) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	query := `SELECT brand_id FROM brands WHERE schedule_dow = $1 AND deleted_at IS NULL`
	if err := r.db.DB.SelectContext(ctx, &ids, query, dow); err != nil {
		return nil, fmt.Errorf("failed to get scheduled brands: %w", err)
	}
	return ids, nil
}
