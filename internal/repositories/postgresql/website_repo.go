// internal/repositories/postgresql/website_repo.go
package postgresql

import (
	"context"
	"fmt"

	"github.com/beenruuu/mentha/internal/database"
	"github.com/beenruuu/mentha/internal/models"
	"github.com/beenruuu/mentha/internal/repositories"
	"github.com/google/uuid"
)

type brandWebsiteRepo struct {
	db *database.Client
}

func NewBrandWebsiteRepo(db *database.Client) repositories.BrandWebsiteRepository {
	return &brandWebsiteRepo{db: db}
}

func (r *brandWebsiteRepo) Create(ctx context.Context, website *models.BrandWebsite) error {
	query := `
		INSERT INTO brand_websites (brand_website_id, brand_id, url, created_at)
		VALUES (:brand_website_id, :brand_id, :url, :created_at)`
	if _, err := r.db.DB.NamedExecContext(ctx, query, website); err != nil {
		return fmt.Errorf("failed to insert brand website: %w", err)
	}
	return nil
}

func (r *brandWebsiteRepo) GetByBrand(ctx context.Context, brandID uuid.UUID) ([]*models.BrandWebsite, error) {
	var websites []*models.BrandWebsite
	query := `SELECT * FROM brand_websites WHERE brand_id = $1 ORDER BY created_at`
	if err := r.db.DB.SelectContext(ctx, &websites, query, brandID); err != nil {
		return nil, fmt.Errorf("failed to get brand websites: %w", err)
	}
	return websites, nil
}

func (r *brandWebsiteRepo) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM brand_websites WHERE brand_website_id = $1`
	if _, err := r.db.DB.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("failed to delete brand website: %w", err)
	}
	return nil
}
