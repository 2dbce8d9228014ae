// internal/repositories/postgresql/engine_repo.go
package postgresql

import (
	"context"
	"fmt"

	"github.com/beenruuu/mentha/internal/database"
	"github.com/beenruuu/mentha/internal/models"
	"github.com/beenruuu/mentha/internal/repositories"
	"github.com/google/uuid"
)

type brandEngineRepo struct {
	db *database.Client
}

func NewBrandEngineRepo(db *database.Client) repositories.BrandEngineRepository {
	return &brandEngineRepo{db: db}
}

func (r *brandEngineRepo) Create(ctx context.Context, engine *models.BrandEngine) error {
	query := `
		INSERT INTO brand_engines (brand_engine_id, brand_id, name, web_search, created_at)
		VALUES (:brand_engine_id, :brand_id, :name, :web_search, :created_at)`
	if _, err := r.db.DB.NamedExecContext(ctx, query, engine); err != nil {
		return fmt.Errorf("failed to insert brand engine: %w", err)
	}
	return nil
}

func (r *brandEngineRepo) GetByBrand(ctx context.Context, brandID uuid.UUID) ([]*models.BrandEngine, error) {
	var engines []*models.BrandEngine
	query := `SELECT * FROM brand_engines WHERE brand_id = $1 ORDER BY created_at`
	if err := r.db.DB.SelectContext(ctx, &engines, query, brandID); err != nil {
		return nil, fmt.Errorf("failed to get brand engines: %w", err)
	}
	return engines, nil
}

func (r *brandEngineRepo) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM brand_engines WHERE brand_engine_id = $1`
	if _, err := r.db.DB.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("failed to delete brand engine: %w", err)
	}
	return nil
}

type brandLocationRepo struct {
	db *database.Client
}

func NewBrandLocationRepo(db *database.Client) repositories.BrandLocationRepository {
	return &brandLocationRepo{db: db}
}

func (r *brandLocationRepo) Create(ctx context.Context, location *models.BrandLocation) error {
	query := `
		INSERT INTO brand_locations (brand_location_id, brand_id, country_code, region_name, city, created_at)
		VALUES (:brand_location_id, :brand_id, :country_code, :region_name, :city, :created_at)`
	if _, err := r.db.DB.NamedExecContext(ctx, query, location); err != nil {
		return fmt.Errorf("failed to insert brand location: %w", err)
	}
	return nil
}

func (r *brandLocationRepo) GetByBrand(ctx context.Context, brandID uuid.UUID) ([]*models.BrandLocation, error) {
	var locations []*models.BrandLocation
	query := `SELECT * FROM brand_locations WHERE brand_id = $1 ORDER BY created_at`
	if err := r.db.DB.SelectContext(ctx, &locations, query, brandID); err != nil {
		return nil, fmt.Errorf("failed to get brand locations: %w", err)
	}
	return locations, nil
}
