// services/brand_service.go
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type brandService struct {
	repos *RepositoryManager
}

func NewBrandService(repos *RepositoryManager) BrandService {
	return &brandService{repos: repos}
}

// GetBrandDetails loads everything the analysis pipeline needs about a brand
// in one shot.
func (s *brandService) GetBrandDetails(ctx context.Context, brandID string) (*BrandDetails, error) {
	id, err := uuid.Parse(brandID)
	if err != nil {
		return nil, fmt.Errorf("invalid brand ID %q: %w", brandID, err)
	}

	brand, err := s.repos.BrandRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get brand %s: %w", brandID, err)
	}
	if brand == nil {
		return nil, fmt.Errorf("brand %s not found", brandID)
	}

	engines, err := s.repos.BrandEngineRepo.GetByBrand(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get engines for brand %s: %w", brandID, err)
	}

	locations, err := s.repos.BrandLocationRepo.GetByBrand(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get locations for brand %s: %w", brandID, err)
	}

	prompts, err := s.repos.TrackedPromptRepo.GetByBrand(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get prompts for brand %s: %w", brandID, err)
	}

	competitors, err := s.repos.CompetitorRepo.GetByBrand(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get competitors for brand %s: %w", brandID, err)
	}

	websites, err := s.repos.BrandWebsiteRepo.GetByBrand(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get websites for brand %s: %w", brandID, err)
	}

	urls := make([]string, 0, len(websites))
	for _, website := range websites {
		urls = append(urls, website.URL)
	}

	return &BrandDetails{
		Brand:       brand,
		Engines:     engines,
		Locations:   locations,
		Prompts:     prompts,
		Competitors: competitors,
		Websites:    urls,
	}, nil
}

// GetBrandIDsByScheduledDOW returns active brands scheduled for the given day
// of week (0=Monday .. 6=Sunday).
func (s *brandService) GetBrandIDsByScheduledDOW(ctx context.Context, dow int) ([]uuid.UUID, error) {
	if dow < 0 || dow > 6 {
		return nil, fmt.Errorf("day of week %d out of range", dow)
	}
	return s.repos.BrandRepo.GetIDsByScheduledDOW(ctx, dow)
}

// GetBrandsScheduledForDate resolves the date to the platform's Monday-based
// day of week and returns the matching brand IDs as strings for event payloads.
func (s *brandService) GetBrandsScheduledForDate(ctx context.Context, date time.Time) ([]string, error) {
	// time.Weekday has Sunday=0; the schedule uses Monday=0.
	dow := (int(date.Weekday()) + 6) % 7

	ids, err := s.repos.BrandRepo.GetIDsByScheduledDOW(ctx, dow)
	if err != nil {
		return nil, fmt.Errorf("failed to get brands for dow %d: %w", dow, err)
	}

	result := make([]string, 0, len(ids))
	for _, id := range ids {
		result = append(result, id.String())
	}

	fmt.Printf("[BrandService] %d brands scheduled for %s (dow %d)\n", len(result), date.Format("2006-01-02"), dow)
	return result, nil
}
