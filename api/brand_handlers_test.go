// api/brand_handlers_test.go
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/beenruuu/mentha/internal/config"
	"github.com/beenruuu/mentha/internal/models"
	"github.com/beenruuu/mentha/services"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type stubBrandRepo struct {
	brands map[uuid.UUID]*models.Brand
}

func newStubBrandRepo() *stubBrandRepo {
	return &stubBrandRepo{brands: make(map[uuid.UUID]*models.Brand)}
}

func (r *stubBrandRepo) Create(ctx context.Context, brand *models.Brand) error {
	r.brands[brand.BrandID] = brand
	return nil
}

// GetByID mirrors the Postgres repo contract: a missing or soft-deleted row
// is (nil, nil), not an error.
func (r *stubBrandRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Brand, error) {
	brand, ok := r.brands[id]
	if !ok || brand.DeletedAt != nil {
		return nil, nil
	}
	return brand, nil
}

func (r *stubBrandRepo) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.Brand, error) {
	var out []*models.Brand
	for _, brand := range r.brands {
		if brand.UserID == userID && brand.DeletedAt == nil {
			out = append(out, brand)
		}
	}
	return out, nil
}

func (r *stubBrandRepo) Update(ctx context.Context, brand *models.Brand) error {
	r.brands[brand.BrandID] = brand
	return nil
}

func (r *stubBrandRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	if brand, ok := r.brands[id]; ok {
		now := time.Now()
		brand.DeletedAt = &now
	}
	return nil
}

func (r *stubBrandRepo) GetIDsByScheduledDOW(ctx context.Context, dow int) ([]uuid.UUID, error) {
	return nil, nil
}

type stubWebsiteRepo struct {
	websites []*models.BrandWebsite
}

func (r *stubWebsiteRepo) Create(ctx context.Context, website *models.BrandWebsite) error {
	r.websites = append(r.websites, website)
	return nil
}

func (r *stubWebsiteRepo) GetByBrand(ctx context.Context, brandID uuid.UUID) ([]*models.BrandWebsite, error) {
	var out []*models.BrandWebsite
	for _, website := range r.websites {
		if website.BrandID == brandID {
			out = append(out, website)
		}
	}
	return out, nil
}

func (r *stubWebsiteRepo) Delete(ctx context.Context, id uuid.UUID) error { return nil }

type stubBrandDetailsService struct {
	repo *stubBrandRepo
}

func (s *stubBrandDetailsService) GetBrandDetails(ctx context.Context, brandID string) (*services.BrandDetails, error) {
	id, err := uuid.Parse(brandID)
	if err != nil {
		return nil, err
	}
	brand, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if brand == nil {
		return nil, fmt.Errorf("brand %s not found", brandID)
	}
	return &services.BrandDetails{Brand: brand}, nil
}

func (s *stubBrandDetailsService) GetBrandIDsByScheduledDOW(ctx context.Context, dow int) ([]uuid.UUID, error) {
	return nil, nil
}

func (s *stubBrandDetailsService) GetBrandsScheduledForDate(ctx context.Context, date time.Time) ([]string, error) {
	return nil, nil
}

func newTestServer(t *testing.T) (*gin.Engine, *stubBrandRepo, uuid.UUID) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{APIToken: "secret"}
	brandRepo := newStubBrandRepo()
	repos := &services.RepositoryManager{
		BrandRepo:        brandRepo,
		BrandWebsiteRepo: &stubWebsiteRepo{},
	}
	handlers := NewHandlers(cfg, repos, &stubBrandDetailsService{repo: brandRepo}, nil, nil, nil, nil, nil, nil)

	router := NewRouter(cfg, handlers, nil)
	return router, brandRepo, uuid.New()
}

func authedRequest(method, path string, body []byte, userID uuid.UUID) *http.Request {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer secret")
	req.Header.Set("X-User-ID", userID.String())
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestCreateAndGetBrand(t *testing.T) {
	router, _, userID := newTestServer(t)

	body := []byte(`{"name": "Acme", "industry": "software", "schedule_dow": 2, "websites": ["https://acme.example"]}`)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, authedRequest(http.MethodPost, "/api/v1/brands", body, userID))

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var created models.Brand
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if created.Name != "Acme" {
		t.Errorf("expected name Acme, got %s", created.Name)
	}
	if created.ScheduleDOW != 2 {
		t.Errorf("expected schedule_dow 2, got %d", created.ScheduleDOW)
	}
	if created.UserID != userID {
		t.Errorf("brand not scoped to authenticated user")
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, authedRequest(http.MethodGet, "/api/v1/brands/"+created.BrandID.String(), nil, userID))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
}

func TestCreateBrandInvalidScheduleDOW(t *testing.T) {
	router, _, userID := newTestServer(t)

	body := []byte(`{"name": "Acme", "schedule_dow": 7}`)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, authedRequest(http.MethodPost, "/api/v1/brands", body, userID))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestGetBrandNotFoundReturns404(t *testing.T) {
	router, _, userID := newTestServer(t)

	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
		var body []byte
		if method == http.MethodPut {
			body = []byte(`{"name": "Renamed"}`)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, authedRequest(method, "/api/v1/brands/"+uuid.New().String(), body, userID))
		if w.Code != http.StatusNotFound {
			t.Errorf("%s on unknown brand: expected 404, got %d", method, w.Code)
		}
	}
}

func TestGetBrandOtherTenantReturns404(t *testing.T) {
	router, brandRepo, userID := newTestServer(t)

	otherUser := uuid.New()
	brand := &models.Brand{BrandID: uuid.New(), UserID: otherUser, Name: "Rival"}
	brandRepo.brands[brand.BrandID] = brand

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authedRequest(http.MethodGet, "/api/v1/brands/"+brand.BrandID.String(), nil, userID))

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for other tenant's brand, got %d", w.Code)
	}
}

func TestDeleteBrandSoftDeletes(t *testing.T) {
	router, brandRepo, userID := newTestServer(t)

	brand := &models.Brand{BrandID: uuid.New(), UserID: userID, Name: "Acme"}
	brandRepo.brands[brand.BrandID] = brand

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authedRequest(http.MethodDelete, "/api/v1/brands/"+brand.BrandID.String(), nil, userID))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if brand.DeletedAt == nil {
		t.Error("expected soft delete to set deleted_at")
	}

	// Deleted brands are gone from reads.
	w = httptest.NewRecorder()
	router.ServeHTTP(w, authedRequest(http.MethodGet, "/api/v1/brands/"+brand.BrandID.String(), nil, userID))
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", w.Code)
	}
}

func TestListBrandsScopedToUser(t *testing.T) {
	router, brandRepo, userID := newTestServer(t)

	mine := &models.Brand{BrandID: uuid.New(), UserID: userID, Name: "Mine"}
	brandRepo.brands[mine.BrandID] = mine
	theirs := &models.Brand{BrandID: uuid.New(), UserID: uuid.New(), Name: "Theirs"}
	brandRepo.brands[theirs.BrandID] = theirs

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authedRequest(http.MethodGet, "/api/v1/brands", nil, userID))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp struct {
		Brands []*models.Brand `json:"brands"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	for _, brand := range resp.Brands {
		if brand.UserID != userID {
			t.Errorf("listing leaked brand %s owned by %s", brand.Name, brand.UserID)
		}
	}
}
