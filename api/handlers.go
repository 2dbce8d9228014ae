// api/handlers.go
package api

import (
	"net/http"

	"github.com/beenruuu/mentha/internal/config"
	"github.com/beenruuu/mentha/internal/models"
	"github.com/beenruuu/mentha/services"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/inngest/inngestgo"
)

// Handlers contains all HTTP handlers.
type Handlers struct {
	cfg                  *config.Config
	repos                *services.RepositoryManager
	brandService         services.BrandService
	visibilityService    services.VisibilityService
	exportService        services.ExportService
	schemaService        services.SchemaService
	searchConsoleService services.SearchConsoleService
	ragService           services.RAGService
	inngestClient        inngestgo.Client
}

// NewHandlers creates a new handlers instance.
func NewHandlers(
	cfg *config.Config,
	repos *services.RepositoryManager,
	brandService services.BrandService,
	visibilityService services.VisibilityService,
	exportService services.ExportService,
	schemaService services.SchemaService,
	searchConsoleService services.SearchConsoleService,
	ragService services.RAGService,
	inngestClient inngestgo.Client,
) *Handlers {
	return &Handlers{
		cfg:                  cfg,
		repos:                repos,
		brandService:         brandService,
		visibilityService:    visibilityService,
		exportService:        exportService,
		schemaService:        schemaService,
		searchConsoleService: searchConsoleService,
		ragService:           ragService,
		inngestClient:        inngestClient,
	}
}

// HealthCheck returns the health status of the service.
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "mentha",
	})
}

// loadOwnedBrand resolves the :brandId path param to a brand owned by the
// authenticated user. Brands of other tenants surface as 404, never 403.
func (h *Handlers) loadOwnedBrand(c *gin.Context) (*models.Brand, bool) {
	brandID, err := uuid.Parse(c.Param("brandId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid brand ID"})
		return nil, false
	}

	brand, err := h.repos.BrandRepo.GetByID(c.Request.Context(), brandID)
	if err != nil || brand == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "brand not found"})
		return nil, false
	}

	if brand.UserID != userIDFromContext(c) {
		c.JSON(http.StatusNotFound, gin.H{"error": "brand not found"})
		return nil, false
	}

	return brand, true
}

// loadOwnedBatch resolves the :batchId path param to a batch whose brand
// belongs to the authenticated user.
func (h *Handlers) loadOwnedBatch(c *gin.Context) (*models.AnalysisBatch, *models.Brand, bool) {
	batchID, err := uuid.Parse(c.Param("batchId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid batch ID"})
		return nil, nil, false
	}

	batch, err := h.repos.AnalysisBatchRepo.GetByID(c.Request.Context(), batchID)
	if err != nil || batch == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "analysis not found"})
		return nil, nil, false
	}

	brand, err := h.repos.BrandRepo.GetByID(c.Request.Context(), batch.BrandID)
	if err != nil || brand == nil || brand.UserID != userIDFromContext(c) {
		c.JSON(http.StatusNotFound, gin.H{"error": "analysis not found"})
		return nil, nil, false
	}

	return batch, brand, true
}

// parsePagination reads limit/offset query params with sane bounds.
func parsePagination(c *gin.Context) (int, int) {
	limit := 50
	offset := 0
	if q := c.Query("limit"); q != "" {
		if n, ok := atoiBounded(q, 1, 200); ok {
			limit = n
		}
	}
	if q := c.Query("offset"); q != "" {
		if n, ok := atoiBounded(q, 0, 1<<30); ok {
			offset = n
		}
	}
	return limit, offset
}

func atoiBounded(s string, min, max int) (int, bool) {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
		n = n*10 + int(r-'0')
		if n > max {
			return 0, false
		}
	}
	if n < min {
		return 0, false
	}
	return n, true
}
