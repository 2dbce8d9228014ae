// api/brand_handlers.go
package api

import (
	"log"
	"net/http"
	"time"

	"github.com/beenruuu/mentha/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CreateBrandRequest is the payload for registering a brand.
type CreateBrandRequest struct {
	Name        string   `json:"name" binding:"required"`
	Description *string  `json:"description"`
	Industry    *string  `json:"industry"`
	ScheduleDOW *int     `json:"schedule_dow"`
	Websites    []string `json:"websites"`
}

// UpdateBrandRequest is the payload for updating a brand.
type UpdateBrandRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Industry    *string `json:"industry"`
	ScheduleDOW *int    `json:"schedule_dow"`
}

func (h *Handlers) CreateBrand(c *gin.Context) {
	var req CreateBrandRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	// Without an explicit schedule, spread new brands across the week instead
	// of piling them on Monday.
	scheduleDOW := int(time.Now().UnixNano() % 7)
	if req.ScheduleDOW != nil {
		if *req.ScheduleDOW < 0 || *req.ScheduleDOW > 6 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "schedule_dow must be 0 (Monday) to 6 (Sunday)"})
			return
		}
		scheduleDOW = *req.ScheduleDOW
	}

	now := time.Now()
	brand := &models.Brand{
		BrandID:     uuid.New(),
		UserID:      userIDFromContext(c),
		Name:        req.Name,
		Description: req.Description,
		Industry:    req.Industry,
		ScheduleDOW: scheduleDOW,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := h.repos.BrandRepo.Create(c.Request.Context(), brand); err != nil {
		log.Printf("[API] Failed to create brand: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create brand"})
		return
	}

	for _, website := range req.Websites {
		if err := h.repos.BrandWebsiteRepo.Create(c.Request.Context(), &models.BrandWebsite{
			BrandWebsiteID: uuid.New(),
			BrandID:        brand.BrandID,
			URL:            website,
			CreatedAt:      now,
		}); err != nil {
			log.Printf("[API] Warning: failed to store website %s for brand %s: %v", website, brand.BrandID, err)
		}
	}

	c.JSON(http.StatusCreated, brand)
}

func (h *Handlers) ListBrands(c *gin.Context) {
	limit, offset := parsePagination(c)

	brands, err := h.repos.BrandRepo.ListByUser(c.Request.Context(), userIDFromContext(c), limit, offset)
	if err != nil {
		log.Printf("[API] Failed to list brands: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list brands"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"brands": brands, "limit": limit, "offset": offset})
}

func (h *Handlers) GetBrand(c *gin.Context) {
	brand, ok := h.loadOwnedBrand(c)
	if !ok {
		return
	}

	details, err := h.brandService.GetBrandDetails(c.Request.Context(), brand.BrandID.String())
	if err != nil {
		log.Printf("[API] Failed to load brand details: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load brand details"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"brand":       details.Brand,
		"websites":    details.Websites,
		"engines":     details.Engines,
		"locations":   details.Locations,
		"prompts":     details.Prompts,
		"competitors": details.Competitors,
	})
}

func (h *Handlers) UpdateBrand(c *gin.Context) {
	brand, ok := h.loadOwnedBrand(c)
	if !ok {
		return
	}

	var req UpdateBrandRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if req.Name != nil {
		brand.Name = *req.Name
	}
	if req.Description != nil {
		brand.Description = req.Description
	}
	if req.Industry != nil {
		brand.Industry = req.Industry
	}
	if req.ScheduleDOW != nil {
		if *req.ScheduleDOW < 0 || *req.ScheduleDOW > 6 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "schedule_dow must be 0 (Monday) to 6 (Sunday)"})
			return
		}
		brand.ScheduleDOW = *req.ScheduleDOW
	}
	brand.UpdatedAt = time.Now()

	if err := h.repos.BrandRepo.Update(c.Request.Context(), brand); err != nil {
		log.Printf("[API] Failed to update brand: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update brand"})
		return
	}

	c.JSON(http.StatusOK, brand)
}

func (h *Handlers) DeleteBrand(c *gin.Context) {
	brand, ok := h.loadOwnedBrand(c)
	if !ok {
		return
	}

	if err := h.repos.BrandRepo.SoftDelete(c.Request.Context(), brand.BrandID); err != nil {
		log.Printf("[API] Failed to delete brand: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete brand"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// CreateCompetitorRequest is the payload for adding a competitor.
type CreateCompetitorRequest struct {
	Name    string  `json:"name" binding:"required"`
	Website *string `json:"website"`
}

func (h *Handlers) CreateCompetitor(c *gin.Context) {
	brand, ok := h.loadOwnedBrand(c)
	if !ok {
		return
	}

	var req CreateCompetitorRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	competitor := &models.Competitor{
		CompetitorID: uuid.New(),
		BrandID:      brand.BrandID,
		Name:         req.Name,
		Website:      req.Website,
		CreatedAt:    time.Now(),
	}

	if err := h.repos.CompetitorRepo.Create(c.Request.Context(), competitor); err != nil {
		log.Printf("[API] Failed to create competitor: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create competitor"})
		return
	}

	c.JSON(http.StatusCreated, competitor)
}

func (h *Handlers) ListCompetitors(c *gin.Context) {
	brand, ok := h.loadOwnedBrand(c)
	if !ok {
		return
	}

	competitors, err := h.repos.CompetitorRepo.GetByBrand(c.Request.Context(), brand.BrandID)
	if err != nil {
		log.Printf("[API] Failed to list competitors: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list competitors"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"competitors": competitors})
}

func (h *Handlers) DeleteCompetitor(c *gin.Context) {
	brand, ok := h.loadOwnedBrand(c)
	if !ok {
		return
	}

	competitorID, err := uuid.Parse(c.Param("competitorId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid competitor ID"})
		return
	}

	// Verify the competitor belongs to this brand before deleting
	competitors, err := h.repos.CompetitorRepo.GetByBrand(c.Request.Context(), brand.BrandID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to verify competitor"})
		return
	}
	found := false
	for _, competitor := range competitors {
		if competitor.CompetitorID == competitorID {
			found = true
			break
		}
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "competitor not found"})
		return
	}

	if err := h.repos.CompetitorRepo.SoftDelete(c.Request.Context(), competitorID); err != nil {
		log.Printf("[API] Failed to delete competitor: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete competitor"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// CreatePromptRequest is the payload for adding a tracked prompt.
type CreatePromptRequest struct {
	PromptText string  `json:"prompt_text" binding:"required"`
	Category   *string `json:"category"`
}

func (h *Handlers) CreatePrompt(c *gin.Context) {
	brand, ok := h.loadOwnedBrand(c)
	if !ok {
		return
	}

	var req CreatePromptRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	prompt := &models.TrackedPrompt{
		PromptID:   uuid.New(),
		BrandID:    brand.BrandID,
		PromptText: req.PromptText,
		Category:   req.Category,
		CreatedAt:  time.Now(),
	}

	if err := h.repos.TrackedPromptRepo.Create(c.Request.Context(), prompt); err != nil {
		log.Printf("[API] Failed to create prompt: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create prompt"})
		return
	}

	c.JSON(http.StatusCreated, prompt)
}

func (h *Handlers) ListPrompts(c *gin.Context) {
	brand, ok := h.loadOwnedBrand(c)
	if !ok {
		return
	}

	prompts, err := h.repos.TrackedPromptRepo.GetByBrand(c.Request.Context(), brand.BrandID)
	if err != nil {
		log.Printf("[API] Failed to list prompts: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list prompts"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"prompts": prompts})
}

func (h *Handlers) DeletePrompt(c *gin.Context) {
	brand, ok := h.loadOwnedBrand(c)
	if !ok {
		return
	}

	promptID, err := uuid.Parse(c.Param("promptId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid prompt ID"})
		return
	}

	prompt, err := h.repos.TrackedPromptRepo.GetByID(c.Request.Context(), promptID)
	if err != nil || prompt == nil || prompt.BrandID != brand.BrandID {
		c.JSON(http.StatusNotFound, gin.H{"error": "prompt not found"})
		return
	}

	if err := h.repos.TrackedPromptRepo.SoftDelete(c.Request.Context(), promptID); err != nil {
		log.Printf("[API] Failed to delete prompt: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete prompt"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// CreateEngineRequest is the payload for enabling an engine.
type CreateEngineRequest struct {
	Name      string `json:"name" binding:"required"`
	WebSearch bool   `json:"web_search"`
}

func (h *Handlers) CreateEngine(c *gin.Context) {
	brand, ok := h.loadOwnedBrand(c)
	if !ok {
		return
	}

	var req CreateEngineRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	engine := &models.BrandEngine{
		BrandEngineID: uuid.New(),
		BrandID:       brand.BrandID,
		Name:          req.Name,
		WebSearch:     req.WebSearch,
		CreatedAt:     time.Now(),
	}

	if err := h.repos.BrandEngineRepo.Create(c.Request.Context(), engine); err != nil {
		log.Printf("[API] Failed to create engine: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create engine"})
		return
	}

	c.JSON(http.StatusCreated, engine)
}

func (h *Handlers) ListEngines(c *gin.Context) {
	brand, ok := h.loadOwnedBrand(c)
	if !ok {
		return
	}

	engines, err := h.repos.BrandEngineRepo.GetByBrand(c.Request.Context(), brand.BrandID)
	if err != nil {
		log.Printf("[API] Failed to list engines: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list engines"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"engines": engines})
}

func (h *Handlers) DeleteEngine(c *gin.Context) {
	brand, ok := h.loadOwnedBrand(c)
	if !ok {
		return
	}

	engineID, err := uuid.Parse(c.Param("engineId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid engine ID"})
		return
	}

	engines, err := h.repos.BrandEngineRepo.GetByBrand(c.Request.Context(), brand.BrandID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to verify engine"})
		return
	}
	found := false
	for _, engine := range engines {
		if engine.BrandEngineID == engineID {
			found = true
			break
		}
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "engine not found"})
		return
	}

	if err := h.repos.BrandEngineRepo.Delete(c.Request.Context(), engineID); err != nil {
		log.Printf("[API] Failed to delete engine: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete engine"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// CreateLocationRequest is the payload for adding an analysis location.
type CreateLocationRequest struct {
	CountryCode string  `json:"country_code" binding:"required"`
	RegionName  *string `json:"region_name"`
	City        *string `json:"city"`
}

func (h *Handlers) CreateLocation(c *gin.Context) {
	brand, ok := h.loadOwnedBrand(c)
	if !ok {
		return
	}

	var req CreateLocationRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	location := &models.BrandLocation{
		BrandLocationID: uuid.New(),
		BrandID:         brand.BrandID,
		CountryCode:     req.CountryCode,
		RegionName:      req.RegionName,
		City:            req.City,
		CreatedAt:       time.Now(),
	}

	if err := h.repos.BrandLocationRepo.Create(c.Request.Context(), location); err != nil {
		log.Printf("[API] Failed to create location: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create location"})
		return
	}

	c.JSON(http.StatusCreated, location)
}

func (h *Handlers) ListLocations(c *gin.Context) {
	brand, ok := h.loadOwnedBrand(c)
	if !ok {
		return
	}

	locations, err := h.repos.BrandLocationRepo.GetByBrand(c.Request.Context(), brand.BrandID)
	if err != nil {
		log.Printf("[API] Failed to list locations: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list locations"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"locations": locations})
}
