// api/content_handlers.go
package api

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/inngest/inngestgo"
)

// TriggerCrawl publishes a crawl event for each of the brand's websites. The
// crawl and indexing run asynchronously in the workflow engine.
func (h *Handlers) TriggerCrawl(c *gin.Context) {
	brand, ok := h.loadOwnedBrand(c)
	if !ok {
		return
	}

	if h.inngestClient == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "workflow engine is not configured"})
		return
	}

	websites, err := h.repos.BrandWebsiteRepo.GetByBrand(c.Request.Context(), brand.BrandID)
	if err != nil {
		log.Printf("[API] Failed to load websites for brand %s: %v", brand.BrandID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load brand websites"})
		return
	}
	if len(websites) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "brand has no websites to crawl"})
		return
	}

	maxPages := 50
	if raw := c.Query("max_pages"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 500 {
			maxPages = parsed
		}
	}

	events := make([]any, 0, len(websites))
	for _, website := range websites {
		events = append(events, inngestgo.Event{
			Name: "website/crawl.requested",
			Data: map[string]interface{}{
				"url":       website.URL,
				"brand_id":  brand.BrandID.String(),
				"max_pages": maxPages,
			},
		})
	}

	if _, err := h.inngestClient.SendMany(c.Request.Context(), events); err != nil {
		log.Printf("[API] Failed to send crawl events for brand %s: %v", brand.BrandID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to trigger crawl"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"status":    "triggered",
		"brand_id":  brand.BrandID,
		"websites":  len(websites),
		"max_pages": maxPages,
	})
}

func (h *Handlers) ListCrawlPages(c *gin.Context) {
	brand, ok := h.loadOwnedBrand(c)
	if !ok {
		return
	}

	pages, err := h.repos.CrawlPageRepo.GetByBrand(c.Request.Context(), brand.BrandID)
	if err != nil {
		log.Printf("[API] Failed to list crawl pages: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list crawl pages"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"pages": pages})
}

func (h *Handlers) GetOrganizationSchema(c *gin.Context) {
	brand, ok := h.loadOwnedBrand(c)
	if !ok {
		return
	}

	details, err := h.brandService.GetBrandDetails(c.Request.Context(), brand.BrandID.String())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load brand details"})
		return
	}

	schema, err := h.schemaService.GenerateOrganizationSchema(c.Request.Context(), details)
	if err != nil {
		log.Printf("[API] Failed to generate organization schema: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate schema"})
		return
	}

	c.JSON(http.StatusOK, schema)
}

func (h *Handlers) GetFAQSchema(c *gin.Context) {
	brand, ok := h.loadOwnedBrand(c)
	if !ok {
		return
	}

	details, err := h.brandService.GetBrandDetails(c.Request.Context(), brand.BrandID.String())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load brand details"})
		return
	}

	schema, err := h.schemaService.GenerateFAQSchema(c.Request.Context(), details)
	if err != nil {
		log.Printf("[API] Failed to generate FAQ schema: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate schema"})
		return
	}

	c.JSON(http.StatusOK, schema)
}

// GetSearchConsoleStats returns top organic queries for one of the brand's
// sites over the last 28 days.
func (h *Handlers) GetSearchConsoleStats(c *gin.Context) {
	brand, ok := h.loadOwnedBrand(c)
	if !ok {
		return
	}

	siteURL := c.Query("site_url")
	if siteURL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "site_url query parameter is required"})
		return
	}

	// Only sites registered on the brand may be queried.
	websites, err := h.repos.BrandWebsiteRepo.GetByBrand(c.Request.Context(), brand.BrandID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load brand websites"})
		return
	}
	owned := false
	for _, website := range websites {
		if website.URL == siteURL {
			owned = true
			break
		}
	}
	if !owned {
		c.JSON(http.StatusNotFound, gin.H{"error": "site not found for brand"})
		return
	}

	limit := 25
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}

	endDate := time.Now()
	startDate := endDate.AddDate(0, 0, -28)

	queries, err := h.searchConsoleService.GetTopQueries(c.Request.Context(), siteURL, startDate, endDate, limit)
	if err != nil {
		log.Printf("[API] Failed to fetch search console stats: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch search console stats"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"site_url":   siteURL,
		"start_date": startDate.Format("2006-01-02"),
		"end_date":   endDate.Format("2006-01-02"),
		"queries":    queries,
	})
}

// RAGQueryRequest is the payload for querying a brand's indexed content.
type RAGQueryRequest struct {
	Query string `json:"query" binding:"required"`
	TopK  int    `json:"top_k"`
}

func (h *Handlers) QueryBrandContent(c *gin.Context) {
	brand, ok := h.loadOwnedBrand(c)
	if !ok {
		return
	}

	var req RAGQueryRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.TopK <= 0 || req.TopK > 20 {
		req.TopK = 5
	}

	result, err := h.ragService.Query(c.Request.Context(), brand.BrandID, req.Query, req.TopK)
	if err != nil {
		log.Printf("[API] RAG query failed for brand %s: %v", brand.BrandID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to answer query"})
		return
	}

	c.JSON(http.StatusOK, result)
}
