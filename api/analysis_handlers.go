// api/analysis_handlers.go
package api

import (
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/inngest/inngestgo"
)

// TriggerAnalysis publishes a brand.analyze event and returns immediately.
// The analysis itself runs asynchronously in the workflow engine.
func (h *Handlers) TriggerAnalysis(c *gin.Context) {
	brand, ok := h.loadOwnedBrand(c)
	if !ok {
		return
	}

	if h.inngestClient == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "workflow engine is not configured"})
		return
	}

	_, err := h.inngestClient.Send(c.Request.Context(), inngestgo.Event{
		Name: "brand.analyze",
		Data: map[string]interface{}{
			"brand_id":     brand.BrandID.String(),
			"triggered_by": "manual_api",
			"user_id":      userIDFromContext(c).String(),
		},
	})
	if err != nil {
		log.Printf("[API] Failed to send analysis event for brand %s: %v", brand.BrandID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to trigger analysis"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"status":   "triggered",
		"brand_id": brand.BrandID,
	})
}

func (h *Handlers) ListAnalyses(c *gin.Context) {
	brand, ok := h.loadOwnedBrand(c)
	if !ok {
		return
	}

	limit := 20
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}

	batches, err := h.repos.AnalysisBatchRepo.GetByBrand(c.Request.Context(), brand.BrandID, limit)
	if err != nil {
		log.Printf("[API] Failed to list analyses: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list analyses"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"analyses": batches})
}

// GetAnalysisReport returns the full visibility report for one batch. Completed
// batches are rebuilt from stored runs so the response always reflects the
// latest extraction data.
func (h *Handlers) GetAnalysisReport(c *gin.Context) {
	batch, brand, ok := h.loadOwnedBatch(c)
	if !ok {
		return
	}

	// The report window matches the batch day plus trailing context for the
	// per-prompt trend queries.
	endDate := batch.CreatedAt.Add(24 * time.Hour)
	startDate := batch.CreatedAt.AddDate(0, 0, -7)

	report, err := h.visibilityService.BuildReport(c.Request.Context(), brand.BrandID, batch.BatchID, startDate, endDate)
	if err != nil {
		log.Printf("[API] Failed to build report for batch %s: %v", batch.BatchID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build report"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"batch":  batch,
		"report": report,
	})
}

func (h *Handlers) ListRecommendations(c *gin.Context) {
	brand, ok := h.loadOwnedBrand(c)
	if !ok {
		return
	}

	limit := 50
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 200 {
			limit = parsed
		}
	}

	recommendations, err := h.repos.RecommendationRepo.GetByBrand(c.Request.Context(), brand.BrandID, limit)
	if err != nil {
		log.Printf("[API] Failed to list recommendations: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list recommendations"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"recommendations": recommendations})
}

func (h *Handlers) ExportAnalysisRuns(c *gin.Context) {
	batch, _, ok := h.loadOwnedBatch(c)
	if !ok {
		return
	}

	data, err := h.exportService.ExportRuns(c.Request.Context(), batch.BatchID)
	if err != nil {
		log.Printf("[API] Failed to export runs for batch %s: %v", batch.BatchID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to export runs"})
		return
	}

	filename := fmt.Sprintf("runs-%s.csv", batch.BatchID)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "text/csv", data)
}

func (h *Handlers) ExportAnalysisMentions(c *gin.Context) {
	batch, _, ok := h.loadOwnedBatch(c)
	if !ok {
		return
	}

	data, err := h.exportService.ExportMentions(c.Request.Context(), batch.BatchID)
	if err != nil {
		log.Printf("[API] Failed to export mentions for batch %s: %v", batch.BatchID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to export mentions"})
		return
	}

	filename := fmt.Sprintf("mentions-%s.csv", batch.BatchID)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "text/csv", data)
}
