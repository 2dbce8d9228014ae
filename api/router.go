// api/router.go
package api

import (
	"net/http"

	"github.com/beenruuu/mentha/internal/config"
	"github.com/gin-gonic/gin"
)

// NewRouter wires all HTTP routes. The inngestHandler serves the workflow
// engine's function registry and must stay outside the auth middleware so the
// Inngest server can reach it.
func NewRouter(cfg *config.Config, handlers *Handlers, inngestHandler http.Handler) *gin.Engine {
	router := gin.Default()

	router.GET("/health", handlers.HealthCheck)
	if inngestHandler != nil {
		router.Any("/api/inngest", gin.WrapH(inngestHandler))
	}

	v1 := router.Group("/api/v1")
	v1.Use(AuthMiddleware(cfg))
	{
		brands := v1.Group("/brands")
		{
			brands.POST("", handlers.CreateBrand)
			brands.GET("", handlers.ListBrands)
			brands.GET("/:brandId", handlers.GetBrand)
			brands.PUT("/:brandId", handlers.UpdateBrand)
			brands.DELETE("/:brandId", handlers.DeleteBrand)

			brands.POST("/:brandId/competitors", handlers.CreateCompetitor)
			brands.GET("/:brandId/competitors", handlers.ListCompetitors)
			brands.DELETE("/:brandId/competitors/:competitorId", handlers.DeleteCompetitor)

			brands.POST("/:brandId/prompts", handlers.CreatePrompt)
			brands.GET("/:brandId/prompts", handlers.ListPrompts)
			brands.DELETE("/:brandId/prompts/:promptId", handlers.DeletePrompt)

			brands.POST("/:brandId/engines", handlers.CreateEngine)
			brands.GET("/:brandId/engines", handlers.ListEngines)
			brands.DELETE("/:brandId/engines/:engineId", handlers.DeleteEngine)

			brands.POST("/:brandId/locations", handlers.CreateLocation)
			brands.GET("/:brandId/locations", handlers.ListLocations)

			brands.POST("/:brandId/analyses", handlers.TriggerAnalysis)
			brands.GET("/:brandId/analyses", handlers.ListAnalyses)
			brands.GET("/:brandId/recommendations", handlers.ListRecommendations)

			brands.POST("/:brandId/crawl", handlers.TriggerCrawl)
			brands.GET("/:brandId/crawl/pages", handlers.ListCrawlPages)

			brands.GET("/:brandId/schema/organization", handlers.GetOrganizationSchema)
			brands.GET("/:brandId/schema/faq", handlers.GetFAQSchema)
			brands.GET("/:brandId/search-console", handlers.GetSearchConsoleStats)
			brands.POST("/:brandId/query", handlers.QueryBrandContent)
		}

		analyses := v1.Group("/analyses")
		{
			analyses.GET("/:batchId/report", handlers.GetAnalysisReport)
			analyses.GET("/:batchId/export/runs", handlers.ExportAnalysisRuns)
			analyses.GET("/:batchId/export/mentions", handlers.ExportAnalysisMentions)
		}
	}

	return router
}
