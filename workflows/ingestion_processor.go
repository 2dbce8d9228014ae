// workflows/ingestion_processor.go
package workflows

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/beenruuu/mentha/internal/models"
	"github.com/beenruuu/mentha/services"
	"github.com/google/uuid"
	"github.com/inngest/inngestgo"
	"github.com/inngest/inngestgo/step"
)

// WebScrapeRequestEvent triggers scraping and indexing of a single URL.
type WebScrapeRequestEvent struct {
	URL     string `json:"url"`
	BrandID string `json:"brand_id"`
}

// WebContentFoundEvent carries pre-scraped content from the crawler.
type WebContentFoundEvent struct {
	URL      string `json:"url"`
	BrandID  string `json:"brand_id"`
	Markdown string `json:"markdown"`
	Title    string `json:"title"`
}

type IngestionProcessor struct {
	crawlService     services.CrawlService
	ingestionService services.IngestionService
	repos            *services.RepositoryManager
	client           inngestgo.Client
}

func NewIngestionProcessor(
	crawlService services.CrawlService,
	ingestionService services.IngestionService,
	repos *services.RepositoryManager,
) *IngestionProcessor {
	return &IngestionProcessor{
		crawlService:     crawlService,
		ingestionService: ingestionService,
		repos:            repos,
	}
}

func (p *IngestionProcessor) SetClient(client inngestgo.Client) {
	p.client = client
}

// IngestURLWorkflow scrapes a single URL and indexes it.
func (p *IngestionProcessor) IngestURLWorkflow() inngestgo.ServableFunction {
	fn, _ := inngestgo.CreateFunction(
		p.client,
		inngestgo.FunctionOpts{ID: "ingest-scraped-url"},
		inngestgo.EventTrigger("website/scrape.requested", nil),
		func(ctx context.Context, input inngestgo.Input[WebScrapeRequestEvent]) (any, error) {
			urlToScrape := input.Event.Data.URL
			brandID := input.Event.Data.BrandID
			fmt.Printf("[IngestURLWorkflow] Starting full pipeline for URL: %s\n", urlToScrape)

			// Step 1: Scrape the URL to get markdown content.
			scrapeResultRaw, err := step.Run(ctx, "scrape-url", func(ctx context.Context) (interface{}, error) {
				return p.crawlService.ScrapeURL(ctx, urlToScrape)
			})
			if err != nil {
				return nil, fmt.Errorf("step 'scrape-url' failed: %w", err)
			}

			var page services.ScrapedPage
			jsonBytes, err := json.Marshal(scrapeResultRaw)
			if err != nil {
				return nil, fmt.Errorf("failed to marshal scrape result: %w", err)
			}
			if err := json.Unmarshal(jsonBytes, &page); err != nil {
				return nil, fmt.Errorf("failed to unmarshal scraped page: %w", err)
			}

			return p.ingestPage(ctx, brandID, &page)
		},
	)
	return fn
}

// IngestFoundContentWorkflow indexes pre-scraped content from the crawler.
func (p *IngestionProcessor) IngestFoundContentWorkflow() inngestgo.ServableFunction {
	fn, _ := inngestgo.CreateFunction(
		p.client,
		inngestgo.FunctionOpts{ID: "ingest-prefetched-content"},
		inngestgo.EventTrigger("website/content.found", nil),
		func(ctx context.Context, input inngestgo.Input[WebContentFoundEvent]) (any, error) {
			fmt.Printf("[IngestFoundContentWorkflow] Starting ingestion for URL: %s\n", input.Event.Data.URL)

			page := &services.ScrapedPage{
				URL:      input.Event.Data.URL,
				Title:    input.Event.Data.Title,
				Markdown: input.Event.Data.Markdown,
			}
			return p.ingestPage(ctx, input.Event.Data.BrandID, page)
		},
	)
	return fn
}

// ingestPage chunks, embeds and indexes one page, then records its crawl
// status for the brand.
func (p *IngestionProcessor) ingestPage(ctx context.Context, brandID string, page *services.ScrapedPage) (any, error) {
	brandUUID, err := uuid.Parse(brandID)
	if err != nil {
		return nil, fmt.Errorf("invalid brand ID: %w", err)
	}

	if page.Markdown == "" {
		return map[string]interface{}{"status": "completed", "message": "No content to index."}, nil
	}

	// Step 1: Chunk, embed and index the page content.
	chunkCountRaw, err := step.Run(ctx, "index-page-content", func(ctx context.Context) (int, error) {
		return p.ingestionService.IngestPage(ctx, brandUUID, page)
	})
	if err != nil {
		// Record the failure so the crawl page list shows it
		p.recordCrawlPage(ctx, brandUUID, page, 0, "failed")
		return nil, fmt.Errorf("step 'index-page-content' failed: %w", err)
	}
	chunkCount := chunkCountRaw

	// Step 2: Record the indexed page against the brand.
	_, err = step.Run(ctx, "record-crawl-page", func(ctx context.Context) (interface{}, error) {
		if err := p.recordCrawlPage(ctx, brandUUID, page, chunkCount, "indexed"); err != nil {
			return nil, err
		}
		return map[string]interface{}{"url": page.URL, "chunks": chunkCount}, nil
	})
	if err != nil {
		return nil, fmt.Errorf("step 'record-crawl-page' failed: %w", err)
	}

	fmt.Printf("✅ COMPLETED: Ingestion pipeline for URL %s (%d chunks)\n", page.URL, chunkCount)
	return map[string]interface{}{"status": "success", "chunks_indexed": chunkCount}, nil
}

func (p *IngestionProcessor) recordCrawlPage(ctx context.Context, brandID uuid.UUID, page *services.ScrapedPage, chunkCount int, status string) error {
	now := time.Now()
	title := page.Title

	return p.repos.CrawlPageRepo.Upsert(ctx, &models.CrawlPage{
		CrawlPageID: uuid.New(),
		BrandID:     brandID,
		URL:         page.URL,
		Title:       &title,
		ChunkCount:  chunkCount,
		Status:      status,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
}
