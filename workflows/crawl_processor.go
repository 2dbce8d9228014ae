// workflows/crawl_processor.go
package workflows

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/beenruuu/mentha/services"
	"github.com/inngest/inngestgo"
	"github.com/inngest/inngestgo/step"
)

// WebsiteCrawlRequestEvent triggers a full-site crawl for a brand.
type WebsiteCrawlRequestEvent struct {
	URL      string `json:"url"`
	BrandID  string `json:"brand_id"`
	MaxPages int    `json:"max_pages,omitempty"`
}

type CrawlProcessor struct {
	crawlService services.CrawlService
	client       inngestgo.Client
}

func NewCrawlProcessor(crawlService services.CrawlService) *CrawlProcessor {
	return &CrawlProcessor{
		crawlService: crawlService,
	}
}

func (p *CrawlProcessor) SetClient(client inngestgo.Client) {
	p.client = client
}

// CrawlWebsiteWorkflow crawls a brand site and fans out one ingestion event
// per page found.
func (p *CrawlProcessor) CrawlWebsiteWorkflow() inngestgo.ServableFunction {
	fn, _ := inngestgo.CreateFunction(
		p.client,
		inngestgo.FunctionOpts{
			ID:      "crawl-full-website",
			Name:    "Crawl Full Website and Index All Pages",
			Retries: inngestgo.IntPtr(2), // Crawls can be long, fewer retries
		},
		inngestgo.EventTrigger("website/crawl.requested", nil),
		func(ctx context.Context, input inngestgo.Input[WebsiteCrawlRequestEvent]) (any, error) {
			urlToCrawl := input.Event.Data.URL
			brandID := input.Event.Data.BrandID
			maxPages := input.Event.Data.MaxPages
			fmt.Printf("[CrawlWebsiteWorkflow] Starting crawl for URL: %s\n", urlToCrawl)

			// Step 1: Crawl the site for markdown pages.
			crawlResultRaw, err := step.Run(ctx, "crawl-site", func(ctx context.Context) (interface{}, error) {
				return p.crawlService.CrawlSite(ctx, urlToCrawl, maxPages)
			})
			if err != nil {
				return nil, fmt.Errorf("step 'crawl-site' failed: %w", err)
			}

			var pages []*services.ScrapedPage
			jsonBytes, err := json.Marshal(crawlResultRaw)
			if err != nil {
				return nil, fmt.Errorf("failed to marshal crawl result: %w", err)
			}
			if err := json.Unmarshal(jsonBytes, &pages); err != nil {
				return nil, fmt.Errorf("failed to unmarshal crawled pages: %w", err)
			}

			if len(pages) == 0 {
				return map[string]interface{}{"status": "completed", "message": "Crawl finished with no pages found."}, nil
			}

			// Step 2: Send an event for EACH page to be indexed individually.
			_, err = step.Run(ctx, "send-page-ingestion-events", func(ctx context.Context) (interface{}, error) {
				fmt.Printf("[CrawlWebsiteWorkflow] Found %d pages. Sending events to trigger ingestion.\n", len(pages))

				events := make([]any, 0, len(pages))
				for _, page := range pages {
					events = append(events, inngestgo.Event{
						Name: "website/content.found",
						Data: map[string]interface{}{
							"brand_id": brandID,
							"url":      page.URL,
							"title":    page.Title,
							"markdown": page.Markdown,
						},
					})
				}
				return p.client.SendMany(ctx, events)
			})
			if err != nil {
				return nil, fmt.Errorf("step 'send-page-ingestion-events' failed: %w", err)
			}

			return map[string]interface{}{"status": "success", "pages_found": len(pages)}, nil
		},
	)
	return fn
}
