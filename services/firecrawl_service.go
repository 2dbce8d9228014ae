// services/firecrawl_service.go
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/beenruuu/mentha/internal/config"
)

// FirecrawlScrapeResult defines the structure of a successful scrape response
type FirecrawlScrapeResult struct {
	Success bool `json:"success"`
	Data    struct {
		Content   string `json:"content"` // This is the older field for markdown
		Markdown  string `json:"markdown"` // This is the newer field for markdown
		HTML      string `json:"html"`
		SourceURL string `json:"sourceURL"`
		Title     string `json:"title"`
	} `json:"data"`
}

// FirecrawlCrawlResult is the response of a synchronous crawl request.
type FirecrawlCrawlResult struct {
	Success bool                  `json:"success"`
	Status  string                `json:"status"`
	Total   int                   `json:"total"`
	Data    []FirecrawlPageResult `json:"data"`
}

type FirecrawlPageResult struct {
	Content  string `json:"content"`
	Markdown string `json:"markdown"`
	Metadata struct {
		Title     string `json:"title"`
		SourceURL string `json:"sourceURL"`
	} `json:"metadata"`
}

type firecrawlService struct {
	client *http.Client
	cfg    *config.Config
}

// NewFirecrawlService creates a new CrawlService backed by the Firecrawl API.
func NewFirecrawlService(cfg *config.Config) CrawlService {
	return &firecrawlService{
		client: &http.Client{Timeout: 10 * time.Minute},
		cfg:    cfg,
	}
}

// ScrapeURL calls the Firecrawl /scrape endpoint for a single URL.
func (s *firecrawlService) ScrapeURL(ctx context.Context, urlToScrape string) (*ScrapedPage, error) {
	requestBody, err := json.Marshal(map[string]string{
		"url": urlToScrape,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal firecrawl request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.cfg.Firecrawl.BaseURL+"/scrape", bytes.NewBuffer(requestBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create firecrawl request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.cfg.Firecrawl.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("firecrawl request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("firecrawl returned non-200 status: %s", resp.Status)
	}

	var result FirecrawlScrapeResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode firecrawl response: %w", err)
	}

	// The API sometimes returns markdown in 'content', sometimes in 'markdown'.
	// This makes sure we always get it.
	if result.Data.Markdown == "" && result.Data.Content != "" {
		result.Data.Markdown = result.Data.Content
	}

	return &ScrapedPage{
		URL:      result.Data.SourceURL,
		Title:    result.Data.Title,
		Markdown: result.Data.Markdown,
	}, nil
}

// CrawlSite calls the Firecrawl /crawl endpoint and waits for the result.
func (s *firecrawlService) CrawlSite(ctx context.Context, siteURL string, maxPages int) ([]*ScrapedPage, error) {
	if maxPages <= 0 {
		maxPages = 25
	}

	requestBody, err := json.Marshal(map[string]interface{}{
		"url": siteURL,
		"crawlerOptions": map[string]interface{}{
			"limit": maxPages,
		},
		"pageOptions": map[string]interface{}{
			"onlyMainContent": true,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal firecrawl crawl request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.cfg.Firecrawl.BaseURL+"/crawl", bytes.NewBuffer(requestBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create firecrawl crawl request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.cfg.Firecrawl.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("firecrawl crawl request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("firecrawl crawl returned non-200 status: %s", resp.Status)
	}

	var result FirecrawlCrawlResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode firecrawl crawl response: %w", err)
	}

	pages := make([]*ScrapedPage, 0, len(result.Data))
	for _, page := range result.Data {
		markdown := page.Markdown
		if markdown == "" {
			markdown = page.Content
		}
		if markdown == "" {
			continue
		}
		pages = append(pages, &ScrapedPage{
			URL:      page.Metadata.SourceURL,
			Title:    page.Metadata.Title,
			Markdown: markdown,
		})
	}

	return pages, nil
}
