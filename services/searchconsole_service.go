// services/searchconsole_service.go
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/beenruuu/mentha/internal/config"
)

type searchConsoleService struct {
	baseURL     string
	accessToken string
	httpClient  *http.Client
}

// SearchAnalyticsRequest is the body sent to the Search Console query endpoint.
type SearchAnalyticsRequest struct {
	StartDate  string   `json:"startDate"`
	EndDate    string   `json:"endDate"`
	Dimensions []string `json:"dimensions"`
	RowLimit   int      `json:"rowLimit"`
}

// SearchAnalyticsResponse is the Search Console query result.
type SearchAnalyticsResponse struct {
	Rows []SearchAnalyticsRow `json:"rows"`
}

// SearchAnalyticsRow is one dimension row of search analytics data.
type SearchAnalyticsRow struct {
	Keys        []string `json:"keys"`
	Clicks      float64  `json:"clicks"`
	Impressions float64  `json:"impressions"`
	CTR         float64  `json:"ctr"`
	Position    float64  `json:"position"`
}

func NewSearchConsoleService(cfg *config.Config) SearchConsoleService {
	return &searchConsoleService{
		baseURL:     cfg.SearchConsole.BaseURL,
		accessToken: cfg.SearchConsole.AccessToken,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// GetTopQueries returns the site's top organic queries in the date range,
// ordered by clicks as Search Console returns them.
func (s *searchConsoleService) GetTopQueries(ctx context.Context, siteURL string, startDate, endDate time.Time, limit int) ([]SearchQueryMetrics, error) {
	if s.accessToken == "" {
		return nil, fmt.Errorf("Search Console access token is not configured")
	}
	if limit <= 0 {
		limit = 25
	}

	request := SearchAnalyticsRequest{
		StartDate:  startDate.Format("2006-01-02"),
		EndDate:    endDate.Format("2006-01-02"),
		Dimensions: []string{"query"},
		RowLimit:   limit,
	}

	body, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal search analytics request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/sites/%s/searchAnalytics/query", s.baseURL, url.PathEscape(siteURL))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create search analytics request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+s.accessToken)

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("search analytics request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read search analytics response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search analytics API returned status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var parsed SearchAnalyticsResponse
	if err := json.Unmarshal(bodyBytes, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse search analytics response: %w", err)
	}

	metrics := make([]SearchQueryMetrics, 0, len(parsed.Rows))
	for _, row := range parsed.Rows {
		if len(row.Keys) == 0 {
			continue
		}
		metrics = append(metrics, SearchQueryMetrics{
			Query:       row.Keys[0],
			Clicks:      row.Clicks,
			Impressions: row.Impressions,
			CTR:         row.CTR,
			Position:    row.Position,
		})
	}

	return metrics, nil
}
