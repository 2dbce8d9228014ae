// services/searchconsole_service_test.go
package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestGetTopQueries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if !strings.Contains(r.URL.Path, "/sites/") || !strings.HasSuffix(r.URL.Path, "/searchAnalytics/query") {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-token" {
			t.Errorf("unexpected Authorization header: %s", auth)
		}

		var req SearchAnalyticsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("failed to decode request body: %v", err)
		}
		if req.StartDate != "2026-08-01" || req.EndDate != "2026-08-28" {
			t.Errorf("unexpected date range: %s to %s", req.StartDate, req.EndDate)
		}
		if len(req.Dimensions) != 1 || req.Dimensions[0] != "query" {
			t.Errorf("unexpected dimensions: %v", req.Dimensions)
		}
		if req.RowLimit != 10 {
			t.Errorf("expected row limit 10, got %d", req.RowLimit)
		}

		json.NewEncoder(w).Encode(SearchAnalyticsResponse{
			Rows: []SearchAnalyticsRow{
				{Keys: []string{"acme pricing"}, Clicks: 120, Impressions: 2400, CTR: 0.05, Position: 3.2},
				{Keys: []string{"acme vs rival"}, Clicks: 80, Impressions: 1600, CTR: 0.05, Position: 5.1},
			},
		})
	}))
	defer server.Close()

	service := &searchConsoleService{
		baseURL:     server.URL,
		accessToken: "test-token",
		httpClient:  server.Client(),
	}

	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)

	metrics, err := service.GetTopQueries(context.Background(), "https://acme.com", start, end, 10)
	if err != nil {
		t.Fatalf("GetTopQueries returned error: %v", err)
	}

	if len(metrics) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(metrics))
	}
	if metrics[0].Query != "acme pricing" {
		t.Errorf("unexpected first query: %s", metrics[0].Query)
	}
	if metrics[0].Clicks != 120 {
		t.Errorf("expected 120 clicks, got %f", metrics[0].Clicks)
	}
	if metrics[1].Position != 5.1 {
		t.Errorf("expected position 5.1, got %f", metrics[1].Position)
	}
}

func TestGetTopQueriesMissingToken(t *testing.T) {
	service := &searchConsoleService{baseURL: "http://unused", httpClient: http.DefaultClient}

	_, err := service.GetTopQueries(context.Background(), "https://acme.com", time.Now(), time.Now(), 10)
	if err == nil {
		t.Fatal("expected error for missing access token")
	}
}
