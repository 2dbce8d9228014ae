// services/openai_provider_test.go
package services

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/beenruuu/mentha/internal/models"
)

func TestWebSearchLocationNil(t *testing.T) {
	if got := webSearchLocation(nil); got != nil {
		t.Errorf("expected nil user location for nil job location, got %+v", got)
	}
	if got := webSearchLocation(&models.Location{}); got != nil {
		t.Errorf("expected nil user location for empty country, got %+v", got)
	}
}

func TestWebSearchLocationUppercasesCountry(t *testing.T) {
	region := "Bavaria"
	city := "Munich"
	got := webSearchLocation(&models.Location{Country: "de", Region: &region, City: &city})
	if got == nil {
		t.Fatal("expected user location, got nil")
	}
	if got.Country != "DE" {
		t.Errorf("expected country DE, got %s", got.Country)
	}
	if got.Region == nil || *got.Region != "Bavaria" {
		t.Errorf("expected region Bavaria, got %v", got.Region)
	}
	if got.City == nil || *got.City != "Munich" {
		t.Errorf("expected city Munich, got %v", got.City)
	}
}

func TestWebSearchRequestOmitsEmptyLocation(t *testing.T) {
	body := WebSearchRequest{
		Model: "gpt-4.1",
		Tools: []WebSearchTool{{
			Type:         "web_search_preview",
			UserLocation: webSearchLocation(nil),
		}},
		Input: "best crm software",
	}

	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to marshal request: %v", err)
	}
	if strings.Contains(string(data), "user_location") {
		t.Errorf("request for locationless job should omit user_location: %s", data)
	}
}
