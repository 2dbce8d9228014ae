package services

import (
	"context"
	"testing"
	"time"

	"github.com/beenruuu/mentha/internal/models"
	"github.com/google/uuid"
)

func strPtr(s string) *string { return &s }

func TestIsPrimaryDomain(t *testing.T) {
	brandDomains := []string{"https://www.acme.com", "acme.io"}

	cases := []struct {
		url     string
		primary bool
	}{
		{"https://acme.com/about", true},
		{"https://blog.acme.com/post", true},
		{"https://www.acme.io/docs", true},
		{"https://notacme.com/page", false},
		{"https://acme.com.evil.com/page", false},
		{"https://example.org", false},
	}

	for _, tc := range cases {
		if got := isPrimaryDomain(tc.url, brandDomains); got != tc.primary {
			t.Errorf("isPrimaryDomain(%q) = %v, want %v", tc.url, got, tc.primary)
		}
	}
}

func TestExtractCitationsFromClaims(t *testing.T) {
	svc := &extractionService{costService: NewCostService()}

	now := time.Now()
	claims := []*models.PromptRunClaim{
		{
			ClaimID:     uuid.New(),
			PromptRunID: uuid.New(),
			ClaimText:   "Acme serves 10,000 clients (https://www.acme.com/customers?utm_source=chat) according to https://news.example.org/acme-report.",
			ClaimOrder:  1,
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		{
			ClaimID:     uuid.New(),
			PromptRunID: uuid.New(),
			ClaimText:   "The market is growing fast.",
			ClaimOrder:  2,
			CreatedAt:   now,
			UpdatedAt:   now,
		},
	}

	citations, err := svc.ExtractCitations(context.Background(), claims, "", []string{"acme.com"})
	if err != nil {
		t.Fatalf("ExtractCitations failed: %v", err)
	}

	if len(citations) != 2 {
		t.Fatalf("expected 2 citations, got %d", len(citations))
	}

	// UTM parameters and www prefix are stripped
	if *citations[0].SourceURL != "https://acme.com/customers" {
		t.Errorf("unexpected first citation URL: %s", *citations[0].SourceURL)
	}
	if citations[0].CitationType != "primary" {
		t.Errorf("expected primary citation, got %s", citations[0].CitationType)
	}
	if citations[1].CitationType != "secondary" {
		t.Errorf("expected secondary citation, got %s", citations[1].CitationType)
	}
	if citations[0].ClaimID != claims[0].ClaimID {
		t.Errorf("citation not linked to its claim")
	}
}

func TestExtractCitationsSkipsImagesAndDuplicates(t *testing.T) {
	svc := &extractionService{costService: NewCostService()}

	claims := []*models.PromptRunClaim{{
		ClaimID:   uuid.New(),
		ClaimText: "See https://acme.com/logo.png and https://acme.com/page and again https://acme.com/page/",
	}}

	citations, err := svc.ExtractCitations(context.Background(), claims, "", []string{"acme.com"})
	if err != nil {
		t.Fatalf("ExtractCitations failed: %v", err)
	}

	if len(citations) != 1 {
		t.Fatalf("expected 1 citation after image and duplicate filtering, got %d", len(citations))
	}
	if *citations[0].SourceURL != "https://acme.com/page" {
		t.Errorf("unexpected citation URL: %s", *citations[0].SourceURL)
	}
}

func TestCalculateMetrics(t *testing.T) {
	svc := &extractionService{costService: NewCostService()}

	rank := 2
	mentions := []*models.PromptRunMention{
		{MentionOrg: "Acme", MentionText: "Acme is a strong option for widgets.", MentionRank: &rank, Sentiment: strPtr("positive"), TargetBrand: true},
		{MentionOrg: "Rival", MentionText: "Rival also competes here.", Sentiment: strPtr("neutral"), TargetBrand: false},
	}

	metrics, err := svc.CalculateMetrics(context.Background(), mentions, "Acme")
	if err != nil {
		t.Fatalf("CalculateMetrics failed: %v", err)
	}

	if !metrics.BrandMentioned {
		t.Error("expected brand to be mentioned")
	}
	if metrics.BrandRank == nil || *metrics.BrandRank != 2 {
		t.Errorf("unexpected rank: %v", metrics.BrandRank)
	}
	if metrics.BrandSentiment == nil || *metrics.BrandSentiment != 1.0 {
		t.Errorf("unexpected sentiment: %v", metrics.BrandSentiment)
	}
	if metrics.ShareOfVoice == nil {
		t.Fatal("expected share of voice to be set")
	}
	if *metrics.ShareOfVoice <= 0 || *metrics.ShareOfVoice >= 1 {
		t.Errorf("share of voice out of range: %f", *metrics.ShareOfVoice)
	}
}

func TestCalculateMetricsNoTargetMention(t *testing.T) {
	svc := &extractionService{costService: NewCostService()}

	mentions := []*models.PromptRunMention{
		{MentionOrg: "Rival", MentionText: "Rival dominates.", TargetBrand: false},
	}

	metrics, err := svc.CalculateMetrics(context.Background(), mentions, "Acme")
	if err != nil {
		t.Fatalf("CalculateMetrics failed: %v", err)
	}

	if metrics.BrandMentioned {
		t.Error("expected brand not mentioned")
	}
	if metrics.ShareOfVoice != nil || metrics.BrandRank != nil || metrics.BrandSentiment != nil {
		t.Error("expected nil metrics when brand is absent")
	}
}

func TestNormalizeSentiment(t *testing.T) {
	cases := map[string]string{
		"Positive": "positive",
		" NEGATIVE ": "negative",
		"neutral":  "neutral",
		"":         "neutral",
		"mixed":    "neutral",
	}
	for in, want := range cases {
		if got := normalizeSentiment(in); got != want {
			t.Errorf("normalizeSentiment(%q) = %q, want %q", in, got, want)
		}
	}
}
