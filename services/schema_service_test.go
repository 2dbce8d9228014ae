// services/schema_service_test.go
package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/beenruuu/mentha/internal/models"
	"github.com/google/uuid"
)

type stubRAGService struct {
	answers map[string]string
}

func (s *stubRAGService) Query(ctx context.Context, brandID uuid.UUID, query string, topK int) (*RAGResult, error) {
	answer, ok := s.answers[query]
	if !ok {
		return nil, fmt.Errorf("no content retrieved for brand %s", brandID)
	}
	return &RAGResult{Answer: answer}, nil
}

func (s *stubRAGService) Retrieve(ctx context.Context, brandID uuid.UUID, query string, topK int) ([]RetrievedChunk, error) {
	return nil, fmt.Errorf("not implemented")
}

func testBrandDetails() *BrandDetails {
	description := "A platform for widgets"
	industry := "Manufacturing"
	return &BrandDetails{
		Brand: &models.Brand{
			BrandID:     uuid.New(),
			Name:        "Acme",
			Description: &description,
			Industry:    &industry,
		},
		Websites: []string{"https://acme.com", "https://acme.io"},
	}
}

func TestGenerateOrganizationSchema(t *testing.T) {
	service := NewSchemaService(&stubRAGService{})

	schema, err := service.GenerateOrganizationSchema(context.Background(), testBrandDetails())
	if err != nil {
		t.Fatalf("GenerateOrganizationSchema returned error: %v", err)
	}

	if schema["@type"] != "Organization" {
		t.Errorf("expected @type Organization, got %v", schema["@type"])
	}
	if schema["name"] != "Acme" {
		t.Errorf("expected name Acme, got %v", schema["name"])
	}
	if schema["url"] != "https://acme.com" {
		t.Errorf("expected url to be the first website, got %v", schema["url"])
	}
	sameAs, ok := schema["sameAs"].([]string)
	if !ok || len(sameAs) != 1 || sameAs[0] != "https://acme.io" {
		t.Errorf("expected sameAs to hold remaining websites, got %v", schema["sameAs"])
	}
	if schema["knowsAbout"] != "Manufacturing" {
		t.Errorf("expected knowsAbout Manufacturing, got %v", schema["knowsAbout"])
	}
}

func TestGenerateOrganizationSchemaNilDetails(t *testing.T) {
	service := NewSchemaService(&stubRAGService{})

	if _, err := service.GenerateOrganizationSchema(context.Background(), nil); err == nil {
		t.Error("expected error for nil details")
	}
}

func TestGenerateFAQSchema(t *testing.T) {
	rag := &stubRAGService{answers: map[string]string{
		"What does Acme cost?": "Plans start at $49 per month.",
	}}
	service := NewSchemaService(rag)

	details := testBrandDetails()
	details.Prompts = []*models.TrackedPrompt{
		{PromptID: uuid.New(), PromptText: "What does Acme cost?"},
		{PromptID: uuid.New(), PromptText: "Is Acme SOC2 compliant?"}, // not answerable
	}

	schema, err := service.GenerateFAQSchema(context.Background(), details)
	if err != nil {
		t.Fatalf("GenerateFAQSchema returned error: %v", err)
	}

	if schema["@type"] != "FAQPage" {
		t.Errorf("expected @type FAQPage, got %v", schema["@type"])
	}

	entities, ok := schema["mainEntity"].([]map[string]interface{})
	if !ok {
		t.Fatalf("expected mainEntity to be a slice, got %T", schema["mainEntity"])
	}
	if len(entities) != 1 {
		t.Fatalf("expected 1 answerable question, got %d", len(entities))
	}
	if entities[0]["name"] != "What does Acme cost?" {
		t.Errorf("unexpected question: %v", entities[0]["name"])
	}
	answer := entities[0]["acceptedAnswer"].(map[string]interface{})
	if answer["text"] != "Plans start at $49 per month." {
		t.Errorf("unexpected answer: %v", answer["text"])
	}
}

func TestGenerateFAQSchemaNoAnswerableQuestions(t *testing.T) {
	service := NewSchemaService(&stubRAGService{})

	details := testBrandDetails()
	details.Prompts = []*models.TrackedPrompt{
		{PromptID: uuid.New(), PromptText: "Unanswerable question?"},
	}

	if _, err := service.GenerateFAQSchema(context.Background(), details); err == nil {
		t.Error("expected error when no prompts are answerable")
	}
}
