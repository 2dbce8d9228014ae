// services/schema_service.go
package services

import (
	"context"
	"fmt"
)

const faqPromptLimit = 5

type schemaService struct {
	ragService RAGService
}

// NewSchemaService creates the JSON-LD generator. FAQ answers come from the
// brand's own indexed content so published markup never contradicts the site.
func NewSchemaService(ragService RAGService) SchemaService {
	return &schemaService{ragService: ragService}
}

// GenerateOrganizationSchema builds schema.org Organization markup from the
// brand record.
func (s *schemaService) GenerateOrganizationSchema(ctx context.Context, details *BrandDetails) (map[string]interface{}, error) {
	if details == nil || details.Brand == nil {
		return nil, fmt.Errorf("brand details are required")
	}

	schema := map[string]interface{}{
		"@context": "https://schema.org",
		"@type":    "Organization",
		"name":     details.Brand.Name,
	}

	if details.Brand.Description != nil && *details.Brand.Description != "" {
		schema["description"] = *details.Brand.Description
	}

	if len(details.Websites) > 0 {
		schema["url"] = details.Websites[0]
		if len(details.Websites) > 1 {
			schema["sameAs"] = details.Websites[1:]
		}
	}

	if details.Brand.Industry != nil && *details.Brand.Industry != "" {
		schema["knowsAbout"] = *details.Brand.Industry
	}

	return schema, nil
}

// GenerateFAQSchema builds schema.org FAQPage markup by answering the brand's
// tracked prompts from its indexed content. Prompts that cannot be answered
// from the index are skipped.
func (s *schemaService) GenerateFAQSchema(ctx context.Context, details *BrandDetails) (map[string]interface{}, error) {
	if details == nil || details.Brand == nil {
		return nil, fmt.Errorf("brand details are required")
	}
	if len(details.Prompts) == 0 {
		return nil, fmt.Errorf("brand %s has no tracked prompts", details.Brand.BrandID)
	}

	var entities []map[string]interface{}

	for i, prompt := range details.Prompts {
		if i >= faqPromptLimit {
			break
		}

		result, err := s.ragService.Query(ctx, details.Brand.BrandID, prompt.PromptText, 3)
		if err != nil {
			fmt.Printf("[SchemaService] Warning: could not answer %q from index: %v\n", prompt.PromptText, err)
			continue
		}

		entities = append(entities, map[string]interface{}{
			"@type": "Question",
			"name":  prompt.PromptText,
			"acceptedAnswer": map[string]interface{}{
				"@type": "Answer",
				"text":  result.Answer,
			},
		})
	}

	if len(entities) == 0 {
		return nil, fmt.Errorf("no prompts could be answered from indexed content")
	}

	return map[string]interface{}{
		"@context":   "https://schema.org",
		"@type":      "FAQPage",
		"mainEntity": entities,
	}, nil
}
