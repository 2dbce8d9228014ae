// services/rag_service.go
package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/beenruuu/mentha/internal/config"
	"github.com/google/uuid"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/qdrant/go-client/qdrant"
	"github.com/typesense/typesense-go/v2/typesense"
	"github.com/typesense/typesense-go/v2/typesense/api"
	"github.com/typesense/typesense-go/v2/typesense/api/pointer"
)

type ragService struct {
	qdrantClient     *qdrant.Client
	typesenseClient  *typesense.Client
	embeddingService EmbeddingService
	openAIClient     *openai.Client
	costService      CostService
	cfg              *config.Config
}

// NewRAGService creates the hybrid retrieval service used by the answer
// simulator and the hallucination check.
func NewRAGService(
	qdrantClient *qdrant.Client,
	typesenseClient *typesense.Client,
	embeddingService EmbeddingService,
	cfg *config.Config,
) RAGService {
	client := openai.NewClient(option.WithAPIKey(cfg.OpenAIAPIKey))

	return &ragService{
		qdrantClient:     qdrantClient,
		typesenseClient:  typesenseClient,
		embeddingService: embeddingService,
		openAIClient:     &client,
		costService:      NewCostService(),
		cfg:              cfg,
	}
}

// Retrieve runs vector search and keyword search for the brand's content and
// merges the results, vector hits first.
func (s *ragService) Retrieve(ctx context.Context, brandID uuid.UUID, query string, topK int) ([]RetrievedChunk, error) {
	if topK <= 0 {
		topK = 5
	}

	var chunks []RetrievedChunk
	seen := make(map[string]bool)

	// Vector search in Qdrant
	vectorChunks, err := s.retrieveVector(ctx, brandID, query, topK)
	if err != nil {
		fmt.Printf("[RAGService] Warning: vector retrieval failed: %v\n", err)
	} else {
		for _, chunk := range vectorChunks {
			if !seen[chunk.Content] {
				chunks = append(chunks, chunk)
				seen[chunk.Content] = true
			}
		}
	}

	// Keyword search in Typesense
	keywordChunks, err := s.retrieveKeyword(ctx, brandID, query, topK)
	if err != nil {
		fmt.Printf("[RAGService] Warning: keyword retrieval failed: %v\n", err)
	} else {
		for _, chunk := range keywordChunks {
			if !seen[chunk.Content] {
				chunks = append(chunks, chunk)
				seen[chunk.Content] = true
			}
		}
	}

	if len(chunks) == 0 {
		return nil, fmt.Errorf("no content retrieved for brand %s", brandID)
	}

	sort.SliceStable(chunks, func(i, j int) bool {
		return chunks[i].Score > chunks[j].Score
	})
	if len(chunks) > topK {
		chunks = chunks[:topK]
	}

	return chunks, nil
}

func (s *ragService) retrieveVector(ctx context.Context, brandID uuid.UUID, query string, topK int) ([]RetrievedChunk, error) {
	vectors, err := s.embeddingService.CreateEmbedding(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("empty query embedding")
	}

	limit := uint64(topK)
	points, err := s.qdrantClient.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.cfg.Qdrant.Collection,
		Query:          qdrant.NewQuery(vectors[0]...),
		Filter: &qdrant.Filter{
			Must: []*qdrant.Condition{
				qdrant.NewMatch("brand_id", brandID.String()),
			},
		},
		Limit:       &limit,
		WithPayload: qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant query failed: %w", err)
	}

	var chunks []RetrievedChunk
	for _, point := range points {
		payload := point.Payload
		chunk := RetrievedChunk{
			ChunkID:   point.Id.GetUuid(),
			Score:     float64(point.Score),
			Retriever: "vector",
		}
		if v, ok := payload["text"]; ok {
			chunk.Content = v.GetStringValue()
		}
		if v, ok := payload["source_url"]; ok {
			chunk.URL = v.GetStringValue()
		}
		if v, ok := payload["page_title"]; ok {
			chunk.Title = v.GetStringValue()
		}
		if chunk.Content != "" {
			chunks = append(chunks, chunk)
		}
	}

	return chunks, nil
}

func (s *ragService) retrieveKeyword(ctx context.Context, brandID uuid.UUID, query string, topK int) ([]RetrievedChunk, error) {
	result, err := s.typesenseClient.Collection(s.cfg.Typesense.Collection).Documents().Search(ctx, &api.SearchCollectionParams{
		Q:        pointer.String(query),
		QueryBy:  pointer.String("content,page_title"),
		FilterBy: pointer.String("brand_id:=" + brandID.String()),
		PerPage:  pointer.Int(topK),
	})
	if err != nil {
		return nil, fmt.Errorf("typesense search failed: %w", err)
	}

	var chunks []RetrievedChunk
	if result.Hits == nil {
		return chunks, nil
	}

	for _, hit := range *result.Hits {
		if hit.Document == nil {
			continue
		}
		doc := *hit.Document
		chunk := RetrievedChunk{Retriever: "keyword"}
		if v, ok := doc["id"].(string); ok {
			chunk.ChunkID = v
		}
		if v, ok := doc["content"].(string); ok {
			chunk.Content = v
		}
		if v, ok := doc["source_page_url"].(string); ok {
			chunk.URL = v
		}
		if v, ok := doc["page_title"].(string); ok {
			chunk.Title = v
		}
		// Keyword scores live on a different scale than cosine similarity.
		// Normalize into (0,1) so merged ordering stays sane.
		if hit.TextMatch != nil {
			chunk.Score = float64(*hit.TextMatch) / (float64(*hit.TextMatch) + 1e9)
		}
		if chunk.Content != "" {
			chunks = append(chunks, chunk)
		}
	}

	return chunks, nil
}

// Query retrieves the brand's own content and asks the model to answer from
// it alone, simulating what a grounded AI engine would say about the brand.
func (s *ragService) Query(ctx context.Context, brandID uuid.UUID, query string, topK int) (*RAGResult, error) {
	chunks, err := s.Retrieve(ctx, brandID, query, topK)
	if err != nil {
		return nil, err
	}

	var contextParts []string
	for i, chunk := range chunks {
		contextParts = append(contextParts, fmt.Sprintf("[%d] %s (%s)\n%s", i+1, chunk.Title, chunk.URL, chunk.Content))
	}

	prompt := fmt.Sprintf(`Answer the question using ONLY the context below. If the context does not contain the answer, say so. Cite sources by their [number].

## CONTEXT
%s

## QUESTION
%s`, strings.Join(contextParts, "\n\n"), query)

	model := openai.ChatModelGPT4_1
	chatResponse, err := s.openAIClient.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage("You are a retrieval-grounded assistant. Never use knowledge outside the provided context."),
			openai.UserMessage(prompt),
		},
		Model:       model,
		Temperature: openai.Float(0),
	})
	if err != nil {
		return nil, fmt.Errorf("grounded answer failed: %w", err)
	}

	if len(chatResponse.Choices) == 0 {
		return nil, fmt.Errorf("no response choices returned")
	}

	cost := s.costService.CalculateCost("openai", string(model), int(chatResponse.Usage.PromptTokens), int(chatResponse.Usage.CompletionTokens), false)

	return &RAGResult{
		Answer:    chatResponse.Choices[0].Message.Content,
		Chunks:    chunks,
		TotalCost: cost,
	}, nil
}
