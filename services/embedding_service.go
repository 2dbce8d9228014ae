// services/embedding_service.go
package services

import (
	"context"
	"fmt"

	"github.com/beenruuu/mentha/internal/config"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const embeddingModel = "text-embedding-3-small"
const embeddingDimensions = 1536

// EmbeddingService turns text chunks into vectors for Qdrant.
type EmbeddingService interface {
	CreateEmbedding(ctx context.Context, chunks []string) ([][]float32, error)
}

type embeddingService struct {
	client      *openai.Client
	costService CostService
}

func NewEmbeddingService(cfg *config.Config, costService CostService) EmbeddingService {
	client := openai.NewClient(option.WithAPIKey(cfg.OpenAIAPIKey))

	return &embeddingService{
		client:      &client,
		costService: costService,
	}
}

func (s *embeddingService) CreateEmbedding(ctx context.Context, chunks []string) ([][]float32, error) {
	if len(chunks) == 0 {
		return [][]float32{}, nil
	}

	response, err := s.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: chunks,
		},
		Model:      openai.EmbeddingModel(embeddingModel),
		Dimensions: openai.Int(embeddingDimensions),
	})
	if err != nil {
		return nil, fmt.Errorf("embedding request failed: %w", err)
	}

	if len(response.Data) != len(chunks) {
		return nil, fmt.Errorf("embedding count mismatch: sent %d chunks, got %d vectors", len(chunks), len(response.Data))
	}

	vectors := make([][]float32, len(response.Data))
	for i, item := range response.Data {
		vector := make([]float32, len(item.Embedding))
		for j, v := range item.Embedding {
			vector[j] = float32(v)
		}
		vectors[i] = vector
	}

	return vectors, nil
}
