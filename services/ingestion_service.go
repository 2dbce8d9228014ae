// services/ingestion_service.go
package services

import (
	"context"
	"fmt"

	"github.com/beenruuu/mentha/internal/config"
	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
	"github.com/typesense/typesense-go/v2/typesense"
	"github.com/typesense/typesense-go/v2/typesense/api"
	"github.com/typesense/typesense-go/v2/typesense/api/pointer"
)

type ingestionService struct {
	qdrantClient     *qdrant.Client
	typesenseClient  *typesense.Client
	embeddingService EmbeddingService
	cfg              *config.Config
}

// NewIngestionService creates the service that chunks, embeds and indexes
// crawled pages into Qdrant and Typesense.
func NewIngestionService(
	qdrantClient *qdrant.Client,
	typesenseClient *typesense.Client,
	embeddingService EmbeddingService,
	cfg *config.Config,
) IngestionService {
	return &ingestionService{
		qdrantClient:     qdrantClient,
		typesenseClient:  typesenseClient,
		embeddingService: embeddingService,
		cfg:              cfg,
	}
}

// EnsureCollections creates the Qdrant and Typesense collections if missing.
func (s *ingestionService) EnsureCollections(ctx context.Context) error {
	exists, err := s.qdrantClient.CollectionExists(ctx, s.cfg.Qdrant.Collection)
	if err != nil {
		return fmt.Errorf("failed to check qdrant collection: %w", err)
	}
	if !exists {
		err = s.qdrantClient.CreateCollection(ctx, &qdrant.CreateCollection{
			CollectionName: s.cfg.Qdrant.Collection,
			VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
				Size:     embeddingDimensions,
				Distance: qdrant.Distance_Cosine,
			}),
		})
		if err != nil {
			return fmt.Errorf("failed to create qdrant collection: %w", err)
		}
		fmt.Printf("[IngestionService] Created Qdrant collection %s\n", s.cfg.Qdrant.Collection)
	}

	if _, err := s.typesenseClient.Collection(s.cfg.Typesense.Collection).Retrieve(ctx); err != nil {
		schema := &api.CollectionSchema{
			Name: s.cfg.Typesense.Collection,
			Fields: []api.Field{
				{Name: "content", Type: "string"},
				{Name: "source_page_url", Type: "string"},
				{Name: "page_title", Type: "string"},
				{Name: "brand_id", Type: "string", Facet: pointer.True()},
			},
		}
		if _, err := s.typesenseClient.Collections().Create(ctx, schema); err != nil {
			return fmt.Errorf("failed to create typesense collection: %w", err)
		}
		fmt.Printf("[IngestionService] Created Typesense collection %s\n", s.cfg.Typesense.Collection)
	}

	return nil
}

// IngestPage chunks a scraped page, embeds the chunks and indexes them into
// both stores. Returns the number of chunks indexed.
func (s *ingestionService) IngestPage(ctx context.Context, brandID uuid.UUID, page *ScrapedPage) (int, error) {
	if page == nil || page.Markdown == "" {
		return 0, nil
	}

	chunks := smartChunk(page.Markdown)
	if len(chunks) == 0 {
		return 0, nil
	}

	vectors, err := s.embeddingService.CreateEmbedding(ctx, chunks)
	if err != nil {
		return 0, fmt.Errorf("failed to generate embeddings: %w", err)
	}

	// Upsert to Qdrant
	qdrantPoints := make([]*qdrant.PointStruct, len(chunks))
	for i, chunk := range chunks {
		payload := qdrant.NewValueMap(map[string]any{
			"text":       chunk,
			"source_url": page.URL,
			"page_title": page.Title,
			"brand_id":   brandID.String(),
		})
		qdrantPoints[i] = &qdrant.PointStruct{
			Id:      qdrant.NewID(uuid.New().String()),
			Vectors: qdrant.NewVectors(vectors[i]...),
			Payload: payload,
		}
	}
	waitUpsert := true
	_, err = s.qdrantClient.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.cfg.Qdrant.Collection,
		Points:         qdrantPoints,
		Wait:           &waitUpsert,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to upsert to qdrant: %w", err)
	}

	// Upsert to Typesense
	typesenseDocs := make([]interface{}, len(chunks))
	for i, chunk := range chunks {
		typesenseDocs[i] = map[string]interface{}{
			"id":              uuid.New().String(),
			"content":         chunk,
			"source_page_url": page.URL,
			"page_title":      page.Title,
			"brand_id":        brandID.String(),
		}
	}
	action := "upsert"
	_, err = s.typesenseClient.Collection(s.cfg.Typesense.Collection).Documents().Import(ctx, typesenseDocs, &api.ImportDocumentsParams{Action: &action})
	if err != nil {
		return 0, fmt.Errorf("failed to upsert to typesense: %w", err)
	}

	fmt.Printf("[IngestionService] Indexed %d chunks for %s\n", len(chunks), page.URL)
	return len(chunks), nil
}
