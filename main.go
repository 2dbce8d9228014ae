// main.go
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/beenruuu/mentha/api"
	"github.com/beenruuu/mentha/internal/config"
	"github.com/beenruuu/mentha/internal/database"
	"github.com/beenruuu/mentha/services"
	"github.com/beenruuu/mentha/workflows"
	"github.com/inngest/inngestgo"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/qdrant/go-client/qdrant"
	"github.com/typesense/typesense-go/v2/typesense"
)

func main() {
	if err := godotenv.Load(); err != nil {
		if err := godotenv.Load("dev.env"); err != nil {
			log.Printf("Note: No .env or dev.env file loaded: %v", err)
		} else {
			log.Printf("Loaded dev.env file for local development")
		}
	} else {
		log.Printf("Loaded .env file")
	}

	cfg := config.Load()

	log.Printf("Environment: %s", cfg.Environment)
	log.Printf("Port: %s", cfg.Port)
	log.Printf("Database Host: %s", cfg.Database.Host)
	log.Printf("Database Name: %s", cfg.Database.Name)

	if cfg.OpenAIAPIKey == "" {
		log.Printf("WARNING: OpenAI API key not loaded!")
	}
	if cfg.APIToken == "" {
		log.Printf("WARNING: API token not set, all API requests will be rejected")
	}

	ctx := context.Background()
	dbClient, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer dbClient.Close()
	log.Printf("Successfully connected to database")

	repoManager := services.NewRepositoryManager(dbClient)
	log.Printf("Repository manager initialized")

	if cfg.Environment == "development" || cfg.Environment == "" {
		os.Unsetenv("INNGEST_SIGNING_KEY")
		cfg.InngestSigningKey = ""
		log.Printf("Running in development mode - signing key verification disabled")
	}

	log.Println("Initializing Qdrant client...")
	qdrantClient, err := qdrant.NewClient(&qdrant.Config{
		Host: cfg.Qdrant.Host,
		Port: cfg.Qdrant.Port,
	})
	if err != nil {
		log.Fatalf("Failed to create Qdrant client: %v", err)
	}

	log.Println("Initializing Typesense client...")
	typesenseClient := typesense.NewClient(
		typesense.WithServer(fmt.Sprintf("http://%s:%d", cfg.Typesense.Host, cfg.Typesense.Port)),
		typesense.WithAPIKey(cfg.Typesense.APIKey),
	)

	// Initialize services with repository manager and proper dependencies
	costService := services.NewCostService()
	embeddingService := services.NewEmbeddingService(cfg, costService)

	ingestionService := services.NewIngestionService(qdrantClient, typesenseClient, embeddingService, cfg)
	if err := ingestionService.EnsureCollections(ctx); err != nil {
		log.Fatalf("Failed to ensure search collections: %v", err)
	}
	log.Printf("Qdrant collection %q and Typesense collection %q are ready", cfg.Qdrant.Collection, cfg.Typesense.Collection)

	ragService := services.NewRAGService(qdrantClient, typesenseClient, embeddingService, cfg)
	hallucinationService := services.NewHallucinationService(cfg, ragService, repoManager)
	extractionService := services.NewExtractionService(cfg)
	brandService := services.NewBrandService(repoManager)
	runnerService := services.NewRunnerService(cfg, repoManager, extractionService, hallucinationService)
	visibilityService := services.NewVisibilityService(repoManager)
	recommendationService := services.NewRecommendationService(cfg, repoManager)
	schemaService := services.NewSchemaService(ragService)
	exportService := services.NewExportService(repoManager)
	searchConsoleService := services.NewSearchConsoleService(cfg)
	firecrawlService := services.NewFirecrawlService(cfg)
	log.Printf("Services initialized")

	client, err := inngestgo.NewClient(
		inngestgo.ClientOpts{
			AppID:    "mentha",
			EventKey: inngestgo.StrPtr(cfg.InngestEventKey),
			Env:      inngestgo.StrPtr(cfg.Environment),
		},
	)
	if err != nil {
		log.Fatalf("Failed to create Inngest client: %v", err)
	}

	log.Printf("Initializing and registering workflows...")

	analysisProcessor := workflows.NewAnalysisProcessor(brandService, runnerService, visibilityService, recommendationService, cfg)
	analysisProcessor.SetClient(client)
	analysisProcessor.ProcessBrandAnalysis()

	scheduledProcessor := workflows.NewScheduledProcessor(brandService)
	scheduledProcessor.SetClient(client)
	scheduledProcessor.DailyBrandProcessor()
	scheduledProcessor.WeeklyLoadAnalyzer()

	crawlProcessor := workflows.NewCrawlProcessor(firecrawlService)
	crawlProcessor.SetClient(client)
	crawlProcessor.CrawlWebsiteWorkflow()

	ingestionProcessor := workflows.NewIngestionProcessor(firecrawlService, ingestionService, repoManager)
	ingestionProcessor.SetClient(client)
	ingestionProcessor.IngestURLWorkflow()
	ingestionProcessor.IngestFoundContentWorkflow()

	log.Printf("All processors initialized and functions registered")

	handlers := api.NewHandlers(
		cfg,
		repoManager,
		brandService,
		visibilityService,
		exportService,
		schemaService,
		searchConsoleService,
		ragService,
		client,
	)
	router := api.NewRouter(cfg, handlers, client.Serve())

	port := cfg.Port
	log.Printf("Starting Mentha service on port %s", port)
	if err := http.ListenAndServe(":"+port, router); err != nil {
		log.Fatal(err)
	}
}
