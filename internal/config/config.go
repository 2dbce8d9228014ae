// internal/config/config.go
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
)

type QdrantConfig struct {
	Host       string
	Port       int
	Collection string
}

type TypesenseConfig struct {
	Host       string
	Port       int
	APIKey     string
	Collection string
}

type FirecrawlConfig struct {
	BaseURL string
	APIKey  string
}

type SearchConsoleConfig struct {
	BaseURL     string
	AccessToken string
	SiteURL     string
}

type Config struct {
	Port              string
	Environment       string
	APIToken          string
	InngestEventKey   string
	InngestSigningKey string
	OpenAIAPIKey      string
	AnthropicAPIKey   string
	PerplexityAPIKey  string
	GeminiAPIKey      string
	SlackWebhookURL   string
	DatabaseURL       string
	Database          DatabaseConfig
	Qdrant            QdrantConfig
	Typesense         TypesenseConfig
	Firecrawl         FirecrawlConfig
	SearchConsole     SearchConsoleConfig
}

// DatabaseConfig holds the Postgres (Supabase) connection settings
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int
}

func Load() *Config {
	config := &Config{
		Port:              getEnv("PORT", "8000"),
		Environment:       getEnv("ENVIRONMENT", "development"),
		APIToken:          os.Getenv("API_TOKEN"),
		InngestEventKey:   os.Getenv("INNGEST_EVENT_KEY"),
		InngestSigningKey: os.Getenv("INNGEST_SIGNING_KEY"),
		OpenAIAPIKey:      os.Getenv("OPENAI_API_KEY"),
		AnthropicAPIKey:   os.Getenv("ANTHROPIC_API_KEY"),
		PerplexityAPIKey:  os.Getenv("PERPLEXITY_API_KEY"),
		GeminiAPIKey:      os.Getenv("GEMINI_API_KEY"),
		SlackWebhookURL:   os.Getenv("SLACK_WEBHOOK_URL"),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
	}

	// Parse database configuration
	dbConfig, err := parseDatabaseConfig()
	if err != nil {
		// If DATABASE_URL parsing fails, try individual env vars as fallback
		dbConfig = DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvInt("DB_PORT", 5432),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", ""),
			Name:            getEnv("DB_NAME", "mentha"),
			SSLMode:         getEnv("DB_SSLMODE", "require"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 25),
			ConnMaxLifetime: getEnvInt("DB_CONN_MAX_LIFETIME", 300),
		}
	}
	config.Database = dbConfig

	config.Qdrant = QdrantConfig{
		Host:       getEnv("QDRANT_HOST", "qdrant"),
		Port:       getEnvInt("QDRANT_PORT", 6334),
		Collection: getEnv("QDRANT_COLLECTION", "brand_content"),
	}
	config.Typesense = TypesenseConfig{
		Host:       getEnv("TYPESENSE_HOST", "typesense"),
		Port:       getEnvInt("TYPESENSE_PORT", 8108),
		APIKey:     getEnv("TYPESENSE_API_KEY", "xyz"),
		Collection: getEnv("TYPESENSE_COLLECTION", "content_chunks"),
	}
	config.Firecrawl = FirecrawlConfig{
		BaseURL: getEnv("FIRECRAWL_BASE_URL", "https://api.firecrawl.dev/v0"),
		APIKey:  os.Getenv("FIRECRAWL_API_KEY"),
	}
	config.SearchConsole = SearchConsoleConfig{
		BaseURL:     getEnv("GSC_BASE_URL", "https://searchconsole.googleapis.com/webmasters/v3"),
		AccessToken: os.Getenv("GSC_ACCESS_TOKEN"),
		SiteURL:     os.Getenv("GSC_SITE_URL"),
	}

	return config
}

func parseDatabaseConfig() (DatabaseConfig, error) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return DatabaseConfig{}, fmt.Errorf("DATABASE_URL not set")
	}

	parsedURL, err := url.Parse(dbURL)
	if err != nil {
		return DatabaseConfig{}, fmt.Errorf("invalid DATABASE_URL: %w", err)
	}

	dbName := strings.TrimPrefix(parsedURL.Path, "/")
	if dbName == "" {
		return DatabaseConfig{}, fmt.Errorf("DATABASE_URL has no database name")
	}

	config := DatabaseConfig{
		Host:            parsedURL.Hostname(),
		Port:            5432, // default
		User:            parsedURL.User.Username(),
		Name:            dbName,
		SSLMode:         getEnv("DB_SSLMODE", "require"),
		MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
		MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 25),
		ConnMaxLifetime: getEnvInt("DB_CONN_MAX_LIFETIME", 300),
	}

	if password, ok := parsedURL.User.Password(); ok {
		config.Password = password
	}

	if parsedURL.Port() != "" {
		if port, err := strconv.Atoi(parsedURL.Port()); err == nil {
			config.Port = port
		}
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
