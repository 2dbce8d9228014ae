// services/provider_factory.go
package services

import (
	"fmt"
	"strings"

	"github.com/beenruuu/mentha/internal/config"
)

// GetProviderForEngine returns the AI provider matching an engine name.
func GetProviderForEngine(cfg *config.Config, engineName string, costService CostService) (AIProvider, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	engineLower := strings.ToLower(engineName)

	if strings.Contains(engineLower, "gpt") || strings.Contains(engineLower, "4.1") {
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OpenAI API key is empty in config")
		}
		return NewOpenAIProvider(cfg, engineName, costService), nil
	}

	if strings.Contains(engineLower, "claude") || strings.Contains(engineLower, "sonnet") || strings.Contains(engineLower, "opus") || strings.Contains(engineLower, "haiku") {
		if cfg.AnthropicAPIKey == "" {
			return nil, fmt.Errorf("Anthropic API key is empty in config")
		}
		return NewAnthropicProvider(cfg, engineName, costService), nil
	}

	if strings.Contains(engineLower, "sonar") || strings.Contains(engineLower, "perplexity") {
		if cfg.PerplexityAPIKey == "" {
			return nil, fmt.Errorf("Perplexity API key is empty in config")
		}
		return NewPerplexityProvider(cfg, engineName, costService), nil
	}

	if strings.Contains(engineLower, "gemini") || strings.Contains(engineLower, "flash") {
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("Gemini API key is empty in config")
		}
		return NewGeminiProvider(cfg, engineName, costService), nil
	}

	return nil, fmt.Errorf("unsupported engine: %s", engineName)
}
