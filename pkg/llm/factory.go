package llm

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/balcao-digital/gestor-engine/pkg/config"
)

// New creates an LLM client for the configured provider.
// Returns LLMClient interface to enable dependency injection of mocks.
func New(cfg config.LLMConfig, logger *zap.Logger) (LLMClient, error) {
	switch cfg.Provider {
	case "openai":
		return NewClient(&Config{
			Endpoint:    cfg.BaseURL,
			Model:       cfg.Model,
			APIKey:      cfg.APIKey,
			Temperature: cfg.Temperature,
		}, logger)
	case "anthropic":
		return NewAnthropicClient(&AnthropicConfig{
			APIKey:      cfg.APIKey,
			Model:       cfg.Model,
			BaseURL:     cfg.BaseURL,
			Temperature: cfg.Temperature,
		}, logger)
	default:
		return nil, fmt.Errorf("unknown llm provider: %q", cfg.Provider)
	}
}
