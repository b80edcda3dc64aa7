package ai

import (
	"github.com/glossa/glossa/internal/config"
)

// NewGateway returns the client for the configured provider.
func NewGateway(cfg config.Config) Gateway {
	if cfg.LLM.Provider == config.ProviderAnthropic {
		return NewClaudeClient(cfg.Anthropic.APIKey, cfg.Anthropic.Model, cfg.Anthropic.MaxTokens, cfg.Anthropic.BaseURL)
	}
	return NewOpenAIClient(cfg.OpenAI.APIKey, cfg.OpenAI.Model, cfg.OpenAI.BaseURL)
}

// DefaultModel reports the model a gateway uses when a request leaves it empty.
func DefaultModel(cfg config.Config) string {
	if cfg.LLM.Provider == config.ProviderAnthropic {
		return cfg.Anthropic.Model
	}
	return cfg.OpenAI.Model
}
