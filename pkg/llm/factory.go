package llm

import (
	"github.com/harrisonrobin/morrow/pkg/config"
	"github.com/harrisonrobin/morrow/pkg/errs"
)

// New resolves the configured backend variant once and wraps it with the
// transient-failure retry policy.
func New(cfg config.LLMConfig) (Client, error) {
	apiKey := cfg.APIKey()
	if apiKey == "" {
		return nil, errs.Newf(errs.CodeConfigInvalid, "%s environment variable not set", config.APIKeyEnv)
	}

	var client Client
	switch cfg.APIFormat {
	case config.FormatOpenAI:
		client = NewOpenAIClient(cfg.BaseURL, cfg.Model, apiKey)
	case config.FormatAnthropic:
		client = NewAnthropicClient(cfg.BaseURL, cfg.Model, apiKey)
	case config.FormatGemini:
		client = NewGeminiClient(cfg.BaseURL, cfg.Model, apiKey)
	default:
		return nil, errs.Newf(errs.CodeConfigInvalid, "unknown llm.api_format: %q", cfg.APIFormat)
	}
	return WithRetry(client), nil
}
