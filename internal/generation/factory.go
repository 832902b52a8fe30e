package generation

import (
	"fmt"
	"os"

	"github.com/tmc/langchaingo/llms/openai"

	"github.com/hyperjump/kotae/internal/config"
)

// NewProvider builds the provider selected by cfg.Provider.
func NewProvider(cfg config.GenerationConfig, opts ...Option) (Provider, error) {
	sampling := Sampling{MaxTokens: cfg.MaxTokens, Temperature: cfg.Temperature, TopP: cfg.TopP}
	switch cfg.Provider {
	case "ollama", "langchain-ollama", "":
		p, err := NewOllamaProvider(cfg.BaseURL, cfg.Model, sampling, opts...)
		if err != nil {
			return nil, err
		}
		return p, nil
	case "openai":
		openaiOpts := []openai.Option{
			openai.WithModel(cfg.Model),
			openai.WithToken(os.Getenv(cfg.APIKeyEnv)),
		}
		if cfg.BaseURL != "" {
			openaiOpts = append(openaiOpts, openai.WithBaseURL(cfg.BaseURL))
		}
		llm, err := openai.New(openaiOpts...)
		if err != nil {
			return nil, fmt.Errorf("create openai client: %w", err)
		}
		return NewLangChainProvider(llm, sampling), nil
	case "extractive":
		return NewExtractiveProvider(), nil
	default:
		return nil, fmt.Errorf("unknown generation provider %q", cfg.Provider)
	}
}
