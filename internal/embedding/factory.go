package embedding

import (
	"fmt"
	"os"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/hyperjump/kotae/internal/config"
)

// New builds the embedder selected by cfg.Provider, wrapped for batching and caching.
func New(cfg config.EmbeddingConfig, opts ...Option) (Embedder, error) {
	base, err := newProvider(cfg, opts)
	if err != nil {
		return nil, err
	}
	var e Embedder = base
	if cfg.BatchSize > 0 {
		e = NewBatched(e, cfg.BatchSize)
	}
	if cfg.CacheSize > 0 {
		e = NewCached(e, cfg.CacheSize)
	}
	return e, nil
}

func newProvider(cfg config.EmbeddingConfig, opts []Option) (Embedder, error) {
	switch cfg.Provider {
	case "mock":
		return NewMockEmbedder(cfg.Dimensions), nil
	case "ollama", "langchain-ollama", "":
		e, err := NewOllamaEmbedder(cfg.BaseURL, cfg.Model, cfg.Dimensions, opts...)
		if err != nil {
			return nil, err
		}
		return e, nil
	case "openai":
		openaiOpts := []openai.Option{
			openai.WithEmbeddingModel(cfg.Model),
			openai.WithToken(os.Getenv(cfg.APIKeyEnv)),
		}
		if cfg.BaseURL != "" {
			openaiOpts = append(openaiOpts, openai.WithBaseURL(cfg.BaseURL))
		}
		llm, err := openai.New(openaiOpts...)
		if err != nil {
			return nil, fmt.Errorf("create openai client: %w", err)
		}
		return newLangChain(llm, cfg.Dimensions)
	case "onnx":
		e, err := NewONNXEmbedder(cfg.ModelPath, cfg.Dimensions, cfg.MaxTokens)
		if err != nil {
			return nil, err
		}
		return e, nil
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Provider)
	}
}

func newLangChain(client embeddings.EmbedderClient, dimensions int) (Embedder, error) {
	e, err := embeddings.NewEmbedder(client)
	if err != nil {
		return nil, fmt.Errorf("create embedder: %w", err)
	}
	return NewLangChainEmbedder(e, dimensions), nil
}
