package embedding

import (
	"fmt"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/ollama"
	"go.uber.org/zap"
)

const defaultOllamaModel = "all-minilm"

// NewOllamaEmbedder returns an embedder for model served by Ollama, using
// langchaingo's ollama client (one /api/embeddings request per text). An
// empty baseURL falls back to OLLAMA_HOST, then to the local default port.
// Vectors whose length differs from dimensions are rejected.
func NewOllamaEmbedder(baseURL, model string, dimensions int, opts ...Option) (*LangChainEmbedder, error) {
	o := buildOptions(opts)
	if model == "" {
		model = defaultOllamaModel
	}
	ollamaOpts := []ollama.Option{ollama.WithModel(model), ollama.WithHTTPClient(o.client)}
	if baseURL != "" {
		ollamaOpts = append(ollamaOpts, ollama.WithServerURL(baseURL))
	}
	llm, err := ollama.New(ollamaOpts...)
	if err != nil {
		return nil, fmt.Errorf("create ollama client: %w", err)
	}
	inner, err := embeddings.NewEmbedder(llm)
	if err != nil {
		return nil, fmt.Errorf("create embedder: %w", err)
	}
	o.logger.Debug("ollama embedder ready", zap.String("model", model), zap.Int("dimensions", dimensions))
	return NewLangChainEmbedder(inner, dimensions), nil
}
