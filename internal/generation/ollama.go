package generation

import (
	"fmt"

	"github.com/tmc/langchaingo/llms/ollama"
	"go.uber.org/zap"
)

const defaultOllamaModel = "stablelm-zephyr:3b"

// NewOllamaProvider returns a provider that streams from an Ollama server
// through langchaingo's ollama client. An empty baseURL falls back to
// OLLAMA_HOST, then to the local default port.
func NewOllamaProvider(baseURL, model string, sampling Sampling, opts ...Option) (*LangChainProvider, error) {
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
	o.logger.Debug("ollama provider ready", zap.String("model", model), zap.String("base_url", baseURL))
	return NewLangChainProvider(llm, sampling), nil
}
