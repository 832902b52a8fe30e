package generation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
)

var errStopRequested = errors.New("stop condition reached")

// LangChainProvider generates with any langchaingo llms.Model, streaming
// pieces through the stop condition.
type LangChainProvider struct {
	model    llms.Model
	sampling Sampling
}

// NewLangChainProvider wraps model.
func NewLangChainProvider(model llms.Model, sampling Sampling) *LangChainProvider {
	return &LangChainProvider{model: model, sampling: sampling}
}

// Generate returns the decoded text. When the stop condition fires the call
// is cancelled and the text decoded so far is returned.
func (p *LangChainProvider) Generate(ctx context.Context, prompt string, stop StopCondition) (out string, err error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	// Some clients dereference a missing message when a stream ends without
	// any line, e.g. an empty error response from a proxy.
	defer func() {
		if r := recover(); r != nil {
			out, err = "", fmt.Errorf("model call failed: %v", r)
		}
	}()

	var decoded strings.Builder
	callOpts := []llms.CallOption{
		llms.WithTemperature(p.sampling.Temperature),
		llms.WithStreamingFunc(func(_ context.Context, chunk []byte) error {
			decoded.Write(chunk)
			if stop.ShouldStop(decoded.String()) {
				cancel()
				return errStopRequested
			}
			return nil
		}),
	}
	if p.sampling.MaxTokens > 0 {
		callOpts = append(callOpts, llms.WithMaxTokens(p.sampling.MaxTokens))
	}
	if p.sampling.TopP > 0 {
		callOpts = append(callOpts, llms.WithTopP(p.sampling.TopP))
	}

	completion, err := llms.GenerateFromSinglePrompt(ctx, p.model, prompt, callOpts...)
	if stop.Stopped() {
		return decoded.String(), nil
	}
	if err != nil {
		return "", err
	}
	if decoded.Len() == 0 {
		// Models without streaming support return the whole completion at once.
		return completion, nil
	}
	return decoded.String(), nil
}
