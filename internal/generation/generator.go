// Package generation produces grounded answers from retrieved chunks.
package generation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/kotae/internal/models"
)

// ErrGeneration is returned when a provider fails. It is distinct from a refusal.
var ErrGeneration = errors.New("answer generation failed")

// Provider decodes a completion for prompt, consulting stop after every
// decoded piece with the full text decoded so far.
type Provider interface {
	Generate(ctx context.Context, prompt string, stop StopCondition) (string, error)
}

// Generator turns a query and its retrieval context into an Answer.
type Generator struct {
	provider Provider
	opts     options
}

// NewGenerator returns a generator backed by provider.
func NewGenerator(provider Provider, opts ...Option) *Generator {
	return &Generator{provider: provider, opts: buildOptions(opts)}
}

// Generate answers query from rc. An empty context refuses without calling
// the provider; a provider error is wrapped in ErrGeneration.
func (g *Generator) Generate(ctx context.Context, query string, rc models.RetrievalContext) (models.Answer, error) {
	if len(rc) == 0 {
		return models.Answer{Text: RefusalSentinel, Citations: []string{}, Refused: true}, nil
	}
	citations := Citations(rc)
	prompt := BuildPrompt(query, rc)

	start := time.Now()
	raw, err := g.provider.Generate(ctx, prompt, NewMarkerStop(g.opts.stopMarker))
	if err != nil {
		return models.Answer{}, fmt.Errorf("%w: %w", ErrGeneration, err)
	}
	g.opts.logger.Debug("generated answer",
		zap.Int("sources", len(rc)),
		zap.Int("raw_chars", len(raw)),
		zap.Duration("elapsed", time.Since(start)),
	)

	text := ExtractAnswer(raw, g.opts.stopMarker)
	if IsRefusal(text) {
		return models.Answer{Text: RefusalSentinel, Citations: citations, Refused: true}, nil
	}
	return models.Answer{Text: text, Citations: citations}, nil
}
