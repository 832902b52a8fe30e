package generation

import (
	"context"
	"regexp"
	"strings"
	"sync"
)

// ScriptedProvider replays fixed pieces as if decoded by a model.
type ScriptedProvider struct {
	pieces []string
	err    error

	mu      sync.Mutex
	prompts []string
}

// NewScriptedProvider returns a provider that emits pieces in order.
func NewScriptedProvider(pieces ...string) *ScriptedProvider {
	return &ScriptedProvider{pieces: pieces}
}

// NewFailingProvider returns a provider whose every call fails with err.
func NewFailingProvider(err error) *ScriptedProvider {
	return &ScriptedProvider{err: err}
}

// Generate emits pieces until the script ends or stop fires.
func (p *ScriptedProvider) Generate(ctx context.Context, prompt string, stop StopCondition) (string, error) {
	p.mu.Lock()
	p.prompts = append(p.prompts, prompt)
	p.mu.Unlock()
	if p.err != nil {
		return "", p.err
	}
	var decoded strings.Builder
	for _, piece := range p.pieces {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		decoded.WriteString(piece)
		if stop.ShouldStop(decoded.String()) {
			break
		}
	}
	return decoded.String(), nil
}

// Prompts returns every prompt received so far.
func (p *ScriptedProvider) Prompts() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.prompts...)
}

var firstSource = regexp.MustCompile(`(?s)\[Source 1\]\n(.*?)\n\n`)

// ExtractiveProvider answers with the text of the top source, for running
// without a model.
type ExtractiveProvider struct{}

// NewExtractiveProvider returns an ExtractiveProvider.
func NewExtractiveProvider() *ExtractiveProvider {
	return &ExtractiveProvider{}
}

// Generate decodes "ANSWER: <first source> [Source 1]" word by word until stop
// fires. Without a first source it returns the refusal sentinel.
func (p *ExtractiveProvider) Generate(ctx context.Context, prompt string, stop StopCondition) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	m := firstSource.FindStringSubmatch(prompt)
	if m == nil {
		return answerMarker + " " + RefusalSentinel, nil
	}
	pieces := append([]string{answerMarker}, strings.Fields(m[1])...)
	pieces = append(pieces, "[Source 1]")
	var decoded strings.Builder
	for i, piece := range pieces {
		if i > 0 {
			decoded.WriteByte(' ')
		}
		decoded.WriteString(piece)
		if stop.ShouldStop(decoded.String()) {
			break
		}
	}
	return decoded.String(), nil
}
