package generation

import (
	"context"
	"errors"
	"testing"

	"github.com/tmc/langchaingo/llms"
)

// fakeModel streams pieces through the streaming func when one is set.
type fakeModel struct {
	pieces []string
	err    error
	opts   llms.CallOptions
}

func (f *fakeModel) GenerateContent(ctx context.Context, _ []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	for _, o := range options {
		o(&f.opts)
	}
	if f.err != nil {
		return nil, f.err
	}
	full := ""
	for _, p := range f.pieces {
		full += p
		if f.opts.StreamingFunc != nil {
			if err := f.opts.StreamingFunc(ctx, []byte(p)); err != nil {
				return nil, err
			}
		}
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: full}}}, nil
}

func (f *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, f, prompt, options...)
}

func TestLangChainProvider_Streams(t *testing.T) {
	m := &fakeModel{pieces: []string{"ANSWER: a", "b", "c"}}
	p := NewLangChainProvider(m, Sampling{MaxTokens: 32, Temperature: 0.2, TopP: 0.9})
	out, err := p.Generate(context.Background(), "prompt", NewMarkerStop(""))
	if err != nil {
		t.Fatal(err)
	}
	if out != "ANSWER: abc" {
		t.Errorf("got %q", out)
	}
	if m.opts.MaxTokens != 32 || m.opts.TopP != 0.9 {
		t.Errorf("sampling not forwarded: %+v", m.opts)
	}
}

func TestLangChainProvider_StopKeepsDecodedText(t *testing.T) {
	m := &fakeModel{pieces: []string{"ANSWER: done", " [/INST]", " extra"}}
	p := NewLangChainProvider(m, DefaultSampling())
	stop := NewMarkerStop("")
	out, err := p.Generate(context.Background(), "prompt", stop)
	if err != nil {
		t.Fatalf("stopping is not an error: %v", err)
	}
	if out != "ANSWER: done [/INST]" || !stop.Stopped() {
		t.Errorf("got %q", out)
	}
}

func TestLangChainProvider_Error(t *testing.T) {
	boom := errors.New("unreachable")
	p := NewLangChainProvider(&fakeModel{err: boom}, DefaultSampling())
	if _, err := p.Generate(context.Background(), "prompt", NewMarkerStop("")); !errors.Is(err, boom) {
		t.Errorf("error = %v", err)
	}
}
