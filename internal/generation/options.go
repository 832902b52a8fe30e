package generation

import (
	"net/http"

	"go.uber.org/zap"
)

type options struct {
	stopMarker string
	client     *http.Client
	logger     *zap.Logger
}

// Option configures a Generator or a provider.
type Option func(*options)

// WithStopMarker sets the end-of-turn marker used for stopping and clean-up.
func WithStopMarker(marker string) Option {
	return func(o *options) {
		o.stopMarker = marker
	}
}

// WithHTTPClient sets the client used by HTTP providers.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		o.client = c
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

func buildOptions(opts []Option) options {
	o := options{stopMarker: DefaultStopMarker}
	for _, opt := range opts {
		opt(&o)
	}
	if o.stopMarker == "" {
		o.stopMarker = DefaultStopMarker
	}
	if o.client == nil {
		// No timeout: generation is bounded by the caller's context.
		o.client = &http.Client{}
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	return o
}

// Sampling holds decoding parameters forwarded to providers.
type Sampling struct {
	MaxTokens   int
	Temperature float64
	TopP        float64
}

// DefaultSampling returns 256 new tokens, temperature 0.2 and top-p 0.9.
func DefaultSampling() Sampling {
	return Sampling{MaxTokens: 256, Temperature: 0.2, TopP: 0.9}
}
