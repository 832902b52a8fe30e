package embedding

import (
	"net/http"
	"time"

	"go.uber.org/zap"
)

type options struct {
	client *http.Client
	logger *zap.Logger
}

// Option configures HTTP-backed embedders.
type Option func(*options)

// WithHTTPClient sets the client used for provider calls.
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
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.client == nil {
		o.client = &http.Client{Timeout: 60 * time.Second}
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	return o
}
