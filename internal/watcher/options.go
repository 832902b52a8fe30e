package watcher

import (
	"time"

	"go.uber.org/zap"
)

const defaultDebounce = 400 * time.Millisecond

type options struct {
	extensions []string
	recursive  bool
	debounce   time.Duration
	logger     *zap.Logger
}

// Option configures a Watcher.
type Option func(*options)

// WithExtensions restricts callbacks to files with these extensions (empty = all).
func WithExtensions(exts []string) Option {
	return func(o *options) {
		o.extensions = exts
	}
}

// WithRecursive controls whether subdirectories are watched.
func WithRecursive(recursive bool) Option {
	return func(o *options) {
		o.recursive = recursive
	}
}

// WithDebounce sets how long a file must be quiet before it is ingested.
func WithDebounce(d time.Duration) Option {
	return func(o *options) {
		o.debounce = d
	}
}

// WithLogger sets a logger for watch events.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

func buildOptions(opts []Option) options {
	o := options{recursive: true, debounce: defaultDebounce}
	for _, opt := range opts {
		opt(&o)
	}
	if o.debounce <= 0 {
		o.debounce = defaultDebounce
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	return o
}
