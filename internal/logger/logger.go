package logger

import (
	"log/slog"
	"os"
)

// Option configures logger construction.
type Option func(*options)

type options struct {
	level       slog.Level
	development bool
	appName     string
}

// WithLevel sets the minimum log level.
func WithLevel(level slog.Level) Option {
	return func(o *options) {
		o.level = level
	}
}

// WithDevelopment enables human-readable text output tagged with the app name.
// Production default is JSON.
func WithDevelopment(appName string) Option {
	return func(o *options) {
		o.development = true
		o.appName = appName
	}
}

// WithAppName tags every record with the application name.
func WithAppName(appName string) Option {
	return func(o *options) {
		o.appName = appName
	}
}

// New creates a slog.Logger writing to stdout.
func New(opts ...Option) *slog.Logger {
	o := options{level: slog.LevelInfo}
	for _, opt := range opts {
		opt(&o)
	}

	handlerOpts := &slog.HandlerOptions{Level: o.level}

	var handler slog.Handler
	if o.development {
		handler = slog.NewTextHandler(os.Stdout, handlerOpts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, handlerOpts)
	}

	log := slog.New(handler)
	if o.appName != "" {
		log = log.With(slog.String("app", o.appName))
	}
	return log
}
