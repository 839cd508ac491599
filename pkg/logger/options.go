package logger

import "io"

// Supported output formats.
const (
	FormatJSON = "json"
	FormatText = "text"
)

type options struct {
	writer  io.Writer
	format  string
	service string
}

// Option applies a configuration option to Init.
type Option func(*options)

// WithWriter sets the destination of log records.
func WithWriter(w io.Writer) Option {
	return func(o *options) {
		if w != nil {
			o.writer = w
		}
	}
}

// WithFormat selects "json" or "text" output.
func WithFormat(format string) Option {
	return func(o *options) {
		if format != "" {
			o.format = format
		}
	}
}

// WithService attaches a "service" field to every record.
func WithService(name string) Option {
	return func(o *options) {
		o.service = name
	}
}
