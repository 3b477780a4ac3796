// Package logger builds the structured logger shared by all commands.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Format represents logger output format.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// ParseFormat accepts "text" or "json", case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatJSON:
		return f, nil
	case "":
		return FormatText, nil
	default:
		return "", fmt.Errorf("invalid log format %q: must be %q or %q", s, FormatText, FormatJSON)
	}
}

// Option configures logger creation.
type Option func(*config)

func WithLevel(l slog.Level) Option {
	return func(c *config) { c.level = l }
}

func WithFormat(f Format) Option {
	return func(c *config) { c.format = f }
}

// WithOutput sets the destination. Nil writers are ignored.
func WithOutput(w io.Writer) Option {
	return func(c *config) {
		if w != nil {
			c.output = w
		}
	}
}

// WithAttr adds static attributes to every record.
func WithAttr(attrs ...slog.Attr) Option {
	return func(c *config) {
		c.attrs = append(c.attrs, attrs...)
	}
}

type config struct {
	level  slog.Level
	format Format
	output io.Writer
	attrs  []slog.Attr
}

// New returns a text logger on stderr at warn level unless options say
// otherwise. Progress goes to the console, so the log stays quiet by default.
func New(opts ...Option) *slog.Logger {
	c := &config{
		level:  slog.LevelWarn,
		format: FormatText,
		output: os.Stderr,
	}
	for _, opt := range opts {
		opt(c)
	}

	handlerOpts := &slog.HandlerOptions{Level: c.level}
	var h slog.Handler
	if c.format == FormatJSON {
		h = slog.NewJSONHandler(c.output, handlerOpts)
	} else {
		h = slog.NewTextHandler(c.output, handlerOpts)
	}
	if len(c.attrs) > 0 {
		h = h.WithAttrs(c.attrs)
	}
	return slog.New(h)
}
