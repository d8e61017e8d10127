package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	charmlog "github.com/charmbracelet/log"
)

// Logger is a structured key/value logger backed by slog with a
// charmbracelet handler.
type Logger struct {
	*slog.Logger
}

type Options struct {
	Level  string
	Format string // "text" or "json"
	Prefix string
	Output io.Writer
}

// NewLogger returns a text logger writing to stdout at the given level.
func NewLogger(level string) *Logger {
	return New(Options{Level: level})
}

func New(opts Options) *Logger {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}

	formatter := charmlog.TextFormatter
	if strings.EqualFold(opts.Format, "json") {
		formatter = charmlog.JSONFormatter
	}

	handler := charmlog.NewWithOptions(out, charmlog.Options{
		Level:           parseLevel(opts.Level),
		Formatter:       formatter,
		Prefix:          opts.Prefix,
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
	})

	return &Logger{Logger: slog.New(handler)}
}

// Nop discards everything.
func Nop() *Logger {
	return &Logger{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func (l *Logger) With(args ...any) *Logger {
	return &Logger{Logger: l.Logger.With(args...)}
}

func parseLevel(level string) charmlog.Level {
	lvl, err := charmlog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || level == "" {
		return charmlog.InfoLevel
	}
	return lvl
}
