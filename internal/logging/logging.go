// Package logging builds the charmbracelet/log loggers shared by the server
// and the terminal board.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

// Options configures a logger. Level and Format are the raw LOG_LEVEL and
// LOG_FORMAT values.
type Options struct {
	Level           string
	Format          string
	Prefix          string
	ReportTimestamp bool
}

// New returns a logger writing to stderr.
func New(opts Options) *log.Logger {
	return NewWithWriter(os.Stderr, opts)
}

func NewWithWriter(w io.Writer, opts Options) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Level:           ParseLevel(opts.Level),
		Formatter:       ParseFormatter(opts.Format),
		ReportTimestamp: opts.ReportTimestamp,
		Prefix:          opts.Prefix,
	})
}

// ParseLevel maps a level name onto a log.Level, defaulting to info.
func ParseLevel(level string) log.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return log.DebugLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	case "fatal":
		return log.FatalLevel
	default:
		return log.InfoLevel
	}
}

// ParseFormatter maps text, json or logfmt onto a log.Formatter.
func ParseFormatter(format string) log.Formatter {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json":
		return log.JSONFormatter
	case "logfmt":
		return log.LogfmtFormatter
	default:
		return log.TextFormatter
	}
}

// Discard is a logger for tests and for callers that want silence.
func Discard() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.FatalLevel})
}
