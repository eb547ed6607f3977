// ABOUTME: Structured leveled logging for the discovery tools
// ABOUTME: Wraps charmbracelet/log with CLI verbosity flags and a quiet default for tests
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

// Options controls logger construction
type Options struct {
	Level   string
	Verbose bool
	Quiet   bool
	Prefix  string
}

// New builds a logger writing to w. Verbose forces debug, Quiet forces warn;
// otherwise Level is parsed and falls back to info.
func New(w io.Writer, opts Options) *log.Logger {
	level := log.InfoLevel
	if opts.Level != "" {
		if parsed, err := log.ParseLevel(strings.ToLower(opts.Level)); err == nil {
			level = parsed
		}
	}
	switch {
	case opts.Verbose:
		level = log.DebugLevel
	case opts.Quiet:
		level = log.WarnLevel
	}

	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          opts.Prefix,
		Level:           level,
	})
}

// Stderr is New writing to standard error, leaving stdout for command output
func Stderr(opts Options) *log.Logger {
	return New(os.Stderr, opts)
}

// Discard returns a logger that drops everything
func Discard() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.FatalLevel})
}
