// Package logging builds the leveled console logger shared by the CLI and the store.
package logging

import (
	"io"

	"github.com/charmbracelet/log"
)

// Prefix is printed before every log line.
const Prefix = "triage"

// Options controls the logger level.
type Options struct {
	// Debug enables debug-level output.
	Debug bool

	// Quiet suppresses everything below error level. Debug wins over Quiet.
	Quiet bool
}

// Level returns the log level selected by the options.
func (o Options) Level() log.Level {
	switch {
	case o.Debug:
		return log.DebugLevel
	case o.Quiet:
		return log.ErrorLevel
	}
	return log.InfoLevel
}

// New creates a text logger writing to w.
func New(w io.Writer, opts Options) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Level:           opts.Level(),
		Formatter:       log.TextFormatter,
		ReportTimestamp: false,
		Prefix:          Prefix,
	})
}

// Discard returns a logger that drops all output.
func Discard() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.FatalLevel})
}
