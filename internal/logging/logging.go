// Package logging builds the leveled stderr logger shared by the launcher and
// the in-container entrypoint.
package logging

import (
	"io"

	"github.com/charmbracelet/log"
)

// New returns a logger writing to w. Debug output is enabled when verbose is set.
func New(w io.Writer, prefix string, verbose bool) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		Prefix: prefix,
	})
	if verbose {
		logger.SetLevel(log.DebugLevel)
	} else {
		logger.SetLevel(log.InfoLevel)
	}
	return logger
}

// Discard returns a logger that drops everything. Used by tests.
func Discard() *log.Logger {
	return log.New(io.Discard)
}
