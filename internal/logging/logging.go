package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
)

const prefix = "daylist"

// DebugEnabled returns true if debug mode is enabled via DAYLIST_DEBUG.
func DebugEnabled() bool {
	return os.Getenv("DAYLIST_DEBUG") != ""
}

// Setup routes the standard logger to path. The terminal is owned by the TUI,
// so logs never go to stdout. An empty path discards all log output.
func Setup(path string) (io.Closer, error) {
	if path == "" {
		log.SetOutput(io.Discard)
		return nopCloser{}, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	f, err := tea.LogToFile(path, prefix)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}

// Errorf logs a failure. Failures are always logged.
func Errorf(format string, args ...any) {
	log.Printf("ERROR "+format, args...)
}

// Debugf logs only if debug mode is enabled.
func Debugf(format string, args ...any) {
	if DebugEnabled() {
		log.Printf("DEBUG "+format, args...)
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
