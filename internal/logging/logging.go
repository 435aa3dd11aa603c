// Package logging builds the logger shared by the store, writer and scheduler.
//
// The TUI owns the terminal, so log output goes to a file when verbose logging
// is on and is discarded otherwise.
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
)

const flags = log.LstdFlags | log.Lmicroseconds

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Open returns a logger writing to path when verbose is set, and a logger that
// drops everything otherwise. The returned closer must be closed on exit.
func Open(path string, verbose bool) (*log.Logger, io.Closer, error) {
	if !verbose {
		return Discard(), nopCloser{}, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}

	logger := log.New(f, "", flags)
	logger.Printf("verbose logging enabled")
	return logger, f, nil
}

// Discard returns a logger that writes nowhere.
func Discard() *log.Logger {
	return log.New(io.Discard, "", 0)
}
