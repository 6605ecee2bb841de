// Package logging persists the streamed console output of a test run.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/acarl005/stripansi"
)

const (
	// RunDirectoryPrefix is the standardized prefix for per-run directories.
	RunDirectoryPrefix = "testrun-"

	// ConsoleLogFilename holds the merged build-tool output of a run.
	ConsoleLogFilename = "console.log"
)

// FileLogger writes the output lines of one run to a per-run directory under
// the configured base directory. Lines are stored ANSI-stripped so the files
// stay grep-able regardless of the build tool's color settings.
type FileLogger struct {
	dir  string
	file *os.File
	mu   sync.Mutex
}

// NewFileLogger creates the run directory and its console log file.
func NewFileLogger(baseDir string, runID string) (*FileLogger, error) {
	if runID == "" {
		return nil, fmt.Errorf("run ID is required")
	}

	dir := filepath.Join(baseDir, RunDirectoryPrefix+runID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create run directory %s: %w", dir, err)
	}

	file, err := os.Create(filepath.Join(dir, ConsoleLogFilename))
	if err != nil {
		return nil, fmt.Errorf("failed to create console log: %w", err)
	}

	return &FileLogger{dir: dir, file: file}, nil
}

// Append writes one output line.
func (l *FileLogger) Append(line string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return fmt.Errorf("file logger is closed")
	}
	_, err := fmt.Fprintln(l.file, stripansi.Strip(line))
	return err
}

// Directory returns the per-run directory path.
func (l *FileLogger) Directory() string {
	return l.dir
}

// Close flushes and closes the console log. Safe to call once.
func (l *FileLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}
