package logging

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// FileOutput tees log output to stdout and a timestamped file in a directory
type FileOutput struct {
	dir  string
	file *os.File
	w    io.Writer
}

// OpenFileOutput creates dir if needed and opens app_<timestamp>.log inside it
func OpenFileOutput(dir string, now time.Time) (*FileOutput, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	name := filepath.Join(dir, fmt.Sprintf("app_%s.log", now.Format("2006-01-02_15-04-05")))
	file, err := os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	return &FileOutput{
		dir:  dir,
		file: file,
		w:    io.MultiWriter(file, os.Stdout),
	}, nil
}

// Write implements io.Writer
func (o *FileOutput) Write(p []byte) (int, error) {
	return o.w.Write(p)
}

// Path returns the file being written
func (o *FileOutput) Path() string {
	return o.file.Name()
}

// Close closes the log file
func (o *FileOutput) Close() error {
	if err := o.file.Close(); err != nil {
		return fmt.Errorf("failed to close log file: %w", err)
	}
	return nil
}

// CleanupOldLogs removes *.log files in the output directory last modified
// before cutoff, skipping the file currently written. It returns the removed paths.
func (o *FileOutput) CleanupOldLogs(cutoff time.Time) ([]string, error) {
	entries, err := os.ReadDir(o.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read log directory: %w", err)
	}

	var removed []string
	var errs []error
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".log") {
			continue
		}

		path := filepath.Join(o.dir, entry.Name())
		if path == o.file.Name() {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		if info.ModTime().Before(cutoff) {
			if err := os.Remove(path); err != nil {
				errs = append(errs, err)
				continue
			}
			removed = append(removed, path)
		}
	}

	return removed, errors.Join(errs...)
}
