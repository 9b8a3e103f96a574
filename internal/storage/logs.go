// Package storage persists the console output of pipeline steps.
package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

// LogStore writes per-step log files under BaseDir, grouped by run.
type LogStore struct {
	BaseDir string
}

func NewLogStore(baseDir string) *LogStore {
	return &LogStore{BaseDir: baseDir}
}

// SaveStepLog writes the captured output of one step and returns the
// file path. Files sort by step index so a run's directory reads in
// execution order.
func (ls *LogStore) SaveStepLog(runID string, index int, stepName, output string) (string, error) {
	dir := filepath.Join(ls.BaseDir, sanitize(runID))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create log dir: %w", err)
	}

	filename := fmt.Sprintf("%02d_%s.log", index, sanitize(stepName))
	path := filepath.Join(dir, filename)
	if err := os.WriteFile(path, []byte(output), 0o644); err != nil {
		return "", fmt.Errorf("write step log: %w", err)
	}
	return path, nil
}

// RunDir returns the directory holding one run's step logs.
func (ls *LogStore) RunDir(runID string) string {
	return filepath.Join(ls.BaseDir, sanitize(runID))
}

// NewRotatingWriter returns a size-rotated writer for the daemon's own
// structured log.
func NewRotatingWriter(path string) io.WriteCloser {
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    20, // megabytes
		MaxBackups: 5,
		Compress:   true,
	}
}

// sanitize strips characters that are unsafe in filenames.
func sanitize(name string) string {
	clean := make([]rune, 0, len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			clean = append(clean, r)
		default:
			clean = append(clean, '-')
		}
	}
	if len(clean) == 0 {
		return "step"
	}
	return string(clean)
}
