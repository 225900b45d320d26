// Package logging configures the application's structured logger. Logs
// go to a JSON file because the TUI owns the terminal.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// New opens {dir}/tickler.log and returns a zerolog logger writing JSON
// records to it. The caller closes the returned file on shutdown. An
// empty dir logs to stderr.
func New(dir, level string) (zerolog.Logger, *os.File, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	if dir == "" {
		logger := zerolog.New(os.Stderr).Level(lvl).With().Timestamp().Logger()
		return logger, nil, nil
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("creating log directory %s: %w", dir, err)
	}

	path := filepath.Join(dir, "tickler.log")
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("opening log file %s: %w", path, err)
	}

	zerolog.TimeFieldFormat = time.RFC3339
	logger := zerolog.New(file).Level(lvl).With().Timestamp().Logger()
	return logger, file, nil
}
