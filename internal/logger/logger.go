// Package logger builds the slog.Logger used by the CLI.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Config holds the logger configuration.
type Config struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
	Output string `mapstructure:"output" yaml:"output"`
}

// Default logs warnings and above as text on stderr, so review output on
// stdout stays clean.
func Default() Config {
	return Config{Level: "warn", Format: "text", Output: "stderr"}
}

// ParseLevel accepts debug, info, warn or error in any case.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q", s)
	}
	return level, nil
}

// NewLogger initializes a slog logger from cfg. A nil output selects the
// destination named by cfg.Output: stdout, stderr, or a file path. The
// returned closer releases an opened file and is never nil.
func NewLogger(cfg Config, output io.Writer) (*slog.Logger, func() error) {
	closer := func() error { return nil }

	if output == nil {
		switch cfg.Output {
		case "stdout":
			output = os.Stdout
		case "", "stderr":
			output = os.Stderr
		default:
			file, err := os.OpenFile(cfg.Output, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
				output = os.Stderr
			} else {
				output = file
				closer = file.Close
			}
		}
	}

	level, err := ParseLevel(cfg.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch cfg.Format {
	case "json":
		handler = slog.NewJSONHandler(output, opts)
	default:
		handler = slog.NewTextHandler(output, opts)
	}
	return slog.New(handler), closer
}
