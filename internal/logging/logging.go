// Package logging builds the zap logger shared by the CLI and the TUI.
// The interactive UI owns the terminal, so logs go to a file.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options selects where and how verbosely to log.
type Options struct {
	Path    string // empty disables logging
	Level   string
	Verbose bool // forces debug
}

// New returns a production-style JSON logger writing to opt.Path.
func New(opt Options) (*zap.Logger, error) {
	if strings.TrimSpace(opt.Path) == "" {
		return zap.NewNop(), nil
	}
	if err := os.MkdirAll(filepath.Dir(opt.Path), 0o700); err != nil {
		return nil, fmt.Errorf("log dir: %w", err)
	}

	level, err := ParseLevel(opt.Level)
	if err != nil {
		return nil, err
	}
	if opt.Verbose {
		level = zapcore.DebugLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.OutputPaths = []string{opt.Path}
	cfg.ErrorOutputPaths = []string{opt.Path}
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}

// ParseLevel maps a config string onto a zap level; empty means info.
func ParseLevel(s string) (zapcore.Level, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return zapcore.InfoLevel, nil
	}
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return l, fmt.Errorf("log level %q: %w", s, err)
	}
	return l, nil
}
