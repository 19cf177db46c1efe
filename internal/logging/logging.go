// Package logging maps the generator verbosity levels onto zap loggers.
package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Verbosity gates diagnostic output. It never changes generator behaviour.
type Verbosity int

const (
	Silent Verbosity = iota // No diagnostics.
	Normal                  // Lifecycle messages and the final summary.
	Debug                   // Per-iteration detail.
)

// String returns the lower-case name of the verbosity.
func (v Verbosity) String() string {
	switch v {
	case Silent:
		return "silent"
	case Normal:
		return "normal"
	case Debug:
		return "debug"
	default:
		return fmt.Sprintf("verbosity(%d)", int(v))
	}
}

// ParseVerbosity parses "silent", "normal" or "debug" (case-insensitive).
func ParseVerbosity(s string) (Verbosity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "silent":
		return Silent, nil
	case "normal", "":
		return Normal, nil
	case "debug", "verbose":
		return Debug, nil
	default:
		return Normal, fmt.Errorf("unknown verbosity %q (want silent, normal or debug)", s)
	}
}

// New builds a console logger on stderr for v. Silent yields a no-op logger.
func New(v Verbosity) (*zap.Logger, error) {
	if v == Silent {
		return zap.NewNop(), nil
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.DisableStacktrace = true
	cfg.DisableCaller = true
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.Level = zap.NewAtomicLevelAt(Level(v))
	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}

// Level returns the minimum zap level emitted at verbosity v.
func Level(v Verbosity) zapcore.Level {
	switch v {
	case Silent:
		return zapcore.FatalLevel
	case Debug:
		return zapcore.DebugLevel
	default:
		return zapcore.InfoLevel
	}
}
