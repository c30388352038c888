// Package logger builds the structured logger used by the mjbuild CLI.
package logger

import (
	"fmt"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	flagLogEncoding = "log-encoding"
	flagLogLevel    = "log-level"
)

var levelStrings = map[string]zapcore.Level{
	// logr's V(2) maps to zap level -2.
	"trace": zapcore.DebugLevel - 1,
	"debug": zapcore.DebugLevel,
	"info":  zapcore.InfoLevel,
	"error": zapcore.ErrorLevel,
}

// Verbosity levels for log.V(...), matching the zap levels above.
const (
	TraceLevel = 2
	DebugLevel = 1
	InfoLevel  = 0
)

// Options contains the configuration options for the logger.
type Options struct {
	LogEncoding string
	LogLevel    string
}

// BindFlags binds the logger options to fs.
func (o *Options) BindFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.LogEncoding, flagLogEncoding, "console",
		"Log encoding format. Can be 'json' or 'console'.")
	fs.StringVar(&o.LogLevel, flagLogLevel, "info",
		"Log verbosity level. Can be one of 'trace', 'debug', 'info', 'error'.")
}

// Validate rejects unknown encodings and levels.
func (o Options) Validate() error {
	switch o.LogEncoding {
	case "json", "console":
	default:
		return fmt.Errorf("unknown log encoding %q", o.LogEncoding)
	}
	if _, ok := levelStrings[o.LogLevel]; !ok {
		return fmt.Errorf("unknown log level %q", o.LogLevel)
	}
	return nil
}

// NewLogger returns a logger configured with the given Options, writing to
// stderr with ISO8601 timestamps.
func NewLogger(opts Options) (logr.Logger, error) {
	if err := opts.Validate(); err != nil {
		return logr.Discard(), err
	}

	cfg := zap.NewProductionConfig()
	cfg.Encoding = opts.LogEncoding
	cfg.Level = zap.NewAtomicLevelAt(levelStrings[opts.LogLevel])
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.Sampling = nil
	if opts.LogEncoding == "console" {
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	}

	zl, err := cfg.Build()
	if err != nil {
		return logr.Discard(), err
	}
	return zapr.NewLogger(zl), nil
}
