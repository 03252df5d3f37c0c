// Package logging builds the zap loggers used across triplecheck.
package logging

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Standard field names for structured log lines
const (
	FieldDocument   = "document"
	FieldSchema     = "schema"
	FieldRunID      = "run_id"
	FieldCount      = "count"
	FieldErrors     = "errors"
	FieldWarnings   = "warnings"
	FieldValid      = "valid"
	FieldCached     = "cached"
	FieldDurationMS = "duration_ms"
	FieldModel      = "model"
	FieldRange      = "verse_range"
	FieldPath       = "path"
	FieldAddress    = "address"
	FieldError      = "error"
)

// Options controls logger construction
type Options struct {
	JSON    bool      // JSON encoder instead of console
	Verbose bool      // Debug level instead of info
	Output  io.Writer // Defaults to stderr
}

// New builds a sugared logger. Logs go to stderr by default so that reports
// written to stdout stay machine readable.
func New(opts Options) *zap.SugaredLogger {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	level := zap.InfoLevel
	if opts.Verbose {
		level = zap.DebugLevel
	}

	var encoder zapcore.Encoder
	if opts.JSON {
		cfg := zap.NewProductionEncoderConfig()
		cfg.EncodeTime = zapcore.ISO8601TimeEncoder
		encoder = zapcore.NewJSONEncoder(cfg)
	} else {
		cfg := zap.NewDevelopmentEncoderConfig()
		cfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		cfg.EncodeLevel = zapcore.CapitalLevelEncoder
		cfg.CallerKey = ""
		encoder = zapcore.NewConsoleEncoder(cfg)
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(out), level)
	return zap.New(core).Sugar()
}

// Nop returns a logger that discards everything
func Nop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

// OrNop returns l, or a no-op logger when l is nil
func OrNop(l *zap.SugaredLogger) *zap.SugaredLogger {
	if l == nil {
		return Nop()
	}
	return l
}
