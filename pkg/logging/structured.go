package logging

import (
	"context"
	"time"
	"unicode/utf8"

	"github.com/snow-ghost/interviewer/pkg/tracing"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds logging configuration
type Config struct {
	Level     string `mapstructure:"level"`
	Format    string `mapstructure:"format"` // "json" or "console"
	Output    string `mapstructure:"output"` // "stdout", "stderr" or a file path
	AddCaller bool   `mapstructure:"add_caller"`
	AddStack  bool   `mapstructure:"add_stack"`
}

// DefaultConfig logs info and above as JSON to stderr.
func DefaultConfig() Config {
	return Config{Level: "info", Format: "json", Output: "stderr"}
}

// New creates a zap logger from config.
func New(config Config) (*zap.Logger, error) {
	zapConfig := zap.NewProductionConfig()
	zapConfig.Level = parseLevel(config.Level)
	zapConfig.Encoding = "json"
	if config.Format == "console" {
		zapConfig.Encoding = "console"
		zapConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	zapConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	output := config.Output
	if output == "" {
		output = "stderr"
	}
	zapConfig.OutputPaths = []string{output}
	zapConfig.ErrorOutputPaths = []string{output}
	zapConfig.DisableCaller = !config.AddCaller
	zapConfig.DisableStacktrace = !config.AddStack

	return zapConfig.Build()
}

// parseLevel falls back to info for unknown levels
func parseLevel(level string) zap.AtomicLevel {
	switch level {
	case "debug":
		return zap.NewAtomicLevelAt(zapcore.DebugLevel)
	case "warn":
		return zap.NewAtomicLevelAt(zapcore.WarnLevel)
	case "error":
		return zap.NewAtomicLevelAt(zapcore.ErrorLevel)
	default:
		return zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}
}

func Session(id string) zap.Field {
	return zap.String("session_id", id)
}

func Phase(p string) zap.Field {
	return zap.String("phase", p)
}

func Duration(d time.Duration) zap.Field {
	return zap.Float64("duration_ms", float64(d.Nanoseconds())/1e6)
}

// Truncate shortens s to at most n runes for log output.
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n]) + "…"
}

// WithTrace adds the current trace id, if any, to logger.
func WithTrace(ctx context.Context, logger *zap.Logger) *zap.Logger {
	if id := tracing.GetTraceID(ctx); id != "" {
		return logger.With(zap.String("trace_id", id))
	}
	return logger
}
