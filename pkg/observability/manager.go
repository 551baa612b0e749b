// Package observability builds the process-wide logger, metrics and tracer
// from configuration and shuts them down together.
package observability

import (
	"context"

	"go.uber.org/zap"

	"github.com/snow-ghost/interviewer/pkg/logging"
	"github.com/snow-ghost/interviewer/pkg/metrics"
	"github.com/snow-ghost/interviewer/pkg/tracing"
)

// Config holds observability configuration
type Config struct {
	Log     logging.Config
	Tracing tracing.Config
}

// Manager owns the observability components of one process.
type Manager struct {
	logger        *zap.Logger
	metrics       *metrics.Metrics
	shutdownTrace func(context.Context) error
}

// NewManager creates the logger, a fresh metrics registry and, when enabled,
// the Jaeger tracer provider.
func NewManager(config Config) (*Manager, error) {
	logger, err := logging.New(config.Log)
	if err != nil {
		return nil, err
	}

	shutdown, err := tracing.Setup(config.Tracing)
	if err != nil {
		logger.Sync()
		return nil, err
	}

	if config.Tracing.Enabled {
		logger.Info("tracing enabled", zap.String("endpoint", config.Tracing.JaegerEndpoint))
	}
	return &Manager{
		logger:        logger,
		metrics:       metrics.New(),
		shutdownTrace: shutdown,
	}, nil
}

func (m *Manager) Logger() *zap.Logger { return m.logger }

func (m *Manager) Metrics() *metrics.Metrics { return m.metrics }

// Shutdown flushes spans and the logger.
func (m *Manager) Shutdown(ctx context.Context) error {
	traceErr := m.shutdownTrace(ctx)
	// Sync on stderr/stdout fails with EINVAL on some platforms.
	_ = m.logger.Sync()
	return traceErr
}
