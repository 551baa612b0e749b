package llm

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/snow-ghost/interviewer/pkg/limiter"
	"github.com/snow-ghost/interviewer/pkg/metrics"
	"github.com/snow-ghost/interviewer/pkg/tracing"
)

// Guarded runs every completion through limiter.Protection, keyed by the
// request's capability, and records metrics and a span per call.
type Guarded struct {
	inner      Completer
	protection *limiter.Protection
	metrics    *metrics.Metrics
	logger     *zap.Logger
}

func NewGuarded(inner Completer, protection *limiter.Protection, m *metrics.Metrics, logger *zap.Logger) *Guarded {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Guarded{inner: inner, protection: protection, metrics: m, logger: logger}
}

func (g *Guarded) Name() string { return g.inner.Name() }

func (g *Guarded) Complete(ctx context.Context, req Request) (string, error) {
	capability := req.Capability
	if capability == "" {
		capability = CapabilityGenerate
	}

	ctx, span := tracing.StartCapabilitySpan(ctx, capability, g.inner.Name())
	start := time.Now()

	var out string
	err := g.protection.Execute(ctx, capability, func(ctx context.Context) error {
		text, err := g.inner.Complete(ctx, req)
		if err != nil {
			return err
		}
		if text == "" {
			return ErrEmptyResponse
		}
		out = text
		return nil
	})

	g.metrics.RecordCapability(capability, err, time.Since(start))
	tracing.End(span, err)
	if err != nil {
		g.logger.Warn("capability call failed",
			zap.String("capability", capability),
			zap.String("backend", g.inner.Name()),
			zap.Error(err))
		return "", err
	}
	return out, nil
}
