package tracing

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/snow-ghost/interviewer"

// Config holds tracing configuration
type Config struct {
	Enabled        bool   `mapstructure:"enabled"`
	ServiceName    string `mapstructure:"service_name"`
	ServiceVersion string `mapstructure:"service_version"`
	JaegerEndpoint string `mapstructure:"jaeger_endpoint"`
	Environment    string `mapstructure:"environment"`
}

// Setup installs a Jaeger-backed tracer provider as the global provider.
// When tracing is disabled the global no-op provider stays in place and the
// returned shutdown func does nothing.
func Setup(config Config) (func(context.Context) error, error) {
	if !config.Enabled {
		return func(context.Context) error { return nil }, nil
	}

	exporter, err := jaeger.New(jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(config.JaegerEndpoint)))
	if err != nil {
		return nil, fmt.Errorf("failed to create Jaeger exporter: %w", err)
	}

	res, err := resource.New(context.Background(),
		resource.WithAttributes(
			semconv.ServiceNameKey.String(config.ServiceName),
			semconv.ServiceVersionKey.String(config.ServiceVersion),
			semconv.DeploymentEnvironmentKey.String(config.Environment),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return tp.Shutdown, nil
}

func tracer() trace.Tracer {
	return otel.Tracer(instrumentationName)
}

// StartSpan starts a new span
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return tracer().Start(ctx, name, trace.WithAttributes(attrs...))
}

// StartTurnSpan starts a span for one candidate turn.
func StartTurnSpan(ctx context.Context, sessionID, phase string) (context.Context, trace.Span) {
	return StartSpan(ctx, "interview.turn",
		attribute.String("session.id", sessionID),
		attribute.String("interview.phase", phase),
	)
}

// StartCapabilitySpan starts a span for an external capability call.
func StartCapabilitySpan(ctx context.Context, capability, backend string) (context.Context, trace.Span) {
	return StartSpan(ctx, "capability."+capability,
		attribute.String("capability.name", capability),
		attribute.String("capability.backend", backend),
	)
}

// StartEvaluationSpan starts a span for a background evaluation.
func StartEvaluationSpan(ctx context.Context, sessionID string) (context.Context, trace.Span) {
	return StartSpan(ctx, "evaluation.run", attribute.String("session.id", sessionID))
}

// End records err, if any, and ends the span.
func End(span trace.Span, err error) {
	if err != nil {
		RecordSpanError(span, err)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// RecordSpanError records an error in a span
func RecordSpanError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// GetTraceID extracts trace ID from context
func GetTraceID(ctx context.Context) string {
	span := trace.SpanFromContext(ctx)
	if span.SpanContext().HasTraceID() {
		return span.SpanContext().TraceID().String()
	}
	return ""
}
