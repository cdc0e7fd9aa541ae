// Package tracer abstracts span creation so the resolver does not depend on
// a concrete tracing backend.
package tracer

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Tracer starts spans around resolution phases.
type Tracer interface {
	StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, func(err error))
}

// Noop discards all spans.
type Noop struct{}

func (Noop) StartSpan(ctx context.Context, _ string, _ ...attribute.KeyValue) (context.Context, func(err error)) {
	return ctx, func(error) {}
}

// OTel emits spans through an OpenTelemetry tracer.
type OTel struct {
	tracer trace.Tracer
}

// NewOTel creates a tracer scoped to the given instrumentation name.
func NewOTel(name string) *OTel {
	return &OTel{tracer: otel.Tracer(name)}
}

func (t *OTel) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, func(err error)) {
	ctx, span := t.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
		}
		span.End()
	}
}
