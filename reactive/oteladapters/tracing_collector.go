package oteladapters

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/AntonStoeckl/reactive-streams-extras-go/reactive"
	"github.com/AntonStoeckl/reactive-streams-extras-go/reactive/observable"
)

// TracingCollector implements reactive.TracingCollector with the OpenTelemetry trace API.
type TracingCollector struct {
	tracer trace.Tracer
}

// NewTracingCollector creates a collector that starts its spans with tracer.
func NewTracingCollector(tracer trace.Tracer) *TracingCollector {
	return &TracingCollector{tracer: tracer}
}

// StartSpan starts a span carrying attrs and returns the context that holds it.
func (t *TracingCollector) StartSpan(ctx context.Context, name string, attrs map[string]string) (context.Context, reactive.SpanContext) {
	spanCtx, span := t.tracer.Start(ctx, name, trace.WithAttributes(toAttributes(attrs)...))

	return spanCtx, &SpanContext{span: span}
}

// FinishSpan adds attrs, sets the status, and ends the span.
// Span contexts from other implementations are ignored.
func (t *TracingCollector) FinishSpan(spanCtx reactive.SpanContext, status string, attrs map[string]string) {
	otelSpanCtx, ok := spanCtx.(*SpanContext)
	if !ok {
		return
	}

	otelSpanCtx.span.SetAttributes(toAttributes(attrs)...)
	otelSpanCtx.SetStatus(status)
	otelSpanCtx.span.End()
}

var _ reactive.TracingCollector = (*TracingCollector)(nil)

// SpanContext implements reactive.SpanContext by wrapping an OpenTelemetry span.
type SpanContext struct {
	span trace.Span
}

// SetStatus maps the stream status onto an OpenTelemetry status code.
// Unknown statuses are kept as a "status" attribute.
func (s *SpanContext) SetStatus(status string) {
	switch status {
	case observable.StatusSuccess:
		s.span.SetStatus(codes.Ok, "")
	case observable.StatusError:
		s.span.SetStatus(codes.Error, "Stream failed")
	case observable.StatusCanceled:
		s.span.SetStatus(codes.Error, "Stream canceled")
	case observable.StatusTimeout:
		s.span.SetStatus(codes.Error, "Stream timed out")
	default:
		s.span.SetAttributes(attribute.String(observable.AttrStatus, status))
	}
}

// AddAttribute adds a string attribute to the span.
func (s *SpanContext) AddAttribute(key, value string) {
	s.span.SetAttributes(attribute.String(key, value))
}

var _ reactive.SpanContext = (*SpanContext)(nil)
