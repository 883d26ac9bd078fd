package mailbox

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var _ Tracer = (*OTelTracer)(nil)

// OTelTracer adapts an OpenTelemetry tracer to the mailbox Tracer interface.
type OTelTracer struct {
	tracer trace.Tracer
}

// NewOTelTracer wraps the given tracer. A nil argument uses the global
// tracer provider.
func NewOTelTracer(t trace.Tracer) *OTelTracer {
	if t == nil {
		t = otel.Tracer("github.com/rivergrid/mpi-go/mailbox")
	}
	return &OTelTracer{tracer: t}
}

func (t *OTelTracer) StartSpan(name string, attrs ...TraceAttribute) Span {
	_, span := t.tracer.Start(context.Background(), name,
		trace.WithAttributes(otelSpanAttrs(attrs)...))
	return otelSpan{span: span}
}

type otelSpan struct {
	span trace.Span
}

func (s otelSpan) End(err error) {
	if err != nil {
		s.span.RecordError(err)
		s.span.SetStatus(codes.Error, err.Error())
	}
	s.span.End()
}

func (s otelSpan) AddEvent(name string, attrs ...TraceAttribute) {
	s.span.AddEvent(name, trace.WithAttributes(otelSpanAttrs(attrs)...))
}

func (s otelSpan) RecordError(err error) {
	if err == nil {
		return
	}
	s.span.RecordError(err)
}

func otelSpanAttrs(attrs []TraceAttribute) []attribute.KeyValue {
	if len(attrs) == 0 {
		return nil
	}
	kvs := make([]attribute.KeyValue, 0, len(attrs))
	for _, a := range attrs {
		if a.Key == "" {
			continue
		}
		kvs = append(kvs, attribute.String(a.Key, fmt.Sprint(a.Value)))
	}
	return kvs
}
