package mailbox

import (
	"fmt"
	"strings"
)

// Logger provides printf-style debug logging hooks for the mailbox.
type Logger interface {
	Debugf(format string, args ...any)
}

// StructuredLogger emits key/value pairs for structured logging backends.
type StructuredLogger interface {
	Debugw(msg string, keyvals ...any)
}

// TraceAttribute represents a tracing attribute attached to dispatcher
// spans or events.
type TraceAttribute struct {
	Key   string
	Value any
}

// Tracer starts spans that wrap dispatcher activity.
type Tracer interface {
	StartSpan(name string, attrs ...TraceAttribute) Span
}

// Span records dispatcher lifecycle, events, and errors for tracing systems.
type Span interface {
	End(err error)
	AddEvent(name string, attrs ...TraceAttribute)
	RecordError(err error)
}

// MetricHook captures dispatcher telemetry events.
type MetricHook interface {
	DispatcherStarted(attrs map[string]string)
	DispatcherStopped(attrs map[string]string)
	DispatcherPollError(kind string, err error, attrs map[string]string)
	SendCompleted(attrs map[string]string)
	SendFailed(err error, attrs map[string]string)
	ReceiveCompleted(attrs map[string]string)
	ReceiveFailed(err error, attrs map[string]string)
}

const (
	labelRank      = "rank"
	labelTag       = "tag"
	labelOperation = "operation"
	labelStatus    = "status"
	labelKind      = "kind"
)

type logField struct {
	key   string
	value any
}

func logKV(key string, value any) logField {
	return logField{key: key, value: value}
}

func (m *Mailbox) metricAttrs(fields ...logField) map[string]string {
	attrs := make(map[string]string, len(fields)+2)
	attrs[labelRank] = fmt.Sprint(m.rank)
	attrs[labelTag] = fmt.Sprint(m.cfg.Tag)
	for _, field := range fields {
		if field.key == "" {
			continue
		}
		attrs[field.key] = fmt.Sprint(field.value)
	}
	return attrs
}

func (m *Mailbox) logDispatcherEvent(event string, fields ...logField) {
	if m == nil {
		return
	}
	if m.structuredLogger != nil {
		kv := make([]any, 0, len(fields)*2+2)
		kv = append(kv, "event", event)
		for _, field := range fields {
			if field.key == "" {
				continue
			}
			kv = append(kv, field.key, field.value)
		}
		m.structuredLogger.Debugw("mailbox dispatcher", kv...)
		return
	}
	if m.logger == nil {
		return
	}
	var b strings.Builder
	b.WriteString(event)
	for _, field := range fields {
		if field.key == "" {
			continue
		}
		b.WriteString(" ")
		b.WriteString(field.key)
		b.WriteString("=")
		b.WriteString(fmt.Sprint(field.value))
	}
	m.logger.Debugf("mailbox dispatcher %s", b.String())
}

func (m *Mailbox) logf(format string, args ...any) {
	if m == nil || m.logger == nil {
		return
	}
	m.logger.Debugf(format, args...)
}

func (m *Mailbox) metricDispatcherStarted(fields ...logField) {
	if m == nil || m.metrics == nil {
		return
	}
	m.metrics.DispatcherStarted(m.metricAttrs(fields...))
}

func (m *Mailbox) metricDispatcherStopped(fields ...logField) {
	if m == nil || m.metrics == nil {
		return
	}
	m.metrics.DispatcherStopped(m.metricAttrs(fields...))
}

func (m *Mailbox) metricDispatcherPollError(kind string, err error, fields ...logField) {
	if m == nil || m.metrics == nil {
		return
	}
	m.metrics.DispatcherPollError(kind, err, m.metricAttrs(fields...))
}

func (m *Mailbox) metricSendCompleted(fields ...logField) {
	if m == nil || m.metrics == nil {
		return
	}
	m.metrics.SendCompleted(m.metricAttrs(fields...))
}

func (m *Mailbox) metricSendFailed(err error, fields ...logField) {
	if m == nil || m.metrics == nil {
		return
	}
	m.metrics.SendFailed(err, m.metricAttrs(fields...))
}

func (m *Mailbox) metricReceiveCompleted(fields ...logField) {
	if m == nil || m.metrics == nil {
		return
	}
	m.metrics.ReceiveCompleted(m.metricAttrs(fields...))
}

func (m *Mailbox) metricReceiveFailed(err error, fields ...logField) {
	if m == nil || m.metrics == nil {
		return
	}
	m.metrics.ReceiveFailed(err, m.metricAttrs(fields...))
}

func spanAddEvent(span Span, name string, fields ...logField) {
	if span == nil {
		return
	}
	span.AddEvent(name, attributesFromFields(fields...)...)
}

func spanRecordError(span Span, err error) {
	if span == nil || err == nil {
		return
	}
	span.RecordError(err)
}

func attributesFromFields(fields ...logField) []TraceAttribute {
	if len(fields) == 0 {
		return nil
	}
	attrs := make([]TraceAttribute, 0, len(fields))
	for _, field := range fields {
		if field.key == "" {
			continue
		}
		attrs = append(attrs, TraceAttribute{Key: field.key, Value: field.value})
	}
	return attrs
}
