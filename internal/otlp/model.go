package otlp

import (
	otlpcollectortrace "go.opentelemetry.io/proto/otlp/collector/trace/v1"
	otlpcommon "go.opentelemetry.io/proto/otlp/common/v1"
	otlpresource "go.opentelemetry.io/proto/otlp/resource/v1"
	otlptrace "go.opentelemetry.io/proto/otlp/trace/v1"
)

// ExportTraceServiceRequest is one batch of spans reported by an
// instrumented application.
type ExportTraceServiceRequest = otlpcollectortrace.ExportTraceServiceRequest

// ExportTraceServiceResponse is the acknowledgement for an export request.
type ExportTraceServiceResponse = otlpcollectortrace.ExportTraceServiceResponse

// ResourceSpans contains spans from a single resource
type ResourceSpans = otlptrace.ResourceSpans

// Resource describes the entity producing telemetry
type Resource = otlpresource.Resource

// ScopeSpans contains spans from a single instrumentation scope
type ScopeSpans = otlptrace.ScopeSpans

// InstrumentationScope describes the instrumentation library
type InstrumentationScope = otlpcommon.InstrumentationScope

// Span is the actual span data
type Span = otlptrace.Span

// SpanKind (CLIENT, SERVER, INTERNAL, etc.)
type SpanKind = otlptrace.Span_SpanKind

// KeyValue attributes
type KeyValue = otlpcommon.KeyValue

// AnyValue holds attribute values (string, int, bool, etc.)
type AnyValue = otlpcommon.AnyValue

const (
	SpanKindUnspecified = otlptrace.Span_SPAN_KIND_UNSPECIFIED
	SpanKindInternal    = otlptrace.Span_SPAN_KIND_INTERNAL
	SpanKindServer      = otlptrace.Span_SPAN_KIND_SERVER
	SpanKindClient      = otlptrace.Span_SPAN_KIND_CLIENT
	SpanKindProducer    = otlptrace.Span_SPAN_KIND_PRODUCER
	SpanKindConsumer    = otlptrace.Span_SPAN_KIND_CONSUMER
)

// ParseSpanKind converts a string representation to a SpanKind.
// Both the short form ("SERVER") and the proto enum name
// ("SPAN_KIND_SERVER") are accepted.
func ParseSpanKind(s string) (SpanKind, bool) {
	switch s {
	case "SPAN_KIND_SERVER", "SERVER":
		return SpanKindServer, true
	case "SPAN_KIND_CLIENT", "CLIENT":
		return SpanKindClient, true
	case "SPAN_KIND_PRODUCER", "PRODUCER":
		return SpanKindProducer, true
	case "SPAN_KIND_CONSUMER", "CONSUMER":
		return SpanKindConsumer, true
	case "SPAN_KIND_INTERNAL", "INTERNAL":
		return SpanKindInternal, true
	case "SPAN_KIND_UNSPECIFIED", "UNSPECIFIED":
		return SpanKindUnspecified, true
	default:
		return SpanKindUnspecified, false
	}
}
