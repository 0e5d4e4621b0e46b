package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the instrumentation scope of application spans
const TracerName = "github.com/gym/backend"

// Span attribute keys used across the report pipeline
const (
	AttrReportType    = attribute.Key("report.type")
	AttrReportPeriod  = attribute.Key("report.period")
	AttrReportFilter  = attribute.Key("report.product_filter")
	AttrReportRows    = attribute.Key("report.rows")
	AttrReportPages   = attribute.Key("report.pages")
	AttrReportBytes   = attribute.Key("report.bytes")
	AttrReportEngine  = attribute.Key("report.engine")
	AttrFetchEntity   = attribute.Key("report.fetch.entity")
	AttrReportOutcome = attribute.Key("report.outcome")
)

// StartSpan starts an internal span on the global tracer provider.
// The caller must end the span.
//
//	ctx, span := telemetry.StartSpan(ctx, "report.generate", AttrReportType.String("financial"))
//	defer span.End()
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.GetTracerProvider().Tracer(TracerName).Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
}

// RecordError marks the span as failed. Nil errors are ignored.
func RecordError(span trace.Span, err error) {
	if span == nil || err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// AddEvent records a named event with attributes on the span in ctx
func AddEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	trace.SpanFromContext(ctx).AddEvent(name, trace.WithAttributes(attrs...))
}
