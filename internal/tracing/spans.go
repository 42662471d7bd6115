package tracing

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Span attribute keys.
const (
	AttrActor        = "toolasset.actor"
	AttrAssetCode    = "toolasset.part.asset_code"
	AttrLayerCode    = "toolasset.part.layer_code"
	AttrAssemblyCode = "toolasset.assembly.code"
	AttrListCode     = "toolasset.tooling_list.code"
	AttrItemID       = "toolasset.item.id"
	AttrItemCount    = "toolasset.item.count"
	AttrAction       = "toolasset.audit.action"
	AttrRequestID    = "http.request_id"
)

// Span name prefixes.
const (
	SpanPrefixParts    = "parts."
	SpanPrefixAssembly = "assemblies."
	SpanPrefixTooling  = "tooling_lists."
	SpanPrefixAudit    = "audit."
)

// Start opens an internal span named name.
func Start(ctx context.Context, tracer trace.Tracer, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return tracer.Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
}

// End records err on the span, if any, and ends it.
func End(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
