package tracing

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Span attribute keys.
const (
	AttrThemeID       = "theme.id"
	AttrThemeRevision = "theme.revision"
	AttrThemeRules    = "theme.rules"
	AttrThemeSources  = "theme.sources"
	AttrSkinID        = "skin.id"
	AttrInstanceID    = "skin.instance"
	AttrVariants      = "variant.set"
	AttrInstances     = "engine.instances"
	AttrCacheHits     = "cache.hits"
	AttrCacheMisses   = "cache.misses"
	AttrWarnings      = "diagnostics.warnings"
)

// Span names.
const (
	SpanThemeLoad       = "theme.load"
	SpanThemeParse      = "themefile.parse"
	SpanEngineRecompute = "engine.recompute"
	SpanEngineActivate  = "engine.activate"
	SpanBaselineSave    = "baseline.save"
	SpanBaselineCheck   = "baseline.check"
)

// Start opens a span with attrs. A nil tracer yields a non-recording span.
func Start(ctx context.Context, tracer trace.Tracer, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer(defaultServiceName)
	}
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// End records err (if any) as the span status and ends the span.
func End(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
