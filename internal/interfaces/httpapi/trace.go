package httpapi

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const handlerSpanPrefix = "httpapi.Handler."

var (
	apiTracer = otel.Tracer("league-engine/internal/interfaces/httpapi")
	noopSpan  = trace.SpanFromContext(context.Background())
)

var (
	attrTournamentID = attribute.Key("league.tournament_id")
	attrMatchID      = attribute.Key("league.match_id")
	attrErrorReason  = attribute.Key("league.error_reason")
)

// startSpan opens a child span for handler entry points only. Helpers and
// middleware reuse the request span so traces stay one level deep.
func startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if !trace.SpanFromContext(ctx).SpanContext().IsValid() {
		return ctx, noopSpan
	}
	if !shouldCreateHTTPAPISpan(name) {
		return ctx, noopSpan
	}
	return apiTracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func shouldCreateHTTPAPISpan(name string) bool {
	return strings.HasPrefix(name, handlerSpanPrefix) && len(name) > len(handlerSpanPrefix)
}

// annotateError tags the active span with the reason code. Only server side
// faults flip the span status; client errors are expected traffic.
func annotateError(ctx context.Context, reason string, status int, err error) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	span.SetAttributes(attrErrorReason.String(reason))
	if status >= 500 {
		span.RecordError(err)
		span.SetStatus(codes.Error, reason)
	}
}
