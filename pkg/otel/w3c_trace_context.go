package otel

import (
	"context"

	"go.opentelemetry.io/otel/propagation"
)

var w3cTraceContextPropagator = propagation.TraceContext{}

// W3CTraceContextFromContext extracts the W3C Trace Context headers
// ("traceparent" and "tracestate") from a Context, so that they may be
// carried across process boundaries that don't use a transport with
// built-in propagation support.
func W3CTraceContextFromContext(ctx context.Context) map[string]string {
	headers := map[string]string{}
	w3cTraceContextPropagator.Inject(ctx, propagation.MapCarrier(headers))
	return headers
}

// NewContextWithW3CTraceContext applies previously extracted W3C Trace
// Context headers to a Context, reconstructing the span context they
// describe. Headers that are not part of the W3C Trace Context
// specification, or that hold malformed values, are ignored.
func NewContextWithW3CTraceContext(ctx context.Context, headers map[string]string) context.Context {
	return w3cTraceContextPropagator.Extract(ctx, propagation.MapCarrier(headers))
}
