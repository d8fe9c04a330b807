package httpmiddleware

import (
	"context"
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// HeaderDegraded marks a response served from safe defaults because the
// commerce platform failed.
const HeaderDegraded = "X-Storefront-Degraded"

// Telemetry provides the meter and tracer providers, as app.Telemetry does.
type Telemetry interface {
	MeterProvider() metric.MeterProvider
	TracerProvider() trace.TracerProvider
}

// Instrument traces and measures every request with otelhttp. Paths in skip
// (health probes) are not instrumented. The span is renamed to the matched
// route by TagRoute.
func Instrument(service string, m Telemetry, skip ...string) Middleware {
	skipped := make(map[string]struct{}, len(skip))
	for _, p := range skip {
		skipped[p] = struct{}{}
	}
	opts := []otelhttp.Option{
		otelhttp.WithMeterProvider(m.MeterProvider()),
		otelhttp.WithTracerProvider(m.TracerProvider()),
		otelhttp.WithFilter(func(r *http.Request) bool {
			_, ok := skipped[r.URL.Path]
			return !ok
		}),
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method
		}),
	}
	return func(next http.Handler) http.Handler {
		return otelhttp.NewHandler(next, service, opts...)
	}
}

// TagRoute records the route pattern the router matched for the request. It
// feeds the access log, names the server span and labels otelhttp metrics.
func TagRoute(ctx context.Context, method, pattern string) {
	if pattern == "" {
		return
	}
	if rt, ok := ctx.Value(routeKey{}).(*route); ok {
		rt.pattern = pattern
	}
	attr := attribute.String("http.route", pattern)
	if span := trace.SpanFromContext(ctx); span.IsRecording() {
		span.SetName(method + " " + pattern)
		span.SetAttributes(attr)
	}
	if labeler, ok := otelhttp.LabelerFromContext(ctx); ok {
		labeler.Add(attr)
	}
}
