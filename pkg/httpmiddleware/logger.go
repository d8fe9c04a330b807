package httpmiddleware

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"
)

// InjectLogger stores lg in the request context, tagged with the request id
// when RequestID ran first. Handlers retrieve it with zctx.From.
func InjectLogger(lg *zap.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqLg := lg
			if id := RequestIDFromContext(r.Context()); id != "" {
				reqLg = lg.With(zap.String("request_id", id))
			}
			next.ServeHTTP(w, r.WithContext(zctx.Base(r.Context(), reqLg)))
		})
	}
}

type routeKey struct{}

// route is filled in by the router once the request is matched.
type route struct {
	pattern string
}

func withRoute(ctx context.Context) (context.Context, *route) {
	if rt, ok := ctx.Value(routeKey{}).(*route); ok {
		return ctx, rt
	}
	rt := &route{}
	return context.WithValue(ctx, routeKey{}, rt), rt
}

// RouteFromContext returns the matched route pattern recorded by TagRoute.
func RouteFromContext(ctx context.Context) string {
	if rt, ok := ctx.Value(routeKey{}).(*route); ok {
		return rt.pattern
	}
	return ""
}

// LogRequests writes one access log line per request after it completes.
// Probe paths in skip are not logged.
func LogRequests(skip ...string) Middleware {
	skipped := make(map[string]struct{}, len(skip))
	for _, p := range skip {
		skipped[p] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := skipped[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}
			ctx, rt := withRoute(r.Context())
			sw := &statusWriter{ResponseWriter: w}
			start := time.Now()

			next.ServeHTTP(sw, r.WithContext(ctx))

			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", sw.code()),
				zap.Int("bytes", sw.bytes),
				zap.Duration("duration", time.Since(start)),
			}
			if rt.pattern != "" {
				fields = append(fields, zap.String("route", rt.pattern))
			}
			if sw.Header().Get(HeaderDegraded) != "" {
				fields = append(fields, zap.Bool("degraded", true))
			}
			lg := zctx.From(ctx)
			switch code := sw.code(); {
			case code >= http.StatusInternalServerError:
				lg.Warn("Request", fields...)
			default:
				lg.Info("Request", fields...)
			}
		})
	}
}
