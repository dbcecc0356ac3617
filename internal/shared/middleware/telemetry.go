package middleware

import (
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Telemetry instruments every request through otelhttp: one span per
// request plus duration, in-flight and size metrics. Webhook deliveries
// and sync triggers inherit the incoming trace context, so a provider
// webhook and the sync it dispatches show up on one trace.
func Telemetry(next http.Handler) http.Handler {
	return otelhttp.NewMiddleware("fintrack-api",
		otelhttp.WithSpanNameFormatter(func(operation string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
	)(next)
}
