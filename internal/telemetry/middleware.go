package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "justplanit",
	Name:      "http_requests_total",
	Help:      "HTTP requests by method and status code.",
}, []string{"method", "code"})

var tracer = otel.Tracer("github.com/joelkehle/justplanit/internal/telemetry")

// RequestLogger attaches a request-scoped logger to the context, opens a
// server span and logs one line per completed request.
func RequestLogger(logger *zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			start := time.Now()
			reqLogger := logger.With().
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Str("remote_ip", req.RemoteAddr).
				Str("request_id", middleware.GetReqID(req.Context())).
				Logger()

			ctx, span := tracer.Start(reqLogger.WithContext(req.Context()), req.Method+" "+req.URL.Path,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(attribute.String("http.method", req.Method)))
			defer span.End()

			ww := middleware.NewWrapResponseWriter(w, req.ProtoMajor)
			next.ServeHTTP(ww, req.WithContext(ctx))

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			span.SetAttributes(attribute.Int("http.status_code", status))
			httpRequests.WithLabelValues(req.Method, strconv.Itoa(status)).Inc()

			evt := reqLogger.Info()
			if status >= http.StatusInternalServerError {
				evt = reqLogger.Error()
			}
			evt.Int("status", status).Int("bytes", ww.BytesWritten()).Dur("elapsed", time.Since(start)).Msg("request")
		})
	}
}
