package restapi

import (
	"log"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/dusk-indust/lendit/internal/restapi"

// unmatchedRoute labels requests no route pattern accepted.
const unmatchedRoute = "unmatched"

type instruments struct {
	tracer   trace.Tracer
	duration metric.Float64Histogram
	total    metric.Int64Counter
}

func newInstruments(tp trace.TracerProvider, mp metric.MeterProvider) *instruments {
	meter := mp.Meter(instrumentationName)
	in := &instruments{tracer: tp.Tracer(instrumentationName)}

	var err error
	in.duration, err = meter.Float64Histogram("http.server.request.duration",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		otel.Handle(err)
		in.duration = noop.Float64Histogram{}
	}
	in.total, err = meter.Int64Counter("http.server.request.total",
		metric.WithDescription("Total HTTP requests"),
	)
	if err != nil {
		otel.Handle(err)
		in.total = noop.Int64Counter{}
	}
	return in
}

type responseWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func wrapResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{ResponseWriter: w}
}

func (rw *responseWriter) WriteHeader(code int) {
	if rw.wroteHeader {
		return
	}
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
	rw.wroteHeader = true
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.wroteHeader {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}

func (rw *responseWriter) statusCode() int {
	if rw.status == 0 {
		return http.StatusOK
	}
	return rw.status
}

// CORS lets the browser front-end call the API from another origin,
// including the custom ownership header.
func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, PATCH, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type, X-Sharer-User-Id")
		h.Set("Access-Control-Max-Age", "86400")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Logging writes one line per request: method, path, status, duration.
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapped := wrapResponseWriter(w)
		next.ServeHTTP(wrapped, r)

		log.Printf("restapi: %s %s %d %s", r.Method, r.URL.Path, wrapped.statusCode(), time.Since(start))
	})
}

// Tracing creates OpenTelemetry spans and records HTTP metrics for each
// request using the global providers.
func Tracing(next http.Handler) http.Handler {
	return TracingWith(otel.GetTracerProvider(), otel.GetMeterProvider())(next)
}

// TracingWith is Tracing over explicit providers. Spans and metrics are
// labelled with the matched route pattern, not the raw path, so next must be
// (or wrap) the ServeMux.
func TracingWith(tp trace.TracerProvider, mp metric.MeterProvider) func(http.Handler) http.Handler {
	in := newInstruments(tp, mp)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, span := in.tracer.Start(r.Context(), r.Method,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(
					attribute.String("http.method", r.Method),
					attribute.String("http.target", r.URL.Path),
				),
			)
			defer span.End()

			start := time.Now()
			wrapped := wrapResponseWriter(w)
			req := r.WithContext(ctx)
			next.ServeHTTP(wrapped, req)

			// The mux records the matched pattern on the request it was given.
			route := routeOf(req.Pattern)
			status := wrapped.statusCode()
			span.SetName(r.Method + " " + route)
			span.SetAttributes(
				attribute.String("http.route", route),
				attribute.Int("http.status_code", status),
			)
			if status >= 500 {
				span.SetStatus(codes.Error, http.StatusText(status))
			}

			attrs := metric.WithAttributes(
				attribute.String("http.method", r.Method),
				attribute.String("http.route", route),
				attribute.Int("http.status_code", status),
			)
			in.duration.Record(ctx, time.Since(start).Seconds(), attrs)
			in.total.Add(ctx, 1, attrs)
		})
	}
}

// routeOf strips the method from a mux pattern such as "GET /items/{id}".
func routeOf(pattern string) string {
	if pattern == "" {
		return unmatchedRoute
	}
	if _, path, ok := strings.Cut(pattern, " "); ok {
		return path
	}
	return pattern
}
