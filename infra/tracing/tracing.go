package tracing

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "coffee-machine"

var propagator = propagation.NewCompositeTextMapPropagator(
	propagation.TraceContext{},
	propagation.Baggage{},
)

// Init installs the global tracer provider and returns its shutdown function.
// An empty endpoint disables tracing and returns nil.
func Init(serviceName, endpoint string) func() {
	if endpoint == "" {
		return nil
	}
	if u, err := parseOTLPEndpoint(endpoint); err == nil {
		endpoint = u
	}
	ctx := context.Background()
	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpoint(endpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		return nil
	}
	res, _ := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes("", semconv.ServiceNameKey.String(serviceName)),
	)
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagator)
	return func() { _ = tp.Shutdown(ctx) }
}

// Middleware creates a span per request.
// A 32 hex char X-Request-ID becomes the trace id so logs and traces line up.
func Middleware() gin.HandlerFunc {
	tracer := otel.Tracer(tracerName)
	return func(c *gin.Context) {
		ctx := propagator.Extract(c.Request.Context(), propagation.HeaderCarrier(c.Request.Header))
		if sc, ok := spanContextFromRequestID(c.GetHeader("X-Request-ID")); ok && !trace.SpanContextFromContext(ctx).IsValid() {
			ctx = trace.ContextWithRemoteSpanContext(ctx, sc)
		}
		spanName := c.Request.Method + " " + c.FullPath()
		if c.FullPath() == "" {
			spanName = c.Request.Method + " " + c.Request.URL.Path
		}
		ctx, span := tracer.Start(ctx, spanName)
		defer span.End()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
		span.SetAttributes(
			attribute.Int("http.status_code", c.Writer.Status()),
			attribute.String("http.method", c.Request.Method),
			attribute.String("http.route", c.Request.URL.Path),
		)
		if c.Writer.Status() >= 400 {
			span.SetStatus(codes.Error, http.StatusText(c.Writer.Status()))
		}
	}
}

// Start opens a child span for work inside a request.
func Start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, name, trace.WithAttributes(attrs...))
}

func spanContextFromRequestID(requestID string) (trace.SpanContext, bool) {
	if len(requestID) != 32 {
		return trace.SpanContext{}, false
	}
	tid, err := trace.TraceIDFromHex(requestID)
	if err != nil {
		return trace.SpanContext{}, false
	}
	var spanID trace.SpanID
	if _, err := hex.Decode(spanID[:], []byte(requestID[16:32])); err != nil {
		rand.Read(spanID[:])
	}
	return trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    tid,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
		Remote:     true,
	}), true
}

// parseOTLPEndpoint returns "host:port" from an endpoint URL (e.g. "http://tempo:4318" -> "tempo:4318").
func parseOTLPEndpoint(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	if !strings.Contains(raw, "://") {
		return raw, nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	host := u.Hostname()
	port := u.Port()
	if port == "" {
		port = "4318"
	}
	return host + ":" + port, nil
}
