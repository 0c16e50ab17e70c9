package logging

import (
	"context"
	"regexp"
	"unicode/utf8"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type ctxKey int

const (
	requestIDKey ctxKey = iota
	clientIPKey
)

const (
	maxIDLen = 128
	maxIPLen = 64
)

var idPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// ContextFields returns the correlation fields carried by ctx: trace and span
// ids of the active span, then request id and client ip when present.
func ContextFields(ctx context.Context) []zap.Field {
	var fields []zap.Field

	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		fields = append(fields,
			zap.String("trace_id", sc.TraceID().String()),
			zap.String("span_id", sc.SpanID().String()),
		)
		if sc.IsSampled() {
			fields = append(fields, zap.Bool("trace_sampled", true))
		}
	}
	if id := RequestIDFromContext(ctx); id != "" {
		fields = append(fields, zap.String("request.id", id))
	}
	if ip := ClientIPFromContext(ctx); ip != "" {
		fields = append(fields, zap.String("client.ip", ip))
	}

	return fields
}

// WithRequestID attaches a request id. Request ids come from client headers,
// so empty, oversized or non [a-zA-Z0-9_-] values are dropped.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" || len(id) > maxIDLen || !utf8.ValidString(id) || !idPattern.MatchString(id) {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext returns the request id, or "".
func RequestIDFromContext(ctx context.Context) string {
	return stringValue(ctx, requestIDKey)
}

// WithClientIP attaches the caller address.
func WithClientIP(ctx context.Context, ip string) context.Context {
	if ip == "" || len(ip) > maxIPLen {
		return ctx
	}
	return context.WithValue(ctx, clientIPKey, ip)
}

// ClientIPFromContext returns the caller address, or "".
func ClientIPFromContext(ctx context.Context) string {
	return stringValue(ctx, clientIPKey)
}

func stringValue(ctx context.Context, key ctxKey) string {
	s, _ := ctx.Value(key).(string)
	return s
}
