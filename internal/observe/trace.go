package observe

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// tracerName is the instrumentation scope name for the arguebot tracer.
const tracerName = "github.com/MrWong99/arguebot"

type debateIDKey struct{}

// Tracer returns the package-level [trace.Tracer]. It uses the globally
// registered [trace.TracerProvider].
func Tracer() trace.Tracer {
	return otel.Tracer(tracerName)
}

// StartSpan starts a new span and returns the updated context and span. The
// caller must call span.End() when done.
func StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return Tracer().Start(ctx, name, opts...)
}

// WithDebateID returns a copy of ctx carrying the debate run identifier.
func WithDebateID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, debateIDKey{}, id)
}

// DebateID returns the debate run identifier stored in ctx, or "".
func DebateID(ctx context.Context) string {
	id, _ := ctx.Value(debateIDKey{}).(string)
	return id
}

// TraceID extracts the trace ID from the span context in ctx. Returns the
// empty string when no active span with a valid trace ID exists.
func TraceID(ctx context.Context) string {
	sc := trace.SpanContextFromContext(ctx)
	if sc.HasTraceID() {
		return sc.TraceID().String()
	}
	return ""
}

// Logger returns an [slog.Logger] enriched with the debate ID and the
// trace_id and span_id of the active span in ctx. Attributes that are not
// present in ctx are omitted.
func Logger(ctx context.Context) *slog.Logger {
	l := slog.Default()
	if id := DebateID(ctx); id != "" {
		l = l.With(slog.String("debate_id", id))
	}
	sc := trace.SpanContextFromContext(ctx)
	if sc.HasTraceID() {
		l = l.With(
			slog.String("trace_id", sc.TraceID().String()),
			slog.String("span_id", sc.SpanID().String()),
		)
	}
	return l
}
