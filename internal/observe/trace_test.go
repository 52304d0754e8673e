package observe

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// newTestTracerProvider returns a TracerProvider with an in-memory exporter
// for inspecting recorded spans.
func newTestTracerProvider(t *testing.T) (*sdktrace.TracerProvider, *tracetest.InMemoryExporter) {
	t.Helper()
	exp := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exp))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return tp, exp
}

// captureDefaultLogger swaps the default slog logger for one writing to the
// returned buffer.
func captureDefaultLogger(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	orig := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(orig) })
	return &buf
}

func TestTraceID_EmptyByDefault(t *testing.T) {
	if got := TraceID(context.Background()); got != "" {
		t.Errorf("TraceID(background) = %q, want empty", got)
	}
}

func TestTraceID_ReturnsHex(t *testing.T) {
	tp, _ := newTestTracerProvider(t)

	ctx, span := tp.Tracer("test").Start(context.Background(), "test-span")
	defer span.End()

	id := TraceID(ctx)
	if len(id) != 32 {
		t.Errorf("trace ID length = %d, want 32", len(id))
	}
	for _, c := range id {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			t.Errorf("trace ID contains non-hex character %q", c)
			break
		}
	}
}

func TestStartSpan_CreatesSpan(t *testing.T) {
	tp, exp := newTestTracerProvider(t)

	origTP := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(origTP) })

	ctx, span := StartSpan(context.Background(), "debate.turn")
	if TraceID(ctx) == "" {
		t.Error("StartSpan did not create a span with a trace ID")
	}

	span.End()
	spans := exp.GetSpans()
	if len(spans) == 0 {
		t.Fatal("no spans recorded")
	}
	if spans[0].Name != "debate.turn" {
		t.Errorf("span name = %q, want %q", spans[0].Name, "debate.turn")
	}
}

func TestDebateID_RoundTrip(t *testing.T) {
	ctx := context.Background()
	if got := DebateID(ctx); got != "" {
		t.Errorf("DebateID(background) = %q, want empty", got)
	}
	ctx = WithDebateID(ctx, "d-123")
	if got := DebateID(ctx); got != "d-123" {
		t.Errorf("DebateID = %q, want d-123", got)
	}
}

func TestLogger_IncludesTraceAndDebateID(t *testing.T) {
	buf := captureDefaultLogger(t)
	tp, _ := newTestTracerProvider(t)

	ctx, span := tp.Tracer("test").Start(context.Background(), "log-test")
	defer span.End()
	ctx = WithDebateID(ctx, "d-456")

	Logger(ctx).Info("test message")

	logged := buf.String()
	for _, want := range []string{"trace_id=", "span_id=", "debate_id=d-456"} {
		if !strings.Contains(logged, want) {
			t.Errorf("log output missing %q, got: %s", want, logged)
		}
	}
}

func TestLogger_NoSpan(t *testing.T) {
	buf := captureDefaultLogger(t)

	Logger(context.Background()).Info("test message")

	logged := buf.String()
	if strings.Contains(logged, "trace_id") || strings.Contains(logged, "debate_id") {
		t.Errorf("log output should not contain trace_id or debate_id, got: %s", logged)
	}
}
