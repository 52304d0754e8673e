// Package observe provides application-wide observability primitives for
// arguebot: OpenTelemetry metrics, tracing, trace-aware structured logging,
// and HTTP middleware for the observability endpoint.
//
// Metrics are recorded through the OpenTelemetry Metrics API. A Prometheus
// exporter bridge is available via [InitProvider] so that metrics can be
// scraped from the /metrics endpoint. A package-level default [Metrics]
// instance ([DefaultMetrics]) is provided for convenience; tests should use
// [NewMetrics] with a custom [metric.MeterProvider] to avoid cross-test
// pollution.
package observe

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all arguebot metrics.
const meterName = "github.com/MrWong99/arguebot"

// Metrics holds all OpenTelemetry metric instruments for the application.
// All fields are safe for concurrent use.
type Metrics struct {
	// --- Latency histograms ---

	// TurnDuration tracks the latency of one debate turn, from invocation to
	// the shaped reply. Use with attribute.String("speaker", ...).
	TurnDuration metric.Float64Histogram

	// HTTPRequestDuration tracks observability endpoint request time. Use with
	// attributes: attribute.String("method", ...), attribute.String("path", ...)
	HTTPRequestDuration metric.Float64Histogram

	// --- Counters ---

	// ProviderRequests counts model invocations. Use with attributes:
	//   attribute.String("model", ...), attribute.String("status", ...)
	ProviderRequests metric.Int64Counter

	// ProviderErrors counts failed model invocations. Use with attribute:
	//   attribute.String("model", ...)
	ProviderErrors metric.Int64Counter

	// ProviderTokens counts tokens reported by the backend. Use with
	// attributes: attribute.String("model", ...), attribute.String("kind", ...)
	// where kind is "prompt" or "completion". The exec backend reports none.
	ProviderTokens metric.Int64Counter

	// Turns counts completed debate turns. Use with attribute:
	//   attribute.String("speaker", ...)
	Turns metric.Int64Counter

	// PaddedReplies counts replies that were too short and received the
	// continuation instruction.
	PaddedReplies metric.Int64Counter

	// --- Gauges ---

	// TranscriptTokens reports the current transcript token estimate.
	TranscriptTokens metric.Int64Gauge
}

// latencyBuckets defines histogram bucket boundaries (in seconds) sized for
// local model generation, which takes seconds to minutes per turn.
var latencyBuckets = []float64{
	0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	// Histograms.
	if met.TurnDuration, err = m.Float64Histogram("arguebot.turn.duration",
		metric.WithDescription("Latency of one debate turn by speaker."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.HTTPRequestDuration, err = m.Float64Histogram("arguebot.http.request.duration",
		metric.WithDescription("HTTP request latency by method and path."),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	// Counters.
	if met.ProviderRequests, err = m.Int64Counter("arguebot.provider.requests",
		metric.WithDescription("Total model invocations by model and status."),
	); err != nil {
		return nil, err
	}
	if met.ProviderErrors, err = m.Int64Counter("arguebot.provider.errors",
		metric.WithDescription("Total failed model invocations by model."),
	); err != nil {
		return nil, err
	}
	if met.ProviderTokens, err = m.Int64Counter("arguebot.provider.tokens",
		metric.WithDescription("Tokens reported by the model backend by model and kind."),
		metric.WithUnit("{token}"),
	); err != nil {
		return nil, err
	}
	if met.Turns, err = m.Int64Counter("arguebot.turns",
		metric.WithDescription("Total completed debate turns by speaker."),
	); err != nil {
		return nil, err
	}
	if met.PaddedReplies, err = m.Int64Counter("arguebot.replies.padded",
		metric.WithDescription("Replies shorter than the sentence limit that were padded with the continuation instruction."),
	); err != nil {
		return nil, err
	}

	// Gauges.
	if met.TranscriptTokens, err = m.Int64Gauge("arguebot.transcript.tokens",
		metric.WithDescription("Estimated token count of the debate transcript."),
	); err != nil {
		return nil, err
	}

	return met, nil
}

var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level [Metrics] instance, creating it on
// first call using [otel.GetMeterProvider]. Panics if instrument creation
// fails (should not happen with the global provider).
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// Attr is a convenience alias for [attribute.String] to reduce verbosity at
// call sites.
func Attr(key, value string) attribute.KeyValue {
	return attribute.String(key, value)
}

// RecordProviderRequest records one model invocation with its outcome
// ("ok" or "error").
func (m *Metrics) RecordProviderRequest(ctx context.Context, model, status string) {
	m.ProviderRequests.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("model", model),
			attribute.String("status", status),
		),
	)
}

// RecordProviderError records one failed model invocation.
func (m *Metrics) RecordProviderError(ctx context.Context, model string) {
	m.ProviderErrors.Add(ctx, 1,
		metric.WithAttributes(attribute.String("model", model)),
	)
}

// RecordProviderTokens adds the prompt and completion token counts of one
// call. Zero counts are skipped.
func (m *Metrics) RecordProviderTokens(ctx context.Context, model string, prompt, completion int) {
	if prompt > 0 {
		m.ProviderTokens.Add(ctx, int64(prompt), metric.WithAttributes(Attr("model", model), Attr("kind", "prompt")))
	}
	if completion > 0 {
		m.ProviderTokens.Add(ctx, int64(completion), metric.WithAttributes(Attr("model", model), Attr("kind", "completion")))
	}
}

// RecordTurn records a completed turn and its latency in seconds.
func (m *Metrics) RecordTurn(ctx context.Context, speaker string, seconds float64) {
	attrs := metric.WithAttributes(attribute.String("speaker", speaker))
	m.Turns.Add(ctx, 1, attrs)
	m.TurnDuration.Record(ctx, seconds, attrs)
}
