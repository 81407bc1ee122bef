// Package observe provides the OpenTelemetry metrics and tracing used by the
// annotation backend. A Prometheus exporter bridge is installed by
// [InitProvider] so metrics can be scraped from /metrics. Tests should build
// their own [Metrics] with [NewMetrics] and a ManualReader.
package observe

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "furiganalyrics"

// Metrics holds all metric instruments. The OTel types handle their own
// synchronisation.
type Metrics struct {
	// AnnotateDuration tracks the latency of a whole annotation request.
	AnnotateDuration metric.Float64Histogram

	// Lines counts annotated lines, blank ones included.
	Lines metric.Int64Counter

	// Tokens counts emitted tokens.
	Tokens metric.Int64Counter

	// CacheLookups counts per-line cache lookups. Use with attribute
	// result=hit|miss.
	CacheLookups metric.Int64Counter

	// HTTPRequestDuration tracks HTTP request processing time by method,
	// route and status.
	HTTPRequestDuration metric.Float64Histogram
}

// latencyBuckets are histogram boundaries in seconds.
var latencyBuckets = []float64{
	0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5,
}

// NewMetrics creates all instruments on mp.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.AnnotateDuration, err = m.Float64Histogram("furigana.annotate.duration",
		metric.WithDescription("Latency of annotating a lyrics request."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.Lines, err = m.Int64Counter("furigana.lines",
		metric.WithDescription("Total annotated lines."),
	); err != nil {
		return nil, err
	}
	if met.Tokens, err = m.Int64Counter("furigana.tokens",
		metric.WithDescription("Total annotated tokens."),
	); err != nil {
		return nil, err
	}
	if met.CacheLookups, err = m.Int64Counter("furigana.cache.lookups",
		metric.WithDescription("Per-line cache lookups by result."),
	); err != nil {
		return nil, err
	}
	if met.HTTPRequestDuration, err = m.Float64Histogram("furigana.http.request.duration",
		metric.WithDescription("HTTP request latency by method, route and status."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	return met, nil
}

var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level Metrics built on the global
// MeterProvider. It panics if instrument creation fails.
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

// RecordCacheLookup counts one cache lookup.
func (m *Metrics) RecordCacheLookup(ctx context.Context, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookups.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
}

// RecordHTTPRequest records the duration of one served request.
func (m *Metrics) RecordHTTPRequest(ctx context.Context, method, route string, status int, seconds float64) {
	m.HTTPRequestDuration.Record(ctx, seconds,
		metric.WithAttributes(
			attribute.String("method", method),
			attribute.String("route", route),
			attribute.Int("status", status),
		),
	)
}
