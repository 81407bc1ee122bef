package observe

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// newTestMetrics returns Metrics backed by a ManualReader.
func newTestMetrics(t *testing.T) (*Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	m, err := NewMetrics(mp)
	require.NoError(t, err)
	return m, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	return rm
}

func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

func TestAnnotateDurationHistogram(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()
	m.AnnotateDuration.Record(ctx, 0.012)
	m.AnnotateDuration.Record(ctx, 0.3)

	met := findMetric(collect(t, reader), "furigana.annotate.duration")
	require.NotNil(t, met)
	hist, ok := met.Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, hist.DataPoints, 1)
	assert.Equal(t, uint64(2), hist.DataPoints[0].Count)
}

func TestRecordCacheLookup(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()
	m.RecordCacheLookup(ctx, true)
	m.RecordCacheLookup(ctx, true)
	m.RecordCacheLookup(ctx, false)

	met := findMetric(collect(t, reader), "furigana.cache.lookups")
	require.NotNil(t, met)
	sum, ok := met.Data.(metricdata.Sum[int64])
	require.True(t, ok)

	got := map[string]int64{}
	for _, dp := range sum.DataPoints {
		v, _ := dp.Attributes.Value("result")
		got[v.AsString()] = dp.Value
	}
	assert.Equal(t, map[string]int64{"hit": 2, "miss": 1}, got)
}

func TestRecordHTTPRequest(t *testing.T) {
	m, reader := newTestMetrics(t)
	m.RecordHTTPRequest(context.Background(), "POST", "/api/furigana", 200, 0.05)

	met := findMetric(collect(t, reader), "furigana.http.request.duration")
	require.NotNil(t, met)
	hist, ok := met.Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, hist.DataPoints, 1)
	route, _ := hist.DataPoints[0].Attributes.Value("route")
	assert.Equal(t, "/api/furigana", route.AsString())
}

func TestCountersExist(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()
	m.Lines.Add(ctx, 3)
	m.Tokens.Add(ctx, 11)

	rm := collect(t, reader)
	for name, want := range map[string]int64{"furigana.lines": 3, "furigana.tokens": 11} {
		met := findMetric(rm, name)
		require.NotNil(t, met, name)
		sum, ok := met.Data.(metricdata.Sum[int64])
		require.True(t, ok, name)
		require.Len(t, sum.DataPoints, 1, name)
		assert.Equal(t, want, sum.DataPoints[0].Value, name)
	}
}
