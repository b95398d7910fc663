package telemetry_test

import (
	"context"
	"testing"
	"time"

	"github.com/bizledger/backend/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap/zaptest"
)

func TestNewMeterProvider_Disabled(t *testing.T) {
	ctx := context.Background()
	mp, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{ServiceName: "bizledger-test"}, zaptest.NewLogger(t))
	require.NoError(t, err)

	assert.False(t, mp.IsEnabled())
	assert.NotNil(t, mp.Meter("test"))
	assert.NoError(t, mp.ForceFlush(ctx))
	assert.NoError(t, mp.Shutdown(ctx))
}

func TestCounter(t *testing.T) {
	reader, mp := newTestMeter(t)
	ctx := context.Background()

	c, err := telemetry.NewCounter(mp.Meter("test"), "requests_total", "Requests", "{request}")
	require.NoError(t, err)
	c.Inc(ctx, telemetry.AttrHTTPRoute.String("/api/v1/grvs"))
	c.Add(ctx, 4, telemetry.AttrHTTPRoute.String("/api/v1/grvs"))
	c.Inc(ctx, telemetry.AttrHTTPRoute.String("/health"))

	m, ok := findMetric(collect(t, reader), "requests_total")
	require.True(t, ok)
	assert.Equal(t, int64(5), sumWhere(t, m, "http.route", "/api/v1/grvs"))
	assert.Equal(t, int64(1), sumWhere(t, m, "http.route", "/health"))
}

func TestHistogram_RecordDuration(t *testing.T) {
	reader, mp := newTestMeter(t)

	h, err := telemetry.NewHistogram(mp.Meter("test"), telemetry.HistogramOpts{
		Name:       "latency_seconds",
		Unit:       "s",
		Boundaries: telemetry.HTTPDurationBuckets,
	})
	require.NoError(t, err)
	h.RecordDuration(context.Background(), 150*time.Millisecond)
	h.Record(context.Background(), 2)

	m, ok := findMetric(collect(t, reader), "latency_seconds")
	require.True(t, ok)
	hist := m.Data.(metricdata.Histogram[float64])
	require.Len(t, hist.DataPoints, 1)
	dp := hist.DataPoints[0]
	assert.Equal(t, uint64(2), dp.Count)
	assert.InDelta(t, 2.15, dp.Sum, 1e-9)
	assert.Equal(t, telemetry.HTTPDurationBuckets, dp.Bounds)
}

func TestGauges(t *testing.T) {
	reader, mp := newTestMeter(t)
	ctx := context.Background()

	g, err := telemetry.NewGauge(mp.Meter("test"), "items", "", "{item}")
	require.NoError(t, err)
	fg, err := telemetry.NewFloatGauge(mp.Meter("test"), "balance", "", "{currency}")
	require.NoError(t, err)

	g.Record(ctx, 10)
	g.Record(ctx, 7)
	fg.Record(ctx, 4600.5)

	rm := collect(t, reader)
	m, ok := findMetric(rm, "items")
	require.True(t, ok)
	assert.Equal(t, int64(7), m.Data.(metricdata.Gauge[int64]).DataPoints[0].Value)

	m, ok = findMetric(rm, "balance")
	require.True(t, ok)
	assert.Equal(t, 4600.5, m.Data.(metricdata.Gauge[float64]).DataPoints[0].Value)
}
