package telemetry_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stockplan/backend/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	out := make(map[string]metricdata.Metrics)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func sumOf(t *testing.T, m metricdata.Metrics) int64 {
	t.Helper()
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "metric %s is not an int64 sum", m.Name)
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func TestPlanMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	pm, err := telemetry.NewPlanMetrics(provider.Meter("test"))
	require.NoError(t, err)

	ctx := context.Background()
	tenantID, planID := uuid.New(), uuid.New()
	pm.RecordSuccess(ctx, tenantID, planID, 120*time.Millisecond, 7, 2, 1)
	pm.RecordSuccess(ctx, tenantID, planID, 80*time.Millisecond, 3, 0, 0)
	pm.RecordFailure(ctx, tenantID, 5*time.Millisecond, "INVALID_QUANTITY")

	metrics := collect(t, reader)
	assert.Equal(t, int64(3), sumOf(t, metrics["plan_recalculations_total"]))
	assert.Equal(t, int64(10), sumOf(t, metrics["plan_lines_emitted"]))

	gauge, ok := metrics["plan_late_lines"].Data.(metricdata.Gauge[int64])
	require.True(t, ok)
	require.Len(t, gauge.DataPoints, 1)
	assert.Equal(t, int64(0), gauge.DataPoints[0].Value)

	hist, ok := metrics["plan_recalculation_duration_seconds"].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	var count uint64
	for _, dp := range hist.DataPoints {
		count += dp.Count
	}
	assert.Equal(t, uint64(3), count)
}

func TestPlanMetrics_NilMeter(t *testing.T) {
	pm, err := telemetry.NewPlanMetrics(nil)
	assert.ErrorIs(t, err, telemetry.ErrMeterNil)
	assert.Nil(t, pm)

	// a nil recorder is a no-op
	assert.NotPanics(t, func() {
		pm.RecordSuccess(context.Background(), uuid.New(), uuid.New(), time.Second, 1, 0, 0)
		pm.RecordFailure(context.Background(), uuid.New(), time.Second, "X")
	})
}

func TestNewMeterProvider_Disabled(t *testing.T) {
	mp, err := telemetry.NewMeterProvider(context.Background(), telemetry.MetricsConfig{}, nil)
	require.NoError(t, err)

	assert.False(t, mp.IsEnabled())
	assert.NotNil(t, mp.Meter("test"))
	assert.NoError(t, mp.Shutdown(context.Background()))
}

func TestHistogram_CustomBoundaries(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	h, err := telemetry.NewHistogram(provider.Meter("test"), telemetry.HistogramOpts{
		Name:       "custom_seconds",
		Unit:       "s",
		Boundaries: []float64{1, 2},
	})
	require.NoError(t, err)
	h.RecordDuration(context.Background(), 1500*time.Millisecond)

	hist := collect(t, reader)["custom_seconds"].Data.(metricdata.Histogram[float64])
	require.Len(t, hist.DataPoints, 1)
	assert.Equal(t, []float64{1, 2}, hist.DataPoints[0].Bounds)
	assert.Equal(t, []uint64{0, 1, 0}, hist.DataPoints[0].BucketCounts)
}
