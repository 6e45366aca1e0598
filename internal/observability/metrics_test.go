package observability_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/Sumatoshi-tech/longtail/internal/observability"
	pkgobservability "github.com/Sumatoshi-tech/longtail/pkg/observability"
)

type fakeGauges struct {
	active int64
	queue  int64
}

func (f fakeGauges) ActiveTrackerCount() int64 { return f.active }
func (f fakeGauges) SnapshotQueueDepth() int64 { return f.queue }

func setupTestMeter(t *testing.T, gauges observability.EngineGauges) (*observability.EngineMetrics, *sdkmetric.ManualReader) {
	t.Helper()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	meter := mp.Meter("test")

	em, err := observability.NewEngineMetrics(meter, gauges)
	require.NoError(t, err)

	return em, reader
}

func collectMetrics(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()

	var rm metricdata.ResourceMetrics

	err := reader.Collect(context.Background(), &rm)
	require.NoError(t, err)

	return rm
}

func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for idx := range rm.ScopeMetrics {
		for midx := range rm.ScopeMetrics[idx].Metrics {
			if rm.ScopeMetrics[idx].Metrics[midx].Name == name {
				return &rm.ScopeMetrics[idx].Metrics[midx]
			}
		}
	}

	return nil
}

func TestEngineMetrics_ActiveTrackerGauge_ReflectsCallback(t *testing.T) {
	t.Parallel()

	em, reader := setupTestMeter(t, fakeGauges{active: 7, queue: 2})
	_ = em

	rm := collectMetrics(t, reader)

	active := findMetric(rm, "longtail.engine.trackers.active")
	require.NotNil(t, active)

	gauge, ok := active.Data.(metricdata.Gauge[int64])
	require.True(t, ok)
	require.NotEmpty(t, gauge.DataPoints)
	assert.Equal(t, int64(7), gauge.DataPoints[0].Value)
}

func TestEngineMetrics_SnapshotQueueGauge_ReflectsCallback(t *testing.T) {
	t.Parallel()

	em, reader := setupTestMeter(t, fakeGauges{active: 1, queue: 3})
	_ = em

	rm := collectMetrics(t, reader)

	queue := findMetric(rm, "longtail.engine.snapshot.queue.depth")
	require.NotNil(t, queue)

	gauge, ok := queue.Data.(metricdata.Gauge[int64])
	require.True(t, ok)
	require.NotEmpty(t, gauge.DataPoints)
	assert.Equal(t, int64(3), gauge.DataPoints[0].Value)
}

func TestEngineMetrics_RecordEncounterClosed_IncrementsCounter(t *testing.T) {
	t.Parallel()

	em, reader := setupTestMeter(t, fakeGauges{})
	ctx := context.Background()

	em.RecordEncounterClosed(ctx)
	em.RecordEncounterClosed(ctx)

	rm := collectMetrics(t, reader)

	closed := findMetric(rm, "longtail.engine.encounters.closed")
	require.NotNil(t, closed)

	sum, ok := closed.Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.NotEmpty(t, sum.DataPoints)
	assert.Equal(t, int64(2), sum.DataPoints[0].Value)
}

func TestEngineMetrics_RecordPoolExhaustion_AddsDelta(t *testing.T) {
	t.Parallel()

	em, reader := setupTestMeter(t, fakeGauges{})
	ctx := context.Background()

	em.RecordPoolExhaustion(ctx, 3)
	em.RecordPoolExhaustion(ctx, 0) // no-op

	rm := collectMetrics(t, reader)

	exhausted := findMetric(rm, "longtail.engine.pool.exhaustions.total")
	require.NotNil(t, exhausted)

	sum, ok := exhausted.Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.NotEmpty(t, sum.DataPoints)
	assert.Equal(t, int64(3), sum.DataPoints[0].Value)
}

func TestNewEngineMetrics_WithInitProviders(t *testing.T) {
	t.Parallel()

	cfg := pkgobservability.DefaultConfig()

	providers, err := pkgobservability.Init(cfg)
	require.NoError(t, err)

	t.Cleanup(func() { require.NoError(t, providers.Shutdown(context.Background())) })

	em, err := observability.NewEngineMetrics(providers.Meter, fakeGauges{})
	require.NoError(t, err)
	assert.NotNil(t, em)

	em.RecordEncounterClosed(context.Background())
}
