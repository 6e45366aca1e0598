package observability

import (
	"context"

	"go.opentelemetry.io/otel/metric"
)

const (
	metricActiveTrackers    = "longtail.engine.trackers.active"
	metricEncountersClosed  = "longtail.engine.encounters.closed"
	metricPoolExhaustions   = "longtail.engine.pool.exhaustions.total"
	metricSnapshotQueueSize = "longtail.engine.snapshot.queue.depth"
)

// EngineMetrics holds the OTel instruments that observe the measurement
// engine itself: how many trackers exist, how many encounters have closed,
// how often the bin-vector pool ran dry, and how many snapshots are
// waiting on the deferred write-back ticker. None of these are touched on
// the record hot path — only encounter close reports into the counters,
// and the gauges are read through EngineGauges at collection time,
// matching the engine's zero-allocation budget for record.
type EngineMetrics struct {
	activeTrackers    metric.Int64ObservableGauge
	encountersClosed  metric.Int64Counter
	poolExhaustions   metric.Int64Counter
	snapshotQueueSize metric.Int64ObservableGauge
}

// EngineGauges supplies the current values for EngineMetrics' observable
// gauges at collection time.
type EngineGauges interface {
	ActiveTrackerCount() int64
	SnapshotQueueDepth() int64
}

// NewEngineMetrics creates the engine's metric instruments from mt and
// registers the observable-gauge callback against gauges.
func NewEngineMetrics(mt metric.Meter, gauges EngineGauges) (*EngineMetrics, error) {
	b := newMetricBuilder(mt)

	em := &EngineMetrics{
		activeTrackers:    b.gauge(metricActiveTrackers, "Number of registered trackers", "{tracker}"),
		encountersClosed:  b.counter(metricEncountersClosed, "Total encounters closed", "{encounter}"),
		poolExhaustions:   b.counter(metricPoolExhaustions, "Bin-vector pool exhaustion events", "{event}"),
		snapshotQueueSize: b.gauge(metricSnapshotQueueSize, "Snapshots pending write-back", "{snapshot}"),
	}

	if b.err != nil {
		return nil, b.err
	}

	_, err := mt.RegisterCallback(em.observe(gauges), em.activeTrackers, em.snapshotQueueSize)
	if err != nil {
		return nil, err
	}

	return em, nil
}

func (em *EngineMetrics) observe(gauges EngineGauges) metric.Callback {
	return func(_ context.Context, obs metric.Observer) error {
		obs.ObserveInt64(em.activeTrackers, gauges.ActiveTrackerCount())
		obs.ObserveInt64(em.snapshotQueueSize, gauges.SnapshotQueueDepth())

		return nil
	}
}

// RecordEncounterClosed increments the closed-encounters counter by one.
func (em *EngineMetrics) RecordEncounterClosed(ctx context.Context) {
	em.encountersClosed.Add(ctx, 1)
}

// RecordPoolExhaustion adds delta to the pool-exhaustion counter. delta is
// the number of exhaustion events observed since the last report — the
// pool itself counts cumulatively, so the engine reports the difference at
// each encounter close rather than once per event.
func (em *EngineMetrics) RecordPoolExhaustion(ctx context.Context, delta int64) {
	if delta <= 0 {
		return
	}

	em.poolExhaustions.Add(ctx, delta)
}
