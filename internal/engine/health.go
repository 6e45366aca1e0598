package engine

import "github.com/prometheus/client_golang/prometheus"

// LivenessGauge is a Prometheus gauge set to 1 for as long as the engine
// process is alive, mirroring internal/observability/health.go's
// always-200 /healthz contract in metric form so a scrape-based health
// check and the HTTP one agree.
type LivenessGauge struct {
	gauge prometheus.Gauge
}

// NewLivenessGauge registers a gauge named longtail_engine_up on reg and
// sets it to 1.
func NewLivenessGauge(reg prometheus.Registerer) (*LivenessGauge, error) {
	gauge := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "longtail_engine_up",
		Help: "1 while the longtail engine process is alive.",
	})

	if err := reg.Register(gauge); err != nil {
		return nil, err //nolint:wrapcheck
	}

	gauge.Set(1)

	return &LivenessGauge{gauge: gauge}, nil
}

// Down sets the gauge to 0, used on graceful shutdown so a scrape landing
// between the shutdown signal and process exit reports accurately.
func (l *LivenessGauge) Down() {
	l.gauge.Set(0)
}
