package engine_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/longtail/internal/engine"
)

func TestNewLivenessGauge_StartsAtOne(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()

	g, err := engine.NewLivenessGauge(reg)
	require.NoError(t, err)

	require.Equal(t, 1.0, gaugeValue(t, reg))

	g.Down()
	require.Equal(t, 0.0, gaugeValue(t, reg))
}

func gaugeValue(t *testing.T, reg *prometheus.Registry) float64 {
	t.Helper()

	families, err := reg.Gather()
	require.NoError(t, err)

	for _, fam := range families {
		if fam.GetName() != "longtail_engine_up" {
			continue
		}

		metrics := fam.GetMetric()
		require.NotEmpty(t, metrics)

		return metrics[0].GetGauge().GetValue()
	}

	t.Fatalf("metric longtail_engine_up not found")

	return 0
}
