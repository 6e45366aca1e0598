package commands

import (
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/longtail/pkg/config"
)

// NewStatusCommand reports the engine's effective configuration and a
// freshly-built instance's resting footprint. It does not require an
// active encounter.
func NewStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show engine configuration and resting state",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := config.LoadConfig(ConfigPath)
			if err != nil {
				return err //nolint:wrapcheck
			}

			printf("longtail engine status\n")
			printf("  sketch.alpha:            %.3f\n", cfg.Sketch.Alpha)
			printf("  sketch.outlier_capacity: %d\n", cfg.Sketch.OutlierCapacity)
			printf("  pool.prealloc:           %d vectors\n", cfg.Pool.Prealloc)
			printf("  snapshot.retention:      %d recordings\n", cfg.Snapshot.Retention)
			printf("  snapshot.ticker_interval: %s\n", cfg.Snapshot.TickerInterval)
			printf("  encounter:               idle\n")

			eng, _, err := newEngine()
			if err != nil {
				return err //nolint:wrapcheck
			}

			printf("  active trackers:         %d\n", eng.ActiveTrackerCount())
			printf("  recordings stored:       %d\n", len(eng.Recordings()))
			printf("  pool footprint:          %s\n", humanize.Bytes(eng.PoolFootprintBytes()))

			return nil
		},
	}
}
