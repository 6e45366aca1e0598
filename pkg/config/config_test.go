package config_test

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/longtail/pkg/config"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadConfig("")
	require.NoError(t, err)

	assert.InDelta(t, 0.05, cfg.Sketch.Alpha, 1e-9)
	assert.Equal(t, 10, cfg.Sketch.OutlierCapacity)
	assert.Equal(t, 100, cfg.Pool.Prealloc)
	assert.Equal(t, 50, cfg.Snapshot.Retention)
	assert.Equal(t, time.Second, cfg.Snapshot.TickerInterval)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadConfigFromFile(t *testing.T) {
	t.Parallel()

	configContent := `
sketch:
  alpha: 0.1
  outlier_capacity: 25

pool:
  prealloc: 200

snapshot:
  retention: 20
  ticker_interval: "2s"
`

	tmpDir := t.TempDir()

	tmpFile, err := os.CreateTemp(tmpDir, "test-config-*.yaml")
	require.NoError(t, err)

	_, writeErr := tmpFile.WriteString(configContent)
	require.NoError(t, writeErr)

	tmpFile.Close()

	cfg, loadErr := config.LoadConfig(tmpFile.Name())
	require.NoError(t, loadErr)

	assert.InDelta(t, 0.1, cfg.Sketch.Alpha, 1e-9)
	assert.Equal(t, 25, cfg.Sketch.OutlierCapacity)
	assert.Equal(t, 200, cfg.Pool.Prealloc)
	assert.Equal(t, 20, cfg.Snapshot.Retention)
	assert.Equal(t, 2*time.Second, cfg.Snapshot.TickerInterval)
}

func TestLoadConfigFromEnvironment(t *testing.T) {
	t.Setenv("LONGTAIL_SKETCH_ALPHA", "0.2")
	t.Setenv("LONGTAIL_SKETCH_OUTLIER_CAPACITY", "15")
	t.Setenv("LONGTAIL_SNAPSHOT_RETENTION", "5")

	cfg, err := config.LoadConfig("")
	require.NoError(t, err)

	assert.InDelta(t, 0.2, cfg.Sketch.Alpha, 1e-9)
	assert.Equal(t, 15, cfg.Sketch.OutlierCapacity)
	assert.Equal(t, 5, cfg.Snapshot.Retention)
}

func TestValidateConfig_DefaultsPass(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadConfig("")
	require.NoError(t, err)
	assert.NotNil(t, cfg)
}

func TestValidateConfig_RejectsOutOfRangeValues(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"sketch.alpha":             "0",
		"sketch.outlier_capacity":  "0",
		"pool.prealloc":            "-1",
		"snapshot.retention":       "0",
		"snapshot.ticker_interval": "0s",
	}

	for field, badValue := range tests {
		field, badValue := field, badValue

		t.Run(field, func(t *testing.T) {
			t.Parallel()

			tmpDir := t.TempDir()

			tmpFile, err := os.CreateTemp(tmpDir, "test-invalid-*.yaml")
			require.NoError(t, err)

			content := toYAML(field, badValue)

			_, writeErr := tmpFile.WriteString(content)
			require.NoError(t, writeErr)
			tmpFile.Close()

			_, loadErr := config.LoadConfig(tmpFile.Name())
			require.Error(t, loadErr)
		})
	}
}

func toYAML(dottedField, value string) string {
	switch dottedField {
	case "sketch.alpha":
		return "sketch:\n  alpha: " + value + "\n"
	case "sketch.outlier_capacity":
		return "sketch:\n  outlier_capacity: " + value + "\n"
	case "pool.prealloc":
		return "pool:\n  prealloc: " + value + "\n"
	case "snapshot.retention":
		return "snapshot:\n  retention: " + value + "\n"
	case "snapshot.ticker_interval":
		return "snapshot:\n  ticker_interval: \"" + value + "\"\n"
	default:
		return ""
	}
}

func TestTickerIntervalParsing(t *testing.T) {
	t.Parallel()

	configContent := `
snapshot:
  ticker_interval: "500ms"
`

	tmpDir := t.TempDir()

	tmpFile, err := os.CreateTemp(tmpDir, "test-duration-*.yaml")
	require.NoError(t, err)

	_, writeErr := tmpFile.WriteString(configContent)
	require.NoError(t, writeErr)

	tmpFile.Close()

	cfg, loadErr := config.LoadConfig(tmpFile.Name())
	require.NoError(t, loadErr)

	assert.Equal(t, 500*time.Millisecond, cfg.Snapshot.TickerInterval)
}
