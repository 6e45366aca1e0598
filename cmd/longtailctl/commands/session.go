// Package commands implements the longtailctl CLI verbs: status, enable,
// disable, teststart, teststop. Each verb is self-contained and prints
// human-readable diagnostics; status, teststart and teststop load
// configuration and build a fresh Engine for their one action, while
// enable and disable only print a confirmation. A real host keeps one Engine alive for the
// life of the process; this binary exists to demo and exercise the engine
// locally, so each invocation's Engine starts cold.
package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/Sumatoshi-tech/longtail/internal/engine"
	"github.com/Sumatoshi-tech/longtail/pkg/config"
	"github.com/Sumatoshi-tech/longtail/pkg/observability"
	"github.com/Sumatoshi-tech/longtail/pkg/persist"
	"github.com/Sumatoshi-tech/longtail/pkg/store"
)

// ConfigPath is set by the root command's persistent --config flag.
var ConfigPath string

// newEngine loads configuration from ConfigPath (or defaults) and builds a
// fresh Engine wired to a text logger on stderr.
func newEngine() (*engine.Engine, *slog.Logger, error) {
	cfg, err := config.LoadConfig(ConfigPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	providers, err := observability.Init(observability.Config{
		ServiceName: "longtailctl",
		Mode:        observability.ModeCLI,
		LogLevel:    slog.LevelInfo,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("init observability: %w", err)
	}

	eng, err := engine.New(engine.Params{
		Config:   *cfg,
		Codec:    store.NewCodec(persist.NewJSONCodec()),
		Logger:   providers.Logger,
		Registry: providers.Registry,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("build engine: %w", err)
	}

	return eng, providers.Logger, nil
}

func printf(format string, args ...any) {
	fmt.Fprintf(os.Stdout, format, args...)
}
