// Package observability wires structured logging and OpenTelemetry metrics
// for binaries built on top of the engine, independent of how the engine
// itself is embedded (CLI demo, future host bindings).
package observability

import "log/slog"

// AppMode identifies how the binary hosting the engine was launched. It is
// attached to every log line so output from different launch modes stays
// distinguishable in aggregated logs.
type AppMode string

const (
	// ModeCLI is a single command invocation.
	ModeCLI AppMode = "cli"
	// ModeDemo labels a local engine demo run. longtailctl does not use it:
	// every verb, teststart and teststop included, runs in ModeCLI.
	ModeDemo AppMode = "demo"
)

const (
	defaultServiceName = "longtail"
)

// Config holds the logging and metrics configuration for an engine-hosting
// binary.
type Config struct {
	// ServiceName identifies this binary in logs and the OTel resource.
	ServiceName string

	// Environment is the deployment environment, e.g. "dev", "ci". Empty
	// omits the attribute.
	Environment string

	// Mode identifies how the binary was launched.
	Mode AppMode

	// LogLevel controls the minimum slog severity.
	LogLevel slog.Level

	// LogJSON enables JSON-formatted log output; otherwise text.
	LogJSON bool
}

// DefaultConfig returns a Config with sensible defaults for zero-config
// startup.
func DefaultConfig() Config {
	return Config{
		ServiceName: defaultServiceName,
		Mode:        ModeCLI,
		LogLevel:    slog.LevelInfo,
	}
}
