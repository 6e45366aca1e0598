package observability

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

const meterName = "longtail"

// Providers holds the initialized observability providers for an
// engine-hosting binary. Unlike the teacher's OTLP-exporting original,
// this module's only metrics consumer is a local Prometheus scrape
// endpoint — there is no collector to ship spans or metrics to, so no
// tracer or OTLP exporter is built.
type Providers struct {
	// Meter is the named meter engine metrics are created from.
	Meter metric.Meter

	// Logger is the structured logger, with service/mode metadata and
	// trace-context injection already wired in via TracingHandler.
	Logger *slog.Logger

	// Registry is the Prometheus registry the meter's readings are
	// exported through; callers expose it at /metrics.
	Registry *prometheus.Registry

	// Shutdown releases provider resources. Safe to call even if nothing
	// needs releasing.
	Shutdown func(ctx context.Context) error
}

// Init builds a Prometheus-backed MeterProvider and a structured logger
// from cfg.
func Init(cfg Config) (Providers, error) {
	registry := prometheus.NewRegistry()

	exporter, err := promexporter.New(promexporter.WithRegisterer(registry))
	if err != nil {
		return Providers{}, fmt.Errorf("create prometheus exporter: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))

	logger := buildLogger(cfg)

	shutdown := func(ctx context.Context) error {
		if err := mp.Shutdown(ctx); err != nil {
			return fmt.Errorf("shutdown meter provider: %w", err)
		}

		return nil
	}

	return Providers{
		Meter:    mp.Meter(meterName),
		Logger:   logger,
		Registry: registry,
		Shutdown: shutdown,
	}, nil
}

func buildLogger(cfg Config) *slog.Logger {
	handlerOpts := &slog.HandlerOptions{Level: cfg.LogLevel}

	var inner slog.Handler
	if cfg.LogJSON {
		inner = slog.NewJSONHandler(os.Stderr, handlerOpts)
	} else {
		inner = slog.NewTextHandler(os.Stderr, handlerOpts)
	}

	handler := NewTracingHandler(inner, cfg.ServiceName, cfg.Environment, cfg.Mode)

	return slog.New(handler)
}
