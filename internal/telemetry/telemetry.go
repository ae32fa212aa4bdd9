// Package telemetry wires the shell's metric instruments to an OTLP/HTTP
// collector.
package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
)

const (
	serviceName    = "vfat"
	exportInterval = 10 * time.Second
)

// Shutdown flushes pending metrics and stops the exporter.
type Shutdown func(ctx context.Context) error

// Setup returns a MeterProvider that pushes to endpoint (host:port, plain
// HTTP) every ten seconds and once more on shutdown. An empty endpoint
// yields a no-op provider.
func Setup(ctx context.Context, endpoint string) (metric.MeterProvider, Shutdown, error) {
	if endpoint == "" {
		return noop.NewMeterProvider(), func(context.Context) error { return nil }, nil
	}

	exp, err := otlpmetrichttp.New(ctx,
		otlpmetrichttp.WithEndpoint(endpoint),
		otlpmetrichttp.WithInsecure(),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("creating otlp exporter: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exp, sdkmetric.WithInterval(exportInterval))),
		sdkmetric.WithResource(resource.NewSchemaless(attribute.String("service.name", serviceName))),
	)

	return mp, mp.Shutdown, nil
}
