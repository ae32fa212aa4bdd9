package fatfs

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/calvinalkan/vfat/pkg/fatfs"

// Instrument names.
const (
	MetricBlocksAllocated = "vfat.blocks.allocated"
	MetricBlocksFreed     = "vfat.blocks.freed"
	MetricCommands        = "vfat.commands"
)

type metrics struct {
	allocated metric.Int64Counter
	freed     metric.Int64Counter
	commands  metric.Int64Counter
}

func newMetrics(mp metric.MeterProvider) (*metrics, error) {
	m := mp.Meter(meterName)

	allocated, err := m.Int64Counter(MetricBlocksAllocated,
		metric.WithDescription("Blocks taken from the free list"),
		metric.WithUnit("{block}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", MetricBlocksAllocated, err)
	}

	freed, err := m.Int64Counter(MetricBlocksFreed,
		metric.WithDescription("Blocks returned to the free list"),
		metric.WithUnit("{block}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", MetricBlocksFreed, err)
	}

	commands, err := m.Int64Counter(MetricCommands,
		metric.WithDescription("File system operations by command and outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", MetricCommands, err)
	}

	return &metrics{allocated: allocated, freed: freed, commands: commands}, nil
}

func (m *metrics) blocksAllocated(n int) {
	m.allocated.Add(context.Background(), int64(n))
}

func (m *metrics) blocksFreed(n int) {
	m.freed.Add(context.Background(), int64(n))
}

func (m *metrics) command(name string, err error) {
	m.commands.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("command", name),
		attribute.String("status", statusStr(err)),
	))
}

// statusStr returns "ok" or "error" depending on whether err is nil.
func statusStr(err error) string {
	if err != nil {
		return "error"
	}

	return "ok"
}
