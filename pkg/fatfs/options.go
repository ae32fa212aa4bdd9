package fatfs

import (
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// Defaults and limits for [Options].
const (
	DefaultMaxEntries  = 20
	DefaultMaxDepth    = 20
	DefaultMaxSegments = 16

	// MaxEntriesLimit keeps a full directory's length within a record's
	// uint16 length field.
	MaxEntriesLimit = maxContentLen / EntrySize
)

// Options configures [Mount]. Zero values select the defaults.
type Options struct {
	// MaxEntries bounds the number of records per directory.
	// Range 1..[MaxEntriesLimit]; default 20.
	MaxEntries int

	// MaxDepth bounds the directory stack, root included. Default 20.
	MaxDepth int

	// MaxSegments bounds the number of segments in a path. Default 16.
	MaxSegments int

	// Now stamps new records. Default [time.Now].
	Now func() time.Time

	// Logger receives debug events. Default discards.
	Logger *slog.Logger

	// MeterProvider creates the block and command counters.
	// Default is the global provider.
	MeterProvider metric.MeterProvider
}

func (o Options) withDefaults() (Options, error) {
	if o.MaxEntries == 0 {
		o.MaxEntries = DefaultMaxEntries
	}

	if o.MaxDepth == 0 {
		o.MaxDepth = DefaultMaxDepth
	}

	if o.MaxSegments == 0 {
		o.MaxSegments = DefaultMaxSegments
	}

	if o.MaxEntries < 1 || o.MaxEntries > MaxEntriesLimit {
		return o, fmt.Errorf("%w: MaxEntries %d not in [1,%d]", ErrInvalidInput, o.MaxEntries, MaxEntriesLimit)
	}

	if o.MaxDepth < 1 {
		return o, fmt.Errorf("%w: MaxDepth %d must be positive", ErrInvalidInput, o.MaxDepth)
	}

	if o.MaxSegments < 1 {
		return o, fmt.Errorf("%w: MaxSegments %d must be positive", ErrInvalidInput, o.MaxSegments)
	}

	if o.Now == nil {
		o.Now = time.Now
	}

	if o.Logger == nil {
		o.Logger = slog.New(slog.DiscardHandler)
	}

	if o.MeterProvider == nil {
		o.MeterProvider = otel.GetMeterProvider()
	}

	return o, nil
}
