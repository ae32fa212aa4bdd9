package testutil

import (
	"fmt"
	"slices"
	"strings"
)

// SeedBuilder builds deterministic byte seeds for OpGenerator without
// hand-writing raw byte sequences.
//
// The builder encodes values according to OpGenerator's byte consumption
// order. Paths may only use segments from [SegmentPool].
type SeedBuilder struct {
	cfg  OpGenConfig
	data []byte
}

// NewSeedBuilder creates a new builder for the given OpGenerator config.
func NewSeedBuilder(cfg *OpGenConfig) *SeedBuilder {
	if cfg == nil {
		panic("seed builder: cfg must not be nil")
	}

	return &SeedBuilder{cfg: *cfg}
}

// Bytes returns a copy of the built seed bytes.
func (b *SeedBuilder) Bytes() []byte {
	return append([]byte(nil), b.data...)
}

// Mkdir appends a mkdir operation.
func (b *SeedBuilder) Mkdir(path string) *SeedBuilder { return b.Op(Op{Kind: OpMkdir, Path: path}) }

// Create appends a create operation.
func (b *SeedBuilder) Create(path string) *SeedBuilder { return b.Op(Op{Kind: OpCreate, Path: path}) }

// Remove appends an rm operation.
func (b *SeedBuilder) Remove(path string) *SeedBuilder { return b.Op(Op{Kind: OpRemove, Path: path}) }

// Rmdir appends an rmdir operation.
func (b *SeedBuilder) Rmdir(path string) *SeedBuilder { return b.Op(Op{Kind: OpRmdir, Path: path}) }

// Chdir appends a cd operation.
func (b *SeedBuilder) Chdir(path string) *SeedBuilder { return b.Op(Op{Kind: OpChdir, Path: path}) }

// Format appends a format operation.
func (b *SeedBuilder) Format() *SeedBuilder { return b.Op(Op{Kind: OpFormat}) }

// List appends an ls operation.
func (b *SeedBuilder) List() *SeedBuilder { return b.Op(Op{Kind: OpList}) }

// Op appends op. Panics if the generator could not produce it under the
// builder's config.
func (b *SeedBuilder) Op(op Op) *SeedBuilder {
	b.appendKind(op.Kind)

	if !op.Kind.TakesPath() {
		return b
	}

	path := op.Path

	malformed := path != "/" && strings.HasSuffix(path, "/")
	if malformed {
		path = strings.TrimSuffix(path, "/")
	}

	abs := strings.HasPrefix(path, "/")

	var segments []string
	if rest := strings.TrimPrefix(path, "/"); rest != "" {
		segments = strings.Split(rest, "/")
	}

	if len(segments) > maxGenSegments || (!abs && len(segments) == 0) {
		panic(fmt.Sprintf("seed builder: path %q needs 1-%d segments", op.Path, maxGenSegments))
	}

	b.appendChance(abs, b.cfg.AbsoluteRate)
	b.data = append(b.data, byte(len(segments)))

	for _, seg := range segments {
		idx := slices.Index(SegmentPool, seg)
		if idx < 0 {
			panic(fmt.Sprintf("seed builder: segment %q not in pool", seg))
		}

		b.data = append(b.data, byte(idx))
	}

	b.appendChance(malformed, b.cfg.MalformedRate)

	return b
}

func (b *SeedBuilder) appendKind(kind OpKind) {
	start := 0
	for i, rate := range b.cfg.rates() {
		if OpKind(i) == kind {
			if rate == 0 {
				panic(fmt.Sprintf("seed builder: %s has rate 0", kind))
			}

			b.data = append(b.data, byte(start))

			return
		}

		start += rate
	}

	if start >= 100 {
		panic("seed builder: rates leave no room for ls")
	}

	b.data = append(b.data, byte(start))
}

// appendChance encodes a percentage roll that must come out as want.
func (b *SeedBuilder) appendChance(want bool, rate int) {
	switch {
	case want && rate <= 0:
		panic("seed builder: roll cannot succeed with rate 0")
	case !want && rate >= 100:
		panic("seed builder: roll cannot fail with rate 100")
	case want:
		b.data = append(b.data, 0)
	default:
		b.data = append(b.data, 99)
	}
}
