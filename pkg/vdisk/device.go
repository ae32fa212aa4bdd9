// Package vdisk provides the block device used by the simulated file system
// and the host image that backs it.
//
// A [Device] is a flat array of fixed-size blocks with no semantics of its
// own. [Memory] is the in-memory implementation; [Image] wraps a Memory
// loaded wholesale from a host file and saved wholesale on request.
package vdisk

import "fmt"

// Default geometry of the simulated disk.
const (
	DefaultBlockSize  = 1024
	DefaultBlockCount = 1000
)

// Geometry describes the shape of a device.
type Geometry struct {
	BlockSize  int
	BlockCount int
}

// DefaultGeometry returns the 1000 x 1024 byte disk.
func DefaultGeometry() Geometry {
	return Geometry{BlockSize: DefaultBlockSize, BlockCount: DefaultBlockCount}
}

// Size returns the total byte size of a device with this geometry.
func (g Geometry) Size() int {
	return g.BlockSize * g.BlockCount
}

func (g Geometry) validate() error {
	if g.BlockSize <= 0 || g.BlockCount <= 0 {
		return fmt.Errorf("vdisk: invalid geometry %dx%d", g.BlockCount, g.BlockSize)
	}

	return nil
}

// Device is the block interface consumed by the file system core.
//
// ReadBlock returns a copy of the block; callers may modify it freely.
// WriteBlock requires len(data) == BlockSize().
type Device interface {
	ReadBlock(i int) ([]byte, error)
	WriteBlock(i int, data []byte) error
	BlockCount() int
	BlockSize() int
}

// Memory is a [Device] backed by one contiguous byte slice.
//
// Not safe for concurrent use.
type Memory struct {
	geo  Geometry
	data []byte
}

// NewMemory returns a zeroed device.
func NewMemory(geo Geometry) (*Memory, error) {
	if err := geo.validate(); err != nil {
		return nil, err
	}

	return &Memory{geo: geo, data: make([]byte, geo.Size())}, nil
}

// MemoryFromBytes returns a device over a copy of data.
// Returns [ErrImageSize] if len(data) does not match geo.
func MemoryFromBytes(geo Geometry, data []byte) (*Memory, error) {
	if err := geo.validate(); err != nil {
		return nil, err
	}

	if len(data) != geo.Size() {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrImageSize, len(data), geo.Size())
	}

	buf := make([]byte, len(data))
	copy(buf, data)

	return &Memory{geo: geo, data: buf}, nil
}

// ReadBlock implements [Device].
func (m *Memory) ReadBlock(i int) ([]byte, error) {
	off, err := m.offset(i)
	if err != nil {
		return nil, err
	}

	out := make([]byte, m.geo.BlockSize)
	copy(out, m.data[off:off+m.geo.BlockSize])

	return out, nil
}

// WriteBlock implements [Device].
func (m *Memory) WriteBlock(i int, data []byte) error {
	off, err := m.offset(i)
	if err != nil {
		return err
	}

	if len(data) != m.geo.BlockSize {
		return fmt.Errorf("%w: got %d bytes, want %d", ErrBlockSize, len(data), m.geo.BlockSize)
	}

	copy(m.data[off:], data)

	return nil
}

// BlockCount implements [Device].
func (m *Memory) BlockCount() int { return m.geo.BlockCount }

// BlockSize implements [Device].
func (m *Memory) BlockSize() int { return m.geo.BlockSize }

// Bytes returns a copy of the whole device.
func (m *Memory) Bytes() []byte {
	out := make([]byte, len(m.data))
	copy(out, m.data)

	return out
}

func (m *Memory) offset(i int) (int, error) {
	if i < 0 || i >= m.geo.BlockCount {
		return 0, fmt.Errorf("%w: %d not in [0,%d)", ErrOutOfRange, i, m.geo.BlockCount)
	}

	return i * m.geo.BlockSize, nil
}

var _ Device = (*Memory)(nil)
