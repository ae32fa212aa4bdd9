package fatfs

import (
	"encoding/binary"
	"fmt"
)

// Table is the allocation table: one uint16 per block holding [Free],
// [End], or the index of the next block in the same chain.
//
// Blocks below the data start hold the superblock and the table itself.
// They form one reserved chain and are never handed out.
type Table struct {
	next      []uint16
	dataStart uint16

	onAlloc func(n int)
	onFree  func(n int)
}

// NewTable returns a reset table for blockCount blocks.
func NewTable(blockCount int, dataStart uint16) *Table {
	t := &Table{next: make([]uint16, blockCount), dataStart: dataStart}
	t.Reset()

	return t
}

// Reset frees every data block and rebuilds the reserved chain.
func (t *Table) Reset() {
	clear(t.next)

	for i := uint16(0); i < t.dataStart; i++ {
		t.next[i] = i + 1
	}

	t.next[t.dataStart-1] = End
}

// Len returns the number of blocks the table covers.
func (t *Table) Len() int { return len(t.next) }

// DataStart returns the first allocatable block.
func (t *Table) DataStart() uint16 { return t.dataStart }

// Next returns the raw table value for block i.
func (t *Table) Next(i uint16) uint16 { return t.next[i] }

// Allocate marks the first free block at or after the data start as [End]
// and returns it. Returns [ErrNoSpace] when no block is free.
func (t *Table) Allocate() (uint16, error) {
	for i := int(t.dataStart); i < len(t.next); i++ {
		if t.next[i] == Free {
			t.next[i] = End
			t.allocated(1)

			return uint16(i), nil
		}
	}

	return 0, fmt.Errorf("%w: all %d data blocks in use", ErrNoSpace, len(t.next)-int(t.dataStart))
}

// Extend allocates a block and links it after tail, which must be the last
// block of its chain.
func (t *Table) Extend(tail uint16) (uint16, error) {
	if err := t.checkIndex(tail); err != nil {
		return 0, err
	}

	if t.next[tail] != End {
		return 0, fmt.Errorf("%w: extend from block %d which is not a chain tail", ErrCorrupt, tail)
	}

	b, err := t.Allocate()
	if err != nil {
		return 0, err
	}

	t.next[tail] = b

	return b, nil
}

// FreeChain frees every block from head through the [End] block inclusive.
func (t *Table) FreeChain(head uint16) error {
	chain, err := t.Chain(head)
	if err != nil {
		return err
	}

	for _, b := range chain {
		t.next[b] = Free
	}

	t.freed(len(chain))

	return nil
}

// TruncateAfter frees every block chained after tail and makes tail the end.
func (t *Table) TruncateAfter(tail uint16) error {
	if err := t.checkIndex(tail); err != nil {
		return err
	}

	rest := t.next[tail]
	if rest == End {
		return nil
	}

	if err := t.FreeChain(rest); err != nil {
		return err
	}

	t.next[tail] = End

	return nil
}

// Chain returns the blocks of the chain starting at head, in order.
//
// Returns [ErrCorrupt] if the chain visits a free or reserved block, leaves
// the table, or loops.
func (t *Table) Chain(head uint16) ([]uint16, error) {
	var (
		out  []uint16
		seen = make(map[uint16]struct{})
	)

	for b := head; ; {
		if err := t.checkIndex(b); err != nil {
			return nil, err
		}

		if _, dup := seen[b]; dup {
			return nil, fmt.Errorf("%w: chain from %d loops at block %d", ErrCorrupt, head, b)
		}

		seen[b] = struct{}{}
		out = append(out, b)

		next := t.next[b]

		switch next {
		case End:
			return out, nil
		case Free:
			return nil, fmt.Errorf("%w: chain from %d reaches free block %d", ErrCorrupt, head, b)
		}

		b = next
	}
}

// FreeCount returns the number of free data blocks.
func (t *Table) FreeCount() int {
	n := 0

	for i := int(t.dataStart); i < len(t.next); i++ {
		if t.next[i] == Free {
			n++
		}
	}

	return n
}

// checkIndex rejects blocks outside the data area.
func (t *Table) checkIndex(b uint16) error {
	if b < t.dataStart || int(b) >= len(t.next) {
		return fmt.Errorf("%w: block %d outside data area [%d,%d)", ErrCorrupt, b, t.dataStart, len(t.next))
	}

	return nil
}

func (t *Table) allocated(n int) {
	if t.onAlloc != nil {
		t.onAlloc(n)
	}
}

func (t *Table) freed(n int) {
	if t.onFree != nil {
		t.onFree(n)
	}
}

// encode writes the table into buf, which must hold 2*Len bytes.
func (t *Table) encode(buf []byte) {
	for i, v := range t.next {
		binary.LittleEndian.PutUint16(buf[i*tableEntSize:], v)
	}
}

// decodeTable parses and validates a stored table. Every value must be
// [Free], [End] or an in-range block, and the reserved chain must be intact.
func decodeTable(buf []byte, blockCount int, dataStart uint16) (*Table, error) {
	t := &Table{next: make([]uint16, blockCount), dataStart: dataStart}

	for i := range t.next {
		v := binary.LittleEndian.Uint16(buf[i*tableEntSize:])
		if v != Free && v != End && int(v) >= blockCount {
			return nil, fmt.Errorf("%w: table entry %d points to block %d", ErrCorrupt, i, v)
		}

		t.next[i] = v
	}

	want := NewTable(blockCount, dataStart)
	for i := uint16(0); i < dataStart; i++ {
		if t.next[i] != want.next[i] {
			return nil, fmt.Errorf("%w: reserved block %d has table value %d", ErrCorrupt, i, t.next[i])
		}
	}

	return t, nil
}
