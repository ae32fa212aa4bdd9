package fatfs

import (
	"fmt"
)

// maxContentLen is the largest length a record can store.
const maxContentLen = 0xFFFF

// blocksFor returns how many blocks n bytes occupy; at least one.
func (f *FS) blocksFor(n int) int {
	return max(1, (n+f.blockSize-1)/f.blockSize)
}

// ReadContent returns the first e.Len bytes stored in e's chain.
func (f *FS) ReadContent(e Entry) ([]byte, error) {
	chain, err := f.table.Chain(e.First)
	if err != nil {
		return nil, err
	}

	n := int(e.Len)
	if need := f.blocksFor(n); len(chain) < need {
		return nil, fmt.Errorf("%w: %q has length %d but only %d blocks", ErrCorrupt, e.FullName(), n, len(chain))
	}

	out := make([]byte, 0, n)

	for _, b := range chain {
		if len(out) == n {
			break
		}

		block, err := f.dev.ReadBlock(int(b))
		if err != nil {
			return nil, fmt.Errorf("reading block %d: %w", b, err)
		}

		out = append(out, block[:min(f.blockSize, n-len(out))]...)
	}

	return out, nil
}

// Rewrite replaces e's content with data, growing or shrinking its chain,
// and sets e.Len. Unused bytes of the last block are zeroed.
//
// Rewrite only touches e's chain. The copy of e held by its parent directory
// is not updated; directory writes take care of that themselves.
//
// If the disk fills up while growing, the blocks already added stay chained
// to e and [ErrNoSpace] is returned with e.Len unchanged.
func (f *FS) Rewrite(e *Entry, data []byte) error {
	if len(data) > maxContentLen {
		return fmt.Errorf("%w: %d bytes exceed the %d byte entry limit", ErrNoSpace, len(data), maxContentLen)
	}

	chain, err := f.table.Chain(e.First)
	if err != nil {
		return err
	}

	need := f.blocksFor(len(data))

	for len(chain) < need {
		b, err := f.table.Extend(chain[len(chain)-1])
		if err != nil {
			return fmt.Errorf("growing %q to %d blocks: %w", e.FullName(), need, err)
		}

		chain = append(chain, b)
	}

	if len(chain) > need {
		if err := f.table.TruncateAfter(chain[need-1]); err != nil {
			return err
		}

		chain = chain[:need]
	}

	for i, b := range chain {
		block := make([]byte, f.blockSize)

		if off := i * f.blockSize; off < len(data) {
			copy(block, data[off:])
		}

		if err := f.dev.WriteBlock(int(b), block); err != nil {
			return fmt.Errorf("writing block %d: %w", b, err)
		}
	}

	e.Len = uint16(len(data))

	return nil
}
