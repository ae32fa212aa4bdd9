package fatfs

import (
	"errors"
	"fmt"
)

// ReadDir returns the records stored in directory dir, in insertion order.
func (f *FS) ReadDir(dir Entry) ([]Entry, error) {
	if !dir.IsDir() {
		return nil, fmt.Errorf("%w: %q is not a directory", ErrNotFound, dir.FullName())
	}

	data, err := f.ReadContent(dir)
	if err != nil {
		return nil, err
	}

	records, err := decodeEntries(data)
	if err != nil {
		return nil, fmt.Errorf("directory %q: %w", dir.FullName(), err)
	}

	return records, nil
}

// Lookup finds the entry called name of the given kind in dir. Both base
// name and extension must match.
func (f *FS) Lookup(dir Entry, name string, kind Kind) (Entry, error) {
	records, err := f.ReadDir(dir)
	if err != nil {
		return Entry{}, err
	}

	for _, e := range records {
		if e.matchesName(name) && kind.matches(e.Kind) {
			return e, nil
		}
	}

	return Entry{}, fmt.Errorf("%w: %s %q", ErrNotFound, kind, name)
}

func isNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// writeDir replaces the content of the directory on top of st with records
// and stores its updated record where it lives: in the parent directory, or
// in the superblock for the root. st's top is updated in place.
//
// The parent's own length does not change, so nothing above it needs a write.
func (f *FS) writeDir(st *Stack, records []Entry) error {
	dir := st.Top()

	if err := f.Rewrite(&dir, encodeEntries(records)); err != nil {
		return err
	}

	st.setTop(dir)

	if st.Depth() == 1 {
		f.root = dir

		return nil
	}

	parent := st.parent()

	siblings, err := f.ReadDir(parent)
	if err != nil {
		return err
	}

	i := indexOf(siblings, dir.First)
	if i < 0 {
		return fmt.Errorf("%w: %q missing from its parent", ErrCorrupt, dir.FullName())
	}

	siblings[i] = dir

	return f.Rewrite(&parent, encodeEntries(siblings))
}

// indexOf finds the record whose chain starts at first. Chains never share
// blocks, so the head identifies an entry.
func indexOf(records []Entry, first uint16) int {
	for i, e := range records {
		if e.First == first {
			return i
		}
	}

	return -1
}
