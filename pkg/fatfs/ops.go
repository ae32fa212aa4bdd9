package fatfs

import (
	"errors"
	"fmt"
	"slices"
)

// create adds an empty entry called name to the directory on top of st and
// returns it. st's top is updated to the grown directory.
func (f *FS) create(st *Stack, name string, kind Kind) (Entry, error) {
	base, ext, err := SplitName(name)
	if err != nil {
		return Entry{}, err
	}

	records, err := f.ReadDir(st.Top())
	if err != nil {
		return Entry{}, err
	}

	for _, e := range records {
		if e.Name == base {
			return Entry{}, fmt.Errorf("%w: %q in %s (a %s)", ErrExists, base, st.String(), e.Kind)
		}
	}

	if len(records) >= f.opts.MaxEntries {
		return Entry{}, fmt.Errorf("%w: %s already holds %d entries", ErrTooManyEntries, st.String(), len(records))
	}

	first, err := f.table.Allocate()
	if err != nil {
		return Entry{}, err
	}

	e := Entry{
		Name:    base,
		Ext:     ext,
		Kind:    kind,
		Created: timestamp(f.opts.Now()),
		First:   first,
	}

	err = f.Rewrite(&e, nil)
	if err == nil {
		err = f.writeDir(st, append(records, e))
	}

	if err != nil {
		return Entry{}, errors.Join(err, f.table.FreeChain(first))
	}

	f.log.Debug("created", "kind", kind.String(), "dir", st.String(), "name", e.FullName(), "block", first)

	return e, nil
}

// remove deletes target from the directory on top of parent. Directories go
// with their whole subtree. Every chain is checked before anything is freed.
func (f *FS) remove(parent *Stack, target Entry) error {
	records, err := f.ReadDir(parent.Top())
	if err != nil {
		return err
	}

	i := indexOf(records, target.First)
	if i < 0 {
		return fmt.Errorf("%w: %q not in %s", ErrNotFound, target.FullName(), parent.String())
	}

	owned, blocks, err := f.subtree(target)
	if err != nil {
		return err
	}

	for _, e := range owned {
		if err := f.table.FreeChain(e.First); err != nil {
			return err
		}
	}

	f.log.Debug("removed", "kind", target.Kind.String(), "dir", parent.String(), "name", target.FullName(),
		"entries", len(owned), "blocks", blocks)

	return f.writeDir(parent, slices.Delete(records, i, i+1))
}

// subtree returns root and every entry below it, with the total number of
// blocks their chains hold. It walks with an explicit work list and fails
// with [ErrCorrupt] if a chain head shows up twice.
func (f *FS) subtree(root Entry) ([]Entry, int, error) {
	var (
		out    []Entry
		blocks int
		seen   = make(map[uint16]struct{})
		work   = []Entry{root}
	)

	for len(work) > 0 {
		e := work[len(work)-1]
		work = work[:len(work)-1]

		if _, dup := seen[e.First]; dup {
			return nil, 0, fmt.Errorf("%w: block %d owned by more than one entry", ErrCorrupt, e.First)
		}

		seen[e.First] = struct{}{}

		chain, err := f.table.Chain(e.First)
		if err != nil {
			return nil, 0, err
		}

		blocks += len(chain)
		out = append(out, e)

		if !e.IsDir() {
			continue
		}

		children, err := f.ReadDir(e)
		if err != nil {
			return nil, 0, err
		}

		work = append(work, children...)
	}

	return out, blocks, nil
}

// Owned returns the number of blocks held by e and, for a directory,
// everything below it.
func (f *FS) Owned(e Entry) (int, error) {
	_, blocks, err := f.subtree(e)

	return blocks, err
}
