package fatfs

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/calvinalkan/vfat/pkg/vdisk"
)

// FS is a mounted file system session: the device, the allocation table,
// the root record and the current directory.
//
// Not safe for concurrent use.
type FS struct {
	dev        vdisk.Device
	blockSize  int
	blockCount int
	dataStart  uint16

	table *Table
	root  Entry
	stack *Stack

	opts    Options
	log     *slog.Logger
	metrics *metrics
}

// Usage summarizes block usage.
type Usage struct {
	BlockSize int
	Blocks    int
	Reserved  int
	Used      int
	Free      int
}

// Mount opens the file system on dev. A device without a superblock is
// formatted; a superblock that does not match the device, or a damaged
// table, is rejected with [ErrCorrupt].
func Mount(dev vdisk.Device, opts Options) (*FS, error) {
	opts, err := opts.withDefaults()
	if err != nil {
		return nil, err
	}

	bs, count := dev.BlockSize(), dev.BlockCount()
	if err := validateGeometry(bs, count); err != nil {
		return nil, err
	}

	m, err := newMetrics(opts.MeterProvider)
	if err != nil {
		return nil, err
	}

	f := &FS{
		dev:        dev,
		blockSize:  bs,
		blockCount: count,
		dataStart:  uint16(dataStartFor(bs, count)),
		opts:       opts,
		log:        opts.Logger,
		metrics:    m,
	}

	block0, err := dev.ReadBlock(0)
	if err != nil {
		return nil, fmt.Errorf("reading superblock: %w", err)
	}

	if !hasMagic(block0) {
		f.table = f.newTable()
		if err := f.format(); err != nil {
			return nil, err
		}

		f.log.Debug("formatted blank device", "blocks", count, "block_size", bs)

		return f, nil
	}

	if err := f.load(); err != nil {
		return nil, err
	}

	f.log.Debug("mounted", "blocks", count, "free", f.table.FreeCount())

	return f, nil
}

func (f *FS) newTable() *Table {
	t := NewTable(f.blockCount, f.dataStart)
	t.onAlloc = f.metrics.blocksAllocated
	t.onFree = f.metrics.blocksFreed

	return t
}

// load reads the superblock and table from the reserved blocks.
func (f *FS) load() error {
	region := make([]byte, 0, int(f.dataStart)*f.blockSize)

	for i := range int(f.dataStart) {
		block, err := f.dev.ReadBlock(i)
		if err != nil {
			return fmt.Errorf("reading reserved block %d: %w", i, err)
		}

		region = append(region, block...)
	}

	sb, err := decodeSuperblock(region, f.blockSize, f.blockCount)
	if err != nil {
		return err
	}

	t, err := decodeTable(region[tableOffset:], f.blockCount, f.dataStart)
	if err != nil {
		return err
	}

	t.onAlloc = f.metrics.blocksAllocated
	t.onFree = f.metrics.blocksFreed
	f.table = t

	if _, err := t.Chain(sb.root.First); err != nil {
		return fmt.Errorf("root chain: %w", err)
	}

	f.root = sb.root
	f.stack = NewStack(sb.root, f.opts.MaxDepth)

	return nil
}

// Sync writes the superblock and allocation table to the device.
//
// Mutating operations sync before they return; Sync is only needed after
// calling [FS.Rewrite] directly.
func (f *FS) Sync() error {
	region := make([]byte, int(f.dataStart)*f.blockSize)

	encodeSuperblock(region, superblock{
		blockSize:  f.blockSize,
		blockCount: f.blockCount,
		dataStart:  f.dataStart,
		root:       f.root,
	})
	f.table.encode(region[tableOffset:])

	for i := range int(f.dataStart) {
		off := i * f.blockSize
		if err := f.dev.WriteBlock(i, region[off:off+f.blockSize]); err != nil {
			return fmt.Errorf("writing reserved block %d: %w", i, err)
		}
	}

	return nil
}

// Format resets the file system to an empty root directory and moves the
// current directory back to the root.
func (f *FS) Format() error {
	err := f.format()
	f.metrics.command("format", err)

	return err
}

func (f *FS) format() error {
	f.table.Reset()

	first, err := f.table.Allocate()
	if err != nil {
		return err
	}

	root := Entry{
		Name:    RootName,
		Kind:    KindDir,
		Created: timestamp(f.opts.Now()),
		First:   first,
	}

	if err := f.Rewrite(&root, nil); err != nil {
		return err
	}

	f.root = root
	f.stack = NewStack(root, f.opts.MaxDepth)

	f.log.Debug("format", "root_block", first, "free", f.table.FreeCount())

	return f.Sync()
}

// Root returns the root directory record.
func (f *FS) Root() Entry { return f.root }

// Stack returns a copy of the current directory stack.
func (f *FS) Stack() *Stack { return f.stack.Clone() }

// Cwd returns the current directory as an absolute path.
func (f *FS) Cwd() string { return f.stack.String() }

// Stat reports block usage.
func (f *FS) Stat() Usage {
	free := f.table.FreeCount()
	reserved := int(f.dataStart)

	return Usage{
		BlockSize: f.blockSize,
		Blocks:    f.blockCount,
		Reserved:  reserved,
		Used:      f.blockCount - reserved - free,
		Free:      free,
	}
}

// List returns the entries of the current directory.
func (f *FS) List() ([]Entry, error) {
	records, err := f.ReadDir(f.stack.Top())
	f.metrics.command("ls", err)

	return records, err
}

// Chdir changes the current directory. On failure the current directory
// is unchanged.
func (f *FS) Chdir(path string) error {
	err := f.chdir(path)
	f.metrics.command("cd", err)

	return err
}

func (f *FS) chdir(path string) error {
	segments, err := ParsePath(path, f.opts.MaxSegments)
	if err != nil {
		return err
	}

	st, err := f.Resolve(segments, f.stack, KindDir)
	if err != nil {
		return err
	}

	f.stack = st

	return nil
}

// Mkdir creates the directory at path along with any missing parents.
// Returns [ErrExists] if the last segment's base name is taken.
func (f *FS) Mkdir(path string) error {
	return f.mutate("mkdir", func() error {
		parent, name, err := f.parsedParent(path, true)
		if err != nil {
			return err
		}

		_, err = f.create(parent, name, KindDir)

		return err
	})
}

// Create creates an empty file at path, creating missing parent
// directories. Parents created before a failure are kept.
func (f *FS) Create(path string) (Entry, error) {
	var created Entry

	err := f.mutate("create", func() error {
		parent, name, err := f.parsedParent(path, true)
		if err != nil {
			return err
		}

		created, err = f.create(parent, name, KindFile)

		return err
	})

	return created, err
}

// Remove deletes the file at path.
func (f *FS) Remove(path string) error {
	return f.mutate("rm", func() error {
		parent, name, err := f.parsedParent(path, false)
		if err != nil {
			return err
		}

		target, err := f.Lookup(parent.Top(), name, KindFile)
		if err != nil {
			return err
		}

		return f.remove(parent, target)
	})
}

// Rmdir deletes the directory at path and everything below it.
//
// The root, the current directory and its ancestors are [ErrProtected].
// Protection compares named paths, so "../b" from inside /b is refused too.
func (f *FS) Rmdir(path string) error {
	return f.mutate("rmdir", func() error {
		segments, err := ParsePath(path, f.opts.MaxSegments)
		if err != nil {
			return err
		}

		if len(segments) == 1 && segments[0] == segRoot {
			return fmt.Errorf("%w: cannot remove the root directory", ErrProtected)
		}

		parent, name, err := f.resolveParent(segments, false)
		if err != nil {
			return err
		}

		target, err := f.Lookup(parent.Top(), name, KindDir)
		if err != nil {
			return err
		}

		targetPath := append(parent.Names(), target.FullName())
		if cwd := f.stack.Names(); len(targetPath) <= len(cwd) && slices.Equal(cwd[:len(targetPath)], targetPath) {
			return fmt.Errorf("%w: /%s contains the current directory", ErrProtected, strings.Join(targetPath, "/"))
		}

		return f.remove(parent, target)
	})
}

func (f *FS) parsedParent(path string, create bool) (*Stack, string, error) {
	segments, err := ParsePath(path, f.opts.MaxSegments)
	if err != nil {
		return nil, "", err
	}

	return f.resolveParent(segments, create)
}

// mutate runs fn, then rebuilds the current directory stack and flushes the
// superblock and table whether or not fn succeeded, since fn may have
// changed the disk before failing.
func (f *FS) mutate(command string, fn func() error) error {
	err := fn()

	if refreshErr := f.refreshStack(); refreshErr != nil {
		err = errors.Join(err, refreshErr)
	}

	if syncErr := f.Sync(); syncErr != nil {
		err = errors.Join(err, syncErr)
	}

	f.metrics.command(command, err)

	if err != nil {
		f.log.Debug(command+" failed", "cwd", f.Cwd(), "error", err)
	}

	return err
}

// refreshStack rebuilds the stack by looking up its names from the root.
func (f *FS) refreshStack() error {
	names := f.stack.Names()
	st := NewStack(f.root, f.opts.MaxDepth)

	for _, name := range names {
		e, err := f.Lookup(st.Top(), name, KindDir)
		if err == nil {
			err = st.Push(e)
		}

		if err != nil {
			f.stack = st

			return fmt.Errorf("refreshing current directory: %w", err)
		}
	}

	f.stack = st

	return nil
}
