package vdisk

import (
	"errors"
	"fmt"
	"os"

	"github.com/calvinalkan/vfat/pkg/fs"
)

const imagePerm = 0o644

// Image is a [Memory] device loaded from a host file.
//
// The host file is read once by [Open] and only rewritten by [Image.Save].
// While the Image is open, an exclusive lock on "<path>.lock" keeps a
// second shell from working on the same file.
type Image struct {
	*Memory

	fsys    fs.FS
	path    string
	lock    *fs.Lock
	existed bool
}

// Open locks path and loads it into memory. A missing file yields a zeroed
// device; the caller formats it.
//
// Returns [ErrLocked] if another process holds the image and [ErrImageSize]
// if the file does not match geo.
func Open(fsys fs.FS, locker *fs.Locker, path string, geo Geometry) (*Image, error) {
	if err := geo.validate(); err != nil {
		return nil, err
	}

	lock, err := locker.TryLock(path + ".lock")
	if err != nil {
		if errors.Is(err, fs.ErrWouldBlock) {
			return nil, fmt.Errorf("%w: %s", ErrLocked, path)
		}

		return nil, fmt.Errorf("locking image: %w", err)
	}

	img, err := load(fsys, path, geo)
	if err != nil {
		return nil, errors.Join(err, lock.Close())
	}

	img.lock = lock

	return img, nil
}

func load(fsys fs.FS, path string, geo Geometry) (*Image, error) {
	data, err := fsys.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		mem, memErr := NewMemory(geo)
		if memErr != nil {
			return nil, memErr
		}

		return &Image{Memory: mem, fsys: fsys, path: path}, nil
	}

	if err != nil {
		return nil, fmt.Errorf("reading image: %w", err)
	}

	mem, err := MemoryFromBytes(geo, data)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}

	return &Image{Memory: mem, fsys: fsys, path: path, existed: true}, nil
}

// Path returns the host file path.
func (img *Image) Path() string { return img.path }

// Existed reports whether the host file was present when the image was opened.
func (img *Image) Existed() bool { return img.existed }

// Save rewrites the host file with the current device contents.
func (img *Image) Save() error {
	if err := img.fsys.WriteFileAtomic(img.path, img.Bytes(), imagePerm); err != nil {
		return fmt.Errorf("saving image: %w", err)
	}

	img.existed = true

	return nil
}

// Close releases the image lock without saving. Close is idempotent.
func (img *Image) Close() error {
	if img.lock == nil {
		return nil
	}

	err := img.lock.Close()
	img.lock = nil

	return err
}
