package fatfs

import "errors"

// Sentinel errors returned by fatfs operations.
//
// Callers should use [errors.Is] to check error types:
//
//	if errors.Is(err, fatfs.ErrNotFound) {
//	    // report and keep the shell running
//	}
var (
	// ErrFormat indicates a malformed path or entry name: empty segments,
	// a trailing slash, an empty base name, or a base/extension longer than
	// the record allows.
	ErrFormat = errors.New("fatfs: invalid format")

	// ErrNotFound indicates a path segment that names no entry of the
	// expected kind.
	ErrNotFound = errors.New("fatfs: not found")

	// ErrExists indicates a create whose base name is already taken in the
	// parent directory, by a file or a directory.
	ErrExists = errors.New("fatfs: already exists")

	// ErrNoParent indicates ".." at the root.
	ErrNoParent = errors.New("fatfs: no parent directory")

	// ErrNoSpace indicates the allocation table has no free block left.
	//
	// Recovery: remove files or directories, or format.
	ErrNoSpace = errors.New("fatfs: no space left")

	// ErrProtected indicates an attempt to remove the root, the current
	// directory, or one of its ancestors.
	ErrProtected = errors.New("fatfs: protected directory")

	// ErrTooManyEntries indicates a directory already holds
	// [Options.MaxEntries] entries.
	ErrTooManyEntries = errors.New("fatfs: too many entries")

	// ErrPathTooDeep indicates a path with more than [Options.MaxSegments]
	// segments, or a walk that would exceed [Options.MaxDepth].
	ErrPathTooDeep = errors.New("fatfs: path too deep")

	// ErrCorrupt indicates on-disk structures that violate the format:
	// a bad allocation table value, a cyclic chain, or a directory whose
	// length is not a whole number of records.
	//
	// Recovery: format.
	ErrCorrupt = errors.New("fatfs: corrupt")

	// ErrInvalidInput indicates [Options] outside their allowed range.
	//
	// This is a programming error.
	ErrInvalidInput = errors.New("fatfs: invalid input")
)
