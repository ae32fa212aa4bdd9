package vdisk

import "errors"

// Sentinel errors returned by vdisk operations. Use [errors.Is] to match.
var (
	// ErrOutOfRange indicates a block index outside 0..BlockCount-1.
	//
	// This is a programming error.
	ErrOutOfRange = errors.New("vdisk: block index out of range")

	// ErrBlockSize indicates a write whose payload is not exactly one block.
	//
	// This is a programming error.
	ErrBlockSize = errors.New("vdisk: wrong block size")

	// ErrImageSize indicates an image file whose size does not match the
	// configured geometry.
	//
	// Recovery: remove the image file (a fresh one is formatted on start) or
	// point the shell at a different image.
	ErrImageSize = errors.New("vdisk: image size mismatch")

	// ErrLocked indicates another process holds the image.
	//
	// Recovery: close the other shell.
	ErrLocked = errors.New("vdisk: image locked")
)
