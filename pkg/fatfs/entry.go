package fatfs

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strings"
	"time"
)

// Entry record layout (40 bytes, little endian).
const (
	// EntrySize is the encoded size of one [Entry].
	EntrySize = 40

	// MaxNameLen is the longest base name a record can hold.
	MaxNameLen = 15

	// MaxExtLen is the longest extension a record can hold.
	MaxExtLen = 7

	offEntName    = 0  // [16]byte, NUL padded
	offEntExt     = 16 // [8]byte, NUL padded
	offEntKind    = 24 // uint8
	offEntCreated = 28 // int64 unix seconds
	offEntLen     = 36 // uint16
	offEntFirst   = 38 // uint16
)

// RootName is the name stored in the root directory's record.
const RootName = "/"

// Kind tells files and directories apart.
type Kind uint8

const (
	// KindDir is a directory.
	KindDir Kind = 0

	// KindFile is a regular file.
	KindFile Kind = 1

	// KindAny matches either kind in lookups. It is never stored.
	KindAny Kind = 0xFF
)

func (k Kind) String() string {
	switch k {
	case KindDir:
		return "directory"
	case KindFile:
		return "file"
	case KindAny:
		return "entry"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

func (k Kind) matches(other Kind) bool {
	return k == KindAny || k == other
}

// Entry is the metadata record of one file or directory.
//
// First is the head of the entry's block chain. The chain holds
// max(1, ceil(Len/BlockSize)) blocks; an empty entry still owns one block.
type Entry struct {
	Name    string
	Ext     string
	Kind    Kind
	Created time.Time
	Len     uint16
	First   uint16
}

// FullName returns "name.ext", or just the name when there is no extension.
func (e Entry) FullName() string {
	if e.Ext == "" {
		return e.Name
	}

	return e.Name + "." + e.Ext
}

// IsDir reports whether e is a directory.
func (e Entry) IsDir() bool {
	return e.Kind == KindDir
}

// matchesName reports whether name refers to e. name is split the same way
// [SplitName] does, so "a." and "a" both match an entry without extension.
func (e Entry) matchesName(name string) bool {
	base, ext, _ := strings.Cut(name, ".")

	return e.Name == base && e.Ext == ext
}

// SplitName splits name at its first '.' into base name and extension.
//
// Returns [ErrFormat] if the base is empty, either part is too long, or the
// name contains '/' or NUL.
func SplitName(name string) (base, ext string, err error) {
	if strings.ContainsAny(name, "/\x00") {
		return "", "", fmt.Errorf("%w: name %q contains '/' or NUL", ErrFormat, name)
	}

	base, ext, _ = strings.Cut(name, ".")

	if base == "" {
		return "", "", fmt.Errorf("%w: name %q has an empty base", ErrFormat, name)
	}

	if len(base) > MaxNameLen {
		return "", "", fmt.Errorf("%w: name %q longer than %d bytes", ErrFormat, base, MaxNameLen)
	}

	if len(ext) > MaxExtLen {
		return "", "", fmt.Errorf("%w: extension %q longer than %d bytes", ErrFormat, ext, MaxExtLen)
	}

	return base, ext, nil
}

// encodeEntry writes e into buf[:EntrySize]. Names are assumed validated.
func encodeEntry(buf []byte, e Entry) {
	clear(buf[:EntrySize])
	copy(buf[offEntName:offEntName+MaxNameLen], e.Name)
	copy(buf[offEntExt:offEntExt+MaxExtLen], e.Ext)
	buf[offEntKind] = byte(e.Kind)
	binary.LittleEndian.PutUint64(buf[offEntCreated:], uint64(e.Created.Unix()))
	binary.LittleEndian.PutUint16(buf[offEntLen:], e.Len)
	binary.LittleEndian.PutUint16(buf[offEntFirst:], e.First)
}

func decodeEntry(buf []byte) (Entry, error) {
	if len(buf) < EntrySize {
		return Entry{}, fmt.Errorf("%w: short entry record (%d bytes)", ErrCorrupt, len(buf))
	}

	kind := Kind(buf[offEntKind])
	if kind != KindDir && kind != KindFile {
		return Entry{}, fmt.Errorf("%w: entry kind %d", ErrCorrupt, buf[offEntKind])
	}

	return Entry{
		Name:    cString(buf[offEntName : offEntName+MaxNameLen+1]),
		Ext:     cString(buf[offEntExt : offEntExt+MaxExtLen+1]),
		Kind:    kind,
		Created: time.Unix(int64(binary.LittleEndian.Uint64(buf[offEntCreated:])), 0).UTC(),
		Len:     binary.LittleEndian.Uint16(buf[offEntLen:]),
		First:   binary.LittleEndian.Uint16(buf[offEntFirst:]),
	}, nil
}

// cString returns the bytes before the first NUL.
func cString(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}

	return string(b)
}

// encodeEntries serializes records back to back.
func encodeEntries(records []Entry) []byte {
	out := make([]byte, len(records)*EntrySize)
	for i, e := range records {
		encodeEntry(out[i*EntrySize:], e)
	}

	return out
}

// decodeEntries splits data into records.
func decodeEntries(data []byte) ([]Entry, error) {
	if len(data)%EntrySize != 0 {
		return nil, fmt.Errorf("%w: directory length %d is not a multiple of %d", ErrCorrupt, len(data), EntrySize)
	}

	out := make([]Entry, 0, len(data)/EntrySize)

	for off := 0; off < len(data); off += EntrySize {
		e, err := decodeEntry(data[off : off+EntrySize])
		if err != nil {
			return nil, err
		}

		out = append(out, e)
	}

	return out, nil
}

// timestamp truncates t to what a record can store.
func timestamp(t time.Time) time.Time {
	return time.Unix(t.Unix(), 0).UTC()
}
