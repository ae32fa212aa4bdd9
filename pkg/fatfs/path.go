package fatfs

import (
	"fmt"
	"strings"
)

// Special path segments.
const (
	segRoot   = "/"
	segSelf   = "."
	segParent = ".."
)

// ParsePath splits path into segments without resolving them.
//
// A leading '/' becomes a first segment "/" marking an absolute path. "."
// and ".." are kept as written. The empty path has no segments and "/" is
// the single segment "/".
//
// Returns [ErrFormat] for empty segments ("a//b", "a/", "//a") and
// [ErrPathTooDeep] for more than maxSegments segments.
func ParsePath(path string, maxSegments int) ([]string, error) {
	if path == "" {
		return nil, nil
	}

	if path == segRoot {
		return []string{segRoot}, nil
	}

	var segments []string

	rest := path
	if strings.HasPrefix(rest, segRoot) {
		segments = append(segments, segRoot)
		rest = rest[1:]
	}

	for _, seg := range strings.Split(rest, "/") {
		if seg == "" {
			return nil, fmt.Errorf("%w: empty segment in %q", ErrFormat, path)
		}

		segments = append(segments, seg)
	}

	if len(segments) > maxSegments {
		return nil, fmt.Errorf("%w: %q has %d segments, limit %d", ErrPathTooDeep, path, len(segments), maxSegments)
	}

	return segments, nil
}

func isSpecial(seg string) bool {
	return seg == segRoot || seg == segSelf || seg == segParent
}

// Resolve walks segments starting from a copy of from and returns the
// resulting stack; from is never modified.
//
// "." stays, ".." ascends, "/" returns to the root. Every other segment is
// looked up in the directory on top of the stack and pushed. Intermediate
// segments must be directories; the last one must match kind. A last segment
// of ".", ".." or "/" always yields a directory.
func (f *FS) Resolve(segments []string, from *Stack, kind Kind) (*Stack, error) {
	st := from.Clone()

	for i, seg := range segments {
		want := KindDir
		if i == len(segments)-1 {
			want = kind
		}

		if err := f.step(st, seg, want); err != nil {
			return nil, err
		}
	}

	return st, nil
}

// step applies one segment to st.
func (f *FS) step(st *Stack, seg string, kind Kind) error {
	if isSpecial(seg) && !kind.matches(KindDir) {
		return fmt.Errorf("%w: %q is not a %s", ErrNotFound, seg, kind)
	}

	switch seg {
	case segRoot:
		st.toRoot()

		return nil
	case segSelf:
		return nil
	case segParent:
		return st.Pop()
	}

	e, err := f.Lookup(st.Top(), seg, kind)
	if err != nil {
		return err
	}

	return st.Push(e)
}

// resolveParent walks every segment but the last from the current
// directory. With create set, missing intermediate directories are created
// on the way and stay even if the caller fails later.
//
// The returned stack ends at the directory that should hold the last
// segment, which is returned as name.
func (f *FS) resolveParent(segments []string, create bool) (*Stack, string, error) {
	if len(segments) == 0 {
		return nil, "", fmt.Errorf("%w: empty path", ErrFormat)
	}

	name := segments[len(segments)-1]
	if isSpecial(name) {
		return nil, "", fmt.Errorf("%w: %q cannot name an entry", ErrFormat, name)
	}

	st := f.stack.Clone()

	for _, seg := range segments[:len(segments)-1] {
		err := f.step(st, seg, KindDir)
		if err == nil {
			continue
		}

		if !create || isSpecial(seg) || !isNotFound(err) {
			return nil, "", err
		}

		dir, err := f.create(st, seg, KindDir)
		if err != nil {
			return nil, "", err
		}

		f.log.Debug("created intermediate directory", "path", st.String(), "name", seg)

		if err := st.Push(dir); err != nil {
			return nil, "", err
		}
	}

	return st, name, nil
}
