package fatfs

import (
	"fmt"
	"strings"
)

// Stack is the navigation context: the records from the root down to the
// current directory. The root is always at the bottom.
type Stack struct {
	entries  []Entry
	maxDepth int
}

// NewStack returns a stack holding only root.
func NewStack(root Entry, maxDepth int) *Stack {
	return &Stack{entries: []Entry{root}, maxDepth: maxDepth}
}

// Top returns the current directory.
func (s *Stack) Top() Entry {
	return s.entries[len(s.entries)-1]
}

// Depth returns the number of records on the stack; the root alone is 1.
func (s *Stack) Depth() int {
	return len(s.entries)
}

// Push descends into e. Returns [ErrPathTooDeep] past the depth limit.
func (s *Stack) Push(e Entry) error {
	if len(s.entries) >= s.maxDepth {
		return fmt.Errorf("%w: depth limit %d reached at %q", ErrPathTooDeep, s.maxDepth, e.FullName())
	}

	s.entries = append(s.entries, e)

	return nil
}

// Pop ascends one level. Returns [ErrNoParent] at the root.
func (s *Stack) Pop() error {
	if len(s.entries) == 1 {
		return ErrNoParent
	}

	s.entries = s.entries[:len(s.entries)-1]

	return nil
}

// Clone returns an independent copy.
func (s *Stack) Clone() *Stack {
	return &Stack{entries: append([]Entry(nil), s.entries...), maxDepth: s.maxDepth}
}

// Entries returns a copy of the records, root first.
func (s *Stack) Entries() []Entry {
	return append([]Entry(nil), s.entries...)
}

// Names returns the full names below the root, outermost first.
func (s *Stack) Names() []string {
	names := make([]string, 0, len(s.entries)-1)
	for _, e := range s.entries[1:] {
		names = append(names, e.FullName())
	}

	return names
}

// String returns the absolute path, "/" for the root.
func (s *Stack) String() string {
	return "/" + strings.Join(s.Names(), "/")
}

func (s *Stack) toRoot() {
	s.entries = s.entries[:1]
}

func (s *Stack) setTop(e Entry) {
	s.entries[len(s.entries)-1] = e
}

// parent returns the record below the top. The caller checks Depth() > 1.
func (s *Stack) parent() Entry {
	return s.entries[len(s.entries)-2]
}
