// Package model provides a deliberately simple, in-memory model of the
// observable behavior of a fatfs session: the directory tree, the current
// directory, and which sentinel error each operation returns.
//
// The model knows nothing about blocks beyond a budget: every entry costs
// one block, which holds as long as a full directory fits in one block
// (MaxEntries * fatfs.EntrySize <= block size).
package model

import (
	"fmt"
	"slices"
	"strings"

	"github.com/calvinalkan/vfat/pkg/fatfs"
)

// Node is a file or directory in the model tree.
type Node struct {
	Name     string
	Ext      string
	IsDir    bool
	Children []*Node
}

// FullName mirrors [fatfs.Entry.FullName].
func (n *Node) FullName() string {
	if n.Ext == "" {
		return n.Name
	}

	return n.Name + "." + n.Ext
}

func (n *Node) matches(name string, wantDir bool) bool {
	base, ext, _ := strings.Cut(name, ".")

	return n.Name == base && n.Ext == ext && n.IsDir == wantDir
}

// count returns n plus all of its descendants.
func (n *Node) count() int {
	total := 1
	for _, c := range n.Children {
		total += c.count()
	}

	return total
}

// Limits mirror [fatfs.Options] plus the number of data blocks.
type Limits struct {
	MaxEntries  int
	MaxDepth    int
	MaxSegments int
	DataBlocks  int
}

// FS is the model session.
type FS struct {
	Limits Limits
	Root   *Node
	Cwd    []*Node // root first
}

// New returns a freshly formatted model.
func New(limits Limits) *FS {
	m := &FS{Limits: limits}
	m.Format()

	return m
}

// Format drops the whole tree.
func (m *FS) Format() {
	m.Root = &Node{Name: fatfs.RootName, IsDir: true}
	m.Cwd = []*Node{m.Root}
}

// Path mirrors [fatfs.FS.Cwd].
func (m *FS) Path() string {
	names := make([]string, 0, len(m.Cwd)-1)
	for _, n := range m.Cwd[1:] {
		names = append(names, n.FullName())
	}

	return "/" + strings.Join(names, "/")
}

// List returns the full names in the current directory in insertion order.
func (m *FS) List() []string {
	top := m.Cwd[len(m.Cwd)-1]

	out := make([]string, 0, len(top.Children))
	for _, c := range top.Children {
		out = append(out, c.FullName())
	}

	return out
}

// UsedBlocks returns the blocks the tree would hold, root included.
func (m *FS) UsedBlocks() int {
	return m.Root.count()
}

// Chdir mirrors [fatfs.FS.Chdir].
func (m *FS) Chdir(path string) error {
	segments, err := parse(path, m.Limits.MaxSegments)
	if err != nil {
		return err
	}

	st := slices.Clone(m.Cwd)

	for _, seg := range segments {
		st, err = m.step(st, seg)
		if err != nil {
			return err
		}
	}

	m.Cwd = st

	return nil
}

// Mkdir mirrors [fatfs.FS.Mkdir].
func (m *FS) Mkdir(path string) error {
	st, name, err := m.parent(path, true)
	if err != nil {
		return err
	}

	return m.create(st, name, true)
}

// Create mirrors [fatfs.FS.Create].
func (m *FS) Create(path string) error {
	st, name, err := m.parent(path, true)
	if err != nil {
		return err
	}

	return m.create(st, name, false)
}

// Remove mirrors [fatfs.FS.Remove].
func (m *FS) Remove(path string) error {
	st, name, err := m.parent(path, false)
	if err != nil {
		return err
	}

	dir := st[len(st)-1]

	i := slices.IndexFunc(dir.Children, func(n *Node) bool { return n.matches(name, false) })
	if i < 0 {
		return fatfs.ErrNotFound
	}

	dir.Children = slices.Delete(dir.Children, i, i+1)

	return nil
}

// Rmdir mirrors [fatfs.FS.Rmdir].
func (m *FS) Rmdir(path string) error {
	if path == "/" {
		return fatfs.ErrProtected
	}

	st, name, err := m.parent(path, false)
	if err != nil {
		return err
	}

	dir := st[len(st)-1]

	i := slices.IndexFunc(dir.Children, func(n *Node) bool { return n.matches(name, true) })
	if i < 0 {
		return fatfs.ErrNotFound
	}

	if slices.Contains(m.Cwd, dir.Children[i]) {
		return fatfs.ErrProtected
	}

	dir.Children = slices.Delete(dir.Children, i, i+1)

	return nil
}

func (m *FS) parent(path string, create bool) ([]*Node, string, error) {
	segments, err := parse(path, m.Limits.MaxSegments)
	if err != nil {
		return nil, "", err
	}

	if len(segments) == 0 {
		return nil, "", fatfs.ErrFormat
	}

	name := segments[len(segments)-1]
	if special(name) {
		return nil, "", fatfs.ErrFormat
	}

	st := slices.Clone(m.Cwd)

	for _, seg := range segments[:len(segments)-1] {
		next, err := m.step(st, seg)
		if err == nil {
			st = next

			continue
		}

		if !create || special(seg) || err != fatfs.ErrNotFound {
			return nil, "", err
		}

		if err := m.create(st, seg, true); err != nil {
			return nil, "", err
		}

		dir := st[len(st)-1]
		if len(st) >= m.Limits.MaxDepth {
			return nil, "", fatfs.ErrPathTooDeep
		}

		st = append(st, dir.Children[len(dir.Children)-1])
	}

	return st, name, nil
}

func (m *FS) step(st []*Node, seg string) ([]*Node, error) {
	switch seg {
	case "/":
		return st[:1], nil
	case ".":
		return st, nil
	case "..":
		if len(st) == 1 {
			return nil, fatfs.ErrNoParent
		}

		return st[:len(st)-1], nil
	}

	dir := st[len(st)-1]

	i := slices.IndexFunc(dir.Children, func(n *Node) bool { return n.matches(seg, true) })
	if i < 0 {
		return nil, fatfs.ErrNotFound
	}

	if len(st) >= m.Limits.MaxDepth {
		return nil, fatfs.ErrPathTooDeep
	}

	return append(slices.Clip(st), dir.Children[i]), nil
}

func (m *FS) create(st []*Node, name string, isDir bool) error {
	base, ext, err := fatfs.SplitName(name)
	if err != nil {
		return fatfs.ErrFormat
	}

	dir := st[len(st)-1]

	for _, c := range dir.Children {
		if c.Name == base {
			return fatfs.ErrExists
		}
	}

	if len(dir.Children) >= m.Limits.MaxEntries {
		return fatfs.ErrTooManyEntries
	}

	if m.UsedBlocks() >= m.Limits.DataBlocks {
		return fatfs.ErrNoSpace
	}

	dir.Children = append(dir.Children, &Node{Name: base, Ext: ext, IsDir: isDir})

	return nil
}

func special(seg string) bool {
	return seg == "/" || seg == "." || seg == ".."
}

func parse(path string, maxSegments int) ([]string, error) {
	switch path {
	case "":
		return nil, nil
	case "/":
		return []string{"/"}, nil
	}

	var out []string
	if rest, ok := strings.CutPrefix(path, "/"); ok {
		out = append(out, "/")
		path = rest
	}

	for _, seg := range strings.Split(path, "/") {
		if seg == "" {
			return nil, fatfs.ErrFormat
		}

		out = append(out, seg)
	}

	if len(out) > maxSegments {
		return nil, fatfs.ErrPathTooDeep
	}

	return out, nil
}

// String renders the tree for test failure messages.
func (m *FS) String() string {
	var sb strings.Builder

	var walk func(n *Node, depth int)
	walk = func(n *Node, depth int) {
		kind := "f"
		if n.IsDir {
			kind = "d"
		}

		fmt.Fprintf(&sb, "%s%s %s\n", strings.Repeat("  ", depth), kind, n.FullName())

		for _, c := range n.Children {
			walk(c, depth+1)
		}
	}
	walk(m.Root, 0)

	return sb.String()
}
