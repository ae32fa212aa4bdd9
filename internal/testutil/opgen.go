package testutil

import "strings"

// OpKind identifies a shell operation.
type OpKind int

// Operation kinds, in the order [OpGenConfig] rates are applied.
const (
	OpMkdir OpKind = iota
	OpCreate
	OpRemove
	OpRmdir
	OpChdir
	OpFormat
	OpList
)

var opNames = [...]string{"mkdir", "create", "rm", "rmdir", "cd", "format", "ls"}

// String returns the shell command name.
func (k OpKind) String() string { return opNames[k] }

// TakesPath reports whether the operation has a path argument.
func (k OpKind) TakesPath() bool { return k < OpFormat }

// Op is one generated shell operation.
type Op struct {
	Kind OpKind
	Path string
}

// Line renders the op as a shell command line.
func (o Op) Line() string {
	if !o.Kind.TakesPath() {
		return o.Kind.String()
	}

	return o.Kind.String() + " " + o.Path
}

// SegmentPool is the set of path segments the generator draws from. It mixes
// plain names, names with extensions that collide on their base, the special
// segments and names that fail validation.
var SegmentPool = []string{"a", "b", "c.txt", "b.md", ".", "..", "longer-than-15-chars", ".x"}

const maxGenSegments = 4

// OpGenConfig configures the operation generator. Rates are percentages;
// whatever the kinds leave of 100 goes to [OpList].
type OpGenConfig struct {
	MkdirRate  int
	CreateRate int
	RemoveRate int
	RmdirRate  int
	ChdirRate  int
	FormatRate int

	// AbsoluteRate is the percentage of paths starting at the root.
	AbsoluteRate int

	// MalformedRate is the percentage of paths given a trailing '/'.
	MalformedRate int
}

// DefaultOpGenConfig returns a mix that grows trees faster than it prunes
// them.
func DefaultOpGenConfig() OpGenConfig {
	return OpGenConfig{
		MkdirRate:     25,
		CreateRate:    20,
		RemoveRate:    12,
		RmdirRate:     13,
		ChdirRate:     18,
		FormatRate:    2,
		AbsoluteRate:  25,
		MalformedRate: 5,
	}
}

func (c *OpGenConfig) rates() []int {
	return []int{c.MkdirRate, c.CreateRate, c.RemoveRate, c.RmdirRate, c.ChdirRate, c.FormatRate}
}

// OpGenerator derives a deterministic operation sequence from fuzz bytes.
//
// Byte consumption per op: one kind byte (mod 100 against the rates), then
// for path ops one absolute byte, one segment-count byte, one byte per
// segment and one malformed byte. Paths are never empty.
type OpGenerator struct {
	stream *ByteStream
	config OpGenConfig
}

// NewOpGenerator creates a new operation generator.
func NewOpGenerator(fuzzBytes []byte, cfg *OpGenConfig) *OpGenerator {
	return &OpGenerator{
		stream: NewByteStream(fuzzBytes),
		config: *cfg,
	}
}

// HasMore reports whether more operations can be generated.
func (g *OpGenerator) HasMore() bool {
	return g.stream.HasMore()
}

// NextOp generates the next operation.
func (g *OpGenerator) NextOp() Op {
	kind := g.nextKind()
	if !kind.TakesPath() {
		return Op{Kind: kind}
	}

	return Op{Kind: kind, Path: g.nextPath()}
}

func (g *OpGenerator) nextKind() OpKind {
	choice := int(g.stream.NextByte()) % 100

	cumulative := 0
	for i, rate := range g.config.rates() {
		cumulative += rate
		if choice < cumulative {
			return OpKind(i)
		}
	}

	return OpList
}

func (g *OpGenerator) nextPath() string {
	abs := g.stream.NextInt(100) < g.config.AbsoluteRate

	n := g.stream.NextInt(maxGenSegments + 1)
	if n == 0 && !abs {
		n = 1
	}

	segments := make([]string, n)
	for i := range segments {
		segments[i] = g.stream.NextPick(SegmentPool)
	}

	path := strings.Join(segments, "/")
	if abs {
		path = "/" + path
	}

	if g.stream.NextInt(100) < g.config.MalformedRate {
		path += "/"
	}

	return path
}
