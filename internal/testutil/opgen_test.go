package testutil_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/calvinalkan/vfat/internal/testutil"
	"github.com/calvinalkan/vfat/pkg/fatfs"
)

func generate(data []byte) []testutil.Op {
	cfg := testutil.DefaultOpGenConfig()
	gen := testutil.NewOpGenerator(data, &cfg)

	var ops []testutil.Op
	for gen.HasMore() {
		ops = append(ops, gen.NextOp())
	}

	return ops
}

func Test_SeedBuilder_Bytes_Decode_To_Same_Ops_When_Fed_To_Generator(t *testing.T) {
	t.Parallel()

	want := []testutil.Op{
		{Kind: testutil.OpMkdir, Path: "a/b"},
		{Kind: testutil.OpCreate, Path: "/c.txt"},
		{Kind: testutil.OpChdir, Path: "/"},
		{Kind: testutil.OpRemove, Path: "a/.."},
		{Kind: testutil.OpRmdir, Path: "a/b/"},
		{Kind: testutil.OpMkdir, Path: "//"},
		{Kind: testutil.OpFormat},
		{Kind: testutil.OpList},
	}

	cfg := testutil.DefaultOpGenConfig()
	b := testutil.NewSeedBuilder(&cfg)

	for _, op := range want {
		b.Op(op)
	}

	if diff := cmp.Diff(want, generate(b.Bytes())); diff != "" {
		t.Fatalf("ops mismatch (-want +got):\n%s", diff)
	}
}

func Test_OpGenerator_Never_Yields_Empty_Path_When_Bytes_Arbitrary(t *testing.T) {
	t.Parallel()

	data := make([]byte, 4096)
	for i := range data {
		data[i] = byte(i * 7)
	}

	for _, op := range generate(data) {
		if op.Kind.TakesPath() {
			assert.NotEmpty(t, op.Path)
		} else {
			assert.Empty(t, op.Path)
		}
	}
}

func Test_CuratedSeeds_Decode_When_Generated(t *testing.T) {
	t.Parallel()

	for _, seed := range testutil.CuratedSeeds() {
		ops := generate(seed.Data)
		assert.NotEmpty(t, ops, seed.Name)
	}

	got := generate(testutil.SeedNestedCreate())
	assert.Equal(t, "create a/b/c.txt", got[0].Line())
	assert.Equal(t, "ls", got[2].Line())
}

func Test_MatchesErrorBucket_Accepts_Message_When_Sentinel_Matches(t *testing.T) {
	t.Parallel()

	wrapped := fmt.Errorf("%w: %q in /a", fatfs.ErrExists, "b")

	assert.Equal(t, fatfs.ErrExists, testutil.Sentinel(wrapped))
	assert.True(t, testutil.MatchesErrorBucket(wrapped, "error: mkdir: fatfs: already exists: \"b\" in /a"))
	assert.False(t, testutil.MatchesErrorBucket(wrapped, "error: mkdir: fatfs: not found"))
	assert.True(t, testutil.MatchesErrorBucket(nil, ""))

	other := errors.New("disk on fire")
	assert.Equal(t, other, testutil.Sentinel(other))
	assert.True(t, testutil.MatchesErrorBucket(other, "anything"))
}
