package fatfs_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/vfat/pkg/fatfs"
	"github.com/calvinalkan/vfat/pkg/vdisk"
)

func pattern(n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = byte(i*7 + 1)
	}

	return out
}

func Test_Rewrite_Round_Trips_Content_When_Length_Spans_Blocks(t *testing.T) {
	t.Parallel()

	for _, n := range []int{0, 1, 1023, 1024, 1025, 3 * 1024, 5000} {
		fsys, _ := mount(t, fatfs.Options{})

		e, err := fsys.Create("data.bin")
		require.NoError(t, err)

		freeBefore := fsys.Stat().Free
		data := pattern(n)

		require.NoError(t, fsys.Rewrite(&e, data), "len %d", n)
		assert.Equal(t, uint16(n), e.Len)

		got, err := fsys.ReadContent(e)
		require.NoError(t, err)
		assert.Equal(t, data, got, "len %d", n)

		blocks := max(1, (n+1023)/1024)
		assert.Equal(t, freeBefore-(blocks-1), fsys.Stat().Free, "len %d", n)
	}
}

func Test_Rewrite_Truncates_Chain_When_Content_Shrinks(t *testing.T) {
	t.Parallel()

	fsys, dev := mount(t, fatfs.Options{})

	e, err := fsys.Create("data.bin")
	require.NoError(t, err)

	freeBefore := fsys.Stat().Free

	require.NoError(t, fsys.Rewrite(&e, pattern(4000)))
	require.NoError(t, fsys.Rewrite(&e, []byte("tiny")))

	assert.Equal(t, freeBefore, fsys.Stat().Free)

	got, err := fsys.ReadContent(e)
	require.NoError(t, err)
	assert.Equal(t, []byte("tiny"), got)

	block, err := dev.ReadBlock(int(e.First))
	require.NoError(t, err)
	assert.Equal(t, make([]byte, 1020), block[4:], "tail of the block is zeroed")

	chain, err := fsys.Table().Chain(e.First)
	require.NoError(t, err)
	assert.Len(t, chain, 1)
}

func Test_Rewrite_Keeps_Grown_Blocks_When_Disk_Fills(t *testing.T) {
	t.Parallel()

	dev := newDevice(t, vdisk.Geometry{BlockSize: 256, BlockCount: 6})
	fsys, _ := mountOn(t, dev, fatfs.Options{MaxEntries: 6})

	e, err := fsys.Create("big")
	require.NoError(t, err)
	require.Equal(t, 3, fsys.Stat().Free)

	err = fsys.Rewrite(&e, pattern(256*5))
	require.ErrorIs(t, err, fatfs.ErrNoSpace)

	assert.Equal(t, uint16(0), e.Len, "length is only set on success")
	assert.Equal(t, 0, fsys.Stat().Free)

	chain, err := fsys.Table().Chain(e.First)
	require.NoError(t, err)
	assert.Len(t, chain, 4, "blocks added before the failure stay chained")
}

func Test_Rewrite_Returns_ErrNoSpace_When_Content_Exceeds_Length_Field(t *testing.T) {
	t.Parallel()

	fsys, _ := mount(t, fatfs.Options{})

	e, err := fsys.Create("huge")
	require.NoError(t, err)

	freeBefore := fsys.Stat().Free

	require.ErrorIs(t, fsys.Rewrite(&e, bytes.Repeat([]byte{1}, 0x10000)), fatfs.ErrNoSpace)
	assert.Equal(t, freeBefore, fsys.Stat().Free)
}

func Test_ReadDir_Returns_ErrCorrupt_When_Length_Not_Whole_Records(t *testing.T) {
	t.Parallel()

	fsys, _ := mount(t, fatfs.Options{})

	dir := fsys.Root()
	dir.Len = fatfs.EntrySize + 1

	_, err := fsys.ReadDir(dir)
	require.ErrorIs(t, err, fatfs.ErrCorrupt)
}

func Test_ReadDir_Returns_ErrNotFound_When_Entry_Is_File(t *testing.T) {
	t.Parallel()

	fsys, _ := mount(t, fatfs.Options{})

	e, err := fsys.Create("a")
	require.NoError(t, err)

	_, err = fsys.ReadDir(e)
	require.ErrorIs(t, err, fatfs.ErrNotFound)
}
