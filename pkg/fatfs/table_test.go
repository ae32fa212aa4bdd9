package fatfs_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/vfat/pkg/fatfs"
)

func Test_NewTable_Chains_Reserved_Blocks_When_Created(t *testing.T) {
	t.Parallel()

	tbl := fatfs.NewTable(10, 3)

	assert.Equal(t, uint16(1), tbl.Next(0))
	assert.Equal(t, uint16(2), tbl.Next(1))
	assert.Equal(t, fatfs.End, tbl.Next(2))
	assert.Equal(t, 7, tbl.FreeCount())
}

func Test_Table_Allocate_Returns_First_Free_Block_When_Holes_Exist(t *testing.T) {
	t.Parallel()

	tbl := fatfs.NewTable(10, 3)

	for want := uint16(3); want < 7; want++ {
		got, err := tbl.Allocate()
		require.NoError(t, err)
		assert.Equal(t, want, got)
		assert.Equal(t, fatfs.End, tbl.Next(got))
	}

	require.NoError(t, tbl.FreeChain(4))

	got, err := tbl.Allocate()
	require.NoError(t, err)
	assert.Equal(t, uint16(4), got, "first fit reuses the lowest hole")
}

func Test_Table_Allocate_Returns_ErrNoSpace_When_All_Blocks_Used(t *testing.T) {
	t.Parallel()

	tbl := fatfs.NewTable(5, 3)

	for range 2 {
		_, err := tbl.Allocate()
		require.NoError(t, err)
	}

	_, err := tbl.Allocate()
	require.ErrorIs(t, err, fatfs.ErrNoSpace)
	assert.Equal(t, 0, tbl.FreeCount())
}

func Test_Table_Extend_Links_New_Block_After_Tail(t *testing.T) {
	t.Parallel()

	tbl := fatfs.NewTable(10, 3)

	head, err := tbl.Allocate()
	require.NoError(t, err)

	_, err = tbl.Allocate() // 4 stays in another chain
	require.NoError(t, err)

	second, err := tbl.Extend(head)
	require.NoError(t, err)

	third, err := tbl.Extend(second)
	require.NoError(t, err)

	chain, err := tbl.Chain(head)
	require.NoError(t, err)
	assert.Equal(t, []uint16{3, 5, 6}, chain)
	assert.Equal(t, uint16(6), third)

	_, err = tbl.Extend(head)
	require.ErrorIs(t, err, fatfs.ErrCorrupt, "extending from a non-tail block")
}

func Test_Table_TruncateAfter_Frees_Tail_When_Chain_Longer(t *testing.T) {
	t.Parallel()

	tbl := fatfs.NewTable(10, 3)

	head, err := tbl.Allocate()
	require.NoError(t, err)

	tail := head
	for range 3 {
		tail, err = tbl.Extend(tail)
		require.NoError(t, err)
	}

	require.Equal(t, 3, tbl.FreeCount())

	require.NoError(t, tbl.TruncateAfter(head))

	chain, err := tbl.Chain(head)
	require.NoError(t, err)
	assert.Equal(t, []uint16{head}, chain)
	assert.Equal(t, 6, tbl.FreeCount())

	require.NoError(t, tbl.TruncateAfter(head), "truncating a single block chain is a no-op")
}

func Test_Table_FreeChain_Frees_Whole_Chain_Including_End(t *testing.T) {
	t.Parallel()

	tbl := fatfs.NewTable(10, 3)

	head, err := tbl.Allocate()
	require.NoError(t, err)

	_, err = tbl.Extend(head)
	require.NoError(t, err)

	require.NoError(t, tbl.FreeChain(head))
	assert.Equal(t, 7, tbl.FreeCount())
	assert.Equal(t, fatfs.Free, tbl.Next(head))
}

func Test_Table_Chain_Returns_ErrCorrupt_When_Head_Is_Reserved_Or_Free(t *testing.T) {
	t.Parallel()

	tbl := fatfs.NewTable(10, 3)

	_, err := tbl.Chain(0)
	require.ErrorIs(t, err, fatfs.ErrCorrupt)

	_, err = tbl.Chain(5)
	require.ErrorIs(t, err, fatfs.ErrCorrupt)

	require.ErrorIs(t, tbl.FreeChain(5), fatfs.ErrCorrupt)
	assert.Equal(t, 7, tbl.FreeCount())
}

func Test_Table_Reset_Frees_Every_Data_Block(t *testing.T) {
	t.Parallel()

	tbl := fatfs.NewTable(10, 3)

	for range 7 {
		_, err := tbl.Allocate()
		require.NoError(t, err)
	}

	tbl.Reset()

	assert.Equal(t, 7, tbl.FreeCount())
	assert.Equal(t, fatfs.End, tbl.Next(2))
}
