package fatfs_test

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/vfat/pkg/fatfs"
)

func Test_SplitName_Splits_At_First_Dot(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name, base, ext string
	}{
		{"a", "a", ""},
		{"a.txt", "a", "txt"},
		{"archive.tar.gz", "archive", "tar.gz"},
		{"a.", "a", ""},
		{"fifteen-chars-x.sevenxx", "fifteen-chars-x", "sevenxx"},
	}

	for _, tc := range cases {
		base, ext, err := fatfs.SplitName(tc.name)
		require.NoError(t, err, tc.name)
		assert.Equal(t, tc.base, base, tc.name)
		assert.Equal(t, tc.ext, ext, tc.name)
	}
}

func Test_SplitName_Returns_ErrFormat_When_Parts_Invalid(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"", ".", ".txt", "sixteen-chars-xx", "a.eightxxx", "a\x00b"} {
		_, _, err := fatfs.SplitName(name)
		require.ErrorIs(t, err, fatfs.ErrFormat, "name %q", name)
	}
}

func Test_Entry_Encoding_Matches_Record_Layout(t *testing.T) {
	t.Parallel()

	e := fatfs.Entry{
		Name:    "report",
		Ext:     "pdf",
		Kind:    fatfs.KindFile,
		Created: time.Unix(0x0102030405, 0).UTC(),
		Len:     0x0A0B,
		First:   0x0C0D,
	}

	buf := make([]byte, fatfs.EntrySize)
	fatfs.EncodeEntry(buf, e)

	want := make([]byte, fatfs.EntrySize)
	copy(want[0:], "report")
	copy(want[16:], "pdf")
	want[24] = 1
	copy(want[28:], []byte{0x05, 0x04, 0x03, 0x02, 0x01, 0, 0, 0})
	copy(want[36:], []byte{0x0B, 0x0A, 0x0D, 0x0C})

	assert.Equal(t, want, buf)

	got, err := fatfs.DecodeEntry(buf)
	require.NoError(t, err)

	if diff := cmp.Diff(e, got); diff != "" {
		t.Fatalf("decode mismatch (-want +got):\n%s", diff)
	}
}

func Test_DecodeEntry_Returns_ErrCorrupt_When_Kind_Unknown(t *testing.T) {
	t.Parallel()

	buf := make([]byte, fatfs.EntrySize)
	buf[24] = 7

	_, err := fatfs.DecodeEntry(buf)
	require.ErrorIs(t, err, fatfs.ErrCorrupt)
}

func Test_Entry_FullName_Omits_Dot_When_No_Extension(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "a", fatfs.Entry{Name: "a"}.FullName())
	assert.Equal(t, "a.txt", fatfs.Entry{Name: "a", Ext: "txt"}.FullName())
}

func Test_DataStartFor_Covers_Superblock_And_Table(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 3, fatfs.DataStartFor(1024, 1000))
	assert.Equal(t, 1, fatfs.DataStartFor(256, 6))
	assert.Equal(t, 1, fatfs.DataStartFor(1024, 480))
	assert.Equal(t, 2, fatfs.DataStartFor(1024, 481))
}
