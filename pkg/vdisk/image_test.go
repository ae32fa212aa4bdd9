package vdisk_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/vfat/pkg/fs"
	"github.com/calvinalkan/vfat/pkg/vdisk"
)

func openImage(t *testing.T, path string) (*vdisk.Image, error) {
	t.Helper()

	fsys := fs.NewReal()

	return vdisk.Open(fsys, fs.NewLocker(fsys), path, smallGeometry())
}

func Test_Open_Returns_Zeroed_Device_When_File_Missing(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "data")

	img, err := openImage(t, path)
	require.NoError(t, err)

	defer func() { _ = img.Close() }()

	assert.False(t, img.Existed())
	assert.Equal(t, make([]byte, 64), img.Bytes())

	_, statErr := os.Stat(path)
	assert.ErrorIs(t, statErr, os.ErrNotExist, "Open must not create the image")
}

func Test_Image_Save_Then_Open_Round_Trips_Contents(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "data")

	img, err := openImage(t, path)
	require.NoError(t, err)

	block := bytes.Repeat([]byte{7}, 16)
	require.NoError(t, img.WriteBlock(3, block))
	require.NoError(t, img.Save())
	require.NoError(t, img.Close())

	reopened, err := openImage(t, path)
	require.NoError(t, err)

	defer func() { _ = reopened.Close() }()

	assert.True(t, reopened.Existed())

	got, err := reopened.ReadBlock(3)
	require.NoError(t, err)
	assert.Equal(t, block, got)
}

func Test_Open_Returns_ErrLocked_When_Image_Already_Open(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "data")

	first, err := openImage(t, path)
	require.NoError(t, err)

	defer func() { _ = first.Close() }()

	_, err = openImage(t, path)
	require.ErrorIs(t, err, vdisk.ErrLocked)
}

func Test_Open_Returns_ErrImageSize_And_Releases_Lock_When_File_Truncated(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "data")
	require.NoError(t, os.WriteFile(path, []byte("short"), 0o644))

	_, err := openImage(t, path)
	require.ErrorIs(t, err, vdisk.ErrImageSize)

	require.NoError(t, os.WriteFile(path, make([]byte, 64), 0o644))

	img, err := openImage(t, path)
	require.NoError(t, err, "lock must be released after a failed open")
	require.NoError(t, img.Close())
}

func Test_Image_Close_Is_Idempotent(t *testing.T) {
	t.Parallel()

	img, err := openImage(t, filepath.Join(t.TempDir(), "data"))
	require.NoError(t, err)

	require.NoError(t, img.Close())
	require.NoError(t, img.Close())
}

func Test_Image_Save_Keeps_Previous_File_When_Write_Fails(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "data")
	chaos := fs.NewChaos(fs.NewReal(), 7, fs.ChaosConfig{WriteFailRate: 1})
	chaos.SetMode(fs.ChaosModePassthrough)

	img, err := vdisk.Open(chaos, fs.NewLocker(fs.NewReal()), path, smallGeometry())
	require.NoError(t, err)

	defer func() { _ = img.Close() }()

	require.NoError(t, img.WriteBlock(1, bytes.Repeat([]byte{1}, 16)))
	require.NoError(t, img.Save())

	chaos.SetMode(fs.ChaosModeInject)
	require.NoError(t, img.WriteBlock(1, bytes.Repeat([]byte{2}, 16)))

	err = img.Save()
	require.Error(t, err)
	assert.True(t, fs.IsInjected(err))

	onDisk, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, bytes.Repeat([]byte{1}, 16), onDisk[16:32])
}

func Test_Open_Releases_Lock_When_Read_Fails(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "data")
	require.NoError(t, os.WriteFile(path, make([]byte, 64), 0o644))

	chaos := fs.NewChaos(fs.NewReal(), 7, fs.ChaosConfig{ReadFailRate: 1})

	_, err := vdisk.Open(chaos, fs.NewLocker(fs.NewReal()), path, smallGeometry())
	require.Error(t, err)
	assert.True(t, fs.IsInjected(err))

	img, err := openImage(t, path)
	require.NoError(t, err)
	require.NoError(t, img.Close())
}
