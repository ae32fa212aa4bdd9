package fatfs_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/vfat/internal/testutil"
	"github.com/calvinalkan/vfat/pkg/fatfs"
	"github.com/calvinalkan/vfat/pkg/vdisk"
)

func newDevice(t *testing.T, geo vdisk.Geometry) *vdisk.Memory {
	t.Helper()

	dev, err := vdisk.NewMemory(geo)
	require.NoError(t, err)

	return dev
}

// mount formats a fresh default-size device with a deterministic clock.
func mount(t *testing.T, opts fatfs.Options) (*fatfs.FS, *vdisk.Memory) {
	t.Helper()

	return mountOn(t, newDevice(t, vdisk.DefaultGeometry()), opts)
}

func mountOn(t *testing.T, dev vdisk.Device, opts fatfs.Options) (*fatfs.FS, *vdisk.Memory) {
	t.Helper()

	if opts.Now == nil {
		opts.Now = testutil.NewClock().Now
	}

	fsys, err := fatfs.Mount(dev, opts)
	require.NoError(t, err)

	mem, _ := dev.(*vdisk.Memory)

	return fsys, mem
}

func names(entries []fatfs.Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.FullName())
	}

	return out
}

func listNames(t *testing.T, fsys *fatfs.FS) []string {
	t.Helper()

	entries, err := fsys.List()
	require.NoError(t, err)

	return names(entries)
}
