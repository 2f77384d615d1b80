package blockio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/vcstore/internal/fs"
)

func TestOpenRegularFileExtendsToMinimumSize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.dat")

	dev, downgraded, err := Open(fs.Default, path, false, 0)
	require.NoError(t, err)
	defer dev.Close()

	assert.False(t, downgraded)
	assert.Equal(t, ModeBuffered, dev.Mode())
	assert.GreaterOrEqual(t, dev.Size(), int64(minRegularFileSize))

	fi, err := os.Stat(path)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, fi.Size(), int64(minRegularFileSize))
}

func TestBufferedWriteReadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.dat")
	dev, _, err := Open(fs.Default, path, false, 0)
	require.NoError(t, err)
	defer dev.Close()

	want := []byte("hello vcstore")
	require.NoError(t, dev.WriteAt(want, 1024))

	got := make([]byte, len(want))
	require.NoError(t, dev.ReadAt(got, 1024))
	assert.Equal(t, want, got)
}

func TestWriteAtReportsShortWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.dat")
	ffs := fs.NewFaultyFS(fs.Default)
	ffs.AddRule("store.dat", fs.Fault{FailAfterBytes: -1, ShortWriteAt: 2})

	dev, _, err := Open(ffs, path, false, 0)
	require.NoError(t, err)
	defer dev.Close()

	err = dev.WriteAt([]byte("abcdef"), 0)
	assert.Error(t, err)
}

func TestReadAtPropagatesFault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.dat")
	ffs := fs.NewFaultyFS(fs.Default)
	ffs.AddRule("store.dat", fs.Fault{FailAfterBytes: -1, FailOnReadAt: true})

	dev, _, err := Open(ffs, path, false, 0)
	require.NoError(t, err)
	defer dev.Close()

	err = dev.ReadAt(make([]byte, 8), 0)
	assert.Error(t, err)
}

func TestZeroLengthIsNoop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.dat")
	dev, _, err := Open(fs.Default, path, false, 0)
	require.NoError(t, err)
	defer dev.Close()

	assert.NoError(t, dev.ReadAt(nil, 0))
	assert.NoError(t, dev.WriteAt(nil, 0))
}

func TestDirectModeFallsBackWhenUnsupported(t *testing.T) {
	if directIOSupported() {
		t.Skip("platform supports O_DIRECT; fallback path not exercised here")
	}
	path := filepath.Join(t.TempDir(), "store.dat")
	dev, downgraded, err := Open(fs.Default, path, true, 0)
	require.NoError(t, err)
	defer dev.Close()

	assert.True(t, downgraded)
	assert.Equal(t, ModeBuffered, dev.Mode())
}

func TestOpenRegularFileHonorsBlockSizeOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.dat")

	dev, _, err := Open(fs.Default, path, false, 4096)
	require.NoError(t, err)
	defer dev.Close()

	assert.Equal(t, 4096, dev.BlockSize())
}

func TestDirectReadWriteRoundTripsSubBlockAlignedData(t *testing.T) {
	// Exercises writeDirect/readDirect's read-modify-write alignment
	// arithmetic directly, bypassing the O_DIRECT-open negotiation in Open
	// (the underlying fd need not actually support O_DIRECT for this: the
	// aligned-buffer math in readDirect/writeDirect is what's under test).
	path := filepath.Join(t.TempDir(), "store.dat")
	f, err := fs.Default.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	require.NoError(t, err)
	require.NoError(t, fs.Default.Truncate(path, minRegularFileSize))

	dev := &Device{file: f, size: minRegularFileSize, blockSize: 4096, mode: ModeDirect}
	defer dev.Close()

	// off is mid-block and len(want) doesn't fill a whole block, forcing
	// both a non-zero delta and a read-modify-write on the trailing edge.
	want := []byte("sits mid-block inside one 4096-byte block, not block-sized")
	const off = 4096 + 100
	require.NoError(t, dev.WriteAt(want, off))

	got := make([]byte, len(want))
	require.NoError(t, dev.ReadAt(got, off))
	assert.Equal(t, want, got)

	// A second, overlapping write must not corrupt bytes outside its range:
	// confirms the read-modify-write path preserves the rest of the block.
	second := []byte("XYZ")
	require.NoError(t, dev.WriteAt(second, off+10))

	full := make([]byte, len(want))
	require.NoError(t, dev.ReadAt(full, off))
	expected := append([]byte{}, want...)
	copy(expected[10:], second)
	assert.Equal(t, expected, full)
}

func TestAlignDownAlignUp(t *testing.T) {
	d := &Device{blockSize: 512}
	assert.Equal(t, int64(0), d.alignDown(100))
	assert.Equal(t, int64(512), d.alignDown(512))
	assert.Equal(t, int64(1024), d.alignDown(1200))

	assert.Equal(t, int64(512), d.alignUp(1))
	assert.Equal(t, int64(512), d.alignUp(512))
	assert.Equal(t, int64(1024), d.alignUp(513))
}
