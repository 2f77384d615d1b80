package blockio

import (
	"fmt"
	"os"

	"github.com/hupe1980/vcstore/internal/alignedbuf"
	"github.com/hupe1980/vcstore/internal/fs"
)

// Mode identifies whether a Device performs direct or buffered I/O.
type Mode int

const (
	// ModeBuffered issues plain positioned reads/writes through the page cache.
	ModeBuffered Mode = iota
	// ModeDirect bypasses the page cache; all I/O is block-aligned.
	ModeDirect
)

func (m Mode) String() string {
	if m == ModeDirect {
		return "direct"
	}
	return "buffered"
}

const defaultRegularFileBlockSize = 512
const minRegularFileSize = 100 * 1024 * 1024 // 100 MiB

// Device wraps an open file or block device with alignment-aware positioned
// I/O. It owns exactly one fd; Close() closes it exactly once.
type Device struct {
	file      fs.File
	path      string
	size      int64
	blockSize int
	mode      Mode
}

// Open opens path (creating a regular file if absent) and determines its
// size and block size. If wantDirect is true, Open attempts O_DIRECT and
// falls back to buffered mode on failure; downgraded reports whether that
// fallback happened so the caller can log it. blockSizeOverride, if
// positive, replaces defaultRegularFileBlockSize for regular files; it has
// no effect on a real block device, whose block size always comes from
// BLKSSZGET.
func Open(ffs fs.FileSystem, path string, wantDirect bool, blockSizeOverride int) (dev *Device, downgraded bool, err error) {
	if ffs == nil {
		ffs = fs.Default
	}

	if wantDirect && !directIOSupported() {
		wantDirect = false
		downgraded = true
	}

	flags := os.O_RDWR | os.O_CREATE
	if wantDirect {
		flags |= directOpenFlag()
	}

	f, err := ffs.OpenFile(path, flags, 0644)
	if wantDirect && err != nil {
		// Retry without O_DIRECT; some filesystems (tmpfs, overlayfs) reject it outright.
		f, err = ffs.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
		wantDirect = false
		downgraded = true
	}
	if err != nil {
		return nil, false, fmt.Errorf("blockio: open %s: %w", path, err)
	}

	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, false, fmt.Errorf("blockio: stat %s: %w", path, err)
	}

	var size int64
	var blockSize int

	if isBlockDevice(fi) {
		size, blockSize, err = blockDeviceGeometry(f.Fd())
		if err != nil {
			f.Close()
			return nil, false, fmt.Errorf("blockio: geometry %s: %w", path, err)
		}
	} else {
		size = fi.Size()
		blockSize = defaultRegularFileBlockSize
		if blockSizeOverride > 0 {
			blockSize = blockSizeOverride
		}
		if size < minRegularFileSize {
			if err := ffs.Truncate(path, minRegularFileSize); err != nil {
				f.Close()
				return nil, false, fmt.Errorf("blockio: extend %s: %w", path, err)
			}
			size = minRegularFileSize
		}
	}

	mode := ModeBuffered
	if wantDirect {
		mode = ModeDirect
	}

	return &Device{
		file:      f,
		path:      path,
		size:      size,
		blockSize: blockSize,
		mode:      mode,
	}, downgraded, nil
}

// Size returns the device's total size in bytes.
func (d *Device) Size() int64 { return d.size }

// BlockSize returns the device's logical block size in bytes.
func (d *Device) BlockSize() int { return d.blockSize }

// Mode reports whether the device is operating in direct or buffered mode.
func (d *Device) Mode() Mode { return d.mode }

// Sync flushes any buffered data to the underlying device.
func (d *Device) Sync() error { return d.file.Sync() }

// Close closes the underlying fd. It is not safe to call twice.
func (d *Device) Close() error { return d.file.Close() }

// ReadAt reads exactly len(p) bytes starting at off. A short read is
// reported as an error; there is no automatic retry (spec.md §4.1).
func (d *Device) ReadAt(p []byte, off int64) error {
	if len(p) == 0 {
		return nil
	}
	if d.mode == ModeBuffered {
		return d.readBuffered(p, off)
	}
	return d.readDirect(p, off)
}

// WriteAt writes exactly len(p) bytes starting at off. A short write is
// reported as an error; there is no automatic retry (spec.md §4.1).
func (d *Device) WriteAt(p []byte, off int64) error {
	if len(p) == 0 {
		return nil
	}
	if d.mode == ModeBuffered {
		return d.writeBuffered(p, off)
	}
	return d.writeDirect(p, off)
}

func (d *Device) readBuffered(p []byte, off int64) error {
	n, err := d.file.ReadAt(p, off)
	if err != nil {
		return fmt.Errorf("blockio: short read at %d: %w", off, err)
	}
	if n != len(p) {
		return fmt.Errorf("blockio: short read at %d: got %d, want %d", off, n, len(p))
	}
	return nil
}

func (d *Device) writeBuffered(p []byte, off int64) error {
	n, err := d.file.WriteAt(p, off)
	if err != nil {
		return fmt.Errorf("blockio: short write at %d: %w", off, err)
	}
	if n != len(p) {
		return fmt.Errorf("blockio: short write at %d: wrote %d, want %d", off, n, len(p))
	}
	return nil
}

// alignDown rounds off down to the nearest multiple of the block size.
func (d *Device) alignDown(off int64) int64 {
	b := int64(d.blockSize)
	return (off / b) * b
}

// alignUp rounds n up to the nearest multiple of the block size.
func (d *Device) alignUp(n int64) int64 {
	b := int64(d.blockSize)
	return ((n + b - 1) / b) * b
}

func (d *Device) readDirect(p []byte, off int64) error {
	alignedOffset := d.alignDown(off)
	delta := off - alignedOffset
	alignedLen := d.alignUp(int64(len(p)) + delta)

	scratch, err := alignedbuf.Alloc(int(alignedLen))
	if err != nil {
		return fmt.Errorf("blockio: alloc aligned buffer: %w", err)
	}
	defer alignedbuf.Free(scratch)

	n, err := d.file.ReadAt(scratch, alignedOffset)
	if err != nil {
		return fmt.Errorf("blockio: direct read at %d: %w", alignedOffset, err)
	}
	if n != len(scratch) {
		return fmt.Errorf("blockio: direct short read at %d: got %d, want %d", alignedOffset, n, len(scratch))
	}

	copy(p, scratch[delta:delta+int64(len(p))])
	return nil
}

func (d *Device) writeDirect(p []byte, off int64) error {
	alignedOffset := d.alignDown(off)
	delta := off - alignedOffset
	alignedLen := d.alignUp(int64(len(p)) + delta)

	scratch, err := alignedbuf.Alloc(int(alignedLen))
	if err != nil {
		return fmt.Errorf("blockio: alloc aligned buffer: %w", err)
	}
	defer alignedbuf.Free(scratch)

	needsReadModifyWrite := delta > 0 || int64(len(p))%int64(d.blockSize) != 0
	if needsReadModifyWrite {
		n, err := d.file.ReadAt(scratch, alignedOffset)
		if err != nil {
			return fmt.Errorf("blockio: read-modify-write read at %d: %w", alignedOffset, err)
		}
		if n != len(scratch) {
			return fmt.Errorf("blockio: read-modify-write short read at %d: got %d, want %d", alignedOffset, n, len(scratch))
		}
	}

	copy(scratch[delta:delta+int64(len(p))], p)

	n, err := d.file.WriteAt(scratch, alignedOffset)
	if err != nil {
		return fmt.Errorf("blockio: direct write at %d: %w", alignedOffset, err)
	}
	if n != len(scratch) {
		return fmt.Errorf("blockio: direct short write at %d: got %d, want %d", alignedOffset, n, len(scratch))
	}
	return nil
}
