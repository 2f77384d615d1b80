//go:build linux

package blockio

import (
	"os"
	"unsafe"

	"golang.org/x/sys/unix"
)

// isBlockDevice reports whether fi describes a block device rather than a
// regular file.
func isBlockDevice(fi os.FileInfo) bool {
	return fi.Mode()&os.ModeDevice != 0 && fi.Mode()&os.ModeCharDevice == 0
}

// blockDeviceGeometry queries a block device's total size and logical block
// size via the BLKGETSIZE64/BLKSSZGET ioctls.
func blockDeviceGeometry(fd uintptr) (size int64, blockSize int, err error) {
	var sz uint64
	if err := ioctl(fd, unix.BLKGETSIZE64, unsafe.Pointer(&sz)); err != nil {
		return 0, 0, err
	}
	bs, err := unix.IoctlGetInt(int(fd), unix.BLKSSZGET)
	if err != nil {
		return 0, 0, err
	}
	return int64(sz), bs, nil
}

func ioctl(fd uintptr, req uint, arg unsafe.Pointer) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, fd, uintptr(req), uintptr(arg))
	if errno != 0 {
		return errno
	}
	return nil
}
