//go:build !linux

package blockio

import (
	"errors"
	"os"
)

var errNoBlockDeviceSupport = errors.New("blockio: block device geometry ioctls are only implemented on linux")

func isBlockDevice(fi os.FileInfo) bool {
	return fi.Mode()&os.ModeDevice != 0 && fi.Mode()&os.ModeCharDevice == 0
}

func blockDeviceGeometry(fd uintptr) (size int64, blockSize int, err error) {
	return 0, 0, errNoBlockDeviceSupport
}
