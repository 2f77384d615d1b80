//go:build unix || linux || darwin || freebsd || openbsd || netbsd

package alignedbuf

import "golang.org/x/sys/unix"

func osAllocAnon(size int) ([]byte, error) {
	data, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, err
	}
	return data, nil
}

func osFreeAnon(buf []byte) error {
	return unix.Munmap(buf)
}
