// Package alignedbuf allocates page-aligned scratch buffers for direct I/O.
//
// Go's make([]byte, n) gives no alignment guarantee, but O_DIRECT reads and
// writes require the buffer address (not just offset and length) to be a
// multiple of the device's logical block size. This package satisfies that
// by asking the OS for an anonymous memory mapping, which is always
// page-aligned and therefore safe for any block size this store will ever
// encounter (512B-4KiB logical blocks are strict divisors of a 4KiB+ page).
package alignedbuf
