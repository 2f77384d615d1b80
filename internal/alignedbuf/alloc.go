package alignedbuf

// Alloc returns a page-aligned, zeroed buffer of exactly size bytes.
// For the buffer to be usable as an O_DIRECT target, size must be a
// multiple of the device block size; callers round up to the block size
// before calling this. Block sizes divide the page size, so the page-aligned
// start address is always block-aligned.
func Alloc(size int) ([]byte, error) {
	if size <= 0 {
		return nil, nil
	}
	return osAllocAnon(size)
}

// Free releases a buffer obtained from Alloc. It is a no-op on a nil or
// empty buffer.
func Free(buf []byte) error {
	if len(buf) == 0 {
		return nil
	}
	return osFreeAnon(buf)
}
