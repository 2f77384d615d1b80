package vcstore

import (
	"encoding/binary"
	"math"
)

// putFloat32 writes v as 4 little-endian bytes into buf.
func putFloat32(buf []byte, v float32) {
	binary.LittleEndian.PutUint32(buf, math.Float32bits(v))
}

// getFloat32 reads 4 little-endian bytes from buf as a float32.
func getFloat32(buf []byte) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(buf))
}
