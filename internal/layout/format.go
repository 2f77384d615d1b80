package layout

import "fmt"

const (
	// HeaderSize is the fixed size, in bytes, of the on-device header.
	HeaderSize = 512

	// ClusterMapRegionSize is the fixed size of the cluster-map region.
	ClusterMapRegionSize = 50 * 1024 * 1024

	// VectorMapRegionSize is the fixed size of the vector-map region.
	VectorMapRegionSize = 10 * 1024 * 1024

	// Version is the only on-device format version this package understands.
	Version = 1

	// MaxVectorCount bounds the vector-map's num_vectors field.
	MaxVectorCount = 1_000_000

	// MaxMetadataLen bounds a single vector entry's metadata length.
	MaxMetadataLen = 10 * 1024

	strategyNameLen = 32
	reservedLen     = HeaderSize - (8 + 4*5 + 8*3 + strategyNameLen)
)

// Signature is the 8-byte ASCII literal that identifies a vcstore file.
var Signature = [8]byte{'V', 'C', 'S', 'T', 'O', 'R', 'E', '1'}

func init() {
	if reservedLen < 0 {
		panic("layout: header field layout exceeds HeaderSize")
	}
}

// Header is the decoded form of the 512-byte on-device header (§3 StoreHeader).
type Header struct {
	Version         uint32
	VectorDim       uint32
	MaxClusters     uint32
	VectorCount     uint32
	NextID          uint32
	ClusterMapOffset uint64
	VectorMapOffset  uint64
	DataOffset       uint64
	StrategyName     string
}

// Regions computes the fixed region layout given a device size. The header
// occupies [0, HeaderSize); the cluster-map, vector-map, and data regions
// follow it in order, with the data region absorbing whatever space remains.
func Regions(deviceSize int64) (clusterMapOffset, vectorMapOffset, dataOffset uint64, err error) {
	clusterMapOffset = HeaderSize
	vectorMapOffset = clusterMapOffset + ClusterMapRegionSize
	dataOffset = vectorMapOffset + VectorMapRegionSize
	if int64(dataOffset) >= deviceSize {
		return 0, 0, 0, fmt.Errorf("layout: device size %d too small to fit fixed regions (need > %d)", deviceSize, dataOffset)
	}
	return clusterMapOffset, vectorMapOffset, dataOffset, nil
}

// Validate checks the invariants from spec.md §3 invariant 1: region
// offsets must be strictly increasing and fit within the device.
func (h *Header) Validate(deviceSize int64) error {
	if !(0 < h.ClusterMapOffset && h.ClusterMapOffset < h.VectorMapOffset && h.VectorMapOffset < h.DataOffset) {
		return fmt.Errorf("layout: region offsets out of order: cluster=%d vector=%d data=%d", h.ClusterMapOffset, h.VectorMapOffset, h.DataOffset)
	}
	if int64(h.DataOffset) > deviceSize {
		return fmt.Errorf("layout: data offset %d exceeds device size %d", h.DataOffset, deviceSize)
	}
	return nil
}
