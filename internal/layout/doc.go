// Package layout defines the on-device region layout of a vcstore file: the
// 512-byte header, and the cluster-map, vector-map, and data regions that
// follow it. It owns the header's binary encoding and the bounds checks that
// keep a region's serialized contents from overflowing into its neighbor.
//
// Nothing in this package touches an fd directly; Encode and Decode operate
// on byte slices, so it can be exercised without a real block device. The
// caller reads and writes those bytes through internal/blockio's aligned
// positioned I/O.
package layout
