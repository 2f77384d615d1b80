// Package cluster implements the pluggable clustering strategy contract
// (spec.md §4.4) and its one built-in implementation, k-means with lazy
// centroid initialization and incremental updates.
//
// Per-cluster membership is tracked with a roaring.Bitmap (grounded on the
// teacher's internal/metadata.LocalBitmap wrapper), which keeps the
// membership sets compact even as vector ids grow sparse through deletes
// and reassignment.
package cluster
