// Package distance provides the similarity kernels used to compare vectors
// and cluster centroids: cosine similarity, squared L2, and dot product.
//
// Kernels operate on equal-length float32 slices and never allocate; callers
// own both buffers. The package intentionally stays on plain Go loops rather
// than platform-specific SIMD assembly — at the vector widths this store
// deals with (tens to low thousands of dimensions, scanning at most a few
// clusters per query) the loop vectorizes well under the Go compiler, and
// keeping the kernels portable avoids a large asm surface this module has no
// way to exercise across architectures.
package distance
