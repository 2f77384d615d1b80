// Package vectormap implements the in-memory vector index and its two
// on-device encodings (spec.md §4.3 and §6): the vector-map region format
// written at vector_map_offset, and the .vmap sidecar format used by
// save_index/load_index, which additionally echoes the vector id between
// the outer id and cluster_id for historical round-trip compatibility.
//
// Grounded on the teacher's persistence package layout: small, explicit
// binary codecs with bounds checks performed before any allocation.
package vectormap
