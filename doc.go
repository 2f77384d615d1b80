// Package vcstore implements an embedded vector storage engine that
// persists vectors directly on a raw block device (or a regular file
// emulating one) and serves approximate nearest-neighbor queries over
// clustered vectors.
//
// # Quick Start
//
//	store, _ := vcstore.Initialize("/dev/sdb1", "kmeans", 128, 100)
//	defer store.Close()
//
//	err := store.StoreVector(7, vector, "caption text")
//	got, found, _ := store.RetrieveVector(7)
//	results, _ := store.FindSimilar(query, 10)
//
// # On-Disk Layout
//
// A store occupies four fixed regions: a 512-byte header, a 50 MiB
// cluster-map region holding the clustering strategy's serialized model,
// a 10 MiB vector-map region holding the id -> (cluster, offset, metadata)
// index, and a data region spanning the rest of the device where raw
// vector bytes live, one vector after another at block-aligned offsets.
//
// # Clustering
//
// Vectors are grouped by a pluggable clustering strategy; the only
// built-in implementation is k-means with lazy centroid initialization.
// find_similar routes a query to its closest clusters and scans only
// their members, trading exactness for speed on large stores.
//
// # Concurrency
//
// Every public [Store] method acquires a single per-store mutex for its
// entire duration (spec.md §5). This is an embedded, single-process
// engine: there is no multi-process coordination and no crash-consistent
// journaling. A crash between region writes can leave a store logically
// inconsistent; this is a documented, accepted limitation.
package vcstore
