// Package blockio implements positioned, alignment-aware reads and writes
// over an open block device or regular file (spec.md §4.1 Aligned Block I/O).
//
// Two modes are supported:
//
//   - Buffered: plain positioned reads/writes, no alignment requirement.
//   - Direct: O_DIRECT, requiring every buffer, offset, and length to be a
//     multiple of the device's logical block size. Device performs the
//     read-modify-write dance for partial blocks itself so callers never
//     have to think about alignment.
//
// If a direct-mode open fails, Open transparently falls back to buffered
// mode and reports the downgrade to the caller so it can be logged.
package blockio
