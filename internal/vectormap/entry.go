package vectormap

import "sort"

// Entry is one row of the vector index: where a vector's raw data lives on
// device, which cluster it currently belongs to, and its user metadata.
type Entry struct {
	VectorID  uint32
	ClusterID uint32
	Offset    uint64
	Metadata  string
}

// Map is the in-memory vector index, keyed by vector id. It is not
// goroutine-safe; callers serialize access (the orchestrator does this via
// its per-store mutex, per spec.md §5).
type Map struct {
	entries map[uint32]*Entry
}

// New returns an empty Map.
func New() *Map {
	return &Map{entries: make(map[uint32]*Entry)}
}

// Get returns the entry for id, if present.
func (m *Map) Get(id uint32) (*Entry, bool) {
	e, ok := m.entries[id]
	return e, ok
}

// Put inserts or overwrites the entry for id.
func (m *Map) Put(e *Entry) {
	m.entries[e.VectorID] = e
}

// Delete removes the entry for id, if present.
func (m *Map) Delete(id uint32) {
	delete(m.entries, id)
}

// Len returns the number of entries currently tracked.
func (m *Map) Len() int {
	return len(m.entries)
}

// Range calls fn for every entry. Iteration order is unspecified.
func (m *Map) Range(fn func(e *Entry)) {
	for _, e := range m.entries {
		fn(e)
	}
}

// All returns a stable-ordered snapshot of all entries, sorted by vector id.
// Callers that need deterministic iteration (encoding, maintenance sweeps)
// should use this instead of Range.
func (m *Map) All() []*Entry {
	out := make([]*Entry, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].VectorID < out[j].VectorID })
	return out
}
