// Package vcstore implements an embedded vector storage engine that
// persists vectors on a raw block device (or a regular file emulating
// one) and serves approximate nearest-neighbor queries via clustering.
// See store.go, operations.go, search.go, maintenance.go, and persist.go
// for the public API (spec.md §4.5).
package vcstore

import (
	"context"
	"sync"

	"github.com/hupe1980/vcstore/internal/blockio"
	"github.com/hupe1980/vcstore/internal/cluster"
	"github.com/hupe1980/vcstore/internal/fs"
	"github.com/hupe1980/vcstore/internal/layout"
	"github.com/hupe1980/vcstore/internal/vectormap"
)

// State is the orchestrator's lifecycle state (spec.md §4.5).
type State int

const (
	// StateClosed means no device is open; every operation except
	// SaveIndex returns ErrState.
	StateClosed State = iota
	// StateOpenBuffered means the device is open using buffered I/O.
	StateOpenBuffered
	// StateOpenDirect means the device is open using direct (O_DIRECT) I/O.
	StateOpenDirect
)

// Store is the Vector Cluster Store orchestrator (spec.md §4.5). It owns
// the device handle, the fixed on-device layout, the in-memory vector
// index, and the clustering strategy. Every public operation acquires mu
// for its entire duration; no operation is re-entrant.
type Store struct {
	mu sync.Mutex

	opts options

	state    State
	path     string
	readOnly bool

	dev      *blockio.Device
	ffs      fs.FileSystem
	header   *layout.Header
	index    *vectormap.Map
	strategy cluster.Strategy

	nextOffset int64 // data-offset allocator cursor, per-store (spec.md §4.6, §9 "Global state")
}

// Initialize opens the device at path, computes the fixed layout, and
// either loads an existing header/maps or writes a new header and empty
// maps. It fails if path cannot be opened, an existing store's dimension
// disagrees with vectorDim, region sizes cannot fit expected maps, or
// strategyName names an unknown clustering strategy.
func Initialize(path string, strategyName string, vectorDim int, maxClusters int, optFns ...Option) (*Store, error) {
	return initialize(path, strategyName, vectorDim, maxClusters, false, optFns...)
}

// OpenReadOnly opens an existing store without permitting mutation. It
// fails if the store does not already exist (there is nothing to create
// read-only). Write operations (store_vector, delete_vector,
// perform_maintenance, load_index) return ErrState.
//
// Supplemented from original_source's openDevice(readOnly) /
// openDeviceWithDirectIO(readOnly) entry points, which the distilled
// spec.md dropped (SPEC_FULL.md §3).
func OpenReadOnly(path string, optFns ...Option) (*Store, error) {
	s, err := initialize(path, "", 0, 0, true, optFns...)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func initialize(path string, strategyName string, vectorDim int, maxClusters int, readOnly bool, optFns ...Option) (*Store, error) {
	opts := applyOptions(optFns)

	if maxClusters <= 0 {
		maxClusters = opts.maxClusters
	}

	ffs := fs.Default
	dev, downgraded, err := blockio.Open(ffs, path, opts.directIO, opts.blockSize)
	if err != nil {
		return nil, translateError(wrapCause(ErrIO, err, "open %s", path))
	}
	if downgraded {
		opts.logger.WarnContext(context.Background(), "direct I/O unavailable, falling back to buffered mode", "path", path)
	}

	s := &Store{
		opts:     opts,
		path:     path,
		dev:      dev,
		ffs:      ffs,
		readOnly: readOnly,
	}
	if dev.Mode() == blockio.ModeDirect {
		s.state = StateOpenDirect
	} else {
		s.state = StateOpenBuffered
	}

	existing, herr := s.tryLoadHeader()
	if herr != nil {
		dev.Close()
		return nil, translateError(herr)
	}

	if existing != nil {
		if vectorDim != 0 && int(existing.VectorDim) != vectorDim {
			dev.Close()
			return nil, translateError(wrap(ErrFormat, "dimension mismatch: store has %d, requested %d", existing.VectorDim, vectorDim))
		}
		if err := s.loadExisting(existing); err != nil {
			dev.Close()
			return nil, translateError(err)
		}
		return s, nil
	}

	if readOnly {
		dev.Close()
		return nil, translateError(wrap(ErrState, "OpenReadOnly: store does not exist at %s", path))
	}
	if vectorDim <= 0 {
		dev.Close()
		return nil, translateError(wrap(ErrInvalidArgument, "vector dimension must be positive, got %d", vectorDim))
	}

	if err := s.createFresh(strategyName, vectorDim, maxClusters); err != nil {
		dev.Close()
		return nil, translateError(err)
	}
	return s, nil
}

// tryLoadHeader reads and decodes the header, returning (nil, nil) if the
// store is uninitialized (bad signature/version) rather than an error,
// per spec.md §4.2 "Header read acceptance".
func (s *Store) tryLoadHeader() (*layout.Header, error) {
	buf := make([]byte, layout.HeaderSize)
	if err := s.dev.ReadAt(buf, 0); err != nil {
		return nil, wrapCause(ErrIO, err, "read header")
	}
	h, err := layout.Decode(buf)
	if err != nil {
		return nil, nil
	}
	return h, nil
}

func (s *Store) loadExisting(h *layout.Header) error {
	if err := h.Validate(s.dev.Size()); err != nil {
		return wrapCause(ErrFormat, err, "header validation")
	}

	strat, err := cluster.New(h.StrategyName)
	if err != nil {
		return wrapCause(ErrInvalidArgument, err, "strategy %q", h.StrategyName)
	}
	if err := strat.Initialize(int(h.VectorDim), int(h.MaxClusters)); err != nil {
		return wrapCause(ErrInvalidArgument, err, "strategy initialize")
	}

	clusterBuf := make([]byte, layout.ClusterMapRegionSize)
	if err := s.dev.ReadAt(clusterBuf, int64(h.ClusterMapOffset)); err != nil {
		return wrapCause(ErrIO, err, "read cluster map")
	}
	if err := strat.Deserialize(clusterBuf); err != nil {
		return wrapCause(ErrFormat, err, "decode cluster map")
	}

	vmapBuf := make([]byte, layout.VectorMapRegionSize)
	if err := s.dev.ReadAt(vmapBuf, int64(h.VectorMapOffset)); err != nil {
		return wrapCause(ErrIO, err, "read vector map")
	}
	idx, err := vectormap.Decode(vmapBuf)
	if err != nil {
		return wrapCause(ErrFormat, err, "decode vector map")
	}

	s.header = h
	s.strategy = strat
	s.index = idx
	s.nextOffset = alignUpCursor(int64(h.DataOffset), int64(s.dev.BlockSize()))
	return nil
}

func (s *Store) createFresh(strategyName string, vectorDim, maxClusters int) error {
	clusterMapOffset, vectorMapOffset, dataOffset, err := layout.Regions(s.dev.Size())
	if err != nil {
		return wrapCause(ErrFormat, err, "compute layout")
	}

	strat, err := cluster.New(strategyName)
	if err != nil {
		return wrapCause(ErrInvalidArgument, err, "strategy %q", strategyName)
	}
	if err := strat.Initialize(vectorDim, maxClusters); err != nil {
		return wrapCause(ErrInvalidArgument, err, "strategy initialize")
	}

	s.header = &layout.Header{
		Version:          layout.Version,
		VectorDim:        uint32(vectorDim),
		MaxClusters:      uint32(maxClusters),
		VectorCount:      0,
		NextID:           0,
		ClusterMapOffset: clusterMapOffset,
		VectorMapOffset:  vectorMapOffset,
		DataOffset:       dataOffset,
		StrategyName:     strat.Name(),
	}
	s.strategy = strat
	s.index = vectormap.New()
	s.nextOffset = int64(dataOffset)

	return s.persistAll()
}

// alignUpCursor rounds n up to the nearest multiple of block, matching the
// data-offset allocator's rounding rule (spec.md §4.6).
func alignUpCursor(n, block int64) int64 {
	if block <= 0 {
		return n
	}
	return ((n + block - 1) / block) * block
}

// persistAll writes vector data's neighbors in the required order: header
// -> vector-map -> cluster-map (spec.md §5 "Ordering guarantees"; vector
// data itself, when present, is written by the caller before this).
func (s *Store) persistAll() error {
	vmapBuf, err := vectormap.Encode(s.index, layout.VectorMapRegionSize)
	if err != nil {
		return wrapCause(ErrFormat, err, "encode vector map")
	}
	clusterBuf, err := s.strategy.Serialize()
	if err != nil {
		return wrapCause(ErrFormat, err, "serialize cluster strategy")
	}
	if len(clusterBuf) > layout.ClusterMapRegionSize {
		return wrap(ErrFormat, "serialized cluster map %d bytes exceeds region size %d", len(clusterBuf), layout.ClusterMapRegionSize)
	}

	s.header.VectorCount = uint32(s.index.Len())

	headerBuf, err := layout.Encode(s.header)
	if err != nil {
		return wrapCause(ErrFormat, err, "encode header")
	}

	if err := s.dev.WriteAt(headerBuf, 0); err != nil {
		return wrapCause(ErrIO, err, "write header")
	}
	if err := s.dev.WriteAt(vmapBuf, int64(s.header.VectorMapOffset)); err != nil {
		return wrapCause(ErrIO, err, "write vector map")
	}
	if err := s.dev.WriteAt(clusterBuf, int64(s.header.ClusterMapOffset)); err != nil {
		return wrapCause(ErrIO, err, "write cluster map")
	}
	return nil
}

// requireOpen returns ErrState if the store has already been closed.
func (s *Store) requireOpen() error {
	if s.state == StateClosed {
		return wrap(ErrState, "operation issued on a closed store")
	}
	return nil
}

// requireWritable returns ErrState if the store is closed or was opened
// via OpenReadOnly.
func (s *Store) requireWritable() error {
	if err := s.requireOpen(); err != nil {
		return err
	}
	if s.readOnly {
		return wrap(ErrState, "operation requires a writable store, opened read-only")
	}
	return nil
}
