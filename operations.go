package vcstore

import (
	"context"
	"time"

	"github.com/hupe1980/vcstore/internal/layout"
	"github.com/hupe1980/vcstore/internal/vectormap"
)

// StoreVector stores vec under id with optional metadata (spec.md §4.5
// store_vector). Preconditions: len(vec) == D, len(metadata) <= 10 KiB. If
// a vector with id already exists, its old on-disk bytes are abandoned in
// place (spec.md §9 Open Question #2): space leaks, it is not reclaimed.
func (s *Store) StoreVector(id uint32, vec []float32, metadata string) error {
	start := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.storeVectorLocked(id, vec, metadata)

	s.opts.metricsCollector.RecordStore(time.Since(start), err)
	cid := uint32(0)
	if e, ok := s.index.Get(id); ok {
		cid = e.ClusterID
	}
	s.opts.logger.LogStore(context.Background(), id, cid, err)

	return err
}

func (s *Store) storeVectorLocked(id uint32, vec []float32, metadata string) error {
	if err := s.requireWritable(); err != nil {
		return translateError(err)
	}
	if len(vec) != int(s.header.VectorDim) {
		return translateError(&DimensionError{Expected: int(s.header.VectorDim), Actual: len(vec)})
	}
	if len(metadata) > layout.MaxMetadataLen {
		return translateError(wrap(ErrInvalidArgument, "metadata length %d exceeds max %d", len(metadata), layout.MaxMetadataLen))
	}

	cid, err := s.strategy.Assign(vec)
	if err != nil {
		return translateError(wrapCause(ErrInvalidArgument, err, "assign cluster"))
	}

	offset, err := s.allocateOffset()
	if err != nil {
		return translateError(err)
	}

	data := encodeVector(vec)
	if err := s.dev.WriteAt(data, offset); err != nil {
		return translateError(wrapCause(ErrIO, err, "write vector data"))
	}

	s.index.Put(&vectormap.Entry{
		VectorID:  id,
		ClusterID: cid,
		Offset:    uint64(offset),
		Metadata:  metadata,
	})

	if _, err := s.strategy.Add(vec, id); err != nil {
		return translateError(wrapCause(ErrInvalidArgument, err, "strategy add"))
	}

	if id >= s.header.NextID {
		s.header.NextID = id + 1
	}

	if err := s.persistAll(); err != nil {
		return translateError(err)
	}
	return nil
}

// allocateOffset returns the next block-aligned data offset and advances
// the cursor by D*4 bytes (spec.md §4.6). The store is full when the
// cursor would exceed the device size.
func (s *Store) allocateOffset() (int64, error) {
	blockSize := int64(s.dev.BlockSize())
	offset := alignUpCursor(s.nextOffset, blockSize)
	vectorBytes := int64(s.header.VectorDim) * 4

	if offset+vectorBytes > s.dev.Size() {
		return 0, wrap(ErrCapacity, "data region exhausted: offset %d + %d bytes exceeds device size %d", offset, vectorBytes, s.dev.Size())
	}

	s.nextOffset = offset + vectorBytes
	return offset, nil
}

// RetrieveVector looks up id's index row and reads its vector bytes from
// disk. It returns (nil, false, nil) if id is unknown (spec.md §4.5
// retrieve_vector).
func (s *Store) RetrieveVector(id uint32) ([]float32, bool, error) {
	start := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	vec, found, err := s.retrieveVectorLocked(id)

	s.opts.metricsCollector.RecordRetrieve(time.Since(start), err)
	s.opts.logger.LogRetrieve(context.Background(), id, found, err)

	return vec, found, err
}

func (s *Store) retrieveVectorLocked(id uint32) ([]float32, bool, error) {
	if err := s.requireOpen(); err != nil {
		return nil, false, translateError(err)
	}

	entry, ok := s.index.Get(id)
	if !ok {
		return nil, false, nil
	}

	buf := make([]byte, int(s.header.VectorDim)*4)
	if err := s.dev.ReadAt(buf, int64(entry.Offset)); err != nil {
		return nil, false, translateError(wrapCause(ErrIO, err, "read vector %d", id))
	}

	return decodeVector(buf), true, nil
}

// GetMetadata returns id's stored metadata string. It returns ("", false,
// nil) if id is unknown.
func (s *Store) GetMetadata(id uint32) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireOpen(); err != nil {
		return "", false, translateError(err)
	}

	entry, ok := s.index.Get(id)
	if !ok {
		return "", false, nil
	}
	return entry.Metadata, true, nil
}

// DeleteVector removes id from the strategy and the index, then persists
// header and maps. Device bytes are not overwritten or reclaimed
// (spec.md §4.5 delete_vector). Deleting an unknown id returns ErrNotFound.
func (s *Store) DeleteVector(id uint32) error {
	start := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.deleteVectorLocked(id)

	s.opts.metricsCollector.RecordDelete(time.Since(start), err)
	s.opts.logger.LogDelete(context.Background(), id, err)
	return err
}

func (s *Store) deleteVectorLocked(id uint32) error {
	if err := s.requireWritable(); err != nil {
		return translateError(err)
	}

	if _, ok := s.index.Get(id); !ok {
		return translateError(wrap(ErrNotFound, "vector %d", id))
	}

	s.strategy.Remove(id)
	s.index.Delete(id)

	if err := s.persistAll(); err != nil {
		return translateError(err)
	}
	return nil
}

func encodeVector(vec []float32) []byte {
	buf := make([]byte, 4*len(vec))
	for i, v := range vec {
		putFloat32(buf[4*i:4*i+4], v)
	}
	return buf
}

func decodeVector(buf []byte) []float32 {
	out := make([]float32, len(buf)/4)
	for i := range out {
		out[i] = getFloat32(buf[4*i : 4*i+4])
	}
	return out
}
