package vectormap

import (
	"encoding/binary"
	"fmt"

	"github.com/hupe1980/vcstore/internal/layout"
)

// Encode serializes m in the on-device vector-map region format (spec.md
// §4.3): u32 num_vectors, followed by repeated {u32 vector_id, u32
// cluster_id, u64 offset, u32 metadata_len, metadata bytes}. The result
// must fit within regionSize or Encode fails.
func Encode(m *Map, regionSize int) ([]byte, error) {
	entries := m.All()

	if len(entries) > layout.MaxVectorCount {
		return nil, fmt.Errorf("vectormap: %d vectors exceeds max %d", len(entries), layout.MaxVectorCount)
	}

	buf := make([]byte, 4, regionSize)
	binary.LittleEndian.PutUint32(buf, uint32(len(entries)))

	for _, e := range entries {
		if len(e.Metadata) > layout.MaxMetadataLen {
			return nil, fmt.Errorf("vectormap: vector %d metadata length %d exceeds max %d", e.VectorID, len(e.Metadata), layout.MaxMetadataLen)
		}

		row := make([]byte, 4+4+8+4+len(e.Metadata))
		binary.LittleEndian.PutUint32(row[0:4], e.VectorID)
		binary.LittleEndian.PutUint32(row[4:8], e.ClusterID)
		binary.LittleEndian.PutUint64(row[8:16], e.Offset)
		binary.LittleEndian.PutUint32(row[16:20], uint32(len(e.Metadata)))
		copy(row[20:], e.Metadata)

		if len(buf)+len(row) > regionSize {
			return nil, fmt.Errorf("vectormap: serialized size exceeds region size %d", regionSize)
		}
		buf = append(buf, row...)
	}

	return buf, nil
}

// Decode parses the on-device vector-map region format into a fresh Map.
func Decode(buf []byte) (*Map, error) {
	if len(buf) < 4 {
		return nil, fmt.Errorf("vectormap: buffer too short for num_vectors field")
	}

	numVectors := binary.LittleEndian.Uint32(buf)
	if numVectors > layout.MaxVectorCount {
		return nil, fmt.Errorf("vectormap: num_vectors %d exceeds max %d", numVectors, layout.MaxVectorCount)
	}

	m := New()
	off := 4
	for i := uint32(0); i < numVectors; i++ {
		if off+20 > len(buf) {
			return nil, fmt.Errorf("vectormap: truncated entry %d", i)
		}
		vectorID := binary.LittleEndian.Uint32(buf[off : off+4])
		clusterID := binary.LittleEndian.Uint32(buf[off+4 : off+8])
		offset := binary.LittleEndian.Uint64(buf[off+8 : off+16])
		metaLen := binary.LittleEndian.Uint32(buf[off+16 : off+20])
		off += 20

		if metaLen > layout.MaxMetadataLen {
			return nil, fmt.Errorf("vectormap: entry %d metadata length %d exceeds max %d", i, metaLen, layout.MaxMetadataLen)
		}
		if off+int(metaLen) > len(buf) {
			return nil, fmt.Errorf("vectormap: truncated metadata for entry %d", i)
		}
		metadata := string(buf[off : off+int(metaLen)])
		off += int(metaLen)

		m.Put(&Entry{VectorID: vectorID, ClusterID: clusterID, Offset: offset, Metadata: metadata})
	}

	return m, nil
}

// EncodeSidecar serializes m in the .vmap sidecar format (spec.md §6): the
// same shape as Encode, but each row additionally echoes the vector id
// between the outer id and cluster_id, for round-trip compatibility with
// pre-existing sidecars.
func EncodeSidecar(m *Map) ([]byte, error) {
	entries := m.All()

	if len(entries) > layout.MaxVectorCount {
		return nil, fmt.Errorf("vectormap: %d vectors exceeds max %d", len(entries), layout.MaxVectorCount)
	}

	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, uint32(len(entries)))

	for _, e := range entries {
		if len(e.Metadata) > layout.MaxMetadataLen {
			return nil, fmt.Errorf("vectormap: vector %d metadata length %d exceeds max %d", e.VectorID, len(e.Metadata), layout.MaxMetadataLen)
		}

		row := make([]byte, 4+4+4+8+4+len(e.Metadata))
		binary.LittleEndian.PutUint32(row[0:4], e.VectorID)
		binary.LittleEndian.PutUint32(row[4:8], e.VectorID) // echo, see spec.md §6
		binary.LittleEndian.PutUint32(row[8:12], e.ClusterID)
		binary.LittleEndian.PutUint64(row[12:20], e.Offset)
		binary.LittleEndian.PutUint32(row[20:24], uint32(len(e.Metadata)))
		copy(row[24:], e.Metadata)

		buf = append(buf, row...)
	}

	return buf, nil
}

// DecodeSidecar parses the .vmap sidecar format into a fresh Map, verifying
// that the echoed vector id matches the outer one.
func DecodeSidecar(buf []byte) (*Map, error) {
	if len(buf) < 4 {
		return nil, fmt.Errorf("vectormap: sidecar buffer too short for num_vectors field")
	}

	numVectors := binary.LittleEndian.Uint32(buf)
	if numVectors > layout.MaxVectorCount {
		return nil, fmt.Errorf("vectormap: num_vectors %d exceeds max %d", numVectors, layout.MaxVectorCount)
	}

	m := New()
	off := 4
	for i := uint32(0); i < numVectors; i++ {
		if off+24 > len(buf) {
			return nil, fmt.Errorf("vectormap: truncated sidecar entry %d", i)
		}
		vectorID := binary.LittleEndian.Uint32(buf[off : off+4])
		echo := binary.LittleEndian.Uint32(buf[off+4 : off+8])
		clusterID := binary.LittleEndian.Uint32(buf[off+8 : off+12])
		offset := binary.LittleEndian.Uint64(buf[off+12 : off+20])
		metaLen := binary.LittleEndian.Uint32(buf[off+20 : off+24])
		off += 24

		if echo != vectorID {
			return nil, fmt.Errorf("vectormap: sidecar entry %d vector id echo mismatch: %d != %d", i, echo, vectorID)
		}
		if metaLen > layout.MaxMetadataLen {
			return nil, fmt.Errorf("vectormap: sidecar entry %d metadata length %d exceeds max %d", i, metaLen, layout.MaxMetadataLen)
		}
		if off+int(metaLen) > len(buf) {
			return nil, fmt.Errorf("vectormap: truncated sidecar metadata for entry %d", i)
		}
		metadata := string(buf[off : off+int(metaLen)])
		off += int(metaLen)

		m.Put(&Entry{VectorID: vectorID, ClusterID: clusterID, Offset: offset, Metadata: metadata})
	}

	return m, nil
}
