package cluster

import (
	"encoding/binary"
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/vcstore/internal/quant"
)

// Serialize writes the full k-means model in the format from spec.md §4.4:
//
//	u32 vector_dim, u32 max_clusters,
//	u32 num_vectors,
//	repeated: u32 vector_id, u32 cluster_id, f32[D] data,
//	u32 num_clusters,
//	repeated: u32 cluster_id, u32 cluster_info_size, bytes cluster_info
//
// ClusterInfo uses 16-bit quantized centroids (package quant).
func (k *KMeans) Serialize() ([]byte, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	var buf []byte
	head := make([]byte, 12)
	binary.LittleEndian.PutUint32(head[0:4], uint32(k.dim))
	binary.LittleEndian.PutUint32(head[4:8], uint32(k.maxClusters))
	binary.LittleEndian.PutUint32(head[8:12], uint32(len(k.vectors)))
	buf = append(buf, head...)

	for _, row := range k.vectors {
		rec := make([]byte, 4+4+4*k.dim)
		binary.LittleEndian.PutUint32(rec[0:4], row.id)
		binary.LittleEndian.PutUint32(rec[4:8], k.findMembership(row.id))
		for i, v := range row.data {
			binary.LittleEndian.PutUint32(rec[8+4*i:12+4*i], uint32FromFloat32(v))
		}
		buf = append(buf, rec...)
	}

	numClusters := len(k.centroids)
	numClustersBuf := make([]byte, 4)
	binary.LittleEndian.PutUint32(numClustersBuf, uint32(numClusters))
	buf = append(buf, numClustersBuf...)

	for cid, centroid := range k.centroids {
		info := encodeClusterInfo(uint32(cid), k.members[cid], centroid)

		entry := make([]byte, 4+4)
		binary.LittleEndian.PutUint32(entry[0:4], uint32(cid))
		binary.LittleEndian.PutUint32(entry[4:8], uint32(len(info)))
		buf = append(buf, entry...)
		buf = append(buf, info...)
	}

	return buf, nil
}

// encodeClusterInfo serializes one ClusterInfo record: header fields
// (cluster_id, vector_count, capacity, start_offset, centroid_dim), then
// the quantized centroid (f32 scale, i16[D] codes).
func encodeClusterInfo(clusterID uint32, members *roaring.Bitmap, centroid []float32) []byte {
	var count uint32
	if members != nil {
		count = uint32(members.GetCardinality())
	}

	scale, codes := quant.Quantize16(centroid)

	buf := make([]byte, 4+4+4+8+4+4+2*len(codes))
	binary.LittleEndian.PutUint32(buf[0:4], clusterID)
	binary.LittleEndian.PutUint32(buf[4:8], count)
	binary.LittleEndian.PutUint32(buf[8:12], count) // capacity: no separate preallocation concept
	binary.LittleEndian.PutUint64(buf[12:20], 0)     // start_offset: unused by this implementation
	binary.LittleEndian.PutUint32(buf[20:24], uint32(len(centroid)))
	binary.LittleEndian.PutUint32(buf[24:28], uint32FromFloat32(scale))
	for i, c := range codes {
		binary.LittleEndian.PutUint16(buf[28+2*i:30+2*i], uint16(c))
	}
	return buf
}

func decodeClusterInfo(buf []byte) (Info, error) {
	if len(buf) < 28 {
		return Info{}, fmt.Errorf("cluster: cluster_info too short")
	}
	clusterID := binary.LittleEndian.Uint32(buf[0:4])
	vectorCount := binary.LittleEndian.Uint32(buf[4:8])
	capacity := binary.LittleEndian.Uint32(buf[8:12])
	startOffset := binary.LittleEndian.Uint64(buf[12:20])
	dim := binary.LittleEndian.Uint32(buf[20:24])
	scale := float32FromUint32(binary.LittleEndian.Uint32(buf[24:28]))

	want := 28 + 2*int(dim)
	if len(buf) < want {
		return Info{}, fmt.Errorf("cluster: cluster_info truncated: have %d want %d", len(buf), want)
	}

	codes := make([]int16, dim)
	for i := range codes {
		codes[i] = int16(binary.LittleEndian.Uint16(buf[28+2*i : 30+2*i]))
	}
	centroid := quant.Dequantize16(scale, codes)

	return Info{
		ClusterID:   clusterID,
		VectorCount: vectorCount,
		Capacity:    capacity,
		StartOffset: startOffset,
		CentroidDim: dim,
		Centroid:    centroid,
	}, nil
}

// Deserialize replaces the strategy's in-memory state from a model
// produced by Serialize.
func (k *KMeans) Deserialize(data []byte) error {
	if len(data) < 12 {
		return fmt.Errorf("cluster: model too short")
	}

	dim := int(binary.LittleEndian.Uint32(data[0:4]))
	maxClusters := int(binary.LittleEndian.Uint32(data[4:8]))
	numVectors := binary.LittleEndian.Uint32(data[8:12])

	off := 12
	vectors := make(map[uint32]vectorRow, numVectors)
	assignments := make(map[uint32]uint32, numVectors)

	recSize := 4 + 4 + 4*dim
	for i := uint32(0); i < numVectors; i++ {
		if off+recSize > len(data) {
			return fmt.Errorf("cluster: truncated vector record %d", i)
		}
		id := binary.LittleEndian.Uint32(data[off : off+4])
		cid := binary.LittleEndian.Uint32(data[off+4 : off+8])
		vec := make([]float32, dim)
		for j := 0; j < dim; j++ {
			base := off + 8 + 4*j
			vec[j] = float32FromUint32(binary.LittleEndian.Uint32(data[base : base+4]))
		}
		vectors[id] = vectorRow{id: id, data: vec}
		assignments[id] = cid
		off += recSize
	}

	if off+4 > len(data) {
		return fmt.Errorf("cluster: model missing num_clusters field")
	}
	numClusters := binary.LittleEndian.Uint32(data[off : off+4])
	off += 4

	centroids := make([][]float32, maxClusters)
	members := make([]*roaring.Bitmap, maxClusters)
	for c := range members {
		members[c] = roaring.New()
	}

	for i := uint32(0); i < numClusters; i++ {
		if off+8 > len(data) {
			return fmt.Errorf("cluster: truncated cluster entry %d", i)
		}
		cid := binary.LittleEndian.Uint32(data[off : off+4])
		size := binary.LittleEndian.Uint32(data[off+4 : off+8])
		off += 8

		if off+int(size) > len(data) {
			return fmt.Errorf("cluster: truncated cluster_info for cluster %d", cid)
		}
		info, err := decodeClusterInfo(data[off : off+int(size)])
		if err != nil {
			return fmt.Errorf("cluster: decode cluster %d: %w", cid, err)
		}
		off += int(size)

		if int(cid) < len(centroids) {
			centroids[cid] = info.Centroid
		}
	}

	for id, cid := range assignments {
		if int(cid) < len(members) {
			members[cid].Add(id)
		}
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	k.dim = dim
	k.maxClusters = maxClusters
	k.vectors = vectors
	k.centroids = centroids
	k.members = members
	k.initialized = true

	return nil
}
