package vcstore

// Stats summarizes a store's current state, supplementing spec.md per
// SPEC_FULL.md §3 (grounded in original_source's printStoreInfo).
type Stats struct {
	VectorDim   int
	MaxClusters int
	VectorCount int
	NextID      uint32
	DeviceSize  int64
	BlockSize   int
	DataOffset  uint64
	Strategy    string
	DirectIO    bool
}

// Stats returns a snapshot of the store's header and device fields.
func (s *Store) Stats() (Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireOpen(); err != nil {
		return Stats{}, translateError(err)
	}

	return Stats{
		VectorDim:   int(s.header.VectorDim),
		MaxClusters: int(s.header.MaxClusters),
		VectorCount: s.index.Len(),
		NextID:      s.header.NextID,
		DeviceSize:  s.dev.Size(),
		BlockSize:   s.dev.BlockSize(),
		DataOffset:  s.header.DataOffset,
		Strategy:    s.strategy.Name(),
		DirectIO:    s.state == StateOpenDirect,
	}, nil
}

// ClusterStat describes one cluster's membership size, supplementing
// spec.md per SPEC_FULL.md §3 (grounded in original_source's
// printClusterInfo).
type ClusterStat struct {
	ClusterID uint32
	Size      int
}

// ClusterStats returns, for every cluster the strategy knows about, its
// current member count.
func (s *Store) ClusterStats() ([]ClusterStat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireOpen(); err != nil {
		return nil, translateError(err)
	}

	clusters := s.strategy.AllClusters()
	out := make([]ClusterStat, len(clusters))
	for i, cid := range clusters {
		out[i] = ClusterStat{ClusterID: cid, Size: s.strategy.Size(cid)}
	}
	return out, nil
}
