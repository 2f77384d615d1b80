package vcstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/vcstore/distance"
	"github.com/hupe1980/vcstore/internal/vectormap"
)

// Result is one scored candidate returned by FindSimilar.
type Result struct {
	ID         uint32
	Similarity float32
}

// FindSimilar routes query to the strategy's closest clusters (fixed
// fan-out of 3 by default, see WithClusterFanout), scans the in-memory
// index for members of those clusters, reads each candidate vector from
// disk, and scores it by cosine similarity. Results are sorted by
// descending similarity, ties broken by lowest id, and never exceed k
// rows (spec.md §4.5 find_similar).
func (s *Store) FindSimilar(query []float32, k int) ([]Result, error) {
	start := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	results, candidates, err := s.findSimilarLocked(query, k)

	s.opts.metricsCollector.RecordSearch(k, candidates, time.Since(start), err)
	s.opts.logger.LogSearch(context.Background(), k, candidates, len(results), err)

	return results, err
}

func (s *Store) findSimilarLocked(query []float32, k int) ([]Result, int, error) {
	if err := s.requireOpen(); err != nil {
		return nil, 0, translateError(err)
	}
	if len(query) != int(s.header.VectorDim) {
		return nil, 0, translateError(&DimensionError{Expected: int(s.header.VectorDim), Actual: len(query)})
	}
	if k <= 0 {
		return nil, 0, nil
	}

	clusters, err := s.strategy.ClosestClusters(query, s.opts.clusterFanout)
	if err != nil {
		return nil, 0, translateError(wrapCause(ErrInvalidArgument, err, "closest clusters"))
	}
	wanted := make(map[uint32]struct{}, len(clusters))
	for _, c := range clusters {
		wanted[c] = struct{}{}
	}

	var candidates []*vectormap.Entry
	s.index.Range(func(e *vectormap.Entry) {
		if _, ok := wanted[e.ClusterID]; ok {
			candidates = append(candidates, e)
		}
	})

	dim := int(s.header.VectorDim)
	scored := make([]Result, len(candidates))
	ok := make([]bool, len(candidates))

	g := new(errgroup.Group)
	g.SetLimit(16)
	var mu sync.Mutex

	for i, cand := range candidates {
		i, cand := i, cand
		g.Go(func() error {
			buf := make([]byte, dim*4)
			if err := s.dev.ReadAt(buf, int64(cand.Offset)); err != nil {
				// per-candidate read failures are skipped, not fatal to the
				// overall search (consistent with perform_maintenance's
				// per-entry failure handling in spec.md §4.5).
				return nil
			}
			vec := decodeVector(buf)
			sim := distance.Cosine(query, vec)
			mu.Lock()
			scored[i] = Result{ID: cand.VectorID, Similarity: sim}
			ok[i] = true
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	filtered := make([]Result, 0, len(scored))
	for i, r := range scored {
		if ok[i] {
			filtered = append(filtered, r)
		}
	}

	sort.Slice(filtered, func(i, j int) bool {
		if filtered[i].Similarity != filtered[j].Similarity {
			return filtered[i].Similarity > filtered[j].Similarity
		}
		return filtered[i].ID < filtered[j].ID
	})

	if k > len(filtered) {
		k = len(filtered)
	}
	return filtered[:k], len(candidates), nil
}
