package vcstore

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/hupe1980/vcstore/internal/vectormap"
)

// PerformMaintenance calls the clustering strategy's Rebalance; if
// anything changed, it re-reads each vector from disk, allocates it a new
// offset in its (possibly new) cluster, writes it there, updates the
// index row, and persists the maps. Per-entry failures are logged and
// skipped rather than propagated; the overall operation still returns nil
// unless a map write fails (spec.md §4.5 perform_maintenance).
func (s *Store) PerformMaintenance() error {
	start := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	relocated, err := s.performMaintenanceLocked()

	s.opts.metricsCollector.RecordMaintenance(relocated, time.Since(start), err)

	return err
}

func (s *Store) performMaintenanceLocked() (int, error) {
	if err := s.requireWritable(); err != nil {
		return 0, translateError(err)
	}

	changed, err := s.strategy.Rebalance()
	if err != nil {
		s.opts.logger.LogMaintenance(context.Background(), false, 0, 0, err)
		return 0, translateError(wrapCause(ErrIO, err, "rebalance"))
	}
	if !changed {
		s.opts.logger.LogMaintenance(context.Background(), false, 0, 0, nil)
		return 0, nil
	}

	dim := int(s.header.VectorDim)
	relocated := 0
	failed := 0

	entries := s.index.All()

	g := new(errgroup.Group)
	g.SetLimit(16)
	var mu sync.Mutex

	for _, entry := range entries {
		entry := entry
		g.Go(func() error {
			err := s.relocateEntry(entry, dim, &mu)

			mu.Lock()
			if err != nil {
				failed++
			} else {
				relocated++
			}
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	if err := s.persistAll(); err != nil {
		s.opts.logger.LogMaintenance(context.Background(), changed, relocated, failed, err)
		return relocated, translateError(err)
	}

	s.opts.logger.LogMaintenance(context.Background(), changed, relocated, failed, nil)
	return relocated, nil
}

// relocateEntry re-reads entry's vector, determines its current cluster
// from the (already rebalanced) strategy, allocates a fresh offset, and
// rewrites the vector there. It paces writes against opts.maintenanceLimiter
// when one is configured. Positioned reads/writes and the (internally
// synchronized) strategy reassignment run unlocked so concurrent relocations
// issue their disk I/O from a bounded worker group (spec.md §2 Domain Stack,
// mirroring find_similar's fan-out in search.go); mu guards the only state
// this call shares with its siblings: the data-offset cursor and the index
// map, neither of which is safe for concurrent mutation.
func (s *Store) relocateEntry(entry *vectormap.Entry, dim int, mu *sync.Mutex) error {
	buf := make([]byte, dim*4)
	if err := s.dev.ReadAt(buf, int64(entry.Offset)); err != nil {
		return wrapCause(ErrIO, err, "read vector %d during maintenance", entry.VectorID)
	}
	vec := decodeVector(buf)

	newCluster, err := s.strategy.Assign(vec)
	if err != nil {
		return wrapCause(ErrInvalidArgument, err, "reassign vector %d", entry.VectorID)
	}

	mu.Lock()
	newOffset, err := s.allocateOffset()
	mu.Unlock()
	if err != nil {
		return err
	}

	s.waitMaintenancePacing()

	if err := s.dev.WriteAt(buf, newOffset); err != nil {
		return wrapCause(ErrIO, err, "write relocated vector %d", entry.VectorID)
	}

	mu.Lock()
	entry.ClusterID = newCluster
	entry.Offset = uint64(newOffset)
	s.index.Put(entry)
	mu.Unlock()
	return nil
}

func (s *Store) waitMaintenancePacing() {
	limiter := s.opts.maintenanceLimiter
	if limiter == nil {
		return
	}
	if limiter.Limit() == rate.Inf {
		return
	}
	_ = limiter.Wait(context.Background())
}
