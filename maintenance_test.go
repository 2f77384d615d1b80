package vcstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPerformMaintenanceRoundTripsAllVectors(t *testing.T) {
	s := newTestStore(t)

	vectors := map[uint32][]float32{
		1: {1, 0, 0, 0},
		2: {0, 1, 0, 0},
		3: {0, 0, 1, 0},
		4: {0, 0, 0, 1},
	}
	for id, v := range vectors {
		require.NoError(t, s.StoreVector(id, v, ""))
	}

	require.NoError(t, s.PerformMaintenance())

	for id, want := range vectors {
		got, found, err := s.RetrieveVector(id)
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, want, got)
	}

	stats, err := s.Stats()
	require.NoError(t, err)
	assert.Equal(t, len(vectors), stats.VectorCount)
}

func TestPerformMaintenanceOnEmptyStoreSucceeds(t *testing.T) {
	s := newTestStore(t)
	assert.NoError(t, s.PerformMaintenance())
}

func TestPerformMaintenanceOnReadOnlyStoreReturnsErrState(t *testing.T) {
	path := tmpStorePath(t)

	s, err := Initialize(path, "kmeans", 4, 8)
	require.NoError(t, err)
	require.NoError(t, s.StoreVector(1, []float32{1, 2, 3, 4}, ""))
	require.NoError(t, s.Close())

	ro, err := OpenReadOnly(path)
	require.NoError(t, err)
	defer ro.Close()

	err = ro.PerformMaintenance()
	assert.ErrorIs(t, err, ErrState)
}

func TestClusterStatsReflectsVectorCounts(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.StoreVector(1, []float32{1, 0, 0, 0}, ""))
	require.NoError(t, s.StoreVector(2, []float32{0, 1, 0, 0}, ""))

	stats, err := s.ClusterStats()
	require.NoError(t, err)

	total := 0
	for _, cs := range stats {
		total += cs.Size
	}
	assert.Equal(t, 2, total)
}
