package vcstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatsReportsDeviceAndStrategyInfo(t *testing.T) {
	s := newTestStore(t)

	stats, err := s.Stats()
	require.NoError(t, err)
	assert.Equal(t, 4, stats.VectorDim)
	assert.Equal(t, 8, stats.MaxClusters)
	assert.Equal(t, "kmeans", stats.Strategy)
	assert.Greater(t, stats.DeviceSize, int64(0))
	assert.Greater(t, stats.BlockSize, 0)
}

func TestStatsOnClosedStoreReturnsErrState(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Close())

	_, err := s.Stats()
	assert.ErrorIs(t, err, ErrState)
}

func TestClusterStatsOnClosedStoreReturnsErrState(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Close())

	_, err := s.ClusterStats()
	assert.ErrorIs(t, err, ErrState)
}
