package vcstore

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/vcstore/internal/layout"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Initialize(tmpStorePath(t), "kmeans", 4, 8)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStoreAndRetrieveVectorRoundTrip(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.StoreVector(1, []float32{1, 2, 3, 4}, "hello"))

	vec, found, err := s.RetrieveVector(1)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []float32{1, 2, 3, 4}, vec)

	meta, found, err := s.GetMetadata(1)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "hello", meta)
}

func TestRetrieveUnknownIDReturnsNotFoundFalse(t *testing.T) {
	s := newTestStore(t)

	vec, found, err := s.RetrieveVector(999)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, vec)
}

func TestStoreVectorRejectsDimensionMismatch(t *testing.T) {
	s := newTestStore(t)

	err := s.StoreVector(1, []float32{1, 2, 3}, "")
	assert.ErrorIs(t, err, ErrInvalidArgument)

	var dimErr *DimensionError
	require.ErrorAs(t, err, &dimErr)
	assert.Equal(t, 4, dimErr.Expected)
	assert.Equal(t, 3, dimErr.Actual)
}

func TestStoreVectorRejectsOversizedMetadata(t *testing.T) {
	s := newTestStore(t)

	huge := strings.Repeat("x", layout.MaxMetadataLen+1)
	err := s.StoreVector(1, []float32{1, 2, 3, 4}, huge)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestStoreVectorOverwriteReplacesVectorAndMetadata(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.StoreVector(1, []float32{1, 2, 3, 4}, "first"))
	require.NoError(t, s.StoreVector(1, []float32{5, 6, 7, 8}, "second"))

	vec, found, err := s.RetrieveVector(1)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []float32{5, 6, 7, 8}, vec)

	meta, _, err := s.GetMetadata(1)
	require.NoError(t, err)
	assert.Equal(t, "second", meta)

	stats, err := s.Stats()
	require.NoError(t, err)
	assert.Equal(t, 1, stats.VectorCount)
}

func TestStoreVectorAdvancesNextID(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.StoreVector(5, []float32{1, 2, 3, 4}, ""))

	stats, err := s.Stats()
	require.NoError(t, err)
	assert.Equal(t, uint32(6), stats.NextID)
}

func TestDeleteVectorRemovesEntry(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.StoreVector(1, []float32{1, 2, 3, 4}, "hello"))
	require.NoError(t, s.DeleteVector(1))

	_, found, err := s.RetrieveVector(1)
	require.NoError(t, err)
	assert.False(t, found)

	stats, err := s.Stats()
	require.NoError(t, err)
	assert.Equal(t, 0, stats.VectorCount)
}

func TestDeleteUnknownVectorReturnsNotFound(t *testing.T) {
	s := newTestStore(t)

	err := s.DeleteVector(42)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestOperationsOnClosedStoreReturnErrState(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Close())

	_, _, err := s.RetrieveVector(1)
	assert.ErrorIs(t, err, ErrState)

	err = s.StoreVector(1, []float32{1, 2, 3, 4}, "")
	assert.ErrorIs(t, err, ErrState)

	err = s.DeleteVector(1)
	assert.ErrorIs(t, err, ErrState)
}
