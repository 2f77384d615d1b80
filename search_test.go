package vcstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindSimilarReturnsOrderedResultsWithinK(t *testing.T) {
	s := newTestStore(t)

	vectors := map[uint32][]float32{
		1: {1, 0, 0, 0},
		2: {0.9, 0.1, 0, 0},
		3: {0, 1, 0, 0},
		4: {0, 0, 1, 0},
		5: {0, 0, 0, 1},
	}
	for id, v := range vectors {
		require.NoError(t, s.StoreVector(id, v, ""))
	}

	results, err := s.FindSimilar([]float32{1, 0, 0, 0}, 2)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(results), 2)

	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].Similarity, results[i].Similarity)
	}
}

func TestFindSimilarRejectsDimensionMismatch(t *testing.T) {
	s := newTestStore(t)

	_, err := s.FindSimilar([]float32{1, 2, 3}, 2)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	var dimErr *DimensionError
	require.ErrorAs(t, err, &dimErr)
	assert.Equal(t, 4, dimErr.Expected)
	assert.Equal(t, 3, dimErr.Actual)
}

func TestFindSimilarWithNonPositiveKReturnsEmpty(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.StoreVector(1, []float32{1, 2, 3, 4}, ""))

	results, err := s.FindSimilar([]float32{1, 2, 3, 4}, 0)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestFindSimilarOnEmptyStoreReturnsEmpty(t *testing.T) {
	s := newTestStore(t)

	results, err := s.FindSimilar([]float32{1, 2, 3, 4}, 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestFindSimilarOnClosedStoreReturnsErrState(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Close())

	_, err := s.FindSimilar([]float32{1, 2, 3, 4}, 2)
	assert.ErrorIs(t, err, ErrState)
}
