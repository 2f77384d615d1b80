package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	h := &Header{
		VectorDim:        128,
		MaxClusters:      100,
		VectorCount:      42,
		NextID:           43,
		ClusterMapOffset: HeaderSize,
		VectorMapOffset:  HeaderSize + ClusterMapRegionSize,
		DataOffset:       HeaderSize + ClusterMapRegionSize + VectorMapRegionSize,
		StrategyName:     "kmeans",
	}

	buf, err := Encode(h)
	require.NoError(t, err)
	assert.Len(t, buf, HeaderSize)

	got, err := Decode(buf)
	require.NoError(t, err)
	assert.Equal(t, h.VectorDim, got.VectorDim)
	assert.Equal(t, h.MaxClusters, got.MaxClusters)
	assert.Equal(t, h.VectorCount, got.VectorCount)
	assert.Equal(t, h.NextID, got.NextID)
	assert.Equal(t, h.ClusterMapOffset, got.ClusterMapOffset)
	assert.Equal(t, h.VectorMapOffset, got.VectorMapOffset)
	assert.Equal(t, h.DataOffset, got.DataOffset)
	assert.Equal(t, h.StrategyName, got.StrategyName)
}

func TestDecodeRejectsBadSignature(t *testing.T) {
	buf := make([]byte, HeaderSize)
	copy(buf, []byte("NOTVALID"))
	_, err := Decode(buf)
	assert.ErrorIs(t, err, ErrNotInitialized)
}

func TestDecodeRejectsBadVersion(t *testing.T) {
	h := &Header{StrategyName: "kmeans"}
	buf, err := Encode(h)
	require.NoError(t, err)
	buf[8] = 99 // corrupt version's low byte
	_, err = Decode(buf)
	assert.ErrorIs(t, err, ErrUnsupportedVersion)
}

func TestDecodeRejectsShortBuffer(t *testing.T) {
	_, err := Decode(make([]byte, 10))
	assert.Error(t, err)
}

func TestEncodeRejectsLongStrategyName(t *testing.T) {
	h := &Header{StrategyName: "this-strategy-name-is-definitely-too-long-to-fit"}
	_, err := Encode(h)
	assert.Error(t, err)
}

func TestHeaderSizeIsExactly512(t *testing.T) {
	assert.Equal(t, 512, HeaderSize)
}

func TestValidate(t *testing.T) {
	h := &Header{ClusterMapOffset: 512, VectorMapOffset: 512 + ClusterMapRegionSize, DataOffset: 512 + ClusterMapRegionSize + VectorMapRegionSize}
	assert.NoError(t, h.Validate(int64(h.DataOffset)+1))

	bad := &Header{ClusterMapOffset: 100, VectorMapOffset: 50, DataOffset: 200}
	assert.Error(t, bad.Validate(1000))

	tooSmall := &Header{ClusterMapOffset: 10, VectorMapOffset: 20, DataOffset: 30}
	assert.Error(t, tooSmall.Validate(25))
}
