package quant

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuantizeDequantizeRoundTrip(t *testing.T) {
	centroid := []float32{1.5, -2.25, 0.001, 10.0, -10.0}

	scale, codes := Quantize16(centroid)
	assert.Len(t, codes, len(centroid))
	assert.Greater(t, scale, float32(0))

	back := Dequantize16(scale, codes)
	require := assert.New(t)
	for i := range centroid {
		require.InDelta(centroid[i], back[i], float64(scale)/2+1e-4)
	}
}

func TestQuantizeAllZero(t *testing.T) {
	centroid := make([]float32, 8)
	scale, codes := Quantize16(centroid)
	assert.Equal(t, float32(1.0), scale)
	for _, c := range codes {
		assert.Equal(t, int16(0), c)
	}
}

func TestQuantizeClampsExtremes(t *testing.T) {
	// the maximum-magnitude component always maps to +-32767 exactly
	centroid := []float32{100, -100, 50}
	scale, codes := Quantize16(centroid)
	assert.Equal(t, int16(32767), codes[0])
	assert.Equal(t, int16(-32767), codes[1])
	assert.InDelta(t, float64(50), float64(codes[2])*float64(scale), 0.01)
}
