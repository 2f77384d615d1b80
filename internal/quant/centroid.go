package quant

import "math"

const maxInt16 = 32767

// Quantize16 computes a shared scale and 16-bit quantized values for a
// centroid. scale = max(|c_i|) / 32767, or 1.0 if the centroid is all
// zero. Each value is round(c_i / scale).
func Quantize16(centroid []float32) (scale float32, codes []int16) {
	var maxAbs float32
	for _, v := range centroid {
		a := v
		if a < 0 {
			a = -a
		}
		if a > maxAbs {
			maxAbs = a
		}
	}

	if maxAbs == 0 {
		scale = 1.0
	} else {
		scale = maxAbs / maxInt16
	}

	codes = make([]int16, len(centroid))
	for i, v := range centroid {
		q := math.Round(float64(v / scale))
		if q > maxInt16 {
			q = maxInt16
		} else if q < -maxInt16-1 {
			q = -maxInt16 - 1
		}
		codes[i] = int16(q)
	}
	return scale, codes
}

// Dequantize16 reconstructs an approximate centroid from a scale and
// 16-bit codes produced by Quantize16.
func Dequantize16(scale float32, codes []int16) []float32 {
	out := make([]float32, len(codes))
	for i, c := range codes {
		out[i] = float32(c) * scale
	}
	return out
}
