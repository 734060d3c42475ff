package audio

import (
	"math"
)

// Resample converts samples from one rate to another using linear
// interpolation over the original sample positions. Equal rates pass
// through unchanged. A computed output length of zero or less degrades to
// an empty slice rather than an error; the caller treats that as nothing
// to transcribe.
func Resample(samples []float32, fromRate, toRate int) []float32 {
	if fromRate == toRate {
		return samples
	}
	if len(samples) == 0 || fromRate <= 0 || toRate <= 0 {
		return nil
	}
	ratio := float64(toRate) / float64(fromRate)
	newLength := int(math.Round(float64(len(samples)) * ratio))
	if newLength <= 0 {
		return nil
	}
	if len(samples) == 1 {
		out := make([]float32, newLength)
		for i := range out {
			out[i] = samples[0]
		}
		return out
	}

	out := make([]float32, newLength)
	// Map output positions evenly over [0, len-1] of the input.
	scale := 0.0
	if newLength > 1 {
		scale = float64(len(samples)-1) / float64(newLength-1)
	}
	for i := range out {
		pos := float64(i) * scale
		lo := int(pos)
		if lo >= len(samples)-1 {
			out[i] = samples[len(samples)-1]
			continue
		}
		frac := pos - float64(lo)
		out[i] = float32(float64(samples[lo])*(1-frac) + float64(samples[lo+1])*frac)
	}
	return out
}
