package audio

import "math"

// Peak returns the maximum absolute amplitude over samples.
func Peak(samples []float32) float64 {
	peak := 0.0
	for _, s := range samples {
		a := math.Abs(float64(s))
		if a > peak {
			peak = a
		}
	}

	return peak
}

// DownmixMono averages interleaved multi-channel samples into a single
// channel. Mono input is returned unchanged.
func DownmixMono(samples []float32, channels int) []float32 {
	if channels <= 1 {
		return samples
	}

	frames := len(samples) / channels
	out := make([]float32, frames)
	for i := 0; i < frames; i++ {
		sum := float32(0)
		for c := 0; c < channels; c++ {
			sum += samples[i*channels+c]
		}
		out[i] = sum / float32(channels)
	}

	return out
}

// Resample converts mono samples from one rate to another using linear
// interpolation. Matching rates return the input unchanged.
func Resample(samples []float32, fromRate, toRate int) []float32 {
	if fromRate == toRate || fromRate <= 0 || toRate <= 0 || len(samples) == 0 {
		return samples
	}

	ratio := float64(fromRate) / float64(toRate)
	outLen := int(float64(len(samples)) / ratio)
	if outLen < 1 {
		outLen = 1
	}

	out := make([]float32, outLen)
	for i := range out {
		pos := float64(i) * ratio
		idx := int(pos)
		if idx >= len(samples)-1 {
			out[i] = samples[len(samples)-1]
			continue
		}
		frac := float32(pos - float64(idx))
		out[i] = samples[idx]*(1-frac) + samples[idx+1]*frac
	}

	return out
}
