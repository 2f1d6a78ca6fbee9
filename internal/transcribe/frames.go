package transcribe

import (
	"math"
	"sort"
)

// Tunable constants of the frame pipeline.
const (
	// MedianWindow is the width of the centered median filter applied to
	// the continuous semitone track. Wide enough to kill single-frame
	// octave errors, narrow enough not to smear real transitions.
	MedianWindow = 5

	// VoicingThreshold is the normalized-energy floor for a voiced frame.
	// Strictly greater than: a frame sitting exactly on it is unvoiced.
	VoicingThreshold = 0.08
)

// HzToMIDI converts a frequency estimate to a continuous semitone number
// (69 = A4 = 440 Hz). Zero or negative input means unvoiced and maps to NaN.
func HzToMIDI(hz float64) float64 {
	if hz <= 0 {
		return math.NaN()
	}
	return 69 + 12*math.Log2(hz/440)
}

// smoothPitch applies a centered sliding median of the given width,
// skipping NaN entries inside each window. A window with no valid value
// yields NaN. Window edges are truncated, not padded.
func smoothPitch(pitch []float64, width int) []float64 {
	half := width / 2
	out := make([]float64, len(pitch))
	buf := make([]float64, 0, width)

	for i := range pitch {
		lo := i - half
		if lo < 0 {
			lo = 0
		}
		hi := i + half + 1
		if hi > len(pitch) {
			hi = len(pitch)
		}

		buf = buf[:0]
		for _, v := range pitch[lo:hi] {
			if !math.IsNaN(v) {
				buf = append(buf, v)
			}
		}
		if len(buf) == 0 {
			out[i] = math.NaN()
			continue
		}
		out[i] = medianOf(buf)
	}
	return out
}

// NormalizeEnergy min-max scales an energy track to [0,1]. A flat track
// normalizes to all zeros. The input is not modified.
func NormalizeEnergy(energy []float64) []float64 {
	out := make([]float64, len(energy))
	if len(energy) == 0 {
		return out
	}

	min, max := energy[0], energy[0]
	for _, e := range energy[1:] {
		if e < min {
			min = e
		}
		if e > max {
			max = e
		}
	}

	span := max - min
	if span <= 0 {
		return out
	}
	for i, e := range energy {
		out[i] = (e - min) / span
	}
	return out
}

// classifyVoicing marks a frame voiced when its normalized energy exceeds
// the threshold and a smoothed pitch exists.
func classifyVoicing(pitch, energy []float64) []bool {
	voiced := make([]bool, len(pitch))
	for i := range pitch {
		voiced[i] = energy[i] > VoicingThreshold && !math.IsNaN(pitch[i])
	}
	return voiced
}

// medianOf sorts its argument in place; even counts average the middle pair.
func medianOf(xs []float64) float64 {
	sort.Float64s(xs)
	mid := len(xs) / 2
	if len(xs)%2 == 0 {
		return (xs[mid-1] + xs[mid]) / 2
	}
	return xs[mid]
}
