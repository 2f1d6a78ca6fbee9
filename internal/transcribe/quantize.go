package transcribe

import (
	"math"

	"github.com/MoeCondones/Transcription-Tool/internal/score"
)

// DefaultDivisions is the rhythmic grid resolution: sixteenth notes.
const DefaultDivisions = 16

// Quantize snaps every note's start and end independently to the nearest
// multiple of the tempo-derived grid unit. When rounding collapses a note,
// its end is pushed out by one grid unit so end > start always holds.
//
// Starts and ends round independently, so two adjacent notes may overlap
// or gap by up to half a grid unit afterwards. Downstream consumers see
// exactly what the rounding produced; no neighbor correction is applied.
// Non-positive divisions disable quantization, as does a non-positive
// tempo: without a tempo there is no grid unit to snap to.
func Quantize(notes []score.Note, tempo, divisions int) []score.Note {
	if divisions <= 0 || tempo <= 0 {
		return notes
	}
	grid := 60.0 / float64(tempo) / (float64(divisions) / 4.0)

	out := make([]score.Note, len(notes))
	for i, n := range notes {
		n.Start = math.Round(n.Start/grid) * grid
		n.End = math.Round(n.End/grid) * grid
		if n.End <= n.Start {
			n.End = n.Start + grid
		}
		out[i] = n
	}
	return out
}
