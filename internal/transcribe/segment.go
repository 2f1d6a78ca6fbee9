package transcribe

import (
	"math"

	"github.com/MoeCondones/Transcription-Tool/internal/score"
)

const (
	// pitchTolerance: a voiced frame whose rounded pitch moves further
	// than this from the open note's pitch closes it and opens a new one.
	pitchTolerance = 0.5

	// minNoteDuration discards segments too short to be audible notes.
	// Strictly greater than: a 0.04 s segment is dropped.
	minNoteDuration = 0.04
)

// segState is the segmenter's finite-state-machine value: either idle or
// holding an open note. open==false means Idle.
type segState struct {
	open  bool
	start int // frame index the open note began at
	pitch int // rounded MIDI pitch of the open note
}

// segment folds the frame sequence into note events. pitch is the smoothed
// semitone track, energy the normalized energy track; both share indices
// with voiced. Frame indices convert to seconds via hop/sampleRate.
func segment(pitch, energy []float64, voiced []bool, hopSize, sampleRate int) []score.Note {
	var notes []score.Note
	var st segState

	secondsPerFrame := float64(hopSize) / float64(sampleRate)

	emit := func(startFrame, endFrame int) {
		start := float64(startFrame) * secondsPerFrame
		end := float64(endFrame) * secondsPerFrame
		if end-start <= minNoteDuration {
			return
		}
		notes = append(notes, score.Note{
			Start:    start,
			End:      end,
			MIDI:     st.pitch,
			Name:     score.NoteName(st.pitch),
			Velocity: noteVelocity(energy[startFrame:endFrame]),
		})
	}

	for i := range voiced {
		if voiced[i] {
			p := int(math.Round(pitch[i]))
			switch {
			case !st.open:
				st = segState{open: true, start: i, pitch: p}
			case math.Abs(float64(p-st.pitch)) > pitchTolerance:
				// pitch moved: close here and reopen at the same frame
				emit(st.start, i)
				st = segState{open: true, start: i, pitch: p}
			}
			continue
		}
		if st.open {
			emit(st.start, i)
			st = segState{}
		}
	}

	if st.open {
		emit(st.start, len(voiced))
	}
	return notes
}

// noteVelocity maps the median normalized energy of a note's frames to a
// MIDI velocity, rounded and clamped to [1,127]. Silence still gets 1.
func noteVelocity(energy []float64) int {
	if len(energy) == 0 {
		return 1
	}
	buf := make([]float64, len(energy))
	copy(buf, energy)

	v := int(math.Round(medianOf(buf) * 127))
	if v < 1 {
		v = 1
	}
	if v > 127 {
		v = 127
	}
	return v
}
