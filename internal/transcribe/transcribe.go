// Package transcribe converts a per-frame pitch-and-energy analysis of a
// monophonic recording into a quantized sequence of note events.
//
// The whole package is a synchronous batch computation over in-memory
// arrays: identical input always produces an identical note list. Pitch
// and energy extraction happen upstream; notation rendering downstream.
package transcribe

import (
	"fmt"

	apperrors "github.com/MoeCondones/Transcription-Tool/internal/errors"
	"github.com/MoeCondones/Transcription-Tool/internal/score"
)

// Params is the input to a transcription run.
type Params struct {
	// Pitch holds per-frame fundamental-frequency estimates in Hz,
	// 0 where unvoiced. Same length as Energy.
	Pitch []float64

	// Energy holds per-frame energy, already min-max normalized to [0,1]
	// (see NormalizeEnergy). Voicing thresholds against these values.
	Energy []float64

	HopSize    int // samples advanced between frames
	SampleRate int // Hz

	// Tempo in BPM. Non-positive falls back to 120; callers wanting a
	// real estimate resolve it before calling (the extractor reports one).
	Tempo int

	// Divisions is the quantization grid resolution; zero means
	// DefaultDivisions, negative disables quantization.
	Divisions int
}

func (p *Params) validate() error {
	if len(p.Pitch) != len(p.Energy) {
		return fmt.Errorf("%w: pitch has %d frames, energy %d", apperrors.ErrInvalidArgument, len(p.Pitch), len(p.Energy))
	}
	if p.HopSize <= 0 {
		return fmt.Errorf("%w: hop size %d", apperrors.ErrInvalidArgument, p.HopSize)
	}
	if p.SampleRate <= 0 {
		return fmt.Errorf("%w: sample rate %d", apperrors.ErrInvalidArgument, p.SampleRate)
	}
	return nil
}

// Transcribe runs the full core pipeline: semitone conversion, median
// smoothing, voicing classification, segmentation, velocity estimation and
// grid quantization. A track with no voiced frames, or whose segments all
// fall under the minimum duration, yields an empty list and no error.
func Transcribe(p Params) ([]score.Note, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}

	tempo := p.Tempo
	if tempo <= 0 {
		tempo = 120
	}
	divisions := p.Divisions
	if divisions == 0 {
		divisions = DefaultDivisions
	}

	semitones := make([]float64, len(p.Pitch))
	for i, hz := range p.Pitch {
		semitones[i] = HzToMIDI(hz)
	}
	smoothed := smoothPitch(semitones, MedianWindow)
	voiced := classifyVoicing(smoothed, p.Energy)

	notes := segment(smoothed, p.Energy, voiced, p.HopSize, p.SampleRate)
	return Quantize(notes, tempo, divisions), nil
}
