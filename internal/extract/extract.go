package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	apperrors "github.com/MoeCondones/Transcription-Tool/internal/errors"
	"github.com/MoeCondones/Transcription-Tool/internal/exec"
)

// Result contains the per-frame analysis produced by the extraction script:
// a fundamental-frequency track (0 where unvoiced), a raw RMS energy track,
// and a tempo estimate.
type Result struct {
	SampleRate      int       `json:"sample_rate"`
	HopSize         int       `json:"hop"`
	F0              []float64 `json:"f0"`
	Energy          []float64 `json:"energy"`
	Tempo           float64   `json:"tempo"`
	TempoConfidence float64   `json:"tempo_confidence"`
}

// Extractor runs the librosa-backed pitch/energy analysis
type Extractor struct {
	runner *exec.Runner
}

// NewExtractor creates a new pitch/energy extractor
func NewExtractor(runner *exec.Runner) *Extractor {
	return &Extractor{runner: runner}
}

// Extract analyzes an audio file and returns its frame-level pitch and
// energy tracks. The script writes JSON to outputPath; the parsed result
// is validated before being handed to the core.
func (e *Extractor) Extract(ctx context.Context, audioPath, outputPath string) (*Result, error) {
	result, err := e.runner.RunScript(ctx, "extract.py", audioPath, outputPath)
	if err != nil {
		if result != nil && result.ExitCode != 0 {
			return nil, apperrors.NewProcessError("librosa", "extraction", result.ExitCode, result.Stderr, err)
		}
		return nil, fmt.Errorf("pitch extraction: %w", err)
	}

	data, err := os.ReadFile(outputPath)
	if err != nil {
		return nil, fmt.Errorf("read extraction results: %w", err)
	}

	var frames Result
	if err := json.Unmarshal(data, &frames); err != nil {
		return nil, fmt.Errorf("parse extraction results: %w", err)
	}

	if len(frames.F0) != len(frames.Energy) {
		return nil, fmt.Errorf("%w: extractor returned %d pitch frames but %d energy frames",
			apperrors.ErrMalformedInput, len(frames.F0), len(frames.Energy))
	}
	if frames.SampleRate <= 0 || frames.HopSize <= 0 {
		return nil, fmt.Errorf("%w: extractor returned sample rate %d, hop %d",
			apperrors.ErrMalformedInput, frames.SampleRate, frames.HopSize)
	}
	return &frames, nil
}
