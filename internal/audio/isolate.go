package audio

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	apperrors "github.com/MoeCondones/Transcription-Tool/internal/errors"
	"github.com/MoeCondones/Transcription-Tool/internal/exec"
)

// IsolationMode selects how the melodic source is pulled out of the mix
// before pitch extraction.
type IsolationMode string

const (
	IsolateAuto     IsolationMode = "auto"     // demucs, then spleeter, then HPSS band-pass
	IsolateDemucs   IsolationMode = "demucs"   // demucs only (HPSS fallback inside the script)
	IsolateSpleeter IsolationMode = "spleeter" // spleeter only
	IsolateNone     IsolationMode = "no"       // skip separation entirely
)

// ValidIsolationMode reports whether s names a supported mode.
func ValidIsolationMode(s string) bool {
	switch IsolationMode(s) {
	case IsolateAuto, IsolateDemucs, IsolateSpleeter, IsolateNone:
		return true
	}
	return false
}

// Isolator extracts the melodic source from a mixed recording using the
// separation script (demucs/spleeter with an HPSS band-pass fallback).
type Isolator struct {
	runner *exec.Runner
}

// NewIsolator creates a new melodic-source isolator
func NewIsolator(runner *exec.Runner) *Isolator {
	return &Isolator{runner: runner}
}

// Isolate writes the isolated melodic source next to outputDir and returns
// its path. Mode IsolateNone returns the input path untouched.
func (s *Isolator) Isolate(ctx context.Context, inputPath, outputDir string, mode IsolationMode) (string, error) {
	if mode == IsolateNone {
		return inputPath, nil
	}

	result, err := s.runner.RunScript(ctx, "separate.py", inputPath, outputDir, "--mode", string(mode))
	if err != nil {
		if result != nil && result.ExitCode != 0 {
			return "", apperrors.NewProcessError("demucs", "separation", result.ExitCode, result.Stderr, err)
		}
		return "", fmt.Errorf("source isolation: %w", err)
	}

	melodic := filepath.Join(outputDir, "melodic.wav")
	if _, err := os.Stat(melodic); err != nil {
		return "", fmt.Errorf("melodic stem not found in %s", outputDir)
	}
	return melodic, nil
}
