package export

import (
	"context"
	"fmt"

	apperrors "github.com/MoeCondones/Transcription-Tool/internal/errors"
	"github.com/MoeCondones/Transcription-Tool/internal/exec"
)

// Renderer produces MusicXML and PDF scores from a transcript JSON file
// by delegating to the music21-backed render script.
type Renderer struct {
	runner *exec.Runner
}

// NewRenderer creates a new score renderer
func NewRenderer(runner *exec.Runner) *Renderer {
	return &Renderer{runner: runner}
}

// RenderMusicXML writes a MusicXML score for the given transcript JSON.
func (r *Renderer) RenderMusicXML(ctx context.Context, transcriptJSON, outputPath string) error {
	return r.render(ctx, transcriptJSON, "--musicxml", outputPath)
}

// RenderPDF writes a PDF score. Requires a notation backend (MuseScore or
// LilyPond) to be configured for music21 on the host.
func (r *Renderer) RenderPDF(ctx context.Context, transcriptJSON, outputPath string) error {
	return r.render(ctx, transcriptJSON, "--pdf", outputPath)
}

func (r *Renderer) render(ctx context.Context, transcriptJSON, flag, outputPath string) error {
	result, err := r.runner.RunScript(ctx, "render.py", transcriptJSON, flag, outputPath)
	if err != nil {
		if result != nil && result.ExitCode != 0 {
			return apperrors.NewProcessError("music21", "rendering", result.ExitCode, result.Stderr, err)
		}
		return fmt.Errorf("render score: %w", err)
	}
	return nil
}
