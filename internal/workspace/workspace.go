package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Workspace manages temporary files for a single transcription job
type Workspace struct {
	Dir       string
	CreatedAt time.Time
}

// Create creates a new isolated workspace in the system temp directory
func Create() (*Workspace, error) {
	dir, err := os.MkdirTemp("", "saxnotes-*")
	if err != nil {
		return nil, fmt.Errorf("create workspace: %w", err)
	}

	return &Workspace{
		Dir:       dir,
		CreatedAt: time.Now(),
	}, nil
}

// Path helpers for workspace files
func (w *Workspace) MelodicWAV() string     { return filepath.Join(w.Dir, "melodic.wav") }
func (w *Workspace) FramesJSON() string     { return filepath.Join(w.Dir, "frames.json") }
func (w *Workspace) TranscriptJSON() string { return filepath.Join(w.Dir, "transcript.json") }
func (w *Workspace) MusicXML() string       { return filepath.Join(w.Dir, "score.musicxml") }
func (w *Workspace) MIDI() string           { return filepath.Join(w.Dir, "score.mid") }
func (w *Workspace) PDF() string            { return filepath.Join(w.Dir, "score.pdf") }

// Cleanup removes the workspace directory and all contents
func (w *Workspace) Cleanup() error {
	return os.RemoveAll(w.Dir)
}

// CopyFile copies a file into the workspace
func (w *Workspace) CopyFile(src, dstName string) (string, error) {
	dst := filepath.Join(w.Dir, dstName)
	input, err := os.ReadFile(src)
	if err != nil {
		return "", fmt.Errorf("read source: %w", err)
	}
	if err := os.WriteFile(dst, input, 0644); err != nil {
		return "", fmt.Errorf("write destination: %w", err)
	}
	return dst, nil
}
