package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/MoeCondones/Transcription-Tool/internal/score"
)

// WriteJSON serializes a transcript in the canonical
// {"meta": {...}, "notes": [...]} shape.
func WriteJSON(w io.Writer, t *score.Transcript) error {
	enc := json.NewEncoder(w)
	if err := enc.Encode(t); err != nil {
		return fmt.Errorf("encode transcript: %w", err)
	}
	return nil
}

// WriteJSONFile writes the transcript JSON to a file.
func WriteJSONFile(path string, t *score.Transcript) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteJSON(f, t)
}
