package pipeline

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/MoeCondones/Transcription-Tool/internal/score"
)

const sampleTranscript = `{
	"meta": {"tempo": 120, "key": "C major", "meter": "4/4", "instrument": "alto"},
	"notes": [
		{"start": 0, "end": 0.25, "midi": 60, "name": "C4", "velocity": 90},
		{"start": 0.25, "end": 0.5, "midi": 64, "name": "E4", "velocity": 85}
	]
}`

func TestTranspose(t *testing.T) {
	dir := t.TempDir()
	inPath := filepath.Join(dir, "notes.json")
	if err := os.WriteFile(inPath, []byte(sampleTranscript), 0644); err != nil {
		t.Fatal(err)
	}

	orch := NewOrchestrator(dir, io.Discard, false)

	t.Run("ExplicitTarget", func(t *testing.T) {
		outPath := filepath.Join(dir, "tenor.json")
		tr, err := orch.Transpose(context.Background(), TransposeConfig{
			InputJSONPath: inPath,
			Instrument:    "tenor",
			JSONPath:      outPath,
		})
		if err != nil {
			t.Fatalf("Transpose: %v", err)
		}
		if tr.Meta.Instrument != "tenor" {
			t.Errorf("instrument = %q, want tenor", tr.Meta.Instrument)
		}
		if tr.Notes[0].MIDI != 74 || tr.Notes[0].Name != "D5" {
			t.Errorf("first note = %+v, want midi 74 / D5", tr.Notes[0])
		}

		data, err := os.ReadFile(outPath)
		if err != nil {
			t.Fatalf("read output: %v", err)
		}
		parsed, err := score.ParseTranscript(data)
		if err != nil {
			t.Fatalf("parse output: %v", err)
		}
		if parsed.Notes[1].MIDI != 78 {
			t.Errorf("second note midi = %d, want 78", parsed.Notes[1].MIDI)
		}
	})

	t.Run("AutoFallsBackToTranscriptInstrument", func(t *testing.T) {
		tr, err := orch.Transpose(context.Background(), TransposeConfig{
			InputJSONPath: inPath,
			Instrument:    "auto",
		})
		if err != nil {
			t.Fatalf("Transpose: %v", err)
		}
		// transcript says alto, so the alto offset (+9) applies
		if tr.Meta.Instrument != "alto" {
			t.Errorf("instrument = %q, want alto", tr.Meta.Instrument)
		}
		if tr.Notes[0].MIDI != 69 {
			t.Errorf("midi = %d, want 69", tr.Notes[0].MIDI)
		}
	})

	t.Run("MissingInput", func(t *testing.T) {
		_, err := orch.Transpose(context.Background(), TransposeConfig{
			InputJSONPath: filepath.Join(dir, "nope.json"),
		})
		if err == nil {
			t.Error("expected error for missing input")
		}
	})

	t.Run("MalformedInput", func(t *testing.T) {
		badPath := filepath.Join(dir, "bad.json")
		os.WriteFile(badPath, []byte(`{"notes":[{"start":0,"end":1}]}`), 0644)
		_, err := orch.Transpose(context.Background(), TransposeConfig{
			InputJSONPath: badPath,
			Instrument:    "tenor",
		})
		if err == nil {
			t.Error("expected malformed-input error")
		}
	})
}
