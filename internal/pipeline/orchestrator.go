// Package pipeline wires the transcription stages together: input
// validation, melodic-source isolation, pitch/energy extraction, the core
// note segmentation, and score export.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/MoeCondones/Transcription-Tool/internal/audio"
	"github.com/MoeCondones/Transcription-Tool/internal/exec"
	"github.com/MoeCondones/Transcription-Tool/internal/export"
	"github.com/MoeCondones/Transcription-Tool/internal/extract"
	"github.com/MoeCondones/Transcription-Tool/internal/progress"
	"github.com/MoeCondones/Transcription-Tool/internal/score"
	"github.com/MoeCondones/Transcription-Tool/internal/transcribe"
	"github.com/MoeCondones/Transcription-Tool/internal/workspace"
)

// Per-stage timeouts. Separation dominates; the rest are generous.
const (
	isolateTimeout = 5 * time.Minute
	extractTimeout = 3 * time.Minute
	renderTimeout  = 2 * time.Minute
)

// Config holds pipeline configuration for one transcription run
type Config struct {
	InputPath  string
	Instrument string              // instrument name or "auto"
	Tempo      int                 // BPM; 0 means use the extractor's estimate
	Isolation  audio.IsolationMode // melodic-source isolation mode

	// Output paths; empty paths skip that export
	JSONPath     string
	MusicXMLPath string
	MIDIPath     string
	PDFPath      string
}

// DefaultConfig returns the default pipeline configuration
func DefaultConfig() Config {
	return Config{
		Instrument: "auto",
		Isolation:  audio.IsolateNone,
	}
}

// TransposeConfig holds configuration for a transpose-only run
type TransposeConfig struct {
	InputJSONPath string
	Instrument    string // target instrument; "auto" falls back to the transcript's own

	JSONPath     string
	MusicXMLPath string
	MIDIPath     string
	PDFPath      string
}

// Orchestrator coordinates the pipeline stages
type Orchestrator struct {
	runner     *exec.Runner
	reporter   *progress.Reporter
	scriptsDir string
}

// NewOrchestrator creates a pipeline orchestrator
func NewOrchestrator(scriptsDir string, out io.Writer, verbose bool) *Orchestrator {
	return &Orchestrator{
		runner:     exec.NewRunner("", scriptsDir),
		reporter:   progress.NewReporter(out, verbose),
		scriptsDir: scriptsDir,
	}
}

// Run executes the full transcription pipeline and returns the transcript.
func (o *Orchestrator) Run(ctx context.Context, cfg Config) (*score.Transcript, error) {
	ws, err := workspace.Create()
	if err != nil {
		return nil, err
	}
	defer ws.Cleanup()

	// Stage 1: validate input
	o.reporter.StartStage(progress.StageValidate)
	format, err := audio.ValidateInput(cfg.InputPath)
	if err != nil {
		return nil, err
	}
	o.reporter.StageComplete("Valid %s file", format)

	// Stage 2: melodic-source isolation
	melodicPath := cfg.InputPath
	if cfg.Isolation != audio.IsolateNone && cfg.Isolation != "" {
		o.reporter.StartStage(progress.StageIsolate)

		// stem cache: separation dominates runtime, and re-transcribing
		// the same recording is common. Cache failures never fail the run.
		var cache *audio.IsolationCache
		var cacheKey string
		if c, cerr := audio.NewIsolationCache(o.scriptsDir); cerr == nil {
			if k, kerr := audio.CacheKey(cfg.InputPath, cfg.Isolation); kerr == nil {
				cache, cacheKey = c, k
			}
		}

		if cached, ok := cacheLookup(cache, cacheKey); ok {
			melodicPath = cached
			o.reporter.StageComplete("Reused cached melodic source")
		} else {
			isolator := audio.NewIsolator(o.runner)

			isoCtx, cancel := context.WithTimeout(ctx, isolateTimeout)
			melodicPath, err = isolator.Isolate(isoCtx, cfg.InputPath, ws.Dir, cfg.Isolation)
			cancel()
			if err != nil {
				return nil, fmt.Errorf("isolation failed: %w", err)
			}
			if cache != nil {
				if cached, cerr := cache.Put(cacheKey, melodicPath); cerr == nil {
					melodicPath = cached
				}
			}
			o.reporter.StageComplete("Melodic source isolated")
		}
	}

	// Stage 3: pitch/energy extraction
	o.reporter.StartStage(progress.StageExtract)
	extractor := extract.NewExtractor(o.runner)

	extCtx, cancel := context.WithTimeout(ctx, extractTimeout)
	frames, err := extractor.Extract(extCtx, melodicPath, ws.FramesJSON())
	cancel()
	if err != nil {
		return nil, fmt.Errorf("extraction failed: %w", err)
	}
	o.reporter.StageComplete("%d frames analyzed", len(frames.F0))

	// Stage 4: core transcription
	o.reporter.StartStage(progress.StageTranscribe)

	tempo := cfg.Tempo
	if tempo <= 0 {
		tempo = int(math.Round(frames.Tempo))
		if tempo <= 0 {
			tempo = 120
		}
		o.reporter.Update("Using estimated tempo %d BPM", tempo)
	}

	notes, err := transcribe.Transcribe(transcribe.Params{
		Pitch:      frames.F0,
		Energy:     transcribe.NormalizeEnergy(frames.Energy),
		HopSize:    frames.HopSize,
		SampleRate: frames.SampleRate,
		Tempo:      tempo,
	})
	if err != nil {
		return nil, err
	}

	instrument := score.ParseInstrument(cfg.Instrument)
	if cfg.Instrument == "auto" || cfg.Instrument == "" {
		instrument = score.Classify(notes)
		o.reporter.Update("Classified as %s", instrument)
	}

	t := &score.Transcript{
		Meta: score.Meta{
			Tempo:      tempo,
			Key:        score.EstimateKey(notes),
			Meter:      "4/4",
			Instrument: instrument.String(),
		},
		Notes: notes,
	}
	o.reporter.StageComplete("%d notes, key %s", len(t.Notes), t.Meta.Key)

	// Stage 5: exports
	o.reporter.StartStage(progress.StageExport)
	if err := o.export(ctx, ws, t, cfg.JSONPath, cfg.MusicXMLPath, cfg.MIDIPath, cfg.PDFPath); err != nil {
		return nil, err
	}
	o.reporter.Done(cfg.JSONPath)

	return t, nil
}

// Transpose re-targets a previously produced transcript without touching
// audio. Target "auto" falls back to the transcript's own instrument tag.
func (o *Orchestrator) Transpose(ctx context.Context, cfg TransposeConfig) (*score.Transcript, error) {
	data, err := os.ReadFile(cfg.InputJSONPath)
	if err != nil {
		return nil, fmt.Errorf("read transcript: %w", err)
	}
	t, err := score.ParseTranscript(data)
	if err != nil {
		return nil, err
	}

	targetName := cfg.Instrument
	if targetName == "auto" || targetName == "" {
		targetName = t.Meta.Instrument
	}
	target := score.ParseInstrument(targetName)

	out := score.Transpose(t, target)

	ws, err := workspace.Create()
	if err != nil {
		return nil, err
	}
	defer ws.Cleanup()

	if err := o.export(ctx, ws, out, cfg.JSONPath, cfg.MusicXMLPath, cfg.MIDIPath, cfg.PDFPath); err != nil {
		return nil, err
	}
	return out, nil
}

func cacheLookup(cache *audio.IsolationCache, key string) (string, bool) {
	if cache == nil {
		return "", false
	}
	return cache.Get(key)
}

// export writes the requested output formats. The MusicXML and PDF
// renderers read the transcript JSON from the workspace.
func (o *Orchestrator) export(ctx context.Context, ws *workspace.Workspace, t *score.Transcript, jsonPath, musicxmlPath, midiPath, pdfPath string) error {
	if err := export.WriteJSONFile(ws.TranscriptJSON(), t); err != nil {
		return err
	}
	if jsonPath != "" {
		if err := export.WriteJSONFile(jsonPath, t); err != nil {
			return err
		}
	}
	if midiPath != "" {
		if err := export.WriteMIDIFile(midiPath, t); err != nil {
			return err
		}
	}
	if musicxmlPath != "" || pdfPath != "" {
		renderer := export.NewRenderer(o.runner)
		renderCtx, cancel := context.WithTimeout(ctx, renderTimeout)
		defer cancel()

		if musicxmlPath != "" {
			if err := renderer.RenderMusicXML(renderCtx, ws.TranscriptJSON(), musicxmlPath); err != nil {
				return err
			}
		}
		if pdfPath != "" {
			if err := renderer.RenderPDF(renderCtx, ws.TranscriptJSON(), pdfPath); err != nil {
				return err
			}
		}
	}
	return nil
}
