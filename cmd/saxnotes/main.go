package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/MoeCondones/Transcription-Tool/internal/audio"
	"github.com/MoeCondones/Transcription-Tool/internal/pipeline"
	"github.com/MoeCondones/Transcription-Tool/internal/server"
)

var (
	version = "0.1.0"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "saxnotes",
	Short: "Transcribe monophonic sax recordings into quantized note events",
	Long: `saxnotes detects notes in a monophonic recording and writes them as
JSON, MusicXML, MIDI or PDF, optionally transposed for a target saxophone.

Pipeline: audio → source isolation → pitch/energy extraction → note
segmentation → quantization → score export`,
	Version: version,
}

var transcribeCmd = &cobra.Command{
	Use:   "transcribe",
	Short: "Transcribe an audio file into note events",
	Long: `Transcribe a WAV or MP3 recording into a quantized note list.

Examples:
  saxnotes transcribe -i solo.wav --json notes.json
  saxnotes transcribe -i solo.mp3 --instrument tenor --musicxml score.musicxml
  saxnotes transcribe -i band.wav --separate demucs --tempo 96 --midi out.mid`,
	RunE: runTranscribe,
}

var transposeCmd = &cobra.Command{
	Use:   "transpose",
	Short: "Re-target an existing note list to another instrument",
	Long: `Transpose a previously produced transcript JSON for a target
saxophone without reprocessing audio.

Examples:
  saxnotes transpose --input-json notes.json --instrument tenor --json tenor.json
  saxnotes transpose --input-json notes.json --musicxml score.musicxml`,
	RunE: runTranspose,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the upload/poll HTTP API",
	Long: `Start the transcription API: upload audio, poll for status,
download exports.

Example:
  saxnotes serve --port 8080`,
	RunE: runServe,
}

var (
	// transcribe flags
	inputPath    string
	instrument   string
	tempo        int
	separateMode string
	jsonOut      string
	musicxmlOut  string
	midiOut      string
	pdfOut       string
	verbose      bool

	// transpose flags
	inputJSON string

	// serve flags
	port    int
	dataDir string
)

func init() {
	rootCmd.AddCommand(transcribeCmd)
	rootCmd.AddCommand(transposeCmd)
	rootCmd.AddCommand(serveCmd)

	transcribeCmd.Flags().StringVarP(&inputPath, "input", "i", "", "Input audio file (WAV or MP3)")
	transcribeCmd.Flags().StringVar(&instrument, "instrument", "auto", "Target instrument (auto, soprano, alto, tenor, baritone)")
	transcribeCmd.Flags().IntVar(&tempo, "tempo", 0, "Tempo in BPM (0 = use estimated tempo)")
	transcribeCmd.Flags().StringVar(&separateMode, "separate", "no", "Source isolation mode (auto, demucs, spleeter, no)")
	transcribeCmd.Flags().StringVar(&jsonOut, "json", "", "Output path for transcript JSON")
	transcribeCmd.Flags().StringVar(&musicxmlOut, "musicxml", "", "Output path for MusicXML score")
	transcribeCmd.Flags().StringVar(&midiOut, "midi", "", "Output path for MIDI file")
	transcribeCmd.Flags().StringVar(&pdfOut, "pdf", "", "Output path for PDF score")
	transcribeCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	transcribeCmd.MarkFlagRequired("input")

	transposeCmd.Flags().StringVar(&inputJSON, "input-json", "", "Input transcript JSON")
	transposeCmd.Flags().StringVar(&instrument, "instrument", "auto", "Target instrument (auto = transcript's own)")
	transposeCmd.Flags().StringVar(&jsonOut, "json", "", "Output path for transcript JSON")
	transposeCmd.Flags().StringVar(&musicxmlOut, "musicxml", "", "Output path for MusicXML score")
	transposeCmd.Flags().StringVar(&midiOut, "midi", "", "Output path for MIDI file")
	transposeCmd.Flags().StringVar(&pdfOut, "pdf", "", "Output path for PDF score")
	transposeCmd.MarkFlagRequired("input-json")

	serveCmd.Flags().IntVarP(&port, "port", "p", 8080, "Port to listen on")
	serveCmd.Flags().StringVar(&dataDir, "data", "./data", "Directory for the job database")
}

func runTranscribe(cmd *cobra.Command, args []string) error {
	if !audio.ValidIsolationMode(separateMode) {
		return fmt.Errorf("invalid separation mode: %s (must be auto, demucs, spleeter, or no)", separateMode)
	}

	ctx, cancel := signalContext()
	defer cancel()

	orch := pipeline.NewOrchestrator(findScriptsDir(), os.Stdout, verbose)

	cfg := pipeline.DefaultConfig()
	cfg.InputPath = inputPath
	cfg.Instrument = instrument
	cfg.Tempo = tempo
	cfg.Isolation = audio.IsolationMode(separateMode)
	cfg.JSONPath = jsonOut
	cfg.MusicXMLPath = musicxmlOut
	cfg.MIDIPath = midiOut
	cfg.PDFPath = pdfOut

	if _, err := orch.Run(ctx, cfg); err != nil {
		return err
	}
	return nil
}

func runTranspose(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	orch := pipeline.NewOrchestrator(findScriptsDir(), os.Stdout, false)

	t, err := orch.Transpose(ctx, pipeline.TransposeConfig{
		InputJSONPath: inputJSON,
		Instrument:    instrument,
		JSONPath:      jsonOut,
		MusicXMLPath:  musicxmlOut,
		MIDIPath:      midiOut,
		PDFPath:       pdfOut,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Transposed %d notes for %s\n", len(t.Notes), t.Meta.Instrument)
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	srv, err := server.New(server.Config{
		Port:       port,
		ScriptsDir: findScriptsDir(),
		DataDir:    dataDir,
	})
	if err != nil {
		return err
	}
	return srv.Run()
}

// signalContext returns a context cancelled on interrupt
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\nInterrupted, cleaning up...")
		cancel()
	}()

	return ctx, cancel
}

// findScriptsDir locates the Python analysis scripts
func findScriptsDir() string {
	// Check relative to executable
	exe, err := os.Executable()
	if err == nil {
		dir := filepath.Join(filepath.Dir(exe), "scripts")
		if dirExists(dir) {
			return dir
		}
	}

	// Check common development locations
	candidates := []string{
		"./scripts",
		"../scripts",
		"../../scripts",
	}
	for _, c := range candidates {
		if dirExists(c) {
			return c
		}
	}

	return "scripts"
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
