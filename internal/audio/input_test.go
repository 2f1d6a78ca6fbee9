package audio

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	apperrors "github.com/MoeCondones/Transcription-Tool/internal/errors"
)

func writeTemp(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestValidateInput(t *testing.T) {
	wavHeader := append([]byte("RIFF"), append(make([]byte, 4), []byte("WAVEfmt ")...)...)

	t.Run("WAV", func(t *testing.T) {
		path := writeTemp(t, "sound.wav", wavHeader)
		format, err := ValidateInput(path)
		if err != nil {
			t.Fatalf("ValidateInput: %v", err)
		}
		if format != FormatWAV {
			t.Errorf("format = %v, want wav", format)
		}
	})

	t.Run("MP3WithID3", func(t *testing.T) {
		path := writeTemp(t, "sound.mp3", append([]byte("ID3"), make([]byte, 9)...))
		format, err := ValidateInput(path)
		if err != nil {
			t.Fatalf("ValidateInput: %v", err)
		}
		if format != FormatMP3 {
			t.Errorf("format = %v, want mp3", format)
		}
	})

	t.Run("MP3FrameSync", func(t *testing.T) {
		path := writeTemp(t, "sound.bin", []byte{0xFF, 0xFB, 0x90, 0x00, 0, 0, 0, 0, 0, 0, 0, 0})
		format, err := ValidateInput(path)
		if err != nil {
			t.Fatalf("ValidateInput: %v", err)
		}
		if format != FormatMP3 {
			t.Errorf("format = %v, want mp3", format)
		}
	})

	t.Run("UnsupportedFormat", func(t *testing.T) {
		path := writeTemp(t, "notes.txt", []byte("just some text in here"))
		_, err := ValidateInput(path)
		if !errors.Is(err, apperrors.ErrUnsupportedFormat) {
			t.Errorf("err = %v, want ErrUnsupportedFormat", err)
		}
	})

	t.Run("Missing", func(t *testing.T) {
		_, err := ValidateInput(filepath.Join(t.TempDir(), "nope.wav"))
		if !errors.Is(err, apperrors.ErrFileNotFound) {
			t.Errorf("err = %v, want ErrFileNotFound", err)
		}
	})
}
