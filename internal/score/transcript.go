package score

import (
	"encoding/json"
	"fmt"

	apperrors "github.com/MoeCondones/Transcription-Tool/internal/errors"
)

// Meta carries transcript-level metadata.
type Meta struct {
	Tempo      int    `json:"tempo"`
	Key        string `json:"key"`
	Meter      string `json:"meter"`
	Instrument string `json:"instrument"`
}

// Transcript is the result of a transcription run: metadata plus an
// ordered note list.
type Transcript struct {
	Meta  Meta   `json:"meta"`
	Notes []Note `json:"notes"`
}

// wire types distinguish absent fields from zero values during decoding
type wireNote struct {
	Start    *float64 `json:"start"`
	End      *float64 `json:"end"`
	MIDI     *int     `json:"midi"`
	Name     string   `json:"name"`
	Velocity *int     `json:"velocity"`
}

type wireTranscript struct {
	Meta  Meta       `json:"meta"`
	Notes []wireNote `json:"notes"`
}

// ParseTranscript decodes a serialized transcript. Notes missing their
// midi or time fields are rejected as malformed rather than filled in.
func ParseTranscript(data []byte) (*Transcript, error) {
	var wire wireTranscript
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrMalformedInput, err)
	}

	t := &Transcript{
		Meta:  wire.Meta,
		Notes: make([]Note, 0, len(wire.Notes)),
	}
	if t.Meta.Meter == "" {
		t.Meta.Meter = "4/4"
	}

	for i, wn := range wire.Notes {
		if wn.MIDI == nil {
			return nil, fmt.Errorf("%w: note %d has no midi value", apperrors.ErrMalformedInput, i)
		}
		if wn.Start == nil || wn.End == nil {
			return nil, fmt.Errorf("%w: note %d has no start/end", apperrors.ErrMalformedInput, i)
		}
		n := Note{
			Start: *wn.Start,
			End:   *wn.End,
			MIDI:  *wn.MIDI,
			Name:  wn.Name,
		}
		if n.Name == "" {
			n.Name = NoteName(n.MIDI)
		}
		if wn.Velocity == nil {
			return nil, fmt.Errorf("%w: note %d has no velocity", apperrors.ErrMalformedInput, i)
		}
		n.Velocity = *wn.Velocity
		t.Notes = append(t.Notes, n)
	}
	return t, nil
}
