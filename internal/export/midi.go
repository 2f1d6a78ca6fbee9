package export

import (
	"bytes"
	"fmt"
	"os"
	"sort"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/MoeCondones/Transcription-Tool/internal/score"
)

const ticksPerQuarter = 480

// GenerateMIDI renders a transcript as a single-track standard MIDI file.
// Note times convert to ticks through the transcript tempo; quantized
// notes may overlap, so on/off events are sorted globally with offs
// winning at equal ticks.
func GenerateMIDI(t *score.Transcript) ([]byte, error) {
	tempo := t.Meta.Tempo
	if tempo <= 0 {
		tempo = 120
	}

	s := smf.New()
	s.TimeFormat = smf.MetricTicks(ticksPerQuarter)

	var track smf.Track
	track.Add(0, smf.MetaTempo(float64(tempo)))
	track.Add(0, smf.MetaMeter(4, 4))

	type event struct {
		tick uint32
		off  bool
		key  uint8
		vel  uint8
	}

	ticksPerSecond := float64(tempo) / 60 * ticksPerQuarter
	events := make([]event, 0, 2*len(t.Notes))
	for _, n := range t.Notes {
		if n.MIDI < 0 || n.MIDI > 127 {
			return nil, fmt.Errorf("note pitch %d out of MIDI range", n.MIDI)
		}
		vel := n.Velocity
		if vel < 1 {
			vel = 1
		}
		if vel > 127 {
			vel = 127
		}
		on := uint32(n.Start*ticksPerSecond + 0.5)
		off := uint32(n.End*ticksPerSecond + 0.5)
		if off <= on {
			off = on + 1
		}
		events = append(events,
			event{tick: on, key: uint8(n.MIDI), vel: uint8(vel)},
			event{tick: off, off: true, key: uint8(n.MIDI)},
		)
	}

	sort.SliceStable(events, func(i, j int) bool {
		if events[i].tick != events[j].tick {
			return events[i].tick < events[j].tick
		}
		return events[i].off && !events[j].off
	})

	var cursor uint32
	for _, ev := range events {
		delta := ev.tick - cursor
		cursor = ev.tick
		if ev.off {
			track.Add(delta, midi.NoteOff(0, ev.key))
		} else {
			track.Add(delta, midi.NoteOn(0, ev.key, ev.vel))
		}
	}
	track.Close(0)

	if err := s.Add(track); err != nil {
		return nil, fmt.Errorf("add track: %w", err)
	}

	var buf bytes.Buffer
	if _, err := s.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("write midi: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteMIDIFile renders the transcript to a .mid file.
func WriteMIDIFile(path string, t *score.Transcript) error {
	data, err := GenerateMIDI(t)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
