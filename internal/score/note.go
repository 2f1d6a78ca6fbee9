package score

import "strconv"

// Note is a single quantized note event.
// Times are in seconds; MIDI pitch 60 is middle C.
type Note struct {
	Start    float64 `json:"start"`
	End      float64 `json:"end"`
	MIDI     int     `json:"midi"`
	Name     string  `json:"name"`
	Velocity int     `json:"velocity"`
}

var pitchClassNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// NoteName derives the pitch-class + octave spelling for a MIDI pitch,
// using sharps: 60 -> "C4", 61 -> "C#4", 74 -> "D5".
func NoteName(midi int) string {
	pc := midi % 12
	if pc < 0 {
		pc += 12
	}
	octave := midi/12 - 1
	if midi < 0 && midi%12 != 0 {
		octave--
	}
	return pitchClassNames[pc] + strconv.Itoa(octave)
}

// PitchClass returns the pitch class (0=C .. 11=B) of a MIDI pitch.
func PitchClass(midi int) int {
	pc := midi % 12
	if pc < 0 {
		pc += 12
	}
	return pc
}
