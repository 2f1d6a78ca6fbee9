package score

import (
	"sort"
	"strings"
)

// Instrument identifies a member of the saxophone family. Each variant
// carries its written-pitch transposition offset and the register center
// used for auto-classification.
type Instrument int

const (
	Soprano Instrument = iota
	Alto
	Tenor
	Baritone
)

// classification priority doubles as the tie-break order
var instruments = [...]struct {
	name   string
	offset int // semitones from sounding to written pitch
	center int // typical register center, MIDI
}{
	Soprano:  {"soprano", 2, 76},
	Alto:     {"alto", 9, 69},
	Tenor:    {"tenor", 14, 62},
	Baritone: {"baritone", 21, 55},
}

func (i Instrument) String() string {
	if i < Soprano || i > Baritone {
		return instruments[Soprano].name
	}
	return instruments[i].name
}

// Offset returns the semitone shift applied when transposing sounding
// pitch to this instrument's written part.
func (i Instrument) Offset() int {
	if i < Soprano || i > Baritone {
		return instruments[Soprano].offset
	}
	return instruments[i].offset
}

// Center returns the register center used for classification.
func (i Instrument) Center() int {
	if i < Soprano || i > Baritone {
		return instruments[Soprano].center
	}
	return instruments[i].center
}

// ParseInstrument maps an identifier to an Instrument. Unrecognized
// identifiers fall back to soprano rather than failing.
func ParseInstrument(s string) Instrument {
	name := strings.ToLower(strings.TrimSpace(s))
	for inst, entry := range instruments {
		if entry.name == name {
			return Instrument(inst)
		}
	}
	return Soprano
}

// Classify picks the instrument whose register center is closest to the
// median pitch of the notes. An empty note list behaves as median 69.
// Ties resolve in declaration order: soprano, alto, tenor, baritone.
func Classify(notes []Note) Instrument {
	med := 69.0
	if len(notes) > 0 {
		pitches := make([]float64, len(notes))
		for idx, n := range notes {
			pitches[idx] = float64(n.MIDI)
		}
		med = median(pitches)
	}

	best := Soprano
	bestDist := -1.0
	for inst, entry := range instruments {
		dist := med - float64(entry.center)
		if dist < 0 {
			dist = -dist
		}
		if bestDist < 0 || dist < bestDist {
			best = Instrument(inst)
			bestDist = dist
		}
	}
	return best
}

// median of a non-empty slice; even counts average the middle pair.
func median(xs []float64) float64 {
	sorted := make([]float64, len(xs))
	copy(sorted, xs)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}
