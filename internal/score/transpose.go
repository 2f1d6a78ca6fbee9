package score

// Transpose re-targets a transcript to the given instrument's written
// register. Every note is shifted by the instrument's offset and renamed;
// segmentation and timing are untouched. The input is not modified.
//
// The shift is applied unconditionally, so transposing twice accumulates
// two offsets while the instrument tag simply stays at the target.
func Transpose(t *Transcript, target Instrument) *Transcript {
	out := &Transcript{
		Meta:  t.Meta,
		Notes: make([]Note, len(t.Notes)),
	}
	out.Meta.Instrument = target.String()

	shift := target.Offset()
	for i, n := range t.Notes {
		n.MIDI += shift
		n.Name = NoteName(n.MIDI)
		out.Notes[i] = n
	}
	return out
}
