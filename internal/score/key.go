package score

import "math"

// Krumhansl-Kessler tonal hierarchy profiles, indexed from the tonic.
var (
	majorProfile = [12]float64{6.35, 2.23, 3.48, 2.33, 4.38, 4.09, 2.52, 5.19, 2.39, 3.66, 2.29, 2.88}
	minorProfile = [12]float64{6.33, 2.68, 3.52, 5.38, 2.60, 3.53, 2.54, 4.75, 3.98, 2.69, 3.34, 3.17}
)

// EstimateKey returns a best-effort key name ("C major", "A minor") from a
// duration-weighted pitch-class histogram correlated against the Krumhansl
// major and minor profiles. An empty note list yields "C major".
func EstimateKey(notes []Note) string {
	if len(notes) == 0 {
		return "C major"
	}

	var hist [12]float64
	for _, n := range notes {
		dur := n.End - n.Start
		if dur <= 0 {
			dur = 1e-3
		}
		hist[PitchClass(n.MIDI)] += dur
	}

	bestName := "C major"
	bestScore := math.Inf(-1)
	for tonic := 0; tonic < 12; tonic++ {
		if r := profileCorrelation(hist, majorProfile, tonic); r > bestScore {
			bestScore = r
			bestName = pitchClassNames[tonic] + " major"
		}
		if r := profileCorrelation(hist, minorProfile, tonic); r > bestScore {
			bestScore = r
			bestName = pitchClassNames[tonic] + " minor"
		}
	}
	return bestName
}

// profileCorrelation computes the Pearson correlation between the
// histogram and a key profile rotated to the given tonic.
func profileCorrelation(hist [12]float64, profile [12]float64, tonic int) float64 {
	var meanH, meanP float64
	for i := 0; i < 12; i++ {
		meanH += hist[i]
		meanP += profile[i]
	}
	meanH /= 12
	meanP /= 12

	var num, denH, denP float64
	for i := 0; i < 12; i++ {
		h := hist[i] - meanH
		p := profile[(i-tonic+12)%12] - meanP
		num += h * p
		denH += h * h
		denP += p * p
	}
	if denH == 0 || denP == 0 {
		return 0
	}
	return num / math.Sqrt(denH*denP)
}
