package transcript

// minTurnSeconds is the smallest inter-word gap treated as a real turn
// change. Diarization tends to emit spurious flips mid-utterance; a
// word whose end trails the previous word's end by less than this is
// folded into the previous speaker.
const minTurnSeconds = 0.30

// SmoothSpeakers reassigns a speaker flip to the previous word's
// speaker when the word ends within minTurnSeconds of the previous
// word's end. Folds cascade, so a burst of rapid flips collapses onto
// the speaker that started it. Words are assumed time-ordered.
func SmoothSpeakers(words []Word) []Word {
	if len(words) < 2 {
		return words
	}
	out := make([]Word, len(words))
	copy(out, words)
	for i := 1; i < len(out); i++ {
		if out[i].Speaker == out[i-1].Speaker || out[i].Speaker == "" {
			continue
		}
		if out[i].End-out[i-1].End < minTurnSeconds {
			out[i].Speaker = out[i-1].Speaker
		}
	}
	return out
}
