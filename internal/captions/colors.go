package captions

import (
	"hash/fnv"
	"strconv"
	"strings"
)

// Color is a named highlight color with its ASS BGR hex encoding.
type Color struct {
	Name string
	ASS  string
}

// palette cycles across diarized speakers; index is the numeric suffix
// of SPEAKER_NN modulo the palette size.
var palette = []Color{
	{"yellow", "&H00FFFF&"},
	{"cyan", "&HFFFF00&"},
	{"magenta", "&HFF00FF&"},
	{"lime", "&H00FF00&"},
	{"orange", "&H00A5FF&"},
	{"deepskyblue", "&HFFBF00&"},
	{"violet", "&HEE82EE&"},
	{"salmon", "&H7280FA&"},
}

// SpeakerColor maps a diarization speaker label to a stable palette
// color. SPEAKER_NN labels index by NN; anything else hashes so the
// same label always gets the same color.
func SpeakerColor(speaker string) Color {
	if speaker == "" {
		return palette[0]
	}
	if i := strings.LastIndex(speaker, "_"); i >= 0 {
		if n, err := strconv.Atoi(speaker[i+1:]); err == nil && n >= 0 {
			return palette[n%len(palette)]
		}
	}
	h := fnv.New32a()
	h.Write([]byte(speaker))
	return palette[int(h.Sum32())%len(palette)]
}
