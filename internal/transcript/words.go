// Package transcript parses word-level transcript JSON and SRT cue
// files and prepares them for caption rendering: time shifting,
// windowing, and speaker-turn smoothing.
package transcript

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Word is one recognized word with absolute source-video timing.
type Word struct {
	Text    string  `json:"word"`
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Speaker string  `json:"speaker"`
	Score   float64 `json:"score"`
}

// Segment is one transcription segment holding its words.
type Segment struct {
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Text    string  `json:"text"`
	Speaker string  `json:"speaker"`
	Words   []Word  `json:"words"`
}

// Document is the top-level word-level transcript file.
type Document struct {
	Segments []Segment `json:"segments"`
	Language string    `json:"language"`
}

// Load reads and parses a word-level transcript JSON file.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read transcript: %w", err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse transcript %s: %w", path, err)
	}
	return &doc, nil
}

// Window flattens all segment words, shifts them by -offset so the clip
// starts at zero, and keeps only words overlapping [0, duration]. Word
// times are clipped to the window and empty words dropped.
func Window(segs []Segment, offset, duration float64) []Word {
	var out []Word
	for _, seg := range segs {
		for _, w := range seg.Words {
			if strings.TrimSpace(w.Text) == "" {
				continue
			}
			start := w.Start - offset
			end := w.End - offset
			if end <= 0 || start >= duration {
				continue
			}
			if start < 0 {
				start = 0
			}
			if end > duration {
				end = duration
			}
			if end <= start {
				continue
			}
			w.Start = start
			w.End = end
			out = append(out, w)
		}
	}
	return out
}
