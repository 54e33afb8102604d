package transcript

import (
	"strings"
	"testing"
	"time"
)

const sampleSRT = `1
00:00:01,000 --> 00:00:02,500
hello there

2
00:00:03,000 --> 00:00:05,250
second cue
with two lines

`

func TestParseSRT(t *testing.T) {
	cues := ParseSRT(sampleSRT)
	if len(cues) != 2 {
		t.Fatalf("parsed %d cues, want 2", len(cues))
	}
	if cues[0].Start != time.Second || cues[0].End != 2500*time.Millisecond {
		t.Fatalf("cue 0 timing = %v..%v", cues[0].Start, cues[0].End)
	}
	if len(cues[1].Lines) != 2 || cues[1].Lines[1] != "with two lines" {
		t.Fatalf("cue 1 lines = %q", cues[1].Lines)
	}
}

func TestParseSRTSkipsMalformed(t *testing.T) {
	content := "1\nnot a timeline\ntext\n\n2\n00:00:01,000 --> 00:00:02,000\nok\n\n"
	cues := ParseSRT(content)
	if len(cues) != 1 || cues[0].Lines[0] != "ok" {
		t.Fatalf("cues = %+v", cues)
	}
}

func TestShiftCues(t *testing.T) {
	cues := []Cue{
		{Index: 1, Start: 500 * time.Millisecond, End: time.Second, Lines: []string{"gone"}},
		{Index: 2, Start: time.Second, End: 3 * time.Second, Lines: []string{"clamped"}},
		{Index: 3, Start: 4 * time.Second, End: 5 * time.Second, Lines: []string{"moved"}},
	}
	got := ShiftCues(cues, 2*time.Second)
	if len(got) != 2 {
		t.Fatalf("kept %d cues, want 2", len(got))
	}
	if got[0].Start != 0 || got[0].End != time.Second {
		t.Fatalf("clamped cue = %v..%v", got[0].Start, got[0].End)
	}
	if got[1].Start != 2*time.Second || got[1].End != 3*time.Second {
		t.Fatalf("moved cue = %v..%v", got[1].Start, got[1].End)
	}
	if got[0].Index != 1 || got[1].Index != 2 {
		t.Fatalf("indices not renumbered: %d, %d", got[0].Index, got[1].Index)
	}
}

func TestSRTRoundTrip(t *testing.T) {
	cues := ParseSRT(sampleSRT)
	out := WriteSRT(cues)
	again := ParseSRT(out)
	if len(again) != len(cues) {
		t.Fatalf("round trip lost cues: %d != %d", len(again), len(cues))
	}
	for i := range cues {
		if again[i].Start != cues[i].Start || again[i].End != cues[i].End {
			t.Fatalf("cue %d timing changed: %+v != %+v", i, again[i], cues[i])
		}
		if strings.Join(again[i].Lines, "\n") != strings.Join(cues[i].Lines, "\n") {
			t.Fatalf("cue %d text changed", i)
		}
	}
}

func TestFormatTimestamp(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "00:00:00,000"},
		{90*time.Second + 120*time.Millisecond, "00:01:30,120"},
		{time.Hour + time.Second, "01:00:01,000"},
		{-time.Second, "00:00:00,000"},
	}
	for _, tt := range tests {
		if got := FormatTimestamp(tt.d); got != tt.want {
			t.Fatalf("FormatTimestamp(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}
