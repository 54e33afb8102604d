package captions

import (
	"strings"
	"testing"

	"github.com/Kquxxi/e2eClipUploader/internal/transcript"
)

func TestAssTime(t *testing.T) {
	tests := []struct {
		sec  float64
		want string
	}{
		{0, "0:00:00.00"},
		{1.5, "0:00:01.50"},
		{61.25, "0:01:01.25"},
		{3600.01, "1:00:00.01"},
		{-2, "0:00:00.00"},
	}
	for _, tt := range tests {
		if got := assTime(tt.sec); got != tt.want {
			t.Fatalf("assTime(%v) = %q, want %q", tt.sec, got, tt.want)
		}
	}
}

func TestSegmentEvents(t *testing.T) {
	words := []transcript.Word{
		{Text: "hello", Start: 0.0, End: 0.4, Speaker: "SPEAKER_00"},
		{Text: "there", Start: 0.5, End: 0.9, Speaker: "SPEAKER_00"},
		{Text: "friend", Start: 1.0, End: 2.0, Speaker: "SPEAKER_00"},
	}
	events := SegmentEvents(words, SpeakerColor("SPEAKER_00"), DefaultFontSize, DefaultWrapWidth)
	if len(events) != 6 {
		t.Fatalf("events = %d, want 6 (box+text per word)", len(events))
	}

	// Word windows chain start-to-start; the last extends to segment end.
	if events[0].Start != 0.0 || events[0].End != 0.5 {
		t.Fatalf("first window = %v..%v", events[0].Start, events[0].End)
	}
	if events[2].Start != 0.5 || events[2].End != 1.0 {
		t.Fatalf("second window = %v..%v", events[2].Start, events[2].End)
	}
	if events[4].Start != 1.0 || events[4].End != 2.0 {
		t.Fatalf("last window = %v..%v, want end at segment end", events[4].Start, events[4].End)
	}

	// Box below text.
	if events[0].Layer != 0 || events[0].Style != "Box" {
		t.Fatalf("box event = %+v", events[0])
	}
	if events[1].Layer != 1 || events[1].Style != "Karaoke" {
		t.Fatalf("text event = %+v", events[1])
	}
	if !strings.Contains(events[0].Text, `\1c&H00FFFF&`) {
		t.Fatalf("box missing speaker color: %q", events[0].Text)
	}
	if !strings.Contains(events[0].Text, `\p1}m 0 0 l `) {
		t.Fatalf("box missing vector drawing: %q", events[0].Text)
	}
	if !strings.Contains(events[1].Text, "hello there friend") {
		t.Fatalf("text event missing caption: %q", events[1].Text)
	}
}

func TestSegmentEventsEmpty(t *testing.T) {
	if events := SegmentEvents(nil, palette[0], DefaultFontSize, DefaultWrapWidth); events != nil {
		t.Fatalf("events for no words: %+v", events)
	}
}

func TestBuildScript(t *testing.T) {
	events := []Event{{Layer: 1, Start: 0, End: 1.5, Style: "Karaoke", Text: "hi"}}
	script := BuildScript(events, "Montserrat", DefaultFontSize)

	for _, want := range []string{
		"PlayResX: 1080",
		"PlayResY: 1920",
		"Style: Karaoke,Montserrat,65,",
		"Dialogue: 1,0:00:00.00,0:00:01.50,Karaoke,,0,0,0,,hi",
	} {
		if !strings.Contains(script, want) {
			t.Fatalf("script missing %q:\n%s", want, script)
		}
	}
}

func TestEscapeASS(t *testing.T) {
	if got := escapeASS("{\\pos}"); strings.ContainsAny(got, "{}") {
		t.Fatalf("braces survived: %q", got)
	}
	if got := escapeASS("a\nb"); got != `a\Nb` {
		t.Fatalf("newline = %q", got)
	}
}
