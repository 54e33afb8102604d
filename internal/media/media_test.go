package media

import (
	"strings"
	"testing"
)

func TestTailWriterKeepsTail(t *testing.T) {
	w := &tailWriter{limit: 10}
	w.Write([]byte("0123456789abcdef"))
	if got := w.String(); got != "6789abcdef" {
		t.Fatalf("tail = %q, want %q", got, "6789abcdef")
	}
}

func TestTailWriterIncremental(t *testing.T) {
	w := &tailWriter{limit: 8}
	for _, chunk := range []string{"aaaa", "bbbb", "cccc"} {
		w.Write([]byte(chunk))
	}
	if got := w.String(); got != "bbbbcccc" {
		t.Fatalf("tail = %q, want %q", got, "bbbbcccc")
	}
}

func TestTailWriterUnderLimit(t *testing.T) {
	w := &tailWriter{limit: 100}
	w.Write([]byte("short"))
	if got := w.String(); got != "short" {
		t.Fatalf("tail = %q, want %q", got, "short")
	}
}

func TestLocateOverride(t *testing.T) {
	path, err := Locate("/opt/tools/ffmpeg", "ffmpeg")
	if err != nil {
		t.Fatalf("Locate: %v", err)
	}
	if path != "/opt/tools/ffmpeg" {
		t.Fatalf("path = %q", path)
	}
}

func TestParseProbe(t *testing.T) {
	data := []byte(`{
		"format": {"duration": "12.480000"},
		"streams": [
			{"codec_type": "audio"},
			{"codec_type": "video", "width": 1080, "height": 1920}
		]
	}`)
	info, err := parseProbe(data)
	if err != nil {
		t.Fatalf("parseProbe: %v", err)
	}
	if info.Duration != 12.48 {
		t.Fatalf("duration = %v", info.Duration)
	}
	if info.Width != 1080 || info.Height != 1920 {
		t.Fatalf("dimensions = %dx%d", info.Width, info.Height)
	}
}

func TestParseProbeBadJSON(t *testing.T) {
	_, err := parseProbe([]byte("nope"))
	if err == nil || !strings.Contains(err.Error(), "parse ffprobe output") {
		t.Fatalf("err = %v", err)
	}
}
