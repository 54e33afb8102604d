package render

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestBurn(t *testing.T) {
	dir := t.TempDir()
	video := filepath.Join(dir, "clip_1080x1920.mp4")
	srt := filepath.Join(dir, "clip.srt")
	os.WriteFile(video, []byte("original"), 0o644)
	os.WriteFile(srt, []byte("1\n00:00:11,000 --> 00:00:12,000\nhello\n\n"), 0o644)

	runner := &fakeRunner{}
	final, err := NewBurner(testLogger(), runner, "ffmpeg").Burn(context.Background(), video, srt, 10)
	if err != nil {
		t.Fatalf("Burn: %v", err)
	}
	if final != video {
		t.Fatalf("final = %q, want primary %q", final, video)
	}

	argv := strings.Join(runner.calls[0], " ")
	if !strings.Contains(argv, "subtitles=") {
		t.Fatalf("missing subtitles filter: %q", argv)
	}
	if !strings.Contains(argv, "force_style='FontName=Montserrat,FontSize=42") {
		t.Fatalf("missing force_style: %q", argv)
	}
	if !strings.Contains(argv, "-c:a copy") {
		t.Fatalf("audio not copied: %q", argv)
	}

	data, _ := os.ReadFile(video)
	if string(data) != "rendered" {
		t.Fatalf("video not replaced: %q", data)
	}
	// Shifted SRT scratch file cleaned up.
	if _, err := os.Stat(filepath.Join(dir, "clip_1080x1920.shifted.srt")); !os.IsNotExist(err) {
		t.Fatalf("shifted srt left behind")
	}
}

func TestBurnAllCuesBeforeWindow(t *testing.T) {
	dir := t.TempDir()
	video := filepath.Join(dir, "clip.mp4")
	srt := filepath.Join(dir, "clip.srt")
	os.WriteFile(video, []byte("original"), 0o644)
	os.WriteFile(srt, []byte("1\n00:00:01,000 --> 00:00:02,000\nearly\n\n"), 0o644)

	_, err := NewBurner(testLogger(), &fakeRunner{}, "ffmpeg").Burn(context.Background(), video, srt, 60)
	if err == nil {
		t.Fatal("expected error when no cues survive the shift")
	}
}

func TestBurnMissingSRT(t *testing.T) {
	dir := t.TempDir()
	video := filepath.Join(dir, "clip.mp4")
	os.WriteFile(video, []byte("original"), 0o644)

	_, err := NewBurner(testLogger(), &fakeRunner{}, "ffmpeg").Burn(context.Background(), video, filepath.Join(dir, "absent.srt"), 0)
	if err == nil {
		t.Fatal("expected error for missing srt")
	}
}

func TestBurnFfmpegFailureKeepsOriginal(t *testing.T) {
	dir := t.TempDir()
	video := filepath.Join(dir, "clip.mp4")
	srt := filepath.Join(dir, "clip.srt")
	os.WriteFile(video, []byte("original"), 0o644)
	os.WriteFile(srt, []byte("1\n00:00:01,000 --> 00:00:02,000\nhello\n\n"), 0o644)

	_, err := NewBurner(testLogger(), &fakeRunner{fail: true}, "ffmpeg").Burn(context.Background(), video, srt, 0)
	if err == nil {
		t.Fatal("expected error")
	}
	data, _ := os.ReadFile(video)
	if string(data) != "original" {
		t.Fatalf("video modified on failure: %q", data)
	}
}
