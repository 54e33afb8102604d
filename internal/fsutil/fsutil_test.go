package fsutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.txt")

	if err := WriteFileAtomic(path, []byte("one"), 0o644); err != nil {
		t.Fatalf("WriteFileAtomic: %v", err)
	}
	if err := WriteFileAtomic(path, []byte("two"), 0o644); err != nil {
		t.Fatalf("WriteFileAtomic overwrite: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != "two" {
		t.Fatalf("content = %q, want %q", data, "two")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("leftover temp files: %d entries", len(entries))
	}
}

func TestReplace(t *testing.T) {
	dir := t.TempDir()
	tmp := filepath.Join(dir, "in.tmp")
	dst := filepath.Join(dir, "final.mp4")
	if err := os.WriteFile(tmp, []byte("video"), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := Replace(tmp, dst); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	if _, err := os.Stat(tmp); !os.IsNotExist(err) {
		t.Fatalf("temp file still present")
	}
	if _, err := os.Stat(dst); err != nil {
		t.Fatalf("destination missing: %v", err)
	}
}

func TestReplaceOrSecondary_PrimaryWins(t *testing.T) {
	dir := t.TempDir()
	tmp := filepath.Join(dir, "in.tmp")
	dst := filepath.Join(dir, "clip_1080x1920.mp4")
	if err := os.WriteFile(tmp, []byte("video"), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}
	got, err := ReplaceOrSecondary(tmp, dst, "_sub")
	if err != nil {
		t.Fatalf("ReplaceOrSecondary: %v", err)
	}
	if got != dst {
		t.Fatalf("path = %q, want %q", got, dst)
	}
}

func TestReplaceOrSecondary_FallsBack(t *testing.T) {
	dir := t.TempDir()
	tmp := filepath.Join(dir, "in.tmp")
	if err := os.WriteFile(tmp, []byte("video"), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}
	// A directory squatting on the primary path makes every rename onto
	// it fail, forcing the secondary artifact.
	dst := filepath.Join(dir, "clip_1080x1920.mp4")
	if err := os.MkdirAll(filepath.Join(dst, "held"), 0o755); err != nil {
		t.Fatalf("block primary: %v", err)
	}

	got, err := ReplaceOrSecondary(tmp, dst, "_sub")
	if err != nil {
		t.Fatalf("ReplaceOrSecondary: %v", err)
	}
	if filepath.Base(got) != "clip_1080x1920_sub.mp4" {
		t.Fatalf("secondary path = %q", got)
	}
	data, err := os.ReadFile(got)
	if err != nil {
		t.Fatalf("read secondary: %v", err)
	}
	if string(data) != "video" {
		t.Fatalf("secondary content = %q", data)
	}
	if _, err := os.Stat(tmp); !os.IsNotExist(err) {
		t.Fatalf("temp file still present")
	}
}

func TestReplaceFailsFastOnPermanentError(t *testing.T) {
	dir := t.TempDir()
	tmp := filepath.Join(dir, "in.tmp")
	if err := os.WriteFile(tmp, []byte("video"), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}
	dst := filepath.Join(dir, "clip_1080x1920.mp4")
	if err := os.MkdirAll(filepath.Join(dst, "held"), 0o755); err != nil {
		t.Fatalf("block destination: %v", err)
	}

	start := time.Now()
	err := Replace(tmp, dst)
	if err == nil {
		t.Fatal("replace onto a directory succeeded")
	}
	// A permanent failure must not sit through the backoff schedule.
	if elapsed := time.Since(start); elapsed >= replaceBackoff {
		t.Fatalf("replace stalled %v before failing", elapsed)
	}
}
