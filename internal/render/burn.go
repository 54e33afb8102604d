package render

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Kquxxi/e2eClipUploader/internal/captions"
	"github.com/Kquxxi/e2eClipUploader/internal/fsutil"
	"github.com/Kquxxi/e2eClipUploader/internal/media"
	"github.com/Kquxxi/e2eClipUploader/internal/transcript"
)

// burnForceStyle is the subtitle styling for the static SRT fallback:
// boxed white text near the lower third of the vertical canvas.
const burnForceStyle = "FontName=Montserrat,FontSize=42,PrimaryColour=&H00FFFFFF," +
	"OutlineColour=&H00000000,BackColour=&H80000000,Outline=3,Shadow=1," +
	"BorderStyle=3,Alignment=2,MarginV=240"

// secondarySuffix names the fallback artifact when the primary stays
// locked by a reader during replacement.
const secondarySuffix = "_sub"

// Burner composites plain SRT captions as a fallback when the karaoke
// pass was skipped.
type Burner struct {
	log    *slog.Logger
	runner media.Runner
	ffmpeg string
}

func NewBurner(log *slog.Logger, runner media.Runner, ffmpeg string) *Burner {
	return &Burner{log: log, runner: runner, ffmpeg: ffmpeg}
}

// Burn shifts the SRT cues so they start at the clip origin and
// composites them onto videoPath. It returns the path holding the
// captioned video: normally videoPath itself, or a secondary sibling
// when the primary could not be replaced.
func (b *Burner) Burn(ctx context.Context, videoPath, srtPath string, offset float64) (string, error) {
	data, err := os.ReadFile(srtPath)
	if err != nil {
		return "", fmt.Errorf("read srt: %w", err)
	}
	cues := transcript.ShiftCues(transcript.ParseSRT(string(data)),
		time.Duration(offset*float64(time.Second)))
	if len(cues) == 0 {
		return "", fmt.Errorf("no cues left after shifting")
	}

	shifted := strings.TrimSuffix(videoPath, filepath.Ext(videoPath)) + ".shifted.srt"
	if err := fsutil.WriteFileAtomic(shifted, []byte(transcript.WriteSRT(cues)), 0o644); err != nil {
		return "", fmt.Errorf("write shifted srt: %w", err)
	}
	defer os.Remove(shifted)

	tmp := videoPath + ".burn.tmp.mp4"
	filter := fmt.Sprintf("subtitles=%s:force_style='%s'",
		captions.FilterPathEscape(shifted), burnForceStyle)
	args := []string{
		"-y",
		"-i", videoPath,
		"-vf", filter,
		"-c:v", "libx264",
		"-preset", "medium",
		"-crf", "18",
		"-pix_fmt", "yuv420p",
		"-c:a", "copy",
		tmp,
	}
	res, err := b.runner.Run(ctx, b.ffmpeg, args...)
	if err != nil {
		os.Remove(tmp)
		b.log.Error("static burn failed",
			"exit_code", res.ExitCode,
			"stderr_tail", res.StderrTail)
		return "", fmt.Errorf("subtitle burn: %w", err)
	}

	final, err := fsutil.ReplaceOrSecondary(tmp, videoPath, secondarySuffix)
	if err != nil {
		os.Remove(tmp)
		return "", err
	}
	return final, nil
}
