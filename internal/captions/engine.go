// Package captions renders karaoke-style word-highlight captions onto
// finished clips: transcript windowing, censoring, speaker coloring,
// ASS generation, and a single ffmpeg compositing pass.
package captions

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/Kquxxi/e2eClipUploader/internal/fsutil"
	"github.com/Kquxxi/e2eClipUploader/internal/media"
	"github.com/Kquxxi/e2eClipUploader/internal/transcript"
)

// Result reports whether captions were composited and, if not, why the
// stage was skipped. A skip is not an error: the render artifact is
// still valid without captions.
type Result struct {
	Applied bool
	Reason  string
}

func skip(reason string) Result {
	return Result{Reason: reason}
}

// Engine applies karaoke captions to rendered clips.
type Engine struct {
	log      *slog.Logger
	runner   media.Runner
	ffmpeg   string
	censor   *Censor
	fontName string
	fontSize int
}

// NewEngine builds a caption engine. censor may cover zero words.
func NewEngine(log *slog.Logger, runner media.Runner, ffmpeg string, censor *Censor, fontName string, fontSize int) *Engine {
	if fontSize <= 0 {
		fontSize = DefaultFontSize
	}
	if censor == nil {
		censor = NewCensor(nil)
	}
	return &Engine{
		log:      log,
		runner:   runner,
		ffmpeg:   ffmpeg,
		censor:   censor,
		fontName: fontName,
		fontSize: fontSize,
	}
}

// Apply composites karaoke captions onto videoPath in place. The
// transcript holds absolute source timings; offset is the clip's start
// in the source and duration its length. Every failure downgrades to a
// skip reason so the caller can fall back to plainer captions.
func (e *Engine) Apply(ctx context.Context, videoPath, transcriptPath string, offset, duration float64) Result {
	doc, err := transcript.Load(transcriptPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return skip("transcript json not found")
		}
		return skip(fmt.Sprintf("transcript unreadable: %v", err))
	}
	if len(doc.Segments) == 0 {
		return skip("no segments in transcript")
	}

	words := transcript.Window(doc.Segments, offset, duration)
	if len(words) == 0 {
		return skip("no words in time window")
	}
	words = transcript.SmoothSpeakers(words)
	for i := range words {
		words[i].Text = e.censor.Apply(words[i].Text)
	}

	var events []Event
	for _, group := range splitOnPunctuation(words) {
		evs := SegmentEvents(group, SpeakerColor(majoritySpeaker(group)), e.fontSize, DefaultWrapWidth)
		if len(evs) == 0 {
			continue
		}
		events = append(events, evs...)
	}
	if len(events) == 0 {
		return skip("no caption clips built")
	}

	assPath := strings.TrimSuffix(videoPath, filepath.Ext(videoPath)) + ".ass"
	script := BuildScript(events, e.fontName, e.fontSize)
	if err := fsutil.WriteFileAtomic(assPath, []byte(script), 0o644); err != nil {
		return skip(fmt.Sprintf("write ass: %v", err))
	}
	defer os.Remove(assPath)

	tmp := videoPath + ".captions.tmp.mp4"
	args := []string{
		"-y",
		"-i", videoPath,
		"-vf", "ass=" + FilterPathEscape(assPath),
		"-c:v", "libx264",
		"-preset", "medium",
		"-crf", "18",
		"-pix_fmt", "yuv420p",
		"-c:a", "copy",
		tmp,
	}
	res, err := e.runner.Run(ctx, e.ffmpeg, args...)
	if err != nil {
		os.Remove(tmp)
		e.log.Error("caption pass failed",
			"exit_code", res.ExitCode,
			"stderr_tail", res.StderrTail)
		return skip(fmt.Sprintf("ffmpeg caption pass failed (exit %d)", res.ExitCode))
	}
	if err := fsutil.Replace(tmp, videoPath); err != nil {
		os.Remove(tmp)
		return skip("replace failed")
	}
	return Result{Applied: true}
}

// splitOnPunctuation groups words into caption clips, breaking after a
// word ending in terminal punctuation.
func splitOnPunctuation(words []transcript.Word) [][]transcript.Word {
	var groups [][]transcript.Word
	var cur []transcript.Word
	for _, w := range words {
		cur = append(cur, w)
		if endsSentence(w.Text) {
			groups = append(groups, cur)
			cur = nil
		}
	}
	if len(cur) > 0 {
		groups = append(groups, cur)
	}
	return groups
}

func endsSentence(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	switch s[len(s)-1] {
	case '.', ',', '?', '!':
		return true
	}
	return false
}

// majoritySpeaker picks the most frequent speaker in a group; ties go
// to the speaker seen first, keeping colors stable across runs.
func majoritySpeaker(words []transcript.Word) string {
	counts := make(map[string]int)
	var order []string
	for _, w := range words {
		if _, seen := counts[w.Speaker]; !seen {
			order = append(order, w.Speaker)
		}
		counts[w.Speaker]++
	}
	best := ""
	bestN := -1
	for _, s := range order {
		if counts[s] > bestN {
			best, bestN = s, counts[s]
		}
	}
	return best
}

// FilterPathEscape escapes a filesystem path for use as an ffmpeg
// filter argument, where ':' and '\' are structural.
func FilterPathEscape(p string) string {
	p = strings.ReplaceAll(p, `\`, `\\`)
	p = strings.ReplaceAll(p, `:`, `\:`)
	p = strings.ReplaceAll(p, `'`, `\'`)
	return p
}
