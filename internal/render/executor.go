package render

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/Kquxxi/e2eClipUploader/internal/media"
)

// Job describes one render request: source, trim window, crops, and
// composition parameters. Output is the artifact path.
type Job struct {
	ClipID string
	Input  string
	Output string

	// Trim window in source seconds. End <= Start means "to the end".
	Start float64
	End   float64

	CameraCrop Rect
	GameCrop   Rect
	CameraFit  FitMode
	GameFit    FitMode

	// SplitRatio is the game panel's share of the canvas. AutoSplit
	// overrides it with inverse-aspect weighting.
	SplitRatio float64
	AutoSplit  bool

	// SingleFrame selects the blurred-backdrop layout driven by
	// GameCrop and FrameHeightRatio.
	SingleFrame      bool
	FrameHeightRatio float64

	// IncludeSubtitles gates the whole caption chain (karaoke and the
	// static fallback).
	IncludeSubtitles bool
}

// Graph computes the layout and filter-graph expression for the job.
func (j Job) Graph() string {
	if j.SingleFrame {
		return BuildSingleFrameGraph(j.GameCrop, PlanSingleFrame(j.FrameHeightRatio))
	}
	lay := PlanSplit(j.CameraCrop.Clamp(), j.GameCrop.Clamp(), j.SplitRatio, j.AutoSplit)
	return BuildFilterGraph(j.CameraCrop, j.GameCrop, lay, j.CameraFit, j.GameFit)
}

// Executor runs the single-pass ffmpeg render for a job.
type Executor struct {
	log    *slog.Logger
	runner media.Runner
	ffmpeg string
}

func NewExecutor(log *slog.Logger, runner media.Runner, ffmpeg string) *Executor {
	return &Executor{log: log, runner: runner, ffmpeg: ffmpeg}
}

// buildArgs assembles the ffmpeg argv. The trim window sits after the
// input so frames are decoded then cut, keeping filter timestamps
// aligned with the trimmed stream.
func buildArgs(j Job) []string {
	args := []string{"-y", "-i", j.Input}
	if j.Start > 0 {
		args = append(args, "-ss", fnum(j.Start))
	}
	if j.End > j.Start {
		args = append(args, "-to", fnum(j.End))
	}
	args = append(args,
		"-filter_complex", j.Graph(),
		"-map", "[outv]",
		"-map", "0:a:0?",
		"-r", "30",
		"-c:v", "libx264",
		"-preset", "medium",
		"-crf", "18",
		"-pix_fmt", "yuv420p",
		"-c:a", "aac",
		"-b:a", "192k",
		"-shortest",
		"-movflags", "+faststart",
		j.Output,
	)
	return args
}

// Render produces the artifact at j.Output. On failure the partial
// output is removed and the result still carries the argv and stderr
// tail for diagnostics.
func (e *Executor) Render(ctx context.Context, j Job) (media.Result, error) {
	args := buildArgs(j)
	e.log.Info("render start", "clip_id", j.ClipID, "input", j.Input)

	res, err := e.runner.Run(ctx, e.ffmpeg, args...)
	if err != nil {
		os.Remove(j.Output)
		e.log.Error("render failed",
			"clip_id", j.ClipID,
			"exit_code", res.ExitCode,
			"stderr_tail", res.StderrTail)
		return res, fmt.Errorf("render %s: %w", j.ClipID, err)
	}
	e.log.Info("render done", "clip_id", j.ClipID, "duration", res.Duration)
	return res, nil
}
