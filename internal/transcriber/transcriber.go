// Package transcriber invokes the external speech-to-text pipeline
// that produces word-level transcript JSON and SRT files next to a
// clip. The model itself is an opaque collaborator.
package transcriber

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Kquxxi/e2eClipUploader/internal/media"
)

// Options tune one transcription run.
type Options struct {
	// Diarize asks the pipeline for speaker labels. Diarization is the
	// flaky half of the pipeline; callers retry without it on failure.
	Diarize bool
	// Language hint, empty for auto-detect.
	Language string
}

// Service produces {clip}.json and {clip}.srt for an input media file.
type Service interface {
	Transcribe(ctx context.Context, input string, opts Options) error
}

// Command runs a configured transcriber executable. The command
// receives the input path plus flag-style options and is expected to
// write its outputs next to the input.
type Command struct {
	log    *slog.Logger
	runner media.Runner
	// argv[0] is the binary, the rest fixed leading arguments.
	argv []string
}

// NewCommand parses a space-separated command line into a Command.
func NewCommand(log *slog.Logger, runner media.Runner, cmdline string) (*Command, error) {
	fields := strings.Fields(cmdline)
	if len(fields) == 0 {
		return nil, fmt.Errorf("transcriber command is empty")
	}
	return &Command{log: log, runner: runner, argv: fields}, nil
}

func (c *Command) Transcribe(ctx context.Context, input string, opts Options) error {
	args := append([]string{}, c.argv[1:]...)
	args = append(args, "--input", input)
	if opts.Diarize {
		args = append(args, "--diarize")
	}
	if opts.Language != "" {
		args = append(args, "--language", opts.Language)
	}

	c.log.Info("transcription start", "input", input, "diarize", opts.Diarize)
	res, err := c.runner.Run(ctx, c.argv[0], args...)
	if err != nil {
		c.log.Error("transcription failed",
			"exit_code", res.ExitCode,
			"stderr_tail", res.StderrTail)
		return fmt.Errorf("transcribe %s: %w", input, err)
	}
	c.log.Info("transcription done", "input", input, "duration", res.Duration)
	return nil
}
