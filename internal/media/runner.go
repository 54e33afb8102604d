// Package media wraps the external ffmpeg/ffprobe binaries: locating
// them, running them with bounded stderr capture, and probing files.
package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"
)

// maxStderrTail bounds how much subprocess stderr is retained for
// diagnostics. ffmpeg is chatty; only the tail matters on failure.
const maxStderrTail = 8 * 1024

// Result captures the outcome of one subprocess run.
type Result struct {
	ExitCode   int
	StderrTail string
	Duration   time.Duration
	Args       []string
}

// Runner executes an external binary. Implementations are swapped in
// tests so no real subprocess is needed.
type Runner interface {
	Run(ctx context.Context, bin string, args ...string) (Result, error)
}

// ExecRunner runs binaries with os/exec.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, bin string, args ...string) (Result, error) {
	start := time.Now()
	cmd := exec.CommandContext(ctx, bin, args...)
	tail := &tailWriter{limit: maxStderrTail}
	cmd.Stderr = tail

	err := cmd.Run()
	res := Result{
		ExitCode:   0,
		StderrTail: tail.String(),
		Duration:   time.Since(start),
		Args:       append([]string{bin}, args...),
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
			return res, fmt.Errorf("%s exited with code %d", bin, res.ExitCode)
		}
		res.ExitCode = -1
		return res, fmt.Errorf("run %s: %w", bin, err)
	}
	return res, nil
}

// tailWriter keeps only the last limit bytes written to it.
type tailWriter struct {
	limit int
	buf   bytes.Buffer
}

func (w *tailWriter) Write(p []byte) (int, error) {
	n := len(p)
	if n >= w.limit {
		w.buf.Reset()
		w.buf.Write(p[n-w.limit:])
		return n, nil
	}
	if over := w.buf.Len() + n - w.limit; over > 0 {
		rest := w.buf.Bytes()[over:]
		remaining := make([]byte, len(rest))
		copy(remaining, rest)
		w.buf.Reset()
		w.buf.Write(remaining)
	}
	w.buf.Write(p)
	return n, nil
}

func (w *tailWriter) String() string {
	return w.buf.String()
}

// Locate resolves a tool binary: an explicit override wins, otherwise
// the name is looked up on PATH.
func Locate(override, name string) (string, error) {
	if override != "" {
		return override, nil
	}
	path, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("%s not found on PATH: %w", name, err)
	}
	return path, nil
}
