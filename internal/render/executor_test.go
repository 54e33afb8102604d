package render

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/Kquxxi/e2eClipUploader/internal/media"
)

// fakeRunner simulates ffmpeg: it records argv and writes the output
// file named by the final argument.
type fakeRunner struct {
	calls [][]string
	fail  bool
}

func (f *fakeRunner) Run(ctx context.Context, bin string, args ...string) (media.Result, error) {
	argv := append([]string{bin}, args...)
	f.calls = append(f.calls, argv)
	if f.fail {
		return media.Result{ExitCode: 1, StderrTail: "codec error", Args: argv},
			fmt.Errorf("%s exited with code 1", bin)
	}
	out := args[len(args)-1]
	if err := os.WriteFile(out, []byte("rendered"), 0o644); err != nil {
		return media.Result{ExitCode: -1, Args: argv}, err
	}
	return media.Result{Args: argv}, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testJob(t *testing.T) Job {
	t.Helper()
	dir := t.TempDir()
	return Job{
		ClipID:     "clip1",
		Input:      dir + "/in.mp4",
		Output:     dir + "/clip1_1080x1920.mp4",
		Start:      12.5,
		End:        27.5,
		CameraCrop: FullFrame(),
		GameCrop:   FullFrame(),
		SplitRatio: 0.7,
	}
}

func TestBuildArgsOrder(t *testing.T) {
	args := buildArgs(testJob(t))
	argv := strings.Join(args, " ")

	// Trim flags come after the input and before stream mapping.
	iIdx := strings.Index(argv, "-i ")
	ssIdx := strings.Index(argv, "-ss 12.5")
	toIdx := strings.Index(argv, "-to 27.5")
	fcIdx := strings.Index(argv, "-filter_complex")
	mapIdx := strings.Index(argv, "-map [outv]")
	if iIdx < 0 || ssIdx < iIdx || toIdx < ssIdx || fcIdx < toIdx || mapIdx < fcIdx {
		t.Fatalf("argv ordering wrong: %q", argv)
	}

	for _, want := range []string{
		"-map 0:a:0?",
		"-r 30",
		"-c:v libx264",
		"-preset medium",
		"-crf 18",
		"-pix_fmt yuv420p",
		"-c:a aac",
		"-b:a 192k",
		"-shortest",
		"-movflags +faststart",
	} {
		if !strings.Contains(argv, want) {
			t.Fatalf("argv missing %q: %q", want, argv)
		}
	}
	if !strings.HasSuffix(args[len(args)-1], "clip1_1080x1920.mp4") {
		t.Fatalf("output not last: %q", args[len(args)-1])
	}
}

func TestBuildArgsNoTrim(t *testing.T) {
	j := testJob(t)
	j.Start, j.End = 0, 0
	argv := strings.Join(buildArgs(j), " ")
	if strings.Contains(argv, "-ss") || strings.Contains(argv, "-to") {
		t.Fatalf("trim flags on untrimmed job: %q", argv)
	}
}

func TestJobGraphSingleFrame(t *testing.T) {
	j := testJob(t)
	j.SingleFrame = true
	j.FrameHeightRatio = 0.5
	g := j.Graph()
	if !strings.Contains(g, "boxblur=20:2") || !strings.Contains(g, "overlay=(W-w)/2:(H-h)/2[outv]") {
		t.Fatalf("single-frame graph = %q", g)
	}
}

func TestExecutorRender(t *testing.T) {
	runner := &fakeRunner{}
	j := testJob(t)
	res, err := NewExecutor(testLogger(), runner, "ffmpeg").Render(context.Background(), j)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if len(runner.calls) != 1 || runner.calls[0][0] != "ffmpeg" {
		t.Fatalf("calls = %+v", runner.calls)
	}
	if len(res.Args) == 0 {
		t.Fatalf("result missing argv")
	}
	if _, err := os.Stat(j.Output); err != nil {
		t.Fatalf("artifact missing: %v", err)
	}
}

func TestExecutorRenderFailureRemovesPartial(t *testing.T) {
	j := testJob(t)
	// Simulate a partial artifact left by a crashed encode.
	os.WriteFile(j.Output, []byte("partial"), 0o644)

	res, err := NewExecutor(testLogger(), &fakeRunner{fail: true}, "ffmpeg").Render(context.Background(), j)
	if err == nil {
		t.Fatal("expected error")
	}
	if res.StderrTail != "codec error" {
		t.Fatalf("stderr tail = %q", res.StderrTail)
	}
	if _, statErr := os.Stat(j.Output); !os.IsNotExist(statErr) {
		t.Fatalf("partial output not removed")
	}
}

func TestArtifactName(t *testing.T) {
	if got := ArtifactName("abc"); got != "abc_1080x1920.mp4" {
		t.Fatalf("ArtifactName = %q", got)
	}
}
