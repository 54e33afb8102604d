package render

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/Kquxxi/e2eClipUploader/internal/captions"
	"github.com/Kquxxi/e2eClipUploader/internal/media"
	"github.com/Kquxxi/e2eClipUploader/internal/transcriber"
)

// ErrAlreadyRunning is returned when a clip is submitted while a
// render for the same clip is still in flight.
var ErrAlreadyRunning = errors.New("render already running for clip")

// Orchestrator owns the render lifecycle: exclusivity per clip, the
// render pass, the caption fallback chain, and every status write.
type Orchestrator struct {
	log      *slog.Logger
	store    *Store
	executor *Executor
	engine   *captions.Engine
	burner   *Burner
	scribe   transcriber.Service // nil when no transcriber is configured

	exportDir string
	mediaDir  string
	ffprobe   string

	// probeFn is swapped in tests.
	probeFn func(ctx context.Context, ffprobe, path string) (media.ProbeInfo, error)

	mu     sync.Mutex
	active map[string]struct{}
	wg     sync.WaitGroup
}

func NewOrchestrator(log *slog.Logger, store *Store, executor *Executor, engine *captions.Engine, burner *Burner, scribe transcriber.Service, mediaDir, exportDir, ffprobe string) *Orchestrator {
	return &Orchestrator{
		log:       log,
		store:     store,
		executor:  executor,
		engine:    engine,
		burner:    burner,
		scribe:    scribe,
		mediaDir:  mediaDir,
		exportDir: exportDir,
		ffprobe:   ffprobe,
		probeFn:   media.Probe,
		active:    make(map[string]struct{}),
	}
}

// tryStart claims the clip for rendering. Returns false when a render
// for the clip is already in flight.
func (o *Orchestrator) tryStart(clipID string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, busy := o.active[clipID]; busy {
		return false
	}
	o.active[clipID] = struct{}{}
	return true
}

func (o *Orchestrator) finish(clipID string) {
	o.mu.Lock()
	delete(o.active, clipID)
	o.mu.Unlock()
}

// ArtifactName is the canonical export filename for a clip.
func ArtifactName(clipID string) string {
	return fmt.Sprintf("%s_%dx%d.mp4", clipID, OutputWidth, OutputHeight)
}

// Submit claims the clip, persists the running state, and renders in a
// background goroutine. The returned error only covers submission; the
// render outcome lands in the status store.
func (o *Orchestrator) Submit(ctx context.Context, job Job) error {
	if job.ClipID == "" {
		return fmt.Errorf("clip id is required")
	}
	if !o.tryStart(job.ClipID) {
		return ErrAlreadyRunning
	}
	if job.Output == "" {
		job.Output = filepath.Join(o.exportDir, ArtifactName(job.ClipID))
	}
	if err := o.store.SaveStatus(Status{ClipID: job.ClipID, State: StateRunning}); err != nil {
		o.finish(job.ClipID)
		return err
	}

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		defer o.finish(job.ClipID)
		o.run(ctx, job)
	}()
	return nil
}

// Wait blocks until all in-flight renders finish. Used on shutdown.
func (o *Orchestrator) Wait() {
	o.wg.Wait()
}

// run executes the full pipeline for one claimed job. Render failure is
// fatal for the job; caption failures only degrade the caption status.
func (o *Orchestrator) run(ctx context.Context, job Job) {
	log := o.log.With("clip_id", job.ClipID)

	res, err := o.executor.Render(ctx, job)
	if err != nil {
		o.saveStatus(Status{
			ClipID:     job.ClipID,
			State:      StateError,
			Error:      err.Error(),
			Args:       res.Args,
			StderrTail: res.StderrTail,
		})
		return
	}

	final := job.Output
	st := Status{
		ClipID:        job.ClipID,
		State:         StateRunning,
		URL:           "/exports/" + filepath.Base(final),
		CaptionStatus: CaptionPending,
		Args:          res.Args,
		StderrTail:    res.StderrTail,
	}
	// Pollers see the finished render pass before captioning starts.
	o.saveStatus(st)

	st.CaptionStatus = o.applyCaptions(ctx, job, &final, func(stage string) {
		st.CaptionStatus = stage
		o.saveStatus(st)
	})

	st.State = StateDone
	st.URL = "/exports/" + filepath.Base(final)
	o.saveStatus(st)
	log.Info("clip ready", "artifact", final, "captions", st.CaptionStatus)
}

// applyCaptions runs the karaoke pass and, when it is skipped, falls
// back to a static SRT burn. final is updated when the burn had to
// write a secondary artifact. progress persists intermediate caption
// stages so pollers can follow the chain.
func (o *Orchestrator) applyCaptions(ctx context.Context, job Job, final *string, progress func(stage string)) string {
	if !job.IncludeSubtitles {
		return "skipped: subtitles not requested"
	}
	log := o.log.With("clip_id", job.ClipID)

	// Untrimmed jobs run to the end of the source; the artifact itself
	// knows the real duration.
	duration := job.End - job.Start
	if duration <= 0 {
		info, err := o.probeFn(ctx, o.ffprobe, *final)
		if err != nil {
			log.Warn("probe failed", "error", err)
			return "skipped: artifact duration unknown"
		}
		duration = info.Duration
	}

	jsonPath := o.transcriptPath(job.ClipID, ".json")
	if _, err := os.Stat(jsonPath); err != nil && o.scribe != nil {
		o.transcribe(ctx, job)
	}

	res := o.engine.Apply(ctx, *final, jsonPath, job.Start, duration)
	if res.Applied {
		return CaptionApplied
	}
	log.Info("karaoke captions skipped", "reason", res.Reason)

	srtPath := o.transcriptPath(job.ClipID, ".srt")
	if _, err := os.Stat(srtPath); err != nil {
		return "skipped: " + res.Reason
	}
	progress("skipped: " + res.Reason)
	burned, err := o.burner.Burn(ctx, *final, srtPath, job.Start)
	if err != nil {
		log.Warn("static burn failed", "error", err)
		return CaptionStaticBurnFailed
	}
	*final = burned
	return CaptionStaticBurn
}

// transcribe runs the external pipeline with diarization and retries
// once without it; failure is non-fatal for the render.
func (o *Orchestrator) transcribe(ctx context.Context, job Job) {
	log := o.log.With("clip_id", job.ClipID)
	if err := o.scribe.Transcribe(ctx, job.Input, transcriber.Options{Diarize: true}); err == nil {
		return
	}
	log.Warn("transcription with diarization failed, retrying without")
	if err := o.scribe.Transcribe(ctx, job.Input, transcriber.Options{Diarize: false}); err != nil {
		log.Warn("transcription failed", "error", err)
	}
}

// transcriptPath locates transcript side files: next to the source
// media, named after the clip id.
func (o *Orchestrator) transcriptPath(clipID, ext string) string {
	return filepath.Join(o.mediaDir, clipID+ext)
}

func (o *Orchestrator) saveStatus(st Status) {
	if err := o.store.SaveStatus(st); err != nil {
		o.log.Error("save status failed", "clip_id", st.ClipID, "error", err)
	}
}
