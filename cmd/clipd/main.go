// clipd is the clip render daemon: it accepts render jobs over a local
// HTTP API, composites vertical 1080x1920 exports with ffmpeg, applies
// karaoke captions, and serves finished artifacts.
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/gofrs/flock"

	"github.com/Kquxxi/e2eClipUploader/internal/api"
	"github.com/Kquxxi/e2eClipUploader/internal/captions"
	"github.com/Kquxxi/e2eClipUploader/internal/config"
	"github.com/Kquxxi/e2eClipUploader/internal/db"
	"github.com/Kquxxi/e2eClipUploader/internal/exports"
	"github.com/Kquxxi/e2eClipUploader/internal/logging"
	"github.com/Kquxxi/e2eClipUploader/internal/media"
	"github.com/Kquxxi/e2eClipUploader/internal/render"
	"github.com/Kquxxi/e2eClipUploader/internal/transcriber"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "clipd: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	dataDir := cfg.DataDir()
	exportDir := filepath.Join(dataDir, "exports")
	for _, dir := range []string{dataDir, exportDir, cfg.MediaDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}

	log := logging.New(os.Stderr, cfg.LogLevel())

	// One daemon per data dir: two writers would race on the status
	// store and export artifacts.
	lock := flock.New(filepath.Join(dataDir, "clipd.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire daemon lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("another clipd instance is already running in %s", dataDir)
	}
	defer lock.Unlock()

	ffmpeg, err := media.Locate(cfg.FFmpegPath(), "ffmpeg")
	if err != nil {
		return err
	}
	ffprobe, err := media.Locate(cfg.FFprobePath(), "ffprobe")
	if err != nil {
		return err
	}

	conn, err := db.Open(filepath.Join(dataDir, "clipd.db"))
	if err != nil {
		return err
	}
	defer conn.Close()

	if n, err := db.MarkInterruptedRenders(conn); err != nil {
		return err
	} else if n > 0 {
		log.Warn("marked interrupted renders", "count", n)
	}

	censor, err := captions.LoadCensor(cfg.BadwordsPath())
	if err != nil {
		return err
	}

	var scribe transcriber.Service
	if cmdline := cfg.TranscriberCmd(); cmdline != "" {
		scribe, err = transcriber.NewCommand(logging.WithComponent(log, "transcriber"), media.ExecRunner{}, cmdline)
		if err != nil {
			return err
		}
	}

	runner := media.ExecRunner{}
	store := render.NewStore(conn)
	orchestrator := render.NewOrchestrator(
		logging.WithComponent(log, "orchestrator"),
		store,
		render.NewExecutor(logging.WithComponent(log, "executor"), runner, ffmpeg),
		captions.NewEngine(logging.WithComponent(log, "captions"), runner, ffmpeg, censor, cfg.CaptionFont(), 0),
		render.NewBurner(logging.WithComponent(log, "burn"), runner, ffmpeg),
		scribe,
		cfg.MediaDir(),
		exportDir,
		ffprobe,
	)

	server := api.NewServer(
		logging.WithComponent(log, "api"),
		store,
		orchestrator,
		exports.NewServer(logging.WithComponent(log, "exports"), exportDir),
		cfg.MediaDir(),
	)

	addr := net.JoinHostPort("127.0.0.1", strconv.Itoa(cfg.Port()))
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      server.Router(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // streaming exports
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("clipd listening", "addr", addr, "data_dir", dataDir)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case sig := <-sigCh:
		log.Info("shutting down", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Warn("http shutdown", "error", err)
	}

	// Let in-flight renders land their final status before closing the
	// database.
	orchestrator.Wait()
	log.Info("clipd stopped")
	return nil
}
