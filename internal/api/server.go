// Package api exposes the render service over a local HTTP interface:
// async render submission, status polling, crop management, and
// artifact serving.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Kquxxi/e2eClipUploader/internal/exports"
	"github.com/Kquxxi/e2eClipUploader/internal/render"
)

// Server wires HTTP routes to the orchestrator and store.
type Server struct {
	log          *slog.Logger
	store        *render.Store
	orchestrator *render.Orchestrator
	artifacts    *exports.Server
	mediaDir     string
}

func NewServer(log *slog.Logger, store *render.Store, orchestrator *render.Orchestrator, artifacts *exports.Server, mediaDir string) *Server {
	return &Server{
		log:          log,
		store:        store,
		orchestrator: orchestrator,
		artifacts:    artifacts,
		mediaDir:     mediaDir,
	}
}

// Router builds the chi router with middleware and all routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Recovery(s.log))
	r.Use(Logging(s.log))

	r.Get("/health", s.handleHealth)
	r.Post("/render", s.handleRenderSubmit)
	r.Get("/render/{clipID}", s.handleRenderStatus)
	r.Post("/crops", s.handleCropsSave)
	r.Get("/crops/{clipID}", s.handleCropsGet)
	r.Get("/exports/{name}", s.handleExport)
	r.Head("/exports/{name}", s.handleExport)
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleRenderSubmit(w http.ResponseWriter, r *http.Request) {
	var req renderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.ClipID == "" {
		writeError(w, http.StatusBadRequest, "clip_id is required")
		return
	}

	job, err := s.buildJob(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	// The request context dies with the response; renders outlive it.
	if err := s.orchestrator.Submit(context.Background(), job); err != nil {
		if errors.Is(err, render.ErrAlreadyRunning) {
			writeError(w, http.StatusConflict, "render already running for clip")
			return
		}
		s.log.Error("submit failed", "clip_id", req.ClipID, "error", err)
		writeError(w, http.StatusInternalServerError, "submit failed")
		return
	}
	writeJSON(w, http.StatusAccepted, renderAccepted{
		ClipID: req.ClipID,
		State:  string(render.StateRunning),
	})
}

// buildJob resolves crops (request > stored > full frame) and assembles
// the render job.
func (s *Server) buildJob(req renderRequest) (render.Job, error) {
	stored, err := s.store.GetCrops(req.ClipID)
	if err != nil {
		return render.Job{}, err
	}
	resolve := func(explicit *render.Rect, kind string) render.Rect {
		if explicit != nil {
			return explicit.Clamp()
		}
		if r, ok := stored[kind]; ok {
			return r
		}
		return render.FullFrame()
	}

	input := req.Input
	if input == "" {
		input = filepath.Join(s.mediaDir, req.ClipID+".mp4")
	}
	if _, err := os.Stat(input); err != nil {
		return render.Job{}, fmt.Errorf("clip media not found: %s", filepath.Base(input))
	}
	return render.Job{
		ClipID:           req.ClipID,
		Input:            input,
		Start:            req.Start,
		End:              req.End,
		CameraCrop:       resolve(req.CameraCrop, "camera"),
		GameCrop:         resolve(req.GameCrop, "game"),
		CameraFit:        render.ParseFitMode(req.CameraFit),
		GameFit:          render.ParseFitMode(req.GameFit),
		SplitRatio:       req.SplitRatio,
		AutoSplit:        req.AutoSplit,
		SingleFrame:      req.SingleFrame,
		FrameHeightRatio: req.FrameHeightRatio,
		IncludeSubtitles: req.IncludeSubtitles,
	}, nil
}

func (s *Server) handleRenderStatus(w http.ResponseWriter, r *http.Request) {
	clipID := chi.URLParam(r, "clipID")
	st, err := s.store.GetStatus(clipID)
	if errors.Is(err, render.ErrNotFound) {
		// Never-submitted clips poll as idle.
		writeJSON(w, http.StatusOK, statusResponse{
			ClipID: clipID,
			State:  string(render.StateIdle),
		})
		return
	}
	if err != nil {
		s.log.Error("get status failed", "clip_id", clipID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	resp := statusResponse{
		ClipID:        st.ClipID,
		State:         string(st.State),
		URL:           st.URL,
		CaptionStatus: st.CaptionStatus,
		Error:         st.Error,
	}
	if !st.UpdatedAt.IsZero() {
		resp.UpdatedAt = st.UpdatedAt.UTC().Format(time.RFC3339)
	}
	if r.URL.Query().Get("verbose") == "1" {
		resp.Args = st.Args
		resp.StderrTail = st.StderrTail
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCropsSave(w http.ResponseWriter, r *http.Request) {
	var req cropsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.ClipID == "" {
		writeError(w, http.StatusBadRequest, "clip_id is required")
		return
	}
	if req.Game == nil && req.Camera == nil {
		writeError(w, http.StatusBadRequest, "at least one crop is required")
		return
	}
	if req.Game != nil {
		if err := s.store.SaveCrop(req.ClipID, "game", *req.Game); err != nil {
			writeError(w, http.StatusInternalServerError, "save crop failed")
			return
		}
	}
	if req.Camera != nil {
		if err := s.store.SaveCrop(req.ClipID, "camera", *req.Camera); err != nil {
			writeError(w, http.StatusInternalServerError, "save crop failed")
			return
		}
	}
	s.writeCrops(w, req.ClipID)
}

func (s *Server) handleCropsGet(w http.ResponseWriter, r *http.Request) {
	s.writeCrops(w, chi.URLParam(r, "clipID"))
}

func (s *Server) writeCrops(w http.ResponseWriter, clipID string) {
	crops, err := s.store.GetCrops(clipID)
	if err != nil {
		s.log.Error("get crops failed", "clip_id", clipID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	resp := cropsResponse{ClipID: clipID}
	if r, ok := crops["game"]; ok {
		resp.Game = &r
	}
	if r, ok := crops["camera"]; ok {
		resp.Camera = &r
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	s.artifacts.ServeArtifact(w, r, chi.URLParam(r, "name"))
}
