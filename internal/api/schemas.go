package api

import (
	"encoding/json"
	"net/http"

	"github.com/Kquxxi/e2eClipUploader/internal/render"
)

// renderRequest is the POST /render body. Crops are optional: missing
// crops fall back to the stored crops for the clip, then to full frame.
type renderRequest struct {
	ClipID string `json:"clip_id"`
	Input  string `json:"input,omitempty"`

	Start float64 `json:"start"`
	End   float64 `json:"end"`

	CameraCrop *render.Rect `json:"camera_crop,omitempty"`
	GameCrop   *render.Rect `json:"game_crop,omitempty"`
	CameraFit  string       `json:"camera_fit,omitempty"`
	GameFit    string       `json:"game_fit,omitempty"`

	SplitRatio float64 `json:"split_ratio"`
	AutoSplit  bool    `json:"auto_split"`

	SingleFrame      bool    `json:"single_frame"`
	FrameHeightRatio float64 `json:"frame_height_ratio"`

	IncludeSubtitles bool `json:"include_subtitles"`
}

type renderAccepted struct {
	ClipID string `json:"clip_id"`
	State  string `json:"state"`
}

type statusResponse struct {
	ClipID        string   `json:"clip_id"`
	State         string   `json:"state"`
	URL           string   `json:"url,omitempty"`
	CaptionStatus string   `json:"caption_status,omitempty"`
	Error         string   `json:"error,omitempty"`
	Args          []string `json:"args,omitempty"`
	StderrTail    string   `json:"stderr_tail,omitempty"`
	UpdatedAt     string   `json:"updated_at,omitempty"`
}

type cropsRequest struct {
	ClipID string       `json:"clip_id"`
	Game   *render.Rect `json:"game,omitempty"`
	Camera *render.Rect `json:"camera,omitempty"`
}

type cropsResponse struct {
	ClipID string       `json:"clip_id"`
	Game   *render.Rect `json:"game,omitempty"`
	Camera *render.Rect `json:"camera,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
