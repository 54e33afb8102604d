package render

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrNotFound is returned when a clip has no persisted record.
var ErrNotFound = errors.New("not found")

// Store persists render status and crop rectangles in SQLite. It is
// the single write boundary for status: every lifecycle transition
// goes through SaveStatus.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// SaveStatus upserts the full status record for a clip.
func (s *Store) SaveStatus(st Status) error {
	_, err := s.db.Exec(`INSERT INTO render_status
		(clip_id, state, url, caption_status, error, args, stderr_tail, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(clip_id) DO UPDATE SET
			state = excluded.state,
			url = excluded.url,
			caption_status = excluded.caption_status,
			error = excluded.error,
			args = excluded.args,
			stderr_tail = excluded.stderr_tail,
			updated_at = CURRENT_TIMESTAMP`,
		st.ClipID, string(st.State), st.URL, st.CaptionStatus, st.Error,
		strings.Join(st.Args, "\x1f"), st.StderrTail)
	if err != nil {
		return fmt.Errorf("save status for %s: %w", st.ClipID, err)
	}
	return nil
}

// GetStatus loads the status record for a clip. ErrNotFound when the
// clip was never submitted.
func (s *Store) GetStatus(clipID string) (Status, error) {
	var st Status
	var state, args, updated string
	err := s.db.QueryRow(`SELECT clip_id, state, url, caption_status, error, args, stderr_tail, updated_at
		FROM render_status WHERE clip_id = ?`, clipID).
		Scan(&st.ClipID, &state, &st.URL, &st.CaptionStatus, &st.Error, &args, &st.StderrTail, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return Status{}, ErrNotFound
	}
	if err != nil {
		return Status{}, fmt.Errorf("get status for %s: %w", clipID, err)
	}
	st.State = State(state)
	if ts, err := time.Parse("2006-01-02 15:04:05", updated); err == nil {
		st.UpdatedAt = ts
	}
	if args != "" {
		st.Args = strings.Split(args, "\x1f")
	}
	return st, nil
}

// SaveCrop upserts one crop rectangle for a clip. kind is "game" or
// "camera". The rect is clamped before persisting so reads never see
// an out-of-frame crop.
func (s *Store) SaveCrop(clipID, kind string, r Rect) error {
	r = r.Clamp()
	_, err := s.db.Exec(`INSERT INTO crops (clip_id, kind, x, y, w, h, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(clip_id, kind) DO UPDATE SET
			x = excluded.x, y = excluded.y, w = excluded.w, h = excluded.h,
			updated_at = CURRENT_TIMESTAMP`,
		clipID, kind, r.X, r.Y, r.W, r.H)
	if err != nil {
		return fmt.Errorf("save %s crop for %s: %w", kind, clipID, err)
	}
	return nil
}

// GetCrops loads the stored crops for a clip, keyed by kind. Missing
// kinds are simply absent from the map.
func (s *Store) GetCrops(clipID string) (map[string]Rect, error) {
	rows, err := s.db.Query(`SELECT kind, x, y, w, h FROM crops WHERE clip_id = ?`, clipID)
	if err != nil {
		return nil, fmt.Errorf("get crops for %s: %w", clipID, err)
	}
	defer rows.Close()

	crops := make(map[string]Rect)
	for rows.Next() {
		var kind string
		var r Rect
		if err := rows.Scan(&kind, &r.X, &r.Y, &r.W, &r.H); err != nil {
			return nil, fmt.Errorf("scan crop: %w", err)
		}
		crops[kind] = r
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate crops: %w", err)
	}
	return crops, nil
}
