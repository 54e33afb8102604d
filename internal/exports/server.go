// Package exports serves finished render artifacts over HTTP with
// byte-range support so video players can seek.
package exports

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Server streams artifacts out of a single export directory.
type Server struct {
	log *slog.Logger
	dir string
}

func NewServer(log *slog.Logger, dir string) *Server {
	return &Server{log: log, dir: dir}
}

// SanitizeName rejects artifact names that could escape the export
// directory. Only plain mp4 filenames are served.
func SanitizeName(name string) (string, error) {
	if name == "" || name != filepath.Base(name) {
		return "", fmt.Errorf("invalid artifact name %q", name)
	}
	if strings.Contains(name, "..") || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("invalid artifact name %q", name)
	}
	if !strings.HasSuffix(name, ".mp4") {
		return "", fmt.Errorf("unsupported artifact type %q", name)
	}
	return name, nil
}

// ServeArtifact writes the named artifact to the response, honoring a
// single-range Range header with 206 responses.
func (s *Server) ServeArtifact(w http.ResponseWriter, r *http.Request, name string) {
	clean, err := SanitizeName(name)
	if err != nil {
		http.Error(w, "invalid artifact name", http.StatusBadRequest)
		return
	}
	path := filepath.Join(s.dir, clean)
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			http.NotFound(w, r)
			return
		}
		s.log.Error("open artifact failed", "name", clean, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	size := info.Size()

	w.Header().Set("Content-Type", "video/mp4")
	w.Header().Set("Accept-Ranges", "bytes")

	rangeHeader := r.Header.Get("Range")
	if rangeHeader == "" {
		w.Header().Set("Content-Length", strconv.FormatInt(size, 10))
		w.WriteHeader(http.StatusOK)
		if r.Method != http.MethodHead {
			io.Copy(w, f)
		}
		return
	}

	br, err := ParseRange(rangeHeader, size)
	if err != nil {
		if errors.Is(err, ErrUnsatisfiable) {
			w.Header().Set("Content-Range", fmt.Sprintf("bytes */%d", size))
			http.Error(w, "range not satisfiable", http.StatusRequestedRangeNotSatisfiable)
			return
		}
		http.Error(w, "invalid range", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Range", br.ContentRange())
	w.Header().Set("Content-Length", strconv.FormatInt(br.ContentLength(), 10))
	w.WriteHeader(http.StatusPartialContent)
	if r.Method == http.MethodHead {
		return
	}
	if _, err := f.Seek(br.Start, io.SeekStart); err != nil {
		return
	}
	io.CopyN(w, f, br.ContentLength())
}
