package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/anniexxx9999/download-youtube/internal/engine"
	"github.com/anniexxx9999/download-youtube/internal/queue"
)

// Controller is the slice of the job controller the HTTP layer needs.
type Controller interface {
	Probe(ctx context.Context, url string) (*engine.Metadata, error)
	Submit(ctx context.Context, url, formatSelector string) (*queue.JobView, error)
	Get(ctx context.Context, id string) (*queue.JobView, error)
	List(ctx context.Context) ([]queue.JobView, error)
	Completed(ctx context.Context) ([]queue.CompletedView, error)
	TogglePause(ctx context.Context, id string) (queue.Status, error)
	Delete(ctx context.Context, id string) error
}

type Server struct {
	Queue Controller
	// Restricted disables download execution; probe-only requests still
	// work. See handleDownload for the capability-limitation response.
	Restricted bool
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/download", s.handleDownload)
	mux.HandleFunc("/download/", s.handleDownloadByID)
	mux.HandleFunc("/progress/", s.handleProgress)
	mux.HandleFunc("/status", s.handleStatus)
	mux.HandleFunc("/pause/", s.handlePause)
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/", s.handleRoot)
	return mux
}

type downloadRequest struct {
	URL            string `json:"url"`
	FormatSelector string `json:"formatSelector"`
	GetInfoOnly    bool   `json:"getInfoOnly"`
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req downloadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, errors.New("malformed request body"))
		return
	}
	if strings.TrimSpace(req.URL) == "" {
		writeErr(w, http.StatusBadRequest, errors.New("missing url"))
		return
	}
	if req.GetInfoOnly {
		meta, err := s.Queue.Probe(r.Context(), req.URL)
		if err != nil {
			writeErr(w, statusForQueueErr(err), err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"metadata": meta})
		return
	}
	if s.Restricted {
		// 200 on purpose: "feature unavailable here" is not a request
		// failure, and clients need to tell the two apart.
		writeJSON(w, http.StatusOK, map[string]any{
			"limited": true,
			"message": "downloads are disabled in this environment; metadata probing is still available via getInfoOnly",
		})
		return
	}
	job, err := s.Queue.Submit(r.Context(), req.URL, req.FormatSelector)
	if err != nil {
		writeErr(w, statusForQueueErr(err), err)
		return
	}
	log.Printf("action=download id=%s url=%q", job.ID, job.URL)
	writeJSON(w, http.StatusAccepted, map[string]any{"jobId": job.ID, "status": job.Status})
}

func (s *Server) handleDownloadByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/download/")
	if id == "" || strings.Contains(id, "/") {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if r.Method != http.MethodDelete {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := s.Queue.Delete(r.Context(), id); err != nil {
		writeErr(w, statusForQueueErr(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/progress/")
	if id == "" || strings.Contains(id, "/") {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	job, err := s.Queue.Get(r.Context(), id)
	if err != nil {
		writeErr(w, statusForQueueErr(err), err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// handleStatus returns every job record, newest first.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	jobs, err := s.Queue.List(r.Context())
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, jobs)
}

func (s *Server) handlePause(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/pause/")
	if id == "" || strings.Contains(id, "/") {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	status, err := s.Queue.TogglePause(r.Context(), id)
	if err != nil {
		writeErr(w, statusForQueueErr(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": status.String()})
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	downloads, err := s.Queue.Completed(r.Context())
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"downloads": downloads})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// statusForQueueErr maps controller errors onto HTTP statuses. Probe and
// other engine failures fall through to 500 with the engine's message.
func statusForQueueErr(err error) int {
	switch {
	case errors.Is(err, queue.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, queue.ErrInvalidURL), errors.Is(err, queue.ErrTooLarge):
		return http.StatusBadRequest
	case errors.Is(err, queue.ErrNotDownloading), errors.Is(err, queue.ErrNotPaused):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, err error) {
	if code == http.StatusInternalServerError {
		log.Printf("internal error: %v", err)
	}
	writeJSON(w, code, map[string]string{"error": err.Error()})
}
