package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/anniexxx9999/download-youtube/internal/engine"
	"github.com/anniexxx9999/download-youtube/internal/queue"
)

// stubController returns canned values so handler behavior can be tested
// without a real job controller.
type stubController struct {
	meta      *engine.Metadata
	probeErr  error
	job       *queue.JobView
	submitErr error
	getErr    error
	jobs      []queue.JobView
	completed []queue.CompletedView
	toggled   queue.Status
	toggleErr error
	deleteErr error

	lastURL    string
	lastFormat string
	lastID     string
}

func (c *stubController) Probe(ctx context.Context, url string) (*engine.Metadata, error) {
	c.lastURL = url
	return c.meta, c.probeErr
}

func (c *stubController) Submit(ctx context.Context, url, formatSelector string) (*queue.JobView, error) {
	c.lastURL = url
	c.lastFormat = formatSelector
	return c.job, c.submitErr
}

func (c *stubController) Get(ctx context.Context, id string) (*queue.JobView, error) {
	c.lastID = id
	return c.job, c.getErr
}

func (c *stubController) List(ctx context.Context) ([]queue.JobView, error) {
	return c.jobs, nil
}

func (c *stubController) Completed(ctx context.Context) ([]queue.CompletedView, error) {
	return c.completed, nil
}

func (c *stubController) TogglePause(ctx context.Context, id string) (queue.Status, error) {
	c.lastID = id
	return c.toggled, c.toggleErr
}

func (c *stubController) Delete(ctx context.Context, id string) error {
	c.lastID = id
	return c.deleteErr
}

func testView() *queue.JobView {
	return &queue.JobView{
		ID:     "job-1",
		URL:    "https://www.youtube.com/watch?v=abc123",
		Status: "Queued",
		Metadata: engine.Metadata{
			ID:    "abc123",
			Title: "Test Video",
		},
		CreatedAt: time.Now().UTC(),
	}
}

func doRequest(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd *strings.Reader
	if body == "" {
		rd = strings.NewReader("")
	} else {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v (body %q)", err, rec.Body.String())
	}
	return out
}

func TestDownloadSubmits(t *testing.T) {
	ctrl := &stubController{job: testView()}
	s := &Server{Queue: ctrl}
	rec := doRequest(t, s, http.MethodPost, "/download",
		`{"url":"https://www.youtube.com/watch?v=abc123","formatSelector":"18"}`)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202 (body %s)", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["jobId"] != "job-1" || body["status"] != "Queued" {
		t.Fatalf("body = %v", body)
	}
	if ctrl.lastFormat != "18" {
		t.Fatalf("format selector not forwarded: %q", ctrl.lastFormat)
	}
}

func TestDownloadMissingURL(t *testing.T) {
	s := &Server{Queue: &stubController{}}
	rec := doRequest(t, s, http.MethodPost, "/download", `{"url":"   "}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if decodeBody(t, rec)["error"] == "" {
		t.Fatal("expected an error message")
	}
}

func TestDownloadMalformedBody(t *testing.T) {
	s := &Server{Queue: &stubController{}}
	rec := doRequest(t, s, http.MethodPost, "/download", `{"url": nope`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestDownloadRejectsGet(t *testing.T) {
	s := &Server{Queue: &stubController{}}
	rec := doRequest(t, s, http.MethodGet, "/download", "")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rec.Code)
	}
}

func TestDownloadGetInfoOnly(t *testing.T) {
	ctrl := &stubController{meta: &engine.Metadata{ID: "abc123", Title: "Test Video"}}
	s := &Server{Queue: ctrl}
	rec := doRequest(t, s, http.MethodPost, "/download",
		`{"url":"https://www.youtube.com/watch?v=abc123","getInfoOnly":true}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := decodeBody(t, rec)
	meta, ok := body["metadata"].(map[string]any)
	if !ok || meta["title"] != "Test Video" {
		t.Fatalf("body = %v", body)
	}
}

func TestDownloadRestrictedMode(t *testing.T) {
	ctrl := &stubController{meta: &engine.Metadata{Title: "Test Video"}}
	s := &Server{Queue: ctrl, Restricted: true}

	rec := doRequest(t, s, http.MethodPost, "/download", `{"url":"https://example.com/v"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["limited"] != true || body["message"] == "" {
		t.Fatalf("body = %v", body)
	}

	// Probing still works when downloads are off.
	rec = doRequest(t, s, http.MethodPost, "/download", `{"url":"https://example.com/v","getInfoOnly":true}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("probe status = %d, want 200", rec.Code)
	}
	if _, ok := decodeBody(t, rec)["metadata"]; !ok {
		t.Fatal("expected metadata in restricted probe response")
	}
}

func TestDownloadSubmitErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "invalid url", err: queue.ErrInvalidURL, want: http.StatusBadRequest},
		{name: "too large", err: queue.ErrTooLarge, want: http.StatusBadRequest},
		{name: "probe failed", err: queue.ErrProbeFailed, want: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Server{Queue: &stubController{submitErr: tt.err}}
			rec := doRequest(t, s, http.MethodPost, "/download", `{"url":"https://example.com/v"}`)
			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestProgress(t *testing.T) {
	ctrl := &stubController{job: testView()}
	s := &Server{Queue: ctrl}
	rec := doRequest(t, s, http.MethodGet, "/progress/job-1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["jobId"] != "job-1" || body["status"] != "Queued" {
		t.Fatalf("body = %v", body)
	}
	if ctrl.lastID != "job-1" {
		t.Fatalf("looked up id %q", ctrl.lastID)
	}
}

func TestProgressNotFound(t *testing.T) {
	s := &Server{Queue: &stubController{getErr: queue.ErrNotFound}}
	rec := doRequest(t, s, http.MethodGet, "/progress/missing", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestProgressEmptyID(t *testing.T) {
	s := &Server{Queue: &stubController{}}
	rec := doRequest(t, s, http.MethodGet, "/progress/", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestStatusListsAllJobs(t *testing.T) {
	ctrl := &stubController{jobs: []queue.JobView{*testView(), {ID: "job-2", Status: "Completed"}}}
	s := &Server{Queue: ctrl}
	rec := doRequest(t, s, http.MethodGet, "/status", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var jobs []map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&jobs); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(jobs) != 2 || jobs[0]["jobId"] != "job-1" {
		t.Fatalf("jobs = %v", jobs)
	}
}

func TestPauseToggle(t *testing.T) {
	ctrl := &stubController{toggled: queue.StatusPaused}
	s := &Server{Queue: ctrl}
	rec := doRequest(t, s, http.MethodPost, "/pause/job-1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if decodeBody(t, rec)["status"] != "Paused" {
		t.Fatalf("body = %s", rec.Body.String())
	}
}

func TestPauseErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "not found", err: queue.ErrNotFound, want: http.StatusNotFound},
		{name: "not downloading", err: queue.ErrNotDownloading, want: http.StatusConflict},
		{name: "not paused", err: queue.ErrNotPaused, want: http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Server{Queue: &stubController{toggleErr: tt.err}}
			rec := doRequest(t, s, http.MethodPost, "/pause/job-1", "")
			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestDelete(t *testing.T) {
	ctrl := &stubController{}
	s := &Server{Queue: ctrl}
	rec := doRequest(t, s, http.MethodDelete, "/download/job-1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if decodeBody(t, rec)["status"] != "deleted" {
		t.Fatalf("body = %s", rec.Body.String())
	}
	if ctrl.lastID != "job-1" {
		t.Fatalf("deleted id %q", ctrl.lastID)
	}
}

func TestDeleteNotFound(t *testing.T) {
	s := &Server{Queue: &stubController{deleteErr: queue.ErrNotFound}}
	rec := doRequest(t, s, http.MethodDelete, "/download/missing", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestDeleteRequiresDeleteMethod(t *testing.T) {
	s := &Server{Queue: &stubController{}}
	rec := doRequest(t, s, http.MethodGet, "/download/job-1", "")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rec.Code)
	}
}

func TestRootListsCompletedDownloads(t *testing.T) {
	done := time.Now().UTC()
	ctrl := &stubController{completed: []queue.CompletedView{
		{ID: "job-1", Title: "Test Video", LocalPath: "/tmp/v.mp4", FileSize: "1.0 MB", CompletedAt: done},
	}}
	s := &Server{Queue: ctrl}
	rec := doRequest(t, s, http.MethodGet, "/", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := decodeBody(t, rec)
	downloads, ok := body["downloads"].([]any)
	if !ok || len(downloads) != 1 {
		t.Fatalf("body = %v", body)
	}
	entry := downloads[0].(map[string]any)
	if entry["title"] != "Test Video" || entry["fileSize"] != "1.0 MB" {
		t.Fatalf("entry = %v", entry)
	}
}

func TestRootUnknownPath(t *testing.T) {
	s := &Server{Queue: &stubController{}}
	rec := doRequest(t, s, http.MethodGet, "/nope", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestHealth(t *testing.T) {
	s := &Server{Queue: &stubController{}}
	rec := doRequest(t, s, http.MethodGet, "/api/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if decodeBody(t, rec)["status"] != "ok" {
		t.Fatalf("body = %s", rec.Body.String())
	}
}

func TestStatusForQueueErr(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{err: queue.ErrNotFound, want: http.StatusNotFound},
		{err: queue.ErrInvalidURL, want: http.StatusBadRequest},
		{err: queue.ErrTooLarge, want: http.StatusBadRequest},
		{err: queue.ErrNotDownloading, want: http.StatusConflict},
		{err: queue.ErrNotPaused, want: http.StatusConflict},
		{err: errors.New("engine exploded"), want: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusForQueueErr(tt.err); got != tt.want {
			t.Fatalf("statusForQueueErr(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
