package queue

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/anniexxx9999/download-youtube/internal/engine"
)

var (
	ErrInvalidURL     = errors.New("invalid_url")
	ErrTooLarge       = errors.New("file_too_large")
	ErrProbeFailed    = errors.New("probe_failed")
	ErrNotDownloading = errors.New("job_not_downloading")
	ErrNotPaused      = errors.New("job_not_paused")
)

// Options configure the controller.
type Options struct {
	DownloadDir string
	// MaxFilesize rejects jobs whose probed size exceeds it. 0 disables
	// the check.
	MaxFilesize int64
	// Concurrency bounds simultaneous fetches. Jobs past the bound wait
	// in Queued until a slot frees.
	Concurrency int
}

// Service owns the job lifecycle: it validates submissions, probes through
// the engine, and hands fetches to background workers. The store is the only
// shared mutable state; workers and request handlers both go through it.
type Service struct {
	store    Store
	engine   engine.Engine
	reporter *Reporter
	opts     Options
	slots    chan struct{}

	mu      sync.Mutex
	workers map[string]*workerHandle
}

func NewService(store Store, eng engine.Engine, opts Options) *Service {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 2
	}
	return &Service{
		store:    store,
		engine:   eng,
		reporter: NewReporter(store),
		opts:     opts,
		slots:    make(chan struct{}, opts.Concurrency),
		workers:  make(map[string]*workerHandle),
	}
}

// Probe validates and normalizes rawURL, then fetches metadata without
// creating a job.
func (s *Service) Probe(ctx context.Context, rawURL string) (*engine.Metadata, error) {
	if err := ValidateURL(rawURL); err != nil {
		return nil, err
	}
	meta, err := s.engine.Probe(ctx, NormalizeURL(rawURL))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProbeFailed, err)
	}
	return meta, nil
}

// Submit creates a job for rawURL and schedules its download. The probe runs
// synchronously; if it fails no record is created. Submitting the same URL
// twice creates two independent jobs; records are keyed by id, not URL.
func (s *Service) Submit(ctx context.Context, rawURL, formatSelector string) (*JobView, error) {
	meta, err := s.Probe(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	if s.opts.MaxFilesize > 0 && meta.Filesize > s.opts.MaxFilesize {
		return nil, fmt.Errorf("%w: %s exceeds the %s limit", ErrTooLarge,
			humanize.Bytes(uint64(meta.Filesize)), humanize.Bytes(uint64(s.opts.MaxFilesize)))
	}

	job := &Job{
		ID:             uuid.NewString(),
		URL:            NormalizeURL(rawURL),
		FormatSelector: formatSelector,
		Status:         StatusQueued,
		TotalBytes:     meta.Filesize,
		Metadata:       *meta,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.store.Create(ctx, job); err != nil {
		return nil, err
	}
	log.Printf("action=submit id=%s url=%q title=%q", job.ID, job.URL, meta.Title)
	s.startWorker(job, false)
	view := toView(job)
	return &view, nil
}

func (s *Service) Get(ctx context.Context, id string) (*JobView, error) {
	job, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	view := toView(job)
	return &view, nil
}

func (s *Service) List(ctx context.Context) ([]JobView, error) {
	jobs, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]JobView, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, toView(j))
	}
	return out, nil
}

// Completed returns finished jobs newest-completion first, each with a
// display-ready file size.
func (s *Service) Completed(ctx context.Context) ([]CompletedView, error) {
	jobs, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]CompletedView, 0)
	for _, j := range jobs {
		if j.Status != StatusCompleted {
			continue
		}
		size := j.DownloadedBytes
		if size == 0 {
			size = j.Metadata.Filesize
		}
		out = append(out, CompletedView{
			ID:          j.ID,
			Title:       j.Metadata.Title,
			URL:         j.URL,
			LocalPath:   j.LocalPath,
			FileSize:    humanize.Bytes(uint64(size)),
			CompletedAt: j.CompletedAt,
		})
	}
	sort.Slice(out, func(i, k int) bool {
		return out[i].CompletedAt.After(out[k].CompletedAt)
	})
	return out, nil
}

// Pause signals the in-flight fetch to stop at its next progress event and
// marks the job Paused. Only a Downloading job can be paused.
func (s *Service) Pause(ctx context.Context, id string) error {
	job, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if job.Status != StatusDownloading {
		return fmt.Errorf("%w: status is %s", ErrNotDownloading, job.Status)
	}
	s.mu.Lock()
	if h := s.workers[id]; h != nil {
		h.pause.Store(true)
	}
	s.mu.Unlock()
	if err := s.reporter.Paused(ctx, id); err != nil {
		return err
	}
	log.Printf("action=pause id=%s", id)
	return nil
}

// Resume restarts the fetch of a Paused job. The engine continues a partial
// file when it can; otherwise the transfer starts over. Metadata and the
// counters recorded so far are kept either way.
func (s *Service) Resume(ctx context.Context, id string) error {
	job, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if job.Status != StatusPaused {
		return fmt.Errorf("%w: status is %s", ErrNotPaused, job.Status)
	}
	err = s.store.Update(ctx, id, func(j *Job) error {
		j.Status = StatusDownloading
		return nil
	})
	if err != nil {
		return err
	}
	job.Status = StatusDownloading
	s.startWorker(job, true)
	log.Printf("action=resume id=%s", id)
	return nil
}

// TogglePause flips Downloading to Paused and back, returning the resulting
// status. Any other state is rejected.
func (s *Service) TogglePause(ctx context.Context, id string) (Status, error) {
	job, err := s.store.Get(ctx, id)
	if err != nil {
		return "", err
	}
	switch job.Status {
	case StatusDownloading:
		if err := s.Pause(ctx, id); err != nil {
			return "", err
		}
		return StatusPaused, nil
	case StatusPaused:
		if err := s.Resume(ctx, id); err != nil {
			return "", err
		}
		return StatusDownloading, nil
	default:
		return "", fmt.Errorf("%w: status is %s", ErrNotDownloading, job.Status)
	}
}

// Delete removes the job from any state. An in-flight worker is cancelled
// and will not touch the record again. The artifact file is removed before
// the record; if removing the file fails the record is still deleted and the
// file is left behind as an orphan. The reverse (a record pointing at a
// deleted file) never survives.
func (s *Service) Delete(ctx context.Context, id string) error {
	job, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	s.mu.Lock()
	if h := s.workers[id]; h != nil {
		h.deleted.Store(true)
		h.cancel()
		delete(s.workers, id)
	}
	s.mu.Unlock()
	if job.LocalPath != "" {
		if err := os.Remove(job.LocalPath); err != nil && !os.IsNotExist(err) {
			log.Printf("action=delete id=%s orphan_file=%q err=%v", id, job.LocalPath, err)
		}
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	log.Printf("action=delete id=%s", id)
	return nil
}
