package queue

import (
	"context"
	"log"
	"sync/atomic"

	"github.com/anniexxx9999/download-youtube/internal/engine"
)

// workerHandle is the cooperative control surface for one background fetch.
// The engine has no native pause, so pause and delete are flags the progress
// callback observes; cancellation takes effect within one progress interval,
// not mid-chunk.
type workerHandle struct {
	cancel  context.CancelFunc
	pause   atomic.Bool
	deleted atomic.Bool
}

func (s *Service) ownsWorker(id string, h *workerHandle) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.workers[id] == h
}

func (s *Service) startWorker(job *Job, resume bool) {
	ctx, cancel := context.WithCancel(context.Background())
	h := &workerHandle{cancel: cancel}
	s.mu.Lock()
	s.workers[job.ID] = h
	s.mu.Unlock()
	go s.runFetch(ctx, h, job, resume)
}

func (s *Service) runFetch(ctx context.Context, h *workerHandle, job *Job, resume bool) {
	defer func() {
		s.mu.Lock()
		if s.workers[job.ID] == h {
			delete(s.workers, job.ID)
		}
		s.mu.Unlock()
	}()

	// Store writes below use a fresh context: the worker context being
	// cancelled must not block the final record update.
	bctx := context.Background()

	select {
	case s.slots <- struct{}{}:
		defer func() { <-s.slots }()
	case <-ctx.Done():
		if h.pause.Load() && !h.deleted.Load() && s.ownsWorker(job.ID, h) {
			_ = s.reporter.Paused(bctx, job.ID)
		}
		return
	}
	if h.deleted.Load() {
		return
	}

	err := s.store.Update(bctx, job.ID, func(j *Job) error {
		j.Status = StatusDownloading
		return nil
	})
	if err != nil {
		// Deleted while waiting for a slot.
		return
	}

	progressFn := func(ev engine.Progress) {
		if h.pause.Load() || h.deleted.Load() {
			h.cancel()
			return
		}
		_ = s.reporter.Downloading(bctx, job.ID, ev)
	}

	res, fetchErr := s.engine.Fetch(ctx, job.URL, engine.FetchOptions{
		FormatSelector: job.FormatSelector,
		OutputDir:      s.opts.DownloadDir,
		MaxFilesize:    s.opts.MaxFilesize,
		Continue:       resume,
	}, progressFn)

	switch {
	case h.deleted.Load():
		// The record is gone; writing would resurrect a deleted id.
	case h.pause.Load():
		// A resume may already have registered a fresh worker; only the
		// current handle may write Paused, or it would clobber the new
		// fetch's Downloading state.
		if s.ownsWorker(job.ID, h) {
			_ = s.reporter.Paused(bctx, job.ID)
		}
		log.Printf("action=fetch_paused id=%s", job.ID)
	case fetchErr != nil:
		_ = s.reporter.Failed(bctx, job.ID, fetchErr.Error())
		log.Printf("action=fetch_failed id=%s err=%v", job.ID, fetchErr)
	default:
		outPath := ""
		if res != nil {
			outPath = res.OutputPath
		}
		_ = s.reporter.Finished(bctx, job.ID, outPath)
		log.Printf("action=fetch_done id=%s path=%q", job.ID, outPath)
	}
}
