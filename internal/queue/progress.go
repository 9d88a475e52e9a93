package queue

import (
	"context"
	"errors"
	"regexp"
	"strconv"
	"time"

	"github.com/anniexxx9999/download-youtube/internal/engine"
)

// Reporter translates engine progress events into job record updates. It is
// the only writer of progress fields while a fetch is in flight.
//
// Events may arrive for a job that was deleted by a concurrent request; the
// reporter treats that as a no-op rather than an error.
type Reporter struct {
	store Store
}

func NewReporter(store Store) *Reporter {
	return &Reporter{store: store}
}

// Downloading applies one transfer event. Percent is computed from the byte
// counters when the total is known, otherwise parsed out of the engine's raw
// progress text; it is clamped to [0,100] and never decreases while the job
// stays in Downloading.
func (r *Reporter) Downloading(ctx context.Context, id string, ev engine.Progress) error {
	err := r.store.Update(ctx, id, func(j *Job) error {
		if j.Status.IsTerminal() {
			// A late event after completion or failure must not revive
			// the record.
			return nil
		}
		if j.Status == StatusQueued {
			j.Status = StatusDownloading
		}
		if ev.DownloadedBytes > 0 {
			j.DownloadedBytes = ev.DownloadedBytes
		}
		if ev.TotalBytes > 0 {
			j.TotalBytes = ev.TotalBytes
		}
		pct := j.ProgressPercent
		switch {
		case ev.TotalBytes > 0:
			pct = float64(ev.DownloadedBytes) / float64(ev.TotalBytes) * 100
		case ev.Line != "":
			pct = ParsePercent(ev.Line)
		}
		pct = clampPercent(pct)
		if j.Status == StatusDownloading && pct < j.ProgressPercent {
			pct = j.ProgressPercent
		}
		j.ProgressPercent = pct
		j.Speed = ev.Speed
		j.ETASeconds = ev.ETASeconds
		return nil
	})
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	return err
}

// Finished marks the job Completed with the path the engine reported.
func (r *Reporter) Finished(ctx context.Context, id, localPath string) error {
	err := r.store.Update(ctx, id, func(j *Job) error {
		j.Status = StatusCompleted
		j.ProgressPercent = 100
		if j.TotalBytes > 0 {
			j.DownloadedBytes = j.TotalBytes
		}
		j.Speed = 0
		j.ETASeconds = 0
		j.LocalPath = localPath
		j.CompletedAt = time.Now().UTC()
		return nil
	})
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	return err
}

// Failed marks the job Error. Terminal; only deletion removes the record.
func (r *Reporter) Failed(ctx context.Context, id, message string) error {
	if message == "" {
		message = "download failed"
	}
	err := r.store.Update(ctx, id, func(j *Job) error {
		j.Status = StatusError
		j.Speed = 0
		j.ETASeconds = 0
		j.ErrorMessage = message
		return nil
	})
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	return err
}

// Paused records the cooperative pause outcome. Counters are kept so a
// resumed fetch can show where it left off.
func (r *Reporter) Paused(ctx context.Context, id string) error {
	err := r.store.Update(ctx, id, func(j *Job) error {
		if j.Status.IsTerminal() {
			return nil
		}
		j.Status = StatusPaused
		j.Speed = 0
		j.ETASeconds = 0
		return nil
	})
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	return err
}

var (
	ansiRe    = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)
	percentRe = regexp.MustCompile(`([0-9]+(?:\.[0-9]+)?)\s*%`)
)

// ParsePercent pulls a percentage out of free-form engine progress text.
// The text may carry terminal control sequences; parse failures yield 0
// rather than an error since the value is cosmetic.
func ParsePercent(line string) float64 {
	clean := ansiRe.ReplaceAllString(line, "")
	m := percentRe.FindStringSubmatch(clean)
	if m == nil {
		return 0
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0
	}
	return clampPercent(v)
}

func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
