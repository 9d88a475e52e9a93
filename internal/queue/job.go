// Package queue implements the download job state machine: the job store,
// the progress reporter, and the controller that drives background fetches
// through the engine boundary.
package queue

import (
	"time"

	"github.com/anniexxx9999/download-youtube/internal/engine"
)

// Status is the lifecycle state of a job. Transitions are monotonic except
// the Downloading/Paused side loop; Completed and Error are terminal.
type Status string

const (
	StatusQueued      Status = "Queued"
	StatusDownloading Status = "Downloading"
	StatusPaused      Status = "Paused"
	StatusCompleted   Status = "Completed"
	StatusError       Status = "Error"
)

func (s Status) String() string { return string(s) }

// IsActive reports whether a background fetch may still be running or
// scheduled for the job.
func (s Status) IsActive() bool {
	return s == StatusQueued || s == StatusDownloading
}

// IsTerminal reports whether the job can no longer change state except by
// deletion.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusError
}

// Job is one tracked download request. Metadata is populated once at
// creation and never changes afterwards.
type Job struct {
	ID              string
	URL             string
	FormatSelector  string
	Status          Status
	ProgressPercent float64
	DownloadedBytes int64
	TotalBytes      int64
	Speed           float64
	ETASeconds      int64
	Metadata        engine.Metadata
	LocalPath       string
	ErrorMessage    string
	CreatedAt       time.Time
	CompletedAt     time.Time
}

// Clone returns a deep copy so callers can read a job without holding the
// store's lock.
func (j *Job) Clone() *Job {
	c := *j
	if len(j.Metadata.Formats) > 0 {
		c.Metadata.Formats = make([]engine.Format, len(j.Metadata.Formats))
		copy(c.Metadata.Formats, j.Metadata.Formats)
	}
	return &c
}

// JobView is the JSON projection served by the API.
type JobView struct {
	ID              string          `json:"jobId"`
	URL             string          `json:"url"`
	FormatSelector  string          `json:"formatSelector,omitempty"`
	Status          string          `json:"status"`
	ProgressPercent float64         `json:"progress"`
	DownloadedBytes int64           `json:"downloadedBytes"`
	TotalBytes      int64           `json:"totalBytes"`
	Speed           float64         `json:"speed"`
	ETASeconds      int64           `json:"etaSeconds"`
	Metadata        engine.Metadata `json:"metadata"`
	LocalPath       string          `json:"localPath,omitempty"`
	ErrorMessage    string          `json:"errorMessage,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	CompletedAt     *time.Time      `json:"completedAt,omitempty"`
}

func toView(j *Job) JobView {
	v := JobView{
		ID:              j.ID,
		URL:             j.URL,
		FormatSelector:  j.FormatSelector,
		Status:          j.Status.String(),
		ProgressPercent: j.ProgressPercent,
		DownloadedBytes: j.DownloadedBytes,
		TotalBytes:      j.TotalBytes,
		Speed:           j.Speed,
		ETASeconds:      j.ETASeconds,
		Metadata:        j.Metadata,
		LocalPath:       j.LocalPath,
		ErrorMessage:    j.ErrorMessage,
		CreatedAt:       j.CreatedAt,
	}
	if !j.CompletedAt.IsZero() {
		done := j.CompletedAt
		v.CompletedAt = &done
	}
	return v
}

// CompletedView is one row of the completed-downloads listing, with a
// human-readable size derived for display.
type CompletedView struct {
	ID          string    `json:"jobId"`
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	LocalPath   string    `json:"localPath"`
	FileSize    string    `json:"fileSize"`
	CompletedAt time.Time `json:"completedAt"`
}
