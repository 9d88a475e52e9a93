// Package engine defines the boundary to the external video extraction
// engine. The service never talks to yt-dlp directly; it probes and fetches
// through this interface so tests can script the engine.
package engine

import "context"

// Format is one downloadable variant of a video.
type Format struct {
	ID         string `json:"formatId"`
	Ext        string `json:"ext"`
	Resolution string `json:"resolution"`
	VideoCodec string `json:"vcodec"`
	AudioCodec string `json:"acodec"`
	Filesize   int64  `json:"filesize"`
}

// Metadata is the result of probing a URL. It is immutable once returned.
type Metadata struct {
	ID              string   `json:"id"`
	Title           string   `json:"title"`
	Uploader        string   `json:"uploader"`
	DurationSeconds int64    `json:"duration"`
	DurationString  string   `json:"durationString"`
	Thumbnail       string   `json:"thumbnail"`
	Description     string   `json:"description"`
	Filesize        int64    `json:"filesize"`
	Formats         []Format `json:"formats"`
}

// Progress is a single low-level progress event emitted while a fetch is
// transferring data. TotalBytes may be 0 when the engine does not know the
// final size. Line carries the engine's raw progress text, if any, and is
// only consulted when the byte counters are unusable.
type Progress struct {
	DownloadedBytes int64
	TotalBytes      int64
	Speed           float64
	ETASeconds      int64
	Line            string
}

// ProgressFunc receives progress events. Implementations must be safe to
// call from the engine's own goroutine.
type ProgressFunc func(Progress)

// FetchOptions control a single fetch.
type FetchOptions struct {
	FormatSelector string
	OutputDir      string
	MaxFilesize    int64
	// Continue asks the engine to pick up a partial file if it can.
	Continue bool
}

// FetchResult reports where the engine wrote the finished file. The path is
// the one the engine itself reports, never guessed from directory contents.
type FetchResult struct {
	OutputPath string
}

// Engine is the extraction/download capability.
type Engine interface {
	// Probe fetches metadata for url without transferring media.
	Probe(ctx context.Context, url string) (*Metadata, error)
	// Fetch downloads url, invoking progress as data arrives. It blocks
	// until the transfer ends, fails, or ctx is cancelled.
	Fetch(ctx context.Context, url string, opts FetchOptions, progress ProgressFunc) (*FetchResult, error)
}
