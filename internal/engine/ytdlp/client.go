// Package ytdlp implements the engine boundary on top of the yt-dlp
// wrapper library.
package ytdlp

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/lrstanley/go-ytdlp"

	"github.com/anniexxx9999/download-youtube/internal/engine"
)

const (
	defaultProbeTimeout  = 60 * time.Second
	defaultProgressEvery = 500 * time.Millisecond
)

// Client drives the yt-dlp engine.
type Client struct {
	probeTimeout  time.Duration
	progressEvery time.Duration
}

func New() *Client {
	return &Client{
		probeTimeout:  defaultProbeTimeout,
		progressEvery: defaultProgressEvery,
	}
}

// Probe asks the engine for metadata only. No media is transferred.
func (c *Client) Probe(ctx context.Context, url string) (*engine.Metadata, error) {
	ctx, cancel := context.WithTimeout(ctx, c.probeTimeout)
	defer cancel()

	dl := ytdlp.New().
		DumpSingleJSON().
		SkipDownload().
		NoWarnings()

	res, err := dl.Run(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("probe %s: %w", url, err)
	}
	meta, err := parseProbeOutput(res.Stdout)
	if err != nil {
		return nil, fmt.Errorf("probe %s: %w", url, err)
	}
	return meta, nil
}

// Fetch downloads url into opts.OutputDir, emitting progress events until
// the transfer ends. The finished path comes from the engine's own extracted
// info, not from scanning the output directory.
func (c *Client) Fetch(ctx context.Context, url string, opts engine.FetchOptions, progress engine.ProgressFunc) (*engine.FetchResult, error) {
	dl := ytdlp.New().
		NoWarnings().
		RestrictFilenames().
		Output(filepath.Join(opts.OutputDir, "%(title)s [%(id)s].%(ext)s"))
	if opts.FormatSelector != "" {
		dl = dl.Format(opts.FormatSelector)
	}
	if opts.MaxFilesize > 0 {
		dl = dl.MaxFileSize(strconv.FormatInt(opts.MaxFilesize, 10))
	}
	if opts.Continue {
		dl = dl.Continue()
	}

	if progress != nil {
		dl.ProgressFunc(c.progressEvery, func(update ytdlp.ProgressUpdate) {
			progress(toProgress(update))
		})
	}

	res, err := dl.Run(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	return &engine.FetchResult{OutputPath: extractOutputPath(res)}, nil
}

func toProgress(update ytdlp.ProgressUpdate) engine.Progress {
	ev := engine.Progress{
		DownloadedBytes: int64(update.DownloadedBytes),
		TotalBytes:      int64(update.TotalBytes),
	}
	if !update.Started.IsZero() {
		if elapsed := time.Since(update.Started); elapsed > 0 {
			ev.Speed = float64(update.DownloadedBytes) / elapsed.Seconds()
		}
	}
	if eta := update.ETA(); eta > 0 {
		ev.ETASeconds = int64(eta.Seconds())
	}
	return ev
}

func extractOutputPath(res *ytdlp.Result) string {
	if res == nil {
		return ""
	}
	info, err := res.GetExtractedInfo()
	if err != nil || len(info) == 0 {
		return ""
	}
	if info[0].Filename == nil {
		return ""
	}
	return *info[0].Filename
}

var _ engine.Engine = (*Client)(nil)
