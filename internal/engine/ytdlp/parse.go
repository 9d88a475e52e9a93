package ytdlp

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/anniexxx9999/download-youtube/internal/engine"
)

// probeInfo mirrors the subset of yt-dlp's --dump-single-json output the
// service cares about. Unknown fields are ignored.
type probeInfo struct {
	ID             string       `json:"id"`
	Title          string       `json:"title"`
	Uploader       string       `json:"uploader"`
	Duration       float64      `json:"duration"`
	Thumbnail      string       `json:"thumbnail"`
	Description    string       `json:"description"`
	Filesize       int64        `json:"filesize"`
	FilesizeApprox int64        `json:"filesize_approx"`
	Formats        []probeInfoF `json:"formats"`
}

type probeInfoF struct {
	FormatID   string  `json:"format_id"`
	Ext        string  `json:"ext"`
	Resolution string  `json:"resolution"`
	VCodec     string  `json:"vcodec"`
	ACodec     string  `json:"acodec"`
	Filesize   int64   `json:"filesize"`
	FilesizeA  float64 `json:"filesize_approx"`
}

func parseProbeOutput(out string) (*engine.Metadata, error) {
	out = strings.TrimSpace(out)
	if out == "" {
		return nil, errors.New("empty probe output")
	}
	var info probeInfo
	if err := json.Unmarshal([]byte(out), &info); err != nil {
		return nil, fmt.Errorf("decode probe output: %w", err)
	}
	if info.ID == "" && info.Title == "" {
		return nil, errors.New("probe output has no id or title")
	}

	size := info.Filesize
	if size == 0 {
		size = info.FilesizeApprox
	}
	meta := &engine.Metadata{
		ID:              info.ID,
		Title:           info.Title,
		Uploader:        info.Uploader,
		DurationSeconds: int64(info.Duration),
		DurationString:  formatDuration(int64(info.Duration)),
		Thumbnail:       info.Thumbnail,
		Description:     info.Description,
		Filesize:        size,
	}
	for _, f := range info.Formats {
		fsize := f.Filesize
		if fsize == 0 {
			fsize = int64(f.FilesizeA)
		}
		meta.Formats = append(meta.Formats, engine.Format{
			ID:         f.FormatID,
			Ext:        f.Ext,
			Resolution: f.Resolution,
			VideoCodec: f.VCodec,
			AudioCodec: f.ACodec,
			Filesize:   fsize,
		})
	}
	return meta, nil
}

// formatDuration renders seconds as mm:ss, or hh:mm:ss past one hour.
func formatDuration(seconds int64) string {
	if seconds <= 0 {
		return "00:00"
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}
