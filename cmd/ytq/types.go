package main

import "time"

// Mirrors of the API's JSON payloads. Kept local so the CLI only depends on
// the wire contract.

type jobView struct {
	JobID           string       `json:"jobId"`
	URL             string       `json:"url"`
	Status          string       `json:"status"`
	ProgressPercent float64      `json:"progress"`
	DownloadedBytes int64        `json:"downloadedBytes"`
	TotalBytes      int64        `json:"totalBytes"`
	Speed           float64      `json:"speed"`
	ETASeconds      int64        `json:"etaSeconds"`
	Metadata        metadataView `json:"metadata"`
	LocalPath       string       `json:"localPath"`
	ErrorMessage    string       `json:"errorMessage"`
	CreatedAt       time.Time    `json:"createdAt"`
	CompletedAt     *time.Time   `json:"completedAt"`
}

type metadataView struct {
	ID             string       `json:"id"`
	Title          string       `json:"title"`
	Uploader       string       `json:"uploader"`
	Duration       int64        `json:"duration"`
	DurationString string       `json:"durationString"`
	Thumbnail      string       `json:"thumbnail"`
	Description    string       `json:"description"`
	Filesize       int64        `json:"filesize"`
	Formats        []formatView `json:"formats"`
}

type formatView struct {
	FormatID   string `json:"formatId"`
	Ext        string `json:"ext"`
	Resolution string `json:"resolution"`
	VCodec     string `json:"vcodec"`
	ACodec     string `json:"acodec"`
	Filesize   int64  `json:"filesize"`
}

type completedView struct {
	JobID       string    `json:"jobId"`
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	LocalPath   string    `json:"localPath"`
	FileSize    string    `json:"fileSize"`
	CompletedAt time.Time `json:"completedAt"`
}
