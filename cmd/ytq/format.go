package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
)

func printJobs(jobs []jobView) {
	if len(jobs) == 0 {
		fmt.Println("No jobs.")
		return
	}
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTATUS\tPROGRESS\tSPEED\tETA\tTITLE")
	for _, j := range jobs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			shortID(j.JobID), j.Status, formatProgress(j), formatSpeed(j), formatETA(j), displayTitle(j))
		if j.ErrorMessage != "" {
			fmt.Fprintf(tw, " \t \t \t \t \t  error: %s\n", j.ErrorMessage)
		}
	}
	_ = tw.Flush()
}

func printCompleted(downloads []completedView) {
	if len(downloads) == 0 {
		fmt.Println("No completed downloads.")
		return
	}
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSIZE\tCOMPLETED\tTITLE\tPATH")
	for _, d := range downloads {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			shortID(d.JobID), d.FileSize, d.CompletedAt.Local().Format(time.DateTime), d.Title, d.LocalPath)
	}
	_ = tw.Flush()
}

func printMetadata(m metadataView) {
	fmt.Printf("title:    %s\n", m.Title)
	fmt.Printf("uploader: %s\n", m.Uploader)
	fmt.Printf("duration: %s\n", m.DurationString)
	if m.Filesize > 0 {
		fmt.Printf("size:     %s\n", humanize.Bytes(uint64(m.Filesize)))
	}
	if len(m.Formats) == 0 {
		return
	}
	fmt.Println("formats:")
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "  ID\tEXT\tRESOLUTION\tCODECS\tSIZE")
	for _, f := range m.Formats {
		size := "-"
		if f.Filesize > 0 {
			size = humanize.Bytes(uint64(f.Filesize))
		}
		fmt.Fprintf(tw, "  %s\t%s\t%s\t%s/%s\t%s\n", f.FormatID, f.Ext, f.Resolution, f.VCodec, f.ACodec, size)
	}
	_ = tw.Flush()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func displayTitle(j jobView) string {
	if j.Metadata.Title != "" {
		return j.Metadata.Title
	}
	if len(j.URL) > 64 {
		return j.URL[:61] + "..."
	}
	return j.URL
}

func formatProgress(j jobView) string {
	if j.TotalBytes <= 0 {
		return fmt.Sprintf("%.1f%%", j.ProgressPercent)
	}
	return fmt.Sprintf("%s / %s (%.1f%%)",
		humanize.Bytes(uint64(j.DownloadedBytes)), humanize.Bytes(uint64(j.TotalBytes)), j.ProgressPercent)
}

func formatSpeed(j jobView) string {
	if j.Status != "Downloading" || j.Speed <= 0 {
		return "-"
	}
	return fmt.Sprintf("%s/s", humanize.Bytes(uint64(j.Speed)))
}

func formatETA(j jobView) string {
	if j.Status != "Downloading" || j.ETASeconds <= 0 {
		return "-"
	}
	d := time.Duration(j.ETASeconds) * time.Second
	seconds := int64(d.Seconds())
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%dh%02dm", h, m)
	}
	if m > 0 {
		return fmt.Sprintf("%dm%02ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}

func hasActiveJobs(jobs []jobView) bool {
	for _, j := range jobs {
		switch j.Status {
		case "Queued", "Downloading":
			return true
		}
	}
	return false
}
