package main

import (
	"flag"
	"fmt"
	"os"
	"time"
)

const defaultAPI = "http://127.0.0.1:8080"

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}
	switch os.Args[1] {
	case "add":
		cmdAdd(os.Args[2:])
	case "info":
		cmdInfo(os.Args[2:])
	case "status":
		cmdStatus(os.Args[2:])
	case "progress":
		cmdProgress(os.Args[2:])
	case "pause", "resume":
		cmdPause(os.Args[2:])
	case "remove":
		cmdRemove(os.Args[2:])
	case "files":
		cmdFiles(os.Args[2:])
	case "help":
		usage()
	default:
		usage()
	}
}

func usage() {
	fmt.Println("ytq - video download queue CLI")
	fmt.Println("")
	fmt.Println("Usage:")
	fmt.Println("  ytq add <url> [--format <selector>]")
	fmt.Println("  ytq info <url>")
	fmt.Println("  ytq status [--watch] [--interval 1]")
	fmt.Println("  ytq progress <job_id>")
	fmt.Println("  ytq pause <job_id>      (toggles pause/resume)")
	fmt.Println("  ytq resume <job_id>     (same toggle)")
	fmt.Println("  ytq remove <job_id>")
	fmt.Println("  ytq files")
	fmt.Println("")
	fmt.Println("Env:")
	fmt.Println("  YTQ_API=" + defaultAPI)
}

func apiBase() string {
	if v := os.Getenv("YTQ_API"); v != "" {
		return v
	}
	return defaultAPI
}

func cmdAdd(args []string) {
	fs := flag.NewFlagSet("add", flag.ExitOnError)
	format := fs.String("format", "", "format selector passed to the engine")
	_ = fs.Parse(args)
	if fs.NArg() != 1 {
		fatal("add requires exactly one url")
	}
	var resp struct {
		JobID  string `json:"jobId"`
		Status string `json:"status"`
	}
	payload := map[string]any{"url": fs.Arg(0), "formatSelector": *format}
	if err := postJSON(apiBase()+"/download", payload, &resp); err != nil {
		fatal(err.Error())
	}
	fmt.Printf("job %s %s\n", resp.JobID, resp.Status)
}

func cmdInfo(args []string) {
	fs := flag.NewFlagSet("info", flag.ExitOnError)
	_ = fs.Parse(args)
	if fs.NArg() != 1 {
		fatal("info requires exactly one url")
	}
	var resp struct {
		Metadata metadataView `json:"metadata"`
	}
	payload := map[string]any{"url": fs.Arg(0), "getInfoOnly": true}
	if err := postJSON(apiBase()+"/download", payload, &resp); err != nil {
		fatal(err.Error())
	}
	printMetadata(resp.Metadata)
}

func cmdStatus(args []string) {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	watch := fs.Bool("watch", false, "poll until no jobs are active")
	interval := fs.Int("interval", 1, "poll interval in seconds")
	_ = fs.Parse(args)
	for {
		var jobs []jobView
		if err := getJSON(apiBase()+"/status", &jobs); err != nil {
			fatal(err.Error())
		}
		printJobs(jobs)
		if !*watch || !hasActiveJobs(jobs) {
			return
		}
		time.Sleep(time.Duration(*interval) * time.Second)
	}
}

func cmdProgress(args []string) {
	if len(args) != 1 {
		fatal("progress requires exactly one job id")
	}
	var job jobView
	if err := getJSON(apiBase()+"/progress/"+args[0], &job); err != nil {
		fatal(err.Error())
	}
	printJobs([]jobView{job})
}

func cmdPause(args []string) {
	if len(args) != 1 {
		fatal("pause requires exactly one job id")
	}
	var resp struct {
		Status string `json:"status"`
	}
	if err := postJSON(apiBase()+"/pause/"+args[0], map[string]any{}, &resp); err != nil {
		fatal(err.Error())
	}
	fmt.Printf("job %s %s\n", args[0], resp.Status)
}

func cmdRemove(args []string) {
	if len(args) != 1 {
		fatal("remove requires exactly one job id")
	}
	var resp struct {
		Status string `json:"status"`
	}
	if err := deleteJSON(apiBase()+"/download/"+args[0], &resp); err != nil {
		fatal(err.Error())
	}
	fmt.Printf("job %s %s\n", args[0], resp.Status)
}

func cmdFiles(args []string) {
	var resp struct {
		Downloads []completedView `json:"downloads"`
	}
	if err := getJSON(apiBase()+"/", &resp); err != nil {
		fatal(err.Error())
	}
	printCompleted(resp.Downloads)
}

func fatal(msg string) {
	fmt.Fprintln(os.Stderr, "error: "+msg)
	os.Exit(1)
}
