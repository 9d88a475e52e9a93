package main

import (
	"log"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/anniexxx9999/download-youtube/internal/api"
	"github.com/anniexxx9999/download-youtube/internal/config"
	"github.com/anniexxx9999/download-youtube/internal/db"
	"github.com/anniexxx9999/download-youtube/internal/engine/ytdlp"
	"github.com/anniexxx9999/download-youtube/internal/queue"
)

func main() {
	log.Printf("ytqd starting")
	cfg := config.Load()

	if !cfg.Restricted {
		if err := os.MkdirAll(cfg.DownloadDir, 0o755); err != nil {
			log.Fatalf("create download dir: %v", err)
		}
	}

	var store queue.Store
	if cfg.DBPath != "" {
		conn, err := db.Open(cfg.DBPath)
		if err != nil {
			log.Fatalf("db open: %v", err)
		}
		defer conn.Close()
		store = queue.NewSQLStore(conn)
		log.Printf("store=sqlite path=%q", cfg.DBPath)
	} else {
		store = queue.NewMemoryStore()
		log.Printf("store=memory")
	}

	service := queue.NewService(store, ytdlp.New(), queue.Options{
		DownloadDir: cfg.DownloadDir,
		MaxFilesize: cfg.MaxFilesize,
		Concurrency: cfg.Concurrency,
	})

	server := &api.Server{Queue: service, Restricted: cfg.Restricted}
	httpServer := &http.Server{
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ln, err := net.Listen("tcp", cfg.ListenAddr)
	if err != nil {
		log.Fatalf("listen: %v", err)
	}
	log.Printf("ytqd listening on %s restricted=%t concurrency=%d", cfg.ListenAddr, cfg.Restricted, cfg.Concurrency)
	if err := httpServer.Serve(ln); err != nil {
		log.Fatalf("http serve: %v", err)
	}
}
