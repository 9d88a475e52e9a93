// Package config loads daemon configuration from the environment, with an
// optional .env file for local development.
package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// 50 MiB, matching the default cap on hosted deployments.
const DefaultMaxFilesize = 50 * 1024 * 1024

type Config struct {
	ListenAddr  string
	DownloadDir string
	// DBPath selects the sqlite store; empty keeps jobs in memory.
	DBPath      string
	MaxFilesize int64
	Concurrency int
	// Restricted disables download execution (hosted environments with
	// no writable disk); probing still works.
	Restricted bool
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present; real environment variables win.
func Load() Config {
	_ = godotenv.Load()
	return Config{
		ListenAddr:  getenv("YTQ_HTTP_ADDR", "0.0.0.0:8080"),
		DownloadDir: getenv("YTQ_DOWNLOAD_DIR", filepath.Join(os.TempDir(), "downloads")),
		DBPath:      getenv("YTQ_DB", ""),
		MaxFilesize: getenvInt64("YTQ_MAX_FILESIZE", DefaultMaxFilesize),
		Concurrency: getenvInt("YTQ_CONCURRENCY", 2),
		Restricted:  getenvBool("YTQ_RESTRICTED", false),
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}

func getenvInt64(key string, def int64) int64 {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			return parsed
		}
	}
	return def
}

func getenvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}
	return def
}
