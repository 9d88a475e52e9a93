package queue

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/anniexxx9999/download-youtube/internal/engine"
)

// SQLStore persists jobs in SQLite. Metadata is immutable after probe, so it
// is stored as a JSON document rather than columns.
type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

const jobColumns = `id, url, format_selector, status, progress, downloaded_bytes, total_bytes, speed, eta_seconds, metadata, local_path, error, created_at, completed_at`

func (s *SQLStore) Create(ctx context.Context, job *Job) error {
	meta, err := json.Marshal(job.Metadata)
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}
	var completed any
	if !job.CompletedAt.IsZero() {
		completed = job.CompletedAt.UTC().Format(time.RFC3339Nano)
	}
	_, err = s.db.ExecContext(ctx, `
INSERT INTO jobs (`+jobColumns+`)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`, job.ID, job.URL, job.FormatSelector, string(job.Status), job.ProgressPercent,
		job.DownloadedBytes, job.TotalBytes, job.Speed, job.ETASeconds,
		string(meta), job.LocalPath, job.ErrorMessage,
		job.CreatedAt.UTC().Format(time.RFC3339Nano), completed)
	if err != nil {
		// The id is a fresh uuid; a collision means the caller reused one.
		if isUniqueViolation(err) {
			return ErrDuplicateID
		}
		return err
	}
	return nil
}

func (s *SQLStore) Get(ctx context.Context, id string) (*Job, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = ?`, id)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return job, err
}

func (s *SQLStore) List(ctx context.Context) ([]*Job, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+jobColumns+` FROM jobs ORDER BY created_at DESC, rowid DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, job)
	}
	return out, rows.Err()
}

func (s *SQLStore) Update(ctx context.Context, id string, mutate func(*Job) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = ?`, id)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if err := mutate(job); err != nil {
		return err
	}
	job.ID = id

	var completed any
	if !job.CompletedAt.IsZero() {
		completed = job.CompletedAt.UTC().Format(time.RFC3339Nano)
	}
	_, err = tx.ExecContext(ctx, `
UPDATE jobs
SET status = ?, progress = ?, downloaded_bytes = ?, total_bytes = ?, speed = ?, eta_seconds = ?, local_path = ?, error = ?, completed_at = ?
WHERE id = ?
`, string(job.Status), job.ProgressPercent, job.DownloadedBytes, job.TotalBytes,
		job.Speed, job.ETASeconds, job.LocalPath, job.ErrorMessage, completed, id)
	if err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM jobs WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (*Job, error) {
	var j Job
	var status, meta, createdAt string
	var completedAt sql.NullString
	err := row.Scan(
		&j.ID, &j.URL, &j.FormatSelector, &status, &j.ProgressPercent,
		&j.DownloadedBytes, &j.TotalBytes, &j.Speed, &j.ETASeconds,
		&meta, &j.LocalPath, &j.ErrorMessage, &createdAt, &completedAt,
	)
	if err != nil {
		return nil, err
	}
	j.Status = Status(status)
	if meta != "" {
		var m engine.Metadata
		if err := json.Unmarshal([]byte(meta), &m); err != nil {
			return nil, fmt.Errorf("decode metadata for job %s: %w", j.ID, err)
		}
		j.Metadata = m
	}
	if t, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
		j.CreatedAt = t
	}
	if completedAt.Valid && completedAt.String != "" {
		if t, err := time.Parse(time.RFC3339Nano, completedAt.String); err == nil {
			j.CompletedAt = t
		}
	}
	return &j, nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	// modernc.org/sqlite reports constraint failures in the message.
	return strings.Contains(err.Error(), "constraint failed")
}

var _ Store = (*SQLStore)(nil)
