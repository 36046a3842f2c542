package db

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

var ErrNotFound = errors.New("run not found")

// Run is the audit record of one invocation.
type Run struct {
	ID          string
	URL         string
	VideoID     string
	Destination string
	Status      Status
	Error       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Store records runs in a sqlite database. It is write-mostly: nothing
// here is consulted to short-circuit a fetch.
type Store struct {
	db *sql.DB
}

func Open(dbPath string) (*Store, error) {
	logrus.WithField("path", dbPath).Debug("Opening history database")

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return nil, errors.Wrap(err, "error creating directory for database")
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, errors.Wrap(err, "error opening database")
	}
	db.SetMaxOpenConns(1)

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS runs (
                    id TEXT PRIMARY KEY,
                    url TEXT NOT NULL,
                    video_id TEXT NOT NULL DEFAULT '',
                    destination TEXT NOT NULL DEFAULT '',
                    status TEXT NOT NULL DEFAULT 'pending',
                    error TEXT NOT NULL DEFAULT '',
                    created_at DATETIME NOT NULL,
                    updated_at DATETIME NOT NULL
)`)
	if err != nil {
		db.Close()
		return nil, errors.Wrap(err, "error creating table")
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Begin inserts a pending run for url and returns its id.
func (s *Store) Begin(ctx context.Context, url string) (string, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO runs (id, url, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
		id, url, StatusPending, now, now)
	if err != nil {
		return "", errors.Wrap(err, "error inserting run")
	}
	return id, nil
}

func (s *Store) SetVideoID(ctx context.Context, id, videoID string) error {
	return s.update(ctx, id, "UPDATE runs SET video_id = ?, updated_at = ? WHERE id = ?", videoID)
}

func (s *Store) SetStatus(ctx context.Context, id string, status Status) error {
	return s.update(ctx, id, "UPDATE runs SET status = ?, updated_at = ? WHERE id = ?", status)
}

func (s *Store) Complete(ctx context.Context, id, destination string) error {
	return s.update(ctx, id,
		"UPDATE runs SET status = 'completed', error = '', destination = ?, updated_at = ? WHERE id = ?",
		destination)
}

func (s *Store) Fail(ctx context.Context, id, message string) error {
	return s.update(ctx, id,
		"UPDATE runs SET status = 'failed', error = ?, updated_at = ? WHERE id = ?",
		message)
}

func (s *Store) update(ctx context.Context, id, query string, value interface{}) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "error beginning transaction")
	}

	res, err := tx.ExecContext(ctx, query, value, time.Now().UTC(), id)
	if err != nil {
		tx.Rollback()
		return errors.Wrap(err, "error executing statement")
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		tx.Rollback()
		return ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "error committing transaction")
	}
	return nil
}

const selectRun = "SELECT id, url, video_id, destination, status, error, created_at, updated_at FROM runs"

func (s *Store) Get(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, selectRun+" WHERE id = ?", id)

	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "error querying database")
	}
	return run, nil
}

// Recent returns up to limit runs, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]*Run, error) {
	rows, err := s.db.QueryContext(ctx, selectRun+" ORDER BY created_at DESC, rowid DESC LIMIT ?", limit)
	if err != nil {
		return nil, errors.Wrap(err, "error querying database")
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, errors.Wrap(err, "error scanning run")
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row scanner) (*Run, error) {
	var (
		run    Run
		status string
	)
	err := row.Scan(&run.ID, &run.URL, &run.VideoID, &run.Destination, &status,
		&run.Error, &run.CreatedAt, &run.UpdatedAt)
	if err != nil {
		return nil, err
	}
	run.Status = Status(status)
	return &run, nil
}
