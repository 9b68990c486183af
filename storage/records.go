package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"tinygen/model"
)

// Analysis statuses.
const (
	StatusRunning   = "running"
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

// ErrNotFound is returned when no record has the requested ID.
var ErrNotFound = errors.New("analysis record not found")

// Record is the persisted outcome of one analysis request.
type Record struct {
	ID         string          `json:"id"`
	RepoURL    string          `json:"repoUrl"`
	Prompt     string          `json:"prompt"`
	Model      string          `json:"model"`
	Status     string          `json:"status"`
	Diff       string          `json:"diff,omitempty"`
	Error      string          `json:"error,omitempty"`
	History    []model.Message `json:"history,omitempty"`
	Replies    []string        `json:"replies,omitempty"`
	CreatedAt  time.Time       `json:"createdAt"`
	FinishedAt time.Time       `json:"finishedAt,omitzero"`
}

// RecordMetadata is a lightweight version of Record for listing.
type RecordMetadata struct {
	ID         string    `json:"id"`
	RepoURL    string    `json:"repoUrl"`
	Model      string    `json:"model"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"createdAt"`
	FinishedAt time.Time `json:"finishedAt,omitzero"`
}

// RecordStorage persists analysis records in sqlite.
type RecordStorage struct {
	db *sql.DB
}

// NewRecordStorage opens (or creates) analyses.db in dataDir.
func NewRecordStorage(dataDir string) (*RecordStorage, error) {
	// 0700 - records contain prompts and repository contents
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	dbPath := filepath.Join(dataDir, "analyses.db")

	// Pragmas in the DSN apply to every pooled connection.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	storage := &RecordStorage{db: db}

	if err := storage.initialize(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return storage, nil
}

func (rs *RecordStorage) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS analyses (
		id TEXT PRIMARY KEY,
		repo_url TEXT NOT NULL,
		prompt TEXT NOT NULL,
		model TEXT NOT NULL,
		status TEXT NOT NULL,
		diff TEXT NOT NULL DEFAULT '',
		error TEXT NOT NULL DEFAULT '',
		history TEXT NOT NULL DEFAULT '[]',
		replies TEXT NOT NULL DEFAULT '[]',
		created_at TEXT NOT NULL,
		finished_at TEXT NOT NULL DEFAULT ''
	);
	CREATE INDEX IF NOT EXISTS idx_analyses_created_at ON analyses(created_at);
	`

	_, err := rs.db.Exec(schema)
	return err
}

// Close closes the database.
func (rs *RecordStorage) Close() error {
	return rs.db.Close()
}

// Create inserts a new record, assigning an ID and CreatedAt when unset.
func (rs *RecordStorage) Create(ctx context.Context, rec *Record) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	if rec.Status == "" {
		rec.Status = StatusRunning
	}

	history, replies, err := encodeTranscript(rec)
	if err != nil {
		return err
	}

	query := `
	INSERT INTO analyses (id, repo_url, prompt, model, status, diff, error, history, replies, created_at, finished_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = rs.db.ExecContext(ctx, query,
		rec.ID,
		rec.RepoURL,
		rec.Prompt,
		rec.Model,
		rec.Status,
		rec.Diff,
		rec.Error,
		history,
		replies,
		formatTime(rec.CreatedAt),
		formatTime(rec.FinishedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert analysis record: %w", err)
	}
	return nil
}

// Finish stores the final state of a record.
func (rs *RecordStorage) Finish(ctx context.Context, rec *Record) error {
	if rec.FinishedAt.IsZero() {
		rec.FinishedAt = time.Now()
	}

	history, replies, err := encodeTranscript(rec)
	if err != nil {
		return err
	}

	query := `
	UPDATE analyses
	SET status = ?, diff = ?, error = ?, history = ?, replies = ?, finished_at = ?
	WHERE id = ?
	`
	result, err := rs.db.ExecContext(ctx, query,
		rec.Status,
		rec.Diff,
		rec.Error,
		history,
		replies,
		formatTime(rec.FinishedAt),
		rec.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update analysis record: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// Load returns the record with the given ID.
func (rs *RecordStorage) Load(ctx context.Context, id string) (*Record, error) {
	query := `
	SELECT id, repo_url, prompt, model, status, diff, error, history, replies, created_at, finished_at
	FROM analyses
	WHERE id = ?
	`

	var rec Record
	var history, replies, createdAt, finishedAt string
	err := rs.db.QueryRowContext(ctx, query, id).Scan(
		&rec.ID,
		&rec.RepoURL,
		&rec.Prompt,
		&rec.Model,
		&rec.Status,
		&rec.Diff,
		&rec.Error,
		&history,
		&replies,
		&createdAt,
		&finishedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load analysis record: %w", err)
	}

	if err := json.Unmarshal([]byte(history), &rec.History); err != nil {
		return nil, fmt.Errorf("failed to decode history: %w", err)
	}
	if err := json.Unmarshal([]byte(replies), &rec.Replies); err != nil {
		return nil, fmt.Errorf("failed to decode replies: %w", err)
	}
	if rec.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if rec.FinishedAt, err = parseTime(finishedAt); err != nil {
		return nil, err
	}

	return &rec, nil
}

// List returns metadata for the most recent records, newest first.
func (rs *RecordStorage) List(ctx context.Context, limit int) ([]RecordMetadata, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
	SELECT id, repo_url, model, status, created_at, finished_at
	FROM analyses
	ORDER BY created_at DESC
	LIMIT ?
	`
	rows, err := rs.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list analysis records: %w", err)
	}
	defer rows.Close()

	records := []RecordMetadata{}
	for rows.Next() {
		var meta RecordMetadata
		var createdAt, finishedAt string
		if err := rows.Scan(&meta.ID, &meta.RepoURL, &meta.Model, &meta.Status, &createdAt, &finishedAt); err != nil {
			return nil, err
		}
		if meta.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		if meta.FinishedAt, err = parseTime(finishedAt); err != nil {
			return nil, err
		}
		records = append(records, meta)
	}

	return records, rows.Err()
}

func encodeTranscript(rec *Record) (string, string, error) {
	history := rec.History
	if history == nil {
		history = []model.Message{}
	}
	replies := rec.Replies
	if replies == nil {
		replies = []string{}
	}

	h, err := json.Marshal(history)
	if err != nil {
		return "", "", fmt.Errorf("failed to marshal history: %w", err)
	}
	r, err := json.Marshal(replies)
	if err != nil {
		return "", "", fmt.Errorf("failed to marshal replies: %w", err)
	}
	return string(h), string(r), nil
}

// Fixed-width UTC layout so ORDER BY on the text column is chronological.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	return t, nil
}
