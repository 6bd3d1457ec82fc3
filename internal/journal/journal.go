package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"subfuse/internal/pipeline"
)

// Store persists terminal outcomes backed by SQLite. It is telemetry only:
// nothing in the processing path reads it back.
type Store struct {
	db   *sql.DB
	path string
}

// Entry is one recorded terminal outcome.
type Entry struct {
	ID              int64
	RequestID       string
	Input           string
	Outcome         string
	FailedStage     string
	Language        string
	SegmentCount    int
	DurationSeconds float64
	OutputSizeBytes int64
	TotalSeconds    float64
	Timings         []StageSeconds
	Message         string
	CreatedAt       time.Time
}

// StageSeconds is one stage's elapsed wall time in seconds.
type StageSeconds struct {
	Stage   string  `json:"stage"`
	Seconds float64 `json:"seconds"`
}

const schema = `
CREATE TABLE IF NOT EXISTS journal_entries (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    request_id TEXT NOT NULL,
    input TEXT NOT NULL,
    outcome TEXT NOT NULL,
    failed_stage TEXT NOT NULL DEFAULT '',
    language TEXT NOT NULL DEFAULT '',
    segment_count INTEGER NOT NULL DEFAULT 0,
    duration_seconds REAL NOT NULL DEFAULT 0,
    output_size_bytes INTEGER NOT NULL DEFAULT 0,
    total_seconds REAL NOT NULL DEFAULT 0,
    timings_json TEXT NOT NULL DEFAULT '[]',
    message TEXT NOT NULL DEFAULT '',
    created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_journal_created_at ON journal_entries(created_at);
`

// Open initializes or connects to the journal database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure journal directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply journal schema: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// NewEntry converts a pipeline result into a journal entry.
func NewEntry(requestID, input string, result pipeline.Result) Entry {
	timings := make([]StageSeconds, 0, len(result.Timings))
	for _, t := range result.Timings {
		timings = append(timings, StageSeconds{Stage: t.Stage, Seconds: t.Elapsed.Seconds()})
	}
	return Entry{
		RequestID:       requestID,
		Input:           input,
		Outcome:         string(result.Outcome),
		FailedStage:     result.FailedStage,
		Language:        result.Language,
		SegmentCount:    result.SegmentCount,
		DurationSeconds: result.DurationSeconds,
		OutputSizeBytes: result.OutputSizeBytes,
		TotalSeconds:    result.Total.Seconds(),
		Timings:         timings,
		Message:         result.Message,
	}
}

// Record inserts one terminal outcome.
func (s *Store) Record(ctx context.Context, entry Entry) error {
	timingsJSON, err := json.Marshal(entry.Timings)
	if err != nil {
		return fmt.Errorf("marshal timings: %w", err)
	}
	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err = s.db.ExecContext(
		ctx,
		`INSERT INTO journal_entries (
            request_id, input, outcome, failed_stage, language, segment_count,
            duration_seconds, output_size_bytes, total_seconds, timings_json,
            message, created_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.RequestID,
		entry.Input,
		entry.Outcome,
		entry.FailedStage,
		entry.Language,
		entry.SegmentCount,
		entry.DurationSeconds,
		entry.OutputSizeBytes,
		entry.TotalSeconds,
		string(timingsJSON),
		entry.Message,
		createdAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert journal entry: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, request_id, input, outcome, failed_stage, language,
            segment_count, duration_seconds, output_size_bytes, total_seconds,
            timings_json, message, created_at
         FROM journal_entries
         ORDER BY id DESC
         LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query journal: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var entry Entry
		var timingsJSON, createdAt string
		if err := rows.Scan(
			&entry.ID,
			&entry.RequestID,
			&entry.Input,
			&entry.Outcome,
			&entry.FailedStage,
			&entry.Language,
			&entry.SegmentCount,
			&entry.DurationSeconds,
			&entry.OutputSizeBytes,
			&entry.TotalSeconds,
			&timingsJSON,
			&entry.Message,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("scan journal entry: %w", err)
		}
		if err := json.Unmarshal([]byte(timingsJSON), &entry.Timings); err != nil {
			return nil, fmt.Errorf("decode timings: %w", err)
		}
		if parsed, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
			entry.CreatedAt = parsed
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
