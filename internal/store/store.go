package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/nguyentantai21042004/video-digest/internal/models"
)

// ErrNotFound is returned by GetRun for an unknown ID.
var ErrNotFound = errors.New("run not found")

const schema = `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		reference TEXT NOT NULL,
		videoId TEXT NOT NULL,
		videoUrl TEXT NOT NULL,
		duration REAL NOT NULL,
		provider TEXT NOT NULL,
		model TEXT NOT NULL,
		document TEXT NOT NULL,
		chunkCount INTEGER NOT NULL,
		successfulChunks INTEGER NOT NULL,
		fallback INTEGER NOT NULL,
		elapsedMs INTEGER NOT NULL,
		createdAt REAL NOT NULL
	);

	CREATE TABLE IF NOT EXISTS chunk_summaries (
		runId TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		sequenceId INTEGER NOT NULL,
		startTimestamp TEXT NOT NULL,
		endTimestamp TEXT NOT NULL,
		summary TEXT NOT NULL,
		succeeded INTEGER NOT NULL,
		PRIMARY KEY (runId, sequenceId)
	);

	CREATE INDEX IF NOT EXISTS idx_runs_createdAt ON runs(createdAt);
`

// Store provides read/write access to the run history database.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and applies the schema.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create store dir: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// Watch mode saves from several goroutines; SQLite takes one writer.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveRun inserts a run and its chunk summaries. A missing ID or CreatedAt is filled in.
func (s *Store) SaveRun(ctx context.Context, run *Run) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	r := run.Result
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO runs (id, reference, videoId, videoUrl, duration, provider, model, document,
			chunkCount, successfulChunks, fallback, elapsedMs, createdAt)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.Reference, r.VideoID, r.VideoURL, r.Duration, run.Provider, run.Model, r.Document,
		r.ChunkCount, r.SuccessfulChunks, boolToInt(r.Fallback), run.Elapsed.Milliseconds(),
		unixFromTime(run.CreatedAt)); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for _, cs := range run.Summaries {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO chunk_summaries (runId, sequenceId, startTimestamp, endTimestamp, summary, succeeded)
			VALUES (?, ?, ?, ?, ?, ?)
		`, run.ID, cs.SequenceID, cs.StartTimestamp, cs.EndTimestamp, cs.Text, boolToInt(cs.Succeeded)); err != nil {
			return fmt.Errorf("insert chunk summary %d: %w", cs.SequenceID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run: %w", err)
	}
	return nil
}

const runColumns = `id, reference, videoId, videoUrl, duration, provider, model, document,
	chunkCount, successfulChunks, fallback, elapsedMs, createdAt`

// GetRun returns a run with its chunk summaries in sequence order.
func (s *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT sequenceId, startTimestamp, endTimestamp, summary, succeeded
		FROM chunk_summaries
		WHERE runId = ?
		ORDER BY sequenceId ASC
	`, id)
	if err != nil {
		return nil, fmt.Errorf("query chunk summaries: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var cs models.ChunkSummary
		var succeeded int
		if err := rows.Scan(&cs.SequenceID, &cs.StartTimestamp, &cs.EndTimestamp, &cs.Text, &succeeded); err != nil {
			return nil, fmt.Errorf("scan chunk summary: %w", err)
		}
		cs.Succeeded = succeeded != 0
		run.Summaries = append(run.Summaries, cs)
	}
	return run, rows.Err()
}

// ListRuns returns the most recent runs first, without chunk summaries.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+runColumns+`
		FROM runs
		ORDER BY createdAt DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*Run, error) {
	var (
		run       Run
		fallback  int
		elapsedMs int64
		createdAt float64
	)
	r := &run.Result
	if err := row.Scan(&run.ID, &run.Reference, &r.VideoID, &r.VideoURL, &r.Duration, &run.Provider,
		&run.Model, &r.Document, &r.ChunkCount, &r.SuccessfulChunks, &fallback, &elapsedMs, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan run: %w", err)
	}
	r.Fallback = fallback != 0
	run.Elapsed = time.Duration(elapsedMs) * time.Millisecond
	run.CreatedAt = timeFromUnix(createdAt)
	return &run, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func unixFromTime(t time.Time) float64 {
	return float64(t.UnixNano()) / 1e9
}

func timeFromUnix(ts float64) time.Time {
	sec := int64(ts)
	nsec := int64((ts - float64(sec)) * 1e9)
	return time.Unix(sec, nsec)
}
