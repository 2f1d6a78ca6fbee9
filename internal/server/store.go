package server

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// JobRecord is the persisted form of a job: enough to answer status polls
// and serve the transcript JSON after a restart.
type JobRecord struct {
	ID         string
	Status     JobStatus
	Filename   string
	Instrument string
	Error      string
	Transcript string // transcript JSON, empty until done
	WorkDir    string
	CreatedAt  time.Time
}

// Store persists job state in a sqlite database
type Store struct {
	db *sql.DB
}

// OpenStore creates or opens the job database under dataDir
func OpenStore(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	db, err := sql.Open("sqlite", filepath.Join(dataDir, "jobs.db"))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	createTableSQL := `
	CREATE TABLE IF NOT EXISTS jobs (
		id TEXT PRIMARY KEY,
		status TEXT NOT NULL,
		filename TEXT,
		instrument TEXT,
		error TEXT,
		transcript TEXT,
		work_dir TEXT,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_jobs_created_at ON jobs(created_at);
	`
	if _, err := db.Exec(createTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("create jobs table: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database
func (s *Store) Close() error {
	return s.db.Close()
}

// Put inserts or replaces a job record
func (s *Store) Put(rec *JobRecord) error {
	_, err := s.db.Exec(`
		INSERT INTO jobs (id, status, filename, instrument, error, transcript, work_dir, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			error = excluded.error,
			transcript = excluded.transcript`,
		rec.ID, string(rec.Status), rec.Filename, rec.Instrument,
		rec.Error, rec.Transcript, rec.WorkDir, rec.CreatedAt.Unix())
	if err != nil {
		return fmt.Errorf("put job %s: %w", rec.ID, err)
	}
	return nil
}

// Get returns a job record, or nil when the id is unknown
func (s *Store) Get(id string) (*JobRecord, error) {
	row := s.db.QueryRow(`
		SELECT id, status, filename, instrument, error, transcript, work_dir, created_at
		FROM jobs WHERE id = ?`, id)

	var rec JobRecord
	var status string
	var created int64
	err := row.Scan(&rec.ID, &status, &rec.Filename, &rec.Instrument,
		&rec.Error, &rec.Transcript, &rec.WorkDir, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get job %s: %w", id, err)
	}
	rec.Status = JobStatus(status)
	rec.CreatedAt = time.Unix(created, 0)
	return &rec, nil
}

// DeleteOlderThan removes finished jobs created before the cutoff and
// returns how many were deleted.
func (s *Store) DeleteOlderThan(cutoff time.Time) (int64, error) {
	res, err := s.db.Exec(`
		DELETE FROM jobs WHERE created_at < ? AND status IN (?, ?)`,
		cutoff.Unix(), string(StatusDone), string(StatusError))
	if err != nil {
		return 0, fmt.Errorf("prune jobs: %w", err)
	}
	return res.RowsAffected()
}
