// Package history keeps a local ledger of print submissions so callers can
// correlate spooler job ids with what was actually sent and when.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Submission is one recorded print request. SubmissionID is assigned locally
// and stays stable even when the spooler recycles job ids.
type Submission struct {
	SubmissionID string
	Printer      string
	JobID        uint64
	JobName      string
	Kind         string // "raw", "file" or "image"
	Bytes        int64
	Pages        int
	SubmittedAt  time.Time
}

type Store struct {
	db      *sql.DB
	MaxRows int
}

func Open(ctx context.Context, dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", dbPath))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)

	s := &Store{db: db}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS submissions (
	submission_id TEXT PRIMARY KEY,
	printer       TEXT NOT NULL,
	job_id        INTEGER NOT NULL,
	job_name      TEXT NOT NULL,
	kind          TEXT NOT NULL,
	bytes         INTEGER NOT NULL,
	pages         INTEGER NOT NULL,
	submitted_at  INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_submissions_printer ON submissions(printer, submitted_at);
`)
	return err
}

func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("history store not initialized")
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// RecordSubmission inserts one ledger row and prunes the oldest rows past
// MaxRows. The generated submission id is returned.
func (s *Store) RecordSubmission(ctx context.Context, sub Submission) (string, error) {
	if sub.SubmissionID == "" {
		sub.SubmissionID = uuid.NewString()
	}
	if sub.SubmittedAt.IsZero() {
		sub.SubmittedAt = time.Now()
	}
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO submissions (submission_id, printer, job_id, job_name, kind, bytes, pages, submitted_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			sub.SubmissionID, sub.Printer, int64(sub.JobID), sub.JobName, sub.Kind,
			sub.Bytes, sub.Pages, sub.SubmittedAt.Unix())
		if err != nil {
			return err
		}
		if s.MaxRows > 0 {
			_, err = tx.ExecContext(ctx,
				`DELETE FROM submissions WHERE submission_id IN (
					SELECT submission_id FROM submissions
					ORDER BY submitted_at DESC, submission_id DESC
					LIMIT -1 OFFSET ?)`, s.MaxRows)
		}
		return err
	})
	if err != nil {
		return "", err
	}
	return sub.SubmissionID, nil
}

// ListSubmissions returns the newest rows for one printer, or for every
// printer when the name is empty.
func (s *Store) ListSubmissions(ctx context.Context, printer string, limit int) ([]Submission, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `SELECT submission_id, printer, job_id, job_name, kind, bytes, pages, submitted_at
	          FROM submissions`
	args := []any{}
	if printer != "" {
		query += ` WHERE printer = ?`
		args = append(args, printer)
	}
	query += ` ORDER BY submitted_at DESC, submission_id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Submission{}
	for rows.Next() {
		var sub Submission
		var jobID, submitted int64
		if err := rows.Scan(&sub.SubmissionID, &sub.Printer, &jobID, &sub.JobName,
			&sub.Kind, &sub.Bytes, &sub.Pages, &submitted); err != nil {
			return nil, err
		}
		sub.JobID = uint64(jobID)
		sub.SubmittedAt = time.Unix(submitted, 0)
		out = append(out, sub)
	}
	return out, rows.Err()
}
