// Package storage keeps a SQLite mirror of the raw job feed so reports
// can be served when the upstream API is unreachable. It stores feed
// rows only, never derived aggregates.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"clientledger/internal/core"
	"clientledger/internal/feed"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db *sql.DB
}

var _ feed.JobSource = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// ReplaceUserJobs swaps a user's whole job collection in one
// transaction. Readers on other connections see either the old mirror
// or the new one, never a mix — refresh is full replacement.
func (r *SQLiteRepository) ReplaceUserJobs(ctx context.Context, userID string, jobs []core.Job) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM transactions WHERE job_seq IN (SELECT seq FROM jobs WHERE user_id = ?)`,
		userID); err != nil {
		return fmt.Errorf("clear transactions: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM jobs WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("clear jobs: %w", err)
	}

	for _, job := range jobs {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO jobs (id, user_id, name, client) VALUES (?, ?, ?, ?)`,
			job.ID, userID, job.Name, job.Client)
		if err != nil {
			return fmt.Errorf("insert job %q: %w", job.Name, err)
		}
		jobSeq, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("job insert id: %w", err)
		}

		for _, t := range job.Transactions {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO transactions (job_seq, id, date, type, amount_cents, note)
				 VALUES (?, ?, ?, ?, ?, ?)`,
				jobSeq, t.ID, encodeDate(t.Date), string(t.Type), t.Amount.Cents, t.Note); err != nil {
				return fmt.Errorf("insert transaction for job %q: %w", job.Name, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace: %w", err)
	}

	slog.InfoContext(ctx, "Replaced user jobs in mirror",
		"user_id", userID,
		"jobs", len(jobs))
	return nil
}

// ListJobs implements feed.JobSource, reconstructing jobs in their
// original feed order (insertion order of the last replacement).
func (r *SQLiteRepository) ListJobs(ctx context.Context, userID string) ([]core.Job, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT seq, id, name, client FROM jobs WHERE user_id = ? ORDER BY seq`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("query jobs: %w", err)
	}
	defer rows.Close()

	var jobs []core.Job
	var seqs []int64
	for rows.Next() {
		var seq int64
		var job core.Job
		if err := rows.Scan(&seq, &job.ID, &job.Name, &job.Client); err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		jobs = append(jobs, job)
		seqs = append(seqs, seq)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate jobs: %w", err)
	}

	for i, seq := range seqs {
		txs, err := r.listTransactions(ctx, seq)
		if err != nil {
			return nil, err
		}
		jobs[i].Transactions = txs
	}
	return jobs, nil
}

func (r *SQLiteRepository) listTransactions(ctx context.Context, jobSeq int64) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, date, type, amount_cents, note FROM transactions WHERE job_seq = ? ORDER BY seq`,
		jobSeq)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var txs []core.Transaction
	for rows.Next() {
		var t core.Transaction
		var date, typ string
		if err := rows.Scan(&t.ID, &date, &typ, &t.Amount.Cents, &t.Note); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		t.Date = decodeDate(date)
		t.Type = core.ParseTxType(typ)
		txs = append(txs, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return txs, nil
}

// CountUserJobs reports how many jobs the mirror holds for a user.
func (r *SQLiteRepository) CountUserJobs(ctx context.Context, userID string) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM jobs WHERE user_id = ?`, userID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count jobs: %w", err)
	}
	return n, nil
}

func encodeDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

func decodeDate(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
