// Package postgres provides a PostgreSQL-backed progress store for
// multi-instance deployments. It uses the pgx driver through the
// standard database/sql interface.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/sqlc-dev/pqtype"

	"github.com/contestkit/arena/internal/domain"
)

// DB wraps a sql.DB connection to PostgreSQL.
type DB struct {
	*sql.DB
}

// Open connects to PostgreSQL and verifies connectivity.
func Open(ctx context.Context, url string) (*DB, error) {
	db, err := sql.Open("pgx", url)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &DB{DB: db}, nil
}

// Migrate creates the schema if it does not exist yet.
func (db *DB) Migrate(ctx context.Context) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS scores (
			contest_id TEXT             NOT NULL,
			user_id    TEXT             NOT NULL,
			milestone  INTEGER          NOT NULL,
			testcase   INTEGER          NOT NULL,
			score      DOUBLE PRECISION NOT NULL,
			updated_at TIMESTAMPTZ      NOT NULL DEFAULT now(),
			PRIMARY KEY (contest_id, user_id, milestone, testcase)
		);

		CREATE TABLE IF NOT EXISTS submissions (
			id         BIGSERIAL PRIMARY KEY,
			contest_id TEXT             NOT NULL,
			user_id    TEXT             NOT NULL,
			milestone  INTEGER          NOT NULL,
			testcase   INTEGER          NOT NULL,
			score      DOUBLE PRECISION NOT NULL,
			breakdown  JSONB,
			created_at TIMESTAMPTZ      NOT NULL DEFAULT now()
		);

		CREATE INDEX IF NOT EXISTS idx_submissions_contest_user
			ON submissions (contest_id, user_id);
	`)
	if err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// ProgressStore implements progress persistence backed by PostgreSQL.
type ProgressStore struct {
	db *DB
}

// NewProgressStore creates a new PostgreSQL-backed progress store.
func NewProgressStore(db *DB) *ProgressStore {
	return &ProgressStore{db: db}
}

// Snapshot returns the user's full score map for a contest.
func (s *ProgressStore) Snapshot(ctx context.Context, contestID, userID string) (domain.ProgressSnapshot, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT milestone, testcase, score
		FROM scores
		WHERE contest_id = $1 AND user_id = $2`,
		contestID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query scores: %w", err)
	}
	defer rows.Close()

	snap := domain.ProgressSnapshot{}
	for rows.Next() {
		var milestone, testcase int
		var score float64
		if err := rows.Scan(&milestone, &testcase, &score); err != nil {
			return nil, fmt.Errorf("scan score row: %w", err)
		}
		if snap[milestone] == nil {
			snap[milestone] = make(map[int]float64)
		}
		snap[milestone][testcase] = score
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate score rows: %w", err)
	}
	return snap, nil
}

// RecordScore appends a submission history row and upserts the best
// score for the slot, then returns the updated snapshot.
func (s *ProgressStore) RecordScore(ctx context.Context, rec domain.ScoreRecord) (domain.ProgressSnapshot, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	breakdown := pqtype.NullRawMessage{RawMessage: rec.Breakdown, Valid: len(rec.Breakdown) > 0}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO submissions (contest_id, user_id, milestone, testcase, score, breakdown)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		rec.ContestID, rec.UserID, rec.Milestone, rec.TestCase, rec.Score, breakdown,
	)
	if err != nil {
		return nil, fmt.Errorf("insert submission: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO scores (contest_id, user_id, milestone, testcase, score)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (contest_id, user_id, milestone, testcase) DO UPDATE SET
			score = GREATEST(scores.score, EXCLUDED.score),
			updated_at = now()`,
		rec.ContestID, rec.UserID, rec.Milestone, rec.TestCase, rec.Score,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert score: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	return s.Snapshot(ctx, rec.ContestID, rec.UserID)
}

// Submissions returns the grading history for one test case, newest first.
func (s *ProgressStore) Submissions(ctx context.Context, contestID, userID string, milestone, testcase int) ([]domain.ScoreRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT contest_id, user_id, milestone, testcase, score, breakdown
		FROM submissions
		WHERE contest_id = $1 AND user_id = $2 AND milestone = $3 AND testcase = $4
		ORDER BY id DESC`,
		contestID, userID, milestone, testcase,
	)
	if err != nil {
		return nil, fmt.Errorf("query submissions: %w", err)
	}
	defer rows.Close()

	var recs []domain.ScoreRecord
	for rows.Next() {
		var rec domain.ScoreRecord
		var breakdown pqtype.NullRawMessage
		if err := rows.Scan(&rec.ContestID, &rec.UserID, &rec.Milestone, &rec.TestCase, &rec.Score, &breakdown); err != nil {
			return nil, fmt.Errorf("scan submission row: %w", err)
		}
		if breakdown.Valid {
			rec.Breakdown = breakdown.RawMessage
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate submission rows: %w", err)
	}
	return recs, nil
}
