package sqlite

import (
	"context"
	"fmt"

	"github.com/contestkit/arena/internal/domain"
)

// ProgressStore implements progress persistence backed by SQLite.
type ProgressStore struct {
	db *DB
}

// NewProgressStore creates a new SQLite-backed progress store.
func NewProgressStore(db *DB) *ProgressStore {
	return &ProgressStore{db: db}
}

// Snapshot returns the user's full score map for a contest.
func (s *ProgressStore) Snapshot(ctx context.Context, contestID, userID string) (domain.ProgressSnapshot, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT milestone, testcase, score
		FROM scores
		WHERE contest_id = ? AND user_id = ?`,
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
// score for the slot, then returns the updated snapshot. Both writes
// happen in one transaction.
func (s *ProgressStore) RecordScore(ctx context.Context, rec domain.ScoreRecord) (domain.ProgressSnapshot, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO submissions (contest_id, user_id, milestone, testcase, score, breakdown)
		VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ContestID, rec.UserID, rec.Milestone, rec.TestCase, rec.Score, string(rec.Breakdown),
	)
	if err != nil {
		return nil, fmt.Errorf("insert submission: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO scores (contest_id, user_id, milestone, testcase, score)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(contest_id, user_id, milestone, testcase) DO UPDATE SET
			score = MAX(scores.score, excluded.score),
			updated_at = datetime('now')`,
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
		WHERE contest_id = ? AND user_id = ? AND milestone = ? AND testcase = ?
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
		var breakdown string
		if err := rows.Scan(&rec.ContestID, &rec.UserID, &rec.Milestone, &rec.TestCase, &rec.Score, &breakdown); err != nil {
			return nil, fmt.Errorf("scan submission row: %w", err)
		}
		if breakdown != "" {
			rec.Breakdown = []byte(breakdown)
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate submission rows: %w", err)
	}
	return recs, nil
}
