package postgres

import (
	"context"
	"fmt"

	"github.com/contestkit/arena/internal/domain"
)

// StatsStore aggregates submission history backed by PostgreSQL.
type StatsStore struct {
	db *DB
}

// NewStatsStore creates a new PostgreSQL-backed stats store.
func NewStatsStore(db *DB) *StatsStore {
	return &StatsStore{db: db}
}

// UserStats aggregates one user's submissions for a contest.
func (s *StatsStore) UserStats(ctx context.Context, contestID, userID string) (domain.UserStats, error) {
	stats := domain.UserStats{ContestID: contestID, UserID: userID}

	rows, err := s.db.QueryContext(ctx, `
		SELECT milestone, testcase, COUNT(*), MAX(score)
		FROM submissions
		WHERE contest_id = $1 AND user_id = $2
		GROUP BY milestone, testcase
		ORDER BY milestone, testcase`,
		contestID, userID,
	)
	if err != nil {
		return domain.UserStats{}, fmt.Errorf("query submission stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var tc domain.TestCaseStats
		if err := rows.Scan(&tc.Milestone, &tc.TestCase, &tc.Attempts, &tc.BestScore); err != nil {
			return domain.UserStats{}, fmt.Errorf("scan stats row: %w", err)
		}
		stats.TotalSubmissions += tc.Attempts
		if tc.BestScore == domain.PerfectScore {
			stats.PerfectScores++
		}
		stats.TestCases = append(stats.TestCases, tc)
	}
	if err := rows.Err(); err != nil {
		return domain.UserStats{}, fmt.Errorf("iterate stats rows: %w", err)
	}
	return stats, nil
}
