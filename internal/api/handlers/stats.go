package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/contestkit/arena/internal/domain"
)

// StatsProvider aggregates a user's submission history for a contest.
// Only the database-backed stores implement it; the routes are not
// registered when the backend keeps no history.
type StatsProvider interface {
	UserStats(ctx context.Context, contestID, userID string) (domain.UserStats, error)
}

// HistoryProvider lists every graded attempt for one test case.
type HistoryProvider interface {
	Submissions(ctx context.Context, contestID, userID string, milestone, testcase int) ([]domain.ScoreRecord, error)
}

// StatsHandler handles submission statistics and history endpoints
type StatsHandler struct {
	stats   StatsProvider
	history HistoryProvider
}

// NewStatsHandler creates a new stats handler
func NewStatsHandler(stats StatsProvider, history HistoryProvider) *StatsHandler {
	return &StatsHandler{stats: stats, history: history}
}

// UserStats returns the authenticated contestant's own statistics
func (h *StatsHandler) UserStats(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFrom(r.Context())
	if !ok {
		Unauthorized(w, r, "authentication required")
		return
	}

	stats, err := h.stats.UserStats(r.Context(), r.PathValue("id"), identity.UserID)
	if err != nil {
		WriteDomainError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, stats)
}

// HistoryEntry is one graded attempt in a test case's history.
type HistoryEntry struct {
	Score     float64         `json:"score"`
	Breakdown json.RawMessage `json:"breakdown,omitempty"`
}

// HistoryResponse lists a contestant's attempts for one test case,
// newest first.
type HistoryResponse struct {
	Milestone   int            `json:"milestone"`
	TestCase    int            `json:"testcase"`
	Total       int            `json:"total"`
	Submissions []HistoryEntry `json:"submissions"`
}

// History returns the authenticated contestant's grading history for a
// single test case
func (h *StatsHandler) History(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFrom(r.Context())
	if !ok {
		Unauthorized(w, r, "authentication required")
		return
	}
	milestone, err := pathInt(r, "milestone")
	if err != nil {
		BadRequest(w, r, err.Error())
		return
	}
	testcase, err := pathInt(r, "testcase")
	if err != nil {
		BadRequest(w, r, err.Error())
		return
	}

	recs, err := h.history.Submissions(r.Context(), r.PathValue("id"), identity.UserID, milestone, testcase)
	if err != nil {
		WriteDomainError(w, r, err)
		return
	}

	entries := make([]HistoryEntry, 0, len(recs))
	for _, rec := range recs {
		entries = append(entries, HistoryEntry{Score: rec.Score, Breakdown: rec.Breakdown})
	}
	WriteJSON(w, http.StatusOK, HistoryResponse{
		Milestone:   milestone,
		TestCase:    testcase,
		Total:       len(entries),
		Submissions: entries,
	})
}
