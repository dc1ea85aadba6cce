package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/contestkit/arena/internal/contest"
)

// SubmissionHandler handles grading submissions
type SubmissionHandler struct {
	service *contest.Service
}

// NewSubmissionHandler creates a new submission handler
func NewSubmissionHandler(service *contest.Service) *SubmissionHandler {
	return &SubmissionHandler{service: service}
}

// SubmitRequest is the JSON body of a grading submission
type SubmitRequest struct {
	Content string `json:"content"`
}

// SubmitResponse reports the grade and the refreshed milestone scores
type SubmitResponse struct {
	Success bool            `json:"success"`
	Score   float64         `json:"score"`
	Matched int             `json:"matched"`
	Total   int             `json:"total"`
	Next    int             `json:"next_testcase,omitempty"`
	Scores  map[int]float64 `json:"milestone_scores,omitempty"`
}

// Submit grades one submission against the expected output
func (h *SubmissionHandler) Submit(w http.ResponseWriter, r *http.Request) {
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

	var req SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, r, "invalid request body")
		return
	}

	result, err := h.service.Submit(r.Context(), contest.SubmissionRequest{
		ContestID: r.PathValue("id"),
		UserID:    identity.UserID,
		Milestone: milestone,
		TestCase:  testcase,
		Content:   []byte(req.Content),
	})
	if err != nil {
		WriteDomainError(w, r, err)
		return
	}

	resp := SubmitResponse{
		Success: true,
		Score:   result.Result.Score,
		Matched: result.Result.Matched,
		Total:   result.Result.Total,
		Scores:  result.Progress.Milestone(milestone),
	}
	if result.HasNext {
		resp.Next = result.Next
	}

	WriteJSON(w, http.StatusOK, resp)
}
