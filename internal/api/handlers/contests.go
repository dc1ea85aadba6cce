package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/contestkit/arena/internal/catalog"
	"github.com/contestkit/arena/internal/contest"
	"github.com/contestkit/arena/internal/domain"
	"github.com/contestkit/arena/internal/progression"
)

// ContestHandler handles contest catalog and progression endpoints
type ContestHandler struct {
	service *contest.Service
}

// NewContestHandler creates a new contest handler
func NewContestHandler(service *contest.Service) *ContestHandler {
	return &ContestHandler{service: service}
}

// ContestResponse represents a contest in API responses
type ContestResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// StatementResponse represents a problem statement reference
type StatementResponse struct {
	Milestone int    `json:"milestone"`
	Name      string `json:"name"`
	ViewLink  string `json:"view_link,omitempty"`
}

// TestCaseResponse represents one discovered test case
type TestCaseResponse struct {
	TestCase    int    `json:"testcase"`
	Format      string `json:"format,omitempty"`
	Combined    bool   `json:"combined,omitempty"`
	HasInput    bool   `json:"has_input"`
	HasExpected bool   `json:"has_expected"`
}

// MilestoneResponse represents one milestone of the catalog
type MilestoneResponse struct {
	Milestone int                `json:"milestone"`
	Statement *StatementResponse `json:"statement,omitempty"`
	TestCases []TestCaseResponse `json:"test_cases"`
}

// List lists all configured contests
func (h *ContestHandler) List(w http.ResponseWriter, r *http.Request) {
	defs := h.service.Contests()

	response := make([]ContestResponse, 0, len(defs))
	for _, def := range defs {
		response = append(response, ContestResponse{ID: def.ID, Name: def.Name})
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"contests": response,
		"total":    len(response),
	})
}

// Catalog returns the milestone/test-case index for a contest
func (h *ContestHandler) Catalog(w http.ResponseWriter, r *http.Request) {
	contestID := r.PathValue("id")

	cat, err := h.service.Catalog(r.Context(), contestID)
	if err != nil {
		WriteDomainError(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, catalogResponse(contestID, cat))
}

// Refresh rebuilds the catalog from a fresh bucket listing
func (h *ContestHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	contestID := r.PathValue("id")

	cat, err := h.service.RefreshCatalog(r.Context(), contestID)
	if err != nil {
		WriteDomainError(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, catalogResponse(contestID, cat))
}

func catalogResponse(contestID string, cat catalog.Catalog) map[string]any {
	milestones := make([]MilestoneResponse, 0, len(cat.Milestones))
	for _, m := range cat.Milestones {
		resp := MilestoneResponse{Milestone: m, TestCases: []TestCaseResponse{}}

		if stmt, ok := cat.ProblemStatements[m]; ok {
			resp.Statement = &StatementResponse{
				Milestone: m,
				Name:      stmt.Name,
				ViewLink:  stmt.ViewLink,
			}
		}

		for _, tc := range cat.TestCases(m) {
			key := catalog.Key{Milestone: m, TestCase: tc}
			in, hasInput := cat.Inputs[key]
			out, hasExpected := cat.ExpectedOutputs[key]

			tcResp := TestCaseResponse{
				TestCase:    tc,
				HasInput:    hasInput,
				HasExpected: hasExpected,
			}
			if hasInput {
				tcResp.Format = string(in.Format)
				tcResp.Combined = in.Combined
			} else if hasExpected {
				tcResp.Format = string(out.Format)
				tcResp.Combined = out.Combined
			}
			resp.TestCases = append(resp.TestCases, tcResp)
		}

		milestones = append(milestones, resp)
	}

	return map[string]any{
		"contest_id": contestID,
		"empty":      cat.Empty(),
		"milestones": milestones,
	}
}

// Progression returns the unlock state for the authenticated contestant
func (h *ContestHandler) Progression(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFrom(r.Context())
	if !ok {
		Unauthorized(w, r, "authentication required")
		return
	}
	contestID := r.PathValue("id")

	prog, err := h.service.Progression(r.Context(), contestID, identity.UserID)
	if err != nil {
		WriteDomainError(w, r, err)
		return
	}

	milestones := make([]map[string]any, 0, len(prog.Milestones))
	for _, m := range prog.Milestones {
		milestones = append(milestones, map[string]any{
			"milestone":  m.Milestone,
			"discovered": m.Discovered,
			"unlocked":   m.Unlocked,
		})
	}

	resp := map[string]any{
		"contest_id": prog.ContestID,
		"milestones": milestones,
	}

	// Clients may send their current selection to have it repaired
	// against the fresh unlock state.
	if sel := r.URL.Query().Get("selected"); sel != "" {
		milestone, err1 := strconv.Atoi(r.URL.Query().Get("milestone"))
		selected, err2 := strconv.Atoi(sel)
		if err1 != nil || err2 != nil {
			BadRequest(w, r, "selected and milestone must be integers")
			return
		}
		for _, m := range prog.Milestones {
			if m.Milestone == milestone {
				resp["selected"] = progression.RepairSelection(selected, m.Unlocked, m.Discovered)
			}
		}
	}

	WriteJSON(w, http.StatusOK, resp)
}

// Statement returns the problem statement reference for a milestone
func (h *ContestHandler) Statement(w http.ResponseWriter, r *http.Request) {
	contestID := r.PathValue("id")
	milestone, err := pathInt(r, "milestone")
	if err != nil {
		BadRequest(w, r, err.Error())
		return
	}

	ref, err := h.service.Statement(r.Context(), contestID, milestone)
	if err != nil {
		WriteDomainError(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, StatementResponse{
		Milestone: ref.Milestone,
		Name:      ref.Name,
		ViewLink:  ref.ViewLink,
	})
}

// DownloadInput streams the input artifact for an unlocked test case
func (h *ContestHandler) DownloadInput(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFrom(r.Context())
	if !ok {
		Unauthorized(w, r, "authentication required")
		return
	}
	contestID := r.PathValue("id")

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

	dl, err := h.service.DownloadInput(r.Context(), contestID, identity.UserID, milestone, testcase)
	if err != nil {
		WriteDomainError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", contentTypeFor(dl.Format))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", dl.Name))
	w.WriteHeader(http.StatusOK)
	w.Write(dl.Content)
}

func contentTypeFor(format domain.Format) string {
	switch format {
	case domain.FormatCSV:
		return "text/csv"
	case domain.FormatJSON:
		return "application/json"
	default:
		return "text/plain; charset=utf-8"
	}
}

func pathInt(r *http.Request, name string) (int, error) {
	raw := r.PathValue(name)
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s %q", name, raw)
	}
	return n, nil
}
