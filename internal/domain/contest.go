package domain

import "encoding/json"

// Format identifies the data format of a test-case artifact, derived
// from its file extension.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatText Format = "txt"
)

// Valid reports whether the format is one of the supported formats.
func (f Format) Valid() bool {
	switch f {
	case FormatCSV, FormatJSON, FormatText:
		return true
	}
	return false
}

// ParseFormat maps a file extension (without the dot) to a Format.
func ParseFormat(ext string) (Format, bool) {
	f := Format(ext)
	return f, f.Valid()
}

// PerfectScore is the score that unlocks the next test case in a milestone.
const PerfectScore = 100.0

// FileInfo describes one object from the contest bucket listing.
// ID is opaque; Name is matched against the artifact naming convention.
type FileInfo struct {
	ID       string
	Name     string
	MIMEType string
	ViewLink string // optional direct-open link
}

// ProblemStatementRef points at the statement document for a milestone.
// At most one exists per milestone.
type ProblemStatementRef struct {
	Milestone int
	FileID    string
	Name      string
	ViewLink  string
}

// TestCaseInputRef points at the input artifact the user must process.
// Combined marks the legacy convention where the expected answer column
// is embedded in the same artifact and must be stripped before download.
type TestCaseInputRef struct {
	Milestone int
	TestCase  int
	FileID    string
	Name      string
	Format    Format
	Combined  bool
}

// ExpectedOutputRef points at the artifact a submission is graded against.
type ExpectedOutputRef struct {
	Milestone int
	TestCase  int
	FileID    string
	Name      string
	Format    Format
	Combined  bool
}

// ScoreRecord is one persisted grading result. Breakdown is the
// serialized grading detail; it travels with the submission history row
// and the scored event, never with the score map itself.
type ScoreRecord struct {
	ContestID string          `json:"contest_id"`
	UserID    string          `json:"user_id"`
	Milestone int             `json:"milestone"`
	TestCase  int             `json:"testcase"`
	Score     float64         `json:"score"`
	Breakdown json.RawMessage `json:"breakdown,omitempty"`
}

// ProgressSnapshot is the full score map for one user in one contest:
// milestone id -> test case id -> score. It is owned by the progress
// store; the core only ever consumes an immutable snapshot of it.
type ProgressSnapshot map[int]map[int]float64

// Score returns the recorded score for a test case, if any.
func (s ProgressSnapshot) Score(milestone, testcase int) (float64, bool) {
	m, ok := s[milestone]
	if !ok {
		return 0, false
	}
	score, ok := m[testcase]
	return score, ok
}

// Milestone returns the score map for one milestone. The result may be nil.
func (s ProgressSnapshot) Milestone(milestone int) map[int]float64 {
	return s[milestone]
}

// Clone returns a deep copy of the snapshot.
func (s ProgressSnapshot) Clone() ProgressSnapshot {
	out := make(ProgressSnapshot, len(s))
	for m, scores := range s {
		inner := make(map[int]float64, len(scores))
		for t, score := range scores {
			inner[t] = score
		}
		out[m] = inner
	}
	return out
}

// TestCaseStats aggregates a user's submissions for one test case.
type TestCaseStats struct {
	Milestone int     `json:"milestone"`
	TestCase  int     `json:"testcase"`
	Attempts  int     `json:"attempts"`
	BestScore float64 `json:"best_score"`
}

// UserStats aggregates a user's submission history for one contest.
type UserStats struct {
	ContestID        string          `json:"contest_id"`
	UserID           string          `json:"user_id"`
	TotalSubmissions int             `json:"total_submissions"`
	PerfectScores    int             `json:"perfect_scores"`
	TestCases        []TestCaseStats `json:"test_cases"`
}

// MilestoneProgression is the derived unlock state for one milestone.
// Never persisted; recomputed from the catalog and a score snapshot.
type MilestoneProgression struct {
	Milestone  int
	Discovered []int // test case ids found in the catalog, ascending
	Unlocked   []int // contiguous prefix of Discovered
}

// ContestProgression is the derived unlock state for a whole contest.
type ContestProgression struct {
	ContestID  string
	Milestones []MilestoneProgression
}
