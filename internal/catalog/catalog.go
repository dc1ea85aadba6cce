package catalog

import (
	"log/slog"
	"sort"

	"github.com/contestkit/arena/internal/domain"
)

// Key identifies a test case within a contest.
type Key struct {
	Milestone int
	TestCase  int
}

// Catalog is the structured index built from a raw file listing. It is an
// immutable snapshot: rebuilt from scratch on every listing refresh, never
// mutated in place.
type Catalog struct {
	ProblemStatements map[int]domain.ProblemStatementRef
	Inputs            map[Key]domain.TestCaseInputRef
	ExpectedOutputs   map[Key]domain.ExpectedOutputRef
	Milestones        []int // ascending
}

// Empty reports whether the listing produced no milestones at all.
func (c Catalog) Empty() bool { return len(c.Milestones) == 0 }

// TestCases returns the discovered test case ids for a milestone in
// ascending order: the union of input and expected-output keys.
func (c Catalog) TestCases(milestone int) []int {
	seen := make(map[int]bool)
	for key := range c.Inputs {
		if key.Milestone == milestone {
			seen[key.TestCase] = true
		}
	}
	for key := range c.ExpectedOutputs {
		if key.Milestone == milestone {
			seen[key.TestCase] = true
		}
	}
	ids := make([]int, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Build indexes a raw file listing by the artifact naming convention.
// Unmatched files are skipped. When two files claim the same slot the one
// with the lexicographically smallest id wins, independent of listing
// order; the loser is dropped with a warning. An empty result returns the
// catalog together with domain.ErrCatalogEmpty so callers can render an
// empty state.
func Build(files []domain.FileInfo, logger *slog.Logger) (Catalog, error) {
	if logger == nil {
		logger = slog.Default()
	}

	cat := Catalog{
		ProblemStatements: make(map[int]domain.ProblemStatementRef),
		Inputs:            make(map[Key]domain.TestCaseInputRef),
		ExpectedOutputs:   make(map[Key]domain.ExpectedOutputRef),
	}

	for _, f := range files {
		m, ok := matchName(f.Name)
		if !ok {
			continue
		}

		switch m.kind {
		case artifactProblem:
			ref := domain.ProblemStatementRef{
				Milestone: m.milestone,
				FileID:    f.ID,
				Name:      f.Name,
				ViewLink:  f.ViewLink,
			}
			if prev, exists := cat.ProblemStatements[m.milestone]; !exists || ref.FileID < prev.FileID {
				if exists {
					warnDuplicate(logger, "problem statement", prev.FileID, ref.FileID)
				}
				cat.ProblemStatements[m.milestone] = ref
			} else {
				warnDuplicate(logger, "problem statement", ref.FileID, prev.FileID)
			}

		case artifactInput, artifactCombined:
			key := Key{m.milestone, m.testcase}
			ref := domain.TestCaseInputRef{
				Milestone: m.milestone,
				TestCase:  m.testcase,
				FileID:    f.ID,
				Name:      f.Name,
				Format:    m.format,
				Combined:  m.kind == artifactCombined,
			}
			if prev, exists := cat.Inputs[key]; !exists || ref.FileID < prev.FileID {
				if exists {
					warnDuplicate(logger, "test case input", prev.FileID, ref.FileID)
				}
				cat.Inputs[key] = ref
			} else {
				warnDuplicate(logger, "test case input", ref.FileID, prev.FileID)
			}

		case artifactOutput:
			cat.putExpected(logger, m, f)
		}

		// The combined artifact doubles as the expected output for its key.
		if m.kind == artifactCombined {
			cat.putExpected(logger, m, f)
		}
	}

	cat.Milestones = collectMilestones(cat)
	if cat.Empty() {
		return cat, domain.ErrCatalogEmpty
	}
	return cat, nil
}

func (c Catalog) putExpected(logger *slog.Logger, m match, f domain.FileInfo) {
	key := Key{m.milestone, m.testcase}
	ref := domain.ExpectedOutputRef{
		Milestone: m.milestone,
		TestCase:  m.testcase,
		FileID:    f.ID,
		Name:      f.Name,
		Format:    m.format,
		Combined:  m.kind == artifactCombined,
	}
	if prev, exists := c.ExpectedOutputs[key]; !exists || ref.FileID < prev.FileID {
		if exists {
			warnDuplicate(logger, "expected output", prev.FileID, ref.FileID)
		}
		c.ExpectedOutputs[key] = ref
	} else {
		warnDuplicate(logger, "expected output", ref.FileID, prev.FileID)
	}
}

func collectMilestones(cat Catalog) []int {
	seen := make(map[int]bool)
	for id := range cat.ProblemStatements {
		seen[id] = true
	}
	for key := range cat.Inputs {
		seen[key.Milestone] = true
	}
	for key := range cat.ExpectedOutputs {
		seen[key.Milestone] = true
	}
	ids := make([]int, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

func warnDuplicate(logger *slog.Logger, kind, droppedID, keptID string) {
	logger.Warn("duplicate artifact dropped",
		"kind", kind,
		"dropped_id", droppedID,
		"kept_id", keptID,
	)
}
