package contest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/contestkit/arena/internal/catalog"
	"github.com/contestkit/arena/internal/domain"
	"github.com/contestkit/arena/internal/progression"
	"github.com/contestkit/arena/internal/scoring"
)

// ListingProvider lists artifact metadata under a bucket prefix. The
// listing must be fully drained before it is returned; a partial page is
// never a valid catalog input.
type ListingProvider interface {
	List(ctx context.Context, prefix string) ([]domain.FileInfo, error)
}

// ContentFetcher returns the raw bytes of one artifact by its opaque id.
type ContentFetcher interface {
	Fetch(ctx context.Context, fileID string) ([]byte, error)
}

// ProgressStore persists grading results per contest and user.
// RecordScore keeps the best score for a slot and returns the updated
// full snapshot.
type ProgressStore interface {
	Snapshot(ctx context.Context, contestID, userID string) (domain.ProgressSnapshot, error)
	RecordScore(ctx context.Context, rec domain.ScoreRecord) (domain.ProgressSnapshot, error)
}

// EventPublisher announces grading results to external consumers such as
// the leaderboard. Publishing is best effort and never fails a submission.
type EventPublisher interface {
	PublishScored(ctx context.Context, rec domain.ScoreRecord) error
}

// Service orchestrates contest operations: catalog refresh, progression,
// artifact download, and submission grading.
type Service struct {
	registry *Registry
	listings ListingProvider
	contents ContentFetcher
	progress ProgressStore
	events   EventPublisher
	logger   *slog.Logger
}

// NewService creates a contest service. events may be nil when no broker
// is configured.
func NewService(
	registry *Registry,
	listings ListingProvider,
	contents ContentFetcher,
	progress ProgressStore,
	events EventPublisher,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		registry: registry,
		listings: listings,
		contents: contents,
		progress: progress,
		events:   events,
		logger:   logger,
	}
}

// Contests returns the configured contests in manifest order.
func (s *Service) Contests() []Definition {
	return s.registry.List()
}

// Catalog returns the catalog snapshot for a contest, building it on
// first access. An empty catalog is not an error here; callers render an
// empty state from it.
func (s *Service) Catalog(ctx context.Context, contestID string) (catalog.Catalog, error) {
	if cat, ok := s.registry.Catalog(contestID); ok {
		return cat, nil
	}
	return s.RefreshCatalog(ctx, contestID)
}

// RefreshCatalog rebuilds the catalog snapshot from a fresh listing and
// replaces the cached one.
func (s *Service) RefreshCatalog(ctx context.Context, contestID string) (catalog.Catalog, error) {
	def, err := s.registry.Get(contestID)
	if err != nil {
		return catalog.Catalog{}, err
	}

	files, err := s.listings.List(ctx, def.Prefix)
	if err != nil {
		return catalog.Catalog{}, &domain.FetchError{Op: "listing", Err: err}
	}

	cat, err := catalog.Build(files, s.logger)
	if err != nil && !errors.Is(err, domain.ErrCatalogEmpty) {
		return catalog.Catalog{}, err
	}
	if cat.Empty() {
		s.logger.Warn("contest catalog is empty", "contest_id", contestID, "prefix", def.Prefix)
	}

	s.registry.SetCatalog(contestID, cat)
	return cat, nil
}

// Progression computes the unlock state for every milestone of a contest
// from the current catalog and the user's score snapshot.
func (s *Service) Progression(ctx context.Context, contestID, userID string) (domain.ContestProgression, error) {
	cat, err := s.Catalog(ctx, contestID)
	if err != nil {
		return domain.ContestProgression{}, err
	}

	snapshot, err := s.progress.Snapshot(ctx, contestID, userID)
	if err != nil {
		return domain.ContestProgression{}, &domain.FetchError{Op: "progress snapshot", Err: err}
	}

	prog := domain.ContestProgression{ContestID: contestID}
	for _, milestone := range cat.Milestones {
		discovered := cat.TestCases(milestone)
		prog.Milestones = append(prog.Milestones, domain.MilestoneProgression{
			Milestone:  milestone,
			Discovered: discovered,
			Unlocked:   progression.Unlocked(discovered, snapshot.Milestone(milestone)),
		})
	}
	return prog, nil
}

// Statement returns the problem statement reference for a milestone.
func (s *Service) Statement(ctx context.Context, contestID string, milestone int) (domain.ProblemStatementRef, error) {
	cat, err := s.Catalog(ctx, contestID)
	if err != nil {
		return domain.ProblemStatementRef{}, err
	}

	ref, ok := cat.ProblemStatements[milestone]
	if !ok {
		return domain.ProblemStatementRef{}, fmt.Errorf("milestone %d statement: %w", milestone, domain.ErrArtifactNotFound)
	}
	return ref, nil
}

// Download is an input artifact ready to hand to the user.
type Download struct {
	Name    string
	Format  domain.Format
	Content []byte
}

// DownloadInput fetches the input artifact for a test case. The test
// case must be unlocked for the user. Legacy combined artifacts have
// their answer column stripped before they leave the server.
func (s *Service) DownloadInput(ctx context.Context, contestID, userID string, milestone, testcase int) (Download, error) {
	def, err := s.registry.Get(contestID)
	if err != nil {
		return Download{}, err
	}

	cat, err := s.Catalog(ctx, contestID)
	if err != nil {
		return Download{}, err
	}

	ref, ok := cat.Inputs[catalog.Key{Milestone: milestone, TestCase: testcase}]
	if !ok {
		return Download{}, fmt.Errorf("input m%d t%d: %w", milestone, testcase, domain.ErrArtifactNotFound)
	}

	if err := s.requireUnlocked(ctx, cat, contestID, userID, milestone, testcase); err != nil {
		return Download{}, err
	}

	content, err := s.contents.Fetch(ctx, ref.FileID)
	if err != nil {
		return Download{}, &domain.FetchError{Op: "input content", Err: err}
	}

	if ref.Combined {
		content, err = StripColumn(content, def.AnswerColumn)
		if err != nil {
			return Download{}, &domain.ParseError{Format: ref.Format, Reason: "combined input", Err: err}
		}
	}

	return Download{Name: ref.Name, Format: ref.Format, Content: content}, nil
}

// SubmissionRequest is one grading request.
type SubmissionRequest struct {
	ContestID string
	UserID    string
	Milestone int
	TestCase  int
	Content   []byte
}

// SubmissionResult carries the grade, the refreshed snapshot, and an
// advisory next-test-case suggestion after a perfect score.
type SubmissionResult struct {
	Result   scoring.Result
	Progress domain.ProgressSnapshot
	Next     int
	HasNext  bool
}

// Submit grades a submission against the expected output, persists the
// score, and republishes the updated progression inputs.
func (s *Service) Submit(ctx context.Context, req SubmissionRequest) (SubmissionResult, error) {
	if err := validateSubmission(req); err != nil {
		return SubmissionResult{}, err
	}

	cat, err := s.Catalog(ctx, req.ContestID)
	if err != nil {
		return SubmissionResult{}, err
	}

	ref, ok := cat.ExpectedOutputs[catalog.Key{Milestone: req.Milestone, TestCase: req.TestCase}]
	if !ok {
		return SubmissionResult{}, fmt.Errorf("expected output m%d t%d: %w", req.Milestone, req.TestCase, domain.ErrArtifactNotFound)
	}

	if err := s.requireUnlocked(ctx, cat, req.ContestID, req.UserID, req.Milestone, req.TestCase); err != nil {
		return SubmissionResult{}, err
	}

	expected, err := s.contents.Fetch(ctx, ref.FileID)
	if err != nil {
		return SubmissionResult{}, &domain.FetchError{Op: "expected output", Err: err}
	}

	result, err := scoring.Score(expected, ref.Format, req.Content)
	if err != nil {
		return SubmissionResult{}, err
	}

	breakdown, err := json.Marshal(result)
	if err != nil {
		return SubmissionResult{}, fmt.Errorf("marshal grading result: %w", err)
	}
	rec := domain.ScoreRecord{
		ContestID: req.ContestID,
		UserID:    req.UserID,
		Milestone: req.Milestone,
		TestCase:  req.TestCase,
		Score:     result.Score,
		Breakdown: breakdown,
	}
	snapshot, err := s.progress.RecordScore(ctx, rec)
	if err != nil {
		return SubmissionResult{}, &domain.FetchError{Op: "record score", Err: err}
	}

	if s.events != nil {
		if err := s.events.PublishScored(ctx, rec); err != nil {
			s.logger.Warn("publish scored event failed",
				"contest_id", rec.ContestID,
				"milestone", rec.Milestone,
				"testcase", rec.TestCase,
				"error", err,
			)
		}
	}

	out := SubmissionResult{Result: result, Progress: snapshot}
	if result.Perfect() {
		discovered := cat.TestCases(req.Milestone)
		unlocked := progression.Unlocked(discovered, snapshot.Milestone(req.Milestone))
		out.Next, out.HasNext = progression.NextAfter(req.TestCase, unlocked)
	}
	return out, nil
}

// requireUnlocked recomputes the unlock prefix for one milestone and
// rejects access to locked test cases.
func (s *Service) requireUnlocked(ctx context.Context, cat catalog.Catalog, contestID, userID string, milestone, testcase int) error {
	snapshot, err := s.progress.Snapshot(ctx, contestID, userID)
	if err != nil {
		return &domain.FetchError{Op: "progress snapshot", Err: err}
	}

	unlocked := progression.Unlocked(cat.TestCases(milestone), snapshot.Milestone(milestone))
	for _, id := range unlocked {
		if id == testcase {
			return nil
		}
	}
	return fmt.Errorf("m%d t%d: %w", milestone, testcase, domain.ErrTestCaseLocked)
}

func validateSubmission(req SubmissionRequest) error {
	switch {
	case req.ContestID == "":
		return &domain.ValidationError{Reason: "contest id is required"}
	case req.UserID == "":
		return &domain.ValidationError{Reason: "user id is required"}
	case req.Milestone <= 0:
		return &domain.ValidationError{Reason: "milestone id must be positive"}
	case req.TestCase <= 0:
		return &domain.ValidationError{Reason: "test case id must be positive"}
	case len(req.Content) == 0:
		return &domain.ValidationError{Reason: "submission content is empty"}
	}
	return nil
}
