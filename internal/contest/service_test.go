package contest

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/contestkit/arena/internal/domain"
	"github.com/contestkit/arena/internal/storage/memory"
)

type fakeListing struct {
	files []domain.FileInfo
	err   error
}

func (f *fakeListing) List(context.Context, string) ([]domain.FileInfo, error) {
	return f.files, f.err
}

type fakeFetcher struct {
	contents map[string]string
	err      error
}

func (f *fakeFetcher) Fetch(_ context.Context, fileID string) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	content, ok := f.contents[fileID]
	if !ok {
		return nil, errors.New("no such object")
	}
	return []byte(content), nil
}

type fakePublisher struct {
	recs []domain.ScoreRecord
	err  error
}

func (f *fakePublisher) PublishScored(_ context.Context, rec domain.ScoreRecord) error {
	if f.err != nil {
		return f.err
	}
	f.recs = append(f.recs, rec)
	return nil
}

func testService(t *testing.T, listing *fakeListing, fetcher *fakeFetcher, events EventPublisher) *Service {
	t.Helper()
	registry := NewRegistry(&Manifest{Contests: []Definition{
		{ID: "SS2023-28", Name: "Summer Series", Prefix: "contests/ss", AnswerColumn: "output"},
	}})
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(registry, listing, fetcher, memory.New(), events, logger)
}

func contestFixture() (*fakeListing, *fakeFetcher) {
	listing := &fakeListing{files: []domain.FileInfo{
		{ID: "p1", Name: "Problem_M1.pdf", ViewLink: "https://files/p1"},
		{ID: "i1", Name: "TestCase_M1_T1_input.csv"},
		{ID: "o1", Name: "TestCase_M1_T1_output.csv"},
		{ID: "i2", Name: "TestCase_M1_T2_input.csv"},
		{ID: "o2", Name: "TestCase_M1_T2_output.csv"},
		{ID: "c1", Name: "TestCase_M2_T1.csv"},
	}}
	fetcher := &fakeFetcher{contents: map[string]string{
		"i1": "id,value\n1,a\n",
		"o1": "id,output\n1,A\n2,B\n",
		"o2": "id,output\n1,C\n",
		"c1": "id,value,output\n1,a,X\n",
	}}
	return listing, fetcher
}

func TestServiceProgression(t *testing.T) {
	listing, fetcher := contestFixture()
	svc := testService(t, listing, fetcher, nil)
	ctx := context.Background()

	prog, err := svc.Progression(ctx, "SS2023-28", "user-1")
	if err != nil {
		t.Fatalf("Progression() error = %v", err)
	}
	if len(prog.Milestones) != 2 {
		t.Fatalf("len(Milestones) = %d, want 2", len(prog.Milestones))
	}

	first := prog.Milestones[0]
	if first.Milestone != 1 || len(first.Discovered) != 2 {
		t.Errorf("milestone 1 = %+v", first)
	}
	if len(first.Unlocked) != 1 || first.Unlocked[0] != 1 {
		t.Errorf("Unlocked = %v, want [1]", first.Unlocked)
	}
}

func TestServiceProgressionUnknownContest(t *testing.T) {
	listing, fetcher := contestFixture()
	svc := testService(t, listing, fetcher, nil)

	_, err := svc.Progression(context.Background(), "nope", "user-1")
	if !errors.Is(err, domain.ErrContestNotFound) {
		t.Fatalf("Progression() error = %v, want ErrContestNotFound", err)
	}
}

func TestServiceStatement(t *testing.T) {
	listing, fetcher := contestFixture()
	svc := testService(t, listing, fetcher, nil)
	ctx := context.Background()

	ref, err := svc.Statement(ctx, "SS2023-28", 1)
	if err != nil {
		t.Fatalf("Statement() error = %v", err)
	}
	if ref.FileID != "p1" || ref.ViewLink != "https://files/p1" {
		t.Errorf("Statement() = %+v", ref)
	}

	if _, err := svc.Statement(ctx, "SS2023-28", 2); !errors.Is(err, domain.ErrArtifactNotFound) {
		t.Errorf("Statement(2) error = %v, want ErrArtifactNotFound", err)
	}
}

func TestServiceSubmit(t *testing.T) {
	listing, fetcher := contestFixture()
	events := &fakePublisher{}
	svc := testService(t, listing, fetcher, events)
	ctx := context.Background()

	res, err := svc.Submit(ctx, SubmissionRequest{
		ContestID: "SS2023-28",
		UserID:    "user-1",
		Milestone: 1,
		TestCase:  1,
		Content:   []byte("id,output\n1,A\n2,B\n"),
	})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if !res.Result.Perfect() || res.Result.Score != 100 {
		t.Errorf("Result = %+v, want perfect", res.Result)
	}
	if !res.HasNext || res.Next != 2 {
		t.Errorf("Next = (%d, %v), want (2, true)", res.Next, res.HasNext)
	}
	if got, ok := res.Progress.Score(1, 1); !ok || got != 100 {
		t.Errorf("Progress.Score(1,1) = (%v, %v), want (100, true)", got, ok)
	}
	if len(events.recs) != 1 || events.recs[0].Score != 100 {
		t.Errorf("published events = %+v", events.recs)
	}
}

func TestServiceSubmitPartialScore(t *testing.T) {
	listing, fetcher := contestFixture()
	svc := testService(t, listing, fetcher, nil)
	ctx := context.Background()

	res, err := svc.Submit(ctx, SubmissionRequest{
		ContestID: "SS2023-28",
		UserID:    "user-1",
		Milestone: 1,
		TestCase:  1,
		Content:   []byte("id,output\n1,A\n2,X\n"),
	})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if res.Result.Score != 50 {
		t.Errorf("Score = %v, want 50", res.Result.Score)
	}
	if res.HasNext {
		t.Errorf("HasNext = true, want false for imperfect score")
	}
}

func TestServiceSubmitLockedTestCase(t *testing.T) {
	listing, fetcher := contestFixture()
	svc := testService(t, listing, fetcher, nil)

	_, err := svc.Submit(context.Background(), SubmissionRequest{
		ContestID: "SS2023-28",
		UserID:    "user-1",
		Milestone: 1,
		TestCase:  2,
		Content:   []byte("id,output\n1,C\n"),
	})
	if !errors.Is(err, domain.ErrTestCaseLocked) {
		t.Fatalf("Submit() error = %v, want ErrTestCaseLocked", err)
	}
}

func TestServiceSubmitUnlocksAfterPerfectScore(t *testing.T) {
	listing, fetcher := contestFixture()
	svc := testService(t, listing, fetcher, nil)
	ctx := context.Background()

	perfect := SubmissionRequest{
		ContestID: "SS2023-28",
		UserID:    "user-1",
		Milestone: 1,
		TestCase:  1,
		Content:   []byte("id,output\n1,A\n2,B\n"),
	}
	if _, err := svc.Submit(ctx, perfect); err != nil {
		t.Fatalf("Submit(t1) error = %v", err)
	}

	res, err := svc.Submit(ctx, SubmissionRequest{
		ContestID: "SS2023-28",
		UserID:    "user-1",
		Milestone: 1,
		TestCase:  2,
		Content:   []byte("id,output\n1,C\n"),
	})
	if err != nil {
		t.Fatalf("Submit(t2) error = %v", err)
	}
	if res.Result.Score != 100 {
		t.Errorf("Score = %v, want 100", res.Result.Score)
	}
	if res.HasNext {
		t.Errorf("HasNext = true, want false at last discovered test case")
	}
}

func TestServiceSubmitValidation(t *testing.T) {
	listing, fetcher := contestFixture()
	svc := testService(t, listing, fetcher, nil)

	tests := []struct {
		name string
		req  SubmissionRequest
	}{
		{"missing contest", SubmissionRequest{UserID: "u", Milestone: 1, TestCase: 1, Content: []byte("x")}},
		{"missing user", SubmissionRequest{ContestID: "c", Milestone: 1, TestCase: 1, Content: []byte("x")}},
		{"zero milestone", SubmissionRequest{ContestID: "c", UserID: "u", TestCase: 1, Content: []byte("x")}},
		{"zero test case", SubmissionRequest{ContestID: "c", UserID: "u", Milestone: 1, Content: []byte("x")}},
		{"empty content", SubmissionRequest{ContestID: "c", UserID: "u", Milestone: 1, TestCase: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Submit(context.Background(), tt.req)
			var validationErr *domain.ValidationError
			if !errors.As(err, &validationErr) {
				t.Errorf("Submit() error = %v, want ValidationError", err)
			}
		})
	}
}

func TestServiceSubmitPublisherFailureDoesNotFail(t *testing.T) {
	listing, fetcher := contestFixture()
	events := &fakePublisher{err: errors.New("broker down")}
	svc := testService(t, listing, fetcher, events)

	res, err := svc.Submit(context.Background(), SubmissionRequest{
		ContestID: "SS2023-28",
		UserID:    "user-1",
		Milestone: 1,
		TestCase:  1,
		Content:   []byte("id,output\n1,A\n2,B\n"),
	})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if res.Result.Score != 100 {
		t.Errorf("Score = %v, want 100", res.Result.Score)
	}
}

func TestServiceDownloadInput(t *testing.T) {
	listing, fetcher := contestFixture()
	svc := testService(t, listing, fetcher, nil)
	ctx := context.Background()

	dl, err := svc.DownloadInput(ctx, "SS2023-28", "user-1", 1, 1)
	if err != nil {
		t.Fatalf("DownloadInput() error = %v", err)
	}
	if dl.Name != "TestCase_M1_T1_input.csv" || string(dl.Content) != "id,value\n1,a\n" {
		t.Errorf("DownloadInput() = %+v", dl)
	}
}

func TestServiceDownloadCombinedStripsAnswer(t *testing.T) {
	listing, fetcher := contestFixture()
	svc := testService(t, listing, fetcher, nil)

	dl, err := svc.DownloadInput(context.Background(), "SS2023-28", "user-1", 2, 1)
	if err != nil {
		t.Fatalf("DownloadInput() error = %v", err)
	}
	if strings.Contains(string(dl.Content), "output") || strings.Contains(string(dl.Content), "X") {
		t.Errorf("answer column leaked into download: %q", dl.Content)
	}
}

func TestServiceDownloadLocked(t *testing.T) {
	listing, fetcher := contestFixture()
	svc := testService(t, listing, fetcher, nil)

	_, err := svc.DownloadInput(context.Background(), "SS2023-28", "user-1", 1, 2)
	if !errors.Is(err, domain.ErrTestCaseLocked) {
		t.Fatalf("DownloadInput() error = %v, want ErrTestCaseLocked", err)
	}
}

func TestServiceListingFailure(t *testing.T) {
	listing := &fakeListing{err: errors.New("bucket unreachable")}
	svc := testService(t, listing, &fakeFetcher{}, nil)

	_, err := svc.Progression(context.Background(), "SS2023-28", "user-1")
	var fetchErr *domain.FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("Progression() error = %v, want FetchError", err)
	}
}
