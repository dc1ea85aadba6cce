package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/contestkit/arena/internal/domain"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "arena.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestProgressStoreSnapshotEmpty(t *testing.T) {
	store := NewProgressStore(testDB(t))

	snap, err := store.Snapshot(context.Background(), "SS2023-28", "user-1")
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	if len(snap) != 0 {
		t.Errorf("Snapshot() = %v, want empty", snap)
	}
}

func TestProgressStoreRecordScore(t *testing.T) {
	store := NewProgressStore(testDB(t))
	ctx := context.Background()

	snap, err := store.RecordScore(ctx, domain.ScoreRecord{
		ContestID: "SS2023-28",
		UserID:    "user-1",
		Milestone: 1,
		TestCase:  1,
		Score:     66.5,
		Breakdown: []byte(`{"matched":2,"total":3}`),
	})
	if err != nil {
		t.Fatalf("RecordScore() error = %v", err)
	}
	if got, ok := snap.Score(1, 1); !ok || got != 66.5 {
		t.Errorf("Score(1,1) = (%v, %v), want (66.5, true)", got, ok)
	}
}

func TestProgressStoreKeepsBestScore(t *testing.T) {
	store := NewProgressStore(testDB(t))
	ctx := context.Background()
	rec := domain.ScoreRecord{ContestID: "c", UserID: "u", Milestone: 1, TestCase: 1}

	rec.Score = 100
	if _, err := store.RecordScore(ctx, rec); err != nil {
		t.Fatalf("RecordScore() error = %v", err)
	}

	rec.Score = 50
	snap, err := store.RecordScore(ctx, rec)
	if err != nil {
		t.Fatalf("RecordScore() error = %v", err)
	}
	if got, _ := snap.Score(1, 1); got != 100 {
		t.Errorf("Score(1,1) = %v, want 100 kept after worse attempt", got)
	}

	// Both attempts stay in the history.
	recs, err := store.Submissions(ctx, "c", "u", 1, 1)
	if err != nil {
		t.Fatalf("Submissions() error = %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("len(Submissions()) = %d, want 2", len(recs))
	}
	if recs[0].Score != 50 || recs[1].Score != 100 {
		t.Errorf("history = [%v, %v], want newest first", recs[0].Score, recs[1].Score)
	}
}

func TestProgressStoreIsolatesUsersAndContests(t *testing.T) {
	store := NewProgressStore(testDB(t))
	ctx := context.Background()

	if _, err := store.RecordScore(ctx, domain.ScoreRecord{ContestID: "a", UserID: "u1", Milestone: 1, TestCase: 1, Score: 100}); err != nil {
		t.Fatalf("RecordScore() error = %v", err)
	}
	if _, err := store.RecordScore(ctx, domain.ScoreRecord{ContestID: "b", UserID: "u1", Milestone: 2, TestCase: 1, Score: 40}); err != nil {
		t.Fatalf("RecordScore() error = %v", err)
	}

	snap, err := store.Snapshot(ctx, "a", "u1")
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	if len(snap) != 1 {
		t.Errorf("Snapshot(a, u1) = %v, want one milestone", snap)
	}

	other, err := store.Snapshot(ctx, "a", "u2")
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	if len(other) != 0 {
		t.Errorf("Snapshot(a, u2) = %v, want empty", other)
	}
}
