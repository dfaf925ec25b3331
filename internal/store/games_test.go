package store_test

import (
	"context"
	"errors"
	"testing"

	"quiz-arena/internal/store"
	"quiz-arena/internal/testutil"
)

func TestGameLifecycle(t *testing.T) {
	st, cleanup := testutil.OpenTestStore(t)
	defer cleanup()
	ctx := context.Background()

	id := store.NewID()
	if err := st.CreateGame(ctx, id, "demo pack"); err != nil {
		t.Fatalf("CreateGame: %v", err)
	}
	if err := st.AddParticipant(ctx, id, "host", "showman"); err != nil {
		t.Fatalf("AddParticipant showman: %v", err)
	}
	for _, name := range []string{"alice", "bob"} {
		if err := st.AddParticipant(ctx, id, name, "player"); err != nil {
			t.Fatalf("AddParticipant %s: %v", name, err)
		}
	}
	// Re-adding the same participant is a no-op.
	if err := st.AddParticipant(ctx, id, "alice", "player"); err != nil {
		t.Fatalf("duplicate AddParticipant: %v", err)
	}

	g, err := st.GetGame(ctx, id)
	if err != nil {
		t.Fatalf("GetGame: %v", err)
	}
	if g.PackName != "demo pack" || g.Status != "active" || g.FinishedAt != nil {
		t.Fatalf("game = %+v", g)
	}

	if err := st.SetFinalSum(ctx, id, "alice", 4200); err != nil {
		t.Fatalf("SetFinalSum: %v", err)
	}
	if err := st.RecordScoreEvent(ctx, id, "alice", 300, "answer_right"); err != nil {
		t.Fatalf("RecordScoreEvent: %v", err)
	}
	if err := st.RecordAnswer(ctx, id, "alice", "History", 300, "Napoleon", true); err != nil {
		t.Fatalf("RecordAnswer: %v", err)
	}
	if err := st.SaveReport(ctx, id, []byte(`{"winner":"alice"}`)); err != nil {
		t.Fatalf("SaveReport: %v", err)
	}
	// Reports upsert on replay.
	if err := st.SaveReport(ctx, id, []byte(`{"winner":"bob"}`)); err != nil {
		t.Fatalf("SaveReport upsert: %v", err)
	}

	if err := st.EndGame(ctx, id); err != nil {
		t.Fatalf("EndGame: %v", err)
	}
	g, err = st.GetGame(ctx, id)
	if err != nil {
		t.Fatalf("GetGame after end: %v", err)
	}
	if g.Status != "finished" || g.FinishedAt == nil {
		t.Fatalf("ended game = %+v", g)
	}
}

func TestGetGameNotFound(t *testing.T) {
	st, cleanup := testutil.OpenTestStore(t)
	defer cleanup()

	if _, err := st.GetGame(context.Background(), "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if err := st.EndGame(context.Background(), "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("EndGame err = %v, want ErrNotFound", err)
	}
}

func TestListRecentGames(t *testing.T) {
	st, cleanup := testutil.OpenTestStore(t)
	defer cleanup()
	ctx := context.Background()

	ids := map[string]bool{}
	for i := 0; i < 3; i++ {
		id := store.NewID()
		ids[id] = true
		if err := st.CreateGame(ctx, id, "p"); err != nil {
			t.Fatalf("CreateGame: %v", err)
		}
	}
	rows, err := st.ListRecentGames(ctx, 10)
	if err != nil {
		t.Fatalf("ListRecentGames: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(rows))
	}
	for _, r := range rows {
		if !ids[r.ID] {
			t.Fatalf("unexpected row %+v", r)
		}
	}
}
