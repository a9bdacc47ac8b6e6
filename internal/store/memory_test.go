package store

import (
	"context"
	"errors"
	"testing"

	"github.com/sketchwars/sketchwars-backend/internal"
)

func TestMemoryRoomsAndSessions(t *testing.T) {
	m := NewMemory(nil)
	ctx := context.Background()

	if _, err := m.GetRoomConfig(ctx, "room-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}

	cfg := internal.DefaultRoomConfig()
	if err := m.CreateRoom(ctx, "room-1", cfg); err != nil {
		t.Fatalf("create room: %v", err)
	}
	got, err := m.GetRoomConfig(ctx, "room-1")
	if err != nil || got.MaxPlayers != cfg.MaxPlayers {
		t.Fatalf("get room: %+v, %v", got, err)
	}

	doc, err := m.LoadSession(ctx, "room-1")
	if err != nil || doc != nil {
		t.Fatalf("absent session: %+v, %v", doc, err)
	}
	if err := m.SaveSession(ctx, &internal.GameSession{RoomID: "room-1", CurrentPhase: internal.PhaseWaiting}); err != nil {
		t.Fatalf("save: %v", err)
	}
	doc, err = m.LoadSession(ctx, "room-1")
	if err != nil || doc == nil || doc.CurrentPhase != internal.PhaseWaiting {
		t.Fatalf("load: %+v, %v", doc, err)
	}
}

func TestMemoryRandomWordsUsesBank(t *testing.T) {
	m := NewMemory(nil)
	got, err := m.RandomWords(context.Background(), 3, internal.DifficultyEasy, nil)
	if err != nil {
		t.Fatalf("random words: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d words, want 3", len(got))
	}
}

func TestMemoryStats(t *testing.T) {
	m := NewMemory(nil)
	ctx := context.Background()
	m.CommitPostGameStats(ctx, "p1", internal.PlayerOutcome{Score: 150, Won: true, Rounds: 3})
	m.CommitPostGameStats(ctx, "p1", internal.PlayerOutcome{Score: 90, Rounds: 2})

	st, err := m.GetPlayerStats(ctx, "p1")
	if err != nil {
		t.Fatalf("get stats: %v", err)
	}
	if st.GamesPlayed != 2 || st.GamesWon != 1 || st.BestScore != 150 || st.TotalScore != 240 || st.RoundsPlayed != 5 {
		t.Fatalf("stats wrong: %+v", st)
	}
}
