package game

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/sketchwars/sketchwars-backend/internal"
)

type fakeRooms struct {
	known map[string]internal.RoomConfig
}

func (f *fakeRooms) GetRoomConfig(_ context.Context, roomID string) (internal.RoomConfig, error) {
	cfg, ok := f.known[roomID]
	if !ok {
		return internal.RoomConfig{}, errors.New("no such room")
	}
	return cfg, nil
}

func newManagerFixture(t *testing.T) (*SessionManager, *fakeRoster) {
	t.Helper()
	roster := &fakeRoster{ready: []string{"a", "b"}}
	roster.members = []internal.RoomMember{
		{PlayerID: "a", Ready: true, Connected: true},
		{PlayerID: "b", Ready: true, Connected: true},
	}
	deps := Deps{
		Broadcast: &fakeBroadcast{},
		Words:     &fakeWords{options: []string{"sun", "moon", "cloud"}},
		Store:     &fakeStore{},
		Roster:    roster,
		Log:       zerolog.Nop(),
	}
	m := NewSessionManager(context.Background(), deps, &fakeRooms{known: map[string]internal.RoomConfig{
		"room-1": internal.DefaultRoomConfig(),
	}})
	t.Cleanup(m.Shutdown)
	return m, roster
}

func TestManagerRejectsUnknownRoom(t *testing.T) {
	m, _ := newManagerFixture(t)
	err := m.Dispatch(context.Background(), "nope", Action{Type: EventStart})
	if !errors.Is(err, ErrRoomNotFound) {
		t.Fatalf("got %v, want ErrRoomNotFound", err)
	}
	if _, err := m.Snapshot(context.Background(), "nope", ""); !errors.Is(err, ErrRoomNotFound) {
		t.Fatalf("snapshot: got %v, want ErrRoomNotFound", err)
	}
}

func TestManagerSpawnsAndReusesActor(t *testing.T) {
	m, _ := newManagerFixture(t)
	ctx := context.Background()

	if err := m.Dispatch(ctx, "room-1", Action{Type: EventStart}); err != nil {
		t.Fatalf("start: %v", err)
	}
	snap, err := m.Snapshot(ctx, "room-1", "")
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if snap.State.Phase != internal.PhaseStarting {
		t.Fatalf("phase = %s, want starting", snap.State.Phase)
	}

	// The same actor serves the next action; a fresh one would still be waiting.
	if err := m.Dispatch(ctx, "room-1", Action{Type: EventStart}); !errors.Is(err, ErrInvalidPhase) {
		t.Fatalf("second start: got %v, want ErrInvalidPhase", err)
	}
}

func TestManagerResumesPersistedSession(t *testing.T) {
	deps := Deps{
		Broadcast: &fakeBroadcast{},
		Words:     &fakeWords{options: []string{"sun", "moon", "cloud"}},
		Store: &persistedStore{doc: &internal.GameSession{
			RoomID:       "room-1",
			CurrentPhase: internal.PhaseGameEnd,
			CurrentRound: 3,
			TotalRounds:  3,
			Scores:       map[string]int{"a": 120, "b": 60},
		}},
		Roster: &fakeRoster{},
		Log:    zerolog.Nop(),
	}
	m := NewSessionManager(context.Background(), deps, &fakeRooms{known: map[string]internal.RoomConfig{
		"room-1": internal.DefaultRoomConfig(),
	}})
	t.Cleanup(m.Shutdown)

	snap, err := m.Snapshot(context.Background(), "room-1", "")
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if snap.State.Phase != internal.PhaseGameEnd {
		t.Fatalf("phase = %s, want resumed game_end", snap.State.Phase)
	}
	if snap.State.Scores["a"] != 120 {
		t.Fatalf("scores not resumed: %v", snap.State.Scores)
	}
}

func TestManagerDropRoomClosesActor(t *testing.T) {
	m, _ := newManagerFixture(t)
	ctx := context.Background()
	if _, err := m.Snapshot(ctx, "room-1", ""); err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	m.DropRoom("room-1")

	// A fresh actor is spawned on the next touch.
	snap, err := m.Snapshot(ctx, "room-1", "")
	if err != nil {
		t.Fatalf("snapshot after drop: %v", err)
	}
	if snap.State.Phase != internal.PhaseWaiting {
		t.Fatalf("phase = %s, want waiting", snap.State.Phase)
	}
}

type persistedStore struct {
	doc *internal.GameSession
}

func (p *persistedStore) LoadSession(context.Context, string) (*internal.GameSession, error) {
	return p.doc, nil
}

func (p *persistedStore) SaveSession(_ context.Context, s *internal.GameSession) error {
	p.doc = s
	return nil
}
