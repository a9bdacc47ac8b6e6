package game

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"github.com/sketchwars/sketchwars-backend/internal"
)

// SessionManager owns the live session actors, one per room. Actors are created
// lazily on the first action for a room and torn down when the room empties.
type SessionManager struct {
	mu       sync.Mutex
	sessions map[string]*Session

	ctx   context.Context
	deps  Deps
	rooms RoomConfigSource
	log   zerolog.Logger
}

func NewSessionManager(ctx context.Context, deps Deps, rooms RoomConfigSource) *SessionManager {
	return &SessionManager{
		sessions: make(map[string]*Session),
		ctx:      ctx,
		deps:     deps,
		rooms:    rooms,
		log:      deps.Log.With().Str("component", "session-manager").Logger(),
	}
}

// ensure returns the room's actor, spawning one if needed. The room must be
// known to the config source; a persisted session document, when present, is
// resumed rather than replaced.
func (m *SessionManager) ensure(ctx context.Context, roomID string) (*Session, error) {
	m.mu.Lock()
	if s, ok := m.sessions[roomID]; ok {
		m.mu.Unlock()
		return s, nil
	}
	m.mu.Unlock()

	cfg, err := m.rooms.GetRoomConfig(ctx, roomID)
	if err != nil {
		return nil, ErrRoomNotFound
	}
	var existing *internal.GameSession
	if m.deps.Store != nil {
		doc, err := m.deps.Store.LoadSession(ctx, roomID)
		if err != nil {
			m.log.Warn().Err(err).Str("room", roomID).Msg("loading persisted session failed, starting fresh")
		} else {
			existing = doc
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[roomID]; ok {
		return s, nil
	}
	s := NewSession(m.ctx, roomID, cfg, existing, m.deps)
	m.sessions[roomID] = s
	m.log.Info().Str("room", roomID).Msg("session spawned")
	return s, nil
}

// Dispatch routes an action to the room's actor and reports its verdict.
func (m *SessionManager) Dispatch(ctx context.Context, roomID string, act Action) error {
	s, err := m.ensure(ctx, roomID)
	if err != nil {
		return err
	}
	return s.Do(ctx, act)
}

// Snapshot returns the room's session view for one player.
func (m *SessionManager) Snapshot(ctx context.Context, roomID, viewerID string) (internal.SessionSnapshot, error) {
	s, err := m.ensure(ctx, roomID)
	if err != nil {
		return internal.SessionSnapshot{}, err
	}
	return s.Snapshot(ctx, viewerID)
}

// PlayerEvicted tells a room's actor that the grace window expired for a
// player. Rooms without a live actor have nothing to react to.
func (m *SessionManager) PlayerEvicted(roomID, playerID string) {
	m.mu.Lock()
	s, ok := m.sessions[roomID]
	m.mu.Unlock()
	if !ok {
		return
	}
	if err := s.Do(m.ctx, Action{Type: EventPlayerEvicted, ActorID: playerID}); err != nil {
		m.log.Warn().Err(err).Str("room", roomID).Str("player", playerID).Msg("eviction dispatch failed")
	}
}

// DropRoom tears down the room's actor. The persisted document survives, so a
// later join resumes where the room left off.
func (m *SessionManager) DropRoom(roomID string) {
	m.mu.Lock()
	s, ok := m.sessions[roomID]
	delete(m.sessions, roomID)
	m.mu.Unlock()
	if ok {
		s.Close()
		m.log.Info().Str("room", roomID).Msg("session dropped")
	}
}

// Shutdown closes every live actor.
func (m *SessionManager) Shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, s := range m.sessions {
		s.Close()
		delete(m.sessions, id)
	}
}
