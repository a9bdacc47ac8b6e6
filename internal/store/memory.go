package store

import (
	"context"
	"sync"
	"time"

	"github.com/sketchwars/sketchwars-backend/internal"
	"github.com/sketchwars/sketchwars-backend/internal/words"
)

// Memory is the database-free store used when no DATABASE_URL is configured.
// Sessions survive room teardown but not a process restart.
type Memory struct {
	mu       sync.RWMutex
	rooms    map[string]internal.RoomInfo
	sessions map[string]internal.GameSession
	stats    map[string]internal.PlayerStats
	bank     *words.Bank
}

func NewMemory(bank *words.Bank) *Memory {
	if bank == nil {
		bank = words.Builtin()
	}
	return &Memory{
		rooms:    make(map[string]internal.RoomInfo),
		sessions: make(map[string]internal.GameSession),
		stats:    make(map[string]internal.PlayerStats),
		bank:     bank,
	}
}

func (m *Memory) CreateRoom(_ context.Context, roomID string, cfg internal.RoomConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	info, ok := m.rooms[roomID]
	if !ok {
		info = internal.RoomInfo{ID: roomID, CreatedAt: time.Now().UTC()}
	}
	info.Config = cfg
	m.rooms[roomID] = info
	return nil
}

func (m *Memory) GetRoomConfig(_ context.Context, roomID string) (internal.RoomConfig, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	info, ok := m.rooms[roomID]
	if !ok {
		return internal.RoomConfig{}, ErrNotFound
	}
	return info.Config, nil
}

func (m *Memory) ListRooms(context.Context) ([]internal.RoomInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	infos := make([]internal.RoomInfo, 0, len(m.rooms))
	for _, info := range m.rooms {
		infos = append(infos, info)
	}
	return infos, nil
}

func (m *Memory) LoadSession(_ context.Context, roomID string) (*internal.GameSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.sessions[roomID]
	if !ok {
		return nil, nil
	}
	return &doc, nil
}

func (m *Memory) SaveSession(_ context.Context, session *internal.GameSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[session.RoomID] = *session
	return nil
}

func (m *Memory) RandomWords(_ context.Context, count int, difficulty internal.WordDifficulty, categories []string) ([]string, error) {
	return m.bank.Pick(count, difficulty, categories), nil
}

func (m *Memory) CommitPostGameStats(_ context.Context, playerID string, outcome internal.PlayerOutcome) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	st := m.stats[playerID]
	st.PlayerID = playerID
	st.GamesPlayed++
	if outcome.Won {
		st.GamesWon++
	}
	st.TotalScore += int64(outcome.Score)
	if outcome.Score > st.BestScore {
		st.BestScore = outcome.Score
	}
	st.RoundsPlayed += outcome.Rounds
	st.UpdatedAt = time.Now().UTC()
	m.stats[playerID] = st
	return nil
}

func (m *Memory) GetPlayerStats(_ context.Context, playerID string) (internal.PlayerStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	st, ok := m.stats[playerID]
	if !ok {
		return internal.PlayerStats{}, ErrNotFound
	}
	return st, nil
}
