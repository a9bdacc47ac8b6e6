package game

import (
	"context"
	"time"

	"github.com/sketchwars/sketchwars-backend/internal"
)

// Broadcaster fans game events out to a room or a single player. Unicast
// delivery to an unreachable player is the implementation's problem (queued for
// replay); the session never blocks on it.
type Broadcaster interface {
	ToRoom(roomID, event string, payload any)
	ToRoomExcept(roomID, exceptPlayerID, event string, payload any)
	ToPlayer(playerID, event string, payload any)
}

// WordProvider supplies word candidates for the drawer to choose from. A
// failing or empty result is recoverable: the session falls back to its
// embedded bank and, past that, to a fixed word.
type WordProvider interface {
	RandomWords(ctx context.Context, count int, difficulty internal.WordDifficulty, categories []string) ([]string, error)
}

// SessionStore persists session documents. LoadSession returns (nil, nil) when
// no document exists for the room.
type SessionStore interface {
	LoadSession(ctx context.Context, roomID string) (*internal.GameSession, error)
	SaveSession(ctx context.Context, session *internal.GameSession) error
}

// RoomConfigSource exposes the room service's game settings.
type RoomConfigSource interface {
	GetRoomConfig(ctx context.Context, roomID string) (internal.RoomConfig, error)
}

// StatsSink receives fire-and-forget per-player outcomes after game end.
type StatsSink interface {
	CommitPostGameStats(ctx context.Context, playerID string, outcome internal.PlayerOutcome) error
}

// Roster answers membership questions about a room: who is present, who is
// ready, and readiness reset on game reset.
type Roster interface {
	ActivePlayers(roomID string) []internal.RoomMember
	ReadyPlayers(roomID string) []string
	ResetReady(roomID string)
}

// Timings are the fixed-length phases. Drawing and guessing use the room
// config's round time instead.
type Timings struct {
	StartingCountdown time.Duration
	WordSelection     time.Duration
	RoundEnd          time.Duration
}

func DefaultTimings() Timings {
	return Timings{
		StartingCountdown: internal.StartingCountdown,
		WordSelection:     internal.WordSelectionTime,
		RoundEnd:          internal.RoundEndTime,
	}
}
