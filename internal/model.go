package internal

import (
	"encoding/json"
	"time"
)

const (
	MinPlayersToStart  = 2
	DefaultMaxPlayers  = 8
	DefaultTotalRounds = 3
	DefaultRoundTime   = 90 * time.Second

	StartingCountdown = 5 * time.Second
	WordSelectionTime = 15 * time.Second
	RoundEndTime      = 8 * time.Second

	WordOptionCount  = 3
	DrawerGuessBonus = 50
	MinGuessScore    = 10

	// FallbackWord keeps a round playable when the word supply yields nothing.
	FallbackWord = "star"

	DefaultGraceWindow       = 60 * time.Second
	DefaultHeartbeatInterval = 20 * time.Second
)

type GamePhase string

const (
	PhaseWaiting       GamePhase = "waiting"
	PhaseStarting      GamePhase = "starting"
	PhaseWordSelection GamePhase = "word_selection"
	PhaseDrawing       GamePhase = "drawing"
	PhaseGuessing      GamePhase = "guessing"
	PhaseRoundEnd      GamePhase = "round_end"
	PhaseGameEnd       GamePhase = "game_end"
	PhasePaused        GamePhase = "paused"
	PhaseError         GamePhase = "error"
)

type WordDifficulty string

const (
	DifficultyAny    WordDifficulty = ""
	DifficultyEasy   WordDifficulty = "easy"
	DifficultyMedium WordDifficulty = "medium"
	DifficultyHard   WordDifficulty = "hard"
)

type SessionError struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

// DrawingRecord is one submitted (or placeholder) drawing for a round.
type DrawingRecord struct {
	PlayerID    string          `json:"player_id"`
	Payload     json.RawMessage `json:"payload,omitempty"`
	Word        string          `json:"word"`
	Round       int             `json:"round"`
	Placeholder bool            `json:"placeholder,omitempty"`
	SubmittedAt time.Time       `json:"submitted_at"`
}

type GuessRecord struct {
	PlayerID  string    `json:"player_id"`
	Guess     string    `json:"guess"`
	Correct   bool      `json:"correct"`
	Score     int       `json:"score"`
	Round     int       `json:"round"`
	GuessedAt time.Time `json:"guessed_at"`
}

// GameSession is the durable per-room session document. While a game is live it
// is owned exclusively by that room's session actor; everything else sees
// read-only snapshots. CurrentWord is persisted but never sent to non-drawer
// clients, and WordOptions exist only between entering word selection and a
// word being chosen.
type GameSession struct {
	RoomID          string          `json:"room_id"`
	CurrentPhase    GamePhase       `json:"current_phase"`
	PreviousPhase   GamePhase       `json:"previous_phase,omitempty"`
	CurrentRound    int             `json:"current_round"`
	TotalRounds     int             `json:"total_rounds"`
	TimeRemaining   int             `json:"time_remaining"`
	CurrentDrawerID string          `json:"current_drawer_id,omitempty"`
	CurrentWord     string          `json:"current_word,omitempty"`
	WordOptions     []string        `json:"word_options,omitempty"`
	Scores          map[string]int  `json:"scores"`
	Drawings        []DrawingRecord `json:"drawings"`
	Guesses         []GuessRecord   `json:"guesses"`
	StartedAt       time.Time       `json:"started_at"`
	EndedAt         time.Time       `json:"ended_at,omitempty"`
	LastUpdated     time.Time       `json:"last_updated"`
	Error           *SessionError   `json:"error,omitempty"`
}

// RoomConfig is the room's game settings, supplied by the room service.
type RoomConfig struct {
	MaxPlayers       int            `json:"max_players"`
	RoundTimeSeconds int            `json:"round_time_seconds"`
	TotalRounds      int            `json:"total_rounds"`
	Categories       []string       `json:"categories"`
	Difficulty       WordDifficulty `json:"difficulty"`
}

func DefaultRoomConfig() RoomConfig {
	return RoomConfig{
		MaxPlayers:       DefaultMaxPlayers,
		RoundTimeSeconds: int(DefaultRoundTime.Seconds()),
		TotalRounds:      DefaultTotalRounds,
		Difficulty:       DifficultyAny,
	}
}

// RoomMember is a player's membership entry in a room, independent of whether a
// transport connection is currently alive for them.
type RoomMember struct {
	PlayerID  string    `json:"player_id"`
	Username  string    `json:"username"`
	Ready     bool      `json:"ready"`
	Connected bool      `json:"connected"`
	JoinedAt  time.Time `json:"joined_at"`
}

// ConnectionEntry describes one live (or recently lost) transport session.
type ConnectionEntry struct {
	ID           string        `json:"id"`
	PlayerID     string        `json:"player_id"`
	Username     string        `json:"username"`
	RoomID       string        `json:"room_id,omitempty"`
	Connected    bool          `json:"connected"`
	LastActivity time.Time     `json:"last_activity"`
	Latency      time.Duration `json:"latency"`
}

// QueuedMessage is a unicast that could not be delivered because its target had
// no reachable connection. Replayed in enqueue order on reconnection.
type QueuedMessage struct {
	PlayerID   string    `json:"player_id"`
	Event      string    `json:"event"`
	Payload    any       `json:"payload"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

type RankedPlayer struct {
	PlayerID string `json:"player_id"`
	Score    int    `json:"score"`
	Rank     int    `json:"rank"`
}

// PlayerOutcome is the per-player result committed to stats after game end.
type PlayerOutcome struct {
	RoomID string `json:"room_id"`
	Score  int    `json:"score"`
	Rank   int    `json:"rank"`
	Won    bool   `json:"won"`
	Rounds int    `json:"rounds"`
}

// PlayerStats is a player's lifetime record, accumulated from game outcomes.
type PlayerStats struct {
	PlayerID     string    `json:"player_id"`
	GamesPlayed  int       `json:"games_played"`
	GamesWon     int       `json:"games_won"`
	TotalScore   int64     `json:"total_score"`
	BestScore    int       `json:"best_score"`
	RoundsPlayed int       `json:"rounds_played"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// RoomInfo pairs a room with its config for listing endpoints.
type RoomInfo struct {
	ID        string     `json:"id"`
	Config    RoomConfig `json:"config"`
	CreatedAt time.Time  `json:"created_at"`
}
