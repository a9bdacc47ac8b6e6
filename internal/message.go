package internal

import (
	"encoding/json"
	"time"
)

// Message is the wire envelope for everything sent over the websocket, in both
// directions.
type Message[T any] struct {
	Type string `json:"type"`
	Data T      `json:"data"`
}

// Outbound event names.
const (
	EvtStateChanged     = "state_changed"
	EvtWordOptions      = "word_options"
	EvtWordAssigned     = "word_assigned"
	EvtTimerUpdate      = "timer_update"
	EvtDrawingSubmitted = "drawing_submitted"
	EvtStroke           = "stroke"
	EvtScoreUpdated     = "score_updated"
	EvtGuessResult      = "guess_result"
	EvtGameEnded        = "game_ended"
	EvtPlayerJoined     = "player_joined"
	EvtPlayerLeft       = "player_left"
	EvtPlayerReady      = "player_ready"
	EvtPlayerIdle       = "player_idle"
	EvtChatMessage      = "chat_message"
	EvtNotification     = "notification"
	EvtReconnected      = "reconnected"
	EvtSessionSnapshot  = "session_snapshot"
	EvtHeartbeat        = "heartbeat"
	EvtError            = "error"
)

// Inbound action names accepted from clients. "timer_elapsed" is deliberately
// absent: timer expiry is an internal event only.
const (
	ActStart         = "start"
	ActSelectWord    = "select_word"
	ActSubmitDrawing = "submit_drawing"
	ActSubmitGuess   = "submit_guess"
	ActNextRound     = "next_round"
	ActEndGame       = "end_game"
	ActResetGame     = "reset_game"
	ActPause         = "pause"
	ActResume        = "resume"
	ActReady         = "ready"
	ActChat          = "chat"
	ActStroke        = "stroke"
	ActPong          = "pong"
)

// GameStateData is the room-wide session snapshot. The secret word appears only
// masked; RevealedWord is set once the round is over.
type GameStateData struct {
	RoomID        string         `json:"room_id"`
	Phase         GamePhase      `json:"phase"`
	Round         int            `json:"round"`
	TotalRounds   int            `json:"total_rounds"`
	TimeRemaining int            `json:"time_remaining"`
	DrawerID      string         `json:"drawer_id,omitempty"`
	Scores        map[string]int `json:"scores"`
	MaskedWord    string         `json:"masked_word,omitempty"`
	WordLength    int            `json:"word_length,omitempty"`
	RevealedWord  string         `json:"revealed_word,omitempty"`
}

// SessionSnapshot is the full-state resend used on reconnection. Word and
// WordOptions are populated only when the viewer is the current drawer.
type SessionSnapshot struct {
	State       GameStateData `json:"state"`
	Word        string        `json:"word,omitempty"`
	WordOptions []string      `json:"word_options,omitempty"`
	Strokes     []StrokeBatch `json:"strokes,omitempty"`
}

type WordOptionsData struct {
	RoomID    string   `json:"room_id"`
	Options   []string `json:"options"`
	TimeLimit int      `json:"time_limit"`
}

type WordAssignedData struct {
	RoomID       string `json:"room_id"`
	Word         string `json:"word"`
	AutoSelected bool   `json:"auto_selected"`
	TimeLimit    int    `json:"time_limit"`
}

type TimerUpdateData struct {
	RoomID        string    `json:"room_id"`
	Phase         GamePhase `json:"phase"`
	TimeRemaining int       `json:"time_remaining"`
}

type DrawingSubmittedData struct {
	RoomID      string          `json:"room_id"`
	PlayerID    string          `json:"player_id"`
	Payload     json.RawMessage `json:"payload,omitempty"`
	Round       int             `json:"round"`
	Placeholder bool            `json:"placeholder,omitempty"`
}

type GuessResultData struct {
	RoomID   string `json:"room_id"`
	PlayerID string `json:"player_id"`
	Guess    string `json:"guess,omitempty"`
	Correct  bool   `json:"correct"`
	Score    int    `json:"score"`
	Round    int    `json:"round"`
}

type ScoreUpdatedData struct {
	RoomID      string         `json:"room_id"`
	Scores      map[string]int `json:"scores"`
	ScorerID    string         `json:"scorer_id"`
	Points      int            `json:"points"`
	DrawerID    string         `json:"drawer_id"`
	DrawerBonus int            `json:"drawer_bonus"`
}

type GameEndedData struct {
	RoomID       string         `json:"room_id"`
	Ranking      []RankedPlayer `json:"ranking"`
	RoundsPlayed int            `json:"rounds_played"`
}

type PlayerJoinedData struct {
	RoomID      string `json:"room_id"`
	PlayerID    string `json:"player_id"`
	Username    string `json:"username"`
	PlayerCount int    `json:"player_count"`
}

type PlayerLeftData struct {
	RoomID      string `json:"room_id"`
	PlayerID    string `json:"player_id"`
	Username    string `json:"username"`
	PlayerCount int    `json:"player_count"`
}

type PlayerReadyData struct {
	RoomID     string `json:"room_id"`
	PlayerID   string `json:"player_id"`
	Ready      bool   `json:"ready"`
	ReadyCount int    `json:"ready_count"`
	CanStart   bool   `json:"can_start"`
}

type PlayerIdleData struct {
	RoomID   string `json:"room_id"`
	PlayerID string `json:"player_id"`
}

type ChatMessageData struct {
	RoomID   string    `json:"room_id"`
	PlayerID string    `json:"player_id"`
	Username string    `json:"username"`
	Text     string    `json:"text"`
	SentAt   time.Time `json:"sent_at"`
}

type NotificationData struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ReconnectedData struct {
	RoomID   string `json:"room_id"`
	PlayerID string `json:"player_id"`
	Queued   int    `json:"queued"`
}

type HeartbeatData struct {
	SentAt int64 `json:"sent_at"`
}

type ErrorData struct {
	RoomID  string `json:"room_id,omitempty"`
	Message string `json:"message"`
	Code    string `json:"code"`
}
