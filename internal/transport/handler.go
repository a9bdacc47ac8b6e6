package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/sketchwars/sketchwars-backend/internal"
	"github.com/sketchwars/sketchwars-backend/internal/game"
	"github.com/sketchwars/sketchwars-backend/internal/utils"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handler owns the websocket endpoint: join and reconnect handshakes, the
// per-connection read loop, and routing of client actions into the game layer.
type Handler struct {
	Sessions  *game.SessionManager
	Registry  *Registry
	Broadcast *Broadcaster
	Queue     *Queue
	Rooms     game.RoomConfigSource
	Log       zerolog.Logger
}

// ServeWS handles GET /ws/{roomId}?username=...&player_id=... . Passing a
// player_id that is inside its grace window resumes that player's membership.
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	roomID := mux.Vars(r)["roomId"]
	username := r.URL.Query().Get("username")
	if username == "" {
		username = "Anonymous"
	}
	playerID := r.URL.Query().Get("player_id")
	rejoining := playerID != "" && h.Registry.Known(playerID)
	if playerID == "" {
		playerID = utils.GenerateID(8)
	}

	cfg, err := h.Rooms.GetRoomConfig(r.Context(), roomID)
	if err != nil {
		http.Error(w, "room not found", http.StatusNotFound)
		return
	}
	if !rejoining && h.Registry.RoomSize(roomID) >= cfg.MaxPlayers {
		http.Error(w, "room is full", http.StatusConflict)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.Log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	sink := newWSSink(conn)
	queued := h.Queue.Len(playerID)
	reconnected := h.Registry.Register(roomID, playerID, username, sink)

	if reconnected {
		sink.Send(internal.EvtReconnected, internal.ReconnectedData{
			RoomID:   roomID,
			PlayerID: playerID,
			Queued:   queued,
		})
		h.Broadcast.Flush(playerID)
	} else {
		sink.Send(internal.EvtPlayerJoined, internal.PlayerJoinedData{
			RoomID:      roomID,
			PlayerID:    playerID,
			Username:    username,
			PlayerCount: h.Registry.RoomSize(roomID),
		})
		h.Broadcast.ToRoomExcept(roomID, playerID, internal.EvtPlayerJoined, internal.PlayerJoinedData{
			RoomID:      roomID,
			PlayerID:    playerID,
			Username:    username,
			PlayerCount: h.Registry.RoomSize(roomID),
		})
	}

	// Everyone gets the full state on (re)join so a refresh mid-round lands on
	// the current phase, strokes included.
	if snap, err := h.Sessions.Snapshot(r.Context(), roomID, playerID); err == nil {
		sink.Send(internal.EvtSessionSnapshot, snap)
	}

	go h.readLoop(conn, sink, roomID, playerID, username)
}

func (h *Handler) readLoop(conn *websocket.Conn, sink Sink, roomID, playerID, username string) {
	defer func() {
		conn.Close()
		h.Registry.Disconnect(playerID, sink)
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			h.Log.Debug().Err(err).Str("player", playerID).Msg("read loop ended")
			return
		}
		var msg internal.Message[json.RawMessage]
		if err := json.Unmarshal(raw, &msg); err != nil {
			h.Log.Debug().Err(err).Str("player", playerID).Msg("malformed message dropped")
			continue
		}
		h.Registry.Touch(playerID)
		h.route(roomID, playerID, username, msg)
	}
}

func (h *Handler) route(roomID, playerID, username string, msg internal.Message[json.RawMessage]) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var err error
	switch msg.Type {
	case internal.ActPong:
		var hb internal.HeartbeatData
		if json.Unmarshal(msg.Data, &hb) == nil && hb.SentAt > 0 {
			h.Registry.RecordLatency(playerID, time.Since(time.UnixMilli(hb.SentAt)))
		}
		return
	case internal.ActReady:
		var ready bool
		if json.Unmarshal(msg.Data, &ready) != nil {
			return
		}
		h.handleReady(roomID, playerID, ready)
		return
	case internal.ActStart:
		err = h.Sessions.Dispatch(ctx, roomID, game.Action{Type: game.EventStart, ActorID: playerID})
	case internal.ActSelectWord:
		var word string
		if json.Unmarshal(msg.Data, &word) != nil {
			return
		}
		err = h.Sessions.Dispatch(ctx, roomID, game.Action{Type: game.EventSelectWord, ActorID: playerID, Word: word})
	case internal.ActSubmitDrawing:
		err = h.Sessions.Dispatch(ctx, roomID, game.Action{Type: game.EventSubmitDrawing, ActorID: playerID, Drawing: msg.Data})
	case internal.ActSubmitGuess:
		var guess string
		if json.Unmarshal(msg.Data, &guess) != nil {
			return
		}
		err = h.Sessions.Dispatch(ctx, roomID, game.Action{Type: game.EventSubmitGuess, ActorID: playerID, Guess: guess})
	case internal.ActChat:
		var text string
		if json.Unmarshal(msg.Data, &text) != nil {
			return
		}
		err = h.Sessions.Dispatch(ctx, roomID, game.Action{Type: game.EventChat, ActorID: playerID, Username: username, Text: text})
	case internal.ActStroke:
		var batch internal.StrokeBatch
		if json.Unmarshal(msg.Data, &batch) != nil {
			return
		}
		err = h.Sessions.Dispatch(ctx, roomID, game.Action{Type: game.EventStroke, ActorID: playerID, Stroke: &batch})
	case internal.ActNextRound:
		err = h.Sessions.Dispatch(ctx, roomID, game.Action{Type: game.EventNextRound, ActorID: playerID})
	case internal.ActEndGame:
		err = h.Sessions.Dispatch(ctx, roomID, game.Action{Type: game.EventEndGame, ActorID: playerID})
	case internal.ActResetGame:
		err = h.Sessions.Dispatch(ctx, roomID, game.Action{Type: game.EventReset, ActorID: playerID})
	case internal.ActPause:
		err = h.Sessions.Dispatch(ctx, roomID, game.Action{Type: game.EventPause, ActorID: playerID})
	case internal.ActResume:
		err = h.Sessions.Dispatch(ctx, roomID, game.Action{Type: game.EventResume, ActorID: playerID})
	default:
		h.Log.Debug().Str("type", msg.Type).Str("player", playerID).Msg("unknown action dropped")
		return
	}

	if err != nil {
		h.Broadcast.ToPlayer(playerID, internal.EvtNotification, internal.NotificationData{
			Message: err.Error(),
			Code:    game.RejectionCode(err),
		})
	}
}

func (h *Handler) handleReady(roomID, playerID string, ready bool) {
	readyCount, total := h.Registry.SetReady(playerID, ready)
	h.Broadcast.ToRoom(roomID, internal.EvtPlayerReady, internal.PlayerReadyData{
		RoomID:     roomID,
		PlayerID:   playerID,
		Ready:      ready,
		ReadyCount: readyCount,
		CanStart:   readyCount >= internal.MinPlayersToStart && readyCount == total,
	})
}
