package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/sketchwars/sketchwars-backend/internal"
	"github.com/sketchwars/sketchwars-backend/internal/game"
	"github.com/sketchwars/sketchwars-backend/internal/store"
	"github.com/sketchwars/sketchwars-backend/internal/utils"
)

func (s *Server) RegisterRoutes() http.Handler {
	r := mux.NewRouter()

	r.Use(s.corsMiddleware)

	r.HandleFunc("/healthz", s.healthHandler).Methods(http.MethodGet)

	r.HandleFunc("/rooms", s.createRoom).Methods(http.MethodPost)
	r.HandleFunc("/rooms-available", s.getRoomToJoin).Methods(http.MethodGet)
	r.HandleFunc("/rooms/{roomId}/session", s.getSession).Methods(http.MethodGet)
	r.HandleFunc("/players/{playerId}/stats", s.getPlayerStats).Methods(http.MethodGet)

	r.HandleFunc("/ws/{roomId}", s.ws.ServeWS)

	return r
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS, PATCH")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Authorization, Content-Type")
		w.Header().Set("Access-Control-Allow-Credentials", "false")

		// Websocket upgrades bypass the preflight handling below.
		if strings.ToLower(r.Header.Get("Upgrade")) == "websocket" {
			next.ServeHTTP(w, r)
			return
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type createRoomRequest struct {
	RoomID string               `json:"room_id,omitempty"`
	Config *internal.RoomConfig `json:"config,omitempty"`
}

// createRoom registers a room, generating an id when none is supplied. Config
// fields left at zero fall back to defaults.
func (s *Server) createRoom(w http.ResponseWriter, r *http.Request) {
	var req createRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed request body"})
		return
	}

	cfg := internal.DefaultRoomConfig()
	if req.Config != nil {
		if req.Config.MaxPlayers > 0 {
			cfg.MaxPlayers = req.Config.MaxPlayers
		}
		if req.Config.RoundTimeSeconds > 0 {
			cfg.RoundTimeSeconds = req.Config.RoundTimeSeconds
		}
		if req.Config.TotalRounds > 0 {
			cfg.TotalRounds = req.Config.TotalRounds
		}
		cfg.Categories = req.Config.Categories
		if req.Config.Difficulty != "" {
			cfg.Difficulty = req.Config.Difficulty
		}
	}
	roomID := req.RoomID
	if roomID == "" {
		roomID = utils.GenerateID(6)
	}

	if err := s.store.CreateRoom(r.Context(), roomID, cfg); err != nil {
		s.log.Error().Err(err).Str("room", roomID).Msg("room creation failed")
		s.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "could not create room"})
		return
	}
	s.writeJSON(w, http.StatusCreated, internal.RoomInfo{ID: roomID, Config: cfg})
}

// getRoomToJoin returns a room that still has space and has not started.
func (s *Server) getRoomToJoin(w http.ResponseWriter, r *http.Request) {
	rooms, err := s.store.ListRooms(r.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("listing rooms failed")
		s.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "could not list rooms"})
		return
	}

	for _, room := range rooms {
		if s.registry.RoomSize(room.ID) >= room.Config.MaxPlayers {
			continue
		}
		snap, err := s.sessions.Snapshot(r.Context(), room.ID, "")
		if err != nil {
			continue
		}
		if snap.State.Phase == internal.PhaseWaiting {
			s.writeJSON(w, http.StatusOK, map[string]string{"room_id": room.ID})
			return
		}
	}
	s.writeJSON(w, http.StatusNotFound, map[string]string{"error": "no joinable rooms available"})
}

// getSession exposes the session state read-only. The secret word stays hidden
// unless the requesting player_id is the current drawer.
func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	roomID := mux.Vars(r)["roomId"]
	viewerID := r.URL.Query().Get("player_id")

	snap, err := s.sessions.Snapshot(r.Context(), roomID, viewerID)
	if err != nil {
		if errors.Is(err, game.ErrRoomNotFound) {
			s.writeJSON(w, http.StatusNotFound, map[string]string{"error": "room not found"})
			return
		}
		s.log.Error().Err(err).Str("room", roomID).Msg("session snapshot failed")
		s.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "could not read session"})
		return
	}
	s.writeJSON(w, http.StatusOK, snap)
}

func (s *Server) getPlayerStats(w http.ResponseWriter, r *http.Request) {
	playerID := mux.Vars(r)["playerId"]
	st, err := s.store.GetPlayerStats(r.Context(), playerID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.writeJSON(w, http.StatusNotFound, map[string]string{"error": "no stats for player"})
			return
		}
		s.log.Error().Err(err).Str("player", playerID).Msg("stats lookup failed")
		s.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "could not read stats"})
		return
	}
	s.writeJSON(w, http.StatusOK, st)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error().Err(err).Msg("encoding response failed")
	}
}
