package server

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/sketchwars/sketchwars-backend/internal"
	"github.com/sketchwars/sketchwars-backend/internal/config"
	"github.com/sketchwars/sketchwars-backend/internal/game"
	"github.com/sketchwars/sketchwars-backend/internal/transport"
)

// Store is the slice of the persistence layer the HTTP surface needs.
type Store interface {
	CreateRoom(ctx context.Context, roomID string, cfg internal.RoomConfig) error
	GetRoomConfig(ctx context.Context, roomID string) (internal.RoomConfig, error)
	ListRooms(ctx context.Context) ([]internal.RoomInfo, error)
	GetPlayerStats(ctx context.Context, playerID string) (internal.PlayerStats, error)
}

type Server struct {
	cfg      config.Config
	store    Store
	sessions *game.SessionManager
	registry *transport.Registry
	ws       *transport.Handler
	log      zerolog.Logger
}

func New(cfg config.Config, store Store, sessions *game.SessionManager, registry *transport.Registry, ws *transport.Handler, log zerolog.Logger) *Server {
	return &Server{
		cfg:      cfg,
		store:    store,
		sessions: sessions,
		registry: registry,
		ws:       ws,
		log:      log.With().Str("component", "server").Logger(),
	}
}

// HTTPServer builds the http.Server with sane timeouts. Idle is kept long for
// websocket traffic.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:         ":" + s.cfg.Port,
		Handler:      s.RegisterRoutes(),
		IdleTimeout:  5 * time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}
