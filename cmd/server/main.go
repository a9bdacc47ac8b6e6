package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/sketchwars/sketchwars-backend/internal"
	"github.com/sketchwars/sketchwars-backend/internal/config"
	"github.com/sketchwars/sketchwars-backend/internal/game"
	"github.com/sketchwars/sketchwars-backend/internal/server"
	"github.com/sketchwars/sketchwars-backend/internal/store"
	"github.com/sketchwars/sketchwars-backend/internal/transport"
	"github.com/sketchwars/sketchwars-backend/internal/words"
)

// storage is everything the server and game layers need from persistence.
// Both the postgres and in-memory stores satisfy it.
type storage interface {
	server.Store
	game.SessionStore
	game.WordProvider
	game.StatsSink
}

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bank := words.Builtin()
	if cfg.WordBankCSV != "" {
		loaded, err := words.LoadCSV(cfg.WordBankCSV)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.WordBankCSV).Msg("loading word bank failed")
		}
		bank = loaded
		log.Info().Int("words", bank.Size()).Str("path", cfg.WordBankCSV).Msg("word bank loaded")
	}

	var st storage
	if cfg.DatabaseURL != "" {
		pg, err := store.NewPostgres(ctx, cfg.DatabaseURL, log)
		if err != nil {
			log.Fatal().Err(err).Msg("connecting to database failed")
		}
		defer pg.Close()
		if err := pg.EnsureSchema(ctx); err != nil {
			log.Fatal().Err(err).Msg("preparing schema failed")
		}
		if err := pg.SeedWords(ctx, bank.Entries()); err != nil {
			log.Warn().Err(err).Msg("seeding word table failed")
		}
		st = pg
		log.Info().Msg("using postgres store")
	} else {
		st = store.NewMemory(bank)
		log.Warn().Msg("DATABASE_URL not set, using in-memory store")
	}

	registry := transport.NewRegistry(cfg.GraceWindow, cfg.HeartbeatInterval, log)
	queue := transport.NewQueue()
	broadcaster := transport.NewBroadcaster(registry, queue, log)

	sessions := game.NewSessionManager(ctx, game.Deps{
		Broadcast: broadcaster,
		Words:     st,
		Store:     st,
		Stats:     st,
		Roster:    registry,
		Bank:      bank,
		Timings:   game.DefaultTimings(),
		Log:       log,
	}, st)

	registry.OnEvict = func(roomID, playerID string) {
		queue.Purge(playerID)
		sessions.PlayerEvicted(roomID, playerID)
		broadcaster.ToRoom(roomID, internal.EvtPlayerLeft, internal.PlayerLeftData{
			RoomID:      roomID,
			PlayerID:    playerID,
			PlayerCount: registry.RoomSize(roomID),
		})
		if registry.RoomSize(roomID) == 0 {
			sessions.DropRoom(roomID)
		}
	}
	registry.OnIdle = func(roomID, playerID string) {
		broadcaster.ToRoom(roomID, internal.EvtPlayerIdle, internal.PlayerIdleData{
			RoomID:   roomID,
			PlayerID: playerID,
		})
	}
	go registry.RunHeartbeat(ctx)

	ws := &transport.Handler{
		Sessions:  sessions,
		Registry:  registry,
		Broadcast: broadcaster,
		Queue:     queue,
		Rooms:     st,
		Log:       log,
	}

	srv := server.New(cfg, st, sessions, registry, ws, log).HTTPServer()

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info().Msg("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	sessions.Shutdown()
	cancel()
}
