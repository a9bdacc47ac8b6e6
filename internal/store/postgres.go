package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/sketchwars/sketchwars-backend/internal"
	"github.com/sketchwars/sketchwars-backend/internal/words"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

const schema = `
CREATE TABLE IF NOT EXISTS rooms (
	id         TEXT PRIMARY KEY,
	config     JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS game_sessions (
	room_id    TEXT PRIMARY KEY,
	doc        JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS words (
	id         SERIAL PRIMARY KEY,
	word       TEXT NOT NULL UNIQUE,
	difficulty TEXT NOT NULL DEFAULT '',
	category   TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS player_stats (
	player_id     TEXT PRIMARY KEY,
	games_played  INT NOT NULL DEFAULT 0,
	games_won     INT NOT NULL DEFAULT 0,
	total_score   BIGINT NOT NULL DEFAULT 0,
	best_score    INT NOT NULL DEFAULT 0,
	rounds_played INT NOT NULL DEFAULT 0,
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// Postgres is the durable store: rooms, session documents, the word table, and
// player stats. Session documents are stored as jsonb so the schema never lags
// the session model.
type Postgres struct {
	pool *pgxpool.Pool
	log  zerolog.Logger
}

func NewPostgres(ctx context.Context, databaseURL string, log zerolog.Logger) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Postgres{pool: pool, log: log.With().Str("component", "store").Logger()}, nil
}

func (p *Postgres) Close() { p.pool.Close() }

func (p *Postgres) EnsureSchema(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

func (p *Postgres) CreateRoom(ctx context.Context, roomID string, cfg internal.RoomConfig) error {
	_, err := p.pool.Exec(ctx, `
		INSERT INTO rooms (id, config) VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET config = EXCLUDED.config`,
		roomID, cfg)
	if err != nil {
		return fmt.Errorf("create room %s: %w", roomID, err)
	}
	return nil
}

func (p *Postgres) GetRoomConfig(ctx context.Context, roomID string) (internal.RoomConfig, error) {
	var cfg internal.RoomConfig
	err := p.pool.QueryRow(ctx, `SELECT config FROM rooms WHERE id = $1`, roomID).Scan(&cfg)
	if errors.Is(err, pgx.ErrNoRows) {
		return internal.RoomConfig{}, ErrNotFound
	}
	if err != nil {
		return internal.RoomConfig{}, fmt.Errorf("get room %s: %w", roomID, err)
	}
	return cfg, nil
}

func (p *Postgres) ListRooms(ctx context.Context) ([]internal.RoomInfo, error) {
	rows, err := p.pool.Query(ctx, `SELECT id, config, created_at FROM rooms ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	defer rows.Close()

	var infos []internal.RoomInfo
	for rows.Next() {
		var info internal.RoomInfo
		if err := rows.Scan(&info.ID, &info.Config, &info.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan room: %w", err)
		}
		infos = append(infos, info)
	}
	return infos, rows.Err()
}

// LoadSession returns (nil, nil) when no document exists for the room.
func (p *Postgres) LoadSession(ctx context.Context, roomID string) (*internal.GameSession, error) {
	var doc internal.GameSession
	err := p.pool.QueryRow(ctx, `SELECT doc FROM game_sessions WHERE room_id = $1`, roomID).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", roomID, err)
	}
	return &doc, nil
}

func (p *Postgres) SaveSession(ctx context.Context, session *internal.GameSession) error {
	_, err := p.pool.Exec(ctx, `
		INSERT INTO game_sessions (room_id, doc, updated_at) VALUES ($1, $2, now())
		ON CONFLICT (room_id) DO UPDATE SET doc = EXCLUDED.doc, updated_at = now()`,
		session.RoomID, session)
	if err != nil {
		return fmt.Errorf("save session %s: %w", session.RoomID, err)
	}
	return nil
}

// SeedWords loads bank entries into the word table, leaving existing rows
// untouched.
func (p *Postgres) SeedWords(ctx context.Context, entries []words.Entry) error {
	batch := &pgx.Batch{}
	for _, e := range entries {
		batch.Queue(`
			INSERT INTO words (word, difficulty, category) VALUES ($1, $2, $3)
			ON CONFLICT (word) DO NOTHING`,
			e.Text, string(e.Difficulty), e.Category)
	}
	if err := p.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("seed words: %w", err)
	}
	return nil
}

func (p *Postgres) RandomWords(ctx context.Context, count int, difficulty internal.WordDifficulty, categories []string) ([]string, error) {
	query := `SELECT word FROM words WHERE ($1 = '' OR difficulty = $1)
		AND (cardinality($2::text[]) = 0 OR category = ANY($2::text[]))
		ORDER BY random() LIMIT $3`
	if categories == nil {
		categories = []string{}
	}
	rows, err := p.pool.Query(ctx, query, string(difficulty), categories, count)
	if err != nil {
		return nil, fmt.Errorf("random words: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var w string
		if err := rows.Scan(&w); err != nil {
			return nil, fmt.Errorf("scan word: %w", err)
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

func (p *Postgres) CommitPostGameStats(ctx context.Context, playerID string, outcome internal.PlayerOutcome) error {
	won := 0
	if outcome.Won {
		won = 1
	}
	_, err := p.pool.Exec(ctx, `
		INSERT INTO player_stats (player_id, games_played, games_won, total_score, best_score, rounds_played, updated_at)
		VALUES ($1, 1, $2, $3, $3, $4, now())
		ON CONFLICT (player_id) DO UPDATE SET
			games_played  = player_stats.games_played + 1,
			games_won     = player_stats.games_won + $2,
			total_score   = player_stats.total_score + $3,
			best_score    = GREATEST(player_stats.best_score, $3),
			rounds_played = player_stats.rounds_played + $4,
			updated_at    = now()`,
		playerID, won, outcome.Score, outcome.Rounds)
	if err != nil {
		return fmt.Errorf("commit stats for %s: %w", playerID, err)
	}
	return nil
}

func (p *Postgres) GetPlayerStats(ctx context.Context, playerID string) (internal.PlayerStats, error) {
	var st internal.PlayerStats
	err := p.pool.QueryRow(ctx, `
		SELECT player_id, games_played, games_won, total_score, best_score, rounds_played, updated_at
		FROM player_stats WHERE player_id = $1`, playerID).
		Scan(&st.PlayerID, &st.GamesPlayed, &st.GamesWon, &st.TotalScore, &st.BestScore, &st.RoundsPlayed, &st.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return internal.PlayerStats{}, ErrNotFound
	}
	if err != nil {
		return internal.PlayerStats{}, fmt.Errorf("get stats for %s: %w", playerID, err)
	}
	return st, nil
}
