package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/sketchwars/sketchwars-backend/internal"
)

type Config struct {
	Port        string
	DatabaseURL string
	WordBankCSV string

	GraceWindow       time.Duration
	HeartbeatInterval time.Duration
}

// Load reads configuration from the environment, honoring a local .env file
// when present.
func Load() Config {
	_ = godotenv.Load()

	c := Config{}
	c.Port = getenv("PORT", "8080")
	c.DatabaseURL = os.Getenv("DATABASE_URL")
	c.WordBankCSV = os.Getenv("WORD_BANK_CSV")
	c.GraceWindow = getSeconds("GRACE_WINDOW_SECONDS", internal.DefaultGraceWindow)
	c.HeartbeatInterval = getSeconds("HEARTBEAT_SECONDS", internal.DefaultHeartbeatInterval)
	return c
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getSeconds(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return time.Duration(n) * time.Second
}
