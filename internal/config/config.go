// Package config loads server settings from the environment, with an optional
// .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/vodiniz/buracao/engine"
	"github.com/vodiniz/buracao/internal/database"
)

// Config is the full server configuration.
type Config struct {
	Addr           string
	JWTSecret      string
	TokenTTL       time.Duration
	AllowedOrigins []string

	Store       string
	SQLitePath  string
	DatabaseURL string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	NextRoundDelay time.Duration
	Rules          engine.Ruleset

	LogLevel  log.Level
	LogFormat string
}

// Load reads .env (when present) and the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from the process environment only.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Addr:           getEnv("BURACO_ADDR", ":8080"),
		JWTSecret:      os.Getenv("BURACO_JWT_SECRET"),
		Store:          strings.ToLower(getEnv("BURACO_STORE", database.DriverMemory)),
		SQLitePath:     getEnv("BURACO_SQLITE_PATH", "data/buraco.db"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		RedisAddr:      os.Getenv("REDIS_ADDR"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		LogFormat:      strings.ToLower(getEnv("BURACO_LOG_FORMAT", "text")),
		AllowedOrigins: splitList(os.Getenv("BURACO_ALLOWED_ORIGINS")),
		Rules:          engine.DefaultRuleset(),
	}

	var err error
	if cfg.TokenTTL, err = getDuration("BURACO_TOKEN_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.NextRoundDelay, err = getDuration("BURACO_NEXT_ROUND_DELAY", 15*time.Second); err != nil {
		return nil, err
	}
	if cfg.RedisDB, err = getInt("REDIS_DB", 0); err != nil {
		return nil, err
	}
	if cfg.Rules.DealSize, err = getInt("BURACO_DEAL_SIZE", cfg.Rules.DealSize); err != nil {
		return nil, err
	}
	if cfg.LogLevel, err = log.ParseLevel(getEnv("BURACO_LOG_LEVEL", "info")); err != nil {
		return nil, fmt.Errorf("BURACO_LOG_LEVEL: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.JWTSecret == "" {
		return errors.New("BURACO_JWT_SECRET is required")
	}
	if len(c.JWTSecret) < 16 {
		return errors.New("BURACO_JWT_SECRET must be at least 16 bytes")
	}
	if c.TokenTTL <= 0 {
		return errors.New("BURACO_TOKEN_TTL must be positive")
	}
	switch c.Store {
	case database.DriverMemory:
	case database.DriverSQLite:
		if c.SQLitePath == "" {
			return errors.New("BURACO_SQLITE_PATH is required for the sqlite store")
		}
	case database.DriverPostgres:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required for the postgres store")
		}
	default:
		return fmt.Errorf("invalid BURACO_STORE %q (supported: memory, sqlite, postgres)", c.Store)
	}
	if c.Rules.DealSize < 1 || c.Rules.DealSize*engine.NumPlayers >= engine.DeckSize {
		return fmt.Errorf("BURACO_DEAL_SIZE %d out of range", c.Rules.DealSize)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("invalid BURACO_LOG_FORMAT %q (supported: text, json)", c.LogFormat)
	}
	return nil
}

// StoreOptions converts the storage settings for database.NewStore.
func (c *Config) StoreOptions() database.Options {
	return database.Options{
		Driver:      c.Store,
		SQLitePath:  c.SQLitePath,
		PostgresURL: c.DatabaseURL,
	}
}

// ConfigureLogging applies the level and format to the standard logrus logger.
func (c *Config) ConfigureLogging() {
	log.SetLevel(c.LogLevel)
	if c.LogFormat == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getInt(k string, def int) (int, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", k, err)
	}
	return n, nil
}

func getDuration(k string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", k, err)
	}
	return d, nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
