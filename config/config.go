// Package config loads runtime configuration from the environment.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config carries everything the daemon needs to start.
type Config struct {
	DatabaseURL  string
	ListenAddr   string
	SubgraphURL  string
	JWTSecret    string
	ChainID      int64
	CourtIDs     []string
	PollInterval time.Duration
	LogLevel     slog.Level
}

// Load reads configuration from the environment. Optional values fall back
// to defaults; missing required values produce a single aggregated error.
func Load() (Config, error) {
	cfg := Config{
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		ListenAddr:   envOr("COURTFLOW_ADDR", ":8080"),
		SubgraphURL:  os.Getenv("SUBGRAPH_URL"),
		JWTSecret:    os.Getenv("JWT_SECRET"),
		PollInterval: time.Minute,
		LogLevel:     slog.LevelInfo,
	}

	var missing []string
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if cfg.SubgraphURL == "" {
		missing = append(missing, "SUBGRAPH_URL")
	}
	if cfg.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if len(missing) > 0 {
		return Config{}, fmt.Errorf("config: missing required env: %s", strings.Join(missing, ", "))
	}

	if raw := os.Getenv("CHAIN_ID"); raw != "" {
		chainID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return Config{}, fmt.Errorf("config: parse CHAIN_ID: %w", err)
		}
		cfg.ChainID = chainID
	} else {
		cfg.ChainID = 1
	}

	for _, id := range strings.Split(os.Getenv("COURT_IDS"), ",") {
		if id = strings.TrimSpace(id); id != "" {
			cfg.CourtIDs = append(cfg.CourtIDs, id)
		}
	}
	if len(cfg.CourtIDs) == 0 {
		return Config{}, fmt.Errorf("config: COURT_IDS must list at least one court address")
	}

	if raw := os.Getenv("POLL_INTERVAL"); raw != "" {
		interval, err := time.ParseDuration(raw)
		if err != nil {
			return Config{}, fmt.Errorf("config: parse POLL_INTERVAL: %w", err)
		}
		if interval < time.Second {
			return Config{}, fmt.Errorf("config: POLL_INTERVAL %s is below 1s", interval)
		}
		cfg.PollInterval = interval
	}

	if raw := os.Getenv("LOG_LEVEL"); raw != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(raw)); err != nil {
			return Config{}, fmt.Errorf("config: parse LOG_LEVEL: %w", err)
		}
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
