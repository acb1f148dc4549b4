package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/selamgames/bingo-server/game"
)

// Config is the full environment surface of the server. main loads .env
// before calling Load, so this package only reads the process environment.
type Config struct {
	Port           string
	DatabaseURL    string
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	JWTSecret      string
	AllowedOrigins []string

	Stakes              []int
	TotalCards          int
	MaxCardsPerPlayer   int
	SelectionSeconds    int
	DrawIntervalSeconds int
	DrawBound           int
	RestartDelaySeconds int
	SnapshotMaxAge      time.Duration

	Patterns      []game.Pattern
	PrizePercents map[game.Pattern]float64
}

// Load reads and validates the environment.
func Load() (*Config, error) {
	cfg := &Config{
		Port:                envString("PORT", "4000"),
		DatabaseURL:         os.Getenv("DATABASE_URL"),
		RedisAddr:           envString("REDIS_ADDR", "localhost:6379"),
		RedisPassword:       os.Getenv("REDIS_PASSWORD"),
		RedisDB:             envInt("REDIS_DB", 0),
		JWTSecret:           os.Getenv("JWT_SECRET"),
		AllowedOrigins:      envList("ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		Stakes:              envIntList("STAKES", []int{10, 20, 50, 100}),
		TotalCards:          envInt("TOTAL_CARDS", 400),
		MaxCardsPerPlayer:   envInt("MAX_CARDS_PER_PLAYER", 4),
		SelectionSeconds:    envInt("SELECTION_SECONDS", 30),
		DrawIntervalSeconds: envInt("DRAW_INTERVAL_SECONDS", 3),
		DrawBound:           envInt("DRAW_BOUND", 75),
		RestartDelaySeconds: envInt("RESTART_DELAY_SECONDS", 10),
		SnapshotMaxAge:      envDuration("SNAPSHOT_MAX_AGE", 2*time.Minute),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	patterns, err := parsePatterns(os.Getenv("PATTERNS"))
	if err != nil {
		return nil, err
	}
	cfg.Patterns = patterns

	percents, err := parsePrizePercents(os.Getenv("PRIZE_PERCENTS"))
	if err != nil {
		return nil, err
	}
	cfg.PrizePercents = percents

	return cfg, nil
}

// GameConfig builds the lifecycle config for one stake lobby.
func (c *Config) GameConfig(stake int) game.Config {
	return game.Config{
		Stake:               stake,
		TotalCards:          c.TotalCards,
		MaxCardsPerPlayer:   c.MaxCardsPerPlayer,
		SelectionSeconds:    c.SelectionSeconds,
		DrawIntervalSeconds: c.DrawIntervalSeconds,
		DrawBound:           c.DrawBound,
		RestartDelaySeconds: c.RestartDelaySeconds,
		Patterns:            c.Patterns,
		PrizePercents:       c.PrizePercents,
	}
}

// parsePatterns parses "line_1,diagonal_1,full_house". Empty means the
// default set.
func parsePatterns(raw string) ([]game.Pattern, error) {
	if raw == "" {
		return game.DefaultPatterns(), nil
	}
	var out []game.Pattern
	for _, s := range strings.Split(raw, ",") {
		p, err := game.ParsePattern(strings.TrimSpace(s))
		if err != nil {
			return nil, fmt.Errorf("PATTERNS: %w", err)
		}
		out = append(out, p)
	}
	return out, nil
}

// parsePrizePercents parses "full_house=1.0,line_1=0.5".
func parsePrizePercents(raw string) (map[game.Pattern]float64, error) {
	out := make(map[game.Pattern]float64)
	if raw == "" {
		return out, nil
	}
	for _, pair := range strings.Split(raw, ",") {
		key, val, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok {
			return nil, fmt.Errorf("PRIZE_PERCENTS: malformed entry %q", pair)
		}
		p, err := game.ParsePattern(strings.TrimSpace(key))
		if err != nil {
			return nil, fmt.Errorf("PRIZE_PERCENTS: %w", err)
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil || f < 0 || f > 1 {
			return nil, fmt.Errorf("PRIZE_PERCENTS: bad share for %s: %q", p, val)
		}
		out[p] = f
	}
	return out, nil
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return fallback
}

func envIntList(key string, fallback []int) []int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []int
	for _, s := range strings.Split(v, ",") {
		if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			out = append(out, n)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
