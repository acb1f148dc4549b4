package config

import (
	"testing"
	"time"

	"github.com/selamgames/bingo-server/game"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/bingo_test")
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.TotalCards != 400 {
		t.Errorf("TotalCards = %d, want 400", cfg.TotalCards)
	}
	if cfg.MaxCardsPerPlayer != 4 {
		t.Errorf("MaxCardsPerPlayer = %d, want 4", cfg.MaxCardsPerPlayer)
	}
	if cfg.DrawBound != 75 {
		t.Errorf("DrawBound = %d, want 75", cfg.DrawBound)
	}
	if cfg.SnapshotMaxAge != 2*time.Minute {
		t.Errorf("SnapshotMaxAge = %v, want 2m", cfg.SnapshotMaxAge)
	}
	if len(cfg.Stakes) != 4 {
		t.Errorf("Stakes = %v, want four default stakes", cfg.Stakes)
	}
	if len(cfg.Patterns) != len(game.DefaultPatterns()) {
		t.Errorf("Patterns = %v, want default set", cfg.Patterns)
	}
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "x")
	if _, err := Load(); err == nil {
		t.Fatal("Load should fail without DATABASE_URL")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/bingo_test")
	t.Setenv("JWT_SECRET", "x")
	t.Setenv("STAKES", "5, 25")
	t.Setenv("TOTAL_CARDS", "100")
	t.Setenv("PATTERNS", "line_1, full_house, column_3")
	t.Setenv("PRIZE_PERCENTS", "full_house=1.0, line_1=0.5")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if len(cfg.Stakes) != 2 || cfg.Stakes[0] != 5 || cfg.Stakes[1] != 25 {
		t.Errorf("Stakes = %v, want [5 25]", cfg.Stakes)
	}
	if cfg.TotalCards != 100 {
		t.Errorf("TotalCards = %d, want 100", cfg.TotalCards)
	}
	want := []game.Pattern{game.Line1, game.FullHouse, game.Column3}
	if len(cfg.Patterns) != len(want) {
		t.Fatalf("Patterns = %v, want %v", cfg.Patterns, want)
	}
	for i, p := range want {
		if cfg.Patterns[i] != p {
			t.Errorf("Patterns[%d] = %s, want %s", i, cfg.Patterns[i], p)
		}
	}
	if cfg.PrizePercents[game.FullHouse] != 1.0 || cfg.PrizePercents[game.Line1] != 0.5 {
		t.Errorf("PrizePercents = %v", cfg.PrizePercents)
	}
}

func TestLoadRejectsBadPattern(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/bingo_test")
	t.Setenv("JWT_SECRET", "x")
	t.Setenv("PATTERNS", "line_1,zigzag")
	if _, err := Load(); err == nil {
		t.Fatal("Load should reject unknown pattern names")
	}
}

func TestParsePrizePercents(t *testing.T) {
	if _, err := parsePrizePercents("full_house=1.5"); err == nil {
		t.Error("share above 1 should be rejected")
	}
	if _, err := parsePrizePercents("full_house"); err == nil {
		t.Error("entry without '=' should be rejected")
	}
	out, err := parsePrizePercents("")
	if err != nil || len(out) != 0 {
		t.Errorf("empty input: out=%v err=%v", out, err)
	}
}
