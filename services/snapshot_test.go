package services

import (
	"testing"
	"time"

	"github.com/selamgames/bingo-server/game"
)

func TestStale(t *testing.T) {
	now := time.Unix(1700000000, 0)
	maxAge := 2 * time.Minute

	fresh := game.RoundSnapshot{SavedAt: now.Add(-time.Minute)}
	if Stale(fresh, now, maxAge) {
		t.Error("snapshot within the window should not be stale")
	}

	old := game.RoundSnapshot{SavedAt: now.Add(-3 * time.Minute)}
	if !Stale(old, now, maxAge) {
		t.Error("snapshot outside the window should be stale")
	}

	var zero game.RoundSnapshot
	if !Stale(zero, now, maxAge) {
		t.Error("zero-valued snapshot should be stale")
	}
}
