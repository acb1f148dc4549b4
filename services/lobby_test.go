package services

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/selamgames/bingo-server/game"
)

func TestEncodeEvent(t *testing.T) {
	msg, err := encodeEvent(game.NumberDrawn{Number: 42, Letter: "N", AllDrawn: []int{7, 42}})
	if err != nil {
		t.Fatalf("encodeEvent: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(msg, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded["type"] != "number_drawn" {
		t.Errorf("type = %v, want number_drawn", decoded["type"])
	}
	if decoded["number"] != float64(42) {
		t.Errorf("number = %v, want 42", decoded["number"])
	}
	if decoded["letter"] != "N" {
		t.Errorf("letter = %v, want N", decoded["letter"])
	}
	if all, ok := decoded["allDrawn"].([]any); !ok || len(all) != 2 {
		t.Errorf("allDrawn = %v, want two entries", decoded["allDrawn"])
	}
}

func TestEncodeEventWinner(t *testing.T) {
	msg, err := encodeEvent(game.WinnerDeclared{PlayerID: 9, CardID: 7, Pattern: game.Line1, Prize: 16})
	if err != nil {
		t.Fatalf("encodeEvent: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(msg, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded["type"] != "winner" || decoded["pattern"] != "line_1" {
		t.Errorf("winner event malformed: %v", decoded)
	}
}

func TestErrorCode(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{game.ErrInvalidIdentifier, "invalid_identifier"},
		{game.ErrAlreadyTaken, "already_taken"},
		{game.ErrNotInSelectionPhase, "not_in_selection_phase"},
		{game.ErrPlayerAtMaxCards, "player_at_max_cards"},
		{game.ErrNotCardOwner, "not_card_owner"},
		{game.ErrPatternNotSatisfied, "pattern_not_satisfied"},
		{game.ErrRoundAlreadyDecided, "round_already_decided"},
		{fmt.Errorf("wrapped: %w", game.ErrAlreadyTaken), "already_taken"},
		{fmt.Errorf("boom"), "internal"},
	}
	for _, c := range cases {
		if got := errorCode(c.err); got != c.want {
			t.Errorf("errorCode(%v) = %q, want %q", c.err, got, c.want)
		}
	}
}
