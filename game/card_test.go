package game_test

import (
	"errors"
	"testing"

	"github.com/selamgames/bingo-server/game"
)

const testTotalCards = 400

func TestGenerateCardDeterminism(t *testing.T) {
	for id := 1; id <= testTotalCards; id++ {
		a, err := game.GenerateCard(id, testTotalCards)
		if err != nil {
			t.Fatalf("GenerateCard(%d): %v", id, err)
		}
		b, err := game.GenerateCard(id, testTotalCards)
		if err != nil {
			t.Fatalf("GenerateCard(%d) second call: %v", id, err)
		}
		if a != b {
			t.Fatalf("card %d not deterministic:\n%v\n%v", id, a.Grid, b.Grid)
		}
	}
}

func TestGenerateCardColumnInvariant(t *testing.T) {
	ranges := [5][2]int{{1, 15}, {16, 30}, {31, 45}, {46, 60}, {61, 75}}

	for id := 1; id <= testTotalCards; id++ {
		card, err := game.GenerateCard(id, testTotalCards)
		if err != nil {
			t.Fatalf("GenerateCard(%d): %v", id, err)
		}

		if card.Grid[2][2] != game.FreeCell {
			t.Fatalf("card %d: center cell = %d, want free", id, card.Grid[2][2])
		}

		for col := 0; col < 5; col++ {
			seen := map[int]bool{}
			prev := 0
			for row := 0; row < 5; row++ {
				n := card.Grid[row][col]
				if row == 2 && col == 2 {
					continue
				}
				if n < ranges[col][0] || n > ranges[col][1] {
					t.Fatalf("card %d col %d row %d: %d outside [%d, %d]",
						id, col, row, n, ranges[col][0], ranges[col][1])
				}
				if seen[n] {
					t.Fatalf("card %d col %d: duplicate %d", id, col, n)
				}
				seen[n] = true
				if n <= prev {
					t.Fatalf("card %d col %d: not ascending at row %d (%d after %d)", id, col, row, n, prev)
				}
				prev = n
			}
		}
	}
}

func TestGenerateCardInvalidIdentifier(t *testing.T) {
	for _, id := range []int{0, -1, testTotalCards + 1, 100000} {
		if _, err := game.GenerateCard(id, testTotalCards); !errors.Is(err, game.ErrInvalidIdentifier) {
			t.Errorf("GenerateCard(%d) err = %v, want ErrInvalidIdentifier", id, err)
		}
	}
}

func TestCardNumbers(t *testing.T) {
	card, err := game.GenerateCard(7, testTotalCards)
	if err != nil {
		t.Fatalf("GenerateCard: %v", err)
	}
	nums := card.Numbers()
	if len(nums) != 24 {
		t.Fatalf("Numbers() returned %d values, want 24", len(nums))
	}
	for _, n := range nums {
		if n == game.FreeCell {
			t.Fatal("Numbers() included the free cell")
		}
	}
}
