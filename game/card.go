package game

import (
	"fmt"
	"math"
	"sort"
)

const (
	// GridSize is the card dimension; bingo cards are 5x5.
	GridSize = 5

	// FreeCell is the sentinel stored at the center of every card. It is
	// always considered marked.
	FreeCell = 0

	freeRow = 2
	freeCol = 2

	// seedMultiplier spreads card ids across the sine hash domain. Changing
	// it changes every card in existence, so it is effectively part of the
	// wire protocol: clients regenerate grids from ids alone.
	seedMultiplier = 7919.0

	// columnStride separates the sample streams of neighbouring columns.
	columnStride = 131.0
)

// columnRanges holds the inclusive sub-range of each column, B through O.
var columnRanges = [GridSize][2]int{
	{1, 15},
	{16, 30},
	{31, 45},
	{46, 60},
	{61, 75},
}

// Card is a 5x5 grid addressed as Grid[row][col]. Within a column the five
// numbers are unique and sorted top to bottom; the center cell is FreeCell.
// A card's grid is a pure function of its id, so the server and every client
// can regenerate it independently and only the id ever crosses the wire.
type Card struct {
	ID   int                     `json:"id"`
	Grid [GridSize][GridSize]int `json:"grid"`
}

// hash01 is a deterministic pseudo-random function mapping x to [0, 1).
// The sine-fraction trick is crude but stable across platforms, which is all
// card generation needs.
func hash01(x float64) float64 {
	v := math.Sin(x) * 43758.5453123
	return v - math.Floor(v)
}

// GenerateCard builds the card for cardID. Deterministic and total over
// [1, totalCards]; outside that range it fails with ErrInvalidIdentifier.
func GenerateCard(cardID, totalCards int) (Card, error) {
	if cardID < 1 || cardID > totalCards {
		return Card{}, fmt.Errorf("%w: %d not in [1, %d]", ErrInvalidIdentifier, cardID, totalCards)
	}

	seed := float64(cardID) * seedMultiplier
	card := Card{ID: cardID}

	for col := 0; col < GridSize; col++ {
		lo, hi := columnRanges[col][0], columnRanges[col][1]
		span := hi - lo + 1

		// Rejection sampling over the column sub-range. The attempt counter
		// perturbs the hash input, so a duplicate never repeats forever:
		// each column offers 15 values and we only need 5.
		vals := make([]int, 0, GridSize)
		for attempt := 0; len(vals) < GridSize; attempt++ {
			h := hash01(seed + float64(col)*columnStride + float64(attempt))
			n := lo + int(h*float64(span))%span
			if !containsInt(vals, n) {
				vals = append(vals, n)
			}
		}
		sort.Ints(vals)

		for row := 0; row < GridSize; row++ {
			card.Grid[row][col] = vals[row]
		}
	}

	card.Grid[freeRow][freeCol] = FreeCell
	return card, nil
}

// Numbers returns the 24 non-free numbers of the card in row order.
func (c Card) Numbers() []int {
	out := make([]int, 0, GridSize*GridSize-1)
	for row := 0; row < GridSize; row++ {
		for col := 0; col < GridSize; col++ {
			if n := c.Grid[row][col]; n != FreeCell {
				out = append(out, n)
			}
		}
	}
	return out
}

func containsInt(s []int, n int) bool {
	for _, v := range s {
		if v == n {
			return true
		}
	}
	return false
}
