package game

import "fmt"

// Pattern names a winning predicate over a card's marked cells. The names
// are part of the client protocol, so they never change spelling.
type Pattern string

const (
	Line1 Pattern = "line_1"
	Line2 Pattern = "line_2"
	Line3 Pattern = "line_3"
	Line4 Pattern = "line_4"
	Line5 Pattern = "line_5"

	Column1 Pattern = "column_1"
	Column2 Pattern = "column_2"
	Column3 Pattern = "column_3"
	Column4 Pattern = "column_4"
	Column5 Pattern = "column_5"

	Diagonal1   Pattern = "diagonal_1"
	Diagonal2   Pattern = "diagonal_2"
	FourCorners Pattern = "four_corners"
	FullHouse   Pattern = "full_house"
)

// DefaultPatterns is the set served unless a deployment configures its own.
// Column patterns exist but are off by default.
func DefaultPatterns() []Pattern {
	return []Pattern{
		Line1, Line2, Line3, Line4, Line5,
		Diagonal1, Diagonal2,
		FourCorners, FullHouse,
	}
}

// AllPatterns lists every pattern the matcher understands.
func AllPatterns() []Pattern {
	return append(DefaultPatterns(), Column1, Column2, Column3, Column4, Column5)
}

// ParsePattern validates a wire string against the known pattern names.
func ParsePattern(s string) (Pattern, error) {
	for _, p := range AllPatterns() {
		if Pattern(s) == p {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown pattern %q", s)
}

// cells returns the grid coordinates a pattern covers, or false for an
// unknown pattern.
func (p Pattern) cells() ([][2]int, bool) {
	line := func(row int) [][2]int {
		out := make([][2]int, GridSize)
		for col := 0; col < GridSize; col++ {
			out[col] = [2]int{row, col}
		}
		return out
	}
	column := func(col int) [][2]int {
		out := make([][2]int, GridSize)
		for row := 0; row < GridSize; row++ {
			out[row] = [2]int{row, col}
		}
		return out
	}

	switch p {
	case Line1, Line2, Line3, Line4, Line5:
		return line(int(p[len(p)-1] - '1')), true
	case Column1, Column2, Column3, Column4, Column5:
		return column(int(p[len(p)-1] - '1')), true
	case Diagonal1:
		out := make([][2]int, GridSize)
		for i := 0; i < GridSize; i++ {
			out[i] = [2]int{i, i}
		}
		return out, true
	case Diagonal2:
		out := make([][2]int, GridSize)
		for i := 0; i < GridSize; i++ {
			out[i] = [2]int{i, GridSize - 1 - i}
		}
		return out, true
	case FourCorners:
		return [][2]int{{0, 0}, {0, GridSize - 1}, {GridSize - 1, 0}, {GridSize - 1, GridSize - 1}}, true
	case FullHouse:
		out := make([][2]int, 0, GridSize*GridSize)
		for row := 0; row < GridSize; row++ {
			for col := 0; col < GridSize; col++ {
				out = append(out, [2]int{row, col})
			}
		}
		return out, true
	}
	return nil, false
}

// marked reports whether a single cell counts as marked: the free cell
// always does, any other cell iff its number has been drawn.
func marked(card Card, drawn map[int]bool, row, col int) bool {
	if row == freeRow && col == freeCol {
		return true
	}
	return drawn[card.Grid[row][col]]
}

// Matches reports whether the card satisfies the pattern against the drawn
// set. Pure predicate: no state, re-derivable at any time from (card, drawn).
func Matches(card Card, drawn map[int]bool, p Pattern) bool {
	cells, ok := p.cells()
	if !ok {
		return false
	}
	for _, cell := range cells {
		if !marked(card, drawn, cell[0], cell[1]) {
			return false
		}
	}
	return true
}

// MarkingGrid derives the per-cell marking state from (card, drawn). Clients
// may cache this for rendering; it must always equal a fresh recomputation.
func MarkingGrid(card Card, drawn map[int]bool) [GridSize][GridSize]bool {
	var grid [GridSize][GridSize]bool
	for row := 0; row < GridSize; row++ {
		for col := 0; col < GridSize; col++ {
			grid[row][col] = marked(card, drawn, row, col)
		}
	}
	return grid
}
