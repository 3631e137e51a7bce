package domain

import (
	"math/rand"
	"sync"
	"testing"
)

var (
	tablesOnce   sync.Once
	sharedTables *Tables
)

// testTables builds the lookup tables once for the whole package.
func testTables(t *testing.T) *Tables {
	t.Helper()
	tablesOnce.Do(func() { sharedTables = NewTables() })
	return sharedTables
}

// playout applies random legal moves from the empty board, calling visit
// with every position reached and the side to move there.
func playout(t *testing.T, rng *rand.Rand, visit func(b Board, side Cell)) {
	t.Helper()
	b, side := EmptyBoard, X
	for {
		visit(b, side)
		moves := GenerateMoves(b)
		if len(moves) == 0 {
			return
		}
		b = PlayMove(b, moves[rng.Intn(len(moves))], side)
		side = Opponent(side)
	}
}

// boardOf places X and O on the given moves without going through
// PlayMove, recomputing ownership.
func boardOf(xs, os []Move, active Zone) Board {
	var cells [81]Cell
	for _, m := range xs {
		cells[m] = X
	}
	for _, m := range os {
		cells[m] = O
	}
	return BoardFromCells(cells, active)
}

// zoneRow returns the moves of the top row of z.
func zoneRow(z Zone) []Move {
	return []Move{NewMove(z, NW), NewMove(z, N), NewMove(z, NE)}
}

// drawnMeta has every zone won, X O X / X O O / O X X, with no line.
func drawnMeta() Board {
	var xs, os []Move
	for z, owner := range [9]Cell{X, O, X, X, O, O, O, X, X} {
		if owner == X {
			xs = append(xs, zoneRow(Zone(z))...)
		} else {
			os = append(os, zoneRow(Zone(z))...)
		}
	}
	return boardOf(xs, os, ZoneAny)
}

// blockedBoard has X owning NW and every other zone filled without a line,
// so no move is left and nobody has won.
func blockedBoard() Board {
	xs := zoneRow(NW)
	var os []Move
	drawn := [9]Cell{X, O, X, X, O, O, O, X, X}
	for z := N; z <= SE; z++ {
		for c, cell := range drawn {
			if cell == X {
				xs = append(xs, NewMove(z, Zone(c)))
			} else {
				os = append(os, NewMove(z, Zone(c)))
			}
		}
	}
	return boardOf(xs, os, ZoneAny)
}
