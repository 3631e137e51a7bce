// Package notation converts boards, moves and scores to and from text.
package notation

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jaminalder/ultimate-tic-tac-toe/internal/domain"
)

// Errors returned by the parsers.
var (
	ErrInvalidBoard = errors.New("board invalid")
	ErrInvalidMove  = errors.New("move invalid")
	ErrInvalidRaw   = errors.New("raw board invalid")
)

var zoneNames = [9]string{"nw", "n", "ne", "w", "c", "e", "sw", "s", "se"}

const anyZone = "any"

// FormatZone returns the lowercase name of z, or "any".
func FormatZone(z domain.Zone) string {
	if z > domain.SE {
		return anyZone
	}
	return zoneNames[z]
}

// ParseZone is the inverse of FormatZone.
func ParseZone(s string) (domain.Zone, bool) {
	if s == anyZone {
		return domain.ZoneAny, true
	}
	for i, name := range zoneNames {
		if name == s {
			return domain.Zone(i), true
		}
	}
	return 0, false
}

// FormatMove renders m as "<zone>/<cell>", e.g. "nw/c".
func FormatMove(m domain.Move) string {
	return zoneNames[m.Zone()] + "/" + zoneNames[m.Cell()]
}

// FormatMoves renders a line of moves separated by spaces.
func FormatMoves(moves []domain.Move) string {
	parts := make([]string, len(moves))
	for i, m := range moves {
		parts[i] = FormatMove(m)
	}
	return strings.Join(parts, " ")
}

// ParseMove is the inverse of FormatMove.
func ParseMove(s string) (domain.Move, error) {
	zone, cell, ok := strings.Cut(s, "/")
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidMove, s)
	}
	z, zok := ParseZone(zone)
	c, cok := ParseZone(cell)
	if !zok || !cok || z == domain.ZoneAny || c == domain.ZoneAny {
		return 0, fmt.Errorf("%w: %q", ErrInvalidMove, s)
	}
	return domain.NewMove(z, c), nil
}

// FormatEval renders a search score. Scores within maxDepth plies of a
// decisive outcome become W<n> or L<n>, zero becomes D0 and anything else
// is printed with its sign.
func FormatEval(e domain.Eval, maxDepth int) string {
	d := domain.Eval(maxDepth)
	switch {
	case e <= domain.Loss+d:
		return "L" + strconv.Itoa(int(e-domain.Loss))
	case e >= domain.Win-d:
		return "W" + strconv.Itoa(int(domain.Win-e))
	case e == domain.Draw:
		return "D0"
	}
	return fmt.Sprintf("%+d", e)
}

// cellAt maps a position in the 9x9 grid, read row by row, to a move.
func cellAt(row, col int) domain.Move {
	zone := domain.Zone(row/3*3 + col/3)
	cell := domain.Zone(row%3*3 + col%3)
	return domain.NewMove(zone, cell)
}

// FormatBoard renders b in the compact form: nine '/'-separated rows of
// x, o and run-length digits for empty cells, a space, then the active zone.
func FormatBoard(b domain.Board) string {
	var sb strings.Builder
	for row := 0; row < 9; row++ {
		if row > 0 {
			sb.WriteByte('/')
		}
		empty := 0
		for col := 0; col < 9; col++ {
			c := b.At(cellAt(row, col))
			if c == domain.Empty {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteByte(byte('0' + empty))
				empty = 0
			}
			sb.WriteByte(cellSymbol(c))
		}
		if empty > 0 {
			sb.WriteByte(byte('0' + empty))
		}
	}
	sb.WriteByte(' ')
	sb.WriteString(FormatZone(b.Active()))
	return sb.String()
}

func cellSymbol(c domain.Cell) byte {
	switch c {
	case domain.X:
		return 'x'
	case domain.O:
		return 'o'
	}
	return '.'
}

// ParseBoard is the inverse of FormatBoard. Zone ownership is recomputed
// from the cells; the string carries occupancy and the active zone only.
func ParseBoard(s string) (domain.Board, error) {
	fields := strings.Fields(s)
	if len(fields) != 2 {
		return domain.Board{}, fmt.Errorf("%w: expected 2 fields, got %d", ErrInvalidBoard, len(fields))
	}
	active, ok := ParseZone(fields[1])
	if !ok {
		return domain.Board{}, fmt.Errorf("%w: unknown zone %q", ErrInvalidBoard, fields[1])
	}
	rows := strings.Split(fields[0], "/")
	if len(rows) != 9 {
		return domain.Board{}, fmt.Errorf("%w: expected 9 rows, got %d", ErrInvalidBoard, len(rows))
	}
	var cells [81]domain.Cell
	for r, row := range rows {
		expanded, err := expandRow(row)
		if err != nil {
			return domain.Board{}, err
		}
		for col, c := range expanded {
			cells[cellAt(r, col)] = c
		}
	}
	return domain.BoardFromCells(cells, active), nil
}

func expandRow(row string) ([]domain.Cell, error) {
	out := make([]domain.Cell, 0, 9)
	for _, ch := range row {
		switch {
		case ch == 'x':
			out = append(out, domain.X)
		case ch == 'o':
			out = append(out, domain.O)
		case ch == '.':
			out = append(out, domain.Empty)
		case ch >= '1' && ch <= '9':
			for i := '0'; i < ch; i++ {
				out = append(out, domain.Empty)
			}
		default:
			return nil, fmt.Errorf("%w: unexpected %q in row %q", ErrInvalidBoard, ch, row)
		}
		if len(out) > 9 {
			break
		}
	}
	if len(out) != 9 {
		return nil, fmt.Errorf("%w: row %q has %d cells", ErrInvalidBoard, row, len(out))
	}
	return out, nil
}

// FormatRaw renders the packed fields of b as three decimal integers.
func FormatRaw(b domain.Board) string {
	us, them, share := b.Raw()
	return fmt.Sprintf("%d %d %d", us, them, share)
}

// ParseRaw reads three whitespace-separated unsigned integers as the packed
// fields of a board. The fields are taken as they are.
func ParseRaw(s string) (domain.Board, error) {
	fields := strings.Fields(s)
	if len(fields) != 3 {
		return domain.Board{}, fmt.Errorf("%w: expected 3 fields, got %d", ErrInvalidRaw, len(fields))
	}
	var v [3]uint64
	for i, f := range fields {
		n, err := strconv.ParseUint(f, 10, 64)
		if err != nil {
			return domain.Board{}, fmt.Errorf("%w: %v", ErrInvalidRaw, err)
		}
		v[i] = n
	}
	return domain.FromRaw(v[0], v[1], v[2]), nil
}
