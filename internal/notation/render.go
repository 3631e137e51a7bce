package notation

import (
	"strings"

	"github.com/jaminalder/ultimate-tic-tac-toe/internal/domain"
)

const separator = "---+---+---"

// Render draws b as ASCII art: the 9x9 grid with zones boxed, the
// meta-board of won zones underneath, then the active zone.
func Render(b domain.Board) string {
	var lines []string
	lines = append(lines, separator)
	for row := 0; row < 9; row++ {
		var sb strings.Builder
		for col := 0; col < 9; col++ {
			if col > 0 && col%3 == 0 {
				sb.WriteByte('|')
			}
			sb.WriteByte(upper(cellSymbol(b.At(cellAt(row, col)))))
		}
		lines = append(lines, sb.String())
		if row%3 == 2 {
			lines = append(lines, separator)
		}
	}
	x, o := b.Owned(domain.X), b.Owned(domain.O)
	for r := 0; r < 3; r++ {
		var sb strings.Builder
		for c := 0; c < 3; c++ {
			switch z := uint(r*3 + c); {
			case x>>z&1 == 1:
				sb.WriteByte('X')
			case o>>z&1 == 1:
				sb.WriteByte('O')
			default:
				sb.WriteByte('.')
			}
		}
		lines = append(lines, sb.String())
	}
	lines = append(lines, "ZONE: "+strings.ToUpper(FormatZone(b.Active())))
	return strings.Join(lines, "\n")
}

func upper(c byte) byte {
	if c >= 'a' && c <= 'z' {
		return c - 'a' + 'A'
	}
	return c
}
