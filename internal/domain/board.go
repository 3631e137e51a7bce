package domain

// Cell represents a cell state. X and O double as the two sides.
type Cell uint8

const (
	Empty Cell = iota
	X
	O
)

// Opponent returns the other side.
func Opponent(side Cell) Cell {
	if side == X {
		return O
	}
	return X
}

// Zone indexes one of the nine sub-boards, NW through SE.
type Zone uint8

const (
	NW Zone = iota
	N
	NE
	W
	C
	E
	SW
	S
	SE
	// ZoneAny lets the side to move play in any undecided zone.
	ZoneAny
)

// Move is zone*9 + cell, in [0, 80].
type Move uint8

// NullMove marks an unused slot in a Line.
const NullMove Move = 81

// MaxPly bounds the search depth and the length of a Line.
const MaxPly = 32

// Zone returns the zone the move is played in.
func (m Move) Zone() Zone { return Zone(m / 9) }

// Cell returns the cell index within the zone, which is also the zone the
// opponent is sent to.
func (m Move) Cell() Zone { return Zone(m % 9) }

// NewMove combines a zone and a cell index.
func NewMove(zone, cell Zone) Move { return Move(zone)*9 + Move(cell) }

// Bit layout of the packed board:
//
//	us    bits 0..62   X occupancy of zones NW..SW
//	them  bits 0..62   O occupancy of zones NW..SW
//	share bits 0..17   X occupancy of zones S, SE
//	share bits 18..35  O occupancy of zones S, SE
//	share bits 36..44  zones won by X
//	share bits 45..53  zones won by O
//	share bits 54..57  active zone
const (
	grid       uint64 = 0b111111111
	pairGrid   uint64 = grid<<9 | grid
	splitMove         = 63
	oShareOff         = 18
	xOwnedOff         = 36
	oOwnedOff         = 45
	activeOff         = 54
	activeMask uint64 = 0b1111 << activeOff
)

// Board is an immutable Ultimate Tic-Tac-Toe position. Every transition
// returns a new value.
type Board struct {
	us, them, share uint64
}

// EmptyBoard is the starting position: nothing placed, any zone playable.
var EmptyBoard = Board{share: uint64(ZoneAny) << activeOff}

// FromRaw rebuilds a board from its packed fields without validation.
func FromRaw(us, them, share uint64) Board {
	return Board{us: us, them: them, share: share}
}

// Raw returns the packed fields.
func (b Board) Raw() (us, them, share uint64) {
	return b.us, b.them, b.share
}

// Cells returns the 9-bit occupancy of side within zone.
func (b Board) Cells(side Cell, zone Zone) uint64 {
	if zone >= S {
		off := 9 * uint(zone-S)
		if side == O {
			off += oShareOff
		}
		return (b.share >> off) & grid
	}
	src := b.us
	if side == O {
		src = b.them
	}
	return (src >> (9 * uint(zone))) & grid
}

// Occupied returns the 9-bit occupancy of zone by either side.
func (b Board) Occupied(zone Zone) uint64 {
	return b.Cells(X, zone) | b.Cells(O, zone)
}

// Owned returns the 9-bit set of zones side has won.
func (b Board) Owned(side Cell) uint64 {
	if side == O {
		return (b.share >> oOwnedOff) & grid
	}
	return (b.share >> xOwnedOff) & grid
}

// Decided reports whether either side has won zone.
func (b Board) Decided(zone Zone) bool {
	return (b.Owned(X)|b.Owned(O))>>zone&1 == 1
}

// Full reports whether every cell of zone is occupied.
func (b Board) Full(zone Zone) bool {
	return b.Occupied(zone) == grid
}

// Active returns the zone the side to move must play in, or ZoneAny.
func (b Board) Active() Zone {
	return Zone((b.share & activeMask) >> activeOff)
}

// At returns the occupant of the cell addressed by m.
func (b Board) At(m Move) Cell {
	switch bit := uint64(1) << m.Cell(); {
	case b.Cells(X, m.Zone())&bit != 0:
		return X
	case b.Cells(O, m.Zone())&bit != 0:
		return O
	}
	return Empty
}

// metaKey is the 18-bit lookup key of the meta-board.
func (b Board) metaKey() uint64 {
	return (b.share >> xOwnedOff) & pairGrid
}

// place sets the occupancy bit for m without any other bookkeeping.
func (b Board) place(m Move, side Cell) Board {
	if m >= splitMove {
		off := uint64(m - splitMove)
		if side == O {
			off += oShareOff
		}
		b.share |= 1 << off
	} else if side == O {
		b.them |= 1 << m
	} else {
		b.us |= 1 << m
	}
	return b
}

func (b Board) own(zone Zone, side Cell) Board {
	off := uint(xOwnedOff)
	if side == O {
		off = oOwnedOff
	}
	b.share |= 1 << (off + uint(zone))
	return b
}

func (b Board) withActive(zone Zone) Board {
	b.share = b.share&^activeMask | uint64(zone)<<activeOff
	return b
}

// BoardFromCells builds a board from per-cell occupancy, indexed by Move,
// and an active zone. Zone ownership is recomputed from the occupancy.
func BoardFromCells(cells [81]Cell, active Zone) Board {
	b := EmptyBoard.withActive(active)
	for i, c := range cells {
		if c == X || c == O {
			b = b.place(Move(i), c)
		}
	}
	for z := NW; z <= SE; z++ {
		if LineComplete(b.Cells(X, z)) {
			b = b.own(z, X)
		} else if LineComplete(b.Cells(O, z)) {
			b = b.own(z, O)
		}
	}
	return b
}

// Winner returns the side that owns three zones in a line, or Empty.
func (b Board) Winner() Cell {
	switch {
	case LineComplete(b.Owned(X)):
		return X
	case LineComplete(b.Owned(O)):
		return O
	}
	return Empty
}
