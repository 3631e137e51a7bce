package domain

// Terminal reports whether the meta-board already holds three zones in a
// line for either side.
func (b Board) Terminal() bool {
	return b.Winner() != Empty
}

// AppendMoves appends the legal moves of b to dst in ascending order and
// returns the extended slice. A decided game has no moves.
func AppendMoves(dst []Move, b Board) []Move {
	if b.Terminal() {
		return dst
	}
	active := b.Active()
	if active != ZoneAny {
		return appendZone(dst, b, active)
	}
	decided := b.Owned(X) | b.Owned(O)
	for z := NW; z <= SE; z++ {
		if decided>>z&1 == 0 {
			dst = appendZone(dst, b, z)
		}
	}
	return dst
}

// GenerateMoves returns the legal moves of b.
func GenerateMoves(b Board) []Move {
	return AppendMoves(make([]Move, 0, 81), b)
}

func appendZone(dst []Move, b Board, z Zone) []Move {
	occ := b.Occupied(z)
	for c := NW; c <= SE; c++ {
		if occ>>c&1 == 0 {
			dst = append(dst, NewMove(z, c))
		}
	}
	return dst
}

// PlayMove returns the board after side plays m. The move must be legal.
func PlayMove(b Board, m Move, side Cell) Board {
	b = b.place(m, side)
	if LineComplete(b.Cells(side, m.Zone())) {
		b = b.own(m.Zone(), side)
	}
	next := m.Cell()
	if b.Decided(next) || b.Full(next) {
		next = ZoneAny
	}
	return b.withActive(next)
}
