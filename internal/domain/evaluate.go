package domain

// Evaluate scores b from side's perspective without searching.
func Evaluate(b Board, side Cell, t *Tables) Eval {
	eval := t.Meta(b.metaKey())
	if eval == Win || eval == Loss {
		return orient(side, eval)
	}
	if b.Owned(X)|b.Owned(O) == grid {
		return Draw
	}
	for z := NW; z <= SE; z++ {
		if b.Decided(z) {
			continue
		}
		x, o := b.Cells(X, z), b.Cells(O, z)
		if x|o == grid {
			continue
		}
		eval += t.Zone(o<<9 | x)
	}
	return orient(side, eval)
}

// orient converts an X-perspective score to side's perspective.
func orient(side Cell, e Eval) Eval {
	if side == O {
		return -e
	}
	return e
}
