package domain

// Line is a principal variation. Unused slots hold NullMove.
type Line [MaxPly]Move

func emptyLine() Line {
	var l Line
	for i := range l {
		l[i] = NullMove
	}
	return l
}

// Moves returns the line up to its first NullMove.
func (l Line) Moves() []Move {
	for i, m := range l {
		if m == NullMove {
			return append([]Move(nil), l[:i]...)
		}
	}
	return append([]Move(nil), l[:]...)
}

// AlphaBeta runs a fixed-depth fail-hard negamax search from side's
// perspective. maxDepth is the depth of the root call; it places moves in
// the line and measures distance to decisive outcomes.
// It requires 0 <= depth <= maxDepth <= MaxPly.
func AlphaBeta(b Board, side Cell, depth int, alpha, beta Eval, t *Tables, maxDepth int) (Eval, Line) {
	if depth == 0 {
		e := Evaluate(b, side, t)
		return byDistance(e, maxDepth, e), emptyLine()
	}

	var buf [81]Move
	moves := AppendMoves(buf[:0], b)
	if len(moves) == 0 {
		// nothing to play: only a won meta-board counts, anything else is a draw
		return byDistance(orient(side, t.Meta(b.metaKey())), maxDepth-depth, Draw), emptyLine()
	}

	pv := emptyLine()
	ply := maxDepth - depth
	for _, m := range moves {
		eval, line := AlphaBeta(PlayMove(b, m, side), Opponent(side), depth-1, -beta, -alpha, t, maxDepth)
		eval = -eval
		line[ply] = m
		if eval >= beta {
			return beta, line
		}
		if eval > alpha {
			alpha = eval
			pv = line
		}
	}
	return alpha, pv
}

// byDistance pulls a decisive score toward zero by plies; any other score
// is replaced by fallback.
func byDistance(e Eval, plies int, fallback Eval) Eval {
	switch e {
	case Win:
		return e - Eval(plies)
	case Loss:
		return e + Eval(plies)
	}
	return fallback
}

// Search runs AlphaBeta over the full window with depth as the root depth.
// depth must be in 1..MaxPly; larger depths overflow the line.
func Search(b Board, side Cell, depth int, t *Tables) (Eval, Line) {
	return AlphaBeta(b, side, depth, Loss, Win, t, depth)
}
