package domain

import (
	"math/rand"
	"testing"
)

func TestEvaluateEmptyBoard(t *testing.T) {
	tb := testTables(t)
	if got := Evaluate(EmptyBoard, X, tb); got != 0 {
		t.Fatalf("expected 0 on empty board, got %d", got)
	}
}

func TestEvaluateSingleMove(t *testing.T) {
	tb := testTables(t)
	b := PlayMove(EmptyBoard, NewMove(SE, C), X)
	want := 4*zoneOne + centre
	if got := Evaluate(b, X, tb); got != want {
		t.Fatalf("X view = %d, want %d", got, want)
	}
	if got := Evaluate(b, O, tb); got != -want {
		t.Fatalf("O view = %d, want %d", got, -want)
	}
}

func TestEvaluateSkipsDecidedZones(t *testing.T) {
	tb := testTables(t)
	// X owns C; the stones inside C no longer count, the meta-board does
	b := boardOf([]Move{36, 40, 44}, []Move{37}, ZoneAny)
	if b.Owned(X) != 1<<C {
		t.Fatalf("expected X to own C, got %09b", b.Owned(X))
	}
	want := tb.Meta(1 << C)
	if got := Evaluate(b, X, tb); got != want {
		t.Fatalf("expected only the meta score %d, got %d", want, got)
	}
}

func TestEvaluateDecidedGame(t *testing.T) {
	tb := testTables(t)
	b := boardOf([]Move{30, 31}, []Move{0, 1, 2, 9, 10, 11, 18, 19, 20}, C)
	if got := Evaluate(b, O, tb); got != Win {
		t.Fatalf("O should see a win, got %d", got)
	}
	if got := Evaluate(b, X, tb); got != Loss {
		t.Fatalf("X should see a loss, got %d", got)
	}
}

func TestEvaluateFullMetaBoardIsDraw(t *testing.T) {
	tb := testTables(t)
	b := drawnMeta()
	if b.Owned(X)|b.Owned(O) != grid {
		t.Fatalf("expected every zone owned, X %09b O %09b", b.Owned(X), b.Owned(O))
	}
	for _, side := range []Cell{X, O} {
		if got := Evaluate(b, side, tb); got != Draw {
			t.Fatalf("side %v: expected draw, got %d", side, got)
		}
	}
}

func TestEvaluateAntisymmetric(t *testing.T) {
	tb := testTables(t)
	rng := rand.New(rand.NewSource(5))
	for i := 0; i < 200; i++ {
		playout(t, rng, func(b Board, _ Cell) {
			if x, o := Evaluate(b, X, tb), Evaluate(b, O, tb); x != -o {
				t.Fatalf("evaluate not antisymmetric: X %d, O %d", x, o)
			}
		})
	}
}
