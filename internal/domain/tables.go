package domain

import "math/bits"

// Eval is a score from one side's perspective.
type Eval int32

// Decisive outcomes. Search scores for wins and losses are pulled toward
// zero by the number of plies needed to reach them.
const (
	Win  Eval = 1000000
	Draw Eval = 0
	Loss Eval = -1000000
)

// Line scoring weights for the meta-board and for a single zone.
const (
	metaTwo Eval = 90
	metaOne Eval = 20
	zoneTwo Eval = 8
	zoneOne Eval = 1
)

// Positional weights, and the factor applied to them on the meta-board.
const (
	centre     Eval = 9
	corner     Eval = 7
	edge       Eval = 5
	metaFactor Eval = 25
)

const (
	cornerMask uint64 = 0b101_000_101
	edgeMask   uint64 = 0b010_101_010
	centreMask uint64 = 0b000_010_000
)

// TableSize is the number of (X, O) occupancy pairs of a single grid.
const TableSize = 1 << 18

// Tables holds precomputed scores for every pair of 9-bit occupancies,
// keyed by o<<9 | x, from X's perspective. Built once by NewTables and
// never written afterwards, so one value can be shared by any number of
// concurrent searches.
type Tables struct {
	meta []Eval
	zone []Eval
}

// NewTables builds the meta-board and zone lookup tables.
func NewTables() *Tables {
	t := &Tables{
		meta: make([]Eval, TableSize),
		zone: make([]Eval, TableSize),
	}
	for x := uint64(0); x <= grid; x++ {
		xLines := LineCounts(x)
		for o := uint64(0); o <= grid; o++ {
			key := o<<9 | x
			t.meta[key], t.zone[key] = scoreGrid(x, xLines, o, LineCounts(o))
		}
	}
	return t
}

// Meta returns the meta-board entry for key.
func (t *Tables) Meta(key uint64) Eval { return t.meta[key&pairGrid] }

// Zone returns the zone entry for key.
func (t *Tables) Zone(key uint64) Eval { return t.zone[key&pairGrid] }

func scoreGrid(x, xLines, o, oLines uint64) (meta, zone Eval) {
	var lineMeta, lineZone Eval
	for k := 0; k < lineCount; k++ {
		xc, oc := lineField(xLines, k), lineField(oLines, k)
		if xc != 0 && oc != 0 {
			continue
		}
		if xc == 3 {
			return Win, 0
		}
		if oc == 3 {
			return Loss, 0
		}
		lineMeta += lineWeight(xc, metaTwo, metaOne) - lineWeight(oc, metaTwo, metaOne)
		lineZone += lineWeight(xc, zoneTwo, zoneOne) - lineWeight(oc, zoneTwo, zoneOne)
	}
	if x|o == grid {
		return Draw, 0
	}
	pos := corner*popDiff(x, o, cornerMask) +
		edge*popDiff(x, o, edgeMask) +
		centre*popDiff(x, o, centreMask)
	return lineMeta + pos*metaFactor, lineZone + pos
}

func lineWeight(count uint64, two, one Eval) Eval {
	switch count {
	case 2:
		return two
	case 1:
		return one
	}
	return 0
}

func popDiff(x, o, mask uint64) Eval {
	return Eval(bits.OnesCount64(x&mask) - bits.OnesCount64(o&mask))
}
