package domain

// A grid is the low 9 bits of a uint64, cell i at bit i, NW=0 through SE=8.
// Its 8 lines are the rows NW-N-NE, W-C-E, SW-S-SE, the columns NW-W-SW,
// N-C-S, NE-E-SE, and the diagonals NW-C-SE, NE-C-SW. Line k owns the 3-bit
// field at bit 3k of a line count word.

// lineWeights[i] adds one to the field of every line passing through cell i.
var lineWeights = [9]uint64{
	1<<0 | 1<<9 | 1<<18,
	1<<0 | 1<<12,
	1<<0 | 1<<15 | 1<<21,
	1<<3 | 1<<9,
	1<<3 | 1<<12 | 1<<18 | 1<<21,
	1<<3 | 1<<15,
	1<<6 | 1<<9 | 1<<21,
	1<<6 | 1<<12,
	1<<6 | 1<<15 | 1<<18,
}

const (
	fieldLow   uint64 = 0o11111111
	fieldWidth        = 3
	lineCount         = 8
)

// LineCounts returns, for each of the 8 lines of g, how many of its cells
// are set, packed as 3-bit fields. A field never exceeds 3, so the sums
// never carry into the next field.
func LineCounts(g uint64) uint64 {
	var c uint64
	for i, w := range lineWeights {
		c += w * ((g >> uint(i)) & 1)
	}
	return c
}

// LineComplete reports whether g contains a full row, column or diagonal.
func LineComplete(g uint64) bool {
	c := LineCounts(g)
	// a field is 3 exactly when both of its low bits are set
	return c&(c>>1)&fieldLow != 0
}

func lineField(c uint64, k int) uint64 {
	return (c >> (fieldWidth * uint(k))) & 0b111
}
