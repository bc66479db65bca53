package model

import "math"

// SegmentSpan returns the bar length consumed by n pieces of the given
// lengths including the kerf between adjacent pieces. Kerf is only lost
// between pieces, so n pieces cost n-1 kerfs.
func SegmentSpan(lengths []float64, kerf float64) float64 {
	if len(lengths) == 0 {
		return 0
	}
	var total float64
	for _, l := range lengths {
		total += l
	}
	if kerf > 0 {
		total += kerf * float64(len(lengths)-1)
	}
	return total
}

// PatternSpan returns the bar length consumed by a count map of pieces,
// kerf included between pieces.
func PatternSpan(counts map[float64]int, kerf float64) float64 {
	pieces := 0
	var total float64
	for l, n := range counts {
		total += l * float64(n)
		pieces += n
	}
	if kerf > 0 && pieces > 1 {
		total += kerf * float64(pieces-1)
	}
	return total
}

// PiecesPerBar returns how many pieces of a single length fit into one
// bar's usable length, kerf included between pieces.
func PiecesPerBar(stockLength, pieceLength float64, c Constraints) int {
	usable := c.UsableLength(stockLength)
	if usable < pieceLength || pieceLength <= 0 {
		return 0
	}
	if c.KerfWidth <= 0 {
		return int(math.Floor(usable / pieceLength))
	}
	// n pieces need n*length + (n-1)*kerf <= usable.
	n := int(math.Floor((usable + c.KerfWidth) / (pieceLength + c.KerfWidth)))
	if n < 0 {
		return 0
	}
	return n
}

// KerfLoss returns the total blade loss for a bar holding n pieces.
func KerfLoss(pieceCount int, kerf float64) float64 {
	if pieceCount <= 1 || kerf <= 0 {
		return 0
	}
	return kerf * float64(pieceCount-1)
}

// BarsNeeded returns the minimum bar count to cut quantity pieces of one
// length from the given stock, or 0 when the piece does not fit at all.
func BarsNeeded(stockLength, pieceLength float64, quantity int, c Constraints) int {
	perBar := PiecesPerBar(stockLength, pieceLength, c)
	if perBar == 0 {
		return 0
	}
	return (quantity + perBar - 1) / perBar
}
