package model

// CategorizeWaste classifies a remnant length against the minimum scrap
// length: at or above it the remnant is reusable stock, below the dust
// threshold it is blade-scale loss, anything in between is a fragment.
func CategorizeWaste(remaining float64, c Constraints) WasteCategory {
	switch {
	case remaining >= c.MinScrapLength:
		return WasteReusable
	case remaining < DustThreshold:
		return WasteDust
	default:
		return WasteFragment
	}
}

// IsReclaimable reports whether a remnant goes back to stock.
func IsReclaimable(remaining float64, c Constraints) bool {
	return remaining >= c.MinScrapLength
}

// WasteDistribution buckets the cuts of a plan by waste category.
func WasteDistribution(cuts []*Cut, c Constraints) map[WasteCategory]int {
	dist := make(map[WasteCategory]int)
	for _, cut := range cuts {
		dist[CategorizeWaste(cut.RemainingLength, c)]++
	}
	return dist
}

// TotalWaste sums the non-reclaimable remainder across all cuts. Remnants
// long enough to return to stock do not count as waste.
func TotalWaste(cuts []*Cut, c Constraints) float64 {
	var total float64
	for _, cut := range cuts {
		if !IsReclaimable(cut.RemainingLength, c) {
			total += cut.RemainingLength
		}
	}
	return total
}

// RawWaste sums all remaining length across cuts, reclaimable or not.
func RawWaste(cuts []*Cut) float64 {
	var total float64
	for _, cut := range cuts {
		total += cut.RemainingLength
	}
	return total
}
