package model

// Efficiency returns the fraction of consumed stock that became pieces,
// as a percentage in [0, 100]. Kerf and safety margins count as overhead.
func Efficiency(cuts []*Cut) float64 {
	var placed, stock float64
	for _, cut := range cuts {
		for _, s := range cut.Segments {
			placed += s.Length
		}
		stock += cut.StockLength
	}
	if stock == 0 {
		return 0
	}
	eff := (placed / stock) * 100.0
	if eff > 100 {
		eff = 100
	}
	return eff
}

// QualityScore blends efficiency with the share of bars whose remnant is
// either reusable or negligible. Fragments drag the score down because
// they are pure loss on the shop floor.
func QualityScore(cuts []*Cut, c Constraints) float64 {
	if len(cuts) == 0 {
		return 0
	}
	clean := 0
	for _, cut := range cuts {
		switch CategorizeWaste(cut.RemainingLength, c) {
		case WasteReusable, WasteDust:
			clean++
		}
	}
	cleanRatio := float64(clean) / float64(len(cuts))
	return 0.7*Efficiency(cuts) + 0.3*cleanRatio*100.0
}

// SummarizeStockUsage aggregates cuts per stock length.
func SummarizeStockUsage(cuts []*Cut, c Constraints) []StockUsage {
	type agg struct {
		bars   int
		waste  float64
		placed float64
		stock  float64
	}
	byLength := make(map[float64]*agg)
	var order []float64
	for _, cut := range cuts {
		a, ok := byLength[cut.StockLength]
		if !ok {
			a = &agg{}
			byLength[cut.StockLength] = a
			order = append(order, cut.StockLength)
		}
		a.bars++
		a.stock += cut.StockLength
		if !IsReclaimable(cut.RemainingLength, c) {
			a.waste += cut.RemainingLength
		}
		for _, s := range cut.Segments {
			a.placed += s.Length
		}
	}

	usage := make([]StockUsage, 0, len(byLength))
	for _, sl := range order {
		a := byLength[sl]
		eff := 0.0
		if a.stock > 0 {
			eff = (a.placed / a.stock) * 100.0
		}
		usage = append(usage, StockUsage{
			StockLength: sl,
			BarsUsed:    a.bars,
			TotalWaste:  a.waste,
			Efficiency:  eff,
		})
	}
	return usage
}
