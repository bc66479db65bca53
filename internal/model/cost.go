package model

import "github.com/shopspring/decimal"

// CostModel holds the unit rates used to price a cutting plan. Rates use
// decimal arithmetic so repeated per-millimeter sums stay exact.
type CostModel struct {
	MaterialPerMM decimal.Decimal `json:"material_per_mm"` // cost of raw stock per mm
	SetupPerCut   decimal.Decimal `json:"setup_per_cut"`   // cost of one saw cut
	WastePerMM    decimal.Decimal `json:"waste_per_mm"`    // penalty per mm of unusable remnant
	TimePerCut    decimal.Decimal `json:"time_per_cut"`    // labor/time cost of one cut
}

// DefaultCostModel returns rates typical for aluminium profile stock.
func DefaultCostModel() CostModel {
	return CostModel{
		MaterialPerMM: decimal.NewFromFloat(0.012),
		SetupPerCut:   decimal.NewFromFloat(0.25),
		WastePerMM:    decimal.NewFromFloat(0.012),
		TimePerCut:    decimal.NewFromFloat(0.10),
	}
}

// CostBreakdown is the priced view of a cutting plan.
type CostBreakdown struct {
	Material decimal.Decimal `json:"material"`
	Setup    decimal.Decimal `json:"setup"`
	Waste    decimal.Decimal `json:"waste"`
	Time     decimal.Decimal `json:"time"`
	Total    decimal.Decimal `json:"total"`
}

// CalculateCost prices a set of cuts against the model. Material is billed
// for every consumed bar at full stock length; waste is billed only for
// non-reclaimable remnants; setup and time are billed per saw cut, which
// is one cut per segment.
func CalculateCost(cuts []*Cut, c Constraints, m CostModel) CostBreakdown {
	var material, waste decimal.Decimal
	cutCount := 0
	for _, cut := range cuts {
		material = material.Add(m.MaterialPerMM.Mul(decimal.NewFromFloat(cut.StockLength)))
		if !IsReclaimable(cut.RemainingLength, c) {
			waste = waste.Add(m.WastePerMM.Mul(decimal.NewFromFloat(cut.RemainingLength)))
		}
		cutCount += len(cut.Segments)
	}
	setup := m.SetupPerCut.Mul(decimal.NewFromInt(int64(cutCount)))
	time := m.TimePerCut.Mul(decimal.NewFromInt(int64(cutCount)))

	return CostBreakdown{
		Material: material,
		Setup:    setup,
		Waste:    waste,
		Time:     time,
		Total:    material.Add(setup).Add(waste).Add(time),
	}
}
