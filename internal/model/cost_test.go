package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCalculateCost(t *testing.T) {
	m := CostModel{
		MaterialPerMM: decimal.NewFromFloat(0.01),
		SetupPerCut:   decimal.NewFromFloat(0.50),
		WastePerMM:    decimal.NewFromFloat(0.02),
		TimePerCut:    decimal.NewFromFloat(0.25),
	}
	c := Constraints{MinScrapLength: 100}

	cuts := []*Cut{
		{
			StockLength:     6100,
			RemainingLength: 50, // fragment, billed as waste
			Segments:        []CuttingSegment{{Length: 3000}, {Length: 3000}},
		},
		{
			StockLength:     6100,
			RemainingLength: 200, // reusable, not billed
			Segments:        []CuttingSegment{{Length: 5900}},
		},
	}

	b := CalculateCost(cuts, c, m)

	assert.True(t, b.Material.Equal(decimal.NewFromFloat(122.0)), "two full bars at 0.01/mm")
	assert.True(t, b.Setup.Equal(decimal.NewFromFloat(1.5)), "three cuts at 0.50")
	assert.True(t, b.Waste.Equal(decimal.NewFromFloat(1.0)), "only the fragment is billed")
	assert.True(t, b.Time.Equal(decimal.NewFromFloat(0.75)))
	assert.True(t, b.Total.Equal(decimal.NewFromFloat(125.25)))
}

func TestCalculateCost_EmptyPlan(t *testing.T) {
	b := CalculateCost(nil, DefaultConstraints(), DefaultCostModel())

	assert.True(t, b.Total.IsZero())
}

func TestDefaultCostModel(t *testing.T) {
	m := DefaultCostModel()

	assert.True(t, m.MaterialPerMM.IsPositive())
	assert.True(t, m.SetupPerCut.IsPositive())
}
