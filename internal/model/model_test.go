package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewItem(t *testing.T) {
	item := NewItem("Frame rail", 918, 4)

	assert.NotEmpty(t, item.ID)
	assert.Len(t, item.ID, 8)
	assert.Equal(t, "Frame rail", item.Label)
	assert.Equal(t, 918.0, item.Length)
	assert.Equal(t, 4, item.Quantity)
}

func TestGroupByLength_CollapsesAndSortsDescending(t *testing.T) {
	items := []OptimizationItem{
		NewItem("A", 687, 10),
		NewItem("B", 918, 5),
		NewItem("C", 687, 15),
	}

	groups := GroupByLength(items)

	require.Len(t, groups, 2)
	assert.Equal(t, 918.0, groups[0].Length)
	assert.Equal(t, 5, groups[0].Quantity)
	assert.Equal(t, 687.0, groups[1].Length)
	assert.Equal(t, 25, groups[1].Quantity, "equal lengths should be merged")
}

func TestConstraints_UsableLength(t *testing.T) {
	c := Constraints{StartSafety: 10, EndSafety: 15}

	assert.Equal(t, 6075.0, c.UsableLength(6100))
	assert.LessOrEqual(t, c.UsableLength(20), 0.0, "margins can consume short stock entirely")
}

func TestNewCut(t *testing.T) {
	cut := NewCut(6100)

	assert.NotEmpty(t, cut.ID)
	assert.Equal(t, 6100.0, cut.StockLength)
	assert.Equal(t, 0.0, cut.UsedLength)
	assert.Equal(t, 6100.0, cut.RemainingLength)
	assert.Empty(t, cut.Segments)
}

func TestCut_AccountingError(t *testing.T) {
	cut := &Cut{StockLength: 6100, UsedLength: 5900, RemainingLength: 200}
	assert.InDelta(t, 0.0, cut.AccountingError(), 1e-9)

	cut.RemainingLength = 190
	assert.InDelta(t, 10.0, cut.AccountingError(), 1e-9)
}

func TestCuttingPattern_PieceCount(t *testing.T) {
	p := CuttingPattern{Counts: map[float64]int{918: 3, 687: 2}}
	assert.Equal(t, 5, p.PieceCount())
}

func TestCuttingPattern_CloneIsIndependent(t *testing.T) {
	p := CuttingPattern{StockLength: 6100, Counts: map[float64]int{918: 3}}
	clone := p.Clone()
	clone.Counts[918] = 99

	assert.Equal(t, 3, p.Counts[918])
}

func TestCuttingPattern_String(t *testing.T) {
	p := CuttingPattern{
		StockLength: 6100,
		Counts:      map[float64]int{687: 2, 918: 3},
		Waste:       120,
	}

	assert.Equal(t, "6100: 3x918 + 2x687 (waste 120.0)", p.String())
}

func TestOptimizeResult_PlacedQuantity(t *testing.T) {
	result := OptimizeResult{
		Cuts: []*Cut{
			{Segments: []CuttingSegment{{Length: 918}, {Length: 918}, {Length: 687}}},
			{Segments: []CuttingSegment{{Length: 687}}},
		},
	}

	placed := result.PlacedQuantity()

	assert.Equal(t, 2, result.TotalBars())
	assert.Equal(t, 2, placed[918])
	assert.Equal(t, 2, placed[687])
}
