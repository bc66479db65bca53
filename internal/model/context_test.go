package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testContext(t *testing.T, items []OptimizationItem, stocks []float64, c Constraints) *OptimizationContext {
	t.Helper()
	ctx, err := NewContext(items, stocks, c, DefaultObjectives(), PerformanceBudget{}, DefaultCostModel())
	require.NoError(t, err)
	return ctx
}

func TestNewContext_Valid(t *testing.T) {
	ctx := testContext(t,
		[]OptimizationItem{NewItem("A", 918, 50), NewItem("B", 687, 50)},
		[]float64{6100, 3500},
		DefaultConstraints(),
	)

	assert.Equal(t, 100, ctx.TotalItemCount())
	assert.Equal(t, []float64{3500, 6100}, ctx.StockLengths(), "stock lengths are sorted ascending")
	assert.Equal(t, 6100.0, ctx.PrimaryStockLength())
	assert.Equal(t, map[float64]int{918: 50, 687: 50}, ctx.Demand())
}

func TestNewContext_DefaultsStockLength(t *testing.T) {
	ctx := testContext(t, []OptimizationItem{NewItem("A", 500, 1)}, nil, DefaultConstraints())

	assert.Equal(t, []float64{DefaultStockLength}, ctx.StockLengths())
}

func TestNewContext_RejectsEmptyItems(t *testing.T) {
	_, err := NewContext(nil, nil, DefaultConstraints(), DefaultObjectives(), PerformanceBudget{}, DefaultCostModel())

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestNewContext_RejectsBadItems(t *testing.T) {
	cases := []struct {
		name string
		item OptimizationItem
	}{
		{"zero length", OptimizationItem{Label: "Z", Length: 0, Quantity: 1}},
		{"negative length", OptimizationItem{Label: "N", Length: -10, Quantity: 1}},
		{"zero quantity", OptimizationItem{Label: "Q", Length: 100, Quantity: 0}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewContext([]OptimizationItem{tc.item}, nil, DefaultConstraints(),
				DefaultObjectives(), PerformanceBudget{}, DefaultCostModel())
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestNewContext_RejectsBadObjectiveWeights(t *testing.T) {
	items := []OptimizationItem{NewItem("A", 500, 1)}

	_, err := NewContext(items, nil, DefaultConstraints(), nil, PerformanceBudget{}, DefaultCostModel())
	assert.ErrorIs(t, err, ErrInvalidInput, "empty objectives")

	bad := map[Objective]float64{ObjectiveMinimizeWaste: 0.5, ObjectiveMinimizeBars: 0.2}
	_, err = NewContext(items, nil, DefaultConstraints(), bad, PerformanceBudget{}, DefaultCostModel())
	assert.ErrorIs(t, err, ErrInvalidInput, "weights must sum to 1")
}

func TestNewContext_RejectsItemLongerThanUsableStock(t *testing.T) {
	items := []OptimizationItem{NewItem("Long", 6090, 1)}
	c := Constraints{StartSafety: 10, EndSafety: 10}

	_, err := NewContext(items, []float64{6100}, c, DefaultObjectives(), PerformanceBudget{}, DefaultCostModel())

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Contains(t, err.Error(), "exceeds largest usable stock")
}

func TestNewContext_DropsStockConsumedByMargins(t *testing.T) {
	c := Constraints{StartSafety: 100, EndSafety: 100}

	ctx := testContext(t, []OptimizationItem{NewItem("A", 50, 1)}, []float64{150, 1000}, c)
	assert.Equal(t, []float64{1000}, ctx.StockLengths(), "the 150mm stock has no usable length")

	_, err := NewContext([]OptimizationItem{NewItem("A", 50, 1)}, []float64{150, 180}, c,
		DefaultObjectives(), PerformanceBudget{}, DefaultCostModel())
	assert.ErrorIs(t, err, ErrInvalidInput, "no stock survives the margins")
}

func TestContext_AccessorsReturnCopies(t *testing.T) {
	ctx := testContext(t, []OptimizationItem{NewItem("A", 500, 2)}, []float64{6100}, DefaultConstraints())

	items := ctx.Items()
	items[0].Quantity = 999
	assert.Equal(t, 2, ctx.Items()[0].Quantity)

	stocks := ctx.StockLengths()
	stocks[0] = 1
	assert.Equal(t, 6100.0, ctx.StockLengths()[0])
}

func TestContext_ObjectiveWeights(t *testing.T) {
	obj := map[Objective]float64{ObjectiveMinimizeWaste: 0.7, ObjectiveMinimizeBars: 0.3}
	ctx, err := NewContext([]OptimizationItem{NewItem("A", 500, 1)}, nil, DefaultConstraints(),
		obj, PerformanceBudget{}, DefaultCostModel())
	require.NoError(t, err)

	assert.True(t, ctx.HasObjective(ObjectiveMinimizeWaste))
	assert.False(t, ctx.HasObjective(ObjectiveMinimizeCost))
	assert.Equal(t, 0.3, ctx.ObjectiveWeight(ObjectiveMinimizeBars))
	assert.Equal(t, 0.0, ctx.ObjectiveWeight(ObjectiveMinimizeCost))
}
