package model

import (
	"fmt"
	"math"
	"sort"
)

// DefaultStockLength is assumed when the caller supplies no stock lengths.
const DefaultStockLength = 6100.0

// Objective names the quantities an optimization run can weight.
type Objective string

const (
	ObjectiveMinimizeWaste Objective = "minimize_waste"
	ObjectiveMinimizeBars  Objective = "minimize_bars"
	ObjectiveMinimizeCost  Objective = "minimize_cost"
)

// PerformanceBudget caps the solver's explored search space.
type PerformanceBudget struct {
	MaxPatterns     int `json:"max_patterns"`      // 0 = decided by the problem analyzer
	MaxSearchStates int `json:"max_search_states"` // 0 = adaptive, bounded at 10000
}

// OptimizationContext is an immutable snapshot of one optimization call:
// demand, stock, constraints, objectives and cost model. It is validated
// once at construction and never mutated; every solver component receives
// the same instance, which makes concurrent calls trivially independent.
type OptimizationContext struct {
	items        []OptimizationItem
	stockLengths []float64 // sorted ascending
	constraints  Constraints
	objectives   map[Objective]float64
	budget       PerformanceBudget
	costModel    CostModel
}

// NewContext validates inputs and builds a frozen context. It fails when
// items are empty, any item has a non-positive length or quantity,
// objectives are empty, objective weights do not sum to 1 (±1e-6), no
// stock length survives the safety margins, or the smallest usable stock
// cannot admit the shortest demanded item.
func NewContext(
	items []OptimizationItem,
	stockLengths []float64,
	constraints Constraints,
	objectives map[Objective]float64,
	budget PerformanceBudget,
	costModel CostModel,
) (*OptimizationContext, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: no items to optimize", ErrInvalidInput)
	}
	for _, it := range items {
		if it.Length <= 0 {
			return nil, fmt.Errorf("%w: item %q has non-positive length %.2f", ErrInvalidInput, it.Label, it.Length)
		}
		if it.Quantity < 1 {
			return nil, fmt.Errorf("%w: item %q has quantity %d", ErrInvalidInput, it.Label, it.Quantity)
		}
	}
	if len(objectives) == 0 {
		return nil, fmt.Errorf("%w: no objectives supplied", ErrInvalidInput)
	}
	var weightSum float64
	for _, w := range objectives {
		weightSum += w
	}
	if math.Abs(weightSum-1.0) > 1e-6 {
		return nil, fmt.Errorf("%w: objective weights sum to %.6f, want 1", ErrInvalidInput, weightSum)
	}
	if constraints.KerfWidth < 0 || constraints.StartSafety < 0 || constraints.EndSafety < 0 || constraints.MinScrapLength < 0 {
		return nil, fmt.Errorf("%w: constraints must be non-negative", ErrInvalidInput)
	}

	if len(stockLengths) == 0 {
		stockLengths = []float64{DefaultStockLength}
	}
	// Reject stock lengths that the safety margins consume entirely.
	usable := make([]float64, 0, len(stockLengths))
	for _, sl := range stockLengths {
		if constraints.UsableLength(sl) > 0 {
			usable = append(usable, sl)
		}
	}
	if len(usable) == 0 {
		return nil, fmt.Errorf("%w: no stock length survives safety margins", ErrInvalidInput)
	}
	sort.Float64s(usable)

	// Every item must fit on at least the largest usable stock.
	maxUsable := constraints.UsableLength(usable[len(usable)-1])
	for _, it := range items {
		if it.Length > maxUsable {
			return nil, fmt.Errorf("%w: item %q (%.1fmm) exceeds largest usable stock length %.1fmm",
				ErrInvalidInput, it.Label, it.Length, maxUsable)
		}
	}

	frozen := make([]OptimizationItem, len(items))
	copy(frozen, items)
	obj := make(map[Objective]float64, len(objectives))
	for k, v := range objectives {
		obj[k] = v
	}

	return &OptimizationContext{
		items:        frozen,
		stockLengths: usable,
		constraints:  constraints,
		objectives:   obj,
		budget:       budget,
		costModel:    costModel,
	}, nil
}

// DefaultObjectives weights waste minimization alone.
func DefaultObjectives() map[Objective]float64 {
	return map[Objective]float64{ObjectiveMinimizeWaste: 1.0}
}

// Items returns a copy of the demand list.
func (c *OptimizationContext) Items() []OptimizationItem {
	out := make([]OptimizationItem, len(c.items))
	copy(out, c.items)
	return out
}

// StockLengths returns a copy of the usable stock lengths, ascending.
func (c *OptimizationContext) StockLengths() []float64 {
	out := make([]float64, len(c.stockLengths))
	copy(out, c.stockLengths)
	return out
}

// Constraints returns the cutting constraints.
func (c *OptimizationContext) Constraints() Constraints {
	return c.constraints
}

// Budget returns the performance budget.
func (c *OptimizationContext) Budget() PerformanceBudget {
	return c.budget
}

// CostModel returns the cost model.
func (c *OptimizationContext) CostModel() CostModel {
	return c.costModel
}

// PrimaryStockLength returns the largest usable stock length.
func (c *OptimizationContext) PrimaryStockLength() float64 {
	return c.stockLengths[len(c.stockLengths)-1]
}

// TotalItemCount returns the total demanded piece count.
func (c *OptimizationContext) TotalItemCount() int {
	total := 0
	for _, it := range c.items {
		total += it.Quantity
	}
	return total
}

// HasObjective reports whether the given objective carries weight.
func (c *OptimizationContext) HasObjective(o Objective) bool {
	return c.objectives[o] > 0
}

// ObjectiveWeight returns the weight for an objective (0 if absent).
func (c *OptimizationContext) ObjectiveWeight(o Objective) float64 {
	return c.objectives[o]
}

// Demand returns the required quantity per distinct length.
func (c *OptimizationContext) Demand() map[float64]int {
	demand := make(map[float64]int)
	for _, it := range c.items {
		demand[it.Length] += it.Quantity
	}
	return demand
}
