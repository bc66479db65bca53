package engine

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/barcut/barcut/internal/model"
)

// ComparisonScenario defines a named constraint set to compare.
type ComparisonScenario struct {
	Name        string
	Constraints model.Constraints
}

// ComparisonResult holds the optimization result and computed statistics
// for a single scenario. Scenarios whose context fails validation carry
// the error instead of a result.
type ComparisonResult struct {
	Scenario     ComparisonScenario
	Result       model.OptimizeResult
	BarsUsed     int
	TotalCuts    int
	WastePercent float64
	Err          error
}

// CompareScenarios runs the optimizer for each scenario over the same
// demand and stock lengths and returns the results in scenario order.
// This enables side-by-side comparison of different saw setups (e.g.
// thinner blade, tighter safety margins, different scrap thresholds).
func CompareScenarios(scenarios []ComparisonScenario, items []model.OptimizationItem, stockLengths []float64, log *zap.Logger) []ComparisonResult {
	results := make([]ComparisonResult, 0, len(scenarios))

	for _, scenario := range scenarios {
		ctx, err := model.NewContext(items, stockLengths, scenario.Constraints,
			model.DefaultObjectives(), model.PerformanceBudget{}, model.DefaultCostModel())
		if err != nil {
			results = append(results, ComparisonResult{Scenario: scenario, Err: err})
			continue
		}

		result, err := New(DefaultParams(), log).Optimize(ctx)
		if err != nil {
			results = append(results, ComparisonResult{Scenario: scenario, Err: err})
			continue
		}

		totalCuts := 0
		for _, cut := range result.Cuts {
			totalCuts += len(cut.Segments)
		}

		results = append(results, ComparisonResult{
			Scenario:     scenario,
			Result:       result,
			BarsUsed:     len(result.Cuts),
			TotalCuts:    totalCuts,
			WastePercent: 100.0 - result.Efficiency,
		})
	}

	return results
}

// BuildDefaultScenarios generates what-if scenarios from the current
// constraints by varying key saw parameters.
func BuildDefaultScenarios(base model.Constraints) []ComparisonScenario {
	scenarios := []ComparisonScenario{
		{Name: "Current Setup", Constraints: base},
	}

	// Scenario: thinner blade
	if base.KerfWidth > 1.0 {
		thin := base
		thin.KerfWidth = base.KerfWidth * 0.5
		scenarios = append(scenarios, ComparisonScenario{
			Name:        fmt.Sprintf("Kerf %.1fmm (half)", thin.KerfWidth),
			Constraints: thin,
		})
	}

	// Scenario: no safety margins
	if base.StartSafety > 0 || base.EndSafety > 0 {
		noSafety := base
		noSafety.StartSafety = 0
		noSafety.EndSafety = 0
		scenarios = append(scenarios, ComparisonScenario{
			Name:        "No Safety Margins",
			Constraints: noSafety,
		})
	}

	// Scenario: keep shorter remnants
	if base.MinScrapLength > 50 {
		keepShort := base
		keepShort.MinScrapLength = base.MinScrapLength * 0.5
		scenarios = append(scenarios, ComparisonScenario{
			Name:        fmt.Sprintf("Min Scrap %.0fmm", keepShort.MinScrapLength),
			Constraints: keepShort,
		})
	}

	return scenarios
}
