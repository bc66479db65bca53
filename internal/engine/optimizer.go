// Package engine implements the cutting-stock solver: problem analysis,
// pattern enumeration, priority search over pattern combinations, a greedy
// best-fit fallback and plan validation.
package engine

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/barcut/barcut/internal/metrics"
	"github.com/barcut/barcut/internal/model"
)

// DefaultGreedyOverageTolerance is the excess allowed per length on the
// greedy path before overproduction becomes an error instead of a warning.
const DefaultGreedyOverageTolerance = 2

// Params collects every solver tunable in one place.
type Params struct {
	MinUtilization         float64
	Search                 SearchParams
	Placer                 PlacerConfig
	GreedyOverageTolerance int
}

// DefaultParams returns the standard solver tuning.
func DefaultParams() Params {
	return Params{
		MinUtilization:         DefaultMinUtilization,
		Search:                 SearchParams{WasteNormalization: DefaultWasteNormalization},
		Placer:                 DefaultPlacerConfig(),
		GreedyOverageTolerance: DefaultGreedyOverageTolerance,
	}
}

// Optimizer runs the full cutting-stock pipeline. The contract is "always
// return a feasible validated plan or an error": pattern-search failures
// fall back to greedy placement, while invariant violations abort.
type Optimizer struct {
	params Params
	log    *zap.Logger
}

// New builds an optimizer. A nil logger disables logging.
func New(params Params, log *zap.Logger) *Optimizer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Optimizer{params: params, log: log}
}

// Optimize produces a validated cutting plan for the given context.
func (o *Optimizer) Optimize(ctx *model.OptimizationContext) (model.OptimizeResult, error) {
	start := time.Now()

	groups := model.GroupByLength(ctx.Items())
	profile := AnalyzeProblem(groups)
	demand := ctx.Demand()

	o.log.Info("optimization started",
		zap.Int("unique_lengths", profile.UniqueLengths),
		zap.Int("total_demand", profile.TotalDemand),
		zap.String("complexity", string(profile.Complexity)),
		zap.String("strategy", string(profile.Strategy)))

	var (
		cuts     []*model.Cut
		warnings []string
		strategy model.Strategy
	)

	if profile.Strategy == model.StrategyPatternSearch {
		patternCuts, patternWarnings, err := o.solvePatterns(ctx, groups, profile, demand)
		switch {
		case err == nil:
			cuts = patternCuts
			warnings = patternWarnings
			strategy = model.StrategyPatternSearch
		case retryable(err):
			metrics.FallbacksTotal.WithLabelValues(fallbackReason(err)).Inc()
			o.log.Warn("pattern search failed, falling back to greedy placement", zap.Error(err))
		default:
			metrics.OptimizationsTotal.WithLabelValues(string(model.StrategyPatternSearch), "error").Inc()
			return model.OptimizeResult{}, err
		}
	}

	if cuts == nil {
		placer := NewGreedyPlacer(ctx, o.params.Placer, o.log)
		greedyCuts, err := placer.Place(ctx.Items())
		if err != nil {
			metrics.OptimizationsTotal.WithLabelValues(string(model.StrategyGreedy), "error").Inc()
			return model.OptimizeResult{}, err
		}
		warns, err := ValidateDemand(greedyCuts, demand, o.params.GreedyOverageTolerance)
		if err != nil {
			metrics.OptimizationsTotal.WithLabelValues(string(model.StrategyGreedy), "error").Inc()
			return model.OptimizeResult{}, err
		}
		cuts = greedyCuts
		warnings = warns
		strategy = model.StrategyGreedy
	}

	constraints := ctx.Constraints()
	if err := FinalizeCuts(cuts, constraints); err != nil {
		metrics.OptimizationsTotal.WithLabelValues(string(strategy), "error").Inc()
		return model.OptimizeResult{}, err
	}

	elapsed := time.Since(start)
	result := o.assemble(cuts, ctx, strategy, warnings, elapsed)

	metrics.OptimizationsTotal.WithLabelValues(string(strategy), "ok").Inc()
	metrics.SolveDuration.Observe(elapsed.Seconds())

	o.log.Info("optimization complete",
		zap.String("strategy", string(strategy)),
		zap.Int("bars", len(cuts)),
		zap.Float64("efficiency", result.Efficiency),
		zap.Float64("total_waste", result.TotalWaste),
		zap.Duration("elapsed", elapsed))

	return result, nil
}

// solvePatterns runs pattern generation and priority search, then converts
// the winning multiset into concrete cuts with a demand validation whose
// warnings (tolerated overproduction) are passed through to the result.
// Every returned error is either retryable (triggers the greedy fallback)
// or a fatal invariant violation.
func (o *Optimizer) solvePatterns(ctx *model.OptimizationContext, groups []model.ItemGroup, profile ProblemProfile, demand map[float64]int) ([]*model.Cut, []string, error) {
	patternCap := profile.PatternCap
	if budget := ctx.Budget().MaxPatterns; budget > 0 && (patternCap == 0 || budget < patternCap) {
		patternCap = budget
	}

	patterns, err := GeneratePatterns(groups, ctx.StockLengths(), ctx.Constraints(), patternCap, o.params.MinUtilization)
	if err != nil {
		return nil, nil, err
	}
	metrics.PatternsGenerated.Observe(float64(len(patterns)))
	o.log.Debug("patterns generated", zap.Int("count", len(patterns)), zap.Int("cap", patternCap))

	searchParams := o.params.Search
	if budget := ctx.Budget().MaxSearchStates; budget > 0 {
		searchParams.MaxStates = budget
	}
	// The context's objective weights steer state scoring. Cost counts on
	// both sides: material scales with bars, waste charges with offcuts.
	searchParams.WasteWeight = ctx.ObjectiveWeight(model.ObjectiveMinimizeWaste) + ctx.ObjectiveWeight(model.ObjectiveMinimizeCost)
	searchParams.BarWeight = ctx.ObjectiveWeight(model.ObjectiveMinimizeBars) + ctx.ObjectiveWeight(model.ObjectiveMinimizeCost)

	solution := SolvePrioritySearch(patterns, demand, searchParams, o.log)
	if solution == nil {
		return nil, nil, fmt.Errorf("%w: %d patterns", ErrSearchExhausted, len(patterns))
	}

	cuts, err := o.buildCuts(solution, patterns, ctx)
	if err != nil {
		return nil, nil, err
	}
	warnings, err := ValidateDemand(cuts, demand, searchParams.OverProductionTolerance)
	if err != nil {
		return nil, nil, err
	}
	return cuts, warnings, nil
}

// buildCuts converts the abstract pattern multiset into Cut objects with
// kerf-separated segment positions, attributing work orders and profiles
// per length in demand order.
func (o *Optimizer) buildCuts(solution *Solution, patterns []model.CuttingPattern, ctx *model.OptimizationContext) ([]*model.Cut, error) {
	constraints := ctx.Constraints()

	// FIFO of piece attributions per length, in input order.
	queues := make(map[float64][]model.OptimizationItem)
	for _, it := range ctx.Items() {
		for i := 0; i < it.Quantity; i++ {
			queues[it.Length] = append(queues[it.Length], it)
		}
	}

	var cuts []*model.Cut
	for pi, count := range solution.PatternCounts {
		pattern := patterns[pi]

		// Lengths in the pattern, descending, for stable segment order.
		lengths := make([]float64, 0, len(pattern.Counts))
		for l := range pattern.Counts {
			lengths = append(lengths, l)
		}
		sort.Sort(sort.Reverse(sort.Float64Slice(lengths)))

		for n := 0; n < count; n++ {
			cut := model.NewCut(pattern.StockLength)
			cursor := 0.0
			pieces := 0
			for _, l := range lengths {
				for k := 0; k < pattern.Counts[l]; k++ {
					pos := cursor
					if pieces > 0 && constraints.KerfWidth > 0 {
						pos += constraints.KerfWidth
					}
					if pos+l > constraints.UsableLength(cut.StockLength)+1e-9 {
						return nil, fmt.Errorf("%w: pattern %s overruns %.0fmm bar at %.2fmm",
							ErrCutOverflow, pattern.String(), cut.StockLength, pos+l)
					}
					seg := model.CuttingSegment{
						Length:      l,
						Position:    pos,
						EndPosition: pos + l,
					}
					if q := queues[l]; len(q) > 0 {
						seg.WorkOrderID = q[0].WorkOrderID
						seg.ProfileType = q[0].ProfileType
						queues[l] = q[1:]
					}
					cut.Segments = append(cut.Segments, seg)
					cursor = pos + l
					pieces++
				}
			}
			cut.SegmentCount = len(cut.Segments)
			cut.UsedLength = cursor
			cut.RemainingLength = cut.StockLength - cursor
			cut.KerfLoss = model.KerfLoss(pieces, constraints.KerfWidth)
			cuts = append(cuts, cut)
		}
	}
	return cuts, nil
}

// assemble computes the aggregate view of a finalized plan.
func (o *Optimizer) assemble(cuts []*model.Cut, ctx *model.OptimizationContext, strategy model.Strategy, warnings []string, elapsed time.Duration) model.OptimizeResult {
	constraints := ctx.Constraints()
	breakdown := model.CalculateCost(cuts, constraints, ctx.CostModel())

	confidence := 1.0
	if strategy == model.StrategyGreedy {
		confidence = 0.75
	}
	confidence -= 0.05 * float64(len(warnings))
	if confidence < 0 {
		confidence = 0
	}

	return model.OptimizeResult{
		Cuts:              cuts,
		Strategy:          strategy,
		Efficiency:        model.Efficiency(cuts),
		TotalWaste:        model.TotalWaste(cuts, constraints),
		TotalCost:         breakdown.Total.InexactFloat64(),
		ExecutionTime:     float64(elapsed.Milliseconds()),
		WasteDistribution: model.WasteDistribution(cuts, constraints),
		StockUsage:        model.SummarizeStockUsage(cuts, constraints),
		QualityScore:      model.QualityScore(cuts, constraints),
		Confidence:        confidence,
		Warnings:          warnings,
	}
}

// fallbackReason maps a retryable error to a stable metric label.
func fallbackReason(err error) string {
	switch {
	case errors.Is(err, ErrNoPatterns):
		return "no_patterns"
	case errors.Is(err, ErrSearchExhausted):
		return "search_exhausted"
	case errors.Is(err, ErrShortage):
		return "conversion_shortage"
	case errors.Is(err, ErrOverage):
		return "conversion_overage"
	default:
		return "other"
	}
}
