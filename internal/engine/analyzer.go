package engine

import (
	"math"

	"github.com/barcut/barcut/internal/model"
)

// Complexity classes for a cutting problem.
type Complexity string

const (
	ComplexityLow     Complexity = "low"
	ComplexityMedium  Complexity = "medium"
	ComplexityHigh    Complexity = "high"
	ComplexityExtreme Complexity = "extreme"
)

// ProblemProfile classifies a problem and recommends a solve strategy.
type ProblemProfile struct {
	UniqueLengths int
	TotalDemand   int
	Complexity    Complexity
	Strategy      model.Strategy
	PatternCap    int // 0 = unlimited
}

// patternComplexityLimit is the estimated pattern-space size beyond which
// the pattern search is not attempted at all.
const patternComplexityLimit = 1_000_000

// AnalyzeProblem sizes the problem and picks a strategy. It is a pure
// function of the demand groups and never fails: problems too large for
// pattern search are routed to the greedy placer.
func AnalyzeProblem(groups []model.ItemGroup) ProblemProfile {
	unique := len(groups)
	demand := 0
	for _, g := range groups {
		demand += g.Quantity
	}

	// 2^unique is a crude upper bound on subset-style pattern shapes;
	// scaled by demand it tracks how fast enumeration blows up.
	complexity := math.Pow(2, float64(unique)) * float64(demand)

	p := ProblemProfile{UniqueLengths: unique, TotalDemand: demand}
	switch {
	case complexity > patternComplexityLimit:
		p.Complexity = ComplexityExtreme
		p.Strategy = model.StrategyGreedy
	case unique <= 10 && demand <= 500:
		p.Complexity = ComplexityLow
		p.Strategy = model.StrategyPatternSearch
		p.PatternCap = 0
	case unique <= 15 && demand <= 1000:
		p.Complexity = ComplexityMedium
		p.Strategy = model.StrategyPatternSearch
		p.PatternCap = 50_000
	case unique <= 20 && demand <= 2000:
		p.Complexity = ComplexityHigh
		p.Strategy = model.StrategyPatternSearch
		p.PatternCap = 30_000
	default:
		p.Complexity = ComplexityExtreme
		p.Strategy = model.StrategyGreedy
	}
	return p
}
