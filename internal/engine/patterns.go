package engine

import (
	"sort"

	"github.com/barcut/barcut/internal/model"
)

// DefaultMinUtilization is the minimum share of a bar's usable length a
// pattern must fill to survive filtering.
const DefaultMinUtilization = 0.30

// hardPatternCeiling bounds raw enumeration regardless of the caller's cap,
// so pathological inputs cannot grow memory without bound.
const hardPatternCeiling = 200_000

// rawPattern is the internal array-indexed form of a pattern during
// generation. Counts are indexed by position in the length table instead
// of by float key, which keeps the DFS free of map mutation.
type rawPattern struct {
	stockLength float64
	counts      []int
	used        float64
	waste       float64
	pieces      int
}

// GeneratePatterns enumerates every feasible cutting pattern for each stock
// length via bounded depth-first recursion over item lengths. Patterns
// below the utilization threshold and patterns strictly dominated by a
// better pattern on the same stock are removed; survivors are sorted by
// waste and truncated to patternCap (0 = unlimited). A zero minUtilization
// disables the threshold, a negative one selects the default. Returns
// ErrNoPatterns when no stock length admits any pattern.
func GeneratePatterns(groups []model.ItemGroup, stockLengths []float64, c model.Constraints, patternCap int, minUtilization float64) ([]model.CuttingPattern, error) {
	if minUtilization < 0 {
		minUtilization = DefaultMinUtilization
	}

	// Length table, descending. Groups from GroupByLength already arrive
	// descending but the generator does not rely on that.
	lengths := make([]float64, len(groups))
	limits := make([]int, len(groups))
	order := make([]int, len(groups))
	for i := range groups {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		return groups[order[a]].Length > groups[order[b]].Length
	})
	for i, idx := range order {
		lengths[i] = groups[idx].Length
		limits[i] = groups[idx].Quantity
	}

	// Stock lengths descending: larger bars admit richer patterns and are
	// enumerated first so the raw ceiling cuts the least useful tail.
	stocks := make([]float64, len(stockLengths))
	copy(stocks, stockLengths)
	sort.Sort(sort.Reverse(sort.Float64Slice(stocks)))

	rawGuard := hardPatternCeiling
	if patternCap > 0 && patternCap*4 < rawGuard {
		rawGuard = patternCap * 4
	}

	var raw []rawPattern
	for _, stock := range stocks {
		usable := c.UsableLength(stock)
		if usable <= 0 {
			continue
		}
		gen := dfsGenerator{
			lengths:  lengths,
			limits:   limits,
			kerf:     c.KerfWidth,
			usable:   usable,
			stock:    stock,
			minUtil:  minUtilization,
			maxTotal: rawGuard,
		}
		gen.counts = make([]int, len(lengths))
		gen.run(0, 0, 0, &raw)
		if len(raw) >= rawGuard {
			break
		}
	}

	if len(raw) == 0 {
		return nil, ErrNoPatterns
	}

	raw = filterDominated(raw)
	sortPatterns(raw)
	if patternCap > 0 && len(raw) > patternCap {
		raw = raw[:patternCap]
	}

	patterns := make([]model.CuttingPattern, len(raw))
	for i, rp := range raw {
		counts := make(map[float64]int)
		for j, n := range rp.counts {
			if n > 0 {
				counts[lengths[j]] = n
			}
		}
		patterns[i] = model.CuttingPattern{
			StockLength: rp.stockLength,
			Counts:      counts,
			Used:        rp.used,
			Waste:       rp.waste,
		}
	}
	return patterns, nil
}

// dfsGenerator carries the per-stock enumeration state. The counts slice
// is mutated in place down the recursion and restored on unwind; recorded
// patterns take a copy, so no state leaks across branches.
type dfsGenerator struct {
	lengths  []float64
	limits   []int
	counts   []int
	kerf     float64
	usable   float64
	stock    float64
	minUtil  float64
	maxTotal int
}

func (g *dfsGenerator) run(idx int, used float64, pieces int, out *[]rawPattern) {
	if len(*out) >= g.maxTotal {
		return
	}
	if idx == len(g.lengths) {
		if pieces == 0 {
			return
		}
		if used/g.usable < g.minUtil {
			return
		}
		counts := make([]int, len(g.counts))
		copy(counts, g.counts)
		*out = append(*out, rawPattern{
			stockLength: g.stock,
			counts:      counts,
			used:        used,
			waste:       g.usable - used,
			pieces:      pieces,
		})
		return
	}

	l := g.lengths[idx]
	maxFit := g.capacityBound(l, used, pieces)
	if maxFit > g.limits[idx] {
		maxFit = g.limits[idx]
	}

	// Denser patterns first: descending count keeps low-waste patterns at
	// the front when the raw ceiling truncates enumeration.
	for n := maxFit; n >= 0; n-- {
		g.counts[idx] = n
		cost := g.insertCost(l, n, pieces)
		g.run(idx+1, used+cost, pieces+n, out)
		if len(*out) >= g.maxTotal {
			break
		}
	}
	g.counts[idx] = 0
}

// capacityBound returns the largest count of pieces of length l that still
// fits in the remaining usable length, kerf between pieces included.
func (g *dfsGenerator) capacityBound(l, used float64, pieces int) int {
	remaining := g.usable - used
	if remaining < l {
		return 0
	}
	if g.kerf <= 0 {
		return int(remaining / l)
	}
	// The first added piece costs a kerf only if pieces already exist.
	available := remaining
	if pieces > 0 {
		available -= g.kerf
		if available < l {
			return 0
		}
	}
	return int((available + g.kerf) / (l + g.kerf))
}

// insertCost returns the usable length consumed by adding n pieces of
// length l to a bar that already holds `pieces` pieces.
func (g *dfsGenerator) insertCost(l float64, n, pieces int) float64 {
	if n == 0 {
		return 0
	}
	cost := l * float64(n)
	if g.kerf > 0 {
		kerfs := n - 1
		if pieces > 0 {
			kerfs = n
		}
		cost += g.kerf * float64(kerfs)
	}
	return cost
}

// filterDominated removes patterns strictly dominated by another pattern on
// the same stock length: the dominator places at least as many pieces of
// every length and wastes strictly less.
func filterDominated(raw []rawPattern) []rawPattern {
	// Group by stock length; dominance is only defined within a stock.
	byStock := make(map[float64][]int)
	for i, rp := range raw {
		byStock[rp.stockLength] = append(byStock[rp.stockLength], i)
	}

	dominated := make([]bool, len(raw))
	for _, idxs := range byStock {
		// Waste ascending: a pattern can only be dominated by one with
		// strictly less waste, so each candidate scans earlier survivors.
		sort.Slice(idxs, func(a, b int) bool {
			return raw[idxs[a]].waste < raw[idxs[b]].waste
		})
		for i := 1; i < len(idxs); i++ {
			p := raw[idxs[i]]
			for j := 0; j < i; j++ {
				if dominated[idxs[j]] {
					continue
				}
				q := raw[idxs[j]]
				if q.waste < p.waste && countsDominate(q.counts, p.counts) {
					dominated[idxs[i]] = true
					break
				}
			}
		}
	}

	kept := raw[:0]
	for i, rp := range raw {
		if !dominated[i] {
			kept = append(kept, rp)
		}
	}
	return kept
}

func countsDominate(q, p []int) bool {
	for i := range p {
		if q[i] < p[i] {
			return false
		}
	}
	return true
}

// sortPatterns orders by waste ascending with deterministic tie-breaks so
// identical inputs always yield identical pattern orderings.
func sortPatterns(raw []rawPattern) {
	sort.Slice(raw, func(a, b int) bool {
		if raw[a].waste != raw[b].waste {
			return raw[a].waste < raw[b].waste
		}
		if raw[a].stockLength != raw[b].stockLength {
			return raw[a].stockLength > raw[b].stockLength
		}
		if raw[a].pieces != raw[b].pieces {
			return raw[a].pieces > raw[b].pieces
		}
		for i := range raw[a].counts {
			if raw[a].counts[i] != raw[b].counts[i] {
				return raw[a].counts[i] > raw[b].counts[i]
			}
		}
		return false
	})
}
