package engine

import (
	"fmt"
	"math"
	"sort"

	"go.uber.org/zap"

	"github.com/barcut/barcut/internal/model"
)

// Greedy placer defaults. Both are heuristic tuning knobs, not semantics:
// the penalty discourages leaving unusable fragments without forbidding
// them, and the look-ahead depth bounds how far flexibility is scored.
const (
	DefaultFragmentPenalty = 0.95
	DefaultLookaheadDepth  = 3
)

// PlacerConfig tunes the greedy fallback placer.
type PlacerConfig struct {
	FragmentPenalty float64
	LookaheadDepth  int
}

// DefaultPlacerConfig returns the standard greedy tuning.
func DefaultPlacerConfig() PlacerConfig {
	return PlacerConfig{
		FragmentPenalty: DefaultFragmentPenalty,
		LookaheadDepth:  DefaultLookaheadDepth,
	}
}

// pieceUnit is one physical piece of demand during placement.
type pieceUnit struct {
	length      float64
	workOrderID string
	profileType string
}

// openBar is a partially used stock bar accepting further pieces.
type openBar struct {
	cut      *model.Cut
	usable   float64 // stock minus both safety margins
	usedSpan float64 // pieces plus kerf, safety excluded
	pieces   int
}

func (b *openBar) free() float64 {
	return b.usable - b.usedSpan
}

// insertCost returns the usable length one more piece consumes on this bar.
func (b *openBar) insertCost(length, kerf float64) float64 {
	if b.pieces > 0 && kerf > 0 {
		return length + kerf
	}
	return length
}

// GreedyPlacer places demand piece by piece into the best-fitting open bar,
// opening new bars by minimum-total-waste stock selection. It is the
// fallback path when pattern search fails and is feasible by construction:
// context validation guarantees every item fits the largest usable stock.
type GreedyPlacer struct {
	constraints model.Constraints
	stocks      []float64 // ascending
	cfg         PlacerConfig
	log         *zap.Logger
}

// NewGreedyPlacer builds a placer for one optimization context.
func NewGreedyPlacer(ctx *model.OptimizationContext, cfg PlacerConfig, log *zap.Logger) *GreedyPlacer {
	if cfg.FragmentPenalty <= 0 || cfg.FragmentPenalty > 1 {
		cfg.FragmentPenalty = DefaultFragmentPenalty
	}
	if cfg.LookaheadDepth <= 0 {
		cfg.LookaheadDepth = DefaultLookaheadDepth
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &GreedyPlacer{
		constraints: ctx.Constraints(),
		stocks:      ctx.StockLengths(),
		cfg:         cfg,
		log:         log,
	}
}

// Place assigns every demanded piece to a bar and returns the open cuts,
// unfinalized. Pieces are placed largest first (best fit decreasing).
func (g *GreedyPlacer) Place(items []model.OptimizationItem) ([]*model.Cut, error) {
	units := expandUnits(items)
	if len(units) == 0 {
		return nil, nil
	}

	var bars []*openBar
	for i, unit := range units {
		bar := g.chooseBar(bars, units, i)
		if bar == nil {
			stock := g.selectStock(unit.length, remainingOfLength(units[i:], unit.length))
			bar = &openBar{
				cut:    model.NewCut(stock),
				usable: g.constraints.UsableLength(stock),
			}
			bars = append(bars, bar)
		}
		if err := g.placeOn(bar, unit); err != nil {
			return nil, err
		}
	}

	g.log.Debug("greedy placement complete",
		zap.Int("pieces", len(units)),
		zap.Int("bars", len(bars)))

	cuts := make([]*model.Cut, len(bars))
	for i, b := range bars {
		cuts[i] = b.cut
	}
	return cuts, nil
}

// expandUnits flattens items into individual pieces, largest first. The
// sort is stable so equal lengths keep input order and results stay
// deterministic.
func expandUnits(items []model.OptimizationItem) []pieceUnit {
	var units []pieceUnit
	for _, it := range items {
		for i := 0; i < it.Quantity; i++ {
			units = append(units, pieceUnit{
				length:      it.Length,
				workOrderID: it.WorkOrderID,
				profileType: it.ProfileType,
			})
		}
	}
	sort.SliceStable(units, func(i, j int) bool {
		return units[i].length > units[j].length
	})
	return units
}

// chooseBar scans all open bars for the one that, after accepting this
// piece, leaves the least waste. Placements that would leave an unusable
// fragment have their waste score inflated by 1/penalty; near-ties are
// broken by the future-opportunity score of the leftover space.
func (g *GreedyPlacer) chooseBar(bars []*openBar, units []pieceUnit, idx int) *openBar {
	unit := units[idx]
	var best *openBar
	bestScore := math.Inf(1)
	bestOpportunity := -1.0

	for _, bar := range bars {
		cost := bar.insertCost(unit.length, g.constraints.KerfWidth)
		free := bar.free()
		if cost > free+1e-9 {
			continue
		}
		left := free - cost
		score := left
		if left > 0 && left < g.constraints.MinScrapLength {
			score = left / g.cfg.FragmentPenalty
		}
		opportunity := g.futureOpportunity(left, units, idx+1)
		if score < bestScore-1e-9 || (math.Abs(score-bestScore) <= 1e-9 && opportunity > bestOpportunity) {
			best = bar
			bestScore = score
			bestOpportunity = opportunity
		}
	}
	return best
}

// futureOpportunity scores leftover space by the fraction of the next few
// demand pieces that would still fit into it. Larger is more flexible.
func (g *GreedyPlacer) futureOpportunity(space float64, units []pieceUnit, from int) float64 {
	depth := g.cfg.LookaheadDepth
	considered := 0
	fits := 0
	for i := from; i < len(units) && considered < depth; i++ {
		considered++
		// The space is mid-bar, so a future piece costs kerf plus length.
		if units[i].length+g.constraints.KerfWidth <= space+1e-9 {
			fits++
		}
	}
	if considered == 0 {
		return 0
	}
	return float64(fits) / float64(considered)
}

// selectStock picks the stock length for a new bar by minimum total waste
// across all bars needed for the full remaining quantity of this piece
// length. Ties fall to fewer bars, then lower waste share, then smaller
// stock.
func (g *GreedyPlacer) selectStock(length float64, remainingQty int) float64 {
	var best *stockCandidate
	for _, stock := range g.stocks {
		perBar := model.PiecesPerBar(stock, length, g.constraints)
		if perBar == 0 {
			continue
		}
		barCount := (remainingQty + perBar - 1) / perBar
		usable := g.constraints.UsableLength(stock)
		// Every piece after a bar's first costs one kerf, so the run loses
		// one kerf per piece minus one per bar.
		kerfLoss := g.constraints.KerfWidth * float64(remainingQty-barCount)
		if kerfLoss < 0 {
			kerfLoss = 0
		}
		totalWaste := float64(barCount)*usable - float64(remainingQty)*length - kerfLoss
		c := stockCandidate{
			stock:      stock,
			totalWaste: totalWaste,
			barCount:   barCount,
			wasteShare: totalWaste / (float64(barCount) * stock),
		}
		if best == nil || betterStock(c, *best) {
			cc := c
			best = &cc
		}
	}
	if best == nil {
		// Context validation guarantees the largest stock admits every
		// item, so this is unreachable with a validated context.
		return g.stocks[len(g.stocks)-1]
	}
	return best.stock
}

// stockCandidate scores one stock length for opening a new bar.
type stockCandidate struct {
	stock      float64
	totalWaste float64
	barCount   int
	wasteShare float64
}

func betterStock(a, b stockCandidate) bool {
	if math.Abs(a.totalWaste-b.totalWaste) > 1e-9 {
		return a.totalWaste < b.totalWaste
	}
	if a.barCount != b.barCount {
		return a.barCount < b.barCount
	}
	if math.Abs(a.wasteShare-b.wasteShare) > 1e-12 {
		return a.wasteShare < b.wasteShare
	}
	return a.stock < b.stock
}

// placeOn appends the piece to the bar, kerf-separated from the previous
// piece. Overflow here is a programming invariant violation, not a
// recoverable condition.
func (g *GreedyPlacer) placeOn(bar *openBar, unit pieceUnit) error {
	cost := bar.insertCost(unit.length, g.constraints.KerfWidth)
	if cost > bar.free()+1e-9 {
		return fmt.Errorf("%w: piece %.2fmm into %.2fmm free on %.0fmm bar",
			ErrCutOverflow, unit.length, bar.free(), bar.cut.StockLength)
	}

	pos := bar.usedSpan
	if bar.pieces > 0 && g.constraints.KerfWidth > 0 {
		pos += g.constraints.KerfWidth
	}
	bar.cut.Segments = append(bar.cut.Segments, model.CuttingSegment{
		Length:      unit.length,
		Position:    pos,
		EndPosition: pos + unit.length,
		WorkOrderID: unit.workOrderID,
		ProfileType: unit.profileType,
	})
	bar.usedSpan = pos + unit.length
	bar.pieces++

	bar.cut.SegmentCount = len(bar.cut.Segments)
	bar.cut.UsedLength = bar.usedSpan
	bar.cut.RemainingLength = bar.cut.StockLength - bar.usedSpan
	bar.cut.KerfLoss = model.KerfLoss(bar.pieces, g.constraints.KerfWidth)
	return nil
}

// remainingOfLength counts pieces of exactly this length in the pending
// demand slice, the current piece included.
func remainingOfLength(pending []pieceUnit, length float64) int {
	count := 0
	for _, u := range pending {
		if u.length == length {
			count++
		}
	}
	return count
}
