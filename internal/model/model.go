package model

import (
	"fmt"
	"math"
	"sort"

	"github.com/google/uuid"
)

// OptimizationItem represents a demanded piece of material to be cut.
type OptimizationItem struct {
	ID          string  `json:"id"`
	Label       string  `json:"label"`
	ProfileType string  `json:"profile_type"`
	Length      float64 `json:"length"` // mm
	Quantity    int     `json:"quantity"`
	WorkOrderID string  `json:"work_order_id"`
}

// NewItem creates an OptimizationItem with a generated ID.
func NewItem(label string, length float64, qty int) OptimizationItem {
	return OptimizationItem{
		ID:       uuid.New().String()[:8],
		Label:    label,
		Length:   length,
		Quantity: qty,
	}
}

// ItemGroup collapses items of equal length for pattern work.
type ItemGroup struct {
	Length   float64 `json:"length"`
	Quantity int     `json:"quantity"`
}

// GroupByLength collapses items into per-length groups, sorted by length
// descending. Grouping ignores profile and work order; those are restored
// when abstract placements are converted back into segments.
func GroupByLength(items []OptimizationItem) []ItemGroup {
	byLength := make(map[float64]int)
	for _, it := range items {
		byLength[it.Length] += it.Quantity
	}
	groups := make([]ItemGroup, 0, len(byLength))
	for length, qty := range byLength {
		groups = append(groups, ItemGroup{Length: length, Quantity: qty})
	}
	sort.Slice(groups, func(i, j int) bool {
		return groups[i].Length > groups[j].Length
	})
	return groups
}

// Constraints holds the physical cutting constraints of the saw.
type Constraints struct {
	KerfWidth      float64 `json:"kerf_width"`       // Blade width lost per cut (mm)
	StartSafety    float64 `json:"start_safety"`     // Unusable length at bar start (mm)
	EndSafety      float64 `json:"end_safety"`       // Unusable length at bar end (mm)
	MinScrapLength float64 `json:"min_scrap_length"` // Shortest remnant worth keeping (mm)
}

// UsableLength returns the length of a stock bar available for pieces,
// after both safety margins. Non-positive means the stock is unusable.
func (c Constraints) UsableLength(stockLength float64) float64 {
	return stockLength - c.StartSafety - c.EndSafety
}

// DefaultConstraints returns typical values for an aluminium profile saw.
func DefaultConstraints() Constraints {
	return Constraints{
		KerfWidth:      5.0,
		StartSafety:    10.0,
		EndSafety:      10.0,
		MinScrapLength: 100.0,
	}
}

// CuttingSegment is a single piece placed on a bar.
type CuttingSegment struct {
	Length      float64 `json:"length"`
	Position    float64 `json:"position"`     // mm from bar start, safety excluded until finalization
	EndPosition float64 `json:"end_position"` // Position + Length
	WorkOrderID string  `json:"work_order_id"`
	ProfileType string  `json:"profile_type"`
}

// WasteCategory classifies the leftover of a cut bar.
type WasteCategory string

const (
	WasteReusable WasteCategory = "reusable" // Long enough to return to stock
	WasteFragment WasteCategory = "fragment" // Too short to reuse, too long to ignore
	WasteDust     WasteCategory = "dust"     // Negligible, kerf-scale remnant
)

// DustThreshold is the remnant length (mm) below which waste is treated
// as dust rather than a fragment.
const DustThreshold = 10.0

// Cut is the cutting plan for one physical stock bar.
type Cut struct {
	ID              string           `json:"id"`
	StockLength     float64          `json:"stock_length"`
	Segments        []CuttingSegment `json:"segments"`
	SegmentCount    int              `json:"segment_count"`
	UsedLength      float64          `json:"used_length"`
	RemainingLength float64          `json:"remaining_length"`
	KerfLoss        float64          `json:"kerf_loss"`
	WasteCategory   WasteCategory    `json:"waste_category,omitempty"`
	Reclaimable     bool             `json:"reclaimable"`
	PlanLabel       string           `json:"plan_label,omitempty"`
}

// NewCut opens an empty cut plan for a bar of the given stock length.
// UsedLength starts at zero and excludes safety margins until finalization.
func NewCut(stockLength float64) *Cut {
	return &Cut{
		ID:              uuid.New().String()[:8],
		StockLength:     stockLength,
		RemainingLength: stockLength,
	}
}

// AccountingError returns the absolute deviation of the bar's length
// accounting: |used + remaining - stock|.
func (c *Cut) AccountingError() float64 {
	return math.Abs(c.UsedLength + c.RemainingLength - c.StockLength)
}

// SegmentLengths returns the multiset of placed piece lengths.
func (c *Cut) SegmentLengths() []float64 {
	lengths := make([]float64, len(c.Segments))
	for i, s := range c.Segments {
		lengths[i] = s.Length
	}
	return lengths
}

// CuttingPattern is an abstract multiset of piece lengths that fits within
// one stock bar's usable length.
type CuttingPattern struct {
	StockLength float64         `json:"stock_length"`
	Counts      map[float64]int `json:"counts"` // piece length -> count
	Used        float64         `json:"used"`   // piece lengths + kerf between pieces
	Waste       float64         `json:"waste"`  // usable length - used
}

// PieceCount returns the total number of pieces in the pattern.
func (p CuttingPattern) PieceCount() int {
	total := 0
	for _, n := range p.Counts {
		total += n
	}
	return total
}

// Clone returns a deep copy of the pattern. Patterns are treated as
// immutable once generated; Clone exists for callers that must not.
func (p CuttingPattern) Clone() CuttingPattern {
	counts := make(map[float64]int, len(p.Counts))
	for l, n := range p.Counts {
		counts[l] = n
	}
	return CuttingPattern{StockLength: p.StockLength, Counts: counts, Used: p.Used, Waste: p.Waste}
}

// String renders the pattern in a compact human-readable form,
// e.g. "6100: 3x918 + 2x687 (waste 120.0)".
func (p CuttingPattern) String() string {
	lengths := make([]float64, 0, len(p.Counts))
	for l := range p.Counts {
		lengths = append(lengths, l)
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(lengths)))
	s := fmt.Sprintf("%.0f:", p.StockLength)
	for i, l := range lengths {
		if i > 0 {
			s += " +"
		}
		s += fmt.Sprintf(" %dx%.0f", p.Counts[l], l)
	}
	return s + fmt.Sprintf(" (waste %.1f)", p.Waste)
}

// StockUsage summarizes how many bars of one stock length were consumed.
type StockUsage struct {
	StockLength float64 `json:"stock_length"`
	BarsUsed    int     `json:"bars_used"`
	TotalWaste  float64 `json:"total_waste"`
	Efficiency  float64 `json:"efficiency"` // 0..100
}

// Strategy identifies which solver path produced a result.
type Strategy string

const (
	StrategyPatternSearch Strategy = "pattern-search"
	StrategyGreedy        Strategy = "greedy"
)

// OptimizeResult is the final validated cutting plan with aggregates.
type OptimizeResult struct {
	Cuts              []*Cut                `json:"cuts"`
	Strategy          Strategy              `json:"strategy"`
	Efficiency        float64               `json:"efficiency"` // 0..100
	TotalWaste        float64               `json:"total_waste"`
	TotalCost         float64               `json:"total_cost"`
	ExecutionTime     float64               `json:"execution_time_ms"`
	WasteDistribution map[WasteCategory]int `json:"waste_distribution"`
	StockUsage        []StockUsage          `json:"stock_usage"`
	QualityScore      float64               `json:"quality_score"` // 0..100
	Confidence        float64               `json:"confidence"`    // 0..1
	Warnings          []string              `json:"warnings,omitempty"`
}

// TotalBars returns the number of stock bars consumed by the plan.
func (r OptimizeResult) TotalBars() int {
	return len(r.Cuts)
}

// PlacedQuantity tallies placed piece counts per length across all cuts.
func (r OptimizeResult) PlacedQuantity() map[float64]int {
	placed := make(map[float64]int)
	for _, c := range r.Cuts {
		for _, s := range c.Segments {
			placed[s.Length]++
		}
	}
	return placed
}
