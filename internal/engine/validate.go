package engine

import (
	"fmt"
	"sort"

	"github.com/barcut/barcut/internal/model"
)

// Accounting tolerances for the bar length invariant
// used + remaining == stock, before and after finalization.
const (
	preFinalizeTolerance  = 1e-9
	postFinalizeTolerance = 0.01
)

// ValidateDemand tallies placed pieces per length against required demand.
// A shortage of any length is always an error. Overage up to maxOverage
// pieces per length is reported as a warning; beyond that it is an error.
// The pattern-search path passes maxOverage 0 for an exact match.
func ValidateDemand(cuts []*model.Cut, demand map[float64]int, maxOverage int) ([]string, error) {
	placed := make(map[float64]int)
	for _, c := range cuts {
		if c.SegmentCount != len(c.Segments) {
			return nil, fmt.Errorf("%w: cut %s reports %d segments, has %d",
				ErrSegmentCount, c.ID, c.SegmentCount, len(c.Segments))
		}
		for _, s := range c.Segments {
			placed[s.Length]++
		}
	}

	var warnings []string
	for length, required := range demand {
		got := placed[length]
		if got < required {
			return nil, fmt.Errorf("%w: length %.1fmm has %d of %d required",
				ErrShortage, length, got, required)
		}
		if excess := got - required; excess > 0 {
			if excess > maxOverage {
				return nil, fmt.Errorf("%w: length %.1fmm produced %d over demand (max %d)",
					ErrOverage, length, excess, maxOverage)
			}
			warnings = append(warnings, fmt.Sprintf("length %.1fmm overproduced by %d piece(s)", length, excess))
		}
	}
	// Pieces of a length nobody asked for are overage regardless of policy.
	for length, got := range placed {
		if _, ok := demand[length]; !ok {
			return nil, fmt.Errorf("%w: %d piece(s) of undemanded length %.1fmm", ErrOverage, got, length)
		}
	}
	sort.Strings(warnings)
	return warnings, nil
}

// FinalizeCuts folds the safety margins back into each cut's used length,
// recomputes the remnant, verifies the accounting invariant and assigns
// waste category, reclaimability and a human-readable plan label.
// Finalization mutates the cuts in place and must run exactly once.
func FinalizeCuts(cuts []*model.Cut, c model.Constraints) error {
	for _, cut := range cuts {
		if cut.SegmentCount != len(cut.Segments) {
			return fmt.Errorf("%w: cut %s reports %d segments, has %d",
				ErrSegmentCount, cut.ID, cut.SegmentCount, len(cut.Segments))
		}
		if err := checkAccounting(cut, preFinalizeTolerance); err != nil {
			return err
		}

		// Segment positions were relative to the usable area; shift them to
		// physical bar coordinates.
		for i := range cut.Segments {
			cut.Segments[i].Position += c.StartSafety
			cut.Segments[i].EndPosition += c.StartSafety
		}
		cut.UsedLength += c.StartSafety + c.EndSafety
		cut.RemainingLength = cut.StockLength - cut.UsedLength

		if err := checkAccounting(cut, postFinalizeTolerance); err != nil {
			return err
		}

		cut.WasteCategory = model.CategorizeWaste(cut.RemainingLength, c)
		cut.Reclaimable = model.IsReclaimable(cut.RemainingLength, c)
		cut.PlanLabel = planLabel(cut)
	}
	return nil
}

func checkAccounting(cut *model.Cut, tolerance float64) error {
	if dev := cut.AccountingError(); dev > tolerance {
		return fmt.Errorf("%w: cut %s off by %.6fmm (used %.3f + remaining %.3f != stock %.3f)",
			ErrAccounting, cut.ID, dev, cut.UsedLength, cut.RemainingLength, cut.StockLength)
	}
	return nil
}

// planLabel renders a cut as the shop floor reads it,
// e.g. "6100mm: 3×918 + 2×687, rest 224mm".
func planLabel(cut *model.Cut) string {
	counts := make(map[float64]int)
	for _, s := range cut.Segments {
		counts[s.Length]++
	}
	lengths := make([]float64, 0, len(counts))
	for l := range counts {
		lengths = append(lengths, l)
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(lengths)))

	label := fmt.Sprintf("%.0fmm:", cut.StockLength)
	for i, l := range lengths {
		if i > 0 {
			label += " +"
		}
		label += fmt.Sprintf(" %d×%.0f", counts[l], l)
	}
	return label + fmt.Sprintf(", rest %.0fmm", cut.RemainingLength)
}
