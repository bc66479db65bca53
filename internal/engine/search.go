package engine

import (
	"container/heap"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/barcut/barcut/internal/model"
)

// MaxSearchStates is the hard ceiling on explored states, guaranteeing
// termination regardless of configuration.
const MaxSearchStates = 10_000

// DefaultWasteNormalization converts accumulated waste (mm) into the same
// order of magnitude as remaining piece counts when scoring states.
const DefaultWasteNormalization = 100.0

// SearchParams tunes the priority search.
type SearchParams struct {
	MaxStates               int     // 0 = adaptive, always clamped to MaxSearchStates
	OverProductionTolerance int     // allowed excess pieces per length; 0 = exact
	WasteNormalization      float64 // mm of waste weighted like one missing piece

	// Objective weights applied when scoring states. With both zero the
	// search minimizes waste alone.
	WasteWeight float64
	BarWeight   float64
}

// Solution is the winning pattern multiset of a priority search.
type Solution struct {
	PatternCounts  []int // applications per pattern index
	TotalWaste     float64
	Bars           int
	StatesExplored int
}

// searchState is one node of the partial-fulfillment search. States form
// an arena with parent links; the winning pattern multiset is rebuilt by
// walking parents, so states stay small.
type searchState struct {
	remaining []int // demand left per length index; negative = overproduced
	waste     float64
	bars      int
	parent    int // arena index, -1 for root
	pattern   int // pattern applied to reach this state
	score     float64
	seq       int // insertion order, final tie-break for determinism
}

// stateHeap is a min-heap of arena indices ordered by score.
type stateHeap struct {
	arena *[]searchState
	idx   []int
}

func (h stateHeap) Len() int { return len(h.idx) }

func (h stateHeap) Less(i, j int) bool {
	a, b := (*h.arena)[h.idx[i]], (*h.arena)[h.idx[j]]
	if a.score != b.score {
		return a.score < b.score
	}
	if a.waste != b.waste {
		return a.waste < b.waste
	}
	return a.seq < b.seq
}

func (h stateHeap) Swap(i, j int) { h.idx[i], h.idx[j] = h.idx[j], h.idx[i] }

func (h *stateHeap) Push(x any) { h.idx = append(h.idx, x.(int)) }

func (h *stateHeap) Pop() any {
	old := h.idx
	n := len(old)
	v := old[n-1]
	h.idx = old[:n-1]
	return v
}

// SolvePrioritySearch runs a best-first search for a pattern multiset whose
// combined output matches demand within the overproduction tolerance,
// minimizing waste. A nil return is not an error: it signals the caller to
// fall back to greedy placement.
func SolvePrioritySearch(patterns []model.CuttingPattern, demand map[float64]int, params SearchParams, log *zap.Logger) *Solution {
	if log == nil {
		log = zap.NewNop()
	}
	if len(patterns) == 0 || len(demand) == 0 {
		return nil
	}

	// Fixed length table, descending, shared by all state vectors.
	lengths := make([]float64, 0, len(demand))
	for l := range demand {
		lengths = append(lengths, l)
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(lengths)))
	index := make(map[float64]int, len(lengths))
	for i, l := range lengths {
		index[l] = i
	}

	// Pattern count vectors in the same index space.
	vectors := make([][]int, len(patterns))
	for i, p := range patterns {
		vec := make([]int, len(lengths))
		usable := true
		for l, n := range p.Counts {
			j, ok := index[l]
			if !ok {
				usable = false
				break
			}
			vec[j] = n
		}
		if !usable {
			continue
		}
		vectors[i] = vec
	}

	maxStates := params.MaxStates
	if maxStates <= 0 {
		maxStates = 2000 + 10*len(patterns)
	}
	if maxStates > MaxSearchStates {
		maxStates = MaxSearchStates
	}
	wasteNorm := params.WasteNormalization
	if wasteNorm <= 0 {
		wasteNorm = DefaultWasteNormalization
	}
	tol := params.OverProductionTolerance
	wasteWeight, barWeight := params.WasteWeight, params.BarWeight
	if wasteWeight <= 0 && barWeight <= 0 {
		wasteWeight = 1
	}

	root := make([]int, len(lengths))
	for l, q := range demand {
		root[index[l]] = q
	}

	arena := []searchState{{remaining: root, parent: -1, pattern: -1}}
	arena[0].score = scoreState(arena[0], wasteNorm, wasteWeight, barWeight)

	open := &stateHeap{arena: &arena}
	heap.Init(open)
	heap.Push(open, 0)

	// best waste seen per demand signature, to skip re-expansion of
	// strictly worse duplicates.
	visited := map[string]float64{stateKey(root): 0}

	explored := 0
	seq := 0
	for open.Len() > 0 && explored < maxStates {
		cur := heap.Pop(open).(int)
		state := arena[cur]
		explored++

		if satisfied(state.remaining) {
			log.Debug("priority search solved",
				zap.Int("states", explored),
				zap.Int("bars", state.bars),
				zap.Float64("waste", state.waste))
			return reconstruct(arena, cur, len(patterns), explored)
		}

		for pi, vec := range vectors {
			if vec == nil {
				continue
			}
			if !applicable(state.remaining, vec, tol) {
				continue
			}
			next := make([]int, len(state.remaining))
			for i := range next {
				next[i] = state.remaining[i] - vec[i]
			}
			waste := state.waste + patterns[pi].Waste
			key := stateKey(next)
			if prev, ok := visited[key]; ok && prev <= waste {
				continue
			}
			visited[key] = waste

			seq++
			ns := searchState{
				remaining: next,
				waste:     waste,
				bars:      state.bars + 1,
				parent:    cur,
				pattern:   pi,
				seq:       seq,
			}
			ns.score = scoreState(ns, wasteNorm, wasteWeight, barWeight)
			arena = append(arena, ns)
			heap.Push(open, len(arena)-1)
		}
	}

	log.Debug("priority search gave up", zap.Int("states", explored), zap.Int("max_states", maxStates))
	return nil
}

// applicable reports whether applying the pattern keeps overproduction of
// every length within tolerance and produces at least one needed piece.
func applicable(remaining, vec []int, tol int) bool {
	productive := false
	for i, n := range vec {
		if n == 0 {
			continue
		}
		if remaining[i]-n < -tol {
			return false
		}
		if remaining[i] > 0 {
			productive = true
		}
	}
	return productive
}

// satisfied reports whether no demand is left. Overproduction has already
// been bounded at expansion time.
func satisfied(remaining []int) bool {
	for _, r := range remaining {
		if r > 0 {
			return false
		}
	}
	return true
}

// scoreState ranks states for expansion: weighted normalized waste plus a
// weighted bar count plus the number of pieces still missing. Lower is
// better. The missing term keeps the search goal-directed regardless of
// which objectives carry weight.
func scoreState(s searchState, wasteNorm, wasteWeight, barWeight float64) float64 {
	missing := 0
	for _, r := range s.remaining {
		if r > 0 {
			missing += r
		}
	}
	return wasteWeight*s.waste/wasteNorm + barWeight*float64(s.bars) + float64(missing)
}

func stateKey(remaining []int) string {
	var b strings.Builder
	for _, r := range remaining {
		b.WriteString(strconv.Itoa(r))
		b.WriteByte(',')
	}
	return b.String()
}

func reconstruct(arena []searchState, terminal, patternCount, explored int) *Solution {
	counts := make([]int, patternCount)
	bars := 0
	waste := arena[terminal].waste
	for cur := terminal; arena[cur].parent >= 0; cur = arena[cur].parent {
		counts[arena[cur].pattern]++
		bars++
	}
	return &Solution{
		PatternCounts:  counts,
		TotalWaste:     waste,
		Bars:           bars,
		StatesExplored: explored,
	}
}
