package engine

import "errors"

// Recoverable errors: the orchestrator falls back to greedy placement
// instead of surfacing these to the caller.
var (
	// ErrNoPatterns means no stock length admits any cutting pattern.
	ErrNoPatterns = errors.New("no cutting patterns found")

	// ErrSearchExhausted means the priority search hit its state budget
	// without satisfying demand.
	ErrSearchExhausted = errors.New("priority search exhausted state budget")
)

// Fatal errors: these indicate a bug in placement logic and abort the
// optimization call rather than being silently corrected.
var (
	// ErrCutOverflow means a piece was placed past a bar's available space.
	ErrCutOverflow = errors.New("cut overflow: piece exceeds bar capacity")

	// ErrAccounting means a bar's length bookkeeping drifted beyond tolerance.
	ErrAccounting = errors.New("bar length accounting violation")

	// ErrSegmentCount means a cut's segment counter disagrees with its segments.
	ErrSegmentCount = errors.New("segment count mismatch")

	// ErrShortage means the produced plan does not cover demand.
	ErrShortage = errors.New("demand shortage")

	// ErrOverage means the produced plan exceeds demand beyond tolerance.
	ErrOverage = errors.New("demand overage")
)

// retryable reports whether a pattern-path error should trigger the greedy
// fallback. Demand mismatches are retryable only on the pattern path, where
// they mean the search produced an unusable combination; after the greedy
// path they are final. Overflow and accounting violations are never retried.
func retryable(err error) bool {
	return errors.Is(err, ErrNoPatterns) ||
		errors.Is(err, ErrSearchExhausted) ||
		errors.Is(err, ErrOverage) ||
		errors.Is(err, ErrShortage)
}
