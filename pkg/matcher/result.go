package matcher

import (
	"fmt"

	"github.com/tracewire/schemsync/pkg/circuit"
)

// Pair is one matched correspondence between a target-side (source)
// component and a destination-side component, with the strategy that made
// it and the confidence it carries.
type Pair struct {
	Source     circuit.Component
	Dest       circuit.Component
	Strategy   StrategyType
	Confidence float64
}

// WarningCode classifies non-fatal match conditions.
type WarningCode string

const (
	// WarnAmbiguous records multiple equally valid candidates resolved
	// by deterministic first-encountered order.
	WarnAmbiguous WarningCode = "ambiguous-match"

	// WarnRefinementBound records that canonical signatures did not
	// converge within the iteration cap; signature evidence is weaker.
	WarnRefinementBound WarningCode = "refinement-bound"
)

// Warning is a non-fatal condition surfaced through the report rather
// than raised as an error.
type Warning struct {
	Code      WarningCode       `yaml:"code"`
	Reference circuit.Reference `yaml:"reference,omitempty"` // Affected component, if any
	Message   string            `yaml:"message"`

	// Err carries the typed condition so callers can predicate with
	// errors.IsAmbiguousMatch and errors.IsRefinementBound.
	Err error `yaml:"-"`
}

// String returns a human-readable form of the warning.
func (w Warning) String() string {
	if w.Reference != "" {
		return fmt.Sprintf("%s: %s: %s", w.Code, w.Reference, w.Message)
	}
	return fmt.Sprintf("%s: %s", w.Code, w.Message)
}

// Result is the outcome of matching a target circuit against a
// destination snapshot. Every source and every destination component
// appears in at most one pair; leftovers land in the unmatched lists.
type Result struct {
	Pairs           []Pair
	UnmatchedSource []circuit.Component
	UnmatchedDest   []circuit.Component
	Warnings        []Warning
}

// Matched returns the number of pairs.
func (r *Result) Matched() int {
	return len(r.Pairs)
}

// PairFor returns the pair whose source carries the given reference.
func (r *Result) PairFor(ref circuit.Reference) (Pair, bool) {
	for _, p := range r.Pairs {
		if p.Source.Reference == ref {
			return p, true
		}
	}
	return Pair{}, false
}

// StrategyCounts tallies pairs per strategy.
func (r *Result) StrategyCounts() map[StrategyType]int {
	counts := make(map[StrategyType]int)
	for _, p := range r.Pairs {
		counts[p.Strategy]++
	}
	return counts
}

// String returns a one-line summary of the result.
func (r *Result) String() string {
	return fmt.Sprintf("%d matched, %d source-only, %d destination-only",
		len(r.Pairs), len(r.UnmatchedSource), len(r.UnmatchedDest))
}
