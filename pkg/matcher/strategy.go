package matcher

import (
	"github.com/tracewire/schemsync/pkg/canonical"
	"github.com/tracewire/schemsync/pkg/circuit"
)

// StrategyType identifies a matching strategy.
type StrategyType string

// String returns the string representation of a strategy type.
func (s StrategyType) String() string {
	return string(s)
}

const (
	// StrategyTypeReference matches on exact reference label equality.
	StrategyTypeReference StrategyType = "reference"
	// StrategyTypeConnection matches on canonical signature equality.
	StrategyTypeConnection StrategyType = "connection"
	// StrategyTypeValueFootprint matches on (symbol, value, footprint)
	// equality in encounter order.
	StrategyTypeValueFootprint StrategyType = "value-footprint"
	// StrategyTypeTopology is the first-generation connectivity matcher.
	StrategyTypeTopology StrategyType = "topology"
)

// Confidence levels per strategy. Reference equality is definitive;
// signature equality is strong but blind to symmetric components;
// value+footprint is a last resort among leftovers.
const (
	ConfidenceReference      = 1.0
	ConfidenceConnection     = 0.8
	ConfidenceValueFootprint = 0.5
	ConfidenceTopology       = 1.0
)

// Strategy is one identity-matching rule. Strategies run in a fixed
// order; each sees only components no earlier strategy claimed, so the
// first match always wins. Adding a strategy is an append to the list,
// not a new conditional branch.
type Strategy interface {
	// Type returns the strategy type.
	Type() StrategyType

	// Confidence returns the confidence assigned to pairs this strategy makes.
	Confidence() float64

	// TryMatch picks a destination candidate for source from remaining.
	// It returns the index of the chosen candidate, the total number of
	// equally valid candidates, and whether any candidate matched.
	TryMatch(source circuit.Component, remaining []circuit.Component) (index, candidates int, ok bool)
}

// baseStrategy provides common strategy fields.
type baseStrategy struct {
	typ        StrategyType
	confidence float64
}

// Type returns the strategy type.
func (s *baseStrategy) Type() StrategyType {
	return s.typ
}

// Confidence returns the confidence assigned to pairs this strategy makes.
func (s *baseStrategy) Confidence() float64 {
	return s.confidence
}

// ReferenceStrategy matches components whose reference labels are equal.
type ReferenceStrategy struct {
	baseStrategy
}

// NewReferenceStrategy creates the reference-equality strategy.
func NewReferenceStrategy() *ReferenceStrategy {
	return &ReferenceStrategy{
		baseStrategy: baseStrategy{typ: StrategyTypeReference, confidence: ConfidenceReference},
	}
}

// TryMatch finds a destination component with the same reference label.
// References are unique within a sheet, so candidates is always 1.
func (s *ReferenceStrategy) TryMatch(source circuit.Component, remaining []circuit.Component) (int, int, bool) {
	for i, dest := range remaining {
		if dest.Reference == source.Reference {
			return i, 1, true
		}
	}
	return 0, 0, false
}

// ConnectionStrategy matches components whose canonical signatures are
// equal. Signatures are computed once over each full side; matching
// within the leftovers still compares whole-circuit connectivity context.
type ConnectionStrategy struct {
	baseStrategy
	source *canonical.Circuit
	dest   *canonical.Circuit
}

// NewConnectionStrategy creates the signature-equality strategy over the
// given canonicalized sides.
func NewConnectionStrategy(source, dest *canonical.Circuit) *ConnectionStrategy {
	return &ConnectionStrategy{
		baseStrategy: baseStrategy{typ: StrategyTypeConnection, confidence: ConfidenceConnection},
		source:       source,
		dest:         dest,
	}
}

// TryMatch finds a destination component with the same canonical signature.
func (s *ConnectionStrategy) TryMatch(source circuit.Component, remaining []circuit.Component) (int, int, bool) {
	want, ok := s.source.Signature(source.Reference)
	if !ok {
		return 0, 0, false
	}

	first := -1
	candidates := 0
	for i, dest := range remaining {
		sig, ok := s.dest.Signature(dest.Reference)
		if !ok || sig != want {
			continue
		}
		if first < 0 {
			first = i
		}
		candidates++
	}
	if first < 0 {
		return 0, 0, false
	}
	return first, candidates, true
}

// ValueFootprintStrategy matches components with equal (symbol, value,
// footprint) triples, pairing in original encounter order when several
// candidates tie.
type ValueFootprintStrategy struct {
	baseStrategy
}

// NewValueFootprintStrategy creates the value+footprint strategy.
func NewValueFootprintStrategy() *ValueFootprintStrategy {
	return &ValueFootprintStrategy{
		baseStrategy: baseStrategy{typ: StrategyTypeValueFootprint, confidence: ConfidenceValueFootprint},
	}
}

// TryMatch finds the first destination component with the same symbol,
// value, and footprint, and counts how many tie.
func (s *ValueFootprintStrategy) TryMatch(source circuit.Component, remaining []circuit.Component) (int, int, bool) {
	first := -1
	candidates := 0
	for i, dest := range remaining {
		if dest.Symbol != source.Symbol || dest.Value != source.Value || dest.Footprint != source.Footprint {
			continue
		}
		if first < 0 {
			first = i
		}
		candidates++
	}
	if first < 0 {
		return 0, 0, false
	}
	return first, candidates, true
}
