package matcher_test

import (
	"context"
	"testing"

	"github.com/tracewire/schemsync/pkg/canonical"
	"github.com/tracewire/schemsync/pkg/circuit"
	"github.com/tracewire/schemsync/pkg/errors"
	"github.com/tracewire/schemsync/pkg/matcher"
)

// comp builds a destination-style test component.
func comp(ref circuit.Reference, symbol, value, footprint string, pinNets ...string) circuit.Component {
	b := circuit.NewComponent(ref, symbol).WithValue(value).WithFootprint(footprint)
	for i := 0; i+1 < len(pinNets); i += 2 {
		b = b.WithPin(circuit.PinIndex(pinNets[i]), circuit.NetName(pinNets[i+1]))
	}
	return b.MustBuild()
}

func TestByIdentityReferenceWins(t *testing.T) {
	ctx := context.Background()

	existing := []circuit.Component{
		comp("R1", "Device:R", "10k", "R_0402", "1", "VCC", "2", "MID"),
		comp("R2", "Device:R", "10k", "R_0402", "1", "MID", "2", "GND"),
	}
	target := []circuit.Component{
		comp("R1", "Device:R", "22k", "R_0402", "1", "VCC", "2", "MID"),
		comp("R2", "Device:R", "10k", "R_0402", "1", "MID", "2", "GND"),
	}

	result := matcher.New().ByIdentity(ctx, existing, target)

	if result.Matched() != 2 {
		t.Fatalf("expected 2 pairs, got %d", result.Matched())
	}
	for _, pair := range result.Pairs {
		if pair.Strategy != matcher.StrategyTypeReference {
			t.Errorf("pair %s matched by %s, reference equality should win", pair.Source.Reference, pair.Strategy)
		}
		if pair.Confidence != matcher.ConfidenceReference {
			t.Errorf("reference pair carries confidence %v, want %v", pair.Confidence, matcher.ConfidenceReference)
		}
		if pair.Source.Reference != pair.Dest.Reference {
			t.Errorf("reference pair links %s to %s", pair.Source.Reference, pair.Dest.Reference)
		}
	}
}

func TestByIdentityConnectionFallback(t *testing.T) {
	ctx := context.Background()

	// Destination was renumbered: same connectivity, different labels.
	existing := []circuit.Component{
		comp("R7", "Device:R", "10k", "R_0402", "1", "VCC", "2", "MID"),
		comp("C3", "Device:C", "100n", "C_0402", "1", "MID", "2", "GND"),
	}
	target := []circuit.Component{
		comp("R1", "Device:R", "10k", "R_0402", "1", "VCC", "2", "MID"),
		comp("C1", "Device:C", "100n", "C_0402", "1", "MID", "2", "GND"),
	}

	result := matcher.New().ByIdentity(ctx, existing, target)

	if result.Matched() != 2 {
		t.Fatalf("expected 2 pairs, got %d: %s", result.Matched(), result)
	}
	pair, ok := result.PairFor("R1")
	if !ok {
		t.Fatal("R1 should have matched")
	}
	if pair.Strategy != matcher.StrategyTypeConnection {
		t.Errorf("renumbered component matched by %s, want connection", pair.Strategy)
	}
	if pair.Dest.Reference != "R7" {
		t.Errorf("R1 paired with %s, want R7", pair.Dest.Reference)
	}
	if pair.Confidence != matcher.ConfidenceConnection {
		t.Errorf("connection pair carries confidence %v, want %v", pair.Confidence, matcher.ConfidenceConnection)
	}
}

func TestByIdentityValueFootprintLastResort(t *testing.T) {
	ctx := context.Background()

	// Different labels and different connectivity; only the
	// (symbol, value, footprint) triple lines up.
	existing := []circuit.Component{
		comp("R9", "Device:R", "4k7", "R_0603", "1", "OLD_A", "2", "OLD_B"),
	}
	target := []circuit.Component{
		comp("R1", "Device:R", "4k7", "R_0603", "1", "NEW_A", "2", "NEW_B"),
	}

	result := matcher.New().ByIdentity(ctx, existing, target)

	if result.Matched() != 1 {
		t.Fatalf("expected 1 pair, got %d", result.Matched())
	}
	pair := result.Pairs[0]
	if pair.Strategy != matcher.StrategyTypeValueFootprint {
		t.Errorf("matched by %s, want value-footprint", pair.Strategy)
	}
	if pair.Confidence != matcher.ConfidenceValueFootprint {
		t.Errorf("confidence %v, want %v", pair.Confidence, matcher.ConfidenceValueFootprint)
	}
}

func TestByIdentityAtMostOnePairPerComponent(t *testing.T) {
	ctx := context.Background()

	existing := []circuit.Component{
		comp("R1", "Device:R", "10k", "R_0402", "1", "A", "2", "B"),
	}
	target := []circuit.Component{
		comp("R1", "Device:R", "10k", "R_0402", "1", "A", "2", "B"),
		comp("R2", "Device:R", "10k", "R_0402", "1", "A", "2", "B"),
	}

	result := matcher.New().ByIdentity(ctx, existing, target)

	if result.Matched() != 1 {
		t.Fatalf("expected 1 pair, got %d", result.Matched())
	}
	seen := make(map[circuit.Reference]bool)
	for _, pair := range result.Pairs {
		if seen[pair.Dest.Reference] {
			t.Errorf("destination %s claimed twice", pair.Dest.Reference)
		}
		seen[pair.Dest.Reference] = true
	}
	if len(result.UnmatchedSource) != 1 || result.UnmatchedSource[0].Reference != "R2" {
		t.Errorf("R2 should be unmatched, got %v", result.UnmatchedSource)
	}
}

func TestByIdentityAmbiguityWarning(t *testing.T) {
	ctx := context.Background()

	// Two leftover destinations tie on (symbol, value, footprint) with
	// connectivity that doesn't line up either way.
	existing := []circuit.Component{
		comp("R8", "Device:R", "1k", "R_0402", "1", "X1", "2", "X2"),
		comp("R9", "Device:R", "1k", "R_0402", "1", "Y1", "2", "Y2", "3", "Y3"),
	}
	target := []circuit.Component{
		comp("R1", "Device:R", "1k", "R_0402", "1", "Z1", "2", "Z2", "2b", "Z4"),
	}

	result := matcher.New().ByIdentity(ctx, existing, target)

	if result.Matched() != 1 {
		t.Fatalf("expected 1 pair, got %d", result.Matched())
	}
	// Deterministic: first-encountered destination wins
	if result.Pairs[0].Dest.Reference != "R8" {
		t.Errorf("tie should resolve to first-encountered R8, got %s", result.Pairs[0].Dest.Reference)
	}

	found := false
	for _, warning := range result.Warnings {
		if warning.Code == matcher.WarnAmbiguous && warning.Reference == "R1" {
			found = true
			if !errors.IsAmbiguousMatch(warning.Err) {
				t.Errorf("ambiguity warning should carry a typed error, got %v", warning.Err)
			}
		}
	}
	if !found {
		t.Errorf("expected ambiguity warning for R1, got %v", result.Warnings)
	}
}

func TestByIdentityRefinementBoundWarning(t *testing.T) {
	ctx := context.Background()

	// A three-resistor chain needs more than one refinement round to
	// stabilize, so a bound of one leaves the partition unsettled.
	chain := []circuit.Component{
		comp("R1", "Device:R", "10k", "R_0402", "1", "A", "2", "B"),
		comp("R2", "Device:R", "10k", "R_0402", "1", "B", "2", "C"),
		comp("R3", "Device:R", "10k", "R_0402", "1", "C", "2", "D"),
	}

	m := matcher.New(matcher.WithCanonicalOptions(canonical.WithMaxIterations(1)))
	result := m.ByIdentity(ctx, chain, chain)

	found := false
	for _, warning := range result.Warnings {
		if warning.Code == matcher.WarnRefinementBound {
			found = true
			if !errors.IsRefinementBound(warning.Err) {
				t.Errorf("refinement warning should carry a typed error, got %v", warning.Err)
			}
		}
	}
	if !found {
		t.Errorf("expected refinement bound warning, got %v", result.Warnings)
	}
}

func TestByIdentityUnmatchedDest(t *testing.T) {
	ctx := context.Background()

	existing := []circuit.Component{
		comp("R1", "Device:R", "10k", "R_0402", "1", "A", "2", "B"),
		comp("D1", "Device:LED", "", "LED_0603", "1", "A", "2", "GND"),
	}
	target := []circuit.Component{
		comp("R1", "Device:R", "10k", "R_0402", "1", "A", "2", "B"),
	}

	result := matcher.New().ByIdentity(ctx, existing, target)

	if len(result.UnmatchedDest) != 1 || result.UnmatchedDest[0].Reference != "D1" {
		t.Errorf("D1 should be destination-only, got %v", result.UnmatchedDest)
	}
}

func TestByIdentityDoesNotMutateInputs(t *testing.T) {
	ctx := context.Background()

	existing := []circuit.Component{
		comp("R1", "Device:R", "10k", "R_0402", "1", "A", "2", "B"),
	}
	target := []circuit.Component{
		comp("R1", "Device:R", "22k", "R_0402", "1", "A", "2", "B"),
	}

	result := matcher.New().ByIdentity(ctx, existing, target)
	result.Pairs[0].Dest.Pins["1"] = "MUTATED"

	if existing[0].Pins["1"] != "A" {
		t.Error("matching should not alias caller component state")
	}
}
