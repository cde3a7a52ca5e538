// Package matcher finds correspondences between two versions of a
// circuit: an existing destination snapshot and a freshly generated
// target. Update mode runs an ordered list of identity strategies;
// first-generation mode, where the destination has no identity to match
// by, falls back to pure connectivity.
package matcher

import (
	"context"
	"fmt"

	"github.com/tracewire/schemsync/pkg/canonical"
	"github.com/tracewire/schemsync/pkg/circuit"
	"github.com/tracewire/schemsync/pkg/errors"
	"github.com/tracewire/schemsync/pkg/logging"
)

// Matcher matches target components against destination components.
type Matcher struct {
	canonicalOpts []canonical.Option
	extra         []Strategy
}

// Option configures a Matcher.
type Option func(*Matcher)

// WithCanonicalOptions forwards options to signature computation.
func WithCanonicalOptions(opts ...canonical.Option) Option {
	return func(m *Matcher) {
		m.canonicalOpts = opts
	}
}

// WithExtraStrategies appends strategies after the built-in three.
func WithExtraStrategies(strategies ...Strategy) Option {
	return func(m *Matcher) {
		m.extra = append(m.extra, strategies...)
	}
}

// New creates a Matcher.
func New(opts ...Option) *Matcher {
	m := &Matcher{}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// ByIdentity matches destination snapshot components against target
// circuit components across the ranked strategies: reference equality,
// canonical-signature equality, then (symbol, value, footprint) equality.
// A component claimed by one strategy is invisible to later ones.
func (m *Matcher) ByIdentity(ctx context.Context, existing, target []circuit.Component) *Result {
	logger := logging.FromContext(ctx)

	result := &Result{}

	// Signatures are computed over the complete sides so connectivity
	// context is whole-circuit even when matching among leftovers.
	targetSigs := canonical.Canonicalize(target, m.canonicalOpts...)
	destSigs := canonical.Canonicalize(existing, m.canonicalOpts...)
	result.Warnings = append(result.Warnings, refinementWarnings(targetSigs, destSigs)...)

	strategies := []Strategy{
		NewReferenceStrategy(),
		NewConnectionStrategy(targetSigs, destSigs),
		NewValueFootprintStrategy(),
	}
	strategies = append(strategies, m.extra...)

	sources := cloneComponents(target)
	dests := cloneComponents(existing)

	for _, strategy := range strategies {
		var leftover []circuit.Component
		for _, source := range sources {
			idx, candidates, ok := strategy.TryMatch(source, dests)
			if !ok {
				leftover = append(leftover, source)
				continue
			}
			if candidates > 1 {
				ambErr := &errors.AmbiguousMatchError{
					Reference:  source.Reference.String(),
					Candidates: candidates,
					Strategy:   strategy.Type().String(),
				}
				result.Warnings = append(result.Warnings, Warning{
					Code:      WarnAmbiguous,
					Reference: source.Reference,
					Message:   ambErr.Error() + ", paired first-encountered",
					Err:       ambErr,
				})
			}
			result.Pairs = append(result.Pairs, Pair{
				Source:     source,
				Dest:       dests[idx],
				Strategy:   strategy.Type(),
				Confidence: strategy.Confidence(),
			})
			dests = append(dests[:idx], dests[idx+1:]...)
		}
		sources = leftover
		if len(sources) == 0 || len(dests) == 0 {
			break
		}
	}

	result.UnmatchedSource = sources
	result.UnmatchedDest = dests

	logger.Debug().
		Int("matched", len(result.Pairs)).
		Int("source_only", len(result.UnmatchedSource)).
		Int("dest_only", len(result.UnmatchedDest)).
		Msg("Identity match complete")

	return result
}

// refinementWarnings reports sides whose signature refinement hit the
// iteration cap.
func refinementWarnings(target, dest *canonical.Circuit) []Warning {
	var warnings []Warning
	if !target.Converged {
		refErr := &errors.RefinementError{Iterations: target.Iterations, Bound: target.Iterations}
		warnings = append(warnings, Warning{
			Code:    WarnRefinementBound,
			Message: fmt.Sprintf("target signatures did not stabilize within %d iterations", target.Iterations),
			Err:     refErr,
		})
	}
	if !dest.Converged {
		refErr := &errors.RefinementError{Iterations: dest.Iterations, Bound: dest.Iterations}
		warnings = append(warnings, Warning{
			Code:    WarnRefinementBound,
			Message: fmt.Sprintf("destination signatures did not stabilize within %d iterations", dest.Iterations),
			Err:     refErr,
		})
	}
	return warnings
}

// cloneComponents deep-copies a component slice so matching never aliases
// caller state.
func cloneComponents(components []circuit.Component) []circuit.Component {
	out := make([]circuit.Component, len(components))
	for i, c := range components {
		out[i] = c.Clone()
	}
	return out
}
