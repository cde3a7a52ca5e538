package matcher

import (
	"context"

	"github.com/tracewire/schemsync/pkg/canonical"
	"github.com/tracewire/schemsync/pkg/circuit"
	"github.com/tracewire/schemsync/pkg/logging"
)

// ByTopology matches purely by connectivity. Used for first-time
// generation onto a pre-existing file, where the destination carries no
// identity worth matching by: references may have been renumbered and no
// stable ids link the two sides.
//
// Components are grouped by exact signature equality. Components sharing
// a signature are topologically interchangeable, so pairing within a
// group is arbitrary; encounter order is used so results are
// deterministic. When group sizes differ, the smaller count pairs
// greedily and the remainder is unmatched. No pairing ever crosses
// groups. Every pairing carries confidence 1.0: signature equality is
// the only evidence available, and it is exact.
func (m *Matcher) ByTopology(ctx context.Context, existing, target []circuit.Component) *Result {
	logger := logging.FromContext(ctx)

	result := &Result{}

	targetSigs := canonical.Canonicalize(target, m.canonicalOpts...)
	destSigs := canonical.Canonicalize(existing, m.canonicalOpts...)
	result.Warnings = append(result.Warnings, refinementWarnings(targetSigs, destSigs)...)

	// Destination components queued per signature, in encounter order.
	destBySig := make(map[canonical.Signature][]circuit.Component)
	for _, dest := range existing {
		sig := destSigs.Components[dest.Reference]
		destBySig[sig] = append(destBySig[sig], dest.Clone())
	}

	for _, source := range target {
		sig := targetSigs.Components[source.Reference]
		queue := destBySig[sig]
		if len(queue) == 0 {
			result.UnmatchedSource = append(result.UnmatchedSource, source.Clone())
			continue
		}
		result.Pairs = append(result.Pairs, Pair{
			Source:     source.Clone(),
			Dest:       queue[0],
			Strategy:   StrategyTypeTopology,
			Confidence: ConfidenceTopology,
		})
		destBySig[sig] = queue[1:]
	}

	// Leftover destination components, in encounter order.
	for _, dest := range existing {
		sig := destSigs.Components[dest.Reference]
		queue := destBySig[sig]
		if len(queue) > 0 && queue[0].Reference == dest.Reference {
			result.UnmatchedDest = append(result.UnmatchedDest, queue[0])
			destBySig[sig] = queue[1:]
		}
	}

	logger.Debug().
		Int("matched", len(result.Pairs)).
		Int("source_only", len(result.UnmatchedSource)).
		Int("dest_only", len(result.UnmatchedDest)).
		Msg("Topology match complete")

	return result
}
