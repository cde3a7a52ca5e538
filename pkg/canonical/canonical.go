// Package canonical normalizes a circuit into naming-independent
// signatures so two versions of a circuit can be compared by connectivity
// alone, regardless of how components and nets are labeled.
//
// Signatures are computed by bounded iterative refinement: a component's
// signature starts from its symbol id and is repeatedly refined with the
// signatures of the nets on its pins, while net signatures are refined
// with the signatures of the components they touch. The scheme is a
// coloring, not a full graph canonicalization: electrically interchangeable
// components (two identical resistors in parallel) end up with identical
// signatures, which is an inherent property of the problem rather than a
// defect. Callers break such ties deterministically.
package canonical

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"

	"github.com/tracewire/schemsync/pkg/circuit"
)

// DefaultMaxIterations bounds the refinement loop so pathological circuits
// terminate. A partial signature after the bound is usable, just weaker
// evidence; it is never an error.
const DefaultMaxIterations = 4

// Signature is a naming-independent fingerprint of a component or net.
type Signature string

// String returns the string representation of a signature.
func (s Signature) String() string {
	return string(s)
}

// Circuit is the canonical form of a circuit: one signature per component
// reference and one per net name, plus refinement diagnostics.
type Circuit struct {
	// Components maps each component reference to its signature.
	Components map[circuit.Reference]Signature

	// Nets maps each net name to its signature.
	Nets map[circuit.NetName]Signature

	// Converged reports whether the signature partition stabilized
	// within the bound.
	Converged bool

	// Iterations is the round at which the partition stabilized, or the
	// bound when it never did.
	Iterations int
}

// Signature returns the signature for a component reference.
func (c *Circuit) Signature(ref circuit.Reference) (Signature, bool) {
	sig, ok := c.Components[ref]
	return sig, ok
}

// Groups partitions component references by signature. Within each group,
// references keep the order of the components slice passed to Canonicalize.
func (c *Circuit) Groups(components []circuit.Component) map[Signature][]circuit.Reference {
	groups := make(map[Signature][]circuit.Reference)
	for _, comp := range components {
		sig, ok := c.Components[comp.Reference]
		if !ok {
			continue
		}
		groups[sig] = append(groups[sig], comp.Reference)
	}
	return groups
}

// options configures canonicalization.
type options struct {
	maxIterations int
}

// Option configures Canonicalize.
type Option func(*options)

// WithMaxIterations overrides the refinement iteration bound.
func WithMaxIterations(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxIterations = n
		}
	}
}

// Canonicalize computes canonical signatures for a circuit. Pure function:
// the result is identical for any ordering of the input slice, because
// every hashed list is sorted before digestion.
func Canonicalize(components []circuit.Component, opts ...Option) *Circuit {
	o := &options{maxIterations: DefaultMaxIterations}
	for _, opt := range opts {
		opt(o)
	}

	result := &Circuit{
		Components: make(map[circuit.Reference]Signature, len(components)),
		Nets:       make(map[circuit.NetName]Signature),
	}

	// Seed component signatures from symbol id alone.
	for _, comp := range components {
		result.Components[comp.Reference] = digest("sym", comp.Symbol)
	}

	endpoints := netEndpoints(components)

	// Always run the full bound: signature values encode the round count,
	// so two circuits are only comparable when refined the same number of
	// rounds. Convergence of the partition is tracked, not acted on.
	for i := 0; i < o.maxIterations; i++ {
		// Net signatures from the sorted multiset of (pin, component
		// signature) pairs at each endpoint.
		nets := make(map[circuit.NetName]Signature, len(endpoints))
		for name, eps := range endpoints {
			parts := make([]string, 0, len(eps))
			for _, ep := range eps {
				parts = append(parts, ep.Pin.String()+"@"+result.Components[ep.Component].String())
			}
			sort.Strings(parts)
			nets[name] = digest("net", strings.Join(parts, "|"))
		}
		result.Nets = nets

		// Component signatures from symbol id plus the sorted list of
		// (pin, net signature) pairs.
		next := make(map[circuit.Reference]Signature, len(components))
		for _, comp := range components {
			parts := make([]string, 0, len(comp.Pins))
			for pin, net := range comp.Pins {
				parts = append(parts, pin.String()+"="+nets[net].String())
			}
			sort.Strings(parts)
			next[comp.Reference] = digest("cmp", comp.Symbol+"|"+strings.Join(parts, "|"))
		}

		if !result.Converged && stable(result.Components, next) {
			result.Converged = true
			result.Iterations = i + 1
		}
		result.Components = next
	}
	if !result.Converged {
		result.Iterations = o.maxIterations
	}

	return result
}

// netEndpoints collects per-net endpoints from component pin maps.
func netEndpoints(components []circuit.Component) map[circuit.NetName][]circuit.Endpoint {
	endpoints := make(map[circuit.NetName][]circuit.Endpoint)
	for _, comp := range components {
		for pin, net := range comp.Pins {
			if net == "" {
				continue
			}
			endpoints[net] = append(endpoints[net], circuit.Endpoint{Component: comp.Reference, Pin: pin})
		}
	}
	return endpoints
}

// stable reports whether two signature maps partition components the same
// way. Refinement only ever splits groups, so comparing pairwise equality
// of values is sufficient.
func stable(prev, next map[circuit.Reference]Signature) bool {
	// Signatures change value every round because net signatures feed
	// back in, so compare the induced partitions instead of raw values.
	prevGroups := make(map[Signature][]circuit.Reference)
	nextGroups := make(map[Signature][]circuit.Reference)
	for ref, sig := range prev {
		prevGroups[sig] = append(prevGroups[sig], ref)
	}
	for ref, sig := range next {
		nextGroups[sig] = append(nextGroups[sig], ref)
	}
	if len(prevGroups) != len(nextGroups) {
		return false
	}

	// Same number of groups and refinement never merges groups, so the
	// partitions are equal iff every next group is contained in one prev
	// group of the same size.
	sizeOf := make(map[circuit.Reference]int)
	groupOf := make(map[circuit.Reference]Signature)
	for sig, refs := range prevGroups {
		for _, ref := range refs {
			sizeOf[ref] = len(refs)
			groupOf[ref] = sig
		}
	}
	for _, refs := range nextGroups {
		for _, ref := range refs {
			if sizeOf[ref] != len(refs) {
				return false
			}
			if groupOf[ref] != groupOf[refs[0]] {
				return false
			}
		}
	}
	return true
}

// digest hashes a tagged payload into a short hex signature.
func digest(tag, payload string) Signature {
	sum := sha256.Sum256([]byte(tag + ":" + payload))
	return Signature(hex.EncodeToString(sum[:8]))
}
