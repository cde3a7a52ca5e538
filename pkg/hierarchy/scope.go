package hierarchy

import (
	stderrors "errors"
	"sort"

	"github.com/tracewire/schemsync/pkg/circuit"
	"github.com/tracewire/schemsync/pkg/errors"
)

// Scope is the net-scope assignment for one sheet.
type Scope struct {
	// Local nets are referenced only within this sheet and never
	// elevated.
	Local []circuit.NetName

	// Shared nets have this sheet as the lowest common ancestor of
	// every referencing sheet; this is where they must be declared.
	Shared []circuit.NetName

	// PassThrough nets cross this sheet on the way between their
	// declaring ancestor and a referencing descendant; the sheet must
	// forward them as parameters without declaring them.
	PassThrough []circuit.NetName
}

// ResolveScopes computes, for every net referenced anywhere in the tree,
// the minimal sheet at which it must be declared. declared maps each
// sheet to the nets it references.
//
// A net referenced on sheets with no common ancestor is a structural
// error: resolution of the remaining nets still completes, and the joined
// error is returned alongside the partial result.
func ResolveScopes(root *Sheet, declared map[*Sheet][]circuit.NetName) (map[*Sheet]*Scope, error) {
	scopes := make(map[*Sheet]*Scope)
	root.Walk(func(s *Sheet) {
		scopes[s] = &Scope{}
	})

	// Referencing sheets per net, in deterministic tree order.
	referencing := make(map[circuit.NetName][]*Sheet)
	root.Walk(func(s *Sheet) {
		for _, net := range declared[s] {
			referencing[net] = append(referencing[net], s)
		}
	})
	for sheet := range declared {
		if _, ok := scopes[sheet]; !ok {
			// Sheets outside the tree still reference nets; those nets
			// fail the common-ancestor check below.
			for _, net := range declared[sheet] {
				referencing[net] = append(referencing[net], sheet)
			}
		}
	}

	names := make([]circuit.NetName, 0, len(referencing))
	for net := range referencing {
		names = append(names, net)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })

	var structural []error
	for _, net := range names {
		sheets := referencing[net]
		if len(sheets) == 1 {
			scope := scopes[sheets[0]]
			if scope != nil {
				scope.Local = append(scope.Local, net)
			}
			continue
		}

		lca, ok := LCA(sheets...)
		if !ok {
			structural = append(structural,
				errors.NewStructuralError(net.String(), sheetNames(sheets), "no common ancestor"))
			continue
		}

		scope, ok := scopes[lca]
		if !ok {
			// All referencing sheets live in a foreign tree; their common
			// ancestor is not under root.
			structural = append(structural,
				errors.NewStructuralError(net.String(), sheetNames(sheets), "common ancestor outside sheet tree"))
			continue
		}
		scope.Shared = append(scope.Shared, net)

		// Every sheet strictly between the LCA and a referencing sheet
		// forwards the net without declaring it. The LCA itself may
		// reference the net; it declares rather than forwards.
		for _, sheet := range sheets {
			if sheet == lca {
				continue
			}
			for node := sheet.Parent(); node != nil && node != lca; node = node.Parent() {
				scope := scopes[node]
				if !contains(scope.PassThrough, net) && !contains(scope.Shared, net) {
					scope.PassThrough = append(scope.PassThrough, net)
				}
			}
		}
	}

	for _, scope := range scopes {
		sortNets(scope.Local)
		sortNets(scope.Shared)
		sortNets(scope.PassThrough)
	}

	return scopes, stderrors.Join(structural...)
}

// sheetNames renders sheet names for error context.
func sheetNames(sheets []*Sheet) []string {
	names := make([]string, len(sheets))
	for i, s := range sheets {
		names[i] = s.Name
	}
	return names
}

// contains reports whether a net slice already holds a name.
func contains(nets []circuit.NetName, net circuit.NetName) bool {
	for _, n := range nets {
		if n == net {
			return true
		}
	}
	return false
}

// sortNets sorts net names in place.
func sortNets(nets []circuit.NetName) {
	sort.Slice(nets, func(i, j int) bool { return nets[i] < nets[j] })
}
