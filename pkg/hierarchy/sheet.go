// Package hierarchy models the sheet tree of a multi-sheet schematic and
// computes, for every net, the minimal sheet at which it must be
// declared. It also drives per-sheet reconciliation and aggregates the
// results into one project-level report.
package hierarchy

import (
	"strings"

	"github.com/tracewire/schemsync/pkg/errors"
)

// Sheet is one node in the sheet tree. Children are owned; the parent
// link is a non-owning back-reference, so the tree has no ownership
// cycles and a sheet can be traversed upward without assuming mutability.
type Sheet struct {
	Name string

	parent   *Sheet
	children []*Sheet
}

// NewSheet creates a root sheet.
func NewSheet(name string) *Sheet {
	return &Sheet{Name: name}
}

// AddChild creates a child sheet, attaches it, and returns it.
func (s *Sheet) AddChild(name string) *Sheet {
	child := &Sheet{Name: name, parent: s}
	s.children = append(s.children, child)
	return child
}

// Attach adopts an existing sheet as a child. It refuses to create a
// cycle, which would make the hierarchy unresolvable.
func (s *Sheet) Attach(child *Sheet) error {
	if child == nil {
		return &errors.ValidationError{Field: "child", Message: "cannot be nil"}
	}
	for node := s; node != nil; node = node.parent {
		if node == child {
			return errors.NewStructuralError("", []string{s.Name, child.Name}, "cyclic sheet reference")
		}
	}
	if child.parent != nil {
		return errors.NewStructuralError("", []string{child.Name}, "sheet already has a parent")
	}
	child.parent = s
	s.children = append(s.children, child)
	return nil
}

// Parent returns the parent sheet, or nil for a root.
func (s *Sheet) Parent() *Sheet {
	return s.parent
}

// Children returns the owned child sheets.
func (s *Sheet) Children() []*Sheet {
	return s.children
}

// Root returns the tree root this sheet belongs to.
func (s *Sheet) Root() *Sheet {
	node := s
	for node.parent != nil {
		node = node.parent
	}
	return node
}

// Ancestors returns the path from this sheet up to and including the
// root, starting with the sheet itself.
func (s *Sheet) Ancestors() []*Sheet {
	var path []*Sheet
	for node := s; node != nil; node = node.parent {
		path = append(path, node)
	}
	return path
}

// Path returns the slash-joined names from the root down to this sheet.
func (s *Sheet) Path() string {
	ancestors := s.Ancestors()
	parts := make([]string, len(ancestors))
	for i, node := range ancestors {
		parts[len(ancestors)-1-i] = node.Name
	}
	return strings.Join(parts, "/")
}

// Walk visits this sheet and every descendant, depth-first, in child
// declaration order.
func (s *Sheet) Walk(fn func(*Sheet)) {
	fn(s)
	for _, child := range s.children {
		child.Walk(fn)
	}
}

// Find returns the first sheet in this subtree with the given name.
func (s *Sheet) Find(name string) (*Sheet, bool) {
	var found *Sheet
	s.Walk(func(node *Sheet) {
		if found == nil && node.Name == name {
			found = node
		}
	})
	if found == nil {
		return nil, false
	}
	return found, true
}

// LCA returns the lowest common ancestor of the given sheets, computed by
// ancestor-path intersection. ok is false when the sheets do not share a
// tree.
func LCA(sheets ...*Sheet) (*Sheet, bool) {
	if len(sheets) == 0 {
		return nil, false
	}

	// Depth of each candidate ancestor of the first sheet; the LCA is
	// the deepest one present on every other sheet's ancestor path.
	candidates := make(map[*Sheet]bool)
	for _, node := range sheets[0].Ancestors() {
		candidates[node] = true
	}

	for _, sheet := range sheets[1:] {
		surviving := make(map[*Sheet]bool)
		for _, node := range sheet.Ancestors() {
			if candidates[node] {
				surviving[node] = true
			}
		}
		candidates = surviving
		if len(candidates) == 0 {
			return nil, false
		}
	}

	// The deepest surviving candidate is the first ancestor of sheets[0]
	// present in the set.
	for _, node := range sheets[0].Ancestors() {
		if candidates[node] {
			return node, true
		}
	}
	return nil, false
}
