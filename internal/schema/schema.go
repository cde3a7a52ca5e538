// Package schema reads and writes the YAML interchange documents: target
// circuits produced by the compiler, destination snapshots parsed from
// existing schematic files, and multi-sheet project descriptions. Every
// component that crosses this boundary is rebuilt through the circuit
// builder, so malformed input fails here rather than mid-reconciliation.
package schema

import (
	"github.com/tracewire/schemsync/pkg/circuit"
)

const yamlFormat = "yaml"

// SheetDoc is one sheet in a project document. Children nest recursively,
// mirroring the sheet tree.
type SheetDoc struct {
	Name     string            `yaml:"name"`
	Target   *circuit.Circuit  `yaml:"target,omitempty"`
	Snapshot *circuit.Snapshot `yaml:"snapshot,omitempty"`

	// Nets lists nets the sheet references beyond those its target
	// components connect to, e.g. nets forwarded to a child instance.
	Nets []circuit.NetName `yaml:"nets,omitempty"`

	Children []SheetDoc `yaml:"children,omitempty"`
}

// ProjectDoc is the root of a project document.
type ProjectDoc struct {
	Name string   `yaml:"name,omitempty"`
	Root SheetDoc `yaml:"root"`
}

// ScopeDoc is one sheet's net-scope assignment in the scopes document,
// keyed by sheet path in the parent map.
type ScopeDoc struct {
	Local       []circuit.NetName `yaml:"local,omitempty"`
	Shared      []circuit.NetName `yaml:"shared,omitempty"`
	PassThrough []circuit.NetName `yaml:"pass_through,omitempty"`
}
