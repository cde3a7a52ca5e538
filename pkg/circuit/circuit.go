// Package circuit defines the data model shared by every stage of the
// reconciliation pipeline: components, pin-to-net connectivity, destination
// snapshots, and the opaque artifacts a schematic editor adds around them.
package circuit

import (
	"sort"
)

// Reference is a human-readable component label such as "R1" or "U3".
type Reference string

// String returns the string representation of a reference.
func (r Reference) String() string {
	return string(r)
}

// NetName identifies an electrical net such as "GND" or "VCC_3V3".
type NetName string

// String returns the string representation of a net name.
func (n NetName) String() string {
	return string(n)
}

// PinIndex identifies a pin on a component. Pin numbers are strings rather
// than integers because package pins include alphanumeric designators such
// as "A1" on BGA parts.
type PinIndex string

// String returns the string representation of a pin index.
func (p PinIndex) String() string {
	return string(p)
}

// Position is a component location on a sheet, in schematic units.
type Position struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// Component is a single schematic component. On the target side (produced
// by the circuit compiler) ID is empty; on the destination side (parsed
// from an existing schematic) ID carries the file's stable UUID.
type Component struct {
	// ID is the stable destination-side identity. Empty for target-side
	// components, which have no identity until they are placed.
	ID string `yaml:"id,omitempty"`

	// Reference is the human label, e.g. "R1".
	Reference Reference `yaml:"reference"`

	// Symbol is the library symbol identifier, e.g. "Device:R".
	Symbol string `yaml:"symbol"`

	// Value is the component value, e.g. "10k".
	Value string `yaml:"value,omitempty"`

	// Footprint is the physical package, e.g. "Resistor_SMD:R_0402".
	Footprint string `yaml:"footprint,omitempty"`

	// Position and Rotation describe manual placement. Meaningful only on
	// the destination side; the reconciliation engine never overwrites them.
	Position Position `yaml:"position,omitempty"`
	Rotation float64  `yaml:"rotation,omitempty"`

	// Pins maps each pin index to the net it connects to.
	Pins map[PinIndex]NetName `yaml:"pins"`

	// Fields holds free-form metadata: part number, tolerance,
	// do-not-place, and similar BOM data.
	Fields map[string]string `yaml:"fields,omitempty"`
}

// Clone returns a deep copy of the component.
func (c Component) Clone() Component {
	out := c
	out.Pins = make(map[PinIndex]NetName, len(c.Pins))
	for pin, net := range c.Pins {
		out.Pins[pin] = net
	}
	if c.Fields != nil {
		out.Fields = make(map[string]string, len(c.Fields))
		for k, v := range c.Fields {
			out.Fields[k] = v
		}
	}
	return out
}

// PinIndices returns the component's pin indices in sorted order.
func (c Component) PinIndices() []PinIndex {
	pins := make([]PinIndex, 0, len(c.Pins))
	for pin := range c.Pins {
		pins = append(pins, pin)
	}
	sort.Slice(pins, func(i, j int) bool { return pins[i] < pins[j] })
	return pins
}

// Endpoint is one side of a net connection: a pin on a component.
type Endpoint struct {
	Component Reference `yaml:"component"`
	Pin       PinIndex  `yaml:"pin"`
}

// Net is a named electrical net with the set of endpoints it connects.
// Two nets are identical iff their endpoint sets are identical after
// component identity resolution.
type Net struct {
	Name      NetName    `yaml:"name"`
	Endpoints []Endpoint `yaml:"endpoints"`
}

// Circuit is a target-side circuit: the output of the circuit compiler,
// created fresh on every run.
type Circuit struct {
	Components []Component `yaml:"components"`
}

// Nets derives the circuit's net records from its components' pin maps.
// Output is sorted by net name, endpoints by (component, pin).
func (c *Circuit) Nets() []Net {
	return DeriveNets(c.Components)
}

// Component returns the component with the given reference, if present.
func (c *Circuit) Component(ref Reference) (Component, bool) {
	for _, comp := range c.Components {
		if comp.Reference == ref {
			return comp, true
		}
	}
	return Component{}, false
}

// ArtifactKind classifies destination-only schematic content.
type ArtifactKind string

// Destination-only artifact kinds. The engine never inspects these; they
// exist so a snapshot can carry them through a reconciliation pass intact.
const (
	ArtifactWire        ArtifactKind = "wire"
	ArtifactLabel       ArtifactKind = "label"
	ArtifactJunction    ArtifactKind = "junction"
	ArtifactPowerSymbol ArtifactKind = "power-symbol"
	ArtifactAnnotation  ArtifactKind = "annotation"
)

// Artifact is opaque destination-only content: hand-drawn wires, net
// labels, junctions, power symbols, graphical annotations. Preserved by
// omission: no merge plan ever names one.
type Artifact struct {
	Kind ArtifactKind `yaml:"kind"`
	Raw  string       `yaml:"raw"`
}

// Snapshot is a destination-side circuit: the parsed state of an existing
// schematic file, owned by the file codec and read-only to the engine
// except through an applied merge plan.
type Snapshot struct {
	Components []Component `yaml:"components"`
	Artifacts  []Artifact  `yaml:"artifacts,omitempty"`
}

// Nets derives the snapshot's net records from its components' pin maps.
func (s *Snapshot) Nets() []Net {
	return DeriveNets(s.Components)
}

// Component returns the snapshot component with the given id, if present.
func (s *Snapshot) Component(id string) (Component, bool) {
	for _, comp := range s.Components {
		if comp.ID == id {
			return comp, true
		}
	}
	return Component{}, false
}

// DeriveNets computes net records from component pin maps. Every pin that
// names a net contributes one endpoint. Output order is deterministic
// regardless of input order.
func DeriveNets(components []Component) []Net {
	endpoints := make(map[NetName][]Endpoint)
	for _, comp := range components {
		for pin, net := range comp.Pins {
			if net == "" {
				continue
			}
			endpoints[net] = append(endpoints[net], Endpoint{Component: comp.Reference, Pin: pin})
		}
	}

	nets := make([]Net, 0, len(endpoints))
	for name, eps := range endpoints {
		sort.Slice(eps, func(i, j int) bool {
			if eps[i].Component != eps[j].Component {
				return eps[i].Component < eps[j].Component
			}
			return eps[i].Pin < eps[j].Pin
		})
		nets = append(nets, Net{Name: name, Endpoints: eps})
	}
	sort.Slice(nets, func(i, j int) bool { return nets[i].Name < nets[j].Name })
	return nets
}
