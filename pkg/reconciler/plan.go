package reconciler

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tracewire/schemsync/pkg/circuit"
	"github.com/tracewire/schemsync/pkg/matcher"
)

// FieldName identifies a component field in a merge.
type FieldName string

// Component fields named by merge plans.
const (
	FieldValue     FieldName = "value"
	FieldFootprint FieldName = "footprint"
	FieldPins      FieldName = "pins"
	FieldFields    FieldName = "fields"
	FieldPosition  FieldName = "position"
	FieldRotation  FieldName = "rotation"
)

// OverwriteFields returns the fields a merge always takes from the
// source side.
func OverwriteFields() []FieldName {
	return []FieldName{FieldValue, FieldFootprint, FieldPins, FieldFields}
}

// PreserveFields returns the fields a merge always keeps from the
// destination side. Placement is manual work the engine never undoes.
func PreserveFields() []FieldName {
	return []FieldName{FieldPosition, FieldRotation}
}

// FieldDelta records one field changing in a merge.
type FieldDelta struct {
	Field FieldName `yaml:"field"`
	Old   string    `yaml:"old,omitempty"`
	New   string    `yaml:"new,omitempty"`
}

// String returns a human-readable form of the delta.
func (d FieldDelta) String() string {
	return fmt.Sprintf("%s: %q -> %q", d.Field, d.Old, d.New)
}

// ComponentMerge is the planned merge for one matched pair: source
// truth for electrical fields, destination truth for identity and
// placement.
type ComponentMerge struct {
	// DestID and DestReference identify the destination component the
	// merge applies to.
	DestID        string            `yaml:"dest_id,omitempty"`
	DestReference circuit.Reference `yaml:"dest_reference"`

	// SourceReference identifies the target-side component the values
	// come from.
	SourceReference circuit.Reference `yaml:"source_reference"`

	// Overwrite and Preserve name the field policy applied.
	Overwrite []FieldName `yaml:"overwrite"`
	Preserve  []FieldName `yaml:"preserve"`

	// Deltas lists the fields that actually change.
	Deltas []FieldDelta `yaml:"deltas,omitempty"`

	// Merged is the post-merge component state.
	Merged circuit.Component `yaml:"merged"`

	// Strategy and Confidence carry the match provenance through to the
	// plan.
	Strategy   matcher.StrategyType `yaml:"strategy"`
	Confidence float64              `yaml:"confidence"`
}

// HasChanges reports whether the merge changes any field.
func (m ComponentMerge) HasChanges() bool {
	return len(m.Deltas) > 0
}

// Plan is the full merge plan for one reconciliation pass. Applying it
// is the file codec's job; the plan itself states intent only.
type Plan struct {
	Merges   []ComponentMerge    `yaml:"merges,omitempty"`
	ToAdd    []circuit.Component `yaml:"to_add,omitempty"`
	ToRemove []circuit.Component `yaml:"to_remove,omitempty"`

	// Preserved lists destination-only components kept under the
	// preserve-unmatched policy. Informational; applying the plan leaves
	// them untouched.
	Preserved []circuit.Component `yaml:"preserved,omitempty"`
}

// IsNoop reports whether applying the plan would change nothing.
func (p *Plan) IsNoop() bool {
	return p.Changed() == 0 && len(p.ToAdd) == 0 && len(p.ToRemove) == 0
}

// Changed returns the number of merges that change at least one field.
func (p *Plan) Changed() int {
	n := 0
	for _, m := range p.Merges {
		if m.HasChanges() {
			n++
		}
	}
	return n
}

// buildMerge computes the merge for one matched pair.
func buildMerge(pair matcher.Pair) ComponentMerge {
	source, dest := pair.Source, pair.Dest

	merge := ComponentMerge{
		DestID:          dest.ID,
		DestReference:   dest.Reference,
		SourceReference: source.Reference,
		Overwrite:       OverwriteFields(),
		Preserve:        PreserveFields(),
		Strategy:        pair.Strategy,
		Confidence:      pair.Confidence,
	}

	if source.Value != dest.Value {
		merge.Deltas = append(merge.Deltas, FieldDelta{Field: FieldValue, Old: dest.Value, New: source.Value})
	}
	if source.Footprint != dest.Footprint {
		merge.Deltas = append(merge.Deltas, FieldDelta{Field: FieldFootprint, Old: dest.Footprint, New: source.Footprint})
	}
	if oldPins, newPins := renderPins(dest.Pins), renderPins(source.Pins); oldPins != newPins {
		merge.Deltas = append(merge.Deltas, FieldDelta{Field: FieldPins, Old: oldPins, New: newPins})
	}
	if oldFields, newFields := renderFields(dest.Fields), renderFields(source.Fields); oldFields != newFields {
		merge.Deltas = append(merge.Deltas, FieldDelta{Field: FieldFields, Old: oldFields, New: newFields})
	}

	// Source truth for everything electrical, destination truth for
	// identity and placement.
	merged := source.Clone()
	merged.ID = dest.ID
	merged.Reference = dest.Reference
	merged.Position = dest.Position
	merged.Rotation = dest.Rotation
	merge.Merged = merged

	return merge
}

// renderPins renders a pin map in sorted order for comparison and
// delta display.
func renderPins(pins map[circuit.PinIndex]circuit.NetName) string {
	indices := make([]circuit.PinIndex, 0, len(pins))
	for pin := range pins {
		indices = append(indices, pin)
	}
	sort.Slice(indices, func(i, j int) bool { return indices[i] < indices[j] })

	parts := make([]string, 0, len(indices))
	for _, pin := range indices {
		parts = append(parts, fmt.Sprintf("%s=%s", pin, pins[pin]))
	}
	return strings.Join(parts, ",")
}

// renderFields renders a field map in sorted order.
func renderFields(fields map[string]string) string {
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, fmt.Sprintf("%s=%s", key, fields[key]))
	}
	return strings.Join(parts, ",")
}
