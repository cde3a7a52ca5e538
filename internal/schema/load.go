package schema

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/tracewire/schemsync/pkg/circuit"
	"github.com/tracewire/schemsync/pkg/errors"
	"github.com/tracewire/schemsync/pkg/hierarchy"
)

// LoadCircuit reads and validates a target circuit document.
func LoadCircuit(path string) (*circuit.Circuit, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading circuit file: %w", err)
	}
	return ParseCircuit(data, path)
}

// ParseCircuit decodes a target circuit document. file is used for error
// context only.
func ParseCircuit(data []byte, file string) (*circuit.Circuit, error) {
	var doc circuit.Circuit
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.WrapParse(yamlFormat, file, err)
	}

	out := &circuit.Circuit{Components: make([]circuit.Component, 0, len(doc.Components))}
	for _, comp := range doc.Components {
		built, err := rebuild(comp)
		if err != nil {
			return nil, errors.WrapParse(yamlFormat, file, err)
		}
		out.Components = append(out.Components, built)
	}
	return out, nil
}

// LoadSnapshot reads and validates a destination snapshot document. A
// missing file is not an error: it yields a nil snapshot, which the
// engine treats as a first-generation destination.
func LoadSnapshot(path string) (*circuit.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading snapshot file: %w", err)
	}
	return ParseSnapshot(data, path)
}

// ParseSnapshot decodes a destination snapshot document.
func ParseSnapshot(data []byte, file string) (*circuit.Snapshot, error) {
	var doc circuit.Snapshot
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.WrapParse(yamlFormat, file, err)
	}

	out := &circuit.Snapshot{
		Components: make([]circuit.Component, 0, len(doc.Components)),
		Artifacts:  doc.Artifacts,
	}
	for _, comp := range doc.Components {
		built, err := rebuild(comp)
		if err != nil {
			return nil, errors.WrapParse(yamlFormat, file, err)
		}
		out.Components = append(out.Components, built)
	}
	return out, nil
}

// LoadProject reads a multi-sheet project document and builds the sheet
// tree with its per-sheet circuits.
func LoadProject(path string) (*hierarchy.Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading project file: %w", err)
	}
	return ParseProject(data, path)
}

// ParseProject decodes a project document into a sheet tree.
func ParseProject(data []byte, file string) (*hierarchy.Project, error) {
	var doc ProjectDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.WrapParse(yamlFormat, file, err)
	}
	if doc.Root.Name == "" {
		return nil, errors.WrapParse(yamlFormat, file,
			&errors.ValidationError{Field: "root.name", Message: "cannot be empty"})
	}

	root := hierarchy.NewSheet(doc.Root.Name)
	project := hierarchy.NewProject(root)
	if err := attachSheet(project, root, doc.Root, file); err != nil {
		return nil, err
	}
	return project, nil
}

// attachSheet validates one sheet doc, registers its circuits, and
// recurses into children.
func attachSheet(project *hierarchy.Project, sheet *hierarchy.Sheet, doc SheetDoc, file string) error {
	sc := &hierarchy.SheetCircuit{Nets: doc.Nets}

	if doc.Target != nil {
		target := &circuit.Circuit{Components: make([]circuit.Component, 0, len(doc.Target.Components))}
		for _, comp := range doc.Target.Components {
			built, err := rebuild(comp)
			if err != nil {
				return errors.WrapParse(yamlFormat, file, errors.NewSheetError(sheet.Path(), err))
			}
			target.Components = append(target.Components, built)
		}
		sc.Target = target
	}

	if doc.Snapshot != nil {
		snapshot := &circuit.Snapshot{
			Components: make([]circuit.Component, 0, len(doc.Snapshot.Components)),
			Artifacts:  doc.Snapshot.Artifacts,
		}
		for _, comp := range doc.Snapshot.Components {
			built, err := rebuild(comp)
			if err != nil {
				return errors.WrapParse(yamlFormat, file, errors.NewSheetError(sheet.Path(), err))
			}
			snapshot.Components = append(snapshot.Components, built)
		}
		sc.Snapshot = snapshot
	}

	project.SetCircuit(sheet, sc)

	for _, childDoc := range doc.Children {
		if childDoc.Name == "" {
			return errors.WrapParse(yamlFormat, file, errors.NewSheetError(sheet.Path(),
				&errors.ValidationError{Field: "name", Message: "child sheet name cannot be empty"}))
		}
		child := sheet.AddChild(childDoc.Name)
		if err := attachSheet(project, child, childDoc, file); err != nil {
			return err
		}
	}
	return nil
}

// rebuild runs a decoded component through the builder so interchange
// input gets the same validation as programmatic construction.
func rebuild(comp circuit.Component) (circuit.Component, error) {
	b := circuit.NewComponent(comp.Reference, comp.Symbol).
		WithID(comp.ID).
		WithValue(comp.Value).
		WithFootprint(comp.Footprint).
		WithPosition(comp.Position.X, comp.Position.Y).
		WithRotation(comp.Rotation)
	for pin, net := range comp.Pins {
		b = b.WithPin(pin, net)
	}
	for key, value := range comp.Fields {
		b = b.WithField(key, value)
	}
	return b.Build()
}
