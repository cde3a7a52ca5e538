package schema

import (
	"fmt"
	"os"
	"sort"

	"github.com/goccy/go-yaml"

	"github.com/tracewire/schemsync/pkg/hierarchy"
	"github.com/tracewire/schemsync/pkg/reconciler"
)

const fileMode = 0o644

// WritePlan writes a merge plan document to path.
func WritePlan(path string, plan *reconciler.Plan) error {
	data, err := yaml.Marshal(plan)
	if err != nil {
		return fmt.Errorf("marshaling plan: %w", err)
	}
	if err := os.WriteFile(path, data, fileMode); err != nil {
		return fmt.Errorf("writing plan file: %w", err)
	}
	return nil
}

// PlanEntry is one sheet's plan in a project plan document.
type PlanEntry struct {
	Sheet string           `yaml:"sheet"`
	Plan  *reconciler.Plan `yaml:"plan"`
}

// WriteProjectPlans writes the per-sheet plans of a project run, ordered
// by sheet path.
func WriteProjectPlans(path string, plans map[string]*reconciler.Plan) error {
	entries := make([]PlanEntry, 0, len(plans))
	for sheet, plan := range plans {
		entries = append(entries, PlanEntry{Sheet: sheet, Plan: plan})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Sheet < entries[j].Sheet })

	data, err := yaml.Marshal(entries)
	if err != nil {
		return fmt.Errorf("marshaling project plans: %w", err)
	}
	if err := os.WriteFile(path, data, fileMode); err != nil {
		return fmt.Errorf("writing plan file: %w", err)
	}
	return nil
}

// ScopeEntry is one sheet's scope assignment in the scopes document.
type ScopeEntry struct {
	Sheet string   `yaml:"sheet"`
	Scope ScopeDoc `yaml:"scope"`
}

// MarshalScopes renders a scope assignment as YAML, ordered by sheet path.
func MarshalScopes(scopes map[*hierarchy.Sheet]*hierarchy.Scope) ([]byte, error) {
	entries := make([]ScopeEntry, 0, len(scopes))
	for sheet, scope := range scopes {
		entries = append(entries, ScopeEntry{
			Sheet: sheet.Path(),
			Scope: ScopeDoc{
				Local:       scope.Local,
				Shared:      scope.Shared,
				PassThrough: scope.PassThrough,
			},
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Sheet < entries[j].Sheet })

	data, err := yaml.Marshal(entries)
	if err != nil {
		return nil, fmt.Errorf("marshaling scopes: %w", err)
	}
	return data, nil
}

// MarshalReport renders a reconciliation report as YAML.
func MarshalReport(report *reconciler.Report) ([]byte, error) {
	data, err := yaml.Marshal(report)
	if err != nil {
		return nil, fmt.Errorf("marshaling report: %w", err)
	}
	return data, nil
}

// MarshalProjectReport renders a project report as YAML.
func MarshalProjectReport(report *hierarchy.ProjectReport) ([]byte, error) {
	data, err := yaml.Marshal(report)
	if err != nil {
		return nil, fmt.Errorf("marshaling project report: %w", err)
	}
	return data, nil
}
