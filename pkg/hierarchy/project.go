package hierarchy

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/tracewire/schemsync/pkg/circuit"
	"github.com/tracewire/schemsync/pkg/errors"
	"github.com/tracewire/schemsync/pkg/logging"
	"github.com/tracewire/schemsync/pkg/reconciler"
)

// SheetCircuit holds the two sides of one sheet's reconciliation: the
// freshly generated target fragment and the destination snapshot
// fragment parsed from the existing file.
type SheetCircuit struct {
	Target   *circuit.Circuit
	Snapshot *circuit.Snapshot

	// Nets optionally lists nets the sheet references beyond those
	// derivable from its target components (e.g. nets forwarded to a
	// child instance). Used for scope resolution.
	Nets []circuit.NetName
}

// Project is a sheet tree plus the per-sheet circuits to reconcile.
type Project struct {
	Root     *Sheet
	Circuits map[*Sheet]*SheetCircuit
}

// NewProject creates a project rooted at the given sheet.
func NewProject(root *Sheet) *Project {
	return &Project{
		Root:     root,
		Circuits: make(map[*Sheet]*SheetCircuit),
	}
}

// SetCircuit assigns a sheet's circuits.
func (p *Project) SetCircuit(sheet *Sheet, sc *SheetCircuit) {
	p.Circuits[sheet] = sc
}

// DeclaredNets collects, per sheet, every net it references: derived from
// target components plus any explicitly listed.
func (p *Project) DeclaredNets() map[*Sheet][]circuit.NetName {
	declared := make(map[*Sheet][]circuit.NetName)
	for sheet, sc := range p.Circuits {
		seen := make(map[circuit.NetName]bool)
		if sc.Target != nil {
			for _, net := range sc.Target.Nets() {
				if !seen[net.Name] {
					seen[net.Name] = true
					declared[sheet] = append(declared[sheet], net.Name)
				}
			}
		}
		for _, net := range sc.Nets {
			if !seen[net] {
				seen[net] = true
				declared[sheet] = append(declared[sheet], net)
			}
		}
	}
	return declared
}

// SheetResult is the outcome of reconciling one sheet. Err is set when
// the sheet failed; sibling sheets are unaffected.
type SheetResult struct {
	Sheet  *Sheet
	Result *reconciler.Result
	Err    error
}

// ProjectResult aggregates per-sheet reconciliation with the net-scope
// assignment for the whole tree.
type ProjectResult struct {
	Sheets []SheetResult
	Scopes map[*Sheet]*Scope
	Report *ProjectReport
}

// Reconcile resolves net scopes for the tree, then runs the engine once
// per sheet on that sheet's own component subset. A failure on one sheet
// is isolated as a per-sheet error; every independent sheet still
// completes. The returned error is non-nil only for structural problems,
// and only after all unaffected sheets have been processed.
func Reconcile(ctx context.Context, project *Project, rec reconciler.Reconciler) (*ProjectResult, error) {
	logger := logging.FromContext(ctx)

	result := &ProjectResult{Report: NewProjectReport()}

	scopes, structuralErr := ResolveScopes(project.Root, project.DeclaredNets())
	result.Scopes = scopes

	project.Root.Walk(func(sheet *Sheet) {
		sc, ok := project.Circuits[sheet]
		if !ok {
			return
		}

		sheetCtx := logging.WithSheet(ctx, sheet.Path())
		sr := SheetResult{Sheet: sheet}

		if sc.Target == nil {
			sr.Err = errors.NewSheetError(sheet.Path(),
				&errors.ValidationError{Field: "target", Message: "sheet has no target circuit"})
		} else {
			res, err := rec.Reconcile(sheetCtx, sc.Snapshot, sc.Target)
			if err != nil {
				sr.Err = errors.NewSheetError(sheet.Path(), err)
			} else {
				sr.Result = res
			}
		}

		if sr.Err != nil {
			// Isolated: report and continue with sibling sheets.
			logger.Error().Err(sr.Err).Str("sheet", sheet.Path()).Msg("Sheet reconciliation failed")
		}

		result.Sheets = append(result.Sheets, sr)
	})

	result.Report.fill(result)
	result.Report.Finalize()

	if structuralErr != nil {
		return result, structuralErr
	}
	return result, nil
}

// Plans returns the per-sheet merge plans for sheets that succeeded.
func (r *ProjectResult) Plans() map[string]*reconciler.Plan {
	plans := make(map[string]*reconciler.Plan)
	for _, sr := range r.Sheets {
		if sr.Result != nil {
			plans[sr.Sheet.Path()] = sr.Result.Plan
		}
	}
	return plans
}

// IsNoop reports whether every sheet's plan is a no-op and no sheet
// failed.
func (r *ProjectResult) IsNoop() bool {
	for _, sr := range r.Sheets {
		if sr.Err != nil {
			return false
		}
		if sr.Result != nil && !sr.Result.Plan.IsNoop() {
			return false
		}
	}
	return true
}

// Errs returns every per-sheet error, joined.
func (r *ProjectResult) Errs() error {
	var errs []error
	for _, sr := range r.Sheets {
		if sr.Err != nil {
			errs = append(errs, sr.Err)
		}
	}
	return stderrors.Join(errs...)
}

// SheetLine is one sheet's row in the project report.
type SheetLine struct {
	Sheet     string `yaml:"sheet"`
	Matched   int    `yaml:"matched"`
	Changed   int    `yaml:"changed"`
	Added     int    `yaml:"added"`
	Removed   int    `yaml:"removed"`
	Preserved int    `yaml:"preserved"`
	Shared    int    `yaml:"shared_nets"`
	Error     string `yaml:"error,omitempty"`
}

// ProjectReport aggregates per-sheet reports into project totals.
type ProjectReport struct {
	Matched   int `yaml:"matched"`
	Changed   int `yaml:"changed"`
	Added     int `yaml:"added"`
	Removed   int `yaml:"removed"`
	Preserved int `yaml:"preserved"`
	Failed    int `yaml:"failed_sheets"`

	Lines []SheetLine `yaml:"sheets"`
}

// NewProjectReport creates an empty project report.
func NewProjectReport() *ProjectReport {
	return &ProjectReport{}
}

// Finalize is a hook for symmetry with the per-sheet report; totals are
// computed in fill.
func (r *ProjectReport) Finalize() {}

// fill aggregates sheet results into totals and per-sheet lines.
func (r *ProjectReport) fill(result *ProjectResult) {
	for _, sr := range result.Sheets {
		line := SheetLine{Sheet: sr.Sheet.Path()}
		if scope, ok := result.Scopes[sr.Sheet]; ok {
			line.Shared = len(scope.Shared)
		}
		if sr.Err != nil {
			r.Failed++
			line.Error = sr.Err.Error()
			r.Lines = append(r.Lines, line)
			continue
		}
		rep := sr.Result.Report
		line.Matched = rep.Matched
		line.Changed = rep.Changed
		line.Added = rep.Added
		line.Removed = rep.Removed
		line.Preserved = rep.Preserved
		r.Matched += rep.Matched
		r.Changed += rep.Changed
		r.Added += rep.Added
		r.Removed += rep.Removed
		r.Preserved += rep.Preserved
		r.Lines = append(r.Lines, line)
	}
}

// Summary returns a one-line human-readable summary.
func (r *ProjectReport) Summary() string {
	parts := []string{fmt.Sprintf("%d sheets", len(r.Lines))}
	parts = append(parts, fmt.Sprintf("%d matched", r.Matched))
	if r.Changed > 0 {
		parts = append(parts, fmt.Sprintf("%d changed", r.Changed))
	}
	if r.Added > 0 {
		parts = append(parts, fmt.Sprintf("%d to add", r.Added))
	}
	if r.Removed > 0 {
		parts = append(parts, fmt.Sprintf("%d to remove", r.Removed))
	}
	if r.Preserved > 0 {
		parts = append(parts, fmt.Sprintf("%d preserved", r.Preserved))
	}
	if r.Failed > 0 {
		parts = append(parts, fmt.Sprintf("%d failed", r.Failed))
	}
	return strings.Join(parts, ", ")
}
