package app

import (
	stderrors "errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tracewire/schemsync/internal/schema"
	"github.com/tracewire/schemsync/pkg/canonical"
	"github.com/tracewire/schemsync/pkg/circuit"
	"github.com/tracewire/schemsync/pkg/hierarchy"
	"github.com/tracewire/schemsync/pkg/logging"
	"github.com/tracewire/schemsync/pkg/matcher"
	"github.com/tracewire/schemsync/pkg/reconciler"
)

// syncFlags holds the sync command's flag values.
type syncFlags struct {
	target    string
	snapshot  string
	project   string
	firstGen  bool
	prune     bool
	maxIter   int
	planOut   string
	reportOut string
}

// NewSyncCommand creates the sync command: reconcile a target circuit
// against a destination snapshot and emit the merge plan.
func (a *App) NewSyncCommand() *cobra.Command {
	flags := &syncFlags{}

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Reconcile a circuit against an existing schematic",
		Long: `Sync matches the components of a freshly generated circuit against an
existing schematic snapshot and produces a merge plan: electrical fields
are taken from the circuit, placement and destination-only content are
preserved.

Single-sheet mode takes --target and optionally --snapshot. Project mode
takes --project, a document describing the sheet tree, and reconciles
every sheet; a failure on one sheet does not stop its siblings.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if flags.project != "" {
				return a.runProjectSync(cmd, flags)
			}
			return a.runSheetSync(cmd, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.target, "target", "t", "", "target circuit file")
	cmd.Flags().StringVarP(&flags.snapshot, "snapshot", "s", "", "destination snapshot file")
	cmd.Flags().StringVarP(&flags.project, "project", "p", "", "project file (multi-sheet mode)")
	cmd.Flags().BoolVar(&flags.firstGen, "first-gen", false, "force connectivity matching even when stable ids exist")
	cmd.Flags().BoolVar(&flags.prune, "prune", false, "remove destination components with no target counterpart")
	cmd.Flags().IntVar(&flags.maxIter, "max-iterations", 0, "signature refinement iteration bound")
	cmd.Flags().StringVar(&flags.planOut, "plan-out", "", "write the merge plan to this file")
	cmd.Flags().StringVar(&flags.reportOut, "report-out", "", "write the report to this file")

	return cmd
}

// newReconciler builds the engine from config defaults and sync flags.
func (a *App) newReconciler(flags *syncFlags) (reconciler.Reconciler, error) {
	maxIter := flags.maxIter
	if maxIter == 0 {
		maxIter = a.config.MaxIterations
	}

	var matcherOpts []matcher.Option
	if maxIter > 0 {
		matcherOpts = append(matcherOpts, matcher.WithCanonicalOptions(canonical.WithMaxIterations(maxIter)))
	}

	preserve := a.config.PreserveUnmatched && !flags.prune

	return reconciler.New(
		reconciler.WithMatcher(matcher.New(matcherOpts...)),
		reconciler.WithPreserveUnmatched(preserve),
		reconciler.WithFirstGeneration(flags.firstGen),
	)
}

// runSheetSync reconciles a single target circuit against a snapshot.
func (a *App) runSheetSync(cmd *cobra.Command, flags *syncFlags) error {
	if flags.target == "" {
		return fmt.Errorf("either --target or --project is required")
	}

	ctx := logging.WithLogger(cmd.Context(), a.logger)

	target, err := schema.LoadCircuit(flags.target)
	if err != nil {
		return err
	}

	// Missing or unnamed snapshot means a first-generation destination.
	var snap *circuit.Snapshot
	if flags.snapshot != "" {
		snap, err = schema.LoadSnapshot(flags.snapshot)
		if err != nil {
			return err
		}
	}

	rec, err := a.newReconciler(flags)
	if err != nil {
		return err
	}

	result, err := rec.Reconcile(ctx, snap, target)
	if err != nil {
		return err
	}

	if flags.planOut != "" {
		if err := schema.WritePlan(flags.planOut, result.Plan); err != nil {
			return err
		}
	}
	if flags.reportOut != "" {
		data, err := schema.MarshalReport(result.Report)
		if err != nil {
			return err
		}
		if err := writeFile(flags.reportOut, data); err != nil {
			return err
		}
	}

	for _, warning := range result.Match.Warnings {
		a.logger.Warn().Msg(warning.String())
	}
	fmt.Fprintln(cmd.OutOrStdout(), result.Report.Summary())

	return nil
}

// runProjectSync reconciles every sheet of a project.
func (a *App) runProjectSync(cmd *cobra.Command, flags *syncFlags) error {
	if flags.target != "" || flags.snapshot != "" {
		return fmt.Errorf("--project cannot be combined with --target or --snapshot")
	}

	ctx := logging.WithLogger(cmd.Context(), a.logger)

	project, err := schema.LoadProject(flags.project)
	if err != nil {
		return err
	}

	rec, err := a.newReconciler(flags)
	if err != nil {
		return err
	}

	result, structuralErr := hierarchy.Reconcile(ctx, project, rec)

	if flags.planOut != "" {
		if err := schema.WriteProjectPlans(flags.planOut, result.Plans()); err != nil {
			return err
		}
	}
	if flags.reportOut != "" {
		data, err := schema.MarshalProjectReport(result.Report)
		if err != nil {
			return err
		}
		if err := writeFile(flags.reportOut, data); err != nil {
			return err
		}
	}

	fmt.Fprintln(cmd.OutOrStdout(), result.Report.Summary())

	return stderrors.Join(structuralErr, result.Errs())
}
