// Package schemsync reconciles a generated circuit against an existing
// schematic. It matches components across the two versions, by stable
// identity when the destination carries it and by pure connectivity when
// it does not, and produces a merge plan that takes electrical truth from
// the generated circuit while preserving manual placement and
// destination-only content.
//
// This package is the one-call facade over the engine packages. Callers
// needing finer control use pkg/matcher, pkg/reconciler, and
// pkg/hierarchy directly.
//
// Example usage:
//
//	result, err := schemsync.Sync(ctx, snapshot, target)
//	if err != nil {
//		return err
//	}
//	fmt.Println(result.Report.Summary())
package schemsync

import (
	"context"

	"github.com/tracewire/schemsync/pkg/circuit"
	"github.com/tracewire/schemsync/pkg/hierarchy"
	"github.com/tracewire/schemsync/pkg/reconciler"
)

// Sync reconciles a target circuit against a destination snapshot and
// returns the merge plan with its match result and report. A nil
// snapshot means a blank destination: everything becomes an addition.
func Sync(ctx context.Context, snapshot *circuit.Snapshot, target *circuit.Circuit, opts ...Option) (*reconciler.Result, error) {
	rec, err := newReconciler(opts...)
	if err != nil {
		return nil, err
	}
	return rec.Reconcile(ctx, snapshot, target)
}

// SyncProject reconciles every sheet of a multi-sheet project. Per-sheet
// failures are isolated in the result; the returned error is reserved
// for structural problems with the sheet hierarchy itself.
func SyncProject(ctx context.Context, project *hierarchy.Project, opts ...Option) (*hierarchy.ProjectResult, error) {
	rec, err := newReconciler(opts...)
	if err != nil {
		return nil, err
	}
	return hierarchy.Reconcile(ctx, project, rec)
}

// newReconciler builds the engine from facade options.
func newReconciler(opts ...Option) (reconciler.Reconciler, error) {
	options, err := newOptions(opts...)
	if err != nil {
		return nil, err
	}
	return reconciler.New(options.reconcilerOptions()...)
}
