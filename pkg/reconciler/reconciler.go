// Package reconciler consumes a match result and produces a merge plan:
// which fields to overwrite, which destination state to preserve, and
// which components to add or remove. The engine is a pure function of the
// destination snapshot, the target circuit, and one policy flag; it
// performs no I/O and assumes callers serialize concurrent invocations
// against the same destination file (single-writer contract).
package reconciler

import (
	"context"

	"github.com/google/uuid"

	"github.com/tracewire/schemsync/pkg/circuit"
	"github.com/tracewire/schemsync/pkg/logging"
	"github.com/tracewire/schemsync/pkg/matcher"
)

// Reconciler reconciles a target circuit against a destination snapshot.
type Reconciler interface {
	// Reconcile matches the two sides and builds a merge plan plus a
	// report. It returns an error only for structural problems; all
	// other conditions surface through the report.
	Reconcile(ctx context.Context, snapshot *circuit.Snapshot, target *circuit.Circuit) (*Result, error)
}

// Result is the outcome of one reconciliation pass.
type Result struct {
	Plan   *Plan
	Match  *matcher.Result
	Report *Report
}

// reconciler is the default implementation of Reconciler.
type reconciler struct {
	matcher           *matcher.Matcher
	preserveUnmatched bool
	firstGeneration   bool
}

// New creates a new Reconciler with options.
func New(opts ...Option) (Reconciler, error) {
	options, err := newOptions(opts...)
	if err != nil {
		return nil, err
	}

	return &reconciler{
		matcher:           options.matcher,
		preserveUnmatched: options.preserveUnmatched,
		firstGeneration:   options.firstGeneration,
	}, nil
}

// Reconcile matches the snapshot against the target and builds the plan.
func (r *reconciler) Reconcile(ctx context.Context, snapshot *circuit.Snapshot, target *circuit.Circuit) (*Result, error) {
	logger := logging.FromContext(ctx)
	report := NewReport()

	var existing []circuit.Component
	if snapshot != nil {
		existing = snapshot.Components
	}

	// Update mode matches by identity. First-generation mode, forced or
	// detected from a snapshot with no stable ids, has no identity to
	// match by and falls back to pure connectivity.
	var match *matcher.Result
	if r.firstGeneration || !hasIdentity(existing) {
		logger.Debug().Int("existing", len(existing)).Msg("Matching by topology")
		match = r.matcher.ByTopology(ctx, existing, target.Components)
	} else {
		logger.Debug().Int("existing", len(existing)).Msg("Matching by identity")
		match = r.matcher.ByIdentity(ctx, existing, target.Components)
	}

	plan := BuildPlan(match, r.preserveUnmatched)

	report.fill(match, plan)
	report.Finalize()

	logger.Info().
		Int("matched", report.Matched).
		Int("changed", report.Changed).
		Int("added", report.Added).
		Int("removed", report.Removed).
		Int("preserved", report.Preserved).
		Msg("Reconciliation complete")

	return &Result{Plan: plan, Match: match, Report: report}, nil
}

// BuildPlan turns a match result into a merge plan under the
// preserve-unmatched-destination policy. Pure function; exported so the
// hierarchy resolver and tests can drive it directly.
func BuildPlan(match *matcher.Result, preserveUnmatched bool) *Plan {
	plan := &Plan{}

	for _, pair := range match.Pairs {
		plan.Merges = append(plan.Merges, buildMerge(pair))
	}

	// Source-only components get a fresh stable id but no placement;
	// the engine states intent only and assigns no position.
	for _, source := range match.UnmatchedSource {
		add := source.Clone()
		if add.ID == "" {
			add.ID = uuid.NewString()
		}
		add.Position = circuit.Position{}
		add.Rotation = 0
		plan.ToAdd = append(plan.ToAdd, add)
	}

	for _, dest := range match.UnmatchedDest {
		if preserveUnmatched {
			plan.Preserved = append(plan.Preserved, dest.Clone())
		} else {
			plan.ToRemove = append(plan.ToRemove, dest.Clone())
		}
	}

	return plan
}

// hasIdentity reports whether any destination component carries a stable id.
func hasIdentity(components []circuit.Component) bool {
	for _, comp := range components {
		if comp.ID != "" {
			return true
		}
	}
	return false
}
