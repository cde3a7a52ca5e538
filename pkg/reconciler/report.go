package reconciler

import (
	"fmt"
	"strings"
	"time"

	"github.com/tracewire/schemsync/pkg/matcher"
)

// Report summarizes one reconciliation pass for display and logging.
type Report struct {
	Matched   int `yaml:"matched"`
	Changed   int `yaml:"changed"`
	Added     int `yaml:"added"`
	Removed   int `yaml:"removed"`
	Preserved int `yaml:"preserved"`

	// Strategies tallies matched pairs per strategy.
	Strategies map[matcher.StrategyType]int `yaml:"strategies,omitempty"`

	// Warnings carries non-fatal match conditions: ambiguity, refinement
	// bound overruns.
	Warnings []matcher.Warning `yaml:"warnings,omitempty"`

	StartTime time.Time     `yaml:"start_time"`
	EndTime   time.Time     `yaml:"end_time"`
	Duration  time.Duration `yaml:"duration"`
}

// NewReport creates a report with the start time set.
func NewReport() *Report {
	return &Report{
		Strategies: make(map[matcher.StrategyType]int),
		StartTime:  time.Now(),
	}
}

// Finalize stamps the end time and computes the duration.
func (r *Report) Finalize() {
	r.EndTime = time.Now()
	r.Duration = r.EndTime.Sub(r.StartTime)
}

// fill populates the counters from a match result and its plan.
func (r *Report) fill(match *matcher.Result, plan *Plan) {
	r.Matched = match.Matched()
	r.Changed = plan.Changed()
	r.Added = len(plan.ToAdd)
	r.Removed = len(plan.ToRemove)
	r.Preserved = len(plan.Preserved)
	r.Strategies = match.StrategyCounts()
	r.Warnings = match.Warnings
}

// Summary returns a one-line human-readable summary.
func (r *Report) Summary() string {
	parts := []string{fmt.Sprintf("%d matched", r.Matched)}
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
	if len(r.Warnings) > 0 {
		parts = append(parts, fmt.Sprintf("%d warnings", len(r.Warnings)))
	}
	return strings.Join(parts, ", ")
}
