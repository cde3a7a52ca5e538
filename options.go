package schemsync

import (
	"github.com/tracewire/schemsync/pkg/canonical"
	"github.com/tracewire/schemsync/pkg/errors"
	"github.com/tracewire/schemsync/pkg/matcher"
	"github.com/tracewire/schemsync/pkg/reconciler"
)

// options configures the facade.
type options struct {
	preserveUnmatched bool
	firstGeneration   bool
	maxIterations     int
}

func defaultOptions() *options {
	return &options{
		preserveUnmatched: true,
	}
}

// Option is a function that configures a sync.
type Option func(*options) error

func (options *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if err := opt(options); err != nil {
			return nil, err
		}
	}
	return options, nil
}

// newOptions returns facade options with default values.
func newOptions(opts ...Option) (*options, error) {
	return defaultOptions().apply(opts...)
}

// reconcilerOptions translates facade options into engine options.
func (o *options) reconcilerOptions() []reconciler.Option {
	out := []reconciler.Option{
		reconciler.WithPreserveUnmatched(o.preserveUnmatched),
		reconciler.WithFirstGeneration(o.firstGeneration),
	}
	if o.maxIterations > 0 {
		out = append(out, reconciler.WithMatcher(matcher.New(
			matcher.WithCanonicalOptions(canonical.WithMaxIterations(o.maxIterations)),
		)))
	}
	return out
}

// WithPreserveUnmatched sets the preserve-unmatched-destination policy:
// when true (the default), destination components with no target
// counterpart survive reconciliation untouched; when false they are
// scheduled for removal.
func WithPreserveUnmatched(preserve bool) Option {
	return func(o *options) error {
		o.preserveUnmatched = preserve
		return nil
	}
}

// WithFirstGeneration forces connectivity matching even when the
// destination carries stable ids.
func WithFirstGeneration(first bool) Option {
	return func(o *options) error {
		o.firstGeneration = first
		return nil
	}
}

// WithMaxIterations overrides the signature refinement iteration bound.
func WithMaxIterations(n int) Option {
	return func(o *options) error {
		if n < 1 {
			return &errors.ValidationError{
				Field:   "maxIterations",
				Message: "must be at least 1",
			}
		}
		o.maxIterations = n
		return nil
	}
}
