package reconciler

import (
	"github.com/tracewire/schemsync/pkg/errors"
	"github.com/tracewire/schemsync/pkg/matcher"
)

// options configures a reconciler.
type options struct {
	matcher           *matcher.Matcher
	preserveUnmatched bool
	firstGeneration   bool
}

func defaultOptions() *options {
	return &options{
		matcher:           matcher.New(),
		preserveUnmatched: true,
	}
}

// Option is a function that configures a Reconciler.
type Option func(*options) error

func (options *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if err := opt(options); err != nil {
			return nil, err
		}
	}
	return options, nil
}

// newOptions returns reconciler options with default values.
func newOptions(opts ...Option) (*options, error) {
	return defaultOptions().apply(opts...)
}

// WithMatcher replaces the default matcher.
func WithMatcher(m *matcher.Matcher) Option {
	return func(o *options) error {
		if m == nil {
			return &errors.ValidationError{
				Field:   "matcher",
				Message: "cannot be nil",
			}
		}
		o.matcher = m
		return nil
	}
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

// WithFirstGeneration forces topology matching even when the snapshot
// carries stable ids. Without this, topology matching is used only when
// no destination component has an id.
func WithFirstGeneration(first bool) Option {
	return func(o *options) error {
		o.firstGeneration = first
		return nil
	}
}
