package circuit

import (
	"github.com/google/uuid"

	"github.com/tracewire/schemsync/pkg/errors"
)

// Builder constructs a Component and validates completeness before
// returning it, so a half-initialized component is a construction-time
// error rather than a nil-map surprise at use time.
type Builder struct {
	component Component
}

// NewComponent starts a builder for a component with the given reference
// and symbol, the two fields every component must carry.
func NewComponent(ref Reference, symbol string) *Builder {
	return &Builder{
		component: Component{
			Reference: ref,
			Symbol:    symbol,
			Pins:      make(map[PinIndex]NetName),
		},
	}
}

// WithID sets the stable destination-side identity.
func (b *Builder) WithID(id string) *Builder {
	b.component.ID = id
	return b
}

// WithValue sets the component value.
func (b *Builder) WithValue(value string) *Builder {
	b.component.Value = value
	return b
}

// WithFootprint sets the physical package.
func (b *Builder) WithFootprint(footprint string) *Builder {
	b.component.Footprint = footprint
	return b
}

// WithPosition sets manual placement.
func (b *Builder) WithPosition(x, y float64) *Builder {
	b.component.Position = Position{X: x, Y: y}
	return b
}

// WithRotation sets the placement rotation in degrees.
func (b *Builder) WithRotation(degrees float64) *Builder {
	b.component.Rotation = degrees
	return b
}

// WithPin connects a pin to a net.
func (b *Builder) WithPin(pin PinIndex, net NetName) *Builder {
	b.component.Pins[pin] = net
	return b
}

// WithField sets a free-form metadata field.
func (b *Builder) WithField(key, value string) *Builder {
	if b.component.Fields == nil {
		b.component.Fields = make(map[string]string)
	}
	b.component.Fields[key] = value
	return b
}

// Build validates the component and returns it. Reference and symbol must
// be non-empty, and an ID, when present, must be a valid UUID.
func (b *Builder) Build() (Component, error) {
	if b.component.Reference == "" {
		return Component{}, &errors.ValidationError{Field: "reference", Message: "cannot be empty"}
	}
	if b.component.Symbol == "" {
		return Component{}, &errors.ValidationError{
			Field:   "symbol",
			Value:   b.component.Reference.String(),
			Message: "cannot be empty",
		}
	}
	if b.component.ID != "" {
		if _, err := uuid.Parse(b.component.ID); err != nil {
			return Component{}, &errors.ValidationError{
				Field:   "id",
				Value:   b.component.ID,
				Message: "not a valid UUID",
			}
		}
	}
	return b.component.Clone(), nil
}

// MustBuild is Build for tests and static tables; it panics on error.
func (b *Builder) MustBuild() Component {
	c, err := b.Build()
	if err != nil {
		panic(err)
	}
	return c
}
