package errors_test

import (
	"errors"
	"testing"

	pkgerrors "github.com/tracewire/schemsync/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := pkgerrors.New("test error")
	assert.NotNil(t, err)
	assert.Equal(t, "test error", err.Error())
}

func TestStructuralError(t *testing.T) {
	t.Run("with net and sheets", func(t *testing.T) {
		err := &pkgerrors.StructuralError{
			Net:     "SPI_CLK",
			Sheets:  []string{"sensors", "comms"},
			Message: "no common ancestor",
		}
		assert.Equal(t, "structural error: net SPI_CLK referenced on sheets [sensors, comms]: no common ancestor", err.Error())
		assert.True(t, errors.Is(err, pkgerrors.ErrStructural))
	})

	t.Run("constructor", func(t *testing.T) {
		err := pkgerrors.NewStructuralError("", []string{"top"}, "cyclic sheet reference")
		assert.Equal(t, "structural error: cyclic sheet reference", err.Error())
		assert.True(t, pkgerrors.IsStructural(err))
	})

	t.Run("joined", func(t *testing.T) {
		base := pkgerrors.NewStructuralError("GND", nil, "bad")
		joined := errors.Join(errors.New("context"), base)
		assert.True(t, pkgerrors.IsStructural(joined))
	})
}

func TestValidationError(t *testing.T) {
	t.Run("with field", func(t *testing.T) {
		err := &pkgerrors.ValidationError{
			Field:   "reference",
			Message: "cannot be empty",
		}
		assert.Equal(t, "validation failed for field reference: cannot be empty", err.Error())
		assert.True(t, errors.Is(err, pkgerrors.ErrInvalidInput))
	})

	t.Run("with value", func(t *testing.T) {
		err := &pkgerrors.ValidationError{
			Field:   "id",
			Value:   "not-a-uuid",
			Message: "not a valid UUID",
		}
		assert.Equal(t, `validation failed for field id ("not-a-uuid"): not a valid UUID`, err.Error())
		assert.True(t, pkgerrors.IsValidation(err))
	})
}

func TestAmbiguousMatchError(t *testing.T) {
	err := &pkgerrors.AmbiguousMatchError{
		Reference:  "R3",
		Candidates: 2,
		Strategy:   "value-footprint",
	}
	assert.Equal(t, "ambiguous match for R3: 2 equally valid candidates under value-footprint strategy", err.Error())
	assert.True(t, pkgerrors.IsAmbiguousMatch(err))
}

func TestRefinementError(t *testing.T) {
	err := &pkgerrors.RefinementError{Iterations: 4, Bound: 4}
	assert.Equal(t, "signature refinement did not converge within 4 iterations", err.Error())
	assert.True(t, pkgerrors.IsRefinementBound(err))
}

func TestSheetError(t *testing.T) {
	base := pkgerrors.NewStructuralError("VCC", nil, "bad")
	err := pkgerrors.NewSheetError("top/power", base)

	assert.Equal(t, "sheet top/power: structural error: net VCC: bad", err.Error())
	assert.True(t, pkgerrors.IsStructural(err))

	var sheetErr *pkgerrors.SheetError
	require.True(t, errors.As(err, &sheetErr))
	assert.Equal(t, "top/power", sheetErr.Sheet)
}

func TestWrapParse(t *testing.T) {
	t.Run("nil is nil", func(t *testing.T) {
		assert.NoError(t, pkgerrors.WrapParse("yaml", "circuit.yaml", nil))
	})

	t.Run("wraps", func(t *testing.T) {
		base := errors.New("unexpected node")
		err := pkgerrors.WrapParse("yaml", "circuit.yaml", base)
		require.Error(t, err)
		assert.Equal(t, "parse error in yaml file circuit.yaml: unexpected node", err.Error())
		assert.True(t, errors.Is(err, base))
	})
}
