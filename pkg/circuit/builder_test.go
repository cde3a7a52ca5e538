package circuit_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tracewire/schemsync/pkg/circuit"
	"github.com/tracewire/schemsync/pkg/errors"
)

func TestBuilderBuild(t *testing.T) {
	comp, err := circuit.NewComponent("U1", "MCU:STM32F4").
		WithID("a81cbd6b-64a1-4f0d-9b3c-2f14d3c4e1aa").
		WithValue("STM32F405").
		WithFootprint("Package_QFP:LQFP-64").
		WithPosition(25.4, 50.8).
		WithRotation(90).
		WithPin("1", "VCC").
		WithField("MPN", "STM32F405RGT6").
		Build()
	require.NoError(t, err)

	assert.Equal(t, circuit.Reference("U1"), comp.Reference)
	assert.Equal(t, "STM32F405", comp.Value)
	assert.Equal(t, circuit.Position{X: 25.4, Y: 50.8}, comp.Position)
	assert.Equal(t, circuit.NetName("VCC"), comp.Pins["1"])
	assert.Equal(t, "STM32F405RGT6", comp.Fields["MPN"])
}

func TestBuilderValidation(t *testing.T) {
	t.Run("empty reference", func(t *testing.T) {
		_, err := circuit.NewComponent("", "Device:R").Build()
		require.Error(t, err)
		assert.True(t, errors.IsValidation(err))
	})

	t.Run("empty symbol", func(t *testing.T) {
		_, err := circuit.NewComponent("R1", "").Build()
		require.Error(t, err)
		assert.True(t, errors.IsValidation(err))
	})

	t.Run("invalid uuid", func(t *testing.T) {
		_, err := circuit.NewComponent("R1", "Device:R").WithID("not-a-uuid").Build()
		require.Error(t, err)
		assert.True(t, errors.IsValidation(err))
	})

	t.Run("empty id is valid", func(t *testing.T) {
		_, err := circuit.NewComponent("R1", "Device:R").Build()
		assert.NoError(t, err)
	})
}

func TestBuilderReturnsCopy(t *testing.T) {
	b := circuit.NewComponent("R1", "Device:R").WithPin("1", "VCC")
	first := b.MustBuild()
	b.WithPin("2", "GND")
	second := b.MustBuild()

	assert.Len(t, first.Pins, 1)
	assert.Len(t, second.Pins, 2)
}
