package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hermes/domain/instrument"
)

func TestSourceStaysInBounds(t *testing.T) {
	reg, err := instrument.NewRegistry(instrument.GenerateUniverse("STK", 16))
	require.NoError(t, err)

	src := NewSource(reg, 1, Config{MinPrice: 100, MaxPrice: 200, MaxQty: 10})

	for i := 0; i < 10_000; i++ {
		o := src.Next()
		assert.True(t, reg.Contains(o.Instrument))
		assert.True(t, o.Side.Valid())
		assert.GreaterOrEqual(t, o.Qty, int64(1))
		assert.LessOrEqual(t, o.Qty, int64(10))
		assert.GreaterOrEqual(t, o.Price, int64(100))
		assert.LessOrEqual(t, o.Price, int64(200))
	}
}

func TestSourceDefaults(t *testing.T) {
	reg, err := instrument.NewRegistry([]string{"A"})
	require.NoError(t, err)

	src := NewSource(reg, 1, Config{})

	for i := 0; i < 1_000; i++ {
		o := src.Next()
		assert.GreaterOrEqual(t, o.Price, int64(1_000))
		assert.LessOrEqual(t, o.Price, int64(50_000))
		assert.LessOrEqual(t, o.Qty, int64(100))
	}
}

func TestSourceDeterministicPerSeed(t *testing.T) {
	reg, err := instrument.NewRegistry(instrument.GenerateUniverse("STK", 8))
	require.NoError(t, err)

	a := NewSource(reg, 99, Config{})
	b := NewSource(reg, 99, Config{})
	for i := 0; i < 100; i++ {
		assert.Equal(t, a.Next(), b.Next())
	}
}
