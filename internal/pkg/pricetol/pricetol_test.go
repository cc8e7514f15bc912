package pricetol

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEqual(t *testing.T) {
	t.Run("identical values", func(t *testing.T) {
		assert.True(t, Equal(150.50, 150.50))
	})

	t.Run("within tolerance boundary", func(t *testing.T) {
		assert.True(t, Equal(150.50000, 150.50001))
		assert.True(t, Equal(150.50001, 150.50000))
	})

	t.Run("outside tolerance", func(t *testing.T) {
		assert.False(t, Equal(150.50, 150.51))
		assert.False(t, Equal(100.0, 100.001))
	})

	t.Run("non-finite inputs never match real prices", func(t *testing.T) {
		assert.False(t, Equal(math.NaN(), 150.50))
		assert.False(t, Equal(math.Inf(1), 150.50))
	})
}

func TestMatchesAny(t *testing.T) {
	candidates := []float64{100.0, 105.0, 110.0}

	assert.True(t, MatchesAny(105.0, candidates))
	assert.True(t, MatchesAny(105.000009, candidates))
	assert.False(t, MatchesAny(106.0, candidates))
	assert.False(t, MatchesAny(105.0, nil))
}

func TestProfitTargets(t *testing.T) {
	t.Run("long", func(t *testing.T) {
		p1, p2 := ProfitTargets(100.0, true)
		assert.InDelta(t, 103.0, p1, 1e-9)
		assert.InDelta(t, 106.0, p2, 1e-9)
	})

	t.Run("short", func(t *testing.T) {
		p1, p2 := ProfitTargets(100.0, false)
		assert.InDelta(t, 97.0, p1, 1e-9)
		assert.InDelta(t, 94.0, p2, 1e-9)
	})

	t.Run("decimal arithmetic avoids drift", func(t *testing.T) {
		p1, _ := ProfitTargets(150.50, true)
		assert.InDelta(t, 155.015, p1, 1e-9)
	})
}
