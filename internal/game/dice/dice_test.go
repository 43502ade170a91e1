package dice_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/cloudranger/internal/game/dice"
)

type fixedSource struct{ val int }

func (f fixedSource) Intn(n int) int {
	if f.val >= n {
		return n - 1
	}
	return f.val
}

func TestRange_Validate(t *testing.T) {
	assert.NoError(t, dice.Range{Min: 5, Max: 15}.Validate())
	assert.NoError(t, dice.Range{Min: 3, Max: 3}.Validate())
	assert.Error(t, dice.Range{Min: 10, Max: 5}.Validate())
	assert.Error(t, dice.Range{Min: -1, Max: 5}.Validate())
	assert.Equal(t, "5-15", dice.Range{Min: 5, Max: 15}.String())
}

func TestCryptoSource_PanicsOnNonPositive(t *testing.T) {
	src := dice.NewCryptoSource()
	assert.Panics(t, func() { src.Intn(0) })
}

func TestSeededSource_Deterministic(t *testing.T) {
	a := dice.NewSeededSource(1234)
	b := dice.NewSeededSource(1234)
	for i := 0; i < 100; i++ {
		require.Equal(t, a.Intn(1000), b.Intn(1000))
	}
}

func TestRoller_UUIDFollowsSeed(t *testing.T) {
	a := dice.NewLoggedRoller(dice.NewSeededSource(7), nil)
	b := dice.NewLoggedRoller(dice.NewSeededSource(7), nil)
	x := a.UUID("first")
	assert.Equal(t, x, b.UUID("first"))
	assert.Equal(t, uuid.Version(4), x.Version())
	assert.Equal(t, uuid.RFC4122, x.Variant())
	assert.NotEqual(t, x, a.UUID("second"))
}

func TestSeededSource_DifferentSeedsDiverge(t *testing.T) {
	a := dice.NewSeededSource(1)
	b := dice.NewSeededSource(2)
	same := 0
	for i := 0; i < 50; i++ {
		if a.Intn(1_000_000) == b.Intn(1_000_000) {
			same++
		}
	}
	assert.Less(t, same, 50)
}

func TestNewSource_ZeroSeedIsCrypto(t *testing.T) {
	src := dice.NewSource(0)
	v := src.Intn(10)
	assert.GreaterOrEqual(t, v, 0)
	assert.Less(t, v, 10)
}

func TestRoller_PercentBounds(t *testing.T) {
	low := dice.NewLoggedRoller(fixedSource{val: 0}, zap.NewNop())
	high := dice.NewLoggedRoller(fixedSource{val: 1000}, zap.NewNop())
	assert.Equal(t, 1, low.Percent("test"))
	assert.Equal(t, 100, high.Percent("test"))
}

func TestRoller_Chance(t *testing.T) {
	r := dice.NewLoggedRoller(fixedSource{val: 29}, nil)
	assert.True(t, r.Chance("gate", 30))
	assert.False(t, r.Chance("gate", 29))
}

func TestRoller_FloatEndpoints(t *testing.T) {
	low := dice.NewLoggedRoller(fixedSource{val: 0}, nil)
	high := dice.NewLoggedRoller(fixedSource{val: 1 << 30}, nil)
	assert.InDelta(t, 0.5, low.Float("spike", 0.5, 1.5), 1e-9)
	assert.InDelta(t, 1.5, high.Float("spike", 0.5, 1.5), 1e-9)
}

func TestRoller_BetweenProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		seed := rapid.Int64().Draw(rt, "seed")
		lo := rapid.IntRange(-50, 50).Draw(rt, "lo")
		hi := rapid.IntRange(lo, lo+100).Draw(rt, "hi")
		r := dice.NewLoggedRoller(dice.NewSeededSource(seed), nil)
		v := r.Between("prop", lo, hi)
		if v < lo || v > hi {
			rt.Fatalf("Between(%d, %d) = %d out of range", lo, hi, v)
		}
	})
}

func TestRoller_PickProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		seed := rapid.Int64().Draw(rt, "seed")
		n := rapid.IntRange(1, 40).Draw(rt, "n")
		r := dice.NewLoggedRoller(dice.NewSeededSource(seed), nil)
		v := r.Pick("prop", n)
		if v < 0 || v >= n {
			rt.Fatalf("Pick(%d) = %d out of range", n, v)
		}
	})
}
