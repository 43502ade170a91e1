package condition_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/cloudranger/internal/game/condition"
)

func infection() *condition.StatusDef {
	return &condition.StatusDef{
		ID: "digital_infection", Name: "Digital Infection", Target: condition.TargetPlayer,
		Duration: 3, PerTurn: condition.PerTurn{Kind: condition.TickDamage, Magnitude: 5},
	}
}

func lag() *condition.StatusDef {
	return &condition.StatusDef{
		ID: "system_lag", Name: "System Lag", Target: condition.TargetPlayer,
		Duration: 2, PerTurn: condition.PerTurn{Kind: condition.TickDrainEnergy, Magnitude: 5},
	}
}

func stealth() *condition.StatusDef {
	return &condition.StatusDef{
		ID: "stealth", Name: "Stealth", Target: condition.TargetPlayer,
		Duration: 3, PerTurn: condition.PerTurn{Kind: condition.TickNone}, Flags: []string{condition.FlagHazardImmunity},
	}
}

func TestActiveSet_ApplyAndHas(t *testing.T) {
	s := condition.NewActiveSet()
	require.NoError(t, s.Apply(infection()))
	assert.True(t, s.Has("digital_infection"))
	assert.Equal(t, 1, s.Len())
}

func TestActiveSet_ApplyNil(t *testing.T) {
	s := condition.NewActiveSet()
	assert.Error(t, s.Apply(nil))
}

func TestActiveSet_ReapplyRefreshesDuration(t *testing.T) {
	s := condition.NewActiveSet()
	require.NoError(t, s.Apply(infection()))
	s.Tick()
	s.Tick()
	require.NoError(t, s.Apply(infection()))
	assert.Equal(t, 3, s.All()[0].Remaining)
}

func TestActiveSet_TickAppliesThenExpires(t *testing.T) {
	s := condition.NewActiveSet()
	require.NoError(t, s.Apply(lag()))

	ticks, expired := s.Tick()
	require.Len(t, ticks, 1)
	assert.Equal(t, condition.TickDrainEnergy, ticks[0].Kind)
	assert.Equal(t, 5, ticks[0].Magnitude)
	assert.Empty(t, expired)

	ticks, expired = s.Tick()
	assert.Len(t, ticks, 1)
	assert.Equal(t, []string{"system_lag"}, expired)
	assert.False(t, s.Has("system_lag"))
}

func TestActiveSet_TickSkipsNoneKind(t *testing.T) {
	s := condition.NewActiveSet()
	require.NoError(t, s.Apply(stealth()))
	ticks, _ := s.Tick()
	assert.Empty(t, ticks)
	assert.True(t, s.HasFlag(condition.FlagHazardImmunity))
}

func TestActiveSet_Remove(t *testing.T) {
	s := condition.NewActiveSet()
	require.NoError(t, s.Apply(infection()))
	s.Remove("digital_infection")
	assert.False(t, s.Has("digital_infection"))
	s.Remove("digital_infection")
}

func TestActiveSet_EntriesRestoreRoundTrip(t *testing.T) {
	reg := condition.NewRegistry()
	require.NoError(t, reg.Register(infection()))
	require.NoError(t, reg.Register(lag()))

	s := condition.NewActiveSet()
	require.NoError(t, s.Apply(infection()))
	require.NoError(t, s.Apply(lag()))
	s.Tick()

	restored, err := condition.Restore(reg, s.Entries())
	require.NoError(t, err)
	assert.Equal(t, s.Entries(), restored.Entries())
}

func TestRestore_UnknownID(t *testing.T) {
	_, err := condition.Restore(condition.NewRegistry(), []condition.Entry{{ID: "ghost", Remaining: 1}})
	assert.Error(t, err)
}

func TestActiveSet_ExpiresAfterExactlyDurationTicks(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		duration := rapid.IntRange(1, 20).Draw(rt, "duration")
		def := &condition.StatusDef{ID: "x", Name: "X", Target: condition.TargetPlayer, Duration: duration,
			PerTurn: condition.PerTurn{Kind: condition.TickDamage, Magnitude: 1}}
		s := condition.NewActiveSet()
		if err := s.Apply(def); err != nil {
			rt.Fatal(err)
		}
		count := 0
		for s.Has("x") {
			ticks, _ := s.Tick()
			count += len(ticks)
		}
		if count != duration {
			rt.Fatalf("expected %d ticks, got %d", duration, count)
		}
	})
}
