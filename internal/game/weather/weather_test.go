package weather_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/cloudranger/internal/game/dice"
	"github.com/cory-johannsen/cloudranger/internal/game/weather"
	"github.com/cory-johannsen/cloudranger/internal/game/world"
)

type queued struct{ vals []int }

func (q *queued) Intn(n int) int {
	if len(q.vals) == 0 {
		return 0
	}
	v := q.vals[0]
	q.vals = q.vals[1:]
	return v % n
}

func locs() []*world.Location {
	return []*world.Location{
		{ID: "cloud_city", Name: "Cloud City", Region: "us-east-1", Difficulty: 1},
		{ID: "lair", Name: "Lair", Region: "somewhere", Difficulty: 10},
	}
}

func TestTypes_EightKinds(t *testing.T) {
	ts := weather.Types()
	assert.Len(t, ts, 8)
	seen := map[weather.Kind]bool{}
	for _, ty := range ts {
		seen[ty.Kind] = true
	}
	assert.Len(t, seen, 8)
}

func TestSeverityLevel_Clamps(t *testing.T) {
	assert.Equal(t, "Minimal", weather.SeverityLevel(-3).Name)
	assert.Equal(t, "Catastrophic", weather.SeverityLevel(9).Name)
	assert.Equal(t, 1.5, weather.SeverityLevel(4).Multiplier)
}

func TestTendencies_UnknownRegion(t *testing.T) {
	assert.Equal(t, []weather.Kind{weather.QuantumFluctuations}, weather.Tendencies("mars-1"))
}

func TestNewTracker_RegionalRoll(t *testing.T) {
	// cloud_city: regional (roll 1), pick 0 -> Clear Signals, severity 0/2-1 -> 1, duration 2.
	// lair: regional, pick 0 -> Quantum Fluctuations, severity 5-1=4, duration 2.
	r := dice.NewLoggedRoller(&queued{}, nil)
	tr := weather.NewTracker(locs(), r, nil)

	c, ok := tr.At("cloud_city")
	require.True(t, ok)
	assert.Equal(t, weather.ClearSignals, c.Type.Kind)
	assert.Equal(t, 1, c.Severity.Level)
	assert.Equal(t, 2, c.Duration)

	c, ok = tr.At("lair")
	require.True(t, ok)
	assert.Equal(t, weather.QuantumFluctuations, c.Type.Kind)
	assert.Equal(t, 4, c.Severity.Level)

	_, ok = tr.At("nowhere")
	assert.False(t, ok)
}

func TestTick_ChangesOnExpiry(t *testing.T) {
	r := dice.NewLoggedRoller(&queued{}, nil)
	tr := weather.NewTracker(locs(), r, nil)

	assert.Empty(t, tr.Tick())
	changes := tr.Tick()
	assert.Len(t, changes, 2)
	for _, ch := range changes {
		assert.GreaterOrEqual(t, ch.Condition.Duration, 2)
	}
}

func TestPropertyDurationStaysPositive(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		seed := rapid.Int64().Draw(t, "seed")
		ticks := rapid.IntRange(1, 40).Draw(t, "ticks")
		tr := weather.NewTracker(locs(), dice.NewLoggedRoller(dice.NewSeededSource(seed), nil), nil)
		for i := 0; i < ticks; i++ {
			tr.Tick()
			for _, l := range locs() {
				c, _ := tr.At(l.ID)
				if c.Duration < 1 || c.Duration > 5 {
					t.Fatalf("duration %d out of range", c.Duration)
				}
				if c.Severity.Level < 1 || c.Severity.Level > 6 {
					t.Fatalf("severity %d out of range", c.Severity.Level)
				}
			}
		}
	})
}

func TestState_RoundTrip(t *testing.T) {
	tr := weather.NewTracker(locs(), dice.NewLoggedRoller(dice.NewSeededSource(7), nil), nil)
	st := tr.State()

	other := weather.NewTracker(locs(), dice.NewLoggedRoller(dice.NewSeededSource(99), nil), nil)
	require.NoError(t, other.Restore(st))
	assert.Equal(t, st, other.State())

	assert.Error(t, other.Restore(map[string]weather.SiteState{"ghost": {Kind: weather.DataStorm, Severity: 1, Duration: 2}}))
	assert.Error(t, other.Restore(map[string]weather.SiteState{"lair": {Kind: "hail", Severity: 1, Duration: 2}}))
}
