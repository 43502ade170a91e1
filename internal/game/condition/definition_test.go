package condition_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/cloudranger/internal/game/condition"
)

const statusesYAML = `
statuses:
  - id: digital_infection
    name: Digital Infection
    description: Malicious code eats away at your systems.
    target: player
    duration: 3
    per_turn: {kind: damage, magnitude: 5}
  - id: stealth
    name: Stealth
    target: player
    duration: 3
    flags: [hazard_immunity]
  - id: pipeline_fault
    name: Pipeline Fault
    target: service
    duration: 2
    per_turn: {kind: service_damage, magnitude: 3}
`

func TestLoad_ParsesStatuses(t *testing.T) {
	reg, err := condition.Load(strings.NewReader(statusesYAML))
	require.NoError(t, err)

	def, ok := reg.Get("digital_infection")
	require.True(t, ok)
	assert.Equal(t, "Digital Infection", def.Name)
	assert.Equal(t, condition.TickDamage, def.PerTurn.Kind)
	assert.Equal(t, 5, def.PerTurn.Magnitude)

	stealth, ok := reg.Get("stealth")
	require.True(t, ok)
	assert.Equal(t, condition.TickNone, stealth.PerTurn.Kind)
	assert.True(t, stealth.HasFlag(condition.FlagHazardImmunity))

	assert.Len(t, reg.All(), 3)
	assert.Equal(t, "digital_infection", reg.All()[0].ID)
}

func TestLoad_RejectsUnknownField(t *testing.T) {
	_, err := condition.Load(strings.NewReader(`
statuses:
  - id: x
    name: X
    target: player
    duration: 1
    lua_on_tick: "player.damage(5)"
`))
	assert.Error(t, err)
}

func TestLoad_RejectsKindForWrongTarget(t *testing.T) {
	_, err := condition.Load(strings.NewReader(`
statuses:
  - id: x
    name: X
    target: player
    duration: 1
    per_turn: {kind: service_damage, magnitude: 1}
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not valid for player")
}

func TestRegistry_DuplicateID(t *testing.T) {
	reg := condition.NewRegistry()
	def := &condition.StatusDef{ID: "a", Name: "A", Target: condition.TargetPlayer, Duration: 1}
	require.NoError(t, reg.Register(def))
	assert.Error(t, reg.Register(&condition.StatusDef{ID: "a", Name: "A", Target: condition.TargetPlayer, Duration: 1}))
}

func TestStatusDef_ValidateAggregates(t *testing.T) {
	def := &condition.StatusDef{ID: "bad", Target: "npc", Duration: 0}
	err := def.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "name must not be empty")
	assert.Contains(t, err.Error(), "duration must be >= 1")
	assert.Contains(t, err.Error(), "target must be player or service")
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "statuses.yaml")
	require.NoError(t, os.WriteFile(path, []byte(statusesYAML), 0644))
	reg, err := condition.LoadFile(path)
	require.NoError(t, err)
	assert.Len(t, reg.All(), 3)
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := condition.LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
