package event_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/cloudranger/internal/game/effect"
	"github.com/cory-johannsen/cloudranger/internal/game/event"
)

const testRest = `
rest:
  safe_chance: 20
  unsafe_chance: 40
  kinds:
    - id: discovery
      text: While resting, you notice something.
      outcomes:
        - text: A discarded data chip.
          credits: {min: 10, max: 30}
          clue_prefix: rest_clue
          clue_text: A used terminal.
    - id: encounter
      outcomes:
        - text: A patrol passes.
          effects:
            - {kind: faction, faction: CorpSec, amount: 2}
          random_skill: 1
`

func loadRest(t *testing.T) *event.RestTable {
	t.Helper()
	tbl, err := event.LoadRest(strings.NewReader(testRest))
	require.NoError(t, err)
	return tbl
}

func TestRestTable_RollUsesLocationChance(t *testing.T) {
	tbl := loadRest(t)
	// always{30} rolls 31: above the safe chance, within the unsafe one.
	mid := always{30}
	assert.Nil(t, tbl.Roll(true, rollerOf(mid), []string{"security"}))
	assert.NotNil(t, tbl.Roll(false, rollerOf(mid), []string{"security"}))
	assert.Nil(t, tbl.Roll(false, highRoller(), []string{"security"}))
}

func TestRestTable_RollFixesEffects(t *testing.T) {
	tbl := loadRest(t)
	in := tbl.Roll(true, lowRoller(), []string{"security", "hacking"})
	require.NotNil(t, in)
	assert.Equal(t, "discovery", in.Kind)
	assert.Equal(t, []string{"While resting, you notice something.", "A discarded data chip."}, in.Lines)
	assert.Equal(t, effect.List{
		effect.CreditsDelta{Amount: 10},
		effect.ClueGrant{ClueID: "rest_clue_1000", Text: "A used terminal."},
	}, in.Effects)

	r := newRanger()
	require.NoError(t, effect.Apply(in.Effects, r, "rest"))
	assert.Equal(t, 10.0, r.credits)
	assert.True(t, r.clues["rest_clue_1000"])
}

func TestRestTable_RandomSkill(t *testing.T) {
	tbl := loadRest(t)
	// Pick returns 1 for the kind and the skill, and 0 for the single outcome.
	in := tbl.Roll(true, rollerOf(always{1}), []string{"security", "hacking"})
	require.NotNil(t, in)
	assert.Equal(t, "encounter", in.Kind)
	assert.Equal(t, effect.List{
		effect.FactionDelta{Faction: "CorpSec", Amount: 2},
		effect.SkillDelta{Skill: "hacking", Amount: 1},
	}, in.Effects)
}

func TestRestTable_NilIsQuiet(t *testing.T) {
	var tbl *event.RestTable
	assert.Nil(t, tbl.Roll(false, lowRoller(), nil))
	assert.Empty(t, tbl.Effects())
}

func TestLoadRest_Invalid(t *testing.T) {
	_, err := event.LoadRest(strings.NewReader(`
rest:
  safe_chance: 120
  unsafe_chance: 40
  kinds:
    - id: dream
      outcomes:
        - energy: {min: 30, max: 10}
    - id: empty
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chance must be 0-100, got 120")
	assert.Contains(t, err.Error(), "range max 10 is below min 30")
	assert.Contains(t, err.Error(), `kind "empty" has no outcomes`)

	_, err = event.LoadRest(strings.NewReader("other: 1\n"))
	assert.Error(t, err)
	_, err = event.LoadRest(strings.NewReader(""))
	assert.ErrorContains(t, err, "rest table is missing")
}
