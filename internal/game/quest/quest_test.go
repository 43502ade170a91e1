package quest_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/cloudranger/internal/game/inventory"
	"github.com/cory-johannsen/cloudranger/internal/game/quest"
)

type fakeRanger struct {
	skills    map[string]int
	rep       map[string]int
	artifacts map[string]bool
	clues     map[string]bool
	active    []string
	completed []string
	credits   float64
	full      bool
}

func newRanger() *fakeRanger {
	return &fakeRanger{
		skills:    map[string]int{"security": 1, "investigation": 1},
		rep:       map[string]int{"CorpSec": 50},
		artifacts: map[string]bool{},
		clues:     map[string]bool{},
	}
}

func (r *fakeRanger) Skill(name string) int                { return r.skills[name] }
func (r *fakeRanger) Reputation(f string) int              { return r.rep[f] }
func (r *fakeRanger) HasArtifact(id string) bool           { return r.artifacts[id] }
func (r *fakeRanger) HasClue(id string) bool               { return r.clues[id] }
func (r *fakeRanger) IsActive(id string) bool              { return has(r.active, id) }
func (r *fakeRanger) IsCompleted(id string) bool           { return has(r.completed, id) }
func (r *fakeRanger) ActiveQuests() []string               { return append([]string(nil), r.active...) }
func (r *fakeRanger) AddCredits(a float64)                 { r.credits += a }
func (r *fakeRanger) IncreaseSkill(s string, a int)        { r.skills[s] = min(10, max(1, r.skills[s]+a)) }
func (r *fakeRanger) AddClue(id, _ string)                 { r.clues[id] = true }
func (r *fakeRanger) AddConsumable(string, int)            {}
func (r *fakeRanger) Heal(int)                             {}
func (r *fakeRanger) TakeDamage(int, string)               {}
func (r *fakeRanger) RestoreEnergy(int)                    {}
func (r *fakeRanger) DrainEnergy(int)                      {}
func (r *fakeRanger) ApplyStatus(string) error             { return nil }
func (r *fakeRanger) AddTime(int)                          {}
func (r *fakeRanger) GrantBlueprint(string) error          { return nil }
func (r *fakeRanger) BoostSkills(int, int)                 {}
func (r *fakeRanger) EnhanceServiceSecurity(int) error     { return nil }
func (r *fakeRanger) OptimizeServicePerformance(int) error { return nil }
func (r *fakeRanger) RepairService(int) error              { return nil }

func (r *fakeRanger) AdjustReputation(f string, a int) error {
	r.rep[f] = min(100, max(0, r.rep[f]+a))
	return nil
}

func (r *fakeRanger) GrantArtifact(id string) error {
	if r.full {
		return fmt.Errorf("adding %q: %w", id, inventory.ErrInventoryFull)
	}
	r.artifacts[id] = true
	return nil
}

func (r *fakeRanger) StartQuest(id string) bool {
	if r.IsActive(id) || r.IsCompleted(id) {
		return false
	}
	r.active = append(r.active, id)
	return true
}

func (r *fakeRanger) CompleteQuest(id string) bool {
	if r.IsCompleted(id) {
		return false
	}
	for i, q := range r.active {
		if q == id {
			r.active = append(r.active[:i], r.active[i+1:]...)
			break
		}
	}
	r.completed = append(r.completed, id)
	return true
}

func has(xs []string, x string) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}

const testQuests = `
quests:
  - id: tutorial
    title: Cloud Ranger Training
    location: cloud_city
    difficulty: 1
    objectives:
      - id: tutorial_1
        description: Visit Cloud City
        trigger: {kind: visit, location: cloud_city}
      - id: tutorial_2
        description: Acquire your first artifact
        trigger: {kind: own_artifact}
      - id: tutorial_3
        description: Deploy your first service
        trigger: {kind: deploy_service}
    rewards:
      - kind: credits
        amount: 50
      - kind: faction
        faction: CorpSec
        amount: 5
  - id: mysterious_outage
    title: The Mysterious Outage
    prereq_quests: [tutorial]
    objectives:
      - id: outage_1
        description: Visit Database District
        trigger: {kind: visit, location: database_district}
      - id: outage_2
        description: Find evidence
        trigger: {kind: has_clue, clue: rds_logs}
      - id: outage_3
        description: Report to Security Perimeter
        trigger: {kind: at_location_after, location: security_perimeter, after: outage_2}
    rewards:
      - kind: artifact
        id: iam_auditor
      - kind: skill
        skill: security
        amount: 1
  - id: shadow_admin
    title: Trail of the Shadow Admin
    prereq_quests: [mysterious_outage]
    min_skill_level: {security: 3}
    min_faction_rep: {CorpSec: 40}
    objectives:
      - id: shadow_1
        description: Collect Shadow Admin clues
        trigger: {kind: clue_count, count: 3}
`

func newLedger(t *testing.T) *quest.Ledger {
	t.Helper()
	defs, err := quest.Load(strings.NewReader(testQuests))
	require.NoError(t, err)
	l, err := quest.NewLedger(defs, nil)
	require.NoError(t, err)
	return l
}

func TestLoad_RejectsBadTriggers(t *testing.T) {
	_, err := quest.Load(strings.NewReader(`
quests:
  - id: q
    title: Q
    objectives:
      - id: a
        trigger: {kind: at_location_after, location: x, after: b}
      - id: b
        trigger: {kind: teleport}
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not an earlier objective")
	assert.Contains(t, err.Error(), "unknown trigger kind")
}

func TestNewLedger_UnknownPrereq(t *testing.T) {
	_, err := quest.NewLedger([]*quest.Def{{ID: "a", Title: "A", PrereqQuests: []string{"ghost"}}}, nil)
	assert.Error(t, err)
}

func TestIsAvailable(t *testing.T) {
	l := newLedger(t)
	r := newRanger()
	assert.True(t, l.IsAvailable("tutorial", r))
	assert.False(t, l.IsAvailable("mysterious_outage", r))
	assert.False(t, l.IsAvailable("ghost", r))

	r.completed = []string{"tutorial", "mysterious_outage"}
	assert.False(t, l.IsAvailable("shadow_admin", r), "security too low")
	r.skills["security"] = 3
	assert.True(t, l.IsAvailable("shadow_admin", r))
	r.rep["CorpSec"] = 10
	assert.False(t, l.IsAvailable("shadow_admin", r))
}

func TestStart_Gates(t *testing.T) {
	l := newLedger(t)
	r := newRanger()
	assert.True(t, errors.Is(l.Start("tutorial", r, "elsewhere"), quest.ErrWrongLocation))
	assert.True(t, errors.Is(l.Start("mysterious_outage", r, "cloud_city"), quest.ErrUnavailable))
	assert.True(t, errors.Is(l.Start("ghost", r, "cloud_city"), quest.ErrQuestNotFound))
	require.NoError(t, l.Start("tutorial", r, "cloud_city"))
	assert.True(t, errors.Is(l.Start("tutorial", r, "cloud_city"), quest.ErrAlreadyTaken))
	assert.Equal(t, []string{"tutorial"}, r.active)
}

func TestAvailable_FiltersByLocationAndState(t *testing.T) {
	l := newLedger(t)
	r := newRanger()
	assert.Len(t, l.Available(r, "cloud_city"), 1)
	assert.Empty(t, l.Available(r, "database_district"))
	r.active = []string{"tutorial"}
	assert.Empty(t, l.Available(r, "cloud_city"))
}

func TestCompleteObjective_UnknownIsNoop(t *testing.T) {
	l := newLedger(t)
	assert.False(t, l.CompleteObjective("tutorial", "tutorial_9"))
	assert.False(t, l.CompleteObjective("ghost", "x"))
	assert.True(t, l.CompleteObjective("tutorial", "tutorial_1"))
	assert.False(t, l.CheckCompletion("tutorial"))
}

func TestComplete_IdempotentRewards(t *testing.T) {
	l := newLedger(t)
	r := newRanger()
	require.NoError(t, l.Start("tutorial", r, "cloud_city"))
	assert.True(t, l.Complete("tutorial", r))
	assert.False(t, l.Complete("tutorial", r))
	assert.Equal(t, 50.0, r.credits)
	assert.Equal(t, 55, r.rep["CorpSec"])
	assert.Equal(t, []string{"tutorial"}, r.completed)
	assert.Empty(t, r.active)
}

func TestComplete_FullInventoryDropsArtifact(t *testing.T) {
	l := newLedger(t)
	r := newRanger()
	r.full = true
	r.completed = []string{"tutorial"}
	r.active = []string{"mysterious_outage"}
	assert.True(t, l.Complete("mysterious_outage", r))
	assert.False(t, r.artifacts["iam_auditor"])
	assert.Equal(t, 2, r.skills["security"], "other rewards still apply")
}

func TestEvaluate_TriggersInOrder(t *testing.T) {
	l := newLedger(t)
	r := newRanger()
	require.NoError(t, l.Start("tutorial", r, "cloud_city"))

	ups := l.Evaluate(r, quest.Facts{Location: "cloud_city"})
	require.Len(t, ups, 1)
	assert.Equal(t, "tutorial_1", ups[0].ObjectiveID)

	ups = l.Evaluate(r, quest.Facts{Location: "compute_cluster", ArtifactCount: 1, Services: map[string]int{"ec2": 1}})
	require.Len(t, ups, 3)
	assert.Equal(t, "tutorial_2", ups[0].ObjectiveID)
	assert.Equal(t, "tutorial_3", ups[1].ObjectiveID)
	assert.Equal(t, "", ups[2].ObjectiveID)
	assert.True(t, r.IsCompleted("tutorial"))
	assert.Empty(t, l.Evaluate(r, quest.Facts{Location: "cloud_city"}))
}

func TestEvaluate_AtLocationAfterNeedsPriorObjective(t *testing.T) {
	l := newLedger(t)
	r := newRanger()
	r.completed = []string{"tutorial"}
	require.NoError(t, l.Start("mysterious_outage", r, "anywhere"))

	ups := l.Evaluate(r, quest.Facts{Location: "security_perimeter"})
	assert.Empty(t, ups)

	r.clues["rds_logs"] = true
	ups = l.Evaluate(r, quest.Facts{Location: "security_perimeter"})
	require.Len(t, ups, 2)
	assert.Equal(t, "outage_2", ups[0].ObjectiveID)
	assert.Equal(t, "outage_3", ups[1].ObjectiveID)
	assert.False(t, r.IsCompleted("mysterious_outage"))

	ups = l.Evaluate(r, quest.Facts{Location: "database_district"})
	require.Len(t, ups, 2)
	assert.True(t, r.IsCompleted("mysterious_outage"))
}

func TestState_RoundTrip(t *testing.T) {
	l := newLedger(t)
	l.CompleteObjective("tutorial", "tutorial_1")
	l.CompleteObjective("mysterious_outage", "outage_2")
	st := l.State()

	fresh := newLedger(t)
	require.NoError(t, fresh.Restore(st))
	assert.Equal(t, st, fresh.State())
	assert.Error(t, fresh.Restore(map[string][]string{"tutorial": {"nope"}}))
	assert.Equal(t, st, fresh.State(), "failed restore leaves progress")
}

func TestPropertyCheckCompletionIsConjunction(t *testing.T) {
	defs, err := quest.Load(strings.NewReader(testQuests))
	require.NoError(t, err)
	rapid.Check(t, func(rt *rapid.T) {
		l, err := quest.NewLedger(defs, nil)
		require.NoError(rt, err)
		objs := l.Objectives("tutorial")
		done := rapid.SliceOfN(rapid.Bool(), len(objs), len(objs)).Draw(rt, "done")
		all := true
		for i, d := range done {
			if d {
				l.CompleteObjective("tutorial", objs[i].ID)
			}
			all = all && d
		}
		if l.CheckCompletion("tutorial") != all {
			rt.Fatalf("CheckCompletion=%v, want %v for %v", l.CheckCompletion("tutorial"), all, done)
		}
	})
}
