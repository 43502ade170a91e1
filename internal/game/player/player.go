// Package player holds the Cloud Ranger aggregate: skills, reputation,
// vitals, quests, clues and the inventory. Every mutator enforces its bounds.
package player

import (
	"errors"
	"fmt"
	"sort"

	"github.com/cory-johannsen/cloudranger/internal/game/condition"
	"github.com/cory-johannsen/cloudranger/internal/game/inventory"
)

// Skill names.
const (
	SkillHacking       = "hacking"
	SkillNetworking    = "networking"
	SkillSecurity      = "security"
	SkillCloud         = "cloud"
	SkillDatabase      = "database"
	SkillInvestigation = "investigation"
	SkillServerless    = "serverless"
)

// Faction names.
const (
	FactionCorpSec              = "CorpSec"
	FactionDataBrokers          = "DataBrokers"
	FactionServerlessCollective = "ServerlessCollective"
	FactionShadowNetwork        = "ShadowNetwork"
)

// Bounds.
const (
	MinSkill       = 1
	MaxSkill       = 10
	MinReputation  = 0
	MaxReputation  = 100
	DefaultVital   = 100
	StartBandwidth = 100
)

// Skills lists every skill in display order.
var Skills = []string{SkillHacking, SkillNetworking, SkillSecurity, SkillCloud, SkillDatabase, SkillInvestigation, SkillServerless}

// Factions lists every faction in display order.
var Factions = []string{FactionCorpSec, FactionDataBrokers, FactionServerlessCollective, FactionShadowNetwork}

var startingReputation = map[string]int{
	FactionCorpSec:              50,
	FactionDataBrokers:          50,
	FactionServerlessCollective: 50,
	FactionShadowNetwork:        10,
}

var (
	// ErrInsufficientEnergy is returned when an action costs more energy than remains.
	ErrInsufficientEnergy = errors.New("insufficient energy")
	// ErrUnknownFaction is returned for a faction name that does not exist.
	ErrUnknownFaction = errors.New("unknown faction")
)

// Boost temporarily raises every skill.
type Boost struct {
	Amount    int `yaml:"amount"`
	Remaining int `yaml:"remaining"`
}

// Player is the aggregate root for one playthrough.
//
// Invariant: every skill in [1, 10]; every reputation in [0, 100];
// 0 <= Health <= MaxHealth; 0 <= Energy <= MaxEnergy.
type Player struct {
	Name           string
	Specialization string
	LocationID     string
	Inventory      *inventory.Inventory
	Statuses       *condition.ActiveSet

	Health    int
	MaxHealth int
	Energy    int
	MaxEnergy int
	TimeLeft  int
	Bandwidth int

	skills       map[string]int
	reputation   map[string]int
	clues        map[string]string
	active       []string
	completed    []string
	boosts       []Boost
	achievements map[string]string
	log          []string
}

// New creates a player for the given preset and specialization at location start.
//
// Postcondition: skills are 1 plus specialization bonuses; credits and TimeLeft come from diff.
func New(name string, spec Specialization, diff Difficulty, start string) *Player {
	p := &Player{
		Name:           name,
		Specialization: spec.ID,
		LocationID:     start,
		Inventory:      inventory.New(diff.Credits),
		Statuses:       condition.NewActiveSet(),
		Health:         DefaultVital,
		MaxHealth:      DefaultVital,
		Energy:         DefaultVital,
		MaxEnergy:      DefaultVital,
		TimeLeft:       diff.TimeLeft,
		Bandwidth:      StartBandwidth,
		skills:         make(map[string]int, len(Skills)),
		reputation:     make(map[string]int, len(Factions)),
		clues:          make(map[string]string),
		achievements:   make(map[string]string),
	}
	for _, s := range Skills {
		p.skills[s] = clamp(MinSkill+spec.Bonuses[s], MinSkill, MaxSkill)
	}
	for f, r := range startingReputation {
		p.reputation[f] = r
	}
	return p
}

// Skill returns the effective level of name including temporary boosts, kept within
// [MinSkill, MaxSkill].
func (p *Player) Skill(name string) int {
	base, ok := p.skills[name]
	if !ok {
		return 0
	}
	return clamp(base+p.boostTotal(), MinSkill, MaxSkill)
}

// BaseSkill returns the level of name without boosts.
func (p *Player) BaseSkill(name string) int { return p.skills[name] }

// MaxSkill returns the highest effective skill level.
func (p *Player) MaxSkill() int {
	best := 0
	for _, s := range Skills {
		best = max(best, p.Skill(s))
	}
	return best
}

// IncreaseSkill adds amount (which may be negative) to name. Unknown skills are ignored.
//
// Postcondition: the skill stays in [1, 10].
func (p *Player) IncreaseSkill(name string, amount int) {
	cur, ok := p.skills[name]
	if !ok {
		return
	}
	p.skills[name] = clamp(cur+amount, MinSkill, MaxSkill)
}

// SetSkill sets name directly, clamped to [1, 10].
func (p *Player) SetSkill(name string, level int) {
	if _, ok := p.skills[name]; ok {
		p.skills[name] = clamp(level, MinSkill, MaxSkill)
	}
}

// Reputation returns the standing with faction, or 0 for an unknown faction.
func (p *Player) Reputation(faction string) int { return p.reputation[faction] }

// AdjustReputation adds amount to faction.
//
// Postcondition: reputation stays in [0, 100]; returns ErrUnknownFaction for unknown names.
func (p *Player) AdjustReputation(faction string, amount int) error {
	cur, ok := p.reputation[faction]
	if !ok {
		return fmt.Errorf("%q: %w", faction, ErrUnknownFaction)
	}
	p.reputation[faction] = clamp(cur+amount, MinReputation, MaxReputation)
	return nil
}

// HasArtifact reports whether any owned artifact comes from template id.
func (p *Player) HasArtifact(id string) bool { return p.Inventory.HasArtifact(id) }

// Credits returns the inventory balance.
func (p *Player) Credits() float64 { return p.Inventory.Credits() }

// AddCredits adds amount to the balance; see inventory.Inventory.AddCredits.
func (p *Player) AddCredits(amount float64) { p.Inventory.AddCredits(amount) }

// AddConsumable adds count units of id.
func (p *Player) AddConsumable(id string, count int) { p.Inventory.AddConsumable(id, count) }

// AddClue records a clue. A clue already held keeps its first text.
func (p *Player) AddClue(id, text string) {
	if _, ok := p.clues[id]; !ok {
		p.clues[id] = text
	}
}

// HasClue reports whether the clue has been found.
func (p *Player) HasClue(id string) bool {
	_, ok := p.clues[id]
	return ok
}

// ClueCount returns how many clues have been found.
func (p *Player) ClueCount() int { return len(p.clues) }

// Clues returns clue ids sorted.
func (p *Player) Clues() []string { return sortedKeys(p.clues) }

// ClueText returns the description recorded with a clue.
func (p *Player) ClueText(id string) string { return p.clues[id] }

// Heal restores up to amount health.
func (p *Player) Heal(amount int) {
	p.Health = clamp(p.Health+max(0, amount), 0, p.MaxHealth)
}

// TakeDamage removes amount health, floored at zero.
func (p *Player) TakeDamage(amount int, _ string) {
	p.Health = clamp(p.Health-max(0, amount), 0, p.MaxHealth)
}

// Alive reports whether health is above zero.
func (p *Player) Alive() bool { return p.Health > 0 }

// RestoreEnergy restores up to amount energy.
func (p *Player) RestoreEnergy(amount int) {
	p.Energy = clamp(p.Energy+max(0, amount), 0, p.MaxEnergy)
}

// DrainEnergy removes up to amount energy, floored at zero.
func (p *Player) DrainEnergy(amount int) {
	p.Energy = clamp(p.Energy-max(0, amount), 0, p.MaxEnergy)
}

// UseEnergy spends amount energy.
//
// Postcondition: On error Energy is unchanged.
func (p *Player) UseEnergy(amount int) error {
	if amount > p.Energy {
		return fmt.Errorf("need %d, have %d: %w", amount, p.Energy, ErrInsufficientEnergy)
	}
	p.Energy -= amount
	return nil
}

// AddTime extends (or shortens, when negative) the deadline.
func (p *Player) AddTime(days int) {
	p.TimeLeft = max(0, p.TimeLeft+days)
}

// BoostSkills shifts every skill by amount for days turns. Negative amounts are debuffs.
func (p *Player) BoostSkills(amount, days int) {
	if amount == 0 || days <= 0 {
		return
	}
	p.boosts = append(p.boosts, Boost{Amount: amount, Remaining: days})
}

// TickBoosts decrements boost durations and returns how many expired.
func (p *Player) TickBoosts() int {
	kept := p.boosts[:0]
	expired := 0
	for _, b := range p.boosts {
		b.Remaining--
		if b.Remaining > 0 {
			kept = append(kept, b)
		} else {
			expired++
		}
	}
	p.boosts = kept
	return expired
}

// Boosts returns the active boosts.
func (p *Player) Boosts() []Boost { return append([]Boost(nil), p.boosts...) }

func (p *Player) boostTotal() int {
	total := 0
	for _, b := range p.boosts {
		total += b.Amount
	}
	return total
}

// AddStatus applies a player status definition.
func (p *Player) AddStatus(def *condition.StatusDef) error {
	if def.Target != condition.TargetPlayer {
		return fmt.Errorf("status %q does not target the player", def.ID)
	}
	return p.Statuses.Apply(def)
}

// TickStatuses applies each status's per-turn effect and expires finished ones.
//
// Postcondition: vitals stay within bounds.
func (p *Player) TickStatuses() (ticks []condition.Tick, expired []string) {
	ticks, expired = p.Statuses.Tick()
	for _, t := range ticks {
		switch t.Kind {
		case condition.TickDamage:
			p.TakeDamage(t.Magnitude, t.Name)
		case condition.TickHeal:
			p.Heal(t.Magnitude)
		case condition.TickDrainEnergy:
			p.DrainEnergy(t.Magnitude)
		case condition.TickRestoreEnergy:
			p.RestoreEnergy(t.Magnitude)
		}
	}
	return ticks, expired
}

// StartQuest marks id active and reports whether it was newly started.
func (p *Player) StartQuest(id string) bool {
	if p.IsActive(id) || p.IsCompleted(id) {
		return false
	}
	p.active = append(p.active, id)
	return true
}

// CompleteQuest moves id from active to completed exactly once.
//
// Postcondition: a completed quest never becomes active again.
func (p *Player) CompleteQuest(id string) bool {
	if p.IsCompleted(id) {
		return false
	}
	for i, q := range p.active {
		if q == id {
			p.active = append(p.active[:i], p.active[i+1:]...)
			break
		}
	}
	p.completed = append(p.completed, id)
	return true
}

// IsActive reports whether id is an active quest.
func (p *Player) IsActive(id string) bool { return contains(p.active, id) }

// IsCompleted reports whether id has been completed.
func (p *Player) IsCompleted(id string) bool { return contains(p.completed, id) }

// ActiveQuests returns active quest ids in start order.
func (p *Player) ActiveQuests() []string { return append([]string(nil), p.active...) }

// CompletedQuests returns completed quest ids in completion order.
func (p *Player) CompletedQuests() []string { return append([]string(nil), p.completed...) }

// Award records an achievement and reports whether it was new.
func (p *Player) Award(id, name string) bool {
	if _, ok := p.achievements[id]; ok {
		return false
	}
	p.achievements[id] = name
	return true
}

// Achievements returns achievement ids sorted.
func (p *Player) Achievements() []string { return sortedKeys(p.achievements) }

// LogEvent appends an entry to the journal.
func (p *Player) LogEvent(day int, text string) {
	p.log = append(p.log, fmt.Sprintf("[Day %d] %s", day, text))
}

// Journal returns the journal entries in order.
func (p *Player) Journal() []string { return append([]string(nil), p.log...) }

func clamp(v, lo, hi int) int {
	return max(lo, min(hi, v))
}

func contains(xs []string, x string) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}

func sortedKeys(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
