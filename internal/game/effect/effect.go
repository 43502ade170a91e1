// Package effect defines the closed set of state changes that events, quest
// rewards, consumables and discoveries can apply, and the requirement
// predicates that gate them.
package effect

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Kind is the tag of an Effect variant.
type Kind string

const (
	KindCredits            Kind = "credits"
	KindSkill              Kind = "skill"
	KindFaction            Kind = "faction"
	KindArtifact           Kind = "artifact"
	KindClue               Kind = "clue"
	KindConsumable         Kind = "consumable"
	KindHealth             Kind = "health"
	KindEnergy             Kind = "energy"
	KindStatus             Kind = "status"
	KindTime               Kind = "time"
	KindService            Kind = "service"
	KindSkillBoost         Kind = "skill_boost"
	KindServiceSecurity    Kind = "service_security"
	KindServicePerformance Kind = "service_performance"
	KindServiceRepair      Kind = "service_repair"
)

// Effect is one typed state change. The set of implementations is closed.
type Effect interface {
	Kind() Kind
	sealed()
}

// CreditsDelta adds (or removes, when negative) credits.
type CreditsDelta struct{ Amount float64 }

// SkillDelta raises or lowers one skill.
type SkillDelta struct {
	Skill  string
	Amount int
}

// FactionDelta shifts reputation with one faction.
type FactionDelta struct {
	Faction string
	Amount  int
}

// ArtifactGrant instantiates an artifact template into the inventory.
type ArtifactGrant struct{ ArtifactID string }

// ClueGrant records a clue.
type ClueGrant struct {
	ClueID string
	Text   string
}

// ConsumableGrant adds consumables.
type ConsumableGrant struct {
	ConsumableID string
	Count        int
}

// HealthDelta heals (positive) or damages (negative).
type HealthDelta struct{ Amount int }

// EnergyDelta restores (positive) or drains (negative) energy.
type EnergyDelta struct{ Amount int }

// StatusEffectGrant applies a status definition.
type StatusEffectGrant struct{ StatusID string }

// TimeDelta extends (positive) or shortens (negative) the deadline.
type TimeDelta struct{ Days int }

// ServiceGrant adds a service blueprint.
type ServiceGrant struct{ ServiceID string }

// SkillBoost temporarily raises every skill.
type SkillBoost struct {
	Amount int
	Days   int
}

// ServiceSecurity raises the security level of the targeted service.
type ServiceSecurity struct{ Amount int }

// ServicePerformance raises the performance of the targeted service.
type ServicePerformance struct{ Amount int }

// ServiceRepair restores health to the targeted service.
type ServiceRepair struct{ Amount int }

func (CreditsDelta) Kind() Kind       { return KindCredits }
func (SkillDelta) Kind() Kind         { return KindSkill }
func (FactionDelta) Kind() Kind       { return KindFaction }
func (ArtifactGrant) Kind() Kind      { return KindArtifact }
func (ClueGrant) Kind() Kind          { return KindClue }
func (ConsumableGrant) Kind() Kind    { return KindConsumable }
func (HealthDelta) Kind() Kind        { return KindHealth }
func (EnergyDelta) Kind() Kind        { return KindEnergy }
func (StatusEffectGrant) Kind() Kind  { return KindStatus }
func (TimeDelta) Kind() Kind          { return KindTime }
func (ServiceGrant) Kind() Kind       { return KindService }
func (SkillBoost) Kind() Kind         { return KindSkillBoost }
func (ServiceSecurity) Kind() Kind    { return KindServiceSecurity }
func (ServicePerformance) Kind() Kind { return KindServicePerformance }
func (ServiceRepair) Kind() Kind      { return KindServiceRepair }

func (CreditsDelta) sealed()       {}
func (SkillDelta) sealed()         {}
func (FactionDelta) sealed()       {}
func (ArtifactGrant) sealed()      {}
func (ClueGrant) sealed()          {}
func (ConsumableGrant) sealed()    {}
func (HealthDelta) sealed()        {}
func (EnergyDelta) sealed()        {}
func (StatusEffectGrant) sealed()  {}
func (TimeDelta) sealed()          {}
func (ServiceGrant) sealed()       {}
func (SkillBoost) sealed()         {}
func (ServiceSecurity) sealed()    {}
func (ServicePerformance) sealed() {}
func (ServiceRepair) sealed()      {}

// List is an ordered list of effects decoded from YAML entries such as
// `{kind: credits, amount: 25}`.
type List []Effect

type rawEffect struct {
	Kind    Kind    `yaml:"kind"`
	Amount  float64 `yaml:"amount"`
	Skill   string  `yaml:"skill"`
	Faction string  `yaml:"faction"`
	ID      string  `yaml:"id"`
	Text    string  `yaml:"text"`
	Count   int     `yaml:"count"`
	Days    int     `yaml:"days"`
}

// UnmarshalYAML decodes a sequence of tagged effect mappings.
//
// Postcondition: Returns an error naming the entry index on any unknown kind
// or missing field.
func (l *List) UnmarshalYAML(node *yaml.Node) error {
	var raws []rawEffect
	if err := node.Decode(&raws); err != nil {
		return err
	}
	out := make(List, 0, len(raws))
	var errs []string
	for i, r := range raws {
		e, err := r.toEffect()
		if err != nil {
			errs = append(errs, fmt.Sprintf("effect %d: %v", i, err))
			continue
		}
		out = append(out, e)
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	*l = out
	return nil
}

func (r rawEffect) toEffect() (Effect, error) {
	amount := int(r.Amount)
	switch r.Kind {
	case KindCredits:
		return CreditsDelta{Amount: r.Amount}, nil
	case KindSkill:
		if r.Skill == "" {
			return nil, fmt.Errorf("skill effect requires skill")
		}
		return SkillDelta{Skill: r.Skill, Amount: amount}, nil
	case KindFaction:
		if r.Faction == "" {
			return nil, fmt.Errorf("faction effect requires faction")
		}
		return FactionDelta{Faction: r.Faction, Amount: amount}, nil
	case KindArtifact:
		if r.ID == "" {
			return nil, fmt.Errorf("artifact effect requires id")
		}
		return ArtifactGrant{ArtifactID: r.ID}, nil
	case KindClue:
		if r.ID == "" {
			return nil, fmt.Errorf("clue effect requires id")
		}
		return ClueGrant{ClueID: r.ID, Text: r.Text}, nil
	case KindConsumable:
		if r.ID == "" {
			return nil, fmt.Errorf("consumable effect requires id")
		}
		count := r.Count
		if count == 0 {
			count = 1
		}
		return ConsumableGrant{ConsumableID: r.ID, Count: count}, nil
	case KindHealth:
		return HealthDelta{Amount: amount}, nil
	case KindEnergy:
		return EnergyDelta{Amount: amount}, nil
	case KindStatus:
		if r.ID == "" {
			return nil, fmt.Errorf("status effect requires id")
		}
		return StatusEffectGrant{StatusID: r.ID}, nil
	case KindTime:
		return TimeDelta{Days: amount}, nil
	case KindService:
		if r.ID == "" {
			return nil, fmt.Errorf("service effect requires id")
		}
		return ServiceGrant{ServiceID: r.ID}, nil
	case KindSkillBoost:
		if r.Days < 1 {
			return nil, fmt.Errorf("skill_boost effect requires days >= 1")
		}
		return SkillBoost{Amount: amount, Days: r.Days}, nil
	case KindServiceSecurity:
		return ServiceSecurity{Amount: amount}, nil
	case KindServicePerformance:
		return ServicePerformance{Amount: amount}, nil
	case KindServiceRepair:
		return ServiceRepair{Amount: amount}, nil
	default:
		return nil, fmt.Errorf("unknown effect kind %q", r.Kind)
	}
}

// NeedsService reports whether any effect in l acts on a chosen service.
func (l List) NeedsService() bool {
	for _, e := range l {
		switch e.(type) {
		case ServiceSecurity, ServicePerformance, ServiceRepair:
			return true
		}
	}
	return false
}

// References collects every catalog id the list points at, keyed by kind.
// Only artifact, consumable, status and service kinds carry references.
func (l List) References() map[Kind][]string {
	refs := make(map[Kind][]string)
	for _, e := range l {
		switch v := e.(type) {
		case ArtifactGrant:
			refs[KindArtifact] = append(refs[KindArtifact], v.ArtifactID)
		case ConsumableGrant:
			refs[KindConsumable] = append(refs[KindConsumable], v.ConsumableID)
		case StatusEffectGrant:
			refs[KindStatus] = append(refs[KindStatus], v.StatusID)
		case ServiceGrant:
			refs[KindService] = append(refs[KindService], v.ServiceID)
		}
	}
	return refs
}
