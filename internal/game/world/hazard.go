package world

import (
	"github.com/cory-johannsen/cloudranger/internal/game/dice"
)

// SkillSource reports skill levels for hazard avoidance.
type SkillSource interface {
	Skill(name string) int
}

// HazardOutcome records one hazard that triggered during a check.
type HazardOutcome struct {
	Hazard  *Hazard
	Avoided bool
	Damage  int
}

// RollHazards checks each hazard at l in order. A triggered hazard may be
// dodged with its avoidance skill; the first one that lands ends the check.
//
// Postcondition: At most one outcome has Avoided == false, and it is last.
func RollHazards(l *Location, skills SkillSource, roller *dice.Roller) []HazardOutcome {
	var out []HazardOutcome
	for i := range l.Hazards {
		h := &l.Hazards[i]
		if !roller.Chance("hazard "+h.Name, h.Chance) {
			continue
		}
		if h.AvoidSkill != "" {
			if lvl := skills.Skill(h.AvoidSkill); lvl > 0 && roller.Chance("avoid "+h.Name, lvl*10) {
				out = append(out, HazardOutcome{Hazard: h, Avoided: true})
				continue
			}
		}
		out = append(out, HazardOutcome{Hazard: h, Damage: roller.InRange("hazard damage "+h.Name, h.Damage)})
		break
	}
	return out
}
