package effect

import (
	"errors"
	"fmt"
)

// Target is the state an effect list is applied to. The engine implements it
// over the player, the content catalogs and an optional targeted service.
type Target interface {
	AddCredits(amount float64)
	IncreaseSkill(skill string, amount int)
	AdjustReputation(faction string, amount int) error
	GrantArtifact(artifactID string) error
	AddClue(clueID, text string)
	AddConsumable(consumableID string, count int)
	Heal(amount int)
	TakeDamage(amount int, source string)
	RestoreEnergy(amount int)
	DrainEnergy(amount int)
	ApplyStatus(statusID string) error
	AddTime(days int)
	GrantBlueprint(serviceID string) error
	BoostSkills(amount, days int)
	EnhanceServiceSecurity(amount int) error
	OptimizeServicePerformance(amount int) error
	RepairService(amount int) error
}

// Apply applies every effect in order. A failing effect does not stop the
// rest; all failures are joined into the returned error.
//
// Postcondition: Every effect that could be applied has been applied.
func Apply(effects List, t Target, source string) error {
	var errs []error
	for _, e := range effects {
		if err := applyOne(e, t, source); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", e.Kind(), err))
		}
	}
	return errors.Join(errs...)
}

func applyOne(e Effect, t Target, source string) error {
	switch v := e.(type) {
	case CreditsDelta:
		t.AddCredits(v.Amount)
	case SkillDelta:
		t.IncreaseSkill(v.Skill, v.Amount)
	case FactionDelta:
		return t.AdjustReputation(v.Faction, v.Amount)
	case ArtifactGrant:
		return t.GrantArtifact(v.ArtifactID)
	case ClueGrant:
		t.AddClue(v.ClueID, v.Text)
	case ConsumableGrant:
		t.AddConsumable(v.ConsumableID, v.Count)
	case HealthDelta:
		if v.Amount >= 0 {
			t.Heal(v.Amount)
		} else {
			t.TakeDamage(-v.Amount, source)
		}
	case EnergyDelta:
		if v.Amount >= 0 {
			t.RestoreEnergy(v.Amount)
		} else {
			t.DrainEnergy(-v.Amount)
		}
	case StatusEffectGrant:
		return t.ApplyStatus(v.StatusID)
	case TimeDelta:
		t.AddTime(v.Days)
	case ServiceGrant:
		return t.GrantBlueprint(v.ServiceID)
	case SkillBoost:
		t.BoostSkills(v.Amount, v.Days)
	case ServiceSecurity:
		return t.EnhanceServiceSecurity(v.Amount)
	case ServicePerformance:
		return t.OptimizeServicePerformance(v.Amount)
	case ServiceRepair:
		return t.RepairService(v.Amount)
	default:
		return fmt.Errorf("unhandled effect type %T", e)
	}
	return nil
}
