package engine

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/cloudranger/internal/game/condition"
	"github.com/cory-johannsen/cloudranger/internal/game/quest"
	"github.com/cory-johannsen/cloudranger/internal/game/service"
	"github.com/cory-johannsen/cloudranger/internal/game/world"
)

// advance spends one day and resolves the tick.
func (g *Game) advance() {
	g.day++
	g.tick()
}

// tick resolves one turn in a fixed order and ends with the terminal check.
//
// Postcondition: g.outcome.Over is set when any terminal condition holds.
func (g *Game) tick() {
	loc := g.Location()

	g.tickWeather(loc)
	g.tickServices(loc)
	g.player.Inventory.TickCooldowns()
	g.tickPlayer()
	g.events.TickCooldowns()

	if g.player.Alive() {
		g.player.Heal(recoverHealth)
		g.player.RestoreEnergy(recoverEnergy)
	}

	g.resolveEvent(loc)
	g.resolveHazards(loc)
	g.progressQuests()

	g.checkTerminal()
	g.logger.Info("turn resolved",
		zap.Int("day", g.day),
		zap.String("location", loc.ID),
		zap.Int("health", g.player.Health),
		zap.Int("energy", g.player.Energy),
		zap.Float64("credits", g.player.Credits()),
	)
}

func (g *Game) tickWeather(loc *world.Location) {
	for _, c := range g.weather.Tick() {
		if c.LocationID == loc.ID {
			g.notify(SeverityInfo, "The weather changes: %s (%s).", c.Condition.Type.Name, c.Condition.Severity.Name)
		}
	}
}

func (g *Game) tickServices(loc *world.Location) {
	inv := g.player.Inventory
	if len(inv.Deployed()) == 0 {
		return
	}
	frost := false
	if c, ok := g.weather.At(loc.ID); ok {
		frost = c.Type.Consequences.ServicePerformance < 0
	}
	rep := g.lifecycle.Tick(inv.Deployed(), service.TickContext{
		Multiplier:         g.diff.Multiplier,
		LocationDifficulty: loc.Difficulty,
		MemoryFrost:        frost,
		Day:                g.day,
	})

	for _, n := range rep.Notices {
		g.serviceNotice(n)
	}
	for _, id := range rep.Clues {
		g.target().AddClue(id, "Forensics on a breached service point toward the Shadow Admin.")
	}
	if net := rep.Net(); net >= 0 {
		inv.AddCredits(net)
	} else {
		inv.Charge(-net)
	}
	for _, s := range rep.Failed {
		inv.RemoveDeployed(s.InstanceID)
		g.journal(SeverityError, "%s has failed and was removed from your deployments.", s.Name)
	}
}

func (g *Game) serviceNotice(n service.Notice) {
	if n.Failed {
		return
	}
	switch n.Kind {
	case service.EventHealthHit:
		g.notify(SeverityWarning, "%s took %.0f damage.", n.Name, n.Amount)
	case service.EventPerformanceDrop:
		g.notify(SeverityWarning, "%s performance dropped by %.0f.", n.Name, n.Amount)
	case service.EventSecurityBreach:
		g.notify(SeverityError, "Security breach on %s! Security level dropped by %.0f.", n.Name, n.Amount)
	case service.EventCostSpike:
		g.notify(SeverityWarning, "Cost spike on %s: %.2f credits.", n.Name, n.Amount)
	default:
		g.notify(SeverityWarning, "%s suffers from %s (%.0f).", n.Name, n.Kind, n.Amount)
	}
}

func (g *Game) tickPlayer() {
	ticks, expired := g.player.TickStatuses()
	for _, t := range ticks {
		switch t.Kind {
		case condition.TickDamage:
			g.notify(SeverityWarning, "%s deals %d damage.", t.Name, t.Magnitude)
		case condition.TickDrainEnergy:
			g.notify(SeverityWarning, "%s drains %d energy.", t.Name, t.Magnitude)
		case condition.TickHeal:
			g.notify(SeveritySuccess, "%s restores %d health.", t.Name, t.Magnitude)
		case condition.TickRestoreEnergy:
			g.notify(SeveritySuccess, "%s restores %d energy.", t.Name, t.Magnitude)
		}
	}
	for _, id := range expired {
		name := id
		if def, ok := g.bundle.Statuses.Get(id); ok {
			name = def.Name
		}
		g.notify(SeverityInfo, "%s has worn off.", name)
	}
	if n := g.player.TickBoosts(); n > 0 {
		g.notify(SeverityInfo, "A skill boost has expired.")
	}
}

func (g *Game) resolveEvent(loc *world.Location) {
	t := g.target()
	e := g.events.Resolve(loc.Events, t)
	if e == nil {
		return
	}
	g.journal(SeverityInfo, "EVENT: %s. %s", e.Def.Name, e.Def.Description)
	if err := g.events.Trigger(e, t); err != nil {
		g.logger.Warn("event partially applied", zap.String("event", e.Def.ID), zap.Error(err))
	}
}

func (g *Game) resolveHazards(loc *world.Location) {
	if len(loc.Hazards) == 0 {
		return
	}
	if g.player.Statuses.HasFlag(condition.FlagHazardImmunity) {
		g.logger.Debug("hazards skipped: immune", zap.String("location", loc.ID))
		return
	}
	for _, o := range world.RollHazards(loc, g.player, g.roller) {
		if o.Avoided {
			g.notify(SeveritySuccess, "You skillfully avoided the %s.", o.Hazard.Name)
			continue
		}
		g.player.TakeDamage(o.Damage, o.Hazard.Name)
		g.journal(SeverityError, "HAZARD: %s! You take %d damage.", o.Hazard.Name, o.Damage)
		if o.Hazard.Status == "" {
			continue
		}
		if err := g.target().ApplyStatus(o.Hazard.Status); err != nil {
			g.logger.Debug("hazard status not applied", zap.String("status", o.Hazard.Status), zap.Error(err))
		}
	}
}

func (g *Game) progressQuests() {
	for _, u := range g.quests.Evaluate(g.target(), g.facts()) {
		if u.ObjectiveID == "" {
			g.journal(SeveritySuccess, "Quest completed: %s", u.Text)
			g.award(AchievementFirstQuest)
			continue
		}
		g.notify(SeveritySuccess, "Objective completed: %s", u.Text)
	}
}

func (g *Game) facts() quest.Facts {
	f := quest.Facts{
		Location:      g.player.LocationID,
		ArtifactCount: len(g.player.Inventory.Artifacts()),
		Services:      make(map[string]int),
		ClueCount:     g.player.ClueCount(),
	}
	for _, s := range g.player.Inventory.Online() {
		f.Services[s.DefID]++
	}
	return f
}

// checkTerminal applies the end conditions in priority order; the first match wins.
func (g *Game) checkTerminal() {
	if g.outcome.Over {
		return
	}
	p := g.player
	switch {
	case g.day >= p.TimeLeft:
		g.outcome = Outcome{Over: true, Reason: ReasonTimeExpired}
	case p.Health <= 0:
		g.outcome = Outcome{Over: true, Reason: ReasonInjured}
	case p.Credits() <= 0 && p.Inventory.IsEmpty():
		g.outcome = Outcome{Over: true, Reason: ReasonBankrupt}
	case p.IsCompleted(g.victoryQuest):
		g.outcome = Outcome{Over: true, Won: true, Reason: ReasonVictory}
	default:
		return
	}
	sev := SeverityError
	if g.outcome.Won {
		sev = SeveritySuccess
	}
	g.journal(sev, "%s", g.outcome.Reason)
	g.logger.Info("game over",
		zap.Bool("won", g.outcome.Won),
		zap.String("reason", g.outcome.Reason),
		zap.Int("day", g.day),
		zap.Int("score", g.Score()),
	)
}
