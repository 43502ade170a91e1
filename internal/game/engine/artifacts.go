package engine

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/cloudranger/internal/game/condition"
	"github.com/cory-johannsen/cloudranger/internal/game/inventory"
	"github.com/cory-johannsen/cloudranger/internal/game/player"
	"github.com/cory-johannsen/cloudranger/internal/game/service"
)

// Status ids the artifact actions apply when the content defines them.
const (
	statusVulnerability    = "security_vulnerability"
	statusEnhancedSecurity = "enhanced_security"
	statusSecurityShield   = "security_shield"
)

// UseArtifact activates an owned artifact. serviceID optionally picks the
// service a security artifact hardens; when empty the least secure online
// service is chosen.
//
// Precondition: the game is running.
// Postcondition: On error nothing changed. Otherwise the artifact starts its
// cooldown, its type-specific effect applies and one day advances.
func (g *Game) UseArtifact(instanceID, serviceID string) error {
	if err := g.ready(); err != nil {
		return err
	}
	a, err := g.player.Inventory.Artifact(instanceID)
	if err != nil {
		return err
	}
	var chosen *service.Service
	if serviceID != "" {
		if chosen, err = g.onlineService(serviceID); err != nil {
			return fmt.Errorf("using %s: %w", a.Name(), err)
		}
	}
	if err := a.Use(); err != nil {
		return err
	}
	g.notify(SeverityInfo, "You activate %s.", a.Name())
	g.logger.Info("artifact used", zap.String("artifact", a.Def.ID), zap.Int("benefit", a.Benefit()))

	switch a.Def.Family() {
	case inventory.TypeScanner:
		g.useScanner(a)
	case inventory.TypeSecurity:
		g.useSecurity(a, chosen)
	case inventory.TypeNetwork:
		g.useNetwork(a)
	case inventory.TypeRecovery:
		g.useRecovery(a)
	case inventory.TypeDatabase:
		g.useDatabase(a)
	default:
		g.useGeneric(a)
	}
	g.advance()
	return nil
}

func (g *Game) useScanner(a *inventory.Artifact) {
	loc := g.Location()
	if g.roller.Chance("scanner clue", 40+a.Power*5+a.UpgradeLevel*10) {
		if !g.revealSecrets(loc, true) {
			g.target().AddClue(g.clueID("scan", loc.ID),
				fmt.Sprintf("%s picked up traces of the Shadow Admin's activity in %s.", a.Name(), loc.Name))
		}
	} else {
		g.notify(SeverityInfo, "The scan found nothing unusual.")
	}
	// Aggressive scanning sometimes exposes a weakness in your own services.
	if !g.roller.Chance("scanner vulnerability", 30) {
		return
	}
	s := g.randomOnline("scanner vulnerability target")
	if s == nil || s.SecurityLevel <= service.MinLevel {
		return
	}
	s.DegradeSecurity(1)
	g.notify(SeverityWarning, "The scan exposed a vulnerability in %s.", s.Name)
	g.applyServiceStatus(s, statusVulnerability)
}

func (g *Game) useSecurity(a *inventory.Artifact, s *service.Service) {
	benefit := a.Benefit()
	if s == nil {
		s = g.leastSecure()
	}
	if s != nil {
		sec := s.EnhanceSecurity(benefit)
		hp := s.Repair(benefit * 3)
		g.notify(SeveritySuccess, "%s hardened: security +%d, health +%d.", s.Name, sec, hp)
		g.applyServiceStatus(s, statusEnhancedSecurity)
		return
	}
	if def, ok := g.bundle.Statuses.Get(statusSecurityShield); ok {
		if err := g.player.AddStatus(def); err == nil {
			g.notify(SeveritySuccess, "A %s surrounds you.", def.Name)
		}
	}
	g.player.Heal(benefit * 3)
	g.notify(SeveritySuccess, "You recover %d health.", benefit*3)
}

func (g *Game) useNetwork(a *inventory.Artifact) {
	benefit := a.Benefit()
	g.player.Bandwidth += benefit * 5
	g.notify(SeveritySuccess, "Bandwidth increased by %d.", benefit*5)
	if g.roller.Chance("network clue", 20+benefit*3) {
		loc := g.Location()
		g.target().AddClue(g.clueID("net", loc.ID),
			"Traced traffic shows a hidden relay routing commands toward the Shadow Admin.")
	}
	if g.roller.Chance("network contacts", 10) {
		if err := g.player.AdjustReputation(player.FactionShadowNetwork, 2); err == nil {
			g.notify(SeverityInfo, "Your probing caught the Shadow Network's attention. Reputation +2.")
		}
	}
}

func (g *Game) useRecovery(a *inventory.Artifact) {
	benefit := a.Benefit()
	online := g.player.Inventory.Online()
	if len(online) == 0 {
		g.player.Heal(benefit * 20)
		g.player.RestoreEnergy(benefit * 10)
		g.notify(SeveritySuccess, "Recovered %d health and %d energy.", benefit*20, benefit*10)
		return
	}
	if g.roller.Chance("recovery target", 70) {
		repaired := 0
		for _, s := range online {
			if n := s.Repair(benefit * 10); n > 0 {
				repaired++
				g.notify(SeveritySuccess, "%s restored by %d health.", s.Name, n)
			}
		}
		if repaired > 0 {
			return
		}
	}
	g.player.Heal(benefit * 15)
	g.notify(SeveritySuccess, "Recovered %d health.", benefit*15)
}

func (g *Game) useDatabase(a *inventory.Artifact) {
	benefit := a.Benefit()
	g.player.AddCredits(float64(benefit * 15))
	g.notify(SeveritySuccess, "Data mining earned %d credits.", benefit*15)
	if g.roller.Chance("database skill", 20+benefit*5) {
		skills := []string{player.SkillDatabase, player.SkillInvestigation, player.SkillCloud}
		s := skills[g.roller.Pick("database skill choice", len(skills))]
		g.player.IncreaseSkill(s, 1)
		g.notify(SeveritySuccess, "Your %s skill improved!", s)
	}
	if g.roller.Chance("database clue", 30+benefit*3) {
		g.target().AddClue(g.clueID("db", g.player.LocationID),
			"Query history shows records altered by an account that should not exist.")
	}
}

func (g *Game) useGeneric(a *inventory.Artifact) {
	benefit := a.Benefit()
	switch g.roller.Pick("generic artifact effect", 4) {
	case 0:
		g.player.AddCredits(float64(benefit * 10))
		g.notify(SeveritySuccess, "%s generated %d credits.", a.Name(), benefit*10)
	case 1:
		s := player.Skills[g.roller.Pick("generic skill", len(player.Skills))]
		g.player.IncreaseSkill(s, 1)
		g.notify(SeveritySuccess, "Your %s skill improved!", s)
	case 2:
		g.target().AddClue(g.clueID("artifact", g.player.LocationID),
			fmt.Sprintf("%s surfaced an anomaly in %s.", a.Name(), g.Location().Name))
	default:
		s := g.weakest()
		if s == nil {
			g.player.RestoreEnergy(benefit * 5)
			g.notify(SeveritySuccess, "Recovered %d energy.", benefit*5)
			return
		}
		n := s.Repair(benefit * 5)
		g.notify(SeveritySuccess, "%s restored by %d health.", s.Name, n)
	}
}

// UpgradeArtifact pays for one upgrade level.
//
// Postcondition: On ErrMaxUpgrade or ErrInsufficientCredits nothing changed. No day passes.
func (g *Game) UpgradeArtifact(instanceID string) error {
	if err := g.ready(); err != nil {
		return err
	}
	a, err := g.player.Inventory.Artifact(instanceID)
	if err != nil {
		return err
	}
	if a.UpgradeLevel >= inventory.MaxUpgradeLevel {
		return fmt.Errorf("%s: %w", a.Name(), inventory.ErrMaxUpgrade)
	}
	cost := a.UpgradeCost()
	if err := g.player.Inventory.Spend(float64(cost)); err != nil {
		return fmt.Errorf("upgrading %s: %w", a.Name(), err)
	}
	if err := a.Upgrade(); err != nil {
		return err
	}
	g.notify(SeveritySuccess, "%s upgraded to level %d for %d credits.", a.Name(), a.UpgradeLevel, cost)
	return nil
}

func (g *Game) applyServiceStatus(s *service.Service, id string) {
	def, ok := g.bundle.Statuses.Get(id)
	if !ok || def.Target != condition.TargetService {
		return
	}
	if err := s.Statuses.Apply(def); err != nil {
		g.logger.Warn("service status not applied", zap.String("status", id), zap.Error(err))
	}
}

func (g *Game) leastSecure() *service.Service {
	var best *service.Service
	for _, s := range g.player.Inventory.Online() {
		if best == nil || s.SecurityLevel < best.SecurityLevel {
			best = s
		}
	}
	return best
}

func (g *Game) weakest() *service.Service {
	var best *service.Service
	for _, s := range g.player.Inventory.Online() {
		if best == nil || s.Health < best.Health {
			best = s
		}
	}
	return best
}
