package engine

import (
	"errors"
	"fmt"

	"github.com/cory-johannsen/cloudranger/internal/game/service"
)

// ErrServiceOnline is returned when redeploying a service that is still running.
var ErrServiceOnline = errors.New("service is already online")

// ErrNothingToDo is returned when a maintenance action would change nothing.
var ErrNothingToDo = errors.New("service needs no maintenance")

// Deploy turns an owned blueprint into a running service in the current
// location's region.
//
// Postcondition: On error nothing changed. Otherwise one day advances.
func (g *Game) Deploy(blueprintID string) error {
	if err := g.ready(); err != nil {
		return err
	}
	def, ok := g.bundle.Services.Get(blueprintID)
	if !ok {
		return fmt.Errorf("service %q: %w", blueprintID, ErrUnknownTemplate)
	}
	s, err := service.Deploy(def, g.player.Inventory, g.Location().Region, g.roller.UUID("instance id "+def.ID))
	if err != nil {
		return err
	}
	g.journal(SeveritySuccess, "Deployed %s (%s) in %s.", s.Name, s.InstanceID, s.Region)
	g.award(AchievementFirstDeploy)
	g.advance()
	return nil
}

// Undeploy takes a running service offline. It stays in the deployment list
// and can be redeployed later.
func (g *Game) Undeploy(instanceID string) error {
	if err := g.ready(); err != nil {
		return err
	}
	s, err := g.onlineService(instanceID)
	if err != nil {
		return err
	}
	s.Undeploy()
	g.notify(SeverityInfo, "%s is now offline.", s.Name)
	return nil
}

// Redeploy brings an offline service back at full health for half its deploy cost.
func (g *Game) Redeploy(instanceID string) error {
	if err := g.ready(); err != nil {
		return err
	}
	s, err := g.player.Inventory.Service(instanceID)
	if err != nil {
		return err
	}
	if s.Deployed {
		return fmt.Errorf("%s: %w", s.Name, ErrServiceOnline)
	}
	if err := g.pay(s.RedeployCost(), "redeploying "+s.Name); err != nil {
		return err
	}
	s.Redeploy()
	g.notify(SeveritySuccess, "%s is back online.", s.Name)
	return nil
}

// Repair restores a service to full health.
func (g *Game) Repair(instanceID string) error {
	return g.maintain(instanceID, "repairing", func(s *service.Service) (int, func() int) {
		return s.RepairCost(), func() int { return s.Repair(service.MaxHealth) }
	}, "%s repaired: health +%d.")
}

// EnhanceSecurity raises a service's security level to the maximum.
func (g *Game) EnhanceSecurity(instanceID string) error {
	return g.maintain(instanceID, "securing", func(s *service.Service) (int, func() int) {
		return s.SecurityCost(), func() int { return s.EnhanceSecurity(service.MaxLevel) }
	}, "%s secured: security +%d.")
}

// OptimizePerformance raises a service's performance to the maximum.
func (g *Game) OptimizePerformance(instanceID string) error {
	return g.maintain(instanceID, "optimizing", func(s *service.Service) (int, func() int) {
		return s.OptimizeCost(), func() int { return s.OptimizePerformance(service.MaxLevel) }
	}, "%s optimized: performance +%d.")
}

// maintain charges the quoted cost then applies the change.
//
// Postcondition: On error nothing changed. No day passes.
func (g *Game) maintain(instanceID, verb string, quote func(*service.Service) (int, func() int), done string) error {
	if err := g.ready(); err != nil {
		return err
	}
	s, err := g.onlineService(instanceID)
	if err != nil {
		return err
	}
	cost, apply := quote(s)
	if cost <= 0 {
		return fmt.Errorf("%s %s: %w", verb, s.Name, ErrNothingToDo)
	}
	if err := g.pay(cost, verb+" "+s.Name); err != nil {
		return err
	}
	g.notify(SeveritySuccess, done, s.Name, apply())
	return nil
}

func (g *Game) pay(cost int, what string) error {
	if err := g.player.Inventory.Spend(float64(cost)); err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}
	return nil
}
