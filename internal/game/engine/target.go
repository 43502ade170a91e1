package engine

import (
	"fmt"

	"github.com/cory-johannsen/cloudranger/internal/game/condition"
	"github.com/cory-johannsen/cloudranger/internal/game/effect"
	"github.com/cory-johannsen/cloudranger/internal/game/inventory"
	"github.com/cory-johannsen/cloudranger/internal/game/player"
	"github.com/cory-johannsen/cloudranger/internal/game/quest"
	"github.com/cory-johannsen/cloudranger/internal/game/service"
)

// ranger is the effect target: the player plus the content catalogs, and an
// optional service that service-side effects land on.
type ranger struct {
	*player.Player
	g       *Game
	service *service.Service
}

var (
	_ effect.Target = (*ranger)(nil)
	_ quest.Ranger  = (*ranger)(nil)
)

func (g *Game) target() *ranger { return &ranger{Player: g.player, g: g} }

func (g *Game) targetService(s *service.Service) *ranger {
	return &ranger{Player: g.player, g: g, service: s}
}

// GrantArtifact instantiates the template into the inventory.
func (r *ranger) GrantArtifact(id string) error {
	def, ok := r.g.bundle.Items.Artifact(id)
	if !ok {
		return fmt.Errorf("artifact %q: %w", id, ErrUnknownTemplate)
	}
	if err := r.Inventory.AddArtifact(inventory.NewArtifact(def, r.g.roller.UUID("artifact id "+id))); err != nil {
		return fmt.Errorf("granting %s: %w", def.Name, err)
	}
	r.g.notify(SeveritySuccess, "Acquired artifact: %s", def.Name)
	return nil
}

// ApplyStatus applies a player status to the ranger, or a service status to
// the targeted service, falling back to a random online one.
func (r *ranger) ApplyStatus(id string) error {
	def, ok := r.g.bundle.Statuses.Get(id)
	if !ok {
		return fmt.Errorf("status %q: %w", id, ErrUnknownTemplate)
	}
	if def.Target == condition.TargetService {
		s := r.service
		if s == nil {
			s = r.g.randomOnline("status " + id)
		}
		if s == nil {
			return fmt.Errorf("status %s: %w", def.Name, ErrNoServiceTarget)
		}
		r.g.notify(SeverityWarning, "%s is affected by %s.", s.Name, def.Name)
		return s.Statuses.Apply(def)
	}
	r.g.notify(SeverityWarning, "You are affected by %s.", def.Name)
	return r.AddStatus(def)
}

// GrantBlueprint adds a service blueprint.
func (r *ranger) GrantBlueprint(id string) error {
	def, ok := r.g.bundle.Services.Get(id)
	if !ok {
		return fmt.Errorf("service %q: %w", id, ErrUnknownTemplate)
	}
	if err := r.Inventory.AddBlueprint(id); err != nil {
		return fmt.Errorf("granting %s blueprint: %w", def.Name, err)
	}
	r.g.notify(SeveritySuccess, "Acquired blueprint: %s", def.Name)
	return nil
}

// AddClue records the clue and tells the player when it is new.
func (r *ranger) AddClue(id, text string) {
	if r.HasClue(id) {
		return
	}
	r.Player.AddClue(id, text)
	r.g.journal(SeveritySuccess, "Clue found: %s", text)
}

// EnhanceServiceSecurity raises the targeted service's security level.
func (r *ranger) EnhanceServiceSecurity(amount int) error {
	if r.service == nil {
		return ErrNoServiceTarget
	}
	r.service.EnhanceSecurity(amount)
	return nil
}

// OptimizeServicePerformance raises the targeted service's performance.
func (r *ranger) OptimizeServicePerformance(amount int) error {
	if r.service == nil {
		return ErrNoServiceTarget
	}
	r.service.OptimizePerformance(amount)
	return nil
}

// RepairService restores the targeted service's health.
func (r *ranger) RepairService(amount int) error {
	if r.service == nil {
		return ErrNoServiceTarget
	}
	r.service.Repair(amount)
	return nil
}

// randomOnline picks one online service, or nil when none runs.
func (g *Game) randomOnline(label string) *service.Service {
	online := g.player.Inventory.Online()
	if len(online) == 0 {
		return nil
	}
	return online[g.roller.Pick(label, len(online))]
}

// onlineService resolves instanceID to a running service.
func (g *Game) onlineService(instanceID string) (*service.Service, error) {
	s, err := g.player.Inventory.Service(instanceID)
	if err != nil {
		return nil, err
	}
	if !s.Deployed {
		return nil, fmt.Errorf("%s is offline: %w", s.Name, ErrNoServiceTarget)
	}
	return s, nil
}
