package inventory

import (
	"errors"
	"fmt"
	"sort"

	"github.com/cory-johannsen/cloudranger/internal/game/service"
)

// Capacity limits and starting balance.
const (
	MaxArtifacts   = 10
	MaxBlueprints  = 5
	StartingCredit = 500
)

var (
	// ErrInventoryFull is returned when an add would exceed a capacity limit.
	ErrInventoryFull = errors.New("inventory full")
	// ErrInsufficientCredits is returned when a purchase exceeds the balance.
	ErrInsufficientCredits = errors.New("insufficient credits")
	// ErrArtifactNotFound is returned for an unknown artifact instance id.
	ErrArtifactNotFound = errors.New("artifact not found")
	// ErrBlueprintNotFound is returned when the blueprint is not owned.
	ErrBlueprintNotFound = errors.New("blueprint not found")
	// ErrServiceNotFound is returned for an unknown service instance id.
	ErrServiceNotFound = errors.New("service not found")
	// ErrNoConsumable is returned when no unit of a consumable is held.
	ErrNoConsumable = errors.New("consumable not held")
)

// Inventory is everything the player owns. Every mutator is atomic: on error
// no state is modified.
//
// Invariant: only Charge takes credits below zero; len(artifacts) <= MaxArtifacts; len(blueprints) <= MaxBlueprints.
type Inventory struct {
	credits     float64
	artifacts   []*Artifact
	blueprints  []string
	deployed    []*service.Service
	consumables map[string]int
}

// New returns an empty inventory holding credits.
//
// Precondition: credits >= 0.
func New(credits float64) *Inventory {
	return &Inventory{credits: max(0, credits), consumables: make(map[string]int)}
}

// Credits returns the current balance.
func (inv *Inventory) Credits() float64 { return inv.credits }

// AddCredits adds amount (which may be negative). Income pays off debt first; a
// negative amount stops at zero and never deepens debt.
func (inv *Inventory) AddCredits(amount float64) {
	if amount >= 0 {
		inv.credits += amount
		return
	}
	if inv.credits > 0 {
		inv.credits = max(0, inv.credits+amount)
	}
}

// Charge deducts amount unconditionally, leaving the balance negative when it
// does not cover the charge. Running costs are charged; purchases go through Spend.
func (inv *Inventory) Charge(amount float64) {
	inv.credits -= amount
}

// CanAfford reports whether amount can be spent.
func (inv *Inventory) CanAfford(amount float64) bool { return inv.credits >= amount }

// Spend deducts amount.
//
// Precondition: amount >= 0.
// Postcondition: On error credits are unchanged.
func (inv *Inventory) Spend(amount float64) error {
	if amount > inv.credits {
		return fmt.Errorf("need %.2f, have %.2f: %w", amount, inv.credits, ErrInsufficientCredits)
	}
	inv.credits -= amount
	return nil
}

// Artifacts returns owned artifacts in acquisition order.
func (inv *Inventory) Artifacts() []*Artifact {
	return append([]*Artifact(nil), inv.artifacts...)
}

// AddArtifact stores a.
//
// Postcondition: Returns ErrInventoryFull when MaxArtifacts are already held.
func (inv *Inventory) AddArtifact(a *Artifact) error {
	if len(inv.artifacts) >= MaxArtifacts {
		return fmt.Errorf("adding %s: %w", a.Name(), ErrInventoryFull)
	}
	inv.artifacts = append(inv.artifacts, a)
	return nil
}

// Artifact returns the artifact with instanceID.
func (inv *Inventory) Artifact(instanceID string) (*Artifact, error) {
	for _, a := range inv.artifacts {
		if a.InstanceID == instanceID {
			return a, nil
		}
	}
	return nil, fmt.Errorf("artifact %q: %w", instanceID, ErrArtifactNotFound)
}

// RemoveArtifact removes and returns the artifact with instanceID.
func (inv *Inventory) RemoveArtifact(instanceID string) (*Artifact, error) {
	for i, a := range inv.artifacts {
		if a.InstanceID == instanceID {
			inv.artifacts = append(inv.artifacts[:i], inv.artifacts[i+1:]...)
			return a, nil
		}
	}
	return nil, fmt.Errorf("artifact %q: %w", instanceID, ErrArtifactNotFound)
}

// HasArtifact reports whether any owned artifact was made from template defID.
func (inv *Inventory) HasArtifact(defID string) bool {
	for _, a := range inv.artifacts {
		if a.Def.ID == defID {
			return true
		}
	}
	return false
}

// TickCooldowns advances every artifact cooldown by one turn.
func (inv *Inventory) TickCooldowns() {
	for _, a := range inv.artifacts {
		a.TickCooldown()
	}
}

// Blueprints returns owned, undeployed blueprint ids in acquisition order.
func (inv *Inventory) Blueprints() []string {
	return append([]string(nil), inv.blueprints...)
}

// AddBlueprint stores a blueprint id.
//
// Postcondition: Returns ErrInventoryFull when MaxBlueprints are already held.
func (inv *Inventory) AddBlueprint(defID string) error {
	if len(inv.blueprints) >= MaxBlueprints {
		return fmt.Errorf("adding blueprint %s: %w", defID, ErrInventoryFull)
	}
	inv.blueprints = append(inv.blueprints, defID)
	return nil
}

// HasBlueprint reports whether the blueprint is owned.
func (inv *Inventory) HasBlueprint(defID string) bool {
	for _, b := range inv.blueprints {
		if b == defID {
			return true
		}
	}
	return false
}

// RemoveBlueprint removes one copy of the blueprint.
func (inv *Inventory) RemoveBlueprint(defID string) error {
	for i, b := range inv.blueprints {
		if b == defID {
			inv.blueprints = append(inv.blueprints[:i], inv.blueprints[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("blueprint %q: %w", defID, ErrBlueprintNotFound)
}

// Deployed returns deployed services, online or offline, in deploy order.
func (inv *Inventory) Deployed() []*service.Service {
	return append([]*service.Service(nil), inv.deployed...)
}

// AddDeployed records a newly deployed service.
func (inv *Inventory) AddDeployed(s *service.Service) {
	inv.deployed = append(inv.deployed, s)
}

// Service returns the deployed service with instanceID.
func (inv *Inventory) Service(instanceID string) (*service.Service, error) {
	for _, s := range inv.deployed {
		if s.InstanceID == instanceID {
			return s, nil
		}
	}
	return nil, fmt.Errorf("service %q: %w", instanceID, ErrServiceNotFound)
}

// RemoveDeployed drops the service with instanceID and reports whether it existed.
func (inv *Inventory) RemoveDeployed(instanceID string) bool {
	for i, s := range inv.deployed {
		if s.InstanceID == instanceID {
			inv.deployed = append(inv.deployed[:i], inv.deployed[i+1:]...)
			return true
		}
	}
	return false
}

// Online returns the services that are currently deployed and running.
func (inv *Inventory) Online() []*service.Service {
	var out []*service.Service
	for _, s := range inv.deployed {
		if s.Deployed {
			out = append(out, s)
		}
	}
	return out
}

// AddConsumable adds count units of id.
//
// Precondition: count > 0.
func (inv *Inventory) AddConsumable(id string, count int) {
	if count <= 0 {
		return
	}
	inv.consumables[id] += count
}

// TakeConsumable removes one unit of id.
//
// Postcondition: Returns ErrNoConsumable and leaves state unchanged when none is held.
func (inv *Inventory) TakeConsumable(id string) error {
	n := inv.consumables[id]
	if n <= 0 {
		return fmt.Errorf("%s: %w", id, ErrNoConsumable)
	}
	if n == 1 {
		delete(inv.consumables, id)
	} else {
		inv.consumables[id] = n - 1
	}
	return nil
}

// ConsumableCount returns how many units of id are held.
func (inv *Inventory) ConsumableCount(id string) int { return inv.consumables[id] }

// ConsumableIDs returns the ids of held consumables, sorted.
func (inv *Inventory) ConsumableIDs() []string {
	ids := make([]string, 0, len(inv.consumables))
	for id := range inv.consumables {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// IsEmpty reports whether the player holds no artifacts and no deployed services.
func (inv *Inventory) IsEmpty() bool {
	return len(inv.artifacts) == 0 && len(inv.deployed) == 0
}

var _ service.Ledger = (*Inventory)(nil)
