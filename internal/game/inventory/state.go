package inventory

import (
	"fmt"

	"github.com/cory-johannsen/cloudranger/internal/game/condition"
	"github.com/cory-johannsen/cloudranger/internal/game/service"
)

// ArtifactState is the serialisable form of an owned artifact.
type ArtifactState struct {
	InstanceID   string `yaml:"instance_id"`
	DefID        string `yaml:"def_id"`
	Power        int    `yaml:"power"`
	UpgradeLevel int    `yaml:"upgrade_level"`
	Cooldown     int    `yaml:"cooldown"`
}

// State is the serialisable form of an Inventory.
type State struct {
	Credits     float64         `yaml:"credits"`
	Artifacts   []ArtifactState `yaml:"artifacts"`
	Blueprints  []string        `yaml:"blueprints"`
	Deployed    []service.State `yaml:"deployed"`
	Consumables map[string]int  `yaml:"consumables"`
}

// State captures inv.
func (inv *Inventory) State() State {
	st := State{
		Credits:     inv.credits,
		Blueprints:  inv.Blueprints(),
		Consumables: make(map[string]int, len(inv.consumables)),
	}
	for _, a := range inv.artifacts {
		st.Artifacts = append(st.Artifacts, ArtifactState{
			InstanceID:   a.InstanceID,
			DefID:        a.Def.ID,
			Power:        a.Power,
			UpgradeLevel: a.UpgradeLevel,
			Cooldown:     a.Cooldown,
		})
	}
	for _, s := range inv.deployed {
		st.Deployed = append(st.Deployed, s.State())
	}
	for id, n := range inv.consumables {
		st.Consumables[id] = n
	}
	return st
}

// Restore rebuilds an Inventory from st.
//
// Postcondition: Returns an error naming the first unknown template id.
func Restore(st State, cat *Catalog, services *service.Catalog, statuses *condition.Registry) (*Inventory, error) {
	inv := New(0)
	inv.credits = st.Credits
	for _, as := range st.Artifacts {
		def, ok := cat.Artifact(as.DefID)
		if !ok {
			return nil, fmt.Errorf("restoring artifact %s: unknown template %q", as.InstanceID, as.DefID)
		}
		inv.artifacts = append(inv.artifacts, &Artifact{
			InstanceID:   as.InstanceID,
			Def:          def,
			Power:        as.Power,
			UpgradeLevel: as.UpgradeLevel,
			Cooldown:     as.Cooldown,
		})
	}
	for _, id := range st.Blueprints {
		if _, ok := services.Get(id); !ok {
			return nil, fmt.Errorf("restoring blueprint: unknown service %q", id)
		}
		inv.blueprints = append(inv.blueprints, id)
	}
	for _, ss := range st.Deployed {
		s, err := service.Restore(ss, services, statuses)
		if err != nil {
			return nil, err
		}
		inv.deployed = append(inv.deployed, s)
	}
	for id, n := range st.Consumables {
		if _, ok := cat.Consumable(id); !ok {
			return nil, fmt.Errorf("restoring consumables: unknown consumable %q", id)
		}
		inv.consumables[id] = n
	}
	return inv, nil
}
