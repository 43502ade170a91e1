package player

import (
	"fmt"

	"github.com/cory-johannsen/cloudranger/internal/game/condition"
	"github.com/cory-johannsen/cloudranger/internal/game/inventory"
	"github.com/cory-johannsen/cloudranger/internal/game/service"
)

// State is the serialisable form of a Player.
type State struct {
	Name            string            `yaml:"name"`
	Specialization  string            `yaml:"specialization"`
	LocationID      string            `yaml:"location_id"`
	Health          int               `yaml:"health"`
	MaxHealth       int               `yaml:"max_health"`
	Energy          int               `yaml:"energy"`
	MaxEnergy       int               `yaml:"max_energy"`
	TimeLeft        int               `yaml:"time_left"`
	Bandwidth       int               `yaml:"bandwidth"`
	Skills          map[string]int    `yaml:"skills"`
	Reputation      map[string]int    `yaml:"reputation"`
	Clues           map[string]string `yaml:"clues"`
	ActiveQuests    []string          `yaml:"active_quests"`
	CompletedQuests []string          `yaml:"completed_quests"`
	Boosts          []Boost           `yaml:"boosts"`
	Achievements    map[string]string `yaml:"achievements"`
	Journal         []string          `yaml:"journal"`
	Statuses        []condition.Entry `yaml:"statuses"`
	Inventory       inventory.State   `yaml:"inventory"`
}

// Catalogs bundles the registries needed to restore a player.
type Catalogs struct {
	Items    *inventory.Catalog
	Services *service.Catalog
	Statuses *condition.Registry
}

// State captures p.
func (p *Player) State() State {
	return State{
		Name:            p.Name,
		Specialization:  p.Specialization,
		LocationID:      p.LocationID,
		Health:          p.Health,
		MaxHealth:       p.MaxHealth,
		Energy:          p.Energy,
		MaxEnergy:       p.MaxEnergy,
		TimeLeft:        p.TimeLeft,
		Bandwidth:       p.Bandwidth,
		Skills:          copyInts(p.skills),
		Reputation:      copyInts(p.reputation),
		Clues:           copyStrings(p.clues),
		ActiveQuests:    p.ActiveQuests(),
		CompletedQuests: p.CompletedQuests(),
		Boosts:          p.Boosts(),
		Achievements:    copyStrings(p.achievements),
		Journal:         p.Journal(),
		Statuses:        p.Statuses.Entries(),
		Inventory:       p.Inventory.State(),
	}
}

// Restore rebuilds a Player from st.
//
// Postcondition: Returns an error if any referenced template is unknown.
func Restore(st State, cats Catalogs) (*Player, error) {
	inv, err := inventory.Restore(st.Inventory, cats.Items, cats.Services, cats.Statuses)
	if err != nil {
		return nil, fmt.Errorf("restoring player %s: %w", st.Name, err)
	}
	statuses, err := condition.Restore(cats.Statuses, st.Statuses)
	if err != nil {
		return nil, fmt.Errorf("restoring player %s: %w", st.Name, err)
	}
	p := &Player{
		Name:           st.Name,
		Specialization: st.Specialization,
		LocationID:     st.LocationID,
		Inventory:      inv,
		Statuses:       statuses,
		Health:         st.Health,
		MaxHealth:      st.MaxHealth,
		Energy:         st.Energy,
		MaxEnergy:      st.MaxEnergy,
		TimeLeft:       st.TimeLeft,
		Bandwidth:      st.Bandwidth,
		skills:         make(map[string]int, len(Skills)),
		reputation:     make(map[string]int, len(Factions)),
		clues:          copyStrings(st.Clues),
		active:         append([]string(nil), st.ActiveQuests...),
		completed:      append([]string(nil), st.CompletedQuests...),
		boosts:         append([]Boost(nil), st.Boosts...),
		achievements:   copyStrings(st.Achievements),
		log:            append([]string(nil), st.Journal...),
	}
	for _, s := range Skills {
		p.skills[s] = clamp(st.Skills[s], MinSkill, MaxSkill)
	}
	for _, f := range Factions {
		p.reputation[f] = clamp(st.Reputation[f], MinReputation, MaxReputation)
	}
	return p, nil
}

func copyInts(m map[string]int) map[string]int {
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func copyStrings(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
