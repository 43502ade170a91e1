// Package world provides the location graph: locations, their connections,
// hazards and secrets.
package world

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cory-johannsen/cloudranger/internal/game/dice"
	"github.com/cory-johannsen/cloudranger/internal/game/effect"
)

// Difficulty bounds for locations.
const (
	MinDifficulty = 1
	MaxDifficulty = 10
)

// Hazard is a danger that may strike the player at a location each turn.
type Hazard struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	// Chance is the percent chance the hazard triggers.
	Chance int `yaml:"chance"`
	// Damage is the inclusive damage range.
	Damage dice.Range `yaml:"damage"`
	// AvoidSkill, when set, gives skill×10 percent to dodge the hazard.
	AvoidSkill string `yaml:"avoidable_with_skill"`
	// Status is an optional status applied on a hit: to the player, or to one
	// online service when the status targets services.
	Status string `yaml:"status"`
}

// Validate checks the hazard's invariants.
func (h *Hazard) Validate() error {
	var errs []string
	if h.Name == "" {
		errs = append(errs, "name must not be empty")
	}
	if h.Chance < 0 || h.Chance > 100 {
		errs = append(errs, fmt.Sprintf("chance must be 0-100, got %d", h.Chance))
	}
	if err := h.Damage.Validate(); err != nil {
		errs = append(errs, err.Error())
	}
	if len(errs) > 0 {
		return fmt.Errorf("hazard %q: %s", h.Name, strings.Join(errs, "; "))
	}
	return nil
}

// Secret is a one-time discovery revealed by exploring with enough skill.
type Secret struct {
	ID       string      `yaml:"id"`
	Text     string      `yaml:"text"`
	Skill    string      `yaml:"skill"`
	MinLevel int         `yaml:"min_level"`
	Effects  effect.List `yaml:"effects"`
}

// Location is one node of the world graph.
type Location struct {
	// ID is the stable key used by every cross-reference.
	ID          string
	Name        string
	Description string
	Region      string
	// Connections are location ids reachable in one hop.
	Connections []string
	Difficulty  int
	// Events are event ids that may fire here.
	Events  []string
	Hazards []Hazard
	Secrets []Secret
	Visited bool
	// Discovered holds the ids of secrets already found.
	Discovered map[string]bool
}

// Validate checks the location's own invariants. Connection targets are
// checked by NewGraph.
//
// Postcondition: Returns nil if valid, or an error describing every violation.
func (l *Location) Validate() error {
	var errs []error
	if l.ID == "" {
		errs = append(errs, errors.New("id must not be empty"))
	}
	if l.Name == "" {
		errs = append(errs, errors.New("name must not be empty"))
	}
	if l.Difficulty < MinDifficulty || l.Difficulty > MaxDifficulty {
		errs = append(errs, fmt.Errorf("difficulty must be %d-%d, got %d", MinDifficulty, MaxDifficulty, l.Difficulty))
	}
	for _, c := range l.Connections {
		if c == l.ID {
			errs = append(errs, errors.New("location must not connect to itself"))
		}
	}
	for i := range l.Hazards {
		if err := l.Hazards[i].Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	seen := make(map[string]bool, len(l.Secrets))
	for _, s := range l.Secrets {
		if s.ID == "" {
			errs = append(errs, errors.New("secret id must not be empty"))
		}
		if seen[s.ID] {
			errs = append(errs, fmt.Errorf("duplicate secret id %q", s.ID))
		}
		seen[s.ID] = true
	}
	if len(errs) > 0 {
		return fmt.Errorf("location %q: %w", l.ID, errors.Join(errs...))
	}
	return nil
}

// ConnectsTo reports whether id is a direct neighbour.
func (l *Location) ConnectsTo(id string) bool {
	for _, c := range l.Connections {
		if c == id {
			return true
		}
	}
	return false
}

// Safe reports whether the location is calm enough for a full rest.
func (l *Location) Safe() bool { return l.Difficulty <= 3 }
