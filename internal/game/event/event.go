// Package event resolves the random location events that fire as the ranger
// moves through the world.
package event

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/cloudranger/internal/game/effect"
)

// Def is an event definition loaded from content.
type Def struct {
	ID           string              `yaml:"id"`
	Name         string              `yaml:"name"`
	Description  string              `yaml:"description"`
	Type         string              `yaml:"type"`
	Effects      effect.List         `yaml:"effects"`
	Requirements effect.Requirements `yaml:"requirements"`
	// Chance is the percent chance the event is eligible on a given check.
	Chance     int  `yaml:"chance"`
	Repeatable bool `yaml:"repeatable"`
	// Cooldown is the number of ticks a repeatable event waits after firing.
	Cooldown int `yaml:"cooldown"`
	// Global events are candidates at every location.
	Global bool `yaml:"global"`
}

// Validate checks the definition's own invariants.
func (d *Def) Validate() error {
	var errs []error
	if d.ID == "" {
		errs = append(errs, errors.New("id must not be empty"))
	}
	if d.Name == "" {
		errs = append(errs, errors.New("name must not be empty"))
	}
	if d.Chance < 0 || d.Chance > 100 {
		errs = append(errs, fmt.Errorf("chance must be 0-100, got %d", d.Chance))
	}
	if d.Cooldown < 0 {
		errs = append(errs, fmt.Errorf("cooldown must be >= 0, got %d", d.Cooldown))
	}
	if d.Effects.NeedsService() {
		errs = append(errs, errors.New("event effects cannot target a service"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("event %q: %w", d.ID, errors.Join(errs...))
	}
	return nil
}

// Event is a definition plus its playthrough state.
//
// A non-repeatable event moves from not-yet-occurred to occurred once and
// stays there. A repeatable event alternates between ready and cooling down.
type Event struct {
	Def      *Def
	Occurred bool
	// Cooldown is the number of ticks left before the event is ready again.
	Cooldown int
}

// Ready reports whether the event's state allows it to fire, ignoring
// requirements and chance.
func (e *Event) Ready() bool {
	if e.Cooldown > 0 {
		return false
	}
	return e.Def.Repeatable || !e.Occurred
}

type eventFile struct {
	Events []*Def `yaml:"events"`
}

// Load parses an events document.
//
// Postcondition: Returns validated definitions in document order, or an error.
func Load(r io.Reader) ([]*Def, error) {
	var f eventFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && err != io.EOF {
		return nil, fmt.Errorf("parsing events YAML: %w", err)
	}
	var errs []error
	for _, d := range f.Events {
		if err := d.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return f.Events, nil
}

// LoadFile reads and parses the events file at path.
func LoadFile(path string) ([]*Def, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading events file %s: %w", path, err)
	}
	defs, err := Load(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return defs, nil
}
