// Package condition models timed status effects on the player and on deployed
// services. Per-turn behaviour is a closed set of kinds interpreted by the
// engine, never code carried in content.
package condition

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// TickKind names what a status does each turn it is active.
type TickKind string

const (
	TickNone          TickKind = "none"
	TickDamage        TickKind = "damage"
	TickHeal          TickKind = "heal"
	TickDrainEnergy   TickKind = "drain_energy"
	TickRestoreEnergy TickKind = "restore_energy"
	// TickServiceDamage and TickServicePerformance apply to deployed services.
	TickServiceDamage      TickKind = "service_damage"
	TickServicePerformance TickKind = "service_performance"
)

// Target names who a status may be applied to.
type Target string

const (
	TargetPlayer  Target = "player"
	TargetService Target = "service"
)

// FlagHazardImmunity makes the bearer skip hazard checks while active.
const FlagHazardImmunity = "hazard_immunity"

// PerTurn is the structured per-turn effect of a status.
type PerTurn struct {
	Kind      TickKind `yaml:"kind"`
	Magnitude int      `yaml:"magnitude"`
}

// StatusDef is the static definition of a status effect, loaded from YAML.
type StatusDef struct {
	ID          string   `yaml:"id"`
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Target      Target   `yaml:"target"`
	Duration    int      `yaml:"duration"`
	PerTurn     PerTurn  `yaml:"per_turn"`
	Flags       []string `yaml:"flags"`
}

var playerKinds = map[TickKind]bool{TickNone: true, TickDamage: true, TickHeal: true, TickDrainEnergy: true, TickRestoreEnergy: true}
var serviceKinds = map[TickKind]bool{TickNone: true, TickServiceDamage: true, TickServicePerformance: true}

// Validate checks the definition's invariants.
//
// Postcondition: Returns nil iff ID and Name are set, Duration >= 1, and the
// per-turn kind is legal for the target.
func (d *StatusDef) Validate() error {
	var errs []string
	if d.ID == "" {
		errs = append(errs, "id must not be empty")
	}
	if d.Name == "" {
		errs = append(errs, "name must not be empty")
	}
	if d.Duration < 1 {
		errs = append(errs, fmt.Sprintf("duration must be >= 1, got %d", d.Duration))
	}
	kind := d.PerTurn.Kind
	if kind == "" {
		kind = TickNone
	}
	switch d.Target {
	case TargetPlayer:
		if !playerKinds[kind] {
			errs = append(errs, fmt.Sprintf("per_turn.kind %q is not valid for player statuses", kind))
		}
	case TargetService:
		if !serviceKinds[kind] {
			errs = append(errs, fmt.Sprintf("per_turn.kind %q is not valid for service statuses", kind))
		}
	default:
		errs = append(errs, fmt.Sprintf("target must be player or service, got %q", d.Target))
	}
	if len(errs) > 0 {
		return fmt.Errorf("status %q: %s", d.ID, strings.Join(errs, "; "))
	}
	return nil
}

// HasFlag reports whether the definition carries flag.
func (d *StatusDef) HasFlag(flag string) bool {
	for _, f := range d.Flags {
		if f == flag {
			return true
		}
	}
	return false
}

// Registry holds all known StatusDefs keyed by ID.
type Registry struct {
	defs map[string]*StatusDef
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]*StatusDef)}
}

// Register validates def and adds it to the registry.
//
// Precondition: def must not be nil.
// Postcondition: Returns an error on an invalid def or a duplicate ID.
func (r *Registry) Register(def *StatusDef) error {
	if def.PerTurn.Kind == "" {
		def.PerTurn.Kind = TickNone
	}
	if err := def.Validate(); err != nil {
		return err
	}
	if _, dup := r.defs[def.ID]; dup {
		return fmt.Errorf("status %q: duplicate id", def.ID)
	}
	r.defs[def.ID] = def
	return nil
}

// Get returns the StatusDef for id, or (nil, false) if not found.
func (r *Registry) Get(id string) (*StatusDef, bool) {
	d, ok := r.defs[id]
	return d, ok
}

// All returns all registered StatusDefs sorted by ID.
func (r *Registry) All() []*StatusDef {
	out := make([]*StatusDef, 0, len(r.defs))
	for _, d := range r.defs {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

type yamlStatusFile struct {
	Statuses []*StatusDef `yaml:"statuses"`
}

// Load parses a statuses document from r.
//
// Postcondition: Returns a populated Registry, or an error naming every invalid entry.
func Load(r io.Reader) (*Registry, error) {
	var f yamlStatusFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && err != io.EOF {
		return nil, fmt.Errorf("parsing statuses: %w", err)
	}
	reg := NewRegistry()
	var errs []string
	for _, def := range f.Statuses {
		if err := reg.Register(def); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return reg, nil
}

// LoadFile reads and parses the statuses file at path.
//
// Precondition: path must name a readable YAML file.
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %q: %w", path, err)
	}
	reg, err := Load(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return reg, nil
}
