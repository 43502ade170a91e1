// Package quest holds quest definitions and the ledger that tracks objective
// progress and hands out rewards.
package quest

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/cloudranger/internal/game/effect"
)

// TriggerKind selects the condition that completes an objective automatically.
type TriggerKind string

// Trigger kinds.
const (
	TriggerVisit           TriggerKind = "visit"
	TriggerOwnArtifact     TriggerKind = "own_artifact"
	TriggerDeployService   TriggerKind = "deploy_service"
	TriggerClueCount       TriggerKind = "clue_count"
	TriggerHasClue         TriggerKind = "has_clue"
	TriggerAtLocationAfter TriggerKind = "at_location_after"
)

// Trigger completes its objective when the player's situation matches.
type Trigger struct {
	Kind TriggerKind `yaml:"kind"`
	// Location is the location id for visit and at_location_after.
	Location string `yaml:"location"`
	// Artifact optionally narrows own_artifact to one template.
	Artifact string `yaml:"artifact"`
	// Service optionally narrows deploy_service to one service definition.
	Service string `yaml:"service"`
	// Count is the threshold for deploy_service and clue_count.
	Count int    `yaml:"count"`
	Clue  string `yaml:"clue"`
	// After names the objective that must already be complete.
	After string `yaml:"after"`
}

// Objective is one ordered step of a quest.
type Objective struct {
	ID          string   `yaml:"id"`
	Description string   `yaml:"description"`
	Trigger     *Trigger `yaml:"trigger"`
}

// Def is a quest definition loaded from content.
type Def struct {
	ID            string         `yaml:"id"`
	Title         string         `yaml:"title"`
	Description   string         `yaml:"description"`
	Objectives    []Objective    `yaml:"objectives"`
	Rewards       effect.List    `yaml:"rewards"`
	PrereqQuests  []string       `yaml:"prereq_quests"`
	MinSkill      map[string]int `yaml:"min_skill_level"`
	MinFactionRep map[string]int `yaml:"min_faction_rep"`
	// Location, when set, is where the quest must be accepted.
	Location   string `yaml:"location"`
	Difficulty int    `yaml:"difficulty"`
}

// Validate checks the definition's own invariants.
//
// Postcondition: Returns nil if valid, or an error naming every violation.
func (d *Def) Validate() error {
	var errs []error
	if d.ID == "" {
		errs = append(errs, errors.New("id must not be empty"))
	}
	if d.Title == "" {
		errs = append(errs, errors.New("title must not be empty"))
	}
	if len(d.Objectives) == 0 {
		errs = append(errs, errors.New("at least one objective is required"))
	}
	seen := make(map[string]bool, len(d.Objectives))
	for _, o := range d.Objectives {
		if o.ID == "" {
			errs = append(errs, errors.New("objective id must not be empty"))
			continue
		}
		if seen[o.ID] {
			errs = append(errs, fmt.Errorf("duplicate objective id %q", o.ID))
		}
		if o.Trigger != nil {
			if err := o.Trigger.validate(seen); err != nil {
				errs = append(errs, fmt.Errorf("objective %q: %w", o.ID, err))
			}
		}
		seen[o.ID] = true
	}
	if d.Difficulty < 0 || d.Difficulty > 10 {
		errs = append(errs, fmt.Errorf("difficulty must be 0-10, got %d", d.Difficulty))
	}
	if len(errs) > 0 {
		return fmt.Errorf("quest %q: %w", d.ID, errors.Join(errs...))
	}
	return nil
}

// validate checks t against the objectives declared before it.
func (t *Trigger) validate(earlier map[string]bool) error {
	switch t.Kind {
	case TriggerVisit:
		if t.Location == "" {
			return errors.New("visit trigger needs a location")
		}
	case TriggerOwnArtifact:
	case TriggerDeployService, TriggerClueCount:
		if t.Count < 0 {
			return fmt.Errorf("%s trigger count must be >= 0", t.Kind)
		}
	case TriggerHasClue:
		if t.Clue == "" {
			return errors.New("has_clue trigger needs a clue")
		}
	case TriggerAtLocationAfter:
		if t.Location == "" || t.After == "" {
			return errors.New("at_location_after trigger needs a location and an earlier objective")
		}
		if !earlier[t.After] {
			return fmt.Errorf("at_location_after references %q, which is not an earlier objective", t.After)
		}
	default:
		return fmt.Errorf("unknown trigger kind %q", t.Kind)
	}
	return nil
}

// Locations returns every location id the quest refers to.
func (d *Def) Locations() []string {
	var out []string
	if d.Location != "" {
		out = append(out, d.Location)
	}
	for _, o := range d.Objectives {
		if o.Trigger != nil && o.Trigger.Location != "" {
			out = append(out, o.Trigger.Location)
		}
	}
	return out
}

// ArtifactRefs returns every artifact template the quest refers to.
func (d *Def) ArtifactRefs() []string {
	out := d.Rewards.References()[effect.KindArtifact]
	for _, o := range d.Objectives {
		if o.Trigger != nil && o.Trigger.Artifact != "" {
			out = append(out, o.Trigger.Artifact)
		}
	}
	return out
}

// ServiceRefs returns every service definition the quest refers to.
func (d *Def) ServiceRefs() []string {
	out := d.Rewards.References()[effect.KindService]
	for _, o := range d.Objectives {
		if o.Trigger != nil && o.Trigger.Service != "" {
			out = append(out, o.Trigger.Service)
		}
	}
	return out
}

type questFile struct {
	Quests []*Def `yaml:"quests"`
}

// Load parses a quests document.
//
// Precondition: r must yield YAML with a top-level quests list.
// Postcondition: Returns validated definitions in document order, or an error.
func Load(r io.Reader) ([]*Def, error) {
	var f questFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && err != io.EOF {
		return nil, fmt.Errorf("parsing quests YAML: %w", err)
	}
	var errs []error
	for _, d := range f.Quests {
		if err := d.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return f.Quests, nil
}

// LoadFile reads and parses the quests file at path.
func LoadFile(path string) ([]*Def, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading quests file %s: %w", path, err)
	}
	defs, err := Load(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return defs, nil
}
