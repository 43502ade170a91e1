// Package content loads the YAML content tables of a Cloud Ranger world and
// checks that every cross-reference between them resolves.
package content

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cory-johannsen/cloudranger/internal/game/condition"
	"github.com/cory-johannsen/cloudranger/internal/game/effect"
	"github.com/cory-johannsen/cloudranger/internal/game/event"
	"github.com/cory-johannsen/cloudranger/internal/game/inventory"
	"github.com/cory-johannsen/cloudranger/internal/game/player"
	"github.com/cory-johannsen/cloudranger/internal/game/quest"
	"github.com/cory-johannsen/cloudranger/internal/game/service"
	"github.com/cory-johannsen/cloudranger/internal/game/vendor"
	"github.com/cory-johannsen/cloudranger/internal/game/world"
)

// File names inside a content directory.
const (
	LocationsFile   = "locations.yaml"
	ArtifactsFile   = "artifacts.yaml"
	ServicesFile    = "services.yaml"
	ConsumablesFile = "consumables.yaml"
	ConditionsFile  = "conditions.yaml"
	EventsFile      = "events.yaml"
	QuestsFile      = "quests.yaml"
	VendorsFile     = "vendors.yaml"
	RestFile        = "rest.yaml"
)

// Bundle is one fully loaded and cross-checked content set. The world graph
// carries exploration state, so each playthrough loads its own Bundle.
type Bundle struct {
	World    *world.Graph
	Items    *inventory.Catalog
	Services *service.Catalog
	Statuses *condition.Registry
	Events   []*event.Def
	Quests   []*quest.Def
	Vendors  []*vendor.Def
	Rest     *event.RestTable
}

// Load reads every content table from dir and validates the cross-references.
//
// Precondition: dir must contain every content file.
// Postcondition: Returns a validated Bundle, or an error aggregating every
// parse failure and every dangling reference.
func Load(dir string) (*Bundle, error) {
	b := &Bundle{Items: inventory.NewCatalog()}
	var errs []string
	collect := func(err error) {
		if err != nil {
			errs = append(errs, err.Error())
		}
	}

	var err error
	b.World, err = world.LoadFile(filepath.Join(dir, LocationsFile))
	collect(err)
	collect(loadInto(filepath.Join(dir, ArtifactsFile), b.Items.LoadArtifacts))
	collect(loadInto(filepath.Join(dir, ConsumablesFile), b.Items.LoadConsumables))
	b.Services, err = service.LoadFile(filepath.Join(dir, ServicesFile))
	collect(err)
	b.Statuses, err = condition.LoadFile(filepath.Join(dir, ConditionsFile))
	collect(err)
	b.Events, err = event.LoadFile(filepath.Join(dir, EventsFile))
	collect(err)
	b.Quests, err = quest.LoadFile(filepath.Join(dir, QuestsFile))
	collect(err)
	b.Vendors, err = vendor.LoadFile(filepath.Join(dir, VendorsFile))
	collect(err)
	b.Rest, err = event.LoadRestFile(filepath.Join(dir, RestFile))
	collect(err)

	if len(errs) == 0 {
		collect(b.Validate())
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("content validation failed: %s", strings.Join(errs, "; "))
	}
	return b, nil
}

func loadInto(path string, load func(io.Reader) error) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	if err := load(f); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// Validate checks every reference between the tables of b.
//
// Postcondition: Returns nil, or one error listing every dangling reference.
func (b *Bundle) Validate() error {
	c := &checker{b: b, clues: b.grantedClues()}

	for _, l := range b.World.All() {
		where := "location " + l.ID
		for _, id := range l.Events {
			c.event(where, id)
		}
		for _, h := range l.Hazards {
			if h.AvoidSkill != "" {
				c.skill(where+" hazard "+h.Name, h.AvoidSkill)
			}
			if h.Status != "" {
				c.status(where+" hazard "+h.Name, h.Status)
			}
		}
		for _, s := range l.Secrets {
			sw := where + " secret " + s.ID
			if s.Skill != "" {
				c.skill(sw, s.Skill)
			}
			c.effects(sw, s.Effects)
		}
	}

	for _, d := range b.Items.AllConsumables() {
		c.effects("consumable "+d.ID, d.Effects)
	}

	for _, d := range b.Events {
		where := "event " + d.ID
		c.effects(where, d.Effects)
		c.requirements(where, d.Requirements)
	}

	for where, l := range b.Rest.Effects() {
		c.effects("rest "+where, l)
	}

	quests := make(map[string]bool, len(b.Quests))
	for _, q := range b.Quests {
		quests[q.ID] = true
	}
	for _, q := range b.Quests {
		where := "quest " + q.ID
		c.effects(where, q.Rewards)
		for _, pre := range q.PrereqQuests {
			if !quests[pre] {
				c.fail(where, "prerequisite quest", pre)
			}
		}
		for _, id := range q.Locations() {
			c.location(where, id)
		}
		for _, id := range q.ArtifactRefs() {
			c.artifact(where, id)
		}
		for _, id := range q.ServiceRefs() {
			c.service(where, id)
		}
		for s := range q.MinSkill {
			c.skill(where, s)
		}
		for f := range q.MinFactionRep {
			c.faction(where, f)
		}
		for _, o := range q.Objectives {
			if o.Trigger != nil && o.Trigger.Clue != "" && !c.clues[o.Trigger.Clue] {
				c.fail(where+" objective "+o.ID, "clue (never granted)", o.Trigger.Clue)
			}
		}
	}

	for _, v := range b.Vendors {
		where := "vendor " + v.ID
		c.location(where, v.Location)
		for _, id := range v.Artifacts {
			c.artifact(where, id)
		}
		for _, id := range v.Services {
			c.service(where, id)
		}
		for _, id := range v.Consumables {
			c.consumable(where, id)
		}
		for f := range v.ReputationRequired {
			c.faction(where, f)
		}
	}

	for _, name := range []string{"easy", "normal", "hard"} {
		d, err := player.DifficultyByName(name)
		if err != nil {
			continue
		}
		for _, id := range d.StarterArtifacts {
			c.artifact("difficulty "+name+" starter kit", id)
		}
	}

	if len(c.errs) > 0 {
		sort.Strings(c.errs)
		return fmt.Errorf("%s", strings.Join(c.errs, "; "))
	}
	return nil
}

// grantedClues returns every clue id some content effect can hand out.
func (b *Bundle) grantedClues() map[string]bool {
	out := make(map[string]bool)
	add := func(l effect.List) {
		for _, e := range l {
			if g, ok := e.(effect.ClueGrant); ok {
				out[g.ClueID] = true
			}
		}
	}
	for _, d := range b.Events {
		add(d.Effects)
	}
	for _, q := range b.Quests {
		add(q.Rewards)
	}
	for _, d := range b.Items.AllConsumables() {
		add(d.Effects)
	}
	for _, l := range b.World.All() {
		for _, s := range l.Secrets {
			add(s.Effects)
		}
	}
	for _, l := range b.Rest.Effects() {
		add(l)
	}
	return out
}

type checker struct {
	b     *Bundle
	clues map[string]bool
	errs  []string
}

func (c *checker) fail(where, kind, id string) {
	c.errs = append(c.errs, fmt.Sprintf("%s: unknown %s %q", where, kind, id))
}

func (c *checker) location(where, id string) {
	if _, err := c.b.World.Get(id); err != nil {
		c.fail(where, "location", id)
	}
}

func (c *checker) artifact(where, id string) {
	if _, ok := c.b.Items.Artifact(id); !ok {
		c.fail(where, "artifact", id)
	}
}

func (c *checker) consumable(where, id string) {
	if _, ok := c.b.Items.Consumable(id); !ok {
		c.fail(where, "consumable", id)
	}
}

func (c *checker) service(where, id string) {
	if _, ok := c.b.Services.Get(id); !ok {
		c.fail(where, "service", id)
	}
}

func (c *checker) event(where, id string) {
	for _, d := range c.b.Events {
		if d.ID == id {
			return
		}
	}
	c.fail(where, "event", id)
}

func (c *checker) status(where, id string) {
	if _, ok := c.b.Statuses.Get(id); !ok {
		c.fail(where, "status", id)
	}
}

func (c *checker) skill(where, name string) {
	for _, s := range player.Skills {
		if s == name {
			return
		}
	}
	c.fail(where, "skill", name)
}

func (c *checker) faction(where, name string) {
	for _, f := range player.Factions {
		if f == name {
			return
		}
	}
	c.fail(where, "faction", name)
}

func (c *checker) requirements(where string, r effect.Requirements) {
	for s := range r.MinSkill {
		c.skill(where, s)
	}
	for f := range r.MinFactionRep {
		c.faction(where, f)
	}
	for _, id := range r.Artifacts {
		c.artifact(where, id)
	}
	for _, id := range r.Clues {
		if !c.clues[id] {
			c.fail(where, "clue (never granted)", id)
		}
	}
}

func (c *checker) effects(where string, l effect.List) {
	for _, e := range l {
		switch v := e.(type) {
		case effect.SkillDelta:
			c.skill(where, v.Skill)
		case effect.FactionDelta:
			c.faction(where, v.Faction)
		case effect.ArtifactGrant:
			c.artifact(where, v.ArtifactID)
		case effect.ConsumableGrant:
			c.consumable(where, v.ConsumableID)
		case effect.StatusEffectGrant:
			c.status(where, v.StatusID)
		case effect.ServiceGrant:
			c.service(where, v.ServiceID)
		}
	}
}
