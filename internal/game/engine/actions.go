package engine

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/cloudranger/internal/game/effect"
	"github.com/cory-johannsen/cloudranger/internal/game/inventory"
	"github.com/cory-johannsen/cloudranger/internal/game/player"
	"github.com/cory-johannsen/cloudranger/internal/game/quest"
	"github.com/cory-johannsen/cloudranger/internal/game/world"
)

// Exploration tuning.
const (
	baseDiscovery      = 30
	discoveryPerSkill  = 5
	discoveryPerDanger = 2
	artifactFindChance = 30
)

// Rest recovery.
const (
	safeRestHealth   = 20
	safeRestEnergy   = 70
	unsafeRestHealth = 10
	unsafeRestEnergy = 40
)

var exploreConsumables = []string{"emergency_patch", "energy_cell", "firewall_patch", "performance_booster"}

var clueOpenings = []string{
	"You found a log entry that",
	"An encrypted message reveals",
	"A system administrator mentions",
	"A corrupted file contains data that",
	"An audit trail shows",
}

var clueFindings = [][]string{
	{
		"suggests unusual access patterns during off-hours.",
		"indicates someone has been testing security boundaries.",
		"shows failed login attempts from an unknown source.",
	},
	{
		"points to a sophisticated intrusion technique.",
		"reveals a pattern of data exfiltration.",
		"contains fragments of a custom exploit.",
	},
	{
		"contains partial credentials for a high-level admin account.",
		"reveals the Shadow Admin's signature attack methodology.",
		"exposes a backdoor in critical infrastructure.",
	},
}

// Explore searches the current location for secrets and loot.
//
// Precondition: the game is running.
// Postcondition: On ErrInsufficientEnergy nothing changed and no day passed;
// otherwise 10 energy is spent and one day advances.
func (g *Game) Explore() error {
	if err := g.ready(); err != nil {
		return err
	}
	if err := g.player.UseEnergy(exploreEnergy); err != nil {
		return fmt.Errorf("exploring: %w", err)
	}
	loc := g.Location()
	g.notify(SeverityInfo, "You explore %s...", loc.Name)

	found := g.revealSecrets(loc, false)
	chance := baseDiscovery + g.player.Skill(player.SkillInvestigation)*discoveryPerSkill - loc.Difficulty*discoveryPerDanger
	if c, ok := g.weather.At(loc.ID); ok {
		chance += c.Type.Consequences.ExploreModifier
	}
	if g.roller.Chance("explore discovery", chance) {
		found = g.discover(loc) || found
	}
	if !found {
		g.notify(SeverityInfo, "You didn't find anything of interest.")
	}
	g.advance()
	return nil
}

// revealSecrets reveals undiscovered secrets at loc. With force the skill
// gate is ignored and only the first secret is revealed.
func (g *Game) revealSecrets(loc *world.Location, force bool) bool {
	found := false
	for i := range loc.Secrets {
		s := &loc.Secrets[i]
		if loc.Discovered[s.ID] {
			continue
		}
		if !force && s.Skill != "" && g.player.Skill(s.Skill) < s.MinLevel {
			continue
		}
		g.bundle.World.Discover(loc.ID, s.ID)
		g.journal(SeveritySuccess, "SECRET: %s", s.Text)
		if err := effect.Apply(s.Effects, g.target(), "secret:"+s.ID); err != nil {
			g.logger.Warn("secret effects partially applied", zap.String("secret", s.ID), zap.Error(err))
		}
		found = true
		if force {
			break
		}
	}
	return found
}

func (g *Game) discover(loc *world.Location) bool {
	switch g.roller.Pick("discovery kind", 5) {
	case 0:
		return g.findArtifact(loc)
	case 1:
		g.target().AddClue(g.clueID("explore", loc.ID), g.clueText(loc.Difficulty))
		return true
	case 2:
		amount := g.roller.Between("explore credits", 10, 10+loc.Difficulty*5)
		g.player.AddCredits(float64(amount))
		g.notify(SeveritySuccess, "You found %d credits!", amount)
		return true
	case 3:
		return g.findBlueprint(loc)
	default:
		return g.findConsumables(loc)
	}
}

func (g *Game) findArtifact(loc *world.Location) bool {
	if !g.roller.Chance("artifact find", artifactFindChance) {
		return false
	}
	var pool []*inventory.ArtifactDef
	for _, d := range g.bundle.Items.AllArtifacts() {
		switch {
		case loc.Difficulty <= 3 && d.Power <= 4,
			loc.Difficulty > 3 && loc.Difficulty < 7 && d.Power >= 3 && d.Power <= 7,
			loc.Difficulty >= 7 && d.Power >= 6:
			pool = append(pool, d)
		}
	}
	if len(pool) == 0 {
		return false
	}
	def := pool[g.roller.Pick("artifact choice", len(pool))]
	if err := g.target().GrantArtifact(def.ID); err != nil {
		g.notify(SeverityWarning, "You found %s but your inventory is full.", def.Name)
	}
	return true
}

func (g *Game) findBlueprint(loc *world.Location) bool {
	var pool []string
	for _, d := range g.bundle.Services.All() {
		if !d.AvailableIn(loc.Region) {
			continue
		}
		switch {
		case loc.Difficulty <= 3 && d.DeployCost <= 10,
			loc.Difficulty > 3 && loc.Difficulty < 7 && d.DeployCost >= 5 && d.DeployCost <= 20,
			loc.Difficulty >= 7 && d.DeployCost >= 15:
			pool = append(pool, d.ID)
		}
	}
	if len(pool) == 0 {
		return false
	}
	id := pool[g.roller.Pick("blueprint choice", len(pool))]
	if err := g.target().GrantBlueprint(id); err != nil {
		g.notify(SeverityWarning, "You found a service blueprint but have no room for it.")
	}
	return true
}

func (g *Game) findConsumables(loc *world.Location) bool {
	var pool []*inventory.ConsumableDef
	for _, id := range exploreConsumables {
		if d, ok := g.bundle.Items.Consumable(id); ok {
			pool = append(pool, d)
		}
	}
	if len(pool) == 0 {
		return false
	}
	def := pool[g.roller.Pick("consumable choice", len(pool))]
	count := 1
	switch {
	case loc.Difficulty >= 8:
		count = g.roller.Between("consumable count", 1, 3)
	case loc.Difficulty >= 5:
		count = g.roller.Between("consumable count", 1, 2)
	}
	g.player.AddConsumable(def.ID, count)
	g.notify(SeveritySuccess, "You found %d x %s.", count, def.Name)
	return true
}

func (g *Game) clueID(source, where string) string {
	return fmt.Sprintf("%s_clue_%s_%d", source, where, g.roller.Between("clue id", 1000, 9999))
}

// clueText assembles flavor text; harder locations yield more specific findings.
func (g *Game) clueText(difficulty int) string {
	tier := 0
	switch {
	case difficulty >= 7:
		tier = 2
	case difficulty >= 4:
		tier = 1
	}
	open := clueOpenings[g.roller.Pick("clue opening", len(clueOpenings))]
	find := clueFindings[tier][g.roller.Pick("clue finding", len(clueFindings[tier]))]
	return open + " " + find
}

// Travel moves the ranger to an adjacent location.
//
// Precondition: the game is running.
// Postcondition: On ErrNotConnected, ErrTooDangerous or ErrInsufficientEnergy
// nothing changed; otherwise the ranger arrives, arrival weather applies and
// one day advances.
func (g *Game) Travel(to string) error {
	if err := g.ready(); err != nil {
		return err
	}
	from := g.Location()
	if !g.bundle.World.Connected(from.ID, to) {
		return fmt.Errorf("travel %s -> %s: %w", from.ID, to, ErrNotConnected)
	}
	dest, err := g.bundle.World.Get(to)
	if err != nil {
		return fmt.Errorf("travel: %w", err)
	}
	if world.TooDangerous(dest, g.player.MaxSkill()) {
		return fmt.Errorf("%s (difficulty %d): %w", dest.Name, dest.Difficulty, ErrTooDangerous)
	}
	if err := g.player.UseEnergy(world.TravelEnergyCost(from, dest)); err != nil {
		return fmt.Errorf("travel to %s: %w", dest.Name, err)
	}

	g.player.LocationID = dest.ID
	first := g.bundle.World.MarkVisited(dest.ID)
	g.logger.Info("travelled", zap.String("from", from.ID), zap.String("to", dest.ID), zap.Bool("first_visit", first))
	g.applyArrivalWeather(dest)
	g.presenter.RenderLocation(g.locationView(first))
	g.advance()
	return nil
}

func (g *Game) applyArrivalWeather(dest *world.Location) {
	c, ok := g.weather.At(dest.ID)
	if !ok {
		return
	}
	cons := c.Type.Consequences
	if cons.EnergyDrain > 0 {
		if n := int(float64(g.player.Energy) * cons.EnergyDrain); n > 0 {
			g.player.DrainEnergy(n)
			g.notify(SeverityWarning, "%s drains %d energy.", c.Type.Name, n)
		}
	}
	if cons.BandwidthLoss > 0 {
		if n := int(float64(g.player.Bandwidth) * cons.BandwidthLoss); n > 0 {
			g.player.Bandwidth -= n
			g.notify(SeverityWarning, "%s reduces your bandwidth by %d.", c.Type.Name, n)
		}
	}
}

// Rest recovers health and energy; safe locations and kind weather recover more.
//
// Postcondition: one day advances.
func (g *Game) Rest() error {
	if err := g.ready(); err != nil {
		return err
	}
	loc := g.Location()
	health, energy := unsafeRestHealth, unsafeRestEnergy
	if loc.Safe() {
		health, energy = safeRestHealth, safeRestEnergy
	}
	if c, ok := g.weather.At(loc.ID); ok {
		health = int(float64(health) * c.Type.Consequences.RestHealth)
		energy = int(float64(energy) * c.Type.Consequences.RestEnergy)
	}
	g.player.Heal(health)
	g.player.RestoreEnergy(energy)
	g.notify(SeveritySuccess, "You rest and recover %d health and %d energy.", health, energy)
	g.interruptRest(loc)
	g.advance()
	return nil
}

// interruptRest rolls the rest table and applies whatever disturbed the rest.
func (g *Game) interruptRest(loc *world.Location) {
	in := g.bundle.Rest.Roll(loc.Safe(), g.roller, player.Skills)
	if in == nil {
		return
	}
	g.notify(SeverityWarning, "However, your rest was interrupted...")
	for _, line := range in.Lines {
		g.notify(SeverityInfo, "%s", line)
	}
	p := g.player
	credits, health, energy := p.Credits(), p.Health, p.Energy
	if err := effect.Apply(in.Effects, g.target(), "rest:"+in.Kind); err != nil {
		g.logger.Warn("rest interruption partially applied", zap.String("kind", in.Kind), zap.Error(err))
	}
	if d := p.Credits() - credits; d > 0 {
		g.notify(SeveritySuccess, "You found %.0f cloud credits!", d)
	}
	if d := p.Health - health; d > 0 {
		g.notify(SeveritySuccess, "+%d health", d)
	}
	if d := p.Energy - energy; d > 0 {
		g.notify(SeveritySuccess, "+%d energy", d)
	}
	g.logger.Info("rest interrupted", zap.String("kind", in.Kind), zap.Int("day", g.day))
}

// StartQuest accepts a quest offered at the current location.
//
// Postcondition: On error nothing changed. No day passes.
func (g *Game) StartQuest(id string) error {
	if err := g.ready(); err != nil {
		return err
	}
	if err := g.quests.Start(id, g.target(), g.player.LocationID); err != nil {
		return err
	}
	d, _ := g.quests.Def(id)
	g.journal(SeverityInfo, "Quest accepted: %s", d.Title)
	return nil
}

// AvailableQuests lists the quests that can be accepted here.
func (g *Game) AvailableQuests() []*quest.Def {
	return g.quests.Available(g.target(), g.player.LocationID)
}

// UseConsumable consumes one unit of id. Effects that act on a service need
// serviceID to name an online service.
//
// Postcondition: On error nothing changed. No day passes.
func (g *Game) UseConsumable(id, serviceID string) error {
	if err := g.ready(); err != nil {
		return err
	}
	def, ok := g.bundle.Items.Consumable(id)
	if !ok {
		return fmt.Errorf("consumable %q: %w", id, ErrUnknownTemplate)
	}
	if g.player.Inventory.ConsumableCount(id) == 0 {
		return fmt.Errorf("%s: %w", def.Name, inventory.ErrNoConsumable)
	}
	t := g.target()
	if def.Effects.NeedsService() {
		s, err := g.onlineService(serviceID)
		if err != nil {
			return fmt.Errorf("using %s: %w", def.Name, err)
		}
		t = g.targetService(s)
	}
	if err := g.player.Inventory.TakeConsumable(id); err != nil {
		return err
	}
	if err := effect.Apply(def.Effects, t, def.Name); err != nil {
		if errors.Is(err, inventory.ErrInventoryFull) {
			g.notify(SeverityWarning, "Some of %s was lost: inventory full.", def.Name)
		}
		g.logger.Warn("consumable partially applied", zap.String("consumable", id), zap.Error(err))
	}
	g.notify(SeveritySuccess, "Used %s.", def.Name)
	return nil
}
