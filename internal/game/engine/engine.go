// Package engine runs a Cloud Ranger playthrough: it validates player actions,
// advances the day and resolves the per-turn tick across every game subsystem.
package engine

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/cloudranger/internal/game/content"
	"github.com/cory-johannsen/cloudranger/internal/game/dice"
	"github.com/cory-johannsen/cloudranger/internal/game/event"
	"github.com/cory-johannsen/cloudranger/internal/game/inventory"
	"github.com/cory-johannsen/cloudranger/internal/game/player"
	"github.com/cory-johannsen/cloudranger/internal/game/quest"
	"github.com/cory-johannsen/cloudranger/internal/game/service"
	"github.com/cory-johannsen/cloudranger/internal/game/vendor"
	"github.com/cory-johannsen/cloudranger/internal/game/weather"
	"github.com/cory-johannsen/cloudranger/internal/game/world"
)

var (
	// ErrGameOver is returned by every action once the playthrough has ended.
	ErrGameOver = errors.New("game is over")
	// ErrTooDangerous is returned when the destination outclasses every skill.
	ErrTooDangerous = errors.New("destination too dangerous")
	// ErrNotConnected is returned when travelling to a location with no direct route.
	ErrNotConnected = errors.New("no route to destination")
	// ErrArtifactCooling is returned when using an artifact still on cooldown.
	ErrArtifactCooling = inventory.ErrArtifactCooling
	// ErrNoServiceTarget is returned when an effect needs an online service and none was given.
	ErrNoServiceTarget = errors.New("no online service to target")
	// ErrUnknownTemplate is returned for an id missing from the content catalogs.
	ErrUnknownTemplate = errors.New("unknown template")
	// ErrVendorElsewhere is returned when trading with a vendor at another location.
	ErrVendorElsewhere = errors.New("vendor is not at this location")
)

// Terminal reasons, checked in this order.
const (
	ReasonTimeExpired = "You have run out of time! The Shadow Admin's plans have succeeded."
	ReasonInjured     = "You have been critically injured and can no longer continue."
	ReasonBankrupt    = "You've run out of resources and can no longer continue your mission."
	ReasonVictory     = "You have unmasked the Shadow Admin and saved Cloud City!"
)

const (
	exploreEnergy  = 10
	recoverHealth  = 2
	recoverEnergy  = 5
	victoryBonus   = 1000
	questScore     = 100
	clueScore      = 10
	defaultVictory = "shadow_admin"
)

// Options selects the preset for a new playthrough.
type Options struct {
	Difficulty     string
	Specialization string
	PlayerName     string
	// VictoryQuest is the quest whose completion wins the game.
	VictoryQuest string
}

// Outcome is the terminal state of a playthrough.
type Outcome struct {
	Over   bool   `yaml:"over"`
	Won    bool   `yaml:"won"`
	Reason string `yaml:"reason"`
}

// Game is one playthrough. It is not safe for concurrent use; the session
// drives it from a single goroutine.
type Game struct {
	bundle    *content.Bundle
	player    *player.Player
	diff      player.Difficulty
	quests    *quest.Ledger
	events    *event.Resolver
	weather   *weather.Tracker
	market    *vendor.Market
	lifecycle *service.Lifecycle
	roller    *dice.Roller
	presenter Presenter
	logger    *zap.Logger

	victoryQuest string
	day          int
	outcome      Outcome
}

// New starts a playthrough over b with a fresh player at the start location.
//
// Precondition: b must be a validated bundle not used by another Game.
// Postcondition: Returns a running Game on day 1, or an error naming the bad option.
func New(b *content.Bundle, opts Options, roller *dice.Roller, presenter Presenter, logger *zap.Logger) (*Game, error) {
	diff, err := player.DifficultyByName(opts.Difficulty)
	if err != nil {
		return nil, fmt.Errorf("new game: %w", err)
	}
	spec, err := player.SpecializationByID(opts.Specialization)
	if err != nil {
		return nil, fmt.Errorf("new game: %w", err)
	}
	name := opts.PlayerName
	if name == "" {
		name = "Ranger"
	}
	p := player.New(name, spec, diff, b.World.Start().ID)
	for _, id := range diff.StarterArtifacts {
		def, ok := b.Items.Artifact(id)
		if !ok {
			return nil, fmt.Errorf("new game: starter artifact %q: %w", id, ErrUnknownTemplate)
		}
		if err := p.Inventory.AddArtifact(inventory.NewArtifact(def, roller.UUID("artifact id "+id))); err != nil {
			return nil, fmt.Errorf("new game: %w", err)
		}
	}
	g, err := assemble(b, p, diff, opts.VictoryQuest, roller, presenter, logger)
	if err != nil {
		return nil, err
	}
	g.day = 1
	b.World.MarkVisited(p.LocationID)
	g.logger.Info("game started",
		zap.String("player", p.Name),
		zap.String("difficulty", diff.Name),
		zap.String("specialization", spec.ID),
	)
	return g, nil
}

// assemble builds the subsystems shared by New and Restore.
func assemble(b *content.Bundle, p *player.Player, diff player.Difficulty, victory string, roller *dice.Roller, presenter Presenter, logger *zap.Logger) (*Game, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if presenter == nil {
		presenter = nopPresenter{}
	}
	if victory == "" {
		victory = defaultVictory
	}
	quests, err := quest.NewLedger(b.Quests, logger)
	if err != nil {
		return nil, fmt.Errorf("building quest ledger: %w", err)
	}
	if _, ok := quests.Def(victory); !ok {
		return nil, fmt.Errorf("victory quest %q: %w", victory, quest.ErrQuestNotFound)
	}
	events, err := event.NewResolver(b.Events, roller, logger)
	if err != nil {
		return nil, fmt.Errorf("building event resolver: %w", err)
	}
	market, err := vendor.NewMarket(b.Vendors, b.Items, b.Services, logger)
	if err != nil {
		return nil, fmt.Errorf("building market: %w", err)
	}
	return &Game{
		bundle:       b,
		player:       p,
		diff:         diff,
		quests:       quests,
		events:       events,
		weather:      weather.NewTracker(b.World.All(), roller, logger),
		market:       market,
		lifecycle:    service.NewLifecycle(roller, logger),
		roller:       roller,
		presenter:    presenter,
		logger:       logger,
		victoryQuest: victory,
	}, nil
}

// Day returns the current day, starting at 1.
func (g *Game) Day() int { return g.day }

// Player returns the ranger. Callers must not mutate it outside engine actions.
func (g *Game) Player() *player.Player { return g.player }

// Outcome returns the terminal state; Over is false while the game runs.
func (g *Game) Outcome() Outcome { return g.outcome }

// Difficulty returns the preset the game was started with.
func (g *Game) Difficulty() player.Difficulty { return g.diff }

// Location returns the ranger's current location.
func (g *Game) Location() *world.Location {
	l, err := g.bundle.World.Get(g.player.LocationID)
	if err != nil {
		// The location id is validated on travel and restore.
		panic(fmt.Sprintf("engine: player at unknown location %q", g.player.LocationID))
	}
	return l
}

// Weather returns the condition at the current location.
func (g *Game) Weather() (weather.Condition, bool) {
	return g.weather.At(g.player.LocationID)
}

// Neighbors lists the locations reachable from here.
func (g *Game) Neighbors() []world.Neighbor {
	n, _ := g.bundle.World.Neighbors(g.player.LocationID)
	return n
}

// Quests returns the quest ledger for read access.
func (g *Game) Quests() *quest.Ledger { return g.quests }

// Bundle returns the content the game runs on.
func (g *Game) Bundle() *content.Bundle { return g.bundle }

// Score is credits plus quest, clue and victory bonuses.
func (g *Game) Score() int {
	s := int(g.player.Credits()) + questScore*len(g.player.CompletedQuests()) + clueScore*g.player.ClueCount()
	if g.outcome.Won {
		s += victoryBonus
	}
	return s
}

func (g *Game) ready() error {
	if g.outcome.Over {
		return ErrGameOver
	}
	return nil
}

func (g *Game) notify(sev Severity, format string, args ...any) {
	g.presenter.Notify(fmt.Sprintf(format, args...), sev)
}

// journal records text in the player's event log and shows it.
func (g *Game) journal(sev Severity, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	g.player.LogEvent(g.day, msg)
	g.presenter.Notify(msg, sev)
}
