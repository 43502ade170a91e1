package engine

import (
	"bytes"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/cloudranger/internal/game/content"
	"github.com/cory-johannsen/cloudranger/internal/game/dice"
	"github.com/cory-johannsen/cloudranger/internal/game/event"
	"github.com/cory-johannsen/cloudranger/internal/game/player"
	"github.com/cory-johannsen/cloudranger/internal/game/weather"
	"github.com/cory-johannsen/cloudranger/internal/game/world"
)

// SnapshotVersion is the current snapshot schema version.
const SnapshotVersion = 1

// ErrSnapshotVersion is returned when decoding a snapshot from another schema.
var ErrSnapshotVersion = errors.New("unsupported snapshot version")

// Snapshot is the complete serialisable state of a playthrough.
type Snapshot struct {
	Version      int                          `yaml:"version"`
	Day          int                          `yaml:"day"`
	Difficulty   string                       `yaml:"difficulty"`
	VictoryQuest string                       `yaml:"victory_quest"`
	Outcome      Outcome                      `yaml:"outcome"`
	Player       player.State                 `yaml:"player"`
	Quests       map[string][]string          `yaml:"quests"`
	Events       map[string]event.State       `yaml:"events"`
	Weather      map[string]weather.SiteState `yaml:"weather"`
	World        world.State                  `yaml:"world"`
}

// Snapshot captures the playthrough.
func (g *Game) Snapshot() Snapshot {
	return Snapshot{
		Version:      SnapshotVersion,
		Day:          g.day,
		Difficulty:   g.diff.Name,
		VictoryQuest: g.victoryQuest,
		Outcome:      g.outcome,
		Player:       g.player.State(),
		Quests:       g.quests.State(),
		Events:       g.events.State(),
		Weather:      g.weather.State(),
		World:        g.bundle.World.State(),
	}
}

// Restore rebuilds a playthrough from snap over a freshly loaded bundle.
//
// Precondition: b must be a validated bundle not used by another Game.
// Postcondition: Returns an error naming the first reference snap makes that
// b does not define.
func Restore(b *content.Bundle, snap Snapshot, roller *dice.Roller, presenter Presenter, logger *zap.Logger) (*Game, error) {
	if snap.Version != SnapshotVersion {
		return nil, fmt.Errorf("restoring snapshot v%d: %w", snap.Version, ErrSnapshotVersion)
	}
	diff, err := player.DifficultyByName(snap.Difficulty)
	if err != nil {
		return nil, fmt.Errorf("restoring snapshot: %w", err)
	}
	p, err := player.Restore(snap.Player, player.Catalogs{Items: b.Items, Services: b.Services, Statuses: b.Statuses})
	if err != nil {
		return nil, fmt.Errorf("restoring snapshot: %w", err)
	}
	if _, err := b.World.Get(p.LocationID); err != nil {
		return nil, fmt.Errorf("restoring snapshot: player location: %w", err)
	}
	g, err := assemble(b, p, diff, snap.VictoryQuest, roller, presenter, logger)
	if err != nil {
		return nil, fmt.Errorf("restoring snapshot: %w", err)
	}
	if err := b.World.Restore(snap.World); err != nil {
		return nil, fmt.Errorf("restoring snapshot: %w", err)
	}
	if err := g.quests.Restore(snap.Quests); err != nil {
		return nil, fmt.Errorf("restoring snapshot: %w", err)
	}
	if err := g.events.Restore(snap.Events); err != nil {
		return nil, fmt.Errorf("restoring snapshot: %w", err)
	}
	if err := g.weather.Restore(snap.Weather); err != nil {
		return nil, fmt.Errorf("restoring snapshot: %w", err)
	}
	g.day = max(1, snap.Day)
	g.outcome = snap.Outcome
	g.logger.Info("game restored", zap.String("player", p.Name), zap.Int("day", g.day))
	return g, nil
}

// Marshal encodes s as YAML.
func (s Snapshot) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return nil, fmt.Errorf("encoding snapshot: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encoding snapshot: %w", err)
	}
	return buf.Bytes(), nil
}

// UnmarshalSnapshot decodes a YAML snapshot, rejecting unknown fields.
func UnmarshalSnapshot(data []byte) (Snapshot, error) {
	var s Snapshot
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return Snapshot{}, fmt.Errorf("decoding snapshot: %w", err)
	}
	if s.Version != SnapshotVersion {
		return Snapshot{}, fmt.Errorf("decoding snapshot v%d: %w", s.Version, ErrSnapshotVersion)
	}
	return s, nil
}
