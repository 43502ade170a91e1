package weather

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/cloudranger/internal/game/dice"
	"github.com/cory-johannsen/cloudranger/internal/game/world"
)

const regionalChance = 70

// Condition is the current weather at one location.
type Condition struct {
	Type     Type
	Severity Severity
	// Duration is the number of ticks until the weather changes.
	Duration int
}

// Change reports a location whose weather rolled over during a tick.
type Change struct {
	LocationID string
	Condition  Condition
}

type site struct {
	id         string
	region     string
	difficulty int
	cond       Condition
}

// Tracker holds the weather at every location.
type Tracker struct {
	sites  []*site
	byID   map[string]*site
	roller *dice.Roller
	logger *zap.Logger
}

// NewTracker rolls the opening weather for every location in locs.
//
// Precondition: roller must be non-nil.
func NewTracker(locs []*world.Location, roller *dice.Roller, logger *zap.Logger) *Tracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	t := &Tracker{byID: make(map[string]*site, len(locs)), roller: roller, logger: logger}
	for _, l := range locs {
		s := &site{id: l.ID, region: l.Region, difficulty: l.Difficulty}
		s.cond.Type = t.rollType(s)
		s.cond.Severity = t.rollSeverity(s)
		s.cond.Duration = t.roller.Between("weather duration", 2, 5)
		t.sites = append(t.sites, s)
		t.byID[s.id] = s
	}
	return t
}

// At returns the weather at location id.
func (t *Tracker) At(id string) (Condition, bool) {
	s, ok := t.byID[id]
	if !ok {
		return Condition{}, false
	}
	return s.cond, true
}

// Tick decrements every duration and rolls new weather where it expired.
//
// Postcondition: every Condition has Duration >= 1.
func (t *Tracker) Tick() []Change {
	var changes []Change
	for _, s := range t.sites {
		s.cond.Duration--
		if s.cond.Duration > 0 {
			continue
		}
		s.cond.Type = t.rollType(s)
		s.cond.Duration = t.roller.Between("weather duration", 2, 5)
		s.cond.Severity = t.rollSeverity(s)
		t.logger.Debug("weather changed",
			zap.String("location", s.id),
			zap.String("weather", s.cond.Type.Name),
			zap.Int("duration", s.cond.Duration),
		)
		changes = append(changes, Change{LocationID: s.id, Condition: s.cond})
	}
	return changes
}

func (t *Tracker) rollType(s *site) Type {
	if t.roller.Chance("regional weather", regionalChance) {
		ks := Tendencies(s.region)
		if ty, ok := Lookup(ks[t.roller.Pick("regional weather type", len(ks))]); ok {
			return ty
		}
	}
	return types[t.roller.Pick("weather type", len(types))]
}

func (t *Tracker) rollSeverity(s *site) Severity {
	return SeverityLevel(s.difficulty/2 + t.roller.Between("weather severity", -1, 1))
}

// SiteState is the serialisable weather at one location.
type SiteState struct {
	Kind     Kind `yaml:"kind"`
	Severity int  `yaml:"severity"`
	Duration int  `yaml:"duration"`
}

// State returns the weather at every location keyed by location id.
func (t *Tracker) State() map[string]SiteState {
	out := make(map[string]SiteState, len(t.sites))
	for _, s := range t.sites {
		out[s.id] = SiteState{Kind: s.cond.Type.Kind, Severity: s.cond.Severity.Level, Duration: s.cond.Duration}
	}
	return out
}

// Restore replaces the weather at each location named in st.
//
// Postcondition: Returns an error for an unknown location or weather kind; on
// error the tracker is unchanged.
func (t *Tracker) Restore(st map[string]SiteState) error {
	conds := make(map[string]Condition, len(st))
	for id, ss := range st {
		if _, ok := t.byID[id]; !ok {
			return fmt.Errorf("restoring weather: unknown location %q", id)
		}
		ty, ok := Lookup(ss.Kind)
		if !ok {
			return fmt.Errorf("restoring weather at %q: unknown kind %q", id, ss.Kind)
		}
		conds[id] = Condition{Type: ty, Severity: SeverityLevel(ss.Severity), Duration: max(1, ss.Duration)}
	}
	for id, c := range conds {
		t.byID[id].cond = c
	}
	return nil
}
