package event

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/cory-johannsen/cloudranger/internal/game/dice"
	"github.com/cory-johannsen/cloudranger/internal/game/effect"
)

// firePercent is the chance that anything fires when events are eligible.
const firePercent = 30

// Resolver owns every event and decides which one fires on a turn.
type Resolver struct {
	events map[string]*Event
	order  []string
	roller *dice.Roller
	logger *zap.Logger
}

// NewResolver builds a resolver over defs.
//
// Precondition: roller must be non-nil.
// Postcondition: Returns an error naming every duplicate event id.
func NewResolver(defs []*Def, roller *dice.Roller, logger *zap.Logger) (*Resolver, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Resolver{events: make(map[string]*Event, len(defs)), roller: roller, logger: logger}
	var dups []string
	for _, d := range defs {
		if _, ok := r.events[d.ID]; ok {
			dups = append(dups, d.ID)
			continue
		}
		r.events[d.ID] = &Event{Def: d}
		r.order = append(r.order, d.ID)
	}
	if len(dups) > 0 {
		return nil, fmt.Errorf("duplicate event ids: %s", strings.Join(dups, ", "))
	}
	return r, nil
}

// Get returns the event with id.
func (r *Resolver) Get(id string) (*Event, bool) {
	e, ok := r.events[id]
	return e, ok
}

// CanTrigger reports whether e may fire for s: it must be ready, its
// requirements must hold, and a percentile roll must land within its chance.
func (r *Resolver) CanTrigger(e *Event, s effect.Subject) bool {
	if !e.Ready() {
		return false
	}
	if !e.Def.Requirements.Satisfied(s) {
		return false
	}
	return r.roller.Chance("event "+e.Def.ID, e.Def.Chance)
}

// Resolve picks at most one event to fire from the location's events and the
// global events. Every eligible candidate is collected first, then a 30%
// gate decides whether any fires, then one is chosen uniformly.
//
// Postcondition: Returns nil when nothing fires. The chosen event is not yet triggered.
func (r *Resolver) Resolve(locationEvents []string, s effect.Subject) *Event {
	var candidates []*Event
	seen := make(map[string]bool)
	consider := func(id string) {
		if seen[id] {
			return
		}
		seen[id] = true
		e, ok := r.events[id]
		if !ok {
			r.logger.Warn("location lists unknown event", zap.String("event", id))
			return
		}
		if r.CanTrigger(e, s) {
			candidates = append(candidates, e)
		}
	}
	for _, id := range locationEvents {
		consider(id)
	}
	for _, id := range r.order {
		if r.events[id].Def.Global {
			consider(id)
		}
	}
	if len(candidates) == 0 || !r.roller.Chance("event gate", firePercent) {
		return nil
	}
	return candidates[r.roller.Pick("event choice", len(candidates))]
}

// Trigger applies e's effects to t and records that it fired.
//
// Postcondition: e.Occurred is true and a repeatable event with a cooldown is
// cooling down, even when some effect failed.
func (r *Resolver) Trigger(e *Event, t effect.Target) error {
	err := effect.Apply(e.Def.Effects, t, e.Def.Name)
	e.Occurred = true
	if e.Def.Cooldown > 0 {
		e.Cooldown = e.Def.Cooldown
	}
	r.logger.Info("event triggered", zap.String("event", e.Def.ID))
	if err != nil {
		return fmt.Errorf("event %q: %w", e.Def.ID, err)
	}
	return nil
}

// TickCooldowns decrements every cooling-down event by one tick.
func (r *Resolver) TickCooldowns() {
	for _, id := range r.order {
		if e := r.events[id]; e.Cooldown > 0 {
			e.Cooldown--
		}
	}
}

// State is the serialisable state of one event.
type State struct {
	Occurred bool `yaml:"occurred"`
	Cooldown int  `yaml:"cooldown"`
}

// State returns the state of every event that has fired or is cooling down.
func (r *Resolver) State() map[string]State {
	out := make(map[string]State)
	for _, id := range r.order {
		e := r.events[id]
		if e.Occurred || e.Cooldown > 0 {
			out[id] = State{Occurred: e.Occurred, Cooldown: e.Cooldown}
		}
	}
	return out
}

// Restore resets every event and applies st.
//
// Postcondition: Returns an error for an unknown event id; on error state is unchanged.
func (r *Resolver) Restore(st map[string]State) error {
	for id := range st {
		if _, ok := r.events[id]; !ok {
			return fmt.Errorf("restoring events: unknown event %q", id)
		}
	}
	for _, e := range r.events {
		e.Occurred = false
		e.Cooldown = 0
	}
	for id, s := range st {
		r.events[id].Occurred = s.Occurred
		r.events[id].Cooldown = max(0, s.Cooldown)
	}
	return nil
}
