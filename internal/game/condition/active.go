package condition

import (
	"fmt"
	"sort"
)

// ActiveStatus tracks one applied status on an entity.
type ActiveStatus struct {
	Def       *StatusDef
	Remaining int
}

// Tick is one per-turn effect produced by ActiveSet.Tick.
type Tick struct {
	StatusID  string
	Name      string
	Kind      TickKind
	Magnitude int
}

// Entry is the serialisable form of one active status.
type Entry struct {
	ID        string `yaml:"id"`
	Remaining int    `yaml:"remaining"`
}

// ActiveSet tracks all statuses currently applied to one entity.
// It is not safe for concurrent use; the caller must serialise access.
type ActiveSet struct {
	statuses map[string]*ActiveStatus
}

// NewActiveSet creates an empty ActiveSet.
func NewActiveSet() *ActiveSet {
	return &ActiveSet{statuses: make(map[string]*ActiveStatus)}
}

// Apply adds def to the set or refreshes its remaining duration.
//
// Precondition: def must not be nil.
// Postcondition: Has(def.ID) is true; Remaining is max(existing, def.Duration).
func (s *ActiveSet) Apply(def *StatusDef) error {
	if def == nil {
		return fmt.Errorf("Apply: def must not be nil")
	}
	if existing, ok := s.statuses[def.ID]; ok {
		if def.Duration > existing.Remaining {
			existing.Remaining = def.Duration
		}
		return nil
	}
	s.statuses[def.ID] = &ActiveStatus{Def: def, Remaining: def.Duration}
	return nil
}

// Remove deletes the status with the given ID. Missing ids are a no-op.
//
// Postcondition: Has(id) is false.
func (s *ActiveSet) Remove(id string) {
	delete(s.statuses, id)
}

// Tick emits the per-turn effect of every active status, then decrements
// durations and removes statuses that reach zero.
//
// Postcondition: For every id in expired, Has(id) is false. Ticks and expired
// are ordered by status ID.
func (s *ActiveSet) Tick() (ticks []Tick, expired []string) {
	for _, id := range s.ids() {
		as := s.statuses[id]
		if as.Def.PerTurn.Kind != TickNone {
			ticks = append(ticks, Tick{
				StatusID:  id,
				Name:      as.Def.Name,
				Kind:      as.Def.PerTurn.Kind,
				Magnitude: as.Def.PerTurn.Magnitude,
			})
		}
		as.Remaining--
		if as.Remaining <= 0 {
			expired = append(expired, id)
			delete(s.statuses, id)
		}
	}
	return ticks, expired
}

// Has reports whether the status with id is currently active.
func (s *ActiveSet) Has(id string) bool {
	_, ok := s.statuses[id]
	return ok
}

// HasFlag reports whether any active status carries flag.
func (s *ActiveSet) HasFlag(flag string) bool {
	for _, as := range s.statuses {
		if as.Def.HasFlag(flag) {
			return true
		}
	}
	return false
}

// Len returns the number of active statuses.
func (s *ActiveSet) Len() int { return len(s.statuses) }

// All returns the active statuses ordered by ID. The pointed-to values are
// shared and must not be modified.
func (s *ActiveSet) All() []*ActiveStatus {
	out := make([]*ActiveStatus, 0, len(s.statuses))
	for _, id := range s.ids() {
		out = append(out, s.statuses[id])
	}
	return out
}

// Entries returns the serialisable form of the set, ordered by ID.
func (s *ActiveSet) Entries() []Entry {
	out := make([]Entry, 0, len(s.statuses))
	for _, id := range s.ids() {
		out = append(out, Entry{ID: id, Remaining: s.statuses[id].Remaining})
	}
	return out
}

// Restore rebuilds an ActiveSet from entries.
//
// Postcondition: Returns an error if any entry names a status unknown to reg.
func Restore(reg *Registry, entries []Entry) (*ActiveSet, error) {
	s := NewActiveSet()
	for _, e := range entries {
		def, ok := reg.Get(e.ID)
		if !ok {
			return nil, fmt.Errorf("restoring status: unknown id %q", e.ID)
		}
		s.statuses[e.ID] = &ActiveStatus{Def: def, Remaining: e.Remaining}
	}
	return s, nil
}

func (s *ActiveSet) ids() []string {
	ids := make([]string, 0, len(s.statuses))
	for id := range s.statuses {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
