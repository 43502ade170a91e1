package world

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// ErrLocationNotFound is returned when a location id is unknown.
var ErrLocationNotFound = errors.New("location not found")

// Neighbor describes one reachable location.
type Neighbor struct {
	ID         string
	Name       string
	Difficulty int
}

// Graph provides access to the loaded locations indexed by id.
type Graph struct {
	mu        sync.RWMutex
	locations map[string]*Location
	order     []string
	start     string
}

// NewGraph builds a Graph from locs. start names the starting location; when
// empty the first location is used.
//
// Precondition: locs must contain at least one location.
// Postcondition: Returns a Graph or an error listing every invalid location,
// duplicate id and dangling connection.
func NewGraph(locs []*Location, start string) (*Graph, error) {
	g := &Graph{locations: make(map[string]*Location, len(locs))}
	var errs []string
	for _, l := range locs {
		if err := l.Validate(); err != nil {
			errs = append(errs, err.Error())
		}
		if _, dup := g.locations[l.ID]; dup {
			errs = append(errs, fmt.Sprintf("duplicate location id %q", l.ID))
			continue
		}
		if l.Discovered == nil {
			l.Discovered = make(map[string]bool)
		}
		g.locations[l.ID] = l
		g.order = append(g.order, l.ID)
	}
	for _, id := range g.order {
		for _, c := range g.locations[id].Connections {
			if _, ok := g.locations[c]; !ok {
				errs = append(errs, fmt.Sprintf("location %q: connection targets unknown location %q", id, c))
			}
		}
	}
	if len(g.order) == 0 {
		errs = append(errs, "no locations defined")
	}
	if start == "" && len(g.order) > 0 {
		start = g.order[0]
	}
	if _, ok := g.locations[start]; !ok && len(g.order) > 0 {
		errs = append(errs, fmt.Sprintf("start location %q not found", start))
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	g.start = start
	return g, nil
}

// Get returns the location with the given id.
//
// Postcondition: Returns ErrLocationNotFound for an unknown id.
func (g *Graph) Get(id string) (*Location, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	l, ok := g.locations[id]
	if !ok {
		return nil, fmt.Errorf("%q: %w", id, ErrLocationNotFound)
	}
	return l, nil
}

// Neighbors returns the locations reachable in one hop from id, in declared order.
func (g *Graph) Neighbors(id string) ([]Neighbor, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	l, ok := g.locations[id]
	if !ok {
		return nil, fmt.Errorf("%q: %w", id, ErrLocationNotFound)
	}
	out := make([]Neighbor, 0, len(l.Connections))
	for _, c := range l.Connections {
		n := g.locations[c]
		out = append(out, Neighbor{ID: n.ID, Name: n.Name, Difficulty: n.Difficulty})
	}
	return out, nil
}

// Connected reports whether to is a direct neighbour of from.
func (g *Graph) Connected(from, to string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	l, ok := g.locations[from]
	return ok && l.ConnectsTo(to)
}

// MarkVisited flags id as visited and reports whether this was the first visit.
func (g *Graph) MarkVisited(id string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	l, ok := g.locations[id]
	if !ok || l.Visited {
		return false
	}
	l.Visited = true
	return true
}

// Discover records that secret was found at id and reports whether it was new.
func (g *Graph) Discover(id, secret string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	l, ok := g.locations[id]
	if !ok || l.Discovered[secret] {
		return false
	}
	l.Discovered[secret] = true
	return true
}

// Start returns the starting location.
func (g *Graph) Start() *Location {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.locations[g.start]
}

// All returns every location in declaration order.
//
// Postcondition: Returns a non-nil slice.
func (g *Graph) All() []*Location {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]*Location, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.locations[id])
	}
	return out
}

// Len returns the number of locations.
func (g *Graph) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.order)
}

// State is the serialisable exploration state of the world.
type State struct {
	Visited    []string            `yaml:"visited"`
	Discovered map[string][]string `yaml:"discovered"`
}

// State captures visited flags and discovered secrets.
func (g *Graph) State() State {
	g.mu.RLock()
	defer g.mu.RUnlock()
	st := State{Discovered: make(map[string][]string)}
	for _, id := range g.order {
		l := g.locations[id]
		if l.Visited {
			st.Visited = append(st.Visited, id)
		}
		if len(l.Discovered) > 0 {
			secrets := make([]string, 0, len(l.Discovered))
			for s := range l.Discovered {
				secrets = append(secrets, s)
			}
			sort.Strings(secrets)
			st.Discovered[id] = secrets
		}
	}
	return st
}

// Restore applies st to the graph, resetting any prior exploration state.
//
// Postcondition: Returns an error naming the first unknown location id.
func (g *Graph) Restore(st State) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, id := range st.Visited {
		if _, ok := g.locations[id]; !ok {
			return fmt.Errorf("restoring visited: %q: %w", id, ErrLocationNotFound)
		}
	}
	for id := range st.Discovered {
		if _, ok := g.locations[id]; !ok {
			return fmt.Errorf("restoring secrets: %q: %w", id, ErrLocationNotFound)
		}
	}
	for _, l := range g.locations {
		l.Visited = false
		l.Discovered = make(map[string]bool)
	}
	for _, id := range st.Visited {
		g.locations[id].Visited = true
	}
	for id, secrets := range st.Discovered {
		for _, s := range secrets {
			g.locations[id].Discovered[s] = true
		}
	}
	return nil
}
