package engine

import (
	"github.com/cory-johannsen/cloudranger/internal/game/player"
	"github.com/cory-johannsen/cloudranger/internal/game/world"
)

// Severity classifies a notification for the presenter.
type Severity int

const (
	SeverityInfo Severity = iota
	SeveritySuccess
	SeverityWarning
	SeverityError
)

// String returns the lower-case severity name.
func (s Severity) String() string {
	switch s {
	case SeveritySuccess:
		return "success"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "info"
	}
}

// Presenter renders what the engine reports. The engine never formats colors;
// everything visual belongs to the implementation.
type Presenter interface {
	Notify(msg string, sev Severity)
	RenderLocation(v LocationView)
	RenderStatus(v StatusView)
}

// WeatherView is the weather shown with a location.
type WeatherView struct {
	Name     string
	Severity string
	Effect   string
}

// VendorView names a vendor at a location.
type VendorView struct {
	ID   string
	Name string
}

// LocationView is everything the presenter needs to draw a location.
type LocationView struct {
	ID          string
	Name        string
	Description string
	Region      string
	Difficulty  int
	FirstVisit  bool
	Weather     *WeatherView
	Neighbors   []world.Neighbor
	Vendors     []VendorView
}

// Stat is one named level.
type Stat struct {
	Name  string
	Value int
}

// StatusView is the ranger's dashboard.
type StatusView struct {
	Name           string
	Specialization string
	Location       string
	Day            int
	TimeLeft       int
	Health         int
	MaxHealth      int
	Energy         int
	MaxEnergy      int
	Bandwidth      int
	Credits        float64
	Skills         []Stat
	Reputation     []Stat
	Statuses       []string
	Artifacts      int
	Blueprints     int
	Services       int
	Clues          int
	ActiveQuests   []string
	Achievements   []string
}

type nopPresenter struct{}

func (nopPresenter) Notify(string, Severity)     {}
func (nopPresenter) RenderLocation(LocationView) {}
func (nopPresenter) RenderStatus(StatusView)     {}

// Look renders the current location without spending a turn.
func (g *Game) Look() {
	g.presenter.RenderLocation(g.locationView(false))
}

// ShowStatus renders the ranger's dashboard without spending a turn.
func (g *Game) ShowStatus() {
	g.presenter.RenderStatus(g.Status())
}

// Status builds the dashboard view.
func (g *Game) Status() StatusView {
	p := g.player
	v := StatusView{
		Name:         p.Name,
		Location:     g.Location().Name,
		Day:          g.day,
		TimeLeft:     p.TimeLeft - g.day,
		Health:       p.Health,
		MaxHealth:    p.MaxHealth,
		Energy:       p.Energy,
		MaxEnergy:    p.MaxEnergy,
		Bandwidth:    p.Bandwidth,
		Credits:      p.Credits(),
		Artifacts:    len(p.Inventory.Artifacts()),
		Blueprints:   len(p.Inventory.Blueprints()),
		Services:     len(p.Inventory.Deployed()),
		Clues:        p.ClueCount(),
		ActiveQuests: p.ActiveQuests(),
		Achievements: p.Achievements(),
	}
	if spec, err := player.SpecializationByID(p.Specialization); err == nil {
		v.Specialization = spec.Name
	}
	for _, s := range player.Skills {
		v.Skills = append(v.Skills, Stat{Name: s, Value: p.Skill(s)})
	}
	for _, f := range player.Factions {
		v.Reputation = append(v.Reputation, Stat{Name: f, Value: p.Reputation(f)})
	}
	for _, st := range p.Statuses.All() {
		v.Statuses = append(v.Statuses, st.Def.Name)
	}
	return v
}

func (g *Game) locationView(first bool) LocationView {
	l := g.Location()
	v := LocationView{
		ID:          l.ID,
		Name:        l.Name,
		Description: l.Description,
		Region:      l.Region,
		Difficulty:  l.Difficulty,
		FirstVisit:  first,
		Neighbors:   g.Neighbors(),
	}
	if c, ok := g.weather.At(l.ID); ok {
		v.Weather = &WeatherView{Name: c.Type.Name, Severity: c.Severity.Name, Effect: c.Type.Effect}
	}
	for _, d := range g.market.At(l.ID) {
		v.Vendors = append(v.Vendors, VendorView{ID: d.ID, Name: d.Name})
	}
	return v
}
