package service

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/cory-johannsen/cloudranger/internal/game/condition"
	"github.com/cory-johannsen/cloudranger/internal/game/dice"
)

const (
	baseIncidentChance = 5
	minIncidentChance  = 1
	breachClueOdds     = 3
)

// Incident kinds rolled by the daily tick.
const (
	EventHealthHit       = "health_hit"
	EventPerformanceDrop = "performance_drop"
	EventSecurityBreach  = "security_breach"
	EventCostSpike       = "cost_spike"
)

var incidentKinds = []string{EventHealthHit, EventPerformanceDrop, EventSecurityBreach, EventCostSpike}

// TickContext carries the world state a service tick depends on.
type TickContext struct {
	// Multiplier scales incident chance and severity (0.7 easy, 1.0 normal, 1.3 hard).
	Multiplier float64
	// LocationDifficulty is the difficulty of the player's current location.
	LocationDifficulty int
	// MemoryFrost is set while the local weather freezes performance.
	MemoryFrost bool
	Day         int
}

// Notice describes one thing that happened to a service during a tick.
type Notice struct {
	InstanceID string
	Name       string
	Kind       string
	Amount     float64
	Failed     bool
}

// Report aggregates the outcome of one lifecycle tick.
type Report struct {
	Income  float64
	Costs   float64
	Spikes  float64
	Failed  []*Service
	Clues   []string
	Notices []Notice
}

// Net is the credit change the tick produces.
func (r Report) Net() float64 { return r.Income - r.Costs - r.Spikes }

// Lifecycle advances deployed services by one day.
type Lifecycle struct {
	roller *dice.Roller
	logger *zap.Logger
}

// NewLifecycle creates a Lifecycle rolling with roller.
//
// Precondition: roller must be non-nil.
func NewLifecycle(roller *dice.Roller, logger *zap.Logger) *Lifecycle {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Lifecycle{roller: roller, logger: logger}
}

// Tick updates every online service: uptime and statuses, income and costs,
// then an incident roll. Offline services are skipped.
//
// Postcondition: Every service in Report.Failed has Deployed == false and Health == 0.
func (lc *Lifecycle) Tick(services []*Service, ctx TickContext) Report {
	var rep Report
	mult := ctx.Multiplier
	if mult <= 0 {
		mult = 1
	}
	for _, s := range services {
		if !s.Deployed {
			continue
		}
		s.UptimeDays++
		if lc.tickStatuses(s, ctx.Day, &rep) {
			continue
		}

		rep.Income += s.DailyIncome()
		rep.Costs += s.DailyCost()

		if ctx.MemoryFrost {
			s.DegradePerformance(1)
		}

		chance := baseIncidentChance + s.UptimeDays/10 - s.SecurityLevel + ctx.LocationDifficulty/2
		threshold := max(minIncidentChance, int(float64(chance)*mult))
		if lc.roller.Chance("service incident "+s.InstanceID, threshold) {
			lc.incident(s, ctx, mult, &rep)
		}
	}
	lc.logger.Info("services ticked",
		zap.Int("day", ctx.Day),
		zap.Float64("income", rep.Income),
		zap.Float64("costs", rep.Costs),
		zap.Float64("spikes", rep.Spikes),
		zap.Int("failed", len(rep.Failed)),
	)
	return rep
}

// tickStatuses applies service-side status ticks and reports whether the service failed.
func (lc *Lifecycle) tickStatuses(s *Service, day int, rep *Report) bool {
	if s.Statuses == nil {
		s.Statuses = condition.NewActiveSet()
		return false
	}
	ticks, _ := s.Statuses.Tick()
	for _, t := range ticks {
		switch t.Kind {
		case condition.TickServiceDamage:
			if lc.damage(s, t.Magnitude, day, t.StatusID, rep) {
				return true
			}
		case condition.TickServicePerformance:
			if n := s.DegradePerformance(t.Magnitude); n > 0 {
				rep.Notices = append(rep.Notices, Notice{InstanceID: s.InstanceID, Name: s.Name, Kind: t.StatusID, Amount: float64(n)})
			}
		}
	}
	return false
}

func (lc *Lifecycle) damage(s *Service, amount, day int, kind string, rep *Report) bool {
	failed := s.ApplyDamage(amount, day)
	rep.Notices = append(rep.Notices, Notice{InstanceID: s.InstanceID, Name: s.Name, Kind: kind, Amount: float64(amount), Failed: failed})
	if failed {
		rep.Failed = append(rep.Failed, s)
		lc.logger.Info("service failed", zap.String("instance_id", s.InstanceID), zap.String("cause", kind))
	}
	return failed
}

func (lc *Lifecycle) incident(s *Service, ctx TickContext, mult float64, rep *Report) {
	kind := incidentKinds[lc.roller.Pick("incident kind", len(incidentKinds))]
	diff := ctx.LocationDifficulty
	switch kind {
	case EventHealthHit:
		dmg := max(1, int(float64(lc.roller.Between("health hit", 5, 15)+diff)*mult))
		lc.damage(s, dmg, ctx.Day, EventHealthHit, rep)

	case EventPerformanceDrop:
		drop := max(1, int(float64(lc.severity("performance drop"))*mult))
		if s.Performance > MinLevel {
			n := s.DegradePerformance(drop)
			s.Incidents = append(s.Incidents, Incident{Type: IncidentPerformance, Amount: float64(n), Day: ctx.Day})
			rep.Notices = append(rep.Notices, Notice{InstanceID: s.InstanceID, Name: s.Name, Kind: kind, Amount: float64(n)})
		}

	case EventSecurityBreach:
		breach := max(1, int(float64(MaxLevel-s.SecurityLevel+diff)*mult))
		if lc.roller.Between("breach roll", 1, 20) > breach {
			return
		}
		if s.SecurityLevel > MinLevel {
			sev := max(1, int(float64(lc.severity("breach severity"))*mult))
			n := s.DegradeSecurity(sev)
			s.Incidents = append(s.Incidents, Incident{Type: IncidentSecurity, Amount: float64(n), Day: ctx.Day})
			rep.Notices = append(rep.Notices, Notice{InstanceID: s.InstanceID, Name: s.Name, Kind: kind, Amount: float64(n)})
			if lc.roller.Between("breach clue", 1, 10) <= breachClueOdds {
				rep.Clues = append(rep.Clues, fmt.Sprintf("breach_clue_%s_%d", s.InstanceID, lc.roller.Between("breach clue id", 100, 999)))
			}
			return
		}
		dmg := int(float64(lc.roller.Between("breach damage", 3, 8)) * mult)
		lc.damage(s, dmg, ctx.Day, EventSecurityBreach, rep)

	case EventCostSpike:
		spike := s.CostPerHour * lc.roller.Float("cost spike", 0.5, 1.5) * (float64(diff) / 5.0) * mult
		spike = math.Max(0.1, spike)
		rep.Spikes += spike
		s.Incidents = append(s.Incidents, Incident{Type: IncidentCostSpike, Amount: spike, Day: ctx.Day})
		rep.Notices = append(rep.Notices, Notice{InstanceID: s.InstanceID, Name: s.Name, Kind: kind, Amount: spike})
	}
}

// severity draws 1 with probability 2/3, otherwise 2.
func (lc *Lifecycle) severity(label string) int {
	return []int{1, 1, 2}[lc.roller.Pick(label, 3)]
}
