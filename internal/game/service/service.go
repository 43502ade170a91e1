package service

import (
	"math"

	"github.com/cory-johannsen/cloudranger/internal/game/condition"
)

// Stat bounds.
const (
	MaxHealth      = 100
	MinLevel       = 1
	MaxLevel       = 10
	revenueMarkup  = 1.5
	defaultPerf    = 5
	defaultSec     = 1
	hoursPerDay    = 24
	maxUptimeBoost = 1.5
)

// Incident types recorded in a service's history.
const (
	IncidentDamage      = "damage"
	IncidentFailure     = "failure"
	IncidentPerformance = "performance"
	IncidentSecurity    = "security"
	IncidentCostSpike   = "cost_spike"
)

// Incident is one entry in the append-only incident history.
type Incident struct {
	Type   string  `yaml:"type"`
	Amount float64 `yaml:"amount"`
	Day    int     `yaml:"day"`
}

// Service is a deployed instance of a blueprint.
//
// Invariant: Health == 0 implies Deployed == false.
// Invariant: SecurityLevel and Performance stay in [1, 10]; Health in [0, 100].
type Service struct {
	InstanceID     string
	DefID          string
	Name           string
	Type           string
	Region         string
	CostPerHour    float64
	DeployCost     int
	RevenuePerHour float64
	Health         int
	SecurityLevel  int
	Performance    int
	Deployed       bool
	UptimeDays     int
	Incidents      []Incident
	Statuses       *condition.ActiveSet
}

// New creates a deployed service from def in region.
//
// Postcondition: Health == 100, SecurityLevel == 1, Performance == 5, Deployed == true.
func New(def *Def, instanceID, region string) *Service {
	return &Service{
		InstanceID:     instanceID,
		DefID:          def.ID,
		Name:           def.Name,
		Type:           def.Type,
		Region:         region,
		CostPerHour:    def.CostPerHour,
		DeployCost:     def.DeployCost,
		RevenuePerHour: def.CostPerHour * revenueMarkup,
		Health:         MaxHealth,
		SecurityLevel:  defaultSec,
		Performance:    defaultPerf,
		Deployed:       true,
		Statuses:       condition.NewActiveSet(),
	}
}

// CalculateRevenue returns hourly revenue:
//
//	revenue_per_hour × (0.8+perf/10×0.4) × (0.9+sec/10×0.2)
//	  × (1−(100−health)/100×0.5) × min(1.5, 1+uptime/100)
//
// Postcondition: Returns 0 when the service is not deployed.
func (s *Service) CalculateRevenue() float64 {
	if !s.Deployed {
		return 0
	}
	perf := 0.8 + float64(s.Performance)/10*0.4
	sec := 0.9 + float64(s.SecurityLevel)/10*0.2
	health := 1 - float64(MaxHealth-s.Health)/100*0.5
	uptime := math.Min(maxUptimeBoost, 1+float64(s.UptimeDays)/100)
	return s.RevenuePerHour * perf * sec * health * uptime
}

// DailyIncome is CalculateRevenue over a full day.
func (s *Service) DailyIncome() float64 { return s.CalculateRevenue() * hoursPerDay }

// DailyCost is the running cost over a full day.
func (s *Service) DailyCost() float64 { return s.CostPerHour * hoursPerDay }

// ApplyDamage lowers health by amount and reports whether the service failed.
//
// Precondition: amount >= 0.
// Postcondition: Health >= 0; if Health == 0 then Deployed == false and true is returned.
func (s *Service) ApplyDamage(amount int, day int) bool {
	if amount < 0 {
		amount = 0
	}
	s.Health -= amount
	if s.Health < 0 {
		s.Health = 0
	}
	s.Incidents = append(s.Incidents, Incident{Type: IncidentDamage, Amount: float64(amount), Day: day})
	if s.Health == 0 {
		s.Deployed = false
		s.Incidents = append(s.Incidents, Incident{Type: IncidentFailure, Day: day})
		return true
	}
	return false
}

// Repair restores up to amount health and returns how much was restored.
func (s *Service) Repair(amount int) int {
	before := s.Health
	s.Health = min(MaxHealth, s.Health+max(0, amount))
	return s.Health - before
}

// EnhanceSecurity raises the security level by up to amount.
func (s *Service) EnhanceSecurity(amount int) int {
	before := s.SecurityLevel
	s.SecurityLevel = min(MaxLevel, s.SecurityLevel+max(0, amount))
	return s.SecurityLevel - before
}

// OptimizePerformance raises performance by up to amount.
func (s *Service) OptimizePerformance(amount int) int {
	before := s.Performance
	s.Performance = min(MaxLevel, s.Performance+max(0, amount))
	return s.Performance - before
}

// DegradePerformance lowers performance by amount, floored at 1.
func (s *Service) DegradePerformance(amount int) int {
	before := s.Performance
	s.Performance = max(MinLevel, s.Performance-max(0, amount))
	return before - s.Performance
}

// DegradeSecurity lowers the security level by amount, floored at 1.
func (s *Service) DegradeSecurity(amount int) int {
	before := s.SecurityLevel
	s.SecurityLevel = max(MinLevel, s.SecurityLevel-max(0, amount))
	return before - s.SecurityLevel
}

// Undeploy takes the service offline.
func (s *Service) Undeploy() { s.Deployed = false }

// Redeploy brings an offline service back online at full health.
func (s *Service) Redeploy() {
	s.Deployed = true
	s.Health = MaxHealth
}

// RepairCost is the credit cost of a standard repair.
func (s *Service) RepairCost() int { return 10 * (MaxHealth - s.Health) / 10 }

// SecurityCost is the credit cost of a standard security enhancement.
func (s *Service) SecurityCost() int { return 15 * (MaxLevel - s.SecurityLevel) }

// OptimizeCost is the credit cost of a standard performance optimisation.
func (s *Service) OptimizeCost() int { return 20 * (MaxLevel - s.Performance) }

// RedeployCost is half the original deploy cost.
func (s *Service) RedeployCost() int { return s.DeployCost / 2 }

// SellPrice is what a vendor pays for the service's blueprint.
func (s *Service) SellPrice() int { return s.DeployCost }
