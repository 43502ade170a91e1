package service_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/cloudranger/internal/game/condition"
	"github.com/cory-johannsen/cloudranger/internal/game/dice"
	"github.com/cory-johannsen/cloudranger/internal/game/service"
)

// scripted returns queued values (mod n), then n-1 once the queue is drained.
type scripted struct{ vals []int }

func (s *scripted) Intn(n int) int {
	if len(s.vals) == 0 {
		return n - 1
	}
	v := s.vals[0]
	s.vals = s.vals[1:]
	return v % n
}

func roller(vals ...int) *dice.Roller {
	return dice.NewLoggedRoller(&scripted{vals: vals}, nil)
}

func ec2() *service.Def {
	return &service.Def{ID: "ec2", Name: "EC2 Instance", Type: "compute", CostPerHour: 0.10, DeployCost: 5, Regions: []string{"compute"}}
}

func ebs() *service.Def {
	return &service.Def{ID: "ebs", Name: "EBS Volume", Type: "storage", CostPerHour: 0.05, DeployCost: 3, Regions: []string{"global"}, Dependencies: []string{"ec2"}}
}

type fakeLedger struct {
	credits    float64
	blueprints map[string]bool
	deployed   []*service.Service
}

var errBroke = errors.New("broke")

func newLedger(credits float64, bps ...string) *fakeLedger {
	l := &fakeLedger{credits: credits, blueprints: map[string]bool{}}
	for _, b := range bps {
		l.blueprints[b] = true
	}
	return l
}

func (l *fakeLedger) HasBlueprint(id string) bool { return l.blueprints[id] }
func (l *fakeLedger) RemoveBlueprint(id string) error {
	delete(l.blueprints, id)
	return nil
}
func (l *fakeLedger) Spend(a float64) error {
	if a > l.credits {
		return errBroke
	}
	l.credits -= a
	return nil
}
func (l *fakeLedger) Deployed() []*service.Service   { return l.deployed }
func (l *fakeLedger) AddDeployed(s *service.Service) { l.deployed = append(l.deployed, s) }

func TestLoad_ParsesAndValidatesDependencies(t *testing.T) {
	cat, err := service.Load(strings.NewReader(`
services:
  - id: ec2
    name: EC2 Instance
    type: compute
    cost_per_hour: 0.10
    deploy_cost: 5
    regions: [compute]
  - id: ebs
    name: EBS Volume
    type: storage
    cost_per_hour: 0.05
    deploy_cost: 3
    regions: [global]
    dependencies: [ec2]
`))
	require.NoError(t, err)
	d, ok := cat.Get("ebs")
	require.True(t, ok)
	assert.Equal(t, []string{"ec2"}, d.Dependencies)
	assert.Len(t, cat.All(), 2)
}

func TestLoad_UnknownDependency(t *testing.T) {
	_, err := service.Load(strings.NewReader(`
services:
  - id: ebs
    name: EBS Volume
    cost_per_hour: 0.05
    deploy_cost: 3
    regions: [global]
    dependencies: [ec2]
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `dependency "ec2"`)
}

func TestDef_AvailableIn(t *testing.T) {
	assert.True(t, ec2().AvailableIn("compute"))
	assert.False(t, ec2().AvailableIn("database"))
	assert.True(t, ebs().AvailableIn("anywhere"))
}

func TestCalculateRevenue_Formula(t *testing.T) {
	s := service.New(ec2(), "EC2-00000000", "compute")
	// 0.15 × 1.0 × 0.92 × 1.0 × 1.0
	assert.InDelta(t, 0.138, s.CalculateRevenue(), 1e-9)

	s.Performance = 10
	s.SecurityLevel = 10
	s.Health = 50
	s.UptimeDays = 80
	// 0.15 × 1.2 × 1.1 × 0.75 × 1.5
	assert.InDelta(t, 0.15*1.2*1.1*0.75*1.5, s.CalculateRevenue(), 1e-9)
}

func TestCalculateRevenue_ZeroWhenOffline(t *testing.T) {
	s := service.New(ec2(), "EC2-00000000", "compute")
	s.Undeploy()
	assert.Zero(t, s.CalculateRevenue())
	s.Redeploy()
	assert.Equal(t, service.MaxHealth, s.Health)
	assert.Positive(t, s.CalculateRevenue())
}

func TestStatOpsClamp(t *testing.T) {
	s := service.New(ec2(), "EC2-00000000", "compute")
	assert.Equal(t, 9, s.EnhanceSecurity(50))
	assert.Equal(t, service.MaxLevel, s.SecurityLevel)
	assert.Equal(t, 5, s.OptimizePerformance(7))
	assert.Equal(t, 9, s.DegradeSecurity(40))
	assert.Equal(t, service.MinLevel, s.SecurityLevel)
	s.ApplyDamage(40, 1)
	assert.Equal(t, 40, s.Repair(100))
	assert.Equal(t, service.MaxHealth, s.Health)
}

func TestCosts(t *testing.T) {
	s := service.New(ec2(), "EC2-00000000", "compute")
	s.Health = 70
	assert.Equal(t, 30, s.RepairCost())
	assert.Equal(t, 135, s.SecurityCost())
	assert.Equal(t, 100, s.OptimizeCost())
	assert.Equal(t, 2, s.RedeployCost())
}

func TestApplyDamage_FailureProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := service.New(ec2(), "EC2-00000000", "compute")
		s.Health = rapid.IntRange(1, 100).Draw(t, "health")
		dmg := rapid.IntRange(s.Health, 500).Draw(t, "damage")
		failed := s.ApplyDamage(dmg, 1)
		if !failed || s.Deployed || s.Health != 0 {
			t.Fatalf("damage %d did not fail service: health=%d deployed=%v", dmg, s.Health, s.Deployed)
		}
		if s.CalculateRevenue() != 0 {
			t.Fatalf("failed service still earns %v", s.CalculateRevenue())
		}
	})
}

func TestCalculateRevenue_MonotonicProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		base := service.New(ec2(), "EC2-00000000", "compute")
		base.Performance = rapid.IntRange(1, 9).Draw(t, "perf")
		base.SecurityLevel = rapid.IntRange(1, 9).Draw(t, "sec")
		base.Health = rapid.IntRange(1, 99).Draw(t, "health")
		base.UptimeDays = rapid.IntRange(0, 200).Draw(t, "uptime")
		r0 := base.CalculateRevenue()

		bump := []func(s *service.Service){
			func(s *service.Service) { s.Performance++ },
			func(s *service.Service) { s.SecurityLevel++ },
			func(s *service.Service) { s.Health++ },
			func(s *service.Service) { s.UptimeDays++ },
		}
		for i, f := range bump {
			c := *base
			f(&c)
			if c.CalculateRevenue() < r0 {
				t.Fatalf("bump %d lowered revenue: %v < %v", i, c.CalculateRevenue(), r0)
			}
		}
	})
}

func TestDeploy_Success(t *testing.T) {
	l := newLedger(100, "ec2")
	s, err := service.Deploy(ec2(), l, "compute", uuid.New())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(s.InstanceID, "EC2-"))
	assert.Len(t, s.InstanceID, 12)
	assert.Equal(t, "compute", s.Region)
	assert.InDelta(t, 95.0, l.credits, 1e-9)
	assert.False(t, l.HasBlueprint("ec2"))
	assert.Len(t, l.deployed, 1)
}

func TestDeploy_FailuresLeaveLedgerUntouched(t *testing.T) {
	cases := []struct {
		name   string
		def    *service.Def
		ledger *fakeLedger
		region string
		want   error
	}{
		{"no blueprint", ec2(), newLedger(100), "compute", service.ErrMissingBlueprint},
		{"missing dependency", ebs(), newLedger(100, "ebs"), "compute", service.ErrMissingDependency},
		{"wrong region", ec2(), newLedger(100, "ec2"), "database", service.ErrRegionUnavailable},
		{"insufficient credits", ec2(), newLedger(4, "ec2"), "compute", errBroke},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			before := tc.ledger.credits
			bps := len(tc.ledger.blueprints)
			_, err := service.Deploy(tc.def, tc.ledger, tc.region, uuid.New())
			require.ErrorIs(t, err, tc.want)
			assert.Equal(t, before, tc.ledger.credits)
			assert.Len(t, tc.ledger.blueprints, bps)
			assert.Empty(t, tc.ledger.deployed)
		})
	}
}

func TestDeploy_DependencyMustBeOnline(t *testing.T) {
	l := newLedger(100, "ec2", "ebs")
	base, err := service.Deploy(ec2(), l, "compute", uuid.New())
	require.NoError(t, err)
	base.Undeploy()
	_, err = service.Deploy(ebs(), l, "compute", uuid.New())
	require.ErrorIs(t, err, service.ErrMissingDependency)
	base.Redeploy()
	_, err = service.Deploy(ebs(), l, "compute", uuid.New())
	require.NoError(t, err)
}

func TestTick_QuietDayAccruesIncome(t *testing.T) {
	s := service.New(ec2(), "EC2-00000000", "compute")
	lc := service.NewLifecycle(roller(), nil)
	rep := lc.Tick([]*service.Service{s}, service.TickContext{Multiplier: 1, LocationDifficulty: 2, Day: 1})
	assert.Equal(t, 1, s.UptimeDays)
	assert.InDelta(t, s.DailyIncome(), rep.Income, 1e-9)
	assert.InDelta(t, 2.4, rep.Costs, 1e-9)
	assert.InDelta(t, rep.Income-2.4, rep.Net(), 1e-9)
	assert.Empty(t, rep.Notices)
}

func TestTick_SkipsOffline(t *testing.T) {
	s := service.New(ec2(), "EC2-00000000", "compute")
	s.Undeploy()
	rep := service.NewLifecycle(roller(), nil).Tick([]*service.Service{s}, service.TickContext{Multiplier: 1})
	assert.Zero(t, s.UptimeDays)
	assert.Zero(t, rep.Costs)
}

func TestTick_IncidentThreshold(t *testing.T) {
	// threshold = max(1, int((5 + uptime/10 - security + difficulty/2) × multiplier)),
	// with uptime counted after the tick's increment.
	cases := []struct {
		name       string
		uptime     int
		security   int
		difficulty int
		mult       float64
		threshold  int
	}{
		{"normal", 0, 1, 6, 1.0, 7},
		{"uptime adds a point per ten days", 19, 1, 0, 1.0, 6},
		{"floor at one percent", 0, 10, 0, 1.0, 1},
		{"easy truncates", 0, 1, 6, 0.7, 4},
		{"hard truncates", 0, 1, 6, 1.3, 9},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			for _, roll := range []int{tc.threshold, tc.threshold + 1} {
				s := service.New(ec2(), "EC2-00000000", "compute")
				s.UptimeDays = tc.uptime
				s.SecurityLevel = tc.security
				// Intn(100) = roll-1 gives a percent roll of roll; the incident is a cost spike.
				lc := service.NewLifecycle(roller(roll-1, 3, 0), nil)
				rep := lc.Tick([]*service.Service{s}, service.TickContext{
					Multiplier: tc.mult, LocationDifficulty: tc.difficulty, Day: 1,
				})
				hit := roll <= tc.threshold
				assert.Equal(t, hit, rep.Spikes > 0, "roll %d against threshold %d", roll, tc.threshold)
				assert.Equal(t, hit, len(s.Incidents) == 1, "roll %d against threshold %d", roll, tc.threshold)
			}
		})
	}
}

func TestTick_HealthHitFailsService(t *testing.T) {
	s := service.New(ec2(), "EC2-00000000", "compute")
	s.Health = 10
	// incident roll hits, health_hit chosen, damage roll 5
	lc := service.NewLifecycle(roller(0, 0, 0), nil)
	rep := lc.Tick([]*service.Service{s}, service.TickContext{Multiplier: 1, LocationDifficulty: 6, Day: 3})
	require.Len(t, rep.Failed, 1)
	assert.Same(t, s, rep.Failed[0])
	assert.False(t, s.Deployed)
	assert.Equal(t, 0, s.Health)
	require.Len(t, rep.Notices, 1)
	assert.True(t, rep.Notices[0].Failed)
	assert.InDelta(t, 11.0, rep.Notices[0].Amount, 1e-9)
}

func TestTick_HardMultiplierScalesDamage(t *testing.T) {
	s := service.New(ec2(), "EC2-00000000", "compute")
	lc := service.NewLifecycle(roller(0, 0, 10), nil)
	lc.Tick([]*service.Service{s}, service.TickContext{Multiplier: 1.3, LocationDifficulty: 5, Day: 1})
	// (15 + 5) × 1.3 = 26
	assert.Equal(t, 74, s.Health)
}

func TestTick_PerformanceDrop(t *testing.T) {
	s := service.New(ec2(), "EC2-00000000", "compute")
	lc := service.NewLifecycle(roller(0, 1, 2), nil)
	lc.Tick([]*service.Service{s}, service.TickContext{Multiplier: 1, Day: 1})
	assert.Equal(t, 3, s.Performance)
}

func TestTick_BreachOnMinimalSecurityBecomesHealthHit(t *testing.T) {
	s := service.New(ec2(), "EC2-00000000", "compute")
	require.Equal(t, 1, s.SecurityLevel)
	lc := service.NewLifecycle(roller(0, 2, 0, 0), nil)
	lc.Tick([]*service.Service{s}, service.TickContext{Multiplier: 1, Day: 1})
	assert.Equal(t, 97, s.Health)
	assert.Equal(t, 1, s.SecurityLevel)
}

func TestTick_BreachLowersSecurityAndMayLeakClue(t *testing.T) {
	s := service.New(ec2(), "EC2-00000000", "compute")
	s.SecurityLevel = 5
	// hit, breach, breach roll 1, severity 2, clue roll 1, clue id 100
	lc := service.NewLifecycle(roller(0, 2, 0, 2, 0, 0), nil)
	rep := lc.Tick([]*service.Service{s}, service.TickContext{Multiplier: 1, Day: 1})
	assert.Equal(t, 3, s.SecurityLevel)
	assert.Equal(t, []string{"breach_clue_EC2-00000000_100"}, rep.Clues)
}

func TestTick_CostSpikeHasFloor(t *testing.T) {
	s := service.New(ec2(), "EC2-00000000", "compute")
	lc := service.NewLifecycle(roller(0, 3, 0), nil)
	rep := lc.Tick([]*service.Service{s}, service.TickContext{Multiplier: 1, LocationDifficulty: 5, Day: 1})
	assert.InDelta(t, 0.1, rep.Spikes, 1e-9)
	assert.InDelta(t, rep.Income-rep.Costs-0.1, rep.Net(), 1e-9)
}

func TestTick_MemoryFrostDegradesPerformance(t *testing.T) {
	s := service.New(ec2(), "EC2-00000000", "compute")
	service.NewLifecycle(roller(), nil).Tick([]*service.Service{s}, service.TickContext{Multiplier: 1, MemoryFrost: true})
	assert.Equal(t, 4, s.Performance)
}

func TestTick_ServiceStatusDamages(t *testing.T) {
	s := service.New(ec2(), "EC2-00000000", "compute")
	vuln := &condition.StatusDef{
		ID: "security_vulnerability", Name: "Security Vulnerability", Target: condition.TargetService,
		Duration: 3, PerTurn: condition.PerTurn{Kind: condition.TickServiceDamage, Magnitude: 2},
	}
	require.NoError(t, s.Statuses.Apply(vuln))
	lc := service.NewLifecycle(roller(), nil)
	for i := 0; i < 4; i++ {
		lc.Tick([]*service.Service{s}, service.TickContext{Multiplier: 1, Day: i})
	}
	assert.Equal(t, 94, s.Health)
	assert.False(t, s.Statuses.Has("security_vulnerability"))
}
