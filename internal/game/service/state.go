package service

import (
	"fmt"

	"github.com/cory-johannsen/cloudranger/internal/game/condition"
)

// State is the serialisable form of a deployed service.
type State struct {
	InstanceID    string            `yaml:"instance_id"`
	DefID         string            `yaml:"def_id"`
	Region        string            `yaml:"region"`
	Health        int               `yaml:"health"`
	SecurityLevel int               `yaml:"security_level"`
	Performance   int               `yaml:"performance"`
	Deployed      bool              `yaml:"deployed"`
	UptimeDays    int               `yaml:"uptime_days"`
	Incidents     []Incident        `yaml:"incidents,omitempty"`
	Statuses      []condition.Entry `yaml:"statuses,omitempty"`
}

// State captures s.
func (s *Service) State() State {
	st := State{
		InstanceID:    s.InstanceID,
		DefID:         s.DefID,
		Region:        s.Region,
		Health:        s.Health,
		SecurityLevel: s.SecurityLevel,
		Performance:   s.Performance,
		Deployed:      s.Deployed,
		UptimeDays:    s.UptimeDays,
		Incidents:     append([]Incident(nil), s.Incidents...),
	}
	if s.Statuses != nil {
		st.Statuses = s.Statuses.Entries()
	}
	return st
}

// Restore rebuilds a service from st using the blueprint in cat.
//
// Postcondition: Returns an error if the blueprint or a status id is unknown.
func Restore(st State, cat *Catalog, statuses *condition.Registry) (*Service, error) {
	def, ok := cat.Get(st.DefID)
	if !ok {
		return nil, fmt.Errorf("restoring service %s: unknown blueprint %q", st.InstanceID, st.DefID)
	}
	set, err := condition.Restore(statuses, st.Statuses)
	if err != nil {
		return nil, fmt.Errorf("restoring service %s: %w", st.InstanceID, err)
	}
	s := New(def, st.InstanceID, st.Region)
	s.Health = st.Health
	s.SecurityLevel = st.SecurityLevel
	s.Performance = st.Performance
	s.Deployed = st.Deployed
	s.UptimeDays = st.UptimeDays
	s.Incidents = append([]Incident(nil), st.Incidents...)
	s.Statuses = set
	return s, nil
}
