package service

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrMissingBlueprint is returned when the blueprint is not owned.
	ErrMissingBlueprint = errors.New("blueprint not owned")
	// ErrMissingDependency is returned when a required service is not running.
	ErrMissingDependency = errors.New("dependency not deployed")
	// ErrRegionUnavailable is returned when the blueprint cannot run in the region.
	ErrRegionUnavailable = errors.New("service not available in region")
)

// Ledger is the inventory a deployment draws on.
type Ledger interface {
	HasBlueprint(defID string) bool
	RemoveBlueprint(defID string) error
	// Spend deducts amount or returns an error leaving credits unchanged.
	Spend(amount float64) error
	Deployed() []*Service
	AddDeployed(s *Service)
}

// Running reports whether a deployed, online instance of defID exists in services.
func Running(services []*Service, defID string) bool {
	for _, s := range services {
		if s.DefID == defID && s.Deployed {
			return true
		}
	}
	return false
}

// Deploy instantiates def in region under instance id id, paying its deploy
// cost and consuming the blueprint.
//
// Precondition: def and l must not be nil.
// Postcondition: On success the new service is in l.Deployed(); on error l is unchanged.
func Deploy(def *Def, l Ledger, region string, id uuid.UUID) (*Service, error) {
	if !l.HasBlueprint(def.ID) {
		return nil, fmt.Errorf("deploying %s: %w", def.Name, ErrMissingBlueprint)
	}
	for _, dep := range def.Dependencies {
		if !Running(l.Deployed(), dep) {
			return nil, fmt.Errorf("deploying %s requires %s: %w", def.Name, dep, ErrMissingDependency)
		}
	}
	if !def.AvailableIn(region) {
		return nil, fmt.Errorf("deploying %s to %s: %w", def.Name, region, ErrRegionUnavailable)
	}
	if err := l.Spend(float64(def.DeployCost)); err != nil {
		return nil, fmt.Errorf("deploying %s: %w", def.Name, err)
	}
	if err := l.RemoveBlueprint(def.ID); err != nil {
		return nil, fmt.Errorf("deploying %s: %w", def.Name, err)
	}
	svc := New(def, NewInstanceID(def.Name, id), region)
	l.AddDeployed(svc)
	return svc, nil
}

// NewInstanceID returns "<first three letters of name>-<first 8 hex chars of id>".
func NewInstanceID(name string, id uuid.UUID) string {
	prefix := name
	if len(prefix) > 3 {
		prefix = prefix[:3]
	}
	return prefix + "-" + id.String()[:8]
}
