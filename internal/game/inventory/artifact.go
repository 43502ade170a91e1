// Package inventory holds the player's artifacts, service blueprints, deployed
// services, consumables and credits, and the catalogs they are drawn from.
package inventory

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Artifact tuning.
const (
	MaxUpgradeLevel   = 3
	powerPerUpgrade   = 2
	cooldownPowerStep = 3
)

// Artifact type families the engine dispatches on.
const (
	TypeScanner  = "scanner"
	TypeSecurity = "security"
	TypeNetwork  = "network"
	TypeRecovery = "recovery"
	TypeDatabase = "database"
)

var (
	// ErrArtifactCooling is returned when an artifact is used during its cooldown.
	ErrArtifactCooling = errors.New("artifact is cooling down")
	// ErrMaxUpgrade is returned when an artifact is already fully upgraded.
	ErrMaxUpgrade = errors.New("artifact is fully upgraded")
)

// ArtifactDef is an artifact template loaded from YAML.
type ArtifactDef struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Type        string `yaml:"type"`
	Service     string `yaml:"service"`
	Cost        int    `yaml:"cost"`
	Power       int    `yaml:"power"`
}

// Validate checks that the ArtifactDef satisfies its invariants.
//
// Postcondition: Returns nil iff all fields are valid.
func (d *ArtifactDef) Validate() error {
	var errs []error
	if d.ID == "" {
		errs = append(errs, errors.New("id must not be empty"))
	}
	if d.Name == "" {
		errs = append(errs, errors.New("name must not be empty"))
	}
	if d.Type == "" {
		errs = append(errs, errors.New("type must not be empty"))
	}
	if d.Cost < 0 {
		errs = append(errs, fmt.Errorf("cost must be >= 0, got %d", d.Cost))
	}
	if d.Power < 1 {
		errs = append(errs, fmt.Errorf("power must be >= 1, got %d", d.Power))
	}
	if len(errs) > 0 {
		return fmt.Errorf("artifact %q: %w", d.ID, errors.Join(errs...))
	}
	return nil
}

// Family returns the lower-cased type used for dispatch.
func (d *ArtifactDef) Family() string { return strings.ToLower(d.Type) }

// Artifact is an owned instance of an ArtifactDef.
type Artifact struct {
	InstanceID   string
	Def          *ArtifactDef
	Power        int
	UpgradeLevel int
	Cooldown     int
}

// NewArtifact instantiates def under instance id id.
//
// Precondition: def must not be nil.
func NewArtifact(def *ArtifactDef, id uuid.UUID) *Artifact {
	return &Artifact{InstanceID: id.String(), Def: def, Power: def.Power}
}

// Name returns the template's display name.
func (a *Artifact) Name() string { return a.Def.Name }

// Benefit is power plus upgrade level, the strength used by artifact actions.
func (a *Artifact) Benefit() int { return a.Power + a.UpgradeLevel }

// Ready reports whether the artifact is off cooldown.
func (a *Artifact) Ready() bool { return a.Cooldown == 0 }

// Use starts the cooldown.
//
// Postcondition: On success Cooldown == 1 + Power/3; returns ErrArtifactCooling otherwise.
func (a *Artifact) Use() error {
	if a.Cooldown > 0 {
		return fmt.Errorf("%s (%d turns left): %w", a.Def.Name, a.Cooldown, ErrArtifactCooling)
	}
	a.Cooldown = 1 + a.Power/cooldownPowerStep
	return nil
}

// TickCooldown decrements the cooldown toward zero.
func (a *Artifact) TickCooldown() {
	if a.Cooldown > 0 {
		a.Cooldown--
	}
}

// UpgradeCost is the credit price of the next upgrade level.
func (a *Artifact) UpgradeCost() int {
	return a.Def.Cost * (a.UpgradeLevel + 1) / 2
}

// Upgrade raises the upgrade level by one and power by two.
//
// Postcondition: UpgradeLevel <= MaxUpgradeLevel.
func (a *Artifact) Upgrade() error {
	if a.UpgradeLevel >= MaxUpgradeLevel {
		return fmt.Errorf("%s: %w", a.Def.Name, ErrMaxUpgrade)
	}
	a.UpgradeLevel++
	a.Power += powerPerUpgrade
	return nil
}

// SellPrice is what a vendor pays for the artifact.
func (a *Artifact) SellPrice() int { return a.Def.Cost / 2 }
