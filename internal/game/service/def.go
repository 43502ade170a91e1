// Package service simulates deployed cloud services: their revenue model,
// degradation, and the per-day lifecycle tick.
package service

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// RegionGlobal in a blueprint's region list makes it deployable anywhere.
const RegionGlobal = "global"

// Def is a deployable service blueprint loaded from YAML.
type Def struct {
	ID           string   `yaml:"id"`
	Name         string   `yaml:"name"`
	Description  string   `yaml:"description"`
	Type         string   `yaml:"type"`
	CostPerHour  float64  `yaml:"cost_per_hour"`
	DeployCost   int      `yaml:"deploy_cost"`
	Regions      []string `yaml:"regions"`
	Dependencies []string `yaml:"dependencies"`
}

// Validate checks that the Def satisfies its invariants.
//
// Postcondition: Returns nil iff all fields are valid.
func (d *Def) Validate() error {
	var errs []error
	if d.ID == "" {
		errs = append(errs, errors.New("id must not be empty"))
	}
	if d.Name == "" {
		errs = append(errs, errors.New("name must not be empty"))
	}
	if d.CostPerHour < 0 {
		errs = append(errs, fmt.Errorf("cost_per_hour must be >= 0, got %v", d.CostPerHour))
	}
	if d.DeployCost < 0 {
		errs = append(errs, fmt.Errorf("deploy_cost must be >= 0, got %d", d.DeployCost))
	}
	if len(d.Regions) == 0 {
		errs = append(errs, errors.New("regions must not be empty"))
	}
	for _, dep := range d.Dependencies {
		if dep == d.ID {
			errs = append(errs, errors.New("service must not depend on itself"))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("service %q: %v", d.ID, errors.Join(errs...))
	}
	return nil
}

// AvailableIn reports whether the blueprint can be deployed to region.
func (d *Def) AvailableIn(region string) bool {
	for _, r := range d.Regions {
		if r == region || r == RegionGlobal {
			return true
		}
	}
	return false
}

// BlueprintPrice is what a vendor charges for the blueprint.
func (d *Def) BlueprintPrice() int { return d.DeployCost * 2 }

// Catalog holds all service blueprints keyed by ID.
type Catalog struct {
	defs map[string]*Def
}

// NewCatalog returns an empty Catalog.
func NewCatalog() *Catalog {
	return &Catalog{defs: make(map[string]*Def)}
}

// Register validates d and adds it.
//
// Postcondition: Get(d.ID) returns d; returns error on invalid def or duplicate ID.
func (c *Catalog) Register(d *Def) error {
	if err := d.Validate(); err != nil {
		return err
	}
	if _, exists := c.defs[d.ID]; exists {
		return fmt.Errorf("service %q: duplicate id", d.ID)
	}
	c.defs[d.ID] = d
	return nil
}

// Get returns the blueprint for id.
func (c *Catalog) Get(id string) (*Def, bool) {
	d, ok := c.defs[id]
	return d, ok
}

// All returns every blueprint sorted by ID.
func (c *Catalog) All() []*Def {
	out := make([]*Def, 0, len(c.defs))
	for _, d := range c.defs {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ValidateDependencies checks that every dependency names a known blueprint.
func (c *Catalog) ValidateDependencies() error {
	var errs []string
	for _, d := range c.All() {
		for _, dep := range d.Dependencies {
			if _, ok := c.defs[dep]; !ok {
				errs = append(errs, fmt.Sprintf("service %q: dependency %q is not a known service", d.ID, dep))
			}
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

type yamlServiceFile struct {
	Services []*Def `yaml:"services"`
}

// Load parses a services document.
//
// Postcondition: Returns a populated Catalog or an error naming every invalid entry.
func Load(r io.Reader) (*Catalog, error) {
	var f yamlServiceFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && err != io.EOF {
		return nil, fmt.Errorf("parsing services: %w", err)
	}
	c := NewCatalog()
	var errs []string
	for _, d := range f.Services {
		if err := c.Register(d); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if err := c.ValidateDependencies(); err != nil {
		errs = append(errs, err.Error())
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return c, nil
}

// LoadFile reads and parses the services file at path.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %q: %w", path, err)
	}
	c, err := Load(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}
