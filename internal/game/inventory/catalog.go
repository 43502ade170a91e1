package inventory

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Catalog holds all artifact and consumable templates indexed by ID.
type Catalog struct {
	artifacts   map[string]*ArtifactDef
	consumables map[string]*ConsumableDef
}

// NewCatalog returns an empty Catalog.
//
// Postcondition: all internal maps are initialised.
func NewCatalog() *Catalog {
	return &Catalog{
		artifacts:   make(map[string]*ArtifactDef),
		consumables: make(map[string]*ConsumableDef),
	}
}

// RegisterArtifact validates d and adds it.
//
// Postcondition: Artifact(d.ID) returns (d, true); returns error if invalid or already registered.
func (c *Catalog) RegisterArtifact(d *ArtifactDef) error {
	if err := d.Validate(); err != nil {
		return err
	}
	if _, exists := c.artifacts[d.ID]; exists {
		return fmt.Errorf("inventory: artifact ID %q already registered", d.ID)
	}
	c.artifacts[d.ID] = d
	return nil
}

// RegisterConsumable validates d and adds it.
//
// Postcondition: Consumable(d.ID) returns (d, true); returns error if invalid or already registered.
func (c *Catalog) RegisterConsumable(d *ConsumableDef) error {
	if err := d.Validate(); err != nil {
		return err
	}
	if _, exists := c.consumables[d.ID]; exists {
		return fmt.Errorf("inventory: consumable ID %q already registered", d.ID)
	}
	c.consumables[d.ID] = d
	return nil
}

// Artifact returns the template for id and whether it was found.
func (c *Catalog) Artifact(id string) (*ArtifactDef, bool) {
	d, ok := c.artifacts[id]
	return d, ok
}

// Consumable returns the consumable for id and whether it was found.
func (c *Catalog) Consumable(id string) (*ConsumableDef, bool) {
	d, ok := c.consumables[id]
	return d, ok
}

// AllArtifacts returns every artifact template sorted by ID.
func (c *Catalog) AllArtifacts() []*ArtifactDef {
	out := make([]*ArtifactDef, 0, len(c.artifacts))
	for _, d := range c.artifacts {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// AllConsumables returns every consumable sorted by ID.
func (c *Catalog) AllConsumables() []*ConsumableDef {
	out := make([]*ConsumableDef, 0, len(c.consumables))
	for _, d := range c.consumables {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// LoadArtifacts parses an `artifacts:` document into c.
//
// Postcondition: Every valid entry is registered; the error names every invalid one.
func (c *Catalog) LoadArtifacts(r io.Reader) error {
	var f struct {
		Artifacts []*ArtifactDef `yaml:"artifacts"`
	}
	if err := decodeStrict(r, &f); err != nil {
		return fmt.Errorf("parsing artifacts: %w", err)
	}
	var errs []string
	for _, d := range f.Artifacts {
		if err := c.RegisterArtifact(d); err != nil {
			errs = append(errs, err.Error())
		}
	}
	return joinErrs(errs)
}

// LoadConsumables parses a `consumables:` document into c.
//
// Postcondition: Every valid entry is registered; the error names every invalid one.
func (c *Catalog) LoadConsumables(r io.Reader) error {
	var f struct {
		Consumables []*ConsumableDef `yaml:"consumables"`
	}
	if err := decodeStrict(r, &f); err != nil {
		return fmt.Errorf("parsing consumables: %w", err)
	}
	var errs []string
	for _, d := range f.Consumables {
		if err := c.RegisterConsumable(d); err != nil {
			errs = append(errs, err.Error())
		}
	}
	return joinErrs(errs)
}

func decodeStrict(r io.Reader, out any) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil && err != io.EOF {
		return err
	}
	return nil
}

func joinErrs(errs []string) error {
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%s", strings.Join(errs, "; "))
}
