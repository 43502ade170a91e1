package inventory

import (
	"errors"
	"fmt"

	"github.com/cory-johannsen/cloudranger/internal/game/effect"
)

// ConsumableDef is a single-use item whose effects are applied on use.
type ConsumableDef struct {
	ID          string      `yaml:"id"`
	Name        string      `yaml:"name"`
	Description string      `yaml:"description"`
	Price       int         `yaml:"price"`
	Effects     effect.List `yaml:"effects"`
}

// Validate checks that the ConsumableDef satisfies its invariants.
//
// Postcondition: Returns nil iff all fields are valid.
func (d *ConsumableDef) Validate() error {
	var errs []error
	if d.ID == "" {
		errs = append(errs, errors.New("id must not be empty"))
	}
	if d.Name == "" {
		errs = append(errs, errors.New("name must not be empty"))
	}
	if d.Price < 0 {
		errs = append(errs, fmt.Errorf("price must be >= 0, got %d", d.Price))
	}
	if len(d.Effects) == 0 {
		errs = append(errs, errors.New("effects must not be empty"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("consumable %q: %w", d.ID, errors.Join(errs...))
	}
	return nil
}
