// Package dice provides the single randomness abstraction for the game engine.
// Every random decision in a playthrough is routed through one Source so that a
// seed reproduces the whole game.
package dice

import "fmt"

// Source is the randomness provider for all rolls.
//
// Implementations MUST be safe for concurrent use.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
}

// Range is an inclusive integer interval such as hazard damage.
type Range struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

// Validate reports whether the range is well formed.
//
// Postcondition: Returns nil iff 0 <= Min <= Max.
func (r Range) Validate() error {
	if r.Min < 0 {
		return fmt.Errorf("range min must be >= 0, got %d", r.Min)
	}
	if r.Max < r.Min {
		return fmt.Errorf("range max %d is below min %d", r.Max, r.Min)
	}
	return nil
}

// String renders the range as "min-max".
func (r Range) String() string {
	return fmt.Sprintf("%d-%d", r.Min, r.Max)
}
