// Package storage holds what every snapshot store shares.
package storage

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/cory-johannsen/cloudranger/internal/game/engine"
)

var (
	// ErrSnapshotNotFound is returned when loading a save name that was never written.
	ErrSnapshotNotFound = errors.New("snapshot not found")
	// ErrInvalidName is returned for save names outside [A-Za-z0-9_-]{1,64}.
	ErrInvalidName = errors.New("invalid save name")
)

var namePattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// ValidateName checks that name can be used as a file name, key and row id.
func ValidateName(name string) error {
	if !namePattern.MatchString(name) {
		return fmt.Errorf("%q: %w", name, ErrInvalidName)
	}
	return nil
}

// Summary describes one stored save.
type Summary struct {
	Name    string
	Day     int
	SavedAt time.Time
}

// SnapshotStore persists engine snapshots by name.
type SnapshotStore interface {
	// Save writes snap under name, replacing any previous save.
	Save(ctx context.Context, name string, snap engine.Snapshot) error
	// Load returns the save written under name, or ErrSnapshotNotFound.
	Load(ctx context.Context, name string) (engine.Snapshot, error)
	// List returns every save, most recent first.
	List(ctx context.Context) ([]Summary, error)
}
