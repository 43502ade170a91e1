// Package savefile stores snapshots as YAML files in one directory.
package savefile

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/cory-johannsen/cloudranger/internal/game/engine"
	"github.com/cory-johannsen/cloudranger/internal/storage"
)

// ErrSnapshotNotFound is returned when no file exists for a save name.
var ErrSnapshotNotFound = storage.ErrSnapshotNotFound

const ext = ".yaml"

// Store is a directory of <name>.yaml snapshots.
type Store struct {
	dir    string
	logger *zap.Logger
}

// New returns a Store rooted at dir, creating it if needed.
//
// Precondition: dir must be non-empty.
// Postcondition: dir exists, or a non-nil error is returned.
func New(dir string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating save dir: %w", err)
	}
	return &Store{dir: dir, logger: logger}, nil
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, name+ext)
}

// Save writes snap to <dir>/<name>.yaml through a temporary file, so a crash
// never leaves a half-written save.
func (s *Store) Save(ctx context.Context, name string, snap engine.Snapshot) error {
	if err := storage.ValidateName(name); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := snap.Marshal()
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(s.dir, name+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp save: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("writing save %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("closing save %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), s.path(name)); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("renaming save %s: %w", name, err)
	}
	s.logger.Info("snapshot saved", zap.String("name", name), zap.Int("day", snap.Day), zap.String("dir", s.dir))
	return nil
}

// Load reads <dir>/<name>.yaml.
//
// Postcondition: Returns ErrSnapshotNotFound when the file does not exist.
func (s *Store) Load(ctx context.Context, name string) (engine.Snapshot, error) {
	if err := storage.ValidateName(name); err != nil {
		return engine.Snapshot{}, err
	}
	if err := ctx.Err(); err != nil {
		return engine.Snapshot{}, err
	}
	data, err := os.ReadFile(s.path(name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return engine.Snapshot{}, fmt.Errorf("%s: %w", name, ErrSnapshotNotFound)
		}
		return engine.Snapshot{}, fmt.Errorf("reading save %s: %w", name, err)
	}
	snap, err := engine.UnmarshalSnapshot(data)
	if err != nil {
		return engine.Snapshot{}, fmt.Errorf("save %s: %w", name, err)
	}
	return snap, nil
}

// List returns every readable save, most recent first. Unreadable files are
// logged and skipped.
func (s *Store) List(ctx context.Context) ([]storage.Summary, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("listing saves: %w", err)
	}
	var out []storage.Summary
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ext) {
			continue
		}
		name := strings.TrimSuffix(e.Name(), ext)
		if storage.ValidateName(name) != nil {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		snap, err := s.Load(ctx, name)
		if err != nil {
			s.logger.Warn("skipping unreadable save", zap.String("name", name), zap.Error(err))
			continue
		}
		out = append(out, storage.Summary{Name: name, Day: snap.Day, SavedAt: info.ModTime()})
	}
	slices.SortStableFunc(out, func(a, b storage.Summary) int { return b.SavedAt.Compare(a.SavedAt) })
	return out, nil
}
