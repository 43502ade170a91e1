package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/cory-johannsen/cloudranger/internal/game/engine"
	"github.com/cory-johannsen/cloudranger/internal/storage"
)

// ErrSnapshotNotFound is returned when a snapshot lookup yields no results.
var ErrSnapshotNotFound = storage.ErrSnapshotNotFound

// SnapshotRepository provides snapshot persistence operations.
type SnapshotRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

// NewSnapshotRepository creates a SnapshotRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool with the snapshots table migrated.
func NewSnapshotRepository(db *pgxpool.Pool, logger *zap.Logger) *SnapshotRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SnapshotRepository{db: db, logger: logger}
}

// Save upserts the snapshot stored under name.
//
// Postcondition: Exactly one row exists for name, holding snap.
func (r *SnapshotRepository) Save(ctx context.Context, name string, snap engine.Snapshot) error {
	if err := storage.ValidateName(name); err != nil {
		return err
	}
	body, err := snap.Marshal()
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `
		INSERT INTO snapshots (name, body, saved_day, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (name) DO UPDATE
		SET body = EXCLUDED.body, saved_day = EXCLUDED.saved_day, updated_at = NOW()`,
		name, string(body), snap.Day,
	)
	if err != nil {
		return fmt.Errorf("saving snapshot: %w", err)
	}
	r.logger.Info("snapshot saved", zap.String("name", name), zap.Int("day", snap.Day))
	return nil
}

// Load retrieves the snapshot stored under name.
//
// Postcondition: Returns the Snapshot or ErrSnapshotNotFound.
func (r *SnapshotRepository) Load(ctx context.Context, name string) (engine.Snapshot, error) {
	if err := storage.ValidateName(name); err != nil {
		return engine.Snapshot{}, err
	}
	var body string
	err := r.db.QueryRow(ctx, `SELECT body FROM snapshots WHERE name = $1`, name).Scan(&body)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return engine.Snapshot{}, fmt.Errorf("%s: %w", name, ErrSnapshotNotFound)
		}
		return engine.Snapshot{}, fmt.Errorf("querying snapshot: %w", err)
	}
	snap, err := engine.UnmarshalSnapshot([]byte(body))
	if err != nil {
		return engine.Snapshot{}, fmt.Errorf("snapshot %s: %w", name, err)
	}
	return snap, nil
}

// List returns every stored snapshot, most recently updated first.
//
// Postcondition: Returns a slice (may be empty) or a non-nil error.
func (r *SnapshotRepository) List(ctx context.Context) ([]storage.Summary, error) {
	rows, err := r.db.Query(ctx, `
		SELECT name, saved_day, updated_at
		FROM snapshots ORDER BY updated_at DESC, name ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing snapshots: %w", err)
	}
	defer rows.Close()

	out := make([]storage.Summary, 0)
	for rows.Next() {
		var s storage.Summary
		if err := rows.Scan(&s.Name, &s.Day, &s.SavedAt); err != nil {
			return nil, fmt.Errorf("scanning snapshot row: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Delete removes the snapshot stored under name.
//
// Postcondition: Returns nil on success, ErrSnapshotNotFound if no row was deleted.
func (r *SnapshotRepository) Delete(ctx context.Context, name string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM snapshots WHERE name = $1`, name)
	if err != nil {
		return fmt.Errorf("deleting snapshot: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", name, ErrSnapshotNotFound)
	}
	return nil
}
