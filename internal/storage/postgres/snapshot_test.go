package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/cloudranger/internal/storage"
	"github.com/cory-johannsen/cloudranger/internal/storage/postgres"
	"github.com/cory-johannsen/cloudranger/internal/testutil"
)

func TestSnapshotRepository(t *testing.T) {
	repo := postgres.NewSnapshotRepository(testutil.NewPool(t), nil)
	ctx := context.Background()
	snap := testutil.Snapshot(t, 21)

	t.Run("load missing", func(t *testing.T) {
		_, err := repo.Load(ctx, "ghost")
		assert.ErrorIs(t, err, postgres.ErrSnapshotNotFound)
	})

	t.Run("save and load", func(t *testing.T) {
		require.NoError(t, repo.Save(ctx, "slot1", snap))
		got, err := repo.Load(ctx, "slot1")
		require.NoError(t, err)
		assert.Equal(t, testutil.MarshalSnapshot(t, snap), testutil.MarshalSnapshot(t, got))
	})

	t.Run("save overwrites", func(t *testing.T) {
		later := snap
		later.Day = snap.Day + 10
		require.NoError(t, repo.Save(ctx, "slot1", later))
		got, err := repo.Load(ctx, "slot1")
		require.NoError(t, err)
		assert.Equal(t, later.Day, got.Day)
	})

	t.Run("list", func(t *testing.T) {
		require.NoError(t, repo.Save(ctx, "slot2", snap))
		list, err := repo.List(ctx)
		require.NoError(t, err)
		days := map[string]int{}
		for _, s := range list {
			days[s.Name] = s.Day
		}
		assert.Equal(t, map[string]int{"slot1": snap.Day + 10, "slot2": snap.Day}, days)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, "slot2"))
		assert.ErrorIs(t, repo.Delete(ctx, "slot2"), postgres.ErrSnapshotNotFound)
	})

	t.Run("rejects bad names", func(t *testing.T) {
		assert.ErrorIs(t, repo.Save(ctx, "drop table;", snap), storage.ErrInvalidName)
	})
}

func TestPool_HealthAndSnapshots(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping postgres container test in short mode")
	}
	pc := testutil.NewPostgresContainer(t)
	pc.ApplyMigrations(t)
	ctx := context.Background()

	require.NoError(t, pc.Pool.Health(ctx, 5*time.Second))
	list, err := pc.Pool.Snapshots().List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}
