package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/cloudranger/internal/config"
	"github.com/cory-johannsen/cloudranger/internal/storage"
	"github.com/cory-johannsen/cloudranger/internal/storage/redis"
	"github.com/cory-johannsen/cloudranger/internal/testutil"
)

func newStore(t *testing.T) (*redis.Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	s := redis.New(client, "test", time.Second, nil)
	t.Cleanup(func() { _ = s.Close() })
	return s, mr
}

func TestDial_PingsServer(t *testing.T) {
	mr := miniredis.RunT(t)
	s, err := redis.Dial(context.Background(), config.RedisConfig{Addr: mr.Addr(), KeyPrefix: "cr", Timeout: time.Second}, nil)
	require.NoError(t, err)
	require.NoError(t, s.Close())
}

func TestDial_FailsWhenUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()
	_, err := redis.Dial(context.Background(), config.RedisConfig{Addr: addr, Timeout: 200 * time.Millisecond}, nil)
	assert.Error(t, err)
}

func TestStore_SaveLoadRoundTrip(t *testing.T) {
	s, mr := newStore(t)
	ctx := context.Background()
	snap := testutil.Snapshot(t, 11)

	require.NoError(t, s.Save(ctx, "slot1", snap))
	assert.True(t, mr.Exists("test:save:slot1"))

	got, err := s.Load(ctx, "slot1")
	require.NoError(t, err)
	assert.Equal(t, testutil.MarshalSnapshot(t, snap), testutil.MarshalSnapshot(t, got))
}

func TestStore_LoadMissing(t *testing.T) {
	s, _ := newStore(t)
	_, err := s.Load(context.Background(), "ghost")
	assert.ErrorIs(t, err, redis.ErrSnapshotNotFound)
}

func TestStore_RejectsBadNames(t *testing.T) {
	s, _ := newStore(t)
	err := s.Save(context.Background(), "a:b", testutil.Snapshot(t, 2))
	assert.ErrorIs(t, err, storage.ErrInvalidName)
}

func TestStore_ListReportsDays(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()
	snap := testutil.Snapshot(t, 8)
	later := snap
	later.Day = snap.Day + 3

	require.NoError(t, s.Save(ctx, "early", snap))
	require.NoError(t, s.Save(ctx, "late", later))

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	days := map[string]int{}
	for _, sum := range list {
		days[sum.Name] = sum.Day
		assert.False(t, sum.SavedAt.IsZero())
	}
	assert.Equal(t, map[string]int{"early": snap.Day, "late": later.Day}, days)
}
