package savefile_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/cloudranger/internal/storage"
	"github.com/cory-johannsen/cloudranger/internal/storage/savefile"
	"github.com/cory-johannsen/cloudranger/internal/testutil"
)

func newStore(t *testing.T) (*savefile.Store, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "saves")
	s, err := savefile.New(dir, nil)
	require.NoError(t, err)
	return s, dir
}

func TestStore_SaveLoadRoundTrip(t *testing.T) {
	s, dir := newStore(t)
	ctx := context.Background()
	snap := testutil.Snapshot(t, 42)

	require.NoError(t, s.Save(ctx, "slot1", snap))
	assert.FileExists(t, filepath.Join(dir, "slot1.yaml"))

	got, err := s.Load(ctx, "slot1")
	require.NoError(t, err)
	assert.Equal(t, testutil.MarshalSnapshot(t, snap), testutil.MarshalSnapshot(t, got))
}

func TestStore_SaveOverwrites(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()
	first := testutil.Snapshot(t, 1)
	second := first
	second.Day = first.Day + 7

	require.NoError(t, s.Save(ctx, "slot", first))
	require.NoError(t, s.Save(ctx, "slot", second))

	got, err := s.Load(ctx, "slot")
	require.NoError(t, err)
	assert.Equal(t, second.Day, got.Day)
}

func TestStore_LoadMissing(t *testing.T) {
	s, _ := newStore(t)
	_, err := s.Load(context.Background(), "nope")
	assert.ErrorIs(t, err, savefile.ErrSnapshotNotFound)
}

func TestStore_RejectsBadNames(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()
	snap := testutil.Snapshot(t, 3)
	for _, name := range []string{"", "../escape", "a b", "x/y"} {
		assert.ErrorIs(t, s.Save(ctx, name, snap), storage.ErrInvalidName, name)
	}
}

func TestStore_LoadRejectsCorruptFile(t *testing.T) {
	s, dir := newStore(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte("version: 1\nbogus: true\n"), 0o644))
	_, err := s.Load(context.Background(), "bad")
	assert.Error(t, err)
}

func TestStore_ListSkipsForeignFiles(t *testing.T) {
	s, dir := newStore(t)
	ctx := context.Background()
	snap := testutil.Snapshot(t, 5)
	require.NoError(t, s.Save(ctx, "alpha", snap))
	require.NoError(t, s.Save(ctx, "beta", snap))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hi"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.yaml"), []byte(":::"), 0o644))

	list, err := s.List(ctx)
	require.NoError(t, err)
	var names []string
	for _, sum := range list {
		names = append(names, sum.Name)
		assert.Equal(t, snap.Day, sum.Day)
	}
	assert.ElementsMatch(t, []string{"alpha", "beta"}, names)
}
