package testutil

import (
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/cloudranger/internal/game/content"
	"github.com/cory-johannsen/cloudranger/internal/game/dice"
	"github.com/cory-johannsen/cloudranger/internal/game/engine"
)

// ContentDir returns the absolute path of the shipped content tables.
func ContentDir() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "..", "..", "content")
}

// NewGame starts a seeded normal-difficulty playthrough over the shipped content.
//
// Postcondition: Returns a running game, or fails the test.
func NewGame(t *testing.T, seed int64) *engine.Game {
	t.Helper()
	b, err := content.Load(ContentDir())
	require.NoError(t, err)
	g, err := engine.New(b, engine.Options{
		Difficulty:     "normal",
		Specialization: "security_specialist",
		PlayerName:     "Ada",
		VictoryQuest:   "shadow_admin",
	}, dice.NewLoggedRoller(dice.NewSeededSource(seed), nil), nil, nil)
	require.NoError(t, err)
	return g
}

// Snapshot returns a snapshot of a seeded game that has rested once.
func Snapshot(t *testing.T, seed int64) engine.Snapshot {
	t.Helper()
	g := NewGame(t, seed)
	_ = g.Rest()
	return g.Snapshot()
}

// MarshalSnapshot encodes snap or fails the test.
func MarshalSnapshot(t *testing.T, snap engine.Snapshot) []byte {
	t.Helper()
	data, err := snap.Marshal()
	require.NoError(t, err)
	return data
}
