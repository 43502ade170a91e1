package content_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/cloudranger/internal/game/content"
)

const shippedDir = "../../../content"

// copyContent copies the shipped tables into a temp dir so a test can break one.
func copyContent(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	entries, err := os.ReadDir(shippedDir)
	require.NoError(t, err)
	for _, e := range entries {
		data, err := os.ReadFile(filepath.Join(shippedDir, e.Name()))
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(dir, e.Name()), data, 0o644))
	}
	return dir
}

func overwrite(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

func TestLoad_ShippedContent(t *testing.T) {
	b, err := content.Load(shippedDir)
	require.NoError(t, err)

	assert.Equal(t, "cloud_city", b.World.Start().ID)
	assert.Equal(t, 26, b.World.Len())
	assert.NotEmpty(t, b.Items.AllArtifacts())
	assert.NotEmpty(t, b.Services.All())
	assert.NotEmpty(t, b.Statuses.All())
	require.NotNil(t, b.Rest)
	assert.Len(t, b.Rest.Kinds, 3)

	var hasVictory bool
	for _, q := range b.Quests {
		if q.ID == "shadow_admin" {
			hasVictory = true
		}
	}
	assert.True(t, hasVictory)
}

func TestLoad_MissingDirectory(t *testing.T) {
	_, err := content.Load(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "content validation failed")
}

func TestLoad_UnknownVendorStock(t *testing.T) {
	dir := copyContent(t)
	overwrite(t, dir, content.VendorsFile, `
vendors:
  - id: junk
    name: Junk Shop
    location: cloud_city
    artifacts: [flux_capacitor]
    reputation_required: {Illuminati: 5}
`)
	_, err := content.Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown artifact "flux_capacitor"`)
	assert.Contains(t, err.Error(), `unknown faction "Illuminati"`)
}

func TestLoad_ClueNeverGranted(t *testing.T) {
	dir := copyContent(t)
	overwrite(t, dir, content.QuestsFile, `
quests:
  - id: shadow_admin
    title: Impossible
    objectives:
      - id: o1
        description: find a clue nobody hands out
        trigger: {kind: has_clue, clue: unobtainium}
`)
	_, err := content.Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown clue (never granted) "unobtainium"`)
}

func TestLoad_UnknownHazardStatus(t *testing.T) {
	dir := copyContent(t)
	overwrite(t, dir, content.LocationsFile, `
start: a
locations:
  - id: a
    name: A
    region: us-east-1
    difficulty: 1
    connections: [b]
  - id: b
    name: B
    region: us-east-1
    difficulty: 2
    connections: [a]
    hazards:
      - name: Pit
        chance: 10
        damage: {min: 1, max: 2}
        avoidable_with_skill: juggling
        status: on_fire
`)
	_, err := content.Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown skill "juggling"`)
	assert.Contains(t, err.Error(), `unknown status "on_fire"`)
}

func TestLoad_RestTableReferences(t *testing.T) {
	dir := copyContent(t)
	overwrite(t, dir, content.RestFile, `
rest:
  safe_chance: 20
  unsafe_chance: 40
  kinds:
    - id: encounter
      outcomes:
        - text: A stranger waves.
          effects:
            - {kind: faction, faction: Illuminati, amount: 1}
            - {kind: consumable, id: moon_cheese}
`)
	_, err := content.Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown faction "Illuminati"`)
	assert.Contains(t, err.Error(), `unknown consumable "moon_cheese"`)
}

func TestLoad_MissingRestTable(t *testing.T) {
	dir := copyContent(t)
	require.NoError(t, os.Remove(filepath.Join(dir, content.RestFile)))
	_, err := content.Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), content.RestFile)
}
