package console_test

import (
	"bytes"
	"io"
	"slices"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/cloudranger/internal/config"
	"github.com/cory-johannsen/cloudranger/internal/frontend/console"
	"github.com/cory-johannsen/cloudranger/internal/game/engine"
	"github.com/cory-johannsen/cloudranger/internal/game/world"
	"github.com/cory-johannsen/cloudranger/internal/storage/leaderboard"
)

func palette() config.PaletteConfig {
	return config.PaletteConfig{
		Title: "#00D7FF", Text: "#E4E4E4", Info: "#5FAFFF", Success: "#5FD75F",
		Warning: "#FFD75F", Error: "#FF5F5F", Accent: "#D787FF", Muted: "#808080", Width: 78,
	}
}

func newInput(script string) (*console.Input, *bytes.Buffer) {
	var out bytes.Buffer
	return console.NewInput(strings.NewReader(script), console.NewPresenter(&out, palette())), &out
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "Cloud Architecture", console.Label("cloud_architecture"))
	assert.Equal(t, "Security", console.Label("security"))
}

func TestCount(t *testing.T) {
	assert.Equal(t, "12,345", console.Count(12345))
	assert.Equal(t, "7", console.Count(7))
}

func TestSpan(t *testing.T) {
	assert.Equal(t, []int{0, 1, 2}, console.Span(0, 2))
	assert.Empty(t, console.Span(3, 1))
}

func TestInput_ChooseRepromptsUntilAllowed(t *testing.T) {
	in, out := newInput("abc\n7\n 2 \n")
	n, err := in.Number("Pick:", 1, 3)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 2, strings.Count(out.String(), "Please enter one of: 1-3"))
}

func TestInput_ChooseListsSparseSets(t *testing.T) {
	in, out := newInput("2\n5\n")
	n, err := in.Choose("Pick:", []int{5, 1, 9})
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Contains(t, out.String(), "Please enter one of: 1, 5, 9")
}

func TestInput_EOF(t *testing.T) {
	in, _ := newInput("x\n")
	_, err := in.Number("Pick:", 1, 2)
	assert.ErrorIs(t, err, io.EOF)
}

func TestInput_LastLineWithoutNewline(t *testing.T) {
	in, _ := newInput("3")
	n, err := in.Number("Pick:", 1, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestProperty_ChooseReturnsMemberOfAllowed(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		allowed := rapid.SliceOfNDistinct(rapid.IntRange(-20, 20), 1, 6, rapid.ID[int]).Draw(rt, "allowed")
		noise := rapid.SliceOfN(rapid.IntRange(-40, 40), 0, 8).Draw(rt, "noise")
		want := rapid.SampledFrom(allowed).Draw(rt, "want")

		var script strings.Builder
		for _, n := range noise {
			if !slices.Contains(allowed, n) {
				script.WriteString(strconv.Itoa(n) + "\n")
			}
		}
		script.WriteString(strconv.Itoa(want) + "\n")

		in, _ := newInput(script.String())
		got, err := in.Choose("Pick:", allowed)
		if err != nil {
			rt.Fatalf("choose: %v", err)
		}
		if got != want {
			rt.Fatalf("got %d, want %d", got, want)
		}
	})
}

func TestPresenter_RendersViews(t *testing.T) {
	var out bytes.Buffer
	p := console.NewPresenter(&out, palette())

	p.Notify("Security breach on API!", engine.SeverityError)
	p.RenderLocation(engine.LocationView{
		Name:        "Cloud City",
		Description: "A gleaming hub.",
		Region:      "us_east",
		Difficulty:  1,
		FirstVisit:  true,
		Weather:     &engine.WeatherView{Name: "Authentication Aurora", Severity: "Mild"},
		Neighbors:   []world.Neighbor{{ID: "a", Name: "Lambda Labs", Difficulty: 3}},
		Vendors:     []engine.VendorView{{ID: "v", Name: "Byte Bazaar"}},
	})
	p.RenderStatus(engine.StatusView{
		Name: "Ada", Health: 50, MaxHealth: 100, Energy: 100, MaxEnergy: 100, Credits: 1234.5,
		Skills:       []engine.Stat{{Name: "cloud_architecture", Value: 3}},
		Achievements: []string{"first_deploy"},
	})

	s := out.String()
	for _, want := range []string{
		"Security breach on API!", "Cloud City", "(new)", "Us East", "Authentication Aurora",
		"Lambda Labs", "Byte Bazaar", "Ada", "Health [##########..........] 50/100", "Cloud Architecture",
		"Achievements: First Deploy",
	} {
		assert.Contains(t, s, want)
	}
}

func TestPresenter_LeaderboardAndGameOver(t *testing.T) {
	var out bytes.Buffer
	p := console.NewPresenter(&out, palette())

	p.Leaderboard(nil)
	assert.Contains(t, out.String(), "No scores yet!")

	out.Reset()
	p.GameOver(engine.Outcome{Over: true, Won: true, Reason: engine.ReasonVictory}, 2345)
	assert.Contains(t, out.String(), "GAME OVER")
	assert.Contains(t, out.String(), "2,345")

	out.Reset()
	p.Leaderboard([]leaderboard.Entry{{Name: "Ada", Score: 1500, Topic: "Security Specialist"}})
	assert.Contains(t, out.String(), "1. Ada: 1,500")
}
