package console

import (
	"fmt"

	"github.com/cory-johannsen/cloudranger/internal/game/engine"
	"github.com/cory-johannsen/cloudranger/internal/game/player"
)

var difficultyChoices = []struct {
	name  string
	label string
}{
	{"easy", "Easy (more credits, more time)"},
	{"normal", "Normal"},
	{"hard", "Hard (fewer credits, less time)"},
}

// ChooseOptions asks for the ranger's name, difficulty and specialization.
// An empty name keeps defaults.PlayerName.
//
// Postcondition: The returned options name a known difficulty and specialization.
func ChooseOptions(in *Input, out *Presenter, defaults engine.Options) (engine.Options, error) {
	opts := defaults

	out.Heading("CLOUD RANGER")
	out.Text("The Shadow Admin is tearing through the cloud. Find the clues, build your services and stop them before time runs out.")

	name, err := in.Line(fmt.Sprintf("Your name [%s]:", defaults.PlayerName))
	if err != nil {
		return engine.Options{}, err
	}
	if name != "" {
		opts.PlayerName = name
	}

	out.Heading("Difficulty")
	labels := make([]string, len(difficultyChoices))
	for i, d := range difficultyChoices {
		labels[i] = d.label
	}
	out.Menu(labels, "")
	n, err := in.Number("Choose difficulty:", 1, len(difficultyChoices))
	if err != nil {
		return engine.Options{}, err
	}
	opts.Difficulty = difficultyChoices[n-1].name

	out.Heading("Specialization")
	specs := player.Specializations()
	labels = make([]string, len(specs))
	for i, s := range specs {
		labels[i] = s.Name + bonusText(s)
	}
	out.Menu(labels, "")
	n, err = in.Number("Choose specialization:", 1, len(specs))
	if err != nil {
		return engine.Options{}, err
	}
	opts.Specialization = specs[n-1].ID
	return opts, nil
}

func bonusText(s player.Specialization) string {
	text := ""
	for _, skill := range player.Skills {
		if b := s.Bonuses[skill]; b > 0 {
			if text != "" {
				text += ", "
			}
			text += fmt.Sprintf("%s +%d", Label(skill), b)
		}
	}
	if text == "" {
		return ""
	}
	return " (" + text + ")"
}
