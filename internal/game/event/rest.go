package event

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/cloudranger/internal/game/dice"
	"github.com/cory-johannsen/cloudranger/internal/game/effect"
)

// RestOutcome is one way an interrupted rest can end. Effects apply as
// written; the rolled fields add amounts drawn when the outcome is chosen.
type RestOutcome struct {
	Text    string      `yaml:"text"`
	Effects effect.List `yaml:"effects"`
	Credits *dice.Range `yaml:"credits"`
	Health  *dice.Range `yaml:"health"`
	Energy  *dice.Range `yaml:"energy"`
	// RandomSkill raises one uniformly chosen skill by this amount.
	RandomSkill int `yaml:"random_skill"`
	// CluePrefix grants a clue with id "<prefix>_<1000-9999>".
	CluePrefix string `yaml:"clue_prefix"`
	ClueText   string `yaml:"clue_text"`
}

// RestKind groups outcomes under one kind of interruption.
type RestKind struct {
	ID   string `yaml:"id"`
	Text string `yaml:"text"`
	// Flavor lines; one is picked and shown before the outcome.
	Flavor   []string       `yaml:"flavor"`
	Outcomes []*RestOutcome `yaml:"outcomes"`
}

// RestTable decides whether a rest is interrupted and what happens then.
type RestTable struct {
	// SafeChance and UnsafeChance are percent chances of an interruption.
	SafeChance   int         `yaml:"safe_chance"`
	UnsafeChance int         `yaml:"unsafe_chance"`
	Kinds        []*RestKind `yaml:"kinds"`
}

// Interruption is a rolled rest outcome ready to apply.
type Interruption struct {
	Kind    string
	Lines   []string
	Effects effect.List
}

// Validate checks the table's own invariants.
func (t *RestTable) Validate() error {
	var errs []error
	for _, c := range []int{t.SafeChance, t.UnsafeChance} {
		if c < 0 || c > 100 {
			errs = append(errs, fmt.Errorf("chance must be 0-100, got %d", c))
		}
	}
	if len(t.Kinds) == 0 {
		errs = append(errs, errors.New("at least one kind is required"))
	}
	for _, k := range t.Kinds {
		if k.ID == "" {
			errs = append(errs, errors.New("kind id must not be empty"))
		}
		if len(k.Outcomes) == 0 {
			errs = append(errs, fmt.Errorf("kind %q has no outcomes", k.ID))
		}
		for i, o := range k.Outcomes {
			for _, r := range []*dice.Range{o.Credits, o.Health, o.Energy} {
				if r == nil {
					continue
				}
				if err := r.Validate(); err != nil {
					errs = append(errs, fmt.Errorf("kind %q outcome %d: %w", k.ID, i, err))
				}
			}
			if o.Effects.NeedsService() {
				errs = append(errs, fmt.Errorf("kind %q outcome %d: rest effects cannot target a service", k.ID, i))
			}
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("rest table: %w", errors.Join(errs...))
	}
	return nil
}

// Roll decides whether a rest is interrupted and, if so, draws the kind, a
// flavor line, the outcome and every rolled amount, in that order. skills
// is the pool RandomSkill picks from.
//
// Postcondition: Returns nil when the rest is undisturbed. The returned
// effects are fixed; applying them rolls nothing.
func (t *RestTable) Roll(safe bool, roller *dice.Roller, skills []string) *Interruption {
	if t == nil || len(t.Kinds) == 0 {
		return nil
	}
	chance := t.UnsafeChance
	if safe {
		chance = t.SafeChance
	}
	if !roller.Chance("rest interruption", chance) {
		return nil
	}
	k := t.Kinds[roller.Pick("rest kind", len(t.Kinds))]
	in := &Interruption{Kind: k.ID}
	if k.Text != "" {
		in.Lines = append(in.Lines, k.Text)
	}
	if len(k.Flavor) > 0 {
		in.Lines = append(in.Lines, k.Flavor[roller.Pick("rest flavor", len(k.Flavor))])
	}
	o := k.Outcomes[roller.Pick("rest outcome", len(k.Outcomes))]
	if o.Text != "" {
		in.Lines = append(in.Lines, o.Text)
	}
	in.Effects = append(in.Effects, o.Effects...)
	if o.Credits != nil {
		in.Effects = append(in.Effects, effect.CreditsDelta{Amount: float64(roller.InRange("rest credits", *o.Credits))})
	}
	if o.Health != nil {
		in.Effects = append(in.Effects, effect.HealthDelta{Amount: roller.InRange("rest health", *o.Health)})
	}
	if o.Energy != nil {
		in.Effects = append(in.Effects, effect.EnergyDelta{Amount: roller.InRange("rest energy", *o.Energy)})
	}
	if o.RandomSkill != 0 && len(skills) > 0 {
		skill := skills[roller.Pick("rest skill", len(skills))]
		in.Effects = append(in.Effects, effect.SkillDelta{Skill: skill, Amount: o.RandomSkill})
	}
	if o.CluePrefix != "" {
		id := fmt.Sprintf("%s_%d", o.CluePrefix, roller.Between("rest clue id", 1000, 9999))
		in.Effects = append(in.Effects, effect.ClueGrant{ClueID: id, Text: o.ClueText})
	}
	return in
}

// Effects returns every fixed effect list in the table, for reference checks.
func (t *RestTable) Effects() map[string]effect.List {
	out := make(map[string]effect.List)
	if t == nil {
		return out
	}
	for _, k := range t.Kinds {
		for i, o := range k.Outcomes {
			out[fmt.Sprintf("%s outcome %d", k.ID, i)] = o.Effects
		}
	}
	return out
}

type restFile struct {
	Rest *RestTable `yaml:"rest"`
}

// LoadRest parses a rest table document.
//
// Postcondition: Returns a validated table, or an error.
func LoadRest(r io.Reader) (*RestTable, error) {
	var f restFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && err != io.EOF {
		return nil, fmt.Errorf("parsing rest YAML: %w", err)
	}
	if f.Rest == nil {
		return nil, errors.New("rest table is missing")
	}
	if err := f.Rest.Validate(); err != nil {
		return nil, err
	}
	return f.Rest, nil
}

// LoadRestFile reads and parses the rest table at path.
func LoadRestFile(path string) (*RestTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rest file %s: %w", path, err)
	}
	t, err := LoadRest(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}
