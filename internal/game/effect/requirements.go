package effect

// Subject is the read-only view of the player that requirements test.
type Subject interface {
	Skill(name string) int
	Reputation(faction string) int
	HasArtifact(artifactID string) bool
	HasClue(clueID string) bool
}

// Requirements gate an event or vendor. Every populated field must hold;
// an absent field is satisfied.
type Requirements struct {
	MinSkill      map[string]int `yaml:"min_skill"`
	Artifacts     []string       `yaml:"artifacts"`
	Clues         []string       `yaml:"clues"`
	MinFactionRep map[string]int `yaml:"min_faction_rep"`
}

// Satisfied reports whether s meets every requirement.
func (r Requirements) Satisfied(s Subject) bool {
	for skill, level := range r.MinSkill {
		if s.Skill(skill) < level {
			return false
		}
	}
	for _, id := range r.Artifacts {
		if !s.HasArtifact(id) {
			return false
		}
	}
	for _, id := range r.Clues {
		if !s.HasClue(id) {
			return false
		}
	}
	for faction, rep := range r.MinFactionRep {
		if s.Reputation(faction) < rep {
			return false
		}
	}
	return true
}
