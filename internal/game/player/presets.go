package player

import (
	"fmt"
	"sort"
)

// Difficulty is a starting preset and the incident multiplier it implies.
type Difficulty struct {
	Name     string
	Credits  float64
	TimeLeft int
	// StarterArtifacts are artifact template ids granted at creation.
	StarterArtifacts []string
	// Multiplier scales service incident chance and severity.
	Multiplier float64
}

var difficulties = map[string]Difficulty{
	"easy":   {Name: "easy", Credits: 750, TimeLeft: 400, StarterArtifacts: []string{"s3_scanner"}, Multiplier: 0.7},
	"normal": {Name: "normal", Credits: 500, TimeLeft: 365, Multiplier: 1.0},
	"hard":   {Name: "hard", Credits: 300, TimeLeft: 300, Multiplier: 1.3},
}

// DifficultyByName returns the named preset.
func DifficultyByName(name string) (Difficulty, error) {
	d, ok := difficulties[name]
	if !ok {
		return Difficulty{}, fmt.Errorf("unknown difficulty %q", name)
	}
	return d, nil
}

// Specialization grants skill bonuses on top of the base levels.
type Specialization struct {
	ID      string
	Name    string
	Bonuses map[string]int
}

var specializations = map[string]Specialization{
	"security_specialist":    {ID: "security_specialist", Name: "Security Specialist", Bonuses: map[string]int{SkillSecurity: 2, SkillInvestigation: 1}},
	"network_engineer":       {ID: "network_engineer", Name: "Network Engineer", Bonuses: map[string]int{SkillNetworking: 2, SkillCloud: 1}},
	"database_administrator": {ID: "database_administrator", Name: "Database Administrator", Bonuses: map[string]int{SkillDatabase: 2, SkillServerless: 1}},
	"devops_engineer":        {ID: "devops_engineer", Name: "DevOps Engineer", Bonuses: map[string]int{SkillCloud: 2, SkillSecurity: 1}},
}

// SpecializationByID returns the named specialization.
func SpecializationByID(id string) (Specialization, error) {
	s, ok := specializations[id]
	if !ok {
		return Specialization{}, fmt.Errorf("unknown specialization %q", id)
	}
	return s, nil
}

// Specializations returns every specialization sorted by ID.
func Specializations() []Specialization {
	out := make([]Specialization, 0, len(specializations))
	for _, s := range specializations {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
