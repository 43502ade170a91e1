package engine

// Achievement ids.
const (
	AchievementFirstDeploy = "first_deploy"
	AchievementFirstQuest  = "first_quest"
)

var achievementNames = map[string]string{
	AchievementFirstDeploy: "Cloud Architect",
	AchievementFirstQuest:  "Quest Runner",
}

// award grants an achievement once and journals the unlock.
func (g *Game) award(id string) {
	name := achievementNames[id]
	if !g.player.Award(id, name) {
		return
	}
	g.journal(SeveritySuccess, "Achievement unlocked: %s", name)
}
