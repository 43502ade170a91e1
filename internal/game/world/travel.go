package world

// Travel tuning.
const (
	baseTravelEnergy = 15
	minTravelEnergy  = 10
	dangerMargin     = 3
)

// TravelEnergyCost is the energy needed to move from one location to another:
// max(10, 15 + (to.Difficulty - from.Difficulty) × 2).
func TravelEnergyCost(from, to *Location) int {
	return max(minTravelEnergy, baseTravelEnergy+(to.Difficulty-from.Difficulty)*2)
}

// TooDangerous reports whether to is beyond reach for a ranger whose best
// skill is maxSkill.
func TooDangerous(to *Location, maxSkill int) bool {
	return to.Difficulty > maxSkill+dangerMargin
}
