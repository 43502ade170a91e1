// Package weather tracks the per-location weather and its gameplay consequences.
package weather

// Kind identifies a weather type.
type Kind string

// Weather kinds.
const (
	DataStorm            Kind = "data_storm"
	ProcessingFog        Kind = "processing_fog"
	CPUHeatwave          Kind = "cpu_heatwave"
	MemoryFrost          Kind = "memory_frost"
	ClearSignals         Kind = "clear_signals"
	QuantumFluctuations  Kind = "quantum_fluctuations"
	PacketPrecipitation  Kind = "packet_precipitation"
	AuthenticationAurora Kind = "authentication_aurora"
)

// Consequences are the typed gameplay modifiers of a weather type.
type Consequences struct {
	// ExploreModifier is added to the explore discovery chance, in percent.
	ExploreModifier int
	// EnergyDrain is the fraction of current energy lost on arrival.
	EnergyDrain float64
	// BandwidthLoss is the fraction of bandwidth lost on arrival.
	BandwidthLoss float64
	// RestHealth and RestEnergy multiply the rest recovery amounts.
	RestHealth float64
	RestEnergy float64
	// ServicePerformance is applied to every deployed service each tick.
	ServicePerformance int
}

// Type describes one weather condition.
type Type struct {
	Kind         Kind
	Name         string
	Effect       string
	Description  string
	Consequences Consequences
}

var types = []Type{
	{
		Kind:         DataStorm,
		Name:         "Data Storm",
		Effect:       "Bandwidth -20%",
		Description:  "A storm of corrupted data packets. Network performance is reduced and connections are unstable.",
		Consequences: Consequences{BandwidthLoss: 0.2, RestHealth: 1, RestEnergy: 1},
	},
	{
		Kind:         ProcessingFog,
		Name:         "Processing Fog",
		Effect:       "Investigation -2",
		Description:  "Dense fog reducing visibility and making investigation more difficult.",
		Consequences: Consequences{ExploreModifier: -15, RestHealth: 1, RestEnergy: 1},
	},
	{
		Kind:         CPUHeatwave,
		Name:         "CPU Heatwave",
		Effect:       "Energy -10%",
		Description:  "Extreme computational heat causing systems to require more energy to operate.",
		Consequences: Consequences{EnergyDrain: 0.1, RestHealth: 1, RestEnergy: 0.7},
	},
	{
		Kind:         MemoryFrost,
		Name:         "Memory Frost",
		Effect:       "Service performance -2",
		Description:  "Cold conditions slowing memory access and overall service performance.",
		Consequences: Consequences{ServicePerformance: -1, RestHealth: 1, RestEnergy: 1},
	},
	{
		Kind:         ClearSignals,
		Name:         "Clear Signals",
		Effect:       "All stats +5%",
		Description:  "Perfect conditions with clear connections boosting all systems.",
		Consequences: Consequences{ExploreModifier: 10, RestHealth: 1.2, RestEnergy: 1.2},
	},
	{
		Kind:         QuantumFluctuations,
		Name:         "Quantum Fluctuations",
		Effect:       "Random effects",
		Description:  "Unpredictable quantum effects causing systems to behave erratically.",
		Consequences: Consequences{RestHealth: 1, RestEnergy: 1},
	},
	{
		Kind:         PacketPrecipitation,
		Name:         "Packet Precipitation",
		Effect:       "Network -15%, Credits +10%",
		Description:  "A rain of data packets slowing networks but occasionally containing valuable information.",
		Consequences: Consequences{RestHealth: 1, RestEnergy: 1},
	},
	{
		Kind:         AuthenticationAurora,
		Name:         "Authentication Aurora",
		Effect:       "Security +1, Energy -5%",
		Description:  "Beautiful authentication patterns in the sky that enhance security but drain energy.",
		Consequences: Consequences{EnergyDrain: 0.05, RestHealth: 1, RestEnergy: 1},
	},
}

// Types returns every weather type in a fixed order.
func Types() []Type { return append([]Type(nil), types...) }

// Lookup returns the weather type for kind.
func Lookup(kind Kind) (Type, bool) {
	for _, t := range types {
		if t.Kind == kind {
			return t, true
		}
	}
	return Type{}, false
}

// Severity is an intensity level from 1 to 6.
type Severity struct {
	Level      int
	Name       string
	Multiplier float64
}

var severities = []Severity{
	{Level: 1, Name: "Minimal", Multiplier: 0.5},
	{Level: 2, Name: "Light", Multiplier: 0.75},
	{Level: 3, Name: "Moderate", Multiplier: 1.0},
	{Level: 4, Name: "Heavy", Multiplier: 1.5},
	{Level: 5, Name: "Extreme", Multiplier: 2.0},
	{Level: 6, Name: "Catastrophic", Multiplier: 3.0},
}

// SeverityLevel returns the severity for level, clamped to [1, 6].
func SeverityLevel(level int) Severity {
	level = min(len(severities), max(1, level))
	return severities[level-1]
}

// regionalTendencies lists the weather a region favours. Unknown regions use "unknown".
var regionalTendencies = map[string][]Kind{
	"us-east-1":      {ClearSignals, ProcessingFog},
	"us-east-2":      {CPUHeatwave, ClearSignals},
	"us-west-1":      {DataStorm, PacketPrecipitation},
	"us-west-2":      {MemoryFrost, AuthenticationAurora},
	"eu-west-1":      {ClearSignals, AuthenticationAurora},
	"eu-central-1":   {ProcessingFog, MemoryFrost},
	"ap-southeast-1": {DataStorm, CPUHeatwave},
	"ap-northeast-1": {QuantumFluctuations, MemoryFrost},
	"global":         {QuantumFluctuations, DataStorm},
	"unknown":        {QuantumFluctuations},
}

// Tendencies returns the weather kinds region favours.
func Tendencies(region string) []Kind {
	if ks, ok := regionalTendencies[region]; ok {
		return ks
	}
	return regionalTendencies["unknown"]
}
