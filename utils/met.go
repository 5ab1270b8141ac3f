package utils

import "math"

// Compendium-style MET values per activity and intensity tier. Used only
// when the caller does not supply an explicit burned-calories figure.
var metTable = map[string]map[string]float64{
	"walking":  {"low": 2.8, "moderate": 3.5, "high": 4.3},
	"running":  {"low": 8.3, "moderate": 9.8, "high": 11.5},
	"cycling":  {"low": 5.8, "moderate": 7.5, "high": 10.0},
	"gym":      {"low": 3.5, "moderate": 5.0, "high": 6.0},
	"swimming": {"low": 5.8, "moderate": 7.0, "high": 9.8},
	"yoga":     {"low": 2.3, "moderate": 3.0, "high": 4.0},
	"other":    {"low": 3.0, "moderate": 4.0, "high": 5.0},
}

func MET(activityType, intensity string) float64 {
	tiers, ok := metTable[activityType]
	if !ok {
		tiers = metTable["other"]
	}
	met, ok := tiers[intensity]
	if !ok {
		met = tiers["moderate"]
	}
	return met
}

// CaloriesBurned derives energy from MET × weight × hours.
func CaloriesBurned(activityType, intensity string, weightKg float64, durationMin int) int {
	met := MET(activityType, intensity)
	return int(math.Round(met * weightKg * float64(durationMin) / 60.0))
}
