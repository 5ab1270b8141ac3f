package utils

import (
	"math"
	"time"
)

// Daily kcal adjustment per weight-change-rate tier (≈0.25/0.5/0.75 kg/week).
var rateAdjustments = map[string]float64{
	"slow":     275,
	"moderate": 550,
	"fast":     825,
}

var activityMultipliers = map[string]float64{
	"sedentary":   1.2,
	"light":       1.375,
	"moderate":    1.55,
	"active":      1.725,
	"very_active": 1.9,
}

// MinDailyCalories is the hard floor for any deficit goal. Never bypassed.
const MinDailyCalories = 1200

// Age in whole years at the given date.
func Age(birth, today time.Time) int {
	years := today.Year() - birth.Year()
	anniversary := time.Date(today.Year(), birth.Month(), birth.Day(), 0, 0, 0, 0, time.UTC)
	if time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC).Before(anniversary) {
		years--
	}
	return years
}

// BMR is Mifflin-St Jeor: 10w + 6.25h - 5a, +5 for men, -161 otherwise.
func BMR(weightKg, heightCm float64, age int, sex string) int {
	base := 10*weightKg + 6.25*heightCm - 5*float64(age)
	if sex == "male" {
		base += 5
	} else {
		base -= 161
	}
	return int(math.Round(base))
}

// TDEE scales BMR by the activity multiplier; unknown tiers fall back to
// sedentary rather than erroring.
func TDEE(bmr int, activityLevel string) int {
	mult, ok := activityMultipliers[activityLevel]
	if !ok {
		mult = 1.2
	}
	return int(math.Round(float64(bmr) * mult))
}

// DailyCalorieGoal applies the rate-tier adjustment in the direction of the
// goal. Deficits never dip below MinDailyCalories.
func DailyCalorieGoal(tdee int, rateTier, goalType string) int {
	adj, ok := rateAdjustments[rateTier]
	if !ok {
		adj = rateAdjustments["moderate"]
	}
	switch goalType {
	case "lose", "lose_weight":
		goal := float64(tdee) - adj
		if goal < MinDailyCalories {
			return MinDailyCalories
		}
		return int(math.Round(goal))
	case "gain", "gain_weight":
		return int(math.Round(float64(tdee) + adj))
	default:
		return tdee
	}
}

// ProteinGoal is 1.6 g per kg of target body weight.
func ProteinGoal(targetWeightKg float64) int {
	return int(math.Round(targetWeightKg * 1.6))
}
