package models

import (
	"time"

	"gorm.io/gorm"
)

// Profile holds the body metrics and targets for one user. The derived
// fields (BMR, TDEE, DailyCalorieGoal, ProteinGoal) are always recomputed
// together from the same snapshot of the input fields, never one at a time.
type Profile struct {
	gorm.Model
	UserID uint `gorm:"uniqueIndex;not null"`

	HeightCm      float64
	CurrentWeight float64 // kg, denormalized copy of the latest WeightEntry
	TargetWeight  float64 // kg
	BirthDate     time.Time
	Sex           string // "male" | "female"
	ActivityLevel string // sedentary | light | moderate | active | very_active
	GoalType      string // lose_weight | gain_weight | maintain
	RateTier      string // slow | moderate | fast

	BMR              int // kcal
	TDEE             int // kcal
	DailyCalorieGoal int // kcal
	ProteinGoal      int // g
}
