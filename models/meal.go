package models

import (
	"time"

	"gorm.io/gorm"
)

// Meal is one logged food (or water) entry.
type Meal struct {
	gorm.Model
	UserID uint `gorm:"index;not null"`

	Name     string `gorm:"type:varchar(255);not null"`
	Calories int    `gorm:"not null"`
	Proteins float64
	Fats     float64
	Carbs    float64
	Fiber    float64
	WaterML  int
	Type     string `gorm:"type:varchar(50);default:other"` // breakfast|lunch|dinner|snack|other
	Score    int    // healthiness 1..10
	Notes    string `gorm:"type:text"`

	// AteAt is the logical timestamp of the entry. It usually equals the
	// creation instant but may be backdated up to the configured bound.
	AteAt time.Time `gorm:"index;not null"`
}

func (m *Meal) ToDict() map[string]interface{} {
	return map[string]interface{}{
		"id":                m.ID,
		"created_at":        m.AteAt.UTC().Format(time.RFC3339),
		"meal_name":         m.Name,
		"calories":          m.Calories,
		"proteins":          m.Proteins,
		"fats":              m.Fats,
		"carbs":             m.Carbs,
		"fiber":             m.Fiber,
		"water_ml":          m.WaterML,
		"meal_type":         m.Type,
		"healthiness_score": m.Score,
		"notes":             m.Notes,
	}
}
