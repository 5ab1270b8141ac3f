package models

import (
	"time"

	"gorm.io/gorm"
)

// Activity is one logged exercise entry. CaloriesBurned is either supplied
// by the caller or derived from the MET table at insert time.
type Activity struct {
	gorm.Model
	UserID uint `gorm:"index;not null"`

	Type           string `gorm:"type:varchar(50);not null"` // walking|running|cycling|gym|swimming|yoga|other
	DurationMin    int    `gorm:"not null"`                  // 1..600
	Intensity      string `gorm:"type:varchar(20)"`          // low|moderate|high
	CaloriesBurned int
	Description    string
	Notes          string `gorm:"type:text"`

	DoneAt time.Time `gorm:"index;not null"`
}

func (a *Activity) ToDict() map[string]interface{} {
	return map[string]interface{}{
		"id":              a.ID,
		"activity_type":   a.Type,
		"duration_min":    a.DurationMin,
		"intensity":       a.Intensity,
		"calories_burned": a.CaloriesBurned,
		"description":     a.Description,
		"notes":           a.Notes,
		"created_at":      a.DoneAt.UTC().Format(time.RFC3339),
	}
}
