package models

import (
	"time"

	"gorm.io/gorm"
)

// WeightEntry is an append-only weight sample. Profile.CurrentWeight always
// mirrors the newest entry.
type WeightEntry struct {
	gorm.Model
	UserID uint `gorm:"index;not null"`

	Weight     float64 `gorm:"not null"` // kg
	Notes      string
	RecordedAt time.Time `gorm:"index;not null"`
}
