package models

import (
	"gorm.io/gorm"
)

// InsightCache stores one generated narrative per (user, kind, local date).
// A new write for the same key replaces the old row; any mutating event for
// the user deletes all of today's rows regardless of kind.
type InsightCache struct {
	gorm.Model
	UserID uint   `gorm:"not null;uniqueIndex:idx_insight_key"`
	Kind   string `gorm:"type:varchar(30);not null;uniqueIndex:idx_insight_key"` // daily|tips|prediction
	Date   string `gorm:"type:varchar(10);not null;uniqueIndex:idx_insight_key"` // local YYYY-MM-DD
	Text   string `gorm:"type:text"`
}
