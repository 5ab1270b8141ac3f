package models

import (
	"gorm.io/gorm"
)

// OpLog is the append-only record of failed or rejected operations, kept
// for post-hoc debugging only. Nothing in the request path reads it.
type OpLog struct {
	gorm.Model
	TraceID  string `gorm:"type:varchar(36);index"`
	Tool     string `gorm:"type:varchar(64)"`
	Message  string `gorm:"type:text"`
	UserCode string `gorm:"type:varchar(16)"` // attempted code, may be unresolved
	RawInput string `gorm:"type:text"`
}
