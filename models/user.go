package models

import (
	"gorm.io/gorm"
)

// User is the identity record. Access is keyed by the opaque Code the bot
// hands out at registration; TelegramID ties the same person to the chat
// side. Users are never deleted in normal operation.
type User struct {
	gorm.Model
	TelegramID string `gorm:"uniqueIndex;not null"`
	Code       string `gorm:"uniqueIndex;not null"`
	Username   string
}
