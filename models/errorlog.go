package models

import "gorm.io/gorm"

// ErrorLog records a failure surfaced to a user or raised by a background job.
type ErrorLog struct {
	gorm.Model
	GuildID string `gorm:"size:64; index"`
	UserID  string `gorm:"size:64"`
	// Command name, component custom id or job name.
	Source  string `gorm:"size:128"`
	Message string `gorm:"size:2000"`
}
