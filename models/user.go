package models

import "gorm.io/gorm"

// User is a social profile, created lazily the first time a Discord user interacts.
type User struct {
	gorm.Model
	DiscordID string  `gorm:"uniqueIndex; size:64"`
	Username  *string `gorm:"size:128"`
	Bio       string  `gorm:"size:512"`
}

// DisplayName falls back to the Discord ID when no username was captured.
func (u User) DisplayName() string {
	if u.Username != nil && *u.Username != "" {
		return *u.Username
	}
	return u.DiscordID
}
