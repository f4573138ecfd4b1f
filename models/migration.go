package models

import "time"

// Migration marks a named data migration as applied.
type Migration struct {
	ID         uint   `gorm:"primaryKey"`
	Name       string `gorm:"uniqueIndex; size:255"`
	ExecutedAt time.Time
}
