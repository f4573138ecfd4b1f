package database

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"picksBot/models"
)

// Migration is a named data fix that runs once per database.
type Migration struct {
	Name string
	Run  func(db *gorm.DB) error
}

// Migrations run in order after AutoMigrate.
var Migrations = []Migration{
	{Name: "recount_post_counters", Run: recountPostCounters},
	{Name: "derive_post_status", Run: derivePostStatus},
}

func RunMigrations(db *gorm.DB, migrations []Migration) error {
	for _, m := range migrations {
		var existing models.Migration
		err := db.Where("name = ?", m.Name).First(&existing).Error
		if err == nil {
			slog.Debug("migration already executed, skipping", "migration", m.Name)
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("error checking migration %s: %w", m.Name, err)
		}

		slog.Info("running migration", "migration", m.Name)
		if err := m.Run(db); err != nil {
			return fmt.Errorf("migration %s: %w", m.Name, err)
		}

		record := models.Migration{Name: m.Name, ExecutedAt: time.Now()}
		if err := db.Create(&record).Error; err != nil {
			return fmt.Errorf("error marking migration %s as complete: %w", m.Name, err)
		}
	}
	return nil
}

// recountPostCounters rebuilds the denormalized like, repost and comment
// counts from the relation tables.
func recountPostCounters(db *gorm.DB) error {
	result := db.Exec(`
		UPDATE posts SET
			like_count = (SELECT COUNT(*) FROM likes WHERE likes.post_id = posts.id),
			repost_count = (SELECT COUNT(*) FROM reposts WHERE reposts.post_id = posts.id),
			comment_count = (SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id AND comments.deleted_at IS NULL)
	`)
	if result.Error != nil {
		return result.Error
	}
	slog.Info("post counters recounted", "posts", result.RowsAffected)
	return nil
}

// derivePostStatus fixes pick posts whose stored status disagrees with their legs.
func derivePostStatus(db *gorm.DB) error {
	var posts []models.Post
	fixed := 0
	result := db.Preload("Picks").
		Where("kind = ?", models.PostKindPick).
		FindInBatches(&posts, 200, func(tx *gorm.DB, batch int) error {
			for _, post := range posts {
				status := post.DeriveStatus()
				if status == post.Status {
					continue
				}
				if err := db.Model(&models.Post{}).Where("id = ?", post.ID).Update("status", status).Error; err != nil {
					return err
				}
				fixed++
			}
			return nil
		})
	if result.Error != nil {
		return result.Error
	}
	slog.Info("pick post statuses derived", "fixed", fixed)
	return nil
}
