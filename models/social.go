package models

import (
	"time"

	"gorm.io/gorm"
)

type Like struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	PostID    uint `gorm:"uniqueIndex:like_post_user_idx"`
	UserID    uint `gorm:"uniqueIndex:like_post_user_idx"`
}

type Repost struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	PostID    uint `gorm:"uniqueIndex:repost_post_user_idx"`
	UserID    uint `gorm:"uniqueIndex:repost_post_user_idx"`
}

type Follow struct {
	ID         uint `gorm:"primaryKey"`
	CreatedAt  time.Time
	FollowerID uint `gorm:"uniqueIndex:follow_pair_idx"`
	FolloweeID uint `gorm:"uniqueIndex:follow_pair_idx; index"`
}

type Comment struct {
	gorm.Model
	PostID   uint `gorm:"index"`
	AuthorID uint
	Author   User   `gorm:"foreignKey:AuthorID"`
	Body     string `gorm:"size:1000"`
}
