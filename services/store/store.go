// Package store is the persistence boundary for profiles, posts, picks and
// social relations. Services depend on the Store interface, not on gorm.
package store

import (
	"context"
	"errors"
	"time"

	"picksBot/models"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrForbidden  = errors.New("forbidden")
	ErrSelfFollow = errors.New("cannot follow yourself")
)

// FeedQuery selects a page of posts, newest first.
type FeedQuery struct {
	// ViewerID with FollowingOnly restricts the feed to accounts the viewer follows.
	ViewerID      uint
	FollowingOnly bool
	AuthorID      uint
	Limit         int
	Offset        int
}

const (
	DefaultPageSize = 10
	MaxPageSize     = 50
)

// Normalize clamps the page size and offset.
func (q FeedQuery) Normalize() FeedQuery {
	if q.Limit <= 0 {
		q.Limit = DefaultPageSize
	}
	if q.Limit > MaxPageSize {
		q.Limit = MaxPageSize
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	return q
}

// Cursor marks the newest post a change-stream consumer has seen.
type Cursor struct {
	CreatedAt time.Time
	ID        uint
}

// After reports whether the post is newer than the cursor.
func (c Cursor) After(p models.Post) bool {
	if p.CreatedAt.Equal(c.CreatedAt) {
		return p.ID > c.ID
	}
	return p.CreatedAt.After(c.CreatedAt)
}

// Standing is one row of the pick leaderboard.
type Standing struct {
	User models.User
	Won  int64
	Lost int64
}

type Store interface {
	EnsureUser(ctx context.Context, discordID, username string) (*models.User, error)
	UserByDiscordID(ctx context.Context, discordID string) (*models.User, error)

	CreatePost(ctx context.Context, post *models.Post) error
	Post(ctx context.Context, id uint) (*models.Post, error)
	PostByShareID(ctx context.Context, shareID string) (*models.Post, error)
	DeletePost(ctx context.Context, postID, requesterID uint) error
	SetPostMessage(ctx context.Context, postID uint, guildID, channelID, messageID string) error
	Feed(ctx context.Context, q FeedQuery) ([]models.Post, error)
	PostsSince(ctx context.Context, cursor Cursor, limit int) ([]models.Post, error)

	SetLiked(ctx context.Context, postID, userID uint, liked bool) (int, error)
	SetReposted(ctx context.Context, postID, userID uint, reposted bool) (int, error)
	HasLiked(ctx context.Context, postID, userID uint) (bool, error)
	HasReposted(ctx context.Context, postID, userID uint) (bool, error)
	SetFollowing(ctx context.Context, followerID, followeeID uint, following bool) error
	IsFollowing(ctx context.Context, followerID, followeeID uint) (bool, error)
	FollowCounts(ctx context.Context, userID uint) (followers int64, following int64, err error)
	PostCount(ctx context.Context, userID uint) (int64, error)

	AddComment(ctx context.Context, comment *models.Comment) error
	Comments(ctx context.Context, postID uint, limit int) ([]models.Comment, error)

	PendingPicks(ctx context.Context, startedAfter, startedBefore time.Time) ([]models.Pick, error)
	Leaderboard(ctx context.Context, limit int) ([]Standing, error)
	SettlePick(ctx context.Context, pickID uint, result models.PickResult) (*models.Post, error)

	LogError(ctx context.Context, entry models.ErrorLog)
}
