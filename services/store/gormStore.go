package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"picksBot/models"
)

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) DB() *gorm.DB {
	return s.db
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// EnsureUser returns the profile for a Discord user, creating it on first
// interaction and refreshing the stored username when it changed.
func (s *GormStore) EnsureUser(ctx context.Context, discordID, username string) (*models.User, error) {
	var user models.User
	result := s.db.WithContext(ctx).Where(models.User{DiscordID: discordID}).FirstOrCreate(&user)
	if result.Error != nil {
		return nil, fmt.Errorf("error fetching user: %w", result.Error)
	}

	if username != "" && (user.Username == nil || *user.Username != username) {
		user.Username = &username
		if err := s.db.WithContext(ctx).Model(&user).Update("username", username).Error; err != nil {
			slog.Warn("error updating username", "discord_id", discordID, "error", err)
		}
	}

	return &user, nil
}

func (s *GormStore) UserByDiscordID(ctx context.Context, discordID string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("discord_id = ?", discordID).First(&user).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

// CreatePost stores the post and its picks in one transaction. A pick post
// without legs is rejected.
func (s *GormStore) CreatePost(ctx context.Context, post *models.Post) error {
	if post.Kind == models.PostKindPick && len(post.Picks) == 0 {
		return fmt.Errorf("pick post has no picks")
	}
	if post.Kind == models.PostKindText && len(post.Picks) > 0 {
		return fmt.Errorf("text post cannot carry picks")
	}
	if post.ShareID == "" {
		post.ShareID = uuid.NewString()
	}
	if post.Kind == models.PostKindPick {
		post.Status = post.DeriveStatus()
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(post).Error; err != nil {
			return fmt.Errorf("error creating post: %w", err)
		}
		return nil
	})
}

func (s *GormStore) preloaded(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).
		Preload("Author").
		Preload("Picks", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") })
}

func (s *GormStore) Post(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := s.preloaded(ctx).First(&post, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &post, nil
}

func (s *GormStore) PostByShareID(ctx context.Context, shareID string) (*models.Post, error) {
	var post models.Post
	if err := s.preloaded(ctx).Where("share_id = ?", shareID).First(&post).Error; err != nil {
		return nil, notFound(err)
	}
	return &post, nil
}

// DeletePost removes a post with its picks, likes, reposts and comments.
// Only the author may delete.
func (s *GormStore) DeletePost(ctx context.Context, postID, requesterID uint) error {
	var post models.Post
	if err := s.db.WithContext(ctx).Select("id", "author_id").First(&post, postID).Error; err != nil {
		return notFound(err)
	}
	if post.AuthorID != requesterID {
		return ErrForbidden
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, dependent := range []any{&models.Pick{}, &models.Like{}, &models.Repost{}} {
			if err := tx.Where("post_id = ?", postID).Delete(dependent).Error; err != nil {
				return err
			}
		}
		if err := tx.Unscoped().Where("post_id = ?", postID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Post{}, postID).Error
	})
}

func (s *GormStore) SetPostMessage(ctx context.Context, postID uint, guildID, channelID, messageID string) error {
	return s.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", postID).Updates(map[string]any{
		"guild_id":   guildID,
		"channel_id": channelID,
		"message_id": messageID,
	}).Error
}

func (s *GormStore) Feed(ctx context.Context, q FeedQuery) ([]models.Post, error) {
	q = q.Normalize()
	query := s.preloaded(ctx).Order("created_at DESC, id DESC").Limit(q.Limit).Offset(q.Offset)

	if q.AuthorID != 0 {
		query = query.Where("author_id = ?", q.AuthorID)
	}
	if q.FollowingOnly {
		followees := s.db.Model(&models.Follow{}).Select("followee_id").Where("follower_id = ?", q.ViewerID)
		query = query.Where("author_id IN (?)", followees)
	}

	var posts []models.Post
	if err := query.Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("error fetching feed: %w", err)
	}
	return posts, nil
}

// PostsSince returns posts newer than the cursor, oldest first.
func (s *GormStore) PostsSince(ctx context.Context, cursor Cursor, limit int) ([]models.Post, error) {
	if limit <= 0 {
		limit = MaxPageSize
	}
	var posts []models.Post
	err := s.preloaded(ctx).
		Where("created_at > ? OR (created_at = ? AND id > ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID).
		Order("created_at ASC, id ASC").
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, fmt.Errorf("error fetching new posts: %w", err)
	}
	return posts, nil
}

// toggleRelation inserts or removes a (post, user) row and refreshes the
// post's denormalized counter column from the relation table.
func (s *GormStore) toggleRelation(ctx context.Context, row any, model any, column string, postID, userID uint, on bool) (int, error) {
	var count int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.Select("id").First(&post, postID).Error; err != nil {
			return notFound(err)
		}

		if on {
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(row).Error; err != nil {
				return err
			}
		} else {
			if err := tx.Where("post_id = ? AND user_id = ?", postID, userID).Delete(model).Error; err != nil {
				return err
			}
		}

		if err := tx.Model(model).Where("post_id = ?", postID).Count(&count).Error; err != nil {
			return err
		}
		return tx.Model(&models.Post{}).Where("id = ?", postID).Update(column, count).Error
	})
	return int(count), err
}

func (s *GormStore) SetLiked(ctx context.Context, postID, userID uint, liked bool) (int, error) {
	return s.toggleRelation(ctx, &models.Like{PostID: postID, UserID: userID}, &models.Like{}, "like_count", postID, userID, liked)
}

func (s *GormStore) SetReposted(ctx context.Context, postID, userID uint, reposted bool) (int, error) {
	return s.toggleRelation(ctx, &models.Repost{PostID: postID, UserID: userID}, &models.Repost{}, "repost_count", postID, userID, reposted)
}

func (s *GormStore) exists(ctx context.Context, model any, query string, args ...any) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(model).Where(query, args...).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *GormStore) HasLiked(ctx context.Context, postID, userID uint) (bool, error) {
	return s.exists(ctx, &models.Like{}, "post_id = ? AND user_id = ?", postID, userID)
}

func (s *GormStore) HasReposted(ctx context.Context, postID, userID uint) (bool, error) {
	return s.exists(ctx, &models.Repost{}, "post_id = ? AND user_id = ?", postID, userID)
}

func (s *GormStore) SetFollowing(ctx context.Context, followerID, followeeID uint, following bool) error {
	if followerID == followeeID {
		return ErrSelfFollow
	}
	if following {
		return s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.Follow{FollowerID: followerID, FolloweeID: followeeID}).Error
	}
	return s.db.WithContext(ctx).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Delete(&models.Follow{}).Error
}

func (s *GormStore) IsFollowing(ctx context.Context, followerID, followeeID uint) (bool, error) {
	return s.exists(ctx, &models.Follow{}, "follower_id = ? AND followee_id = ?", followerID, followeeID)
}

func (s *GormStore) FollowCounts(ctx context.Context, userID uint) (int64, int64, error) {
	var followers, following int64
	if err := s.db.WithContext(ctx).Model(&models.Follow{}).Where("followee_id = ?", userID).Count(&followers).Error; err != nil {
		return 0, 0, err
	}
	if err := s.db.WithContext(ctx).Model(&models.Follow{}).Where("follower_id = ?", userID).Count(&following).Error; err != nil {
		return 0, 0, err
	}
	return followers, following, nil
}

func (s *GormStore) PostCount(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Post{}).Where("author_id = ?", userID).Count(&count).Error
	return count, err
}

func (s *GormStore) AddComment(ctx context.Context, comment *models.Comment) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.Select("id").First(&post, comment.PostID).Error; err != nil {
			return notFound(err)
		}
		if err := tx.Create(comment).Error; err != nil {
			return err
		}
		return tx.Model(&models.Post{}).Where("id = ?", comment.PostID).
			UpdateColumn("comment_count", gorm.Expr("comment_count + ?", 1)).Error
	})
}

// Comments lists a post's comments, oldest first.
func (s *GormStore) Comments(ctx context.Context, postID uint, limit int) ([]models.Comment, error) {
	if limit <= 0 {
		limit = MaxPageSize
	}
	var comments []models.Comment
	err := s.db.WithContext(ctx).Preload("Author").
		Where("post_id = ?", postID).
		Order("created_at ASC, id ASC").
		Limit(limit).
		Find(&comments).Error
	return comments, err
}

// Leaderboard ranks authors by settled pick posts, most wins first.
func (s *GormStore) Leaderboard(ctx context.Context, limit int) ([]Standing, error) {
	if limit <= 0 {
		limit = DefaultPageSize
	}

	var rows []struct {
		AuthorID uint
		Won      int64
		Lost     int64
	}
	err := s.db.WithContext(ctx).Model(&models.Post{}).
		Select("author_id, "+
			"SUM(CASE WHEN status = ? THEN 1 ELSE 0 END) AS won, "+
			"SUM(CASE WHEN status = ? THEN 1 ELSE 0 END) AS lost",
			models.PostStatusWon, models.PostStatusLost).
		Where("kind = ? AND status IN ?", models.PostKindPick, []models.PostStatus{models.PostStatusWon, models.PostStatusLost}).
		Group("author_id").
		Order("won DESC, lost ASC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("error fetching leaderboard: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	ids := make([]uint, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.AuthorID)
	}
	var users []models.User
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("error fetching leaderboard users: %w", err)
	}
	byID := make(map[uint]models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	standings := make([]Standing, 0, len(rows))
	for _, row := range rows {
		standings = append(standings, Standing{User: byID[row.AuthorID], Won: row.Won, Lost: row.Lost})
	}
	return standings, nil
}

// PendingPicks returns unsettled picks that can be graded automatically, for
// games that started inside the window. Player props are never returned.
func (s *GormStore) PendingPicks(ctx context.Context, startedAfter, startedBefore time.Time) ([]models.Pick, error) {
	var picks []models.Pick
	err := s.db.WithContext(ctx).
		Where("result = ? AND pick_type <> ?", models.PickResultPending, models.PickTypePlayerProp).
		Where("commence_time > ? AND commence_time <= ?", startedAfter, startedBefore).
		Order("commence_time ASC").
		Find(&picks).Error
	if err != nil {
		return nil, fmt.Errorf("error fetching pending picks: %w", err)
	}
	return picks, nil
}

// SettlePick records a leg's result and re-derives the parent post's status.
func (s *GormStore) SettlePick(ctx context.Context, pickID uint, result models.PickResult) (*models.Post, error) {
	var post models.Post
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var pick models.Pick
		if err := tx.First(&pick, pickID).Error; err != nil {
			return notFound(err)
		}
		if err := tx.Model(&pick).Update("result", result).Error; err != nil {
			return err
		}

		if err := tx.Preload("Picks").First(&post, pick.PostID).Error; err != nil {
			return notFound(err)
		}
		status := post.DeriveStatus()
		if status == post.Status {
			return nil
		}
		post.Status = status
		return tx.Model(&models.Post{}).Where("id = ?", post.ID).Update("status", status).Error
	})
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (s *GormStore) LogError(ctx context.Context, entry models.ErrorLog) {
	if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
		slog.Error("error logging error", "error", err)
	}
}
