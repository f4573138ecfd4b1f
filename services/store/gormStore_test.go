package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"picksBot/models"
)

func newMockDB() (*gorm.DB, sqlmock.Sqlmock, error) {
	db, mock, err := sqlmock.New()
	if err != nil {
		return nil, nil, err
	}

	gormDB, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{})

	return gormDB, mock, err
}

func newMockStore(t *testing.T) (*GormStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := newMockDB()
	if err != nil {
		t.Fatalf("Failed to create mock DB: %v", err)
	}
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})
	return NewGormStore(db), mock
}

func TestUserByDiscordIDNotFound(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery("SELECT \\* FROM `users` WHERE discord_id = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"id", "discord_id"}))

	_, err := s.UserByDiscordID(context.Background(), "123")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unmet expectations: %v", err)
	}
}

func TestEnsureUserExistingProfile(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery("SELECT \\* FROM `users`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "discord_id", "username"}).AddRow(4, "123", "sharp"))

	user, err := s.EnsureUser(context.Background(), "123", "sharp")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if user.ID != 4 || user.DisplayName() != "sharp" {
		t.Errorf("Unexpected user %+v", user)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unmet expectations: %v", err)
	}
}

func TestDeletePost(t *testing.T) {
	t.Run("Not the author", func(t *testing.T) {
		s, mock := newMockStore(t)

		mock.ExpectQuery("SELECT `id`,`author_id` FROM `posts`").
			WillReturnRows(sqlmock.NewRows([]string{"id", "author_id"}).AddRow(9, 2))

		err := s.DeletePost(context.Background(), 9, 1)
		if !errors.Is(err, ErrForbidden) {
			t.Errorf("Expected ErrForbidden, got %v", err)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("Unmet expectations: %v", err)
		}
	})

	t.Run("Author deletes post and dependents", func(t *testing.T) {
		s, mock := newMockStore(t)

		mock.ExpectQuery("SELECT `id`,`author_id` FROM `posts`").
			WillReturnRows(sqlmock.NewRows([]string{"id", "author_id"}).AddRow(9, 1))
		mock.ExpectBegin()
		mock.ExpectExec("DELETE FROM `picks` WHERE post_id = \\?").WithArgs(9).WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectExec("DELETE FROM `likes` WHERE post_id = \\?").WithArgs(9).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("DELETE FROM `reposts` WHERE post_id = \\?").WithArgs(9).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("DELETE FROM `comments` WHERE post_id = \\?").WithArgs(9).WillReturnResult(sqlmock.NewResult(0, 3))
		mock.ExpectExec("DELETE FROM `posts` WHERE `posts`.`id` = \\?").WithArgs(9).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		if err := s.DeletePost(context.Background(), 9, 1); err != nil {
			t.Errorf("Unexpected error: %v", err)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("Unmet expectations: %v", err)
		}
	})

	t.Run("Missing post", func(t *testing.T) {
		s, mock := newMockStore(t)

		mock.ExpectQuery("SELECT `id`,`author_id` FROM `posts`").
			WillReturnRows(sqlmock.NewRows([]string{"id", "author_id"}))

		if err := s.DeletePost(context.Background(), 9, 1); !errors.Is(err, ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})
}

func TestSetFollowingRejectsSelf(t *testing.T) {
	s, mock := newMockStore(t)

	if err := s.SetFollowing(context.Background(), 3, 3, true); !errors.Is(err, ErrSelfFollow) {
		t.Errorf("Expected ErrSelfFollow, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unmet expectations: %v", err)
	}
}

func TestCreatePostValidatesKind(t *testing.T) {
	s, _ := newMockStore(t)

	tests := []struct {
		name string
		post models.Post
	}{
		{name: "pick post without picks", post: models.Post{Kind: models.PostKindPick}},
		{name: "text post with picks", post: models.Post{Kind: models.PostKindText, Picks: []models.Pick{{Odds: -110}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := s.CreatePost(context.Background(), &tt.post); err == nil {
				t.Error("Expected validation error")
			}
		})
	}
}

func TestSettlePickDerivesPostStatus(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT \\* FROM `picks` WHERE `picks`.`id` = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"id", "post_id", "result"}).AddRow(7, 3, "pending"))
	mock.ExpectExec("UPDATE `picks` SET `result`=\\?").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT \\* FROM `posts` WHERE `posts`.`id` = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"id", "kind", "status"}).AddRow(3, "pick", "pending"))
	mock.ExpectQuery("SELECT \\* FROM `picks` WHERE `picks`.`post_id` = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"id", "post_id", "result"}).
			AddRow(6, 3, "won").
			AddRow(7, 3, "won"))
	mock.ExpectExec("UPDATE `posts` SET `status`=\\?").
		WithArgs("won", sqlmock.AnyArg(), 3).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	post, err := s.SettlePick(context.Background(), 7, models.PickResultWon)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if post.Status != models.PostStatusWon {
		t.Errorf("Expected won, got %q", post.Status)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unmet expectations: %v", err)
	}
}

func TestFeedQueryNormalize(t *testing.T) {
	tests := []struct {
		in     FeedQuery
		limit  int
		offset int
	}{
		{in: FeedQuery{}, limit: DefaultPageSize},
		{in: FeedQuery{Limit: 500, Offset: -4}, limit: MaxPageSize},
		{in: FeedQuery{Limit: 5, Offset: 20}, limit: 5, offset: 20},
	}

	for _, tt := range tests {
		got := tt.in.Normalize()
		if got.Limit != tt.limit || got.Offset != tt.offset {
			t.Errorf("Normalize(%+v) = %+v", tt.in, got)
		}
	}
}

func TestCursorAfter(t *testing.T) {
	ts := time.Date(2024, 11, 6, 12, 0, 0, 0, time.UTC)
	c := Cursor{CreatedAt: ts, ID: 10}

	tests := []struct {
		post     models.Post
		expected bool
	}{
		{post: models.Post{ID: 11, CreatedAt: ts}, expected: true},
		{post: models.Post{ID: 10, CreatedAt: ts}, expected: false},
		{post: models.Post{ID: 2, CreatedAt: ts.Add(time.Second)}, expected: true},
		{post: models.Post{ID: 50, CreatedAt: ts.Add(-time.Second)}, expected: false},
	}

	for _, tt := range tests {
		if got := c.After(tt.post); got != tt.expected {
			t.Errorf("After(%d @ %v) = %v, expected %v", tt.post.ID, tt.post.CreatedAt, got, tt.expected)
		}
	}
}

func TestPendingPicksExcludesPlayerProps(t *testing.T) {
	s, mock := newMockStore(t)
	now := time.Date(2024, 11, 7, 4, 0, 0, 0, time.UTC)
	from := now.Add(-7 * 24 * time.Hour)

	mock.ExpectQuery("SELECT \\* FROM `picks` WHERE \\(result = \\? AND pick_type <> \\?\\) AND \\(commence_time > \\? AND commence_time <= \\?\\)").
		WithArgs("pending", "player-prop", from, now).
		WillReturnRows(sqlmock.NewRows([]string{"id", "post_id", "event_id", "pick_type", "result"}).
			AddRow(4, 2, "401", "moneyline", "pending"))

	picks, err := s.PendingPicks(context.Background(), from, now)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(picks) != 1 || picks[0].EventID != "401" {
		t.Errorf("Unexpected picks %+v", picks)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unmet expectations: %v", err)
	}
}

func TestLeaderboard(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery("SELECT author_id, SUM\\(CASE WHEN status = \\? THEN 1 ELSE 0 END\\) AS won").
		WillReturnRows(sqlmock.NewRows([]string{"author_id", "won", "lost"}).
			AddRow(7, 5, 1).
			AddRow(3, 2, 4))
	mock.ExpectQuery("SELECT \\* FROM `users` WHERE id IN").
		WillReturnRows(sqlmock.NewRows([]string{"id", "discord_id", "username"}).
			AddRow(3, "300", "square").
			AddRow(7, "700", "sharp"))

	standings, err := s.Leaderboard(context.Background(), 10)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(standings) != 2 {
		t.Fatalf("Expected 2 standings, got %d", len(standings))
	}
	if standings[0].User.DisplayName() != "sharp" || standings[0].Won != 5 || standings[0].Lost != 1 {
		t.Errorf("Unexpected leader %+v", standings[0])
	}
	if standings[1].User.DisplayName() != "square" {
		t.Errorf("Expected rows to keep query order, got %+v", standings[1])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unmet expectations: %v", err)
	}
}
