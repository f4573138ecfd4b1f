// Package postService owns text and pick posts, the paged feed, likes,
// reposts, comments and follows.
package postService

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"picksBot/models"
	"picksBot/services/metrics"
	"picksBot/services/store"
)

const (
	MaxPostLength    = 2000
	MaxCommentLength = 1000
)

var ErrEmptyBody = errors.New("post body is empty")

type Service struct {
	store   store.Store
	metrics *metrics.Metrics
	views   *Views
}

func NewService(st store.Store, m *metrics.Metrics, views *Views) *Service {
	if m == nil {
		m = metrics.Default()
	}
	if views == nil {
		views = NewViews(0)
	}
	return &Service{store: st, metrics: m, views: views}
}

func (s *Service) Store() store.Store {
	return s.store
}

func (s *Service) Views() *Views {
	return s.views
}

func cleanBody(body string, limit int) (string, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return "", ErrEmptyBody
	}
	if utf8.RuneCountInString(body) > limit {
		return "", fmt.Errorf("text is longer than %d characters", limit)
	}
	return body, nil
}

func (s *Service) CreateTextPost(ctx context.Context, author *models.User, body string) (*models.Post, error) {
	body, err := cleanBody(body, MaxPostLength)
	if err != nil {
		return nil, err
	}

	post := &models.Post{AuthorID: author.ID, Kind: models.PostKindText, Body: body}
	if err := s.store.CreatePost(ctx, post); err != nil {
		return nil, fmt.Errorf("error creating post: %w", err)
	}
	post.Author = *author
	return post, nil
}

// DeletePost removes the post and drops it from every open feed view.
func (s *Service) DeletePost(ctx context.Context, postID uint, requester *models.User) error {
	err := s.store.DeletePost(ctx, postID, requester.ID)
	s.metrics.RecordSocial("delete", err)
	if err != nil {
		return err
	}
	s.views.Each(func(v *FeedView) { v.remove(postID) })
	return nil
}

// LoadPage fetches a feed page into the view. A response that arrives after a
// newer request was started is discarded and reported with ok=false.
func (s *Service) LoadPage(ctx context.Context, v *FeedView, page int) (bool, error) {
	if page < 0 {
		page = 0
	}
	generation := v.BeginRequest()

	posts, err := s.store.Feed(ctx, store.FeedQuery{
		ViewerID:      v.ViewerID,
		FollowingOnly: v.FollowingOnly,
		Limit:         store.DefaultPageSize,
		Offset:        page * store.DefaultPageSize,
	})
	if err != nil {
		return false, err
	}

	state := PageState{Liked: make(map[uint]bool), Reposted: make(map[uint]bool)}
	for _, p := range posts {
		if state.Liked[p.ID], err = s.store.HasLiked(ctx, p.ID, v.ViewerID); err != nil {
			return false, err
		}
		if state.Reposted[p.ID], err = s.store.HasReposted(ctx, p.ID, v.ViewerID); err != nil {
			return false, err
		}
	}

	return v.ApplyPage(generation, page, posts, state), nil
}

func (s *Service) toggle(ctx context.Context, v *FeedView, r relation, postID uint) (bool, error) {
	var on bool
	var count int

	remote := func(ctx context.Context) error {
		var err error
		if r == relationRepost {
			count, err = s.store.SetReposted(ctx, postID, v.ViewerID, on)
		} else {
			count, err = s.store.SetLiked(ctx, postID, v.ViewerID, on)
		}
		return err
	}

	err := Optimistic(ctx,
		func() { on = v.flip(r, postID) },
		remote,
		func() { v.flip(r, postID) },
	)
	s.metrics.RecordSocial(r.String(), err)
	if err != nil {
		return !on, err
	}

	v.setCount(r, postID, count)
	return on, nil
}

// ToggleLike flips the viewer's like on a post in the view and returns the
// new state. The view is rolled back when the store rejects the change.
func (s *Service) ToggleLike(ctx context.Context, v *FeedView, postID uint) (bool, error) {
	return s.toggle(ctx, v, relationLike, postID)
}

func (s *Service) ToggleRepost(ctx context.Context, v *FeedView, postID uint) (bool, error) {
	return s.toggle(ctx, v, relationRepost, postID)
}

// SetLiked is the stateless path used by buttons on shared posts.
func (s *Service) SetLiked(ctx context.Context, postID, userID uint) (bool, int, error) {
	liked, err := s.store.HasLiked(ctx, postID, userID)
	if err != nil {
		return false, 0, err
	}
	count, err := s.store.SetLiked(ctx, postID, userID, !liked)
	s.metrics.RecordSocial("like", err)
	return !liked, count, err
}

func (s *Service) SetReposted(ctx context.Context, postID, userID uint) (bool, int, error) {
	reposted, err := s.store.HasReposted(ctx, postID, userID)
	if err != nil {
		return false, 0, err
	}
	count, err := s.store.SetReposted(ctx, postID, userID, !reposted)
	s.metrics.RecordSocial("repost", err)
	return !reposted, count, err
}

func (s *Service) AddComment(ctx context.Context, author *models.User, postID uint, body string) (*models.Comment, error) {
	body, err := cleanBody(body, MaxCommentLength)
	if err != nil {
		return nil, err
	}

	comment := &models.Comment{PostID: postID, AuthorID: author.ID, Body: body}
	err = s.store.AddComment(ctx, comment)
	s.metrics.RecordSocial("comment", err)
	if err != nil {
		return nil, err
	}
	comment.Author = *author
	return comment, nil
}

func (s *Service) Comments(ctx context.Context, postID uint, limit int) ([]models.Comment, error) {
	return s.store.Comments(ctx, postID, limit)
}

// DeliverBatch is subscribed to the realtime hub. Following-only views ask
// the store whether the viewer follows each author.
func (s *Service) DeliverBatch(ctx context.Context, batch []models.Post) {
	following := func(followerID, followeeID uint) bool {
		ok, err := s.store.IsFollowing(ctx, followerID, followeeID)
		return err == nil && ok
	}
	s.views.Deliver(batch, following)
}
