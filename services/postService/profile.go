package postService

import (
	"context"
	"sync"

	"picksBot/models"
	"picksBot/services/store"
)

// ProfileView is what /profile shows one viewer about one user.
type ProfileView struct {
	mu sync.Mutex

	User      models.User
	ViewerID  uint
	Followers int64
	Following int64
	Posts     int64
	Recent    []models.Post

	viewerFollows bool
}

func (p *ProfileView) ViewerFollows() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.viewerFollows
}

func (p *ProfileView) FollowerCount() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.Followers
}

func (p *ProfileView) IsSelf() bool {
	return p.ViewerID == p.User.ID
}

func (p *ProfileView) flipFollow() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.viewerFollows = !p.viewerFollows
	if p.viewerFollows {
		p.Followers++
	} else if p.Followers > 0 {
		p.Followers--
	}
	return p.viewerFollows
}

const profileRecentPosts = 3

func (s *Service) Profile(ctx context.Context, viewer, target *models.User) (*ProfileView, error) {
	followers, following, err := s.store.FollowCounts(ctx, target.ID)
	if err != nil {
		return nil, err
	}
	posts, err := s.store.PostCount(ctx, target.ID)
	if err != nil {
		return nil, err
	}
	recent, err := s.store.Feed(ctx, store.FeedQuery{AuthorID: target.ID, Limit: profileRecentPosts})
	if err != nil {
		return nil, err
	}

	view := &ProfileView{
		User:      *target,
		ViewerID:  viewer.ID,
		Followers: followers,
		Following: following,
		Posts:     posts,
		Recent:    recent,
	}
	if !view.IsSelf() {
		if view.viewerFollows, err = s.store.IsFollowing(ctx, viewer.ID, target.ID); err != nil {
			return nil, err
		}
	}
	return view, nil
}

// ToggleFollow flips the viewer's follow of the profile's user optimistically.
func (s *Service) ToggleFollow(ctx context.Context, p *ProfileView) (bool, error) {
	if p.IsSelf() {
		return false, store.ErrSelfFollow
	}

	var on bool
	err := Optimistic(ctx,
		func() { on = p.flipFollow() },
		func(ctx context.Context) error { return s.store.SetFollowing(ctx, p.ViewerID, p.User.ID, on) },
		func() { p.flipFollow() },
	)
	action := "follow"
	if !on {
		action = "unfollow"
	}
	s.metrics.RecordSocial(action, err)
	if err != nil {
		return !on, err
	}
	return on, nil
}

// SetFollowing is the direct path used by /follow and /unfollow.
func (s *Service) SetFollowing(ctx context.Context, follower, followee *models.User, following bool) error {
	err := s.store.SetFollowing(ctx, follower.ID, followee.ID, following)
	action := "follow"
	if !following {
		action = "unfollow"
	}
	s.metrics.RecordSocial(action, err)
	return err
}
