// Package storetest provides an in-memory store.Store for service tests.
package storetest

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"picksBot/models"
	"picksBot/services/store"
)

type relation struct {
	postID uint
	userID uint
}

type follow struct {
	follower uint
	followee uint
}

type Memory struct {
	mu sync.Mutex

	users    map[uint]*models.User
	posts    map[uint]*models.Post
	likes    map[relation]bool
	reposts  map[relation]bool
	follows  map[follow]bool
	comments []models.Comment
	Errors   []models.ErrorLog

	nextID uint
	Now    func() time.Time

	// FailWrites makes every mutating call fail with this error.
	FailWrites error
}

var _ store.Store = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{
		users:   make(map[uint]*models.User),
		posts:   make(map[uint]*models.Post),
		likes:   make(map[relation]bool),
		reposts: make(map[relation]bool),
		follows: make(map[follow]bool),
		Now:     time.Now,
	}
}

func (m *Memory) id() uint {
	m.nextID++
	return m.nextID
}

func (m *Memory) EnsureUser(_ context.Context, discordID, username string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.DiscordID == discordID {
			if username != "" {
				u.Username = &username
			}
			copied := *u
			return &copied, nil
		}
	}
	u := &models.User{DiscordID: discordID}
	u.ID = m.id()
	u.CreatedAt = m.Now()
	if username != "" {
		u.Username = &username
	}
	m.users[u.ID] = u
	copied := *u
	return &copied, nil
}

func (m *Memory) UserByDiscordID(_ context.Context, discordID string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.DiscordID == discordID {
			copied := *u
			return &copied, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *Memory) CreatePost(_ context.Context, post *models.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailWrites != nil {
		return m.FailWrites
	}
	if post.Kind == models.PostKindPick && len(post.Picks) == 0 {
		return fmt.Errorf("pick post has no picks")
	}
	post.ID = m.id()
	if post.CreatedAt.IsZero() {
		post.CreatedAt = m.Now()
	}
	if post.ShareID == "" {
		post.ShareID = uuid.NewString()
	}
	for idx := range post.Picks {
		post.Picks[idx].ID = m.id()
		post.Picks[idx].PostID = post.ID
	}
	if post.Kind == models.PostKindPick {
		post.Status = post.DeriveStatus()
	}
	stored := *post
	stored.Picks = append([]models.Pick(nil), post.Picks...)
	m.posts[post.ID] = &stored
	return nil
}

func (m *Memory) withAuthor(p *models.Post) models.Post {
	copied := *p
	copied.Picks = append([]models.Pick(nil), p.Picks...)
	if u, ok := m.users[p.AuthorID]; ok {
		copied.Author = *u
	}
	return copied
}

func (m *Memory) Post(_ context.Context, id uint) (*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.posts[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	post := m.withAuthor(p)
	return &post, nil
}

func (m *Memory) PostByShareID(_ context.Context, shareID string) (*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, p := range m.posts {
		if p.ShareID == shareID {
			post := m.withAuthor(p)
			return &post, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *Memory) DeletePost(_ context.Context, postID, requesterID uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.posts[postID]
	if !ok {
		return store.ErrNotFound
	}
	if p.AuthorID != requesterID {
		return store.ErrForbidden
	}
	delete(m.posts, postID)
	for r := range m.likes {
		if r.postID == postID {
			delete(m.likes, r)
		}
	}
	for r := range m.reposts {
		if r.postID == postID {
			delete(m.reposts, r)
		}
	}
	kept := m.comments[:0]
	for _, c := range m.comments {
		if c.PostID != postID {
			kept = append(kept, c)
		}
	}
	m.comments = kept
	return nil
}

func (m *Memory) SetPostMessage(_ context.Context, postID uint, guildID, channelID, messageID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.posts[postID]
	if !ok {
		return store.ErrNotFound
	}
	p.GuildID = guildID
	p.ChannelID = channelID
	p.MessageID = &messageID
	return nil
}

func newestFirst(posts []models.Post) {
	sort.Slice(posts, func(i, j int) bool {
		if posts[i].CreatedAt.Equal(posts[j].CreatedAt) {
			return posts[i].ID > posts[j].ID
		}
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
}

func (m *Memory) Feed(_ context.Context, q store.FeedQuery) ([]models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	q = q.Normalize()
	var all []models.Post
	for _, p := range m.posts {
		if q.AuthorID != 0 && p.AuthorID != q.AuthorID {
			continue
		}
		if q.FollowingOnly && !m.follows[follow{follower: q.ViewerID, followee: p.AuthorID}] {
			continue
		}
		all = append(all, m.withAuthor(p))
	}
	newestFirst(all)

	if q.Offset >= len(all) {
		return nil, nil
	}
	end := q.Offset + q.Limit
	if end > len(all) {
		end = len(all)
	}
	return all[q.Offset:end], nil
}

func (m *Memory) PostsSince(_ context.Context, cursor store.Cursor, limit int) ([]models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var newer []models.Post
	for _, p := range m.posts {
		if cursor.After(*p) {
			newer = append(newer, m.withAuthor(p))
		}
	}
	newestFirst(newer)
	for i, j := 0, len(newer)-1; i < j; i, j = i+1, j-1 {
		newer[i], newer[j] = newer[j], newer[i]
	}
	if limit > 0 && len(newer) > limit {
		newer = newer[:limit]
	}
	return newer, nil
}

func (m *Memory) toggle(set map[relation]bool, postID, userID uint, on bool, counter func(*models.Post) *int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailWrites != nil {
		return 0, m.FailWrites
	}
	p, ok := m.posts[postID]
	if !ok {
		return 0, store.ErrNotFound
	}
	r := relation{postID: postID, userID: userID}
	if on {
		set[r] = true
	} else {
		delete(set, r)
	}
	count := 0
	for rel := range set {
		if rel.postID == postID {
			count++
		}
	}
	*counter(p) = count
	return count, nil
}

func (m *Memory) SetLiked(_ context.Context, postID, userID uint, liked bool) (int, error) {
	return m.toggle(m.likes, postID, userID, liked, func(p *models.Post) *int { return &p.LikeCount })
}

func (m *Memory) SetReposted(_ context.Context, postID, userID uint, reposted bool) (int, error) {
	return m.toggle(m.reposts, postID, userID, reposted, func(p *models.Post) *int { return &p.RepostCount })
}

func (m *Memory) HasLiked(_ context.Context, postID, userID uint) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.likes[relation{postID: postID, userID: userID}], nil
}

func (m *Memory) HasReposted(_ context.Context, postID, userID uint) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reposts[relation{postID: postID, userID: userID}], nil
}

func (m *Memory) SetFollowing(_ context.Context, followerID, followeeID uint, following bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if followerID == followeeID {
		return store.ErrSelfFollow
	}
	if m.FailWrites != nil {
		return m.FailWrites
	}
	f := follow{follower: followerID, followee: followeeID}
	if following {
		m.follows[f] = true
	} else {
		delete(m.follows, f)
	}
	return nil
}

func (m *Memory) IsFollowing(_ context.Context, followerID, followeeID uint) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.follows[follow{follower: followerID, followee: followeeID}], nil
}

func (m *Memory) FollowCounts(_ context.Context, userID uint) (int64, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var followers, following int64
	for f := range m.follows {
		if f.followee == userID {
			followers++
		}
		if f.follower == userID {
			following++
		}
	}
	return followers, following, nil
}

func (m *Memory) PostCount(_ context.Context, userID uint) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var count int64
	for _, p := range m.posts {
		if p.AuthorID == userID {
			count++
		}
	}
	return count, nil
}

func (m *Memory) AddComment(_ context.Context, comment *models.Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailWrites != nil {
		return m.FailWrites
	}
	p, ok := m.posts[comment.PostID]
	if !ok {
		return store.ErrNotFound
	}
	comment.ID = m.id()
	comment.CreatedAt = m.Now()
	m.comments = append(m.comments, *comment)
	p.CommentCount++
	return nil
}

func (m *Memory) Comments(_ context.Context, postID uint, limit int) ([]models.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []models.Comment
	for _, c := range m.comments {
		if c.PostID != postID {
			continue
		}
		if u, ok := m.users[c.AuthorID]; ok {
			c.Author = *u
		}
		out = append(out, c)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *Memory) PendingPicks(_ context.Context, startedAfter, startedBefore time.Time) ([]models.Pick, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var picks []models.Pick
	for _, p := range m.posts {
		for _, pick := range p.Picks {
			if pick.Result != models.PickResultPending || pick.PickType == models.PickTypePlayerProp {
				continue
			}
			if pick.CommenceTime.After(startedAfter) && !pick.CommenceTime.After(startedBefore) {
				picks = append(picks, pick)
			}
		}
	}
	sort.Slice(picks, func(i, j int) bool { return picks[i].ID < picks[j].ID })
	return picks, nil
}

func (m *Memory) Leaderboard(_ context.Context, limit int) ([]store.Standing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if limit <= 0 {
		limit = store.DefaultPageSize
	}
	byAuthor := make(map[uint]*store.Standing)
	for _, p := range m.posts {
		if p.Kind != models.PostKindPick || (p.Status != models.PostStatusWon && p.Status != models.PostStatusLost) {
			continue
		}
		st, ok := byAuthor[p.AuthorID]
		if !ok {
			st = &store.Standing{}
			if u, found := m.users[p.AuthorID]; found {
				st.User = *u
			}
			byAuthor[p.AuthorID] = st
		}
		if p.Status == models.PostStatusWon {
			st.Won++
		} else {
			st.Lost++
		}
	}

	standings := make([]store.Standing, 0, len(byAuthor))
	for _, st := range byAuthor {
		standings = append(standings, *st)
	}
	sort.Slice(standings, func(i, j int) bool {
		if standings[i].Won != standings[j].Won {
			return standings[i].Won > standings[j].Won
		}
		if standings[i].Lost != standings[j].Lost {
			return standings[i].Lost < standings[j].Lost
		}
		return standings[i].User.ID < standings[j].User.ID
	})
	if len(standings) > limit {
		standings = standings[:limit]
	}
	return standings, nil
}

func (m *Memory) SettlePick(_ context.Context, pickID uint, result models.PickResult) (*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, p := range m.posts {
		for idx := range p.Picks {
			if p.Picks[idx].ID != pickID {
				continue
			}
			p.Picks[idx].Result = result
			p.Status = p.DeriveStatus()
			post := m.withAuthor(p)
			return &post, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *Memory) LogError(_ context.Context, entry models.ErrorLog) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Errors = append(m.Errors, entry)
}
