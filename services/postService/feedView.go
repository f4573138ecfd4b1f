package postService

import (
	"sort"
	"sync"
	"time"

	"picksBot/models"
)

// FeedView is one viewer's in-memory feed. Page responses are tagged with the
// generation that requested them so a late response for an abandoned request
// is dropped.
type FeedView struct {
	mu sync.Mutex

	ID            string
	ViewerID      uint
	FollowingOnly bool

	posts    []models.Post
	known    map[uint]bool
	liked    map[uint]bool
	reposted map[uint]bool

	generation uint64
	page       int
	// posts merged from the change stream since the viewer last looked
	unseen  int
	touched time.Time
}

func NewFeedView(id string, viewerID uint, followingOnly bool) *FeedView {
	return &FeedView{
		ID:            id,
		ViewerID:      viewerID,
		FollowingOnly: followingOnly,
		known:         make(map[uint]bool),
		liked:         make(map[uint]bool),
		reposted:      make(map[uint]bool),
		touched:       time.Now(),
	}
}

// BeginRequest starts a page request and returns its generation. Any
// response tagged with an older generation is discarded by ApplyPage.
func (v *FeedView) BeginRequest() uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.generation++
	v.touched = time.Now()
	return v.generation
}

// PageState carries per-post viewer flags fetched with a page.
type PageState struct {
	Liked    map[uint]bool
	Reposted map[uint]bool
}

// ApplyPage replaces the view's posts with a page. It reports false when the
// response is stale.
func (v *FeedView) ApplyPage(generation uint64, page int, posts []models.Post, state PageState) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	if generation != v.generation {
		return false
	}

	v.page = page
	v.posts = append([]models.Post(nil), posts...)
	v.known = make(map[uint]bool, len(posts))
	for _, p := range posts {
		v.known[p.ID] = true
	}
	v.liked = copyFlags(state.Liked)
	v.reposted = copyFlags(state.Reposted)
	v.unseen = 0
	return true
}

func copyFlags(src map[uint]bool) map[uint]bool {
	dst := make(map[uint]bool, len(src))
	for k, val := range src {
		if val {
			dst[k] = true
		}
	}
	return dst
}

// MergeBatch adds change-stream posts the view has not seen, newest first,
// ahead of the current list. Views paged past the newest posts only count
// them. It returns the number of new posts.
func (v *FeedView) MergeBatch(batch []models.Post) int {
	v.mu.Lock()
	defer v.mu.Unlock()

	var fresh []models.Post
	for _, p := range batch {
		if v.known[p.ID] {
			continue
		}
		v.known[p.ID] = true
		fresh = append(fresh, p)
	}
	if len(fresh) == 0 {
		return 0
	}
	v.unseen += len(fresh)
	if v.page > 0 {
		return len(fresh)
	}

	sort.SliceStable(fresh, func(i, j int) bool {
		if fresh[i].CreatedAt.Equal(fresh[j].CreatedAt) {
			return fresh[i].ID > fresh[j].ID
		}
		return fresh[i].CreatedAt.After(fresh[j].CreatedAt)
	})

	v.posts = append(fresh, v.posts...)
	return len(fresh)
}

// Accepts reports whether a change-stream post belongs in this view.
func (v *FeedView) Accepts(p models.Post, following func(followerID, followeeID uint) bool) bool {
	if !v.FollowingOnly {
		return true
	}
	return p.AuthorID == v.ViewerID || following(v.ViewerID, p.AuthorID)
}

func (v *FeedView) Posts() []models.Post {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]models.Post(nil), v.posts...)
}

func (v *FeedView) Post(id uint) (models.Post, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, p := range v.posts {
		if p.ID == id {
			return p, true
		}
	}
	return models.Post{}, false
}

func (v *FeedView) Page() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.page
}

// TakeUnseen returns and clears the count of merged posts.
func (v *FeedView) TakeUnseen() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	n := v.unseen
	v.unseen = 0
	return n
}

func (v *FeedView) Liked(id uint) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.liked[id]
}

func (v *FeedView) Reposted(id uint) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.reposted[id]
}

func (v *FeedView) idleSince() time.Time {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.touched
}

type relation int

const (
	relationLike relation = iota
	relationRepost
)

func (r relation) String() string {
	if r == relationRepost {
		return "repost"
	}
	return "like"
}

func (v *FeedView) flags(r relation) map[uint]bool {
	if r == relationRepost {
		return v.reposted
	}
	return v.liked
}

func counter(r relation, p *models.Post) *int {
	if r == relationRepost {
		return &p.RepostCount
	}
	return &p.LikeCount
}

// flip toggles a viewer flag and moves the post's counter with it. It
// returns the new flag value; calling it twice restores the original state.
func (v *FeedView) flip(r relation, id uint) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	flags := v.flags(r)
	on := !flags[id]
	if on {
		flags[id] = true
	} else {
		delete(flags, id)
	}

	delta := -1
	if on {
		delta = 1
	}
	for idx := range v.posts {
		if v.posts[idx].ID == id {
			c := counter(r, &v.posts[idx])
			*c += delta
			if *c < 0 {
				*c = 0
			}
		}
	}
	return on
}

// setCount reconciles a counter with the backend's value.
func (v *FeedView) setCount(r relation, id uint, n int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for idx := range v.posts {
		if v.posts[idx].ID == id {
			*counter(r, &v.posts[idx]) = n
		}
	}
}

// remove drops a deleted post from the view.
func (v *FeedView) remove(id uint) {
	v.mu.Lock()
	defer v.mu.Unlock()
	kept := v.posts[:0]
	for _, p := range v.posts {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	v.posts = kept
	delete(v.liked, id)
	delete(v.reposted, id)
}
