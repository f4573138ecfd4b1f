package postService

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"picksBot/models"
)

const DefaultViewTTL = time.Hour

// Views tracks open feed views so the change stream and deletions can reach them.
type Views struct {
	mu    sync.RWMutex
	items map[string]*FeedView
	ttl   time.Duration
}

func NewViews(ttl time.Duration) *Views {
	if ttl <= 0 {
		ttl = DefaultViewTTL
	}
	return &Views{items: make(map[string]*FeedView), ttl: ttl}
}

func (vs *Views) Open(viewerID uint, followingOnly bool) *FeedView {
	v := NewFeedView(uuid.NewString(), viewerID, followingOnly)
	vs.mu.Lock()
	vs.items[v.ID] = v
	vs.mu.Unlock()
	return v
}

func (vs *Views) Get(id string) (*FeedView, bool) {
	vs.mu.RLock()
	defer vs.mu.RUnlock()
	v, ok := vs.items[id]
	return v, ok
}

func (vs *Views) Close(id string) {
	vs.mu.Lock()
	defer vs.mu.Unlock()
	delete(vs.items, id)
}

func (vs *Views) Each(fn func(*FeedView)) {
	vs.mu.RLock()
	views := make([]*FeedView, 0, len(vs.items))
	for _, v := range vs.items {
		views = append(views, v)
	}
	vs.mu.RUnlock()

	for _, v := range views {
		fn(v)
	}
}

// Cleanup closes views idle longer than the TTL.
func (vs *Views) Cleanup(now time.Time) int {
	vs.mu.Lock()
	defer vs.mu.Unlock()

	removed := 0
	for id, v := range vs.items {
		if now.Sub(v.idleSince()) > vs.ttl {
			delete(vs.items, id)
			removed++
		}
	}
	return removed
}

// Deliver merges a change-stream batch into every open view that accepts
// the posts. It is the realtime subscriber for feed views.
func (vs *Views) Deliver(batch []models.Post, following func(followerID, followeeID uint) bool) int {
	total := 0
	vs.Each(func(v *FeedView) {
		var accepted []models.Post
		for _, p := range batch {
			if v.Accepts(p, following) {
				accepted = append(accepted, p)
			}
		}
		total += v.MergeBatch(accepted)
	})
	return total
}
