package postService

import (
	"context"
	"errors"
	"testing"
	"time"

	"picksBot/models"
)

var base = time.Date(2024, 11, 6, 12, 0, 0, 0, time.UTC)

func post(id uint, offset time.Duration) models.Post {
	return models.Post{ID: id, CreatedAt: base.Add(offset), Kind: models.PostKindText}
}

func ids(posts []models.Post) []uint {
	out := make([]uint, 0, len(posts))
	for _, p := range posts {
		out = append(out, p.ID)
	}
	return out
}

func equalIDs(a, b []uint) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestApplyPageDiscardsStaleResponses(t *testing.T) {
	v := NewFeedView("v", 1, false)

	first := v.BeginRequest()
	second := v.BeginRequest()

	if !v.ApplyPage(second, 1, []models.Post{post(5, 0)}, PageState{}) {
		t.Fatal("Expected current response to apply")
	}
	if v.ApplyPage(first, 0, []models.Post{post(9, 0)}, PageState{}) {
		t.Error("Expected stale response to be discarded")
	}
	if got := ids(v.Posts()); !equalIDs(got, []uint{5}) || v.Page() != 1 {
		t.Errorf("Expected page 1 with post 5, got page %d %v", v.Page(), got)
	}
}

func TestMergeBatch(t *testing.T) {
	tests := []struct {
		name     string
		page     int
		existing []models.Post
		batch    []models.Post
		added    int
		expected []uint
	}{
		{
			name:     "splices newest first at head",
			existing: []models.Post{post(3, 0), post(2, -time.Minute)},
			batch:    []models.Post{post(4, time.Minute), post(6, 3*time.Minute), post(5, 2*time.Minute)},
			added:    3,
			expected: []uint{6, 5, 4, 3, 2},
		},
		{
			name:     "drops known ids",
			existing: []models.Post{post(3, 0)},
			batch:    []models.Post{post(3, 0), post(4, time.Minute), post(4, time.Minute)},
			added:    1,
			expected: []uint{4, 3},
		},
		{
			name:     "equal timestamps order by id",
			existing: nil,
			batch:    []models.Post{post(7, time.Minute), post(8, time.Minute)},
			added:    2,
			expected: []uint{8, 7},
		},
		{
			name:     "older page only counts",
			page:     2,
			existing: []models.Post{post(3, 0), post(2, -time.Minute)},
			batch:    []models.Post{post(4, time.Minute), post(5, 2*time.Minute)},
			added:    2,
			expected: []uint{3, 2},
		},
		{
			name:     "empty batch",
			existing: []models.Post{post(1, 0)},
			batch:    nil,
			added:    0,
			expected: []uint{1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewFeedView("v", 1, false)
			v.ApplyPage(v.BeginRequest(), tt.page, tt.existing, PageState{})

			if added := v.MergeBatch(tt.batch); added != tt.added {
				t.Errorf("Expected %d added, got %d", tt.added, added)
			}
			if got := ids(v.Posts()); !equalIDs(got, tt.expected) {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
			if unseen := v.TakeUnseen(); unseen != tt.added {
				t.Errorf("Expected %d unseen, got %d", tt.added, unseen)
			}
		})
	}
}

func TestOptimistic(t *testing.T) {
	t.Run("keeps change on success", func(t *testing.T) {
		value := 0
		err := Optimistic(context.Background(),
			func() { value++ },
			func(context.Context) error { return nil },
			func() { value-- },
		)
		if err != nil || value != 1 {
			t.Errorf("Expected value 1 and no error, got %d %v", value, err)
		}
	})

	t.Run("rolls back on failure", func(t *testing.T) {
		value := 0
		remoteErr := errors.New("backend unavailable")
		err := Optimistic(context.Background(),
			func() { value++ },
			func(context.Context) error { return remoteErr },
			func() { value-- },
		)
		if !errors.Is(err, remoteErr) || value != 0 {
			t.Errorf("Expected rollback to 0 with remote error, got %d %v", value, err)
		}
	})

	t.Run("rolls back on panic", func(t *testing.T) {
		value := 0
		err := Optimistic(context.Background(),
			func() { value++ },
			func(context.Context) error { panic("boom") },
			func() { value-- },
		)
		if err == nil || value != 0 {
			t.Errorf("Expected rollback after panic, got %d %v", value, err)
		}
	})
}

func TestViewsDeliverRespectsFollowingOnly(t *testing.T) {
	views := NewViews(time.Hour)
	everyone := views.Open(1, false)
	following := views.Open(1, true)

	batch := []models.Post{
		{ID: 10, AuthorID: 2, CreatedAt: base},
		{ID: 11, AuthorID: 3, CreatedAt: base.Add(time.Second)},
	}
	follows := func(followerID, followeeID uint) bool { return followerID == 1 && followeeID == 2 }

	if total := views.Deliver(batch, follows); total != 3 {
		t.Errorf("Expected 3 merged posts across views, got %d", total)
	}
	if got := ids(everyone.Posts()); !equalIDs(got, []uint{11, 10}) {
		t.Errorf("Unexpected global feed %v", got)
	}
	if got := ids(following.Posts()); !equalIDs(got, []uint{10}) {
		t.Errorf("Unexpected following feed %v", got)
	}
}

func TestViewsCleanup(t *testing.T) {
	views := NewViews(time.Minute)
	v := views.Open(1, false)

	if removed := views.Cleanup(time.Now()); removed != 0 {
		t.Errorf("Expected fresh view to survive, removed %d", removed)
	}
	if removed := views.Cleanup(time.Now().Add(2 * time.Minute)); removed != 1 {
		t.Errorf("Expected idle view to be removed, removed %d", removed)
	}
	if _, ok := views.Get(v.ID); ok {
		t.Error("Expected view to be gone")
	}
}
