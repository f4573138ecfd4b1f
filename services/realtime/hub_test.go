package realtime

import (
	"context"
	"errors"
	"testing"
	"time"

	"picksBot/models"
	"picksBot/services/metrics"
	"picksBot/services/store"
	"picksBot/services/store/storetest"
)

type failingStore struct {
	*storetest.Memory
}

func (failingStore) PostsSince(context.Context, store.Cursor, int) ([]models.Post, error) {
	return nil, errors.New("connection refused")
}

var start = time.Date(2024, 11, 6, 12, 0, 0, 0, time.UTC)

func seed(t *testing.T, mem *storetest.Memory, n int) {
	t.Helper()
	author, _ := mem.EnsureUser(context.Background(), "1", "author")
	for i := 0; i < n; i++ {
		post := &models.Post{
			AuthorID:  author.ID,
			Kind:      models.PostKindText,
			Body:      "post",
			CreatedAt: start.Add(time.Duration(i+1) * time.Second),
		}
		if err := mem.CreatePost(context.Background(), post); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
}

func TestPollDeliversOrderedBatches(t *testing.T) {
	mem := storetest.NewMemory()
	seed(t, mem, 5)

	hub := NewHub(mem, metrics.New(), start)
	hub.SetBatchSize(2)

	var batches [][]uint
	var order []string
	hub.Subscribe(func(ctx context.Context, batch []models.Post) {
		var ids []uint
		for _, p := range batch {
			ids = append(ids, p.ID)
		}
		batches = append(batches, ids)
		order = append(order, "first")
	})
	hub.Subscribe(func(ctx context.Context, batch []models.Post) {
		order = append(order, "second")
	})

	n, err := hub.Poll(context.Background())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if n != 5 {
		t.Errorf("Expected 5 posts delivered, got %d", n)
	}
	if len(batches) != 3 {
		t.Fatalf("Expected 3 batches, got %v", batches)
	}
	var prev uint
	for _, batch := range batches {
		for _, id := range batch {
			if id <= prev {
				t.Errorf("Expected ascending delivery, got %v", batches)
			}
			prev = id
		}
	}
	for i := 0; i < len(order); i += 2 {
		if order[i] != "first" || order[i+1] != "second" {
			t.Errorf("Expected subscribers called in order, got %v", order)
			break
		}
	}

	n, _ = hub.Poll(context.Background())
	if n != 0 {
		t.Errorf("Expected nothing new on second poll, got %d", n)
	}
}

func TestUnsubscribe(t *testing.T) {
	mem := storetest.NewMemory()
	hub := NewHub(mem, metrics.New(), start)

	calls := 0
	cancel := hub.Subscribe(func(ctx context.Context, batch []models.Post) { calls++ })
	seed(t, mem, 1)
	_, _ = hub.Poll(context.Background())

	cancel()
	author, _ := mem.EnsureUser(context.Background(), "1", "")
	_ = mem.CreatePost(context.Background(), &models.Post{AuthorID: author.ID, Kind: models.PostKindText, CreatedAt: start.Add(time.Hour)})
	_, _ = hub.Poll(context.Background())

	if calls != 1 {
		t.Errorf("Expected 1 call before unsubscribing, got %d", calls)
	}
}

func TestPollErrorKeepsCursor(t *testing.T) {
	hub := NewHub(failingStore{storetest.NewMemory()}, metrics.New(), start)
	if _, err := hub.Poll(context.Background()); err == nil {
		t.Fatal("Expected error")
	}
	if c := hub.Cursor(); !c.CreatedAt.Equal(start) || c.ID != 0 {
		t.Errorf("Expected cursor unchanged, got %+v", c)
	}
}
