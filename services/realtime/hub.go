// Package realtime turns new rows in the post table into ordered batches for
// subscribers.
package realtime

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"picksBot/models"
	"picksBot/services/metrics"
	"picksBot/services/store"
)

const DefaultBatchSize = 50

// Handler receives one batch at a time, oldest post first.
type Handler func(ctx context.Context, batch []models.Post)

type subscription struct {
	id      int
	handler Handler
}

// Hub polls the store for posts newer than its cursor. Batches are handed to
// every subscriber in subscription order, and a batch is fully handled before
// the next one is fetched.
type Hub struct {
	store     store.Store
	metrics   *metrics.Metrics
	batchSize int

	pollMu sync.Mutex
	cursor store.Cursor

	subMu  sync.Mutex
	subs   []subscription
	nextID int
}

func NewHub(st store.Store, m *metrics.Metrics, since time.Time) *Hub {
	if m == nil {
		m = metrics.Default()
	}
	return &Hub{
		store:     st,
		metrics:   m,
		batchSize: DefaultBatchSize,
		cursor:    store.Cursor{CreatedAt: since},
	}
}

func (h *Hub) SetBatchSize(n int) {
	if n > 0 {
		h.batchSize = n
	}
}

// Subscribe registers a handler and returns a function that removes it.
func (h *Hub) Subscribe(handler Handler) func() {
	h.subMu.Lock()
	defer h.subMu.Unlock()

	h.nextID++
	id := h.nextID
	h.subs = append(h.subs, subscription{id: id, handler: handler})

	return func() {
		h.subMu.Lock()
		defer h.subMu.Unlock()
		for idx, sub := range h.subs {
			if sub.id == id {
				h.subs = append(h.subs[:idx], h.subs[idx+1:]...)
				return
			}
		}
	}
}

func (h *Hub) subscribers() []subscription {
	h.subMu.Lock()
	defer h.subMu.Unlock()
	return append([]subscription(nil), h.subs...)
}

func (h *Hub) Cursor() store.Cursor {
	h.pollMu.Lock()
	defer h.pollMu.Unlock()
	return h.cursor
}

// Poll drains new posts in batches and returns how many were delivered. A
// poll that starts while another is running returns immediately.
func (h *Hub) Poll(ctx context.Context) (int, error) {
	if !h.pollMu.TryLock() {
		return 0, nil
	}
	defer h.pollMu.Unlock()

	delivered := 0
	for {
		batch, err := h.store.PostsSince(ctx, h.cursor, h.batchSize)
		if err != nil {
			return delivered, err
		}
		if len(batch) == 0 {
			return delivered, nil
		}

		last := batch[len(batch)-1]
		h.cursor = store.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}

		for _, sub := range h.subscribers() {
			sub.handler(ctx, batch)
		}
		h.metrics.RealtimeBatches.Inc()
		delivered += len(batch)

		if len(batch) < h.batchSize {
			return delivered, nil
		}
	}
}

// Run is the scheduler entry point.
func (h *Hub) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	n, err := h.Poll(ctx)
	if err != nil {
		slog.Error("realtime poll failed", "error", err)
		return
	}
	if n > 0 {
		slog.Debug("realtime batch delivered", "posts", n)
	}
}
