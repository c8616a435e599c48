package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/omnibus/ticket-checkout/internal/core/domain"
)

type recordingHandler struct {
	mu     sync.Mutex
	byID   map[string][]string
	total  int
	done   chan struct{}
	expect int
}

func newRecordingHandler(expect int) *recordingHandler {
	return &recordingHandler{byID: make(map[string][]string), done: make(chan struct{}), expect: expect}
}

func (h *recordingHandler) HandleEvent(_ context.Context, ev domain.SurfaceEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.byID[ev.OrderID] = append(h.byID[ev.OrderID], ev.URL)
	h.total++
	if h.total == h.expect {
		close(h.done)
	}
	if ev.URL == "fail" {
		return errors.New("boom")
	}
	return nil
}

func TestDispatcher_PreservesPerOrderOrdering(t *testing.T) {
	const orders, perOrder = 5, 50
	h := newRecordingHandler(orders * perOrder)
	d := NewDispatcher(3, h, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	for i := 0; i < perOrder; i++ {
		for o := 0; o < orders; o++ {
			ev := domain.SurfaceEvent{OrderID: fmt.Sprintf("ORDER%d", o), Type: domain.SurfaceNavigation, URL: fmt.Sprint(i)}
			if err := d.Enqueue(ev); err != nil {
				t.Fatalf("Enqueue: %v", err)
			}
		}
	}

	select {
	case <-h.done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for events")
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for id, urls := range h.byID {
		for i, u := range urls {
			if u != fmt.Sprint(i) {
				t.Fatalf("order %s: event %d out of order (got %s)", id, i, u)
			}
		}
	}
}

func TestDispatcher_SameOrderSameShard(t *testing.T) {
	d := NewDispatcher(8, newRecordingHandler(0), zerolog.Nop())
	for i := 0; i < 10; i++ {
		if d.shardIndex("ORDER-ABC") != d.shardIndex("ORDER-ABC") {
			t.Fatal("shard index must be deterministic")
		}
	}
	if idx := d.shardIndex("ORDER-ABC"); idx < 0 || idx >= 8 {
		t.Fatalf("shard index out of range: %d", idx)
	}
}

func TestDispatcher_QueueFull(t *testing.T) {
	h := newRecordingHandler(-1)
	d := NewDispatcher(1, h, zerolog.Nop())

	for i := 0; i < channelBuffer; i++ {
		if err := d.Enqueue(domain.SurfaceEvent{OrderID: "ORDER1"}); err != nil {
			t.Fatalf("Enqueue %d: %v", i, err)
		}
	}
	if err := d.Enqueue(domain.SurfaceEvent{OrderID: "ORDER1"}); !errors.Is(err, ErrQueueFull) {
		t.Fatalf("expected ErrQueueFull, got %v", err)
	}
}

func TestDispatcher_HandlerErrorDoesNotStopWorker(t *testing.T) {
	h := newRecordingHandler(2)
	d := NewDispatcher(1, h, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	_ = d.Enqueue(domain.SurfaceEvent{OrderID: "ORDER1", URL: "fail"})
	_ = d.Enqueue(domain.SurfaceEvent{OrderID: "ORDER1", URL: "ok"})

	select {
	case <-h.done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker stopped after a handler error")
	}
}
