package queue

import (
	"context"
	"errors"
	"hash/fnv"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/omnibus/ticket-checkout/internal/core/domain"
	"github.com/omnibus/ticket-checkout/internal/pkg/metrics"
)

const (
	defaultWorkers = 8
	channelBuffer  = 256
)

// ErrQueueFull is returned by Enqueue when the order's worker is saturated.
var ErrQueueFull = errors.New("surface event queue full")

// EventHandler consumes surface events.
type EventHandler interface {
	HandleEvent(ctx context.Context, ev domain.SurfaceEvent) error
}

// Dispatcher routes checkout surface events to a fixed set of workers using
// consistent hashing on the order id. Each worker is a serial event loop, so
// events of one order are never handled concurrently or out of order.
type Dispatcher struct {
	workers []chan domain.SurfaceEvent
	handler EventHandler
	log     zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, handler EventHandler, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan domain.SurfaceEvent, numWorkers),
		handler: handler,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.SurfaceEvent, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue hands an event to the worker responsible for its order. It never
// blocks: a saturated worker yields ErrQueueFull.
func (d *Dispatcher) Enqueue(ev domain.SurfaceEvent) error {
	idx := d.shardIndex(ev.OrderID)
	select {
	case d.workers[idx] <- ev:
		metrics.SurfaceQueueDepth.WithLabelValues(strconv.Itoa(idx)).Inc()
		return nil
	default:
		return ErrQueueFull
	}
}

// shardIndex maps an order id deterministically to a worker index.
func (d *Dispatcher) shardIndex(orderID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(orderID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.SurfaceEvent) {
	depth := metrics.SurfaceQueueDepth.WithLabelValues(strconv.Itoa(id))
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			depth.Dec()
			if err := d.handler.HandleEvent(ctx, ev); err != nil {
				d.log.Error().Err(err).
					Str("order_id", ev.OrderID).
					Str("type", string(ev.Type)).
					Int("worker_id", id).
					Msg("surface event processing failed")
			}
		}
	}
}
