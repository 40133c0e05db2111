// Package notify decouples "order was committed" from "tell the
// notification service about it". The Dispatcher owns a buffered channel and
// a single worker goroutine; the Client performs the outbound HTTP call.
package notify

import (
	"context"
	"log/slog"
	"time"

	"orderhub/internal/order"
)

// Notifier performs one best-effort delivery attempt for a created order.
type Notifier interface {
	NotifyOrderCreated(ctx context.Context, orderID int64) error
}

// Dispatcher consumes post-commit events from an in-process queue and calls
// the Notifier for each one, strictly off the request-serving goroutine.
// Delivery failures are logged with the order id and discarded: there is no
// retry, no dead-letter, and no way for them to reach the original caller.
type Dispatcher struct {
	notifier Notifier
	timeout  time.Duration
	events   chan order.CreatedEvent
	done     chan struct{}
}

// NewDispatcher sizes the queue with buffer slots. timeout bounds each
// delivery attempt; the upstream write is already durable by the time an
// event is queued, so expiry is logged and dropped like any other failure.
func NewDispatcher(n Notifier, buffer int, timeout time.Duration) *Dispatcher {
	return &Dispatcher{
		notifier: n,
		timeout:  timeout,
		events:   make(chan order.CreatedEvent, buffer),
		done:     make(chan struct{}),
	}
}

var _ order.EventPublisher = (*Dispatcher)(nil)

// Publish enqueues a committed-order event and returns immediately. When the
// queue is full the event is dropped and logged — the notification contract
// is best-effort, and order durability must never wait on downstream
// capacity.
func (d *Dispatcher) Publish(ev order.CreatedEvent) {
	select {
	case d.events <- ev:
	default:
		slog.Warn("notification queue full, dropping event",
			"order_id", ev.OrderID,
			"committed_at", ev.Timestamp,
		)
	}
}

// Run consumes events until ctx is cancelled. Call it on its own goroutine;
// it returns after the in-flight attempt (if any) finishes.
func (d *Dispatcher) Run(ctx context.Context) {
	defer close(d.done)
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-d.events:
			d.dispatch(ev)
		}
	}
}

// Done is closed once Run has returned. Lets main wait for the worker
// during shutdown.
func (d *Dispatcher) Done() <-chan struct{} {
	return d.done
}

func (d *Dispatcher) dispatch(ev order.CreatedEvent) {
	// The attempt runs on a fresh context: the originating HTTP request is
	// long gone, and shutdown should not cancel a delivery mid-flight.
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	slog.Debug("dispatching order-created notification",
		"order_id", ev.OrderID,
		"committed_at", ev.Timestamp,
	)

	if err := d.notifier.NotifyOrderCreated(ctx, ev.OrderID); err != nil {
		slog.Error("order-created notification failed",
			"order_id", ev.OrderID,
			"error", err,
		)
		return
	}

	slog.Debug("order-created notification delivered", "order_id", ev.OrderID)
}
