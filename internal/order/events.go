package order

import "time"

// CreatedEvent is the ephemeral post-commit event. It is built by the
// Service only after the write transaction has committed, consumed once by
// the dispatcher, and discarded regardless of the notification outcome.
type CreatedEvent struct {
	OrderID   int64
	Timestamp time.Time
}

// NewCreatedEvent stamps the event with the moment of commit.
func NewCreatedEvent(orderID int64) CreatedEvent {
	return CreatedEvent{OrderID: orderID, Timestamp: time.Now().UTC()}
}

// EventPublisher is the port the Service pushes committed-order events
// through. Publish must not block on downstream delivery: implementations
// hand the event to their own worker and return immediately.
type EventPublisher interface {
	Publish(event CreatedEvent)
}
