package booking

import "time"

// TopicEvents is the topic booking lifecycle events are published to.
const TopicEvents = "booking.events"

// Booking lifecycle event types.
const (
	EventCreated  = "booking.created"
	EventApproved = "booking.approved"
	EventRejected = "booking.rejected"
)

// LifecycleEvent is the payload of every booking lifecycle event.
type LifecycleEvent struct {
	BookingID  int64     `json:"booking_id"`
	ItemID     int64     `json:"item_id"`
	OwnerID    int64     `json:"owner_id"`
	BookerID   int64     `json:"booker_id"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	Status     string    `json:"status"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewLifecycleEvent snapshots b for publishing.
func NewLifecycleEvent(b *Booking) LifecycleEvent {
	return LifecycleEvent{
		BookingID:  b.ID(),
		ItemID:     b.Item().ID,
		OwnerID:    b.Item().OwnerID,
		BookerID:   b.Booker().ID,
		Start:      b.Start(),
		End:        b.End(),
		Status:     b.Status().String(),
		OccurredAt: time.Now().UTC(),
	}
}

// EventTypeFor returns the event type announcing a booking reaching status.
func EventTypeFor(status BookingStatus) string {
	switch status {
	case StatusApproved:
		return EventApproved
	case StatusRejected:
		return EventRejected
	default:
		return EventCreated
	}
}
