package booking

import (
	"time"

	"github.com/shareit/service-booking/internal/domain/catalog"
	"github.com/shareit/service-booking/internal/platform/apperror"
)

// Booking is the aggregate root for the booking domain: a reservation of an
// item by a booker for the window [start, end].
type Booking struct {
	id     int64
	item   catalog.Item
	booker catalog.User
	start  time.Time
	end    time.Time
	status BookingStatus

	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// NewBooking validates a booking request against the item and the submission
// time now, and returns a WAITING booking with no id yet. The checks run in a
// fixed order and the first failure is returned.
func NewBooking(item catalog.Item, booker catalog.User, start, end, now time.Time) (*Booking, error) {
	if item.IsOwnedBy(booker.ID) {
		return nil, apperror.NewNotFound("User is item owner")
	}
	if !item.Available {
		return nil, apperror.NewValidationError("Item is not available now")
	}
	if start.Before(now) {
		return nil, apperror.NewValidationError("Start time in past")
	}
	if end.Before(now) {
		return nil, apperror.NewValidationError("End time is past")
	}
	if !end.After(start) {
		return nil, apperror.NewValidationError("Start time is after end time")
	}

	now = now.UTC()
	return &Booking{
		item:      item,
		booker:    booker,
		start:     start.UTC(),
		end:       end.UTC(),
		status:    StatusWaiting,
		version:   1,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// ReconstructBooking rebuilds a Booking from persistence data (no validation).
func ReconstructBooking(
	id int64,
	item catalog.Item,
	booker catalog.User,
	start, end time.Time,
	status BookingStatus,
	version int64,
	createdAt, updatedAt time.Time,
) *Booking {
	return &Booking{
		id:        id,
		item:      item,
		booker:    booker,
		start:     start,
		end:       end,
		status:    status,
		version:   version,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

// --- Getters ---

func (b *Booking) ID() int64             { return b.id }
func (b *Booking) Item() catalog.Item    { return b.item }
func (b *Booking) Booker() catalog.User  { return b.booker }
func (b *Booking) Start() time.Time      { return b.start }
func (b *Booking) End() time.Time        { return b.end }
func (b *Booking) Status() BookingStatus { return b.status }
func (b *Booking) Version() int64        { return b.version }
func (b *Booking) CreatedAt() time.Time  { return b.createdAt }
func (b *Booking) UpdatedAt() time.Time  { return b.updatedAt }

// --- Behavior ---

// AssignID records the identifier handed out by the store on first save.
// It is a no-op once an id is set.
func (b *Booking) AssignID(id int64) {
	if b.id == 0 {
		b.id = id
	}
}

// IsVisibleTo reports whether userID may see the booking: the booker or the item owner.
func (b *Booking) IsVisibleTo(userID int64) bool {
	return b.booker.ID == userID || b.item.IsOwnedBy(userID)
}

// Approve settles a WAITING booking on behalf of the item owner. A booking is
// decided exactly once; the status check runs before the ownership check.
func (b *Booking) Approve(ownerID int64, approved bool) error {
	target := StatusRejected
	if approved {
		target = StatusApproved
	}
	if !b.status.CanTransitionTo(target) {
		return apperror.NewValidationError("Already approve")
	}
	if !b.item.IsOwnedBy(ownerID) {
		return apperror.NewNotFound("user not owner")
	}
	b.status = target
	b.updatedAt = time.Now().UTC()
	return nil
}

// IncrementVersion bumps the version for optimistic locking.
func (b *Booking) IncrementVersion() {
	b.version++
	b.updatedAt = time.Now().UTC()
}
