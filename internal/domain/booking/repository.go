package booking

import (
	"context"

	"github.com/shareit/service-booking/internal/platform/pagination"
)

// BookingRepository defines the persistence contract for booking aggregates.
// A nil page means the whole result set.
type BookingRepository interface {
	// FindByID retrieves a booking by its identifier.
	FindByID(ctx context.Context, id int64) (*Booking, error)

	// FindByBooker retrieves a booker's bookings ordered by start time descending.
	FindByBooker(ctx context.Context, bookerID int64, page *pagination.Page) ([]*Booking, error)

	// FindByItemOwner retrieves bookings on items owned by ownerID ordered by id descending.
	FindByItemOwner(ctx context.Context, ownerID int64, page *pagination.Page) ([]*Booking, error)

	// FirstByItemOrderByStartAsc returns the earliest-starting booking of an item, or nil.
	FirstByItemOrderByStartAsc(ctx context.Context, itemID int64) (*Booking, error)

	// FirstByItemOrderByEndDesc returns the latest-ending booking of an item, or nil.
	FirstByItemOrderByEndDesc(ctx context.Context, itemID int64) (*Booking, error)

	// Save persists a new booking and assigns its id.
	Save(ctx context.Context, booking *Booking) error

	// Update persists changes to an existing booking with optimistic locking.
	Update(ctx context.Context, booking *Booking) error
}
