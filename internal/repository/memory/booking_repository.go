// Package memory provides mutex-guarded in-memory implementations of the
// booking and catalog repositories, for tests and single-process local runs.
// Every value is an explicit object; nothing here is package-level state.
package memory

import (
	"context"
	"sort"
	"sync"

	bookingDomain "github.com/shareit/service-booking/internal/domain/booking"
	"github.com/shareit/service-booking/internal/platform/apperror"
	"github.com/shareit/service-booking/internal/platform/pagination"
)

// BookingRepository keeps bookings in insertion order with sequential ids.
// Item and booker are read from the catalog repositories on every lookup, the
// way the SQL store joins the current rows.
type BookingRepository struct {
	mu    sync.RWMutex
	seq   int64
	rows  map[int64]bookingDomain.Booking
	order []int64
	finds int

	users *UserRepository
	items *ItemRepository
}

// NewBookingRepository creates an empty BookingRepository that resolves item
// and booker through users and items.
func NewBookingRepository(users *UserRepository, items *ItemRepository) *BookingRepository {
	return &BookingRepository{
		rows:  make(map[int64]bookingDomain.Booking),
		users: users,
		items: items,
	}
}

// ListQueries reports how many list queries have been served.
func (r *BookingRepository) ListQueries() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.finds
}

func (r *BookingRepository) FindByID(_ context.Context, id int64) (*bookingDomain.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	row, ok := r.rows[id]
	if !ok {
		return nil, apperror.NewNotFoundError("Booking", id)
	}
	return r.resolve(row), nil
}

func (r *BookingRepository) FindByBooker(_ context.Context, bookerID int64, page *pagination.Page) ([]*bookingDomain.Booking, error) {
	out := r.collect(func(b *bookingDomain.Booking) bool { return b.Booker().ID == bookerID })
	sort.SliceStable(out, func(i, j int) bool { return out[i].Start().After(out[j].Start()) })
	return window(out, page), nil
}

func (r *BookingRepository) FindByItemOwner(_ context.Context, ownerID int64, page *pagination.Page) ([]*bookingDomain.Booking, error) {
	out := r.collect(func(b *bookingDomain.Booking) bool { return b.Item().IsOwnedBy(ownerID) })
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID() > out[j].ID() })
	return window(out, page), nil
}

func (r *BookingRepository) FirstByItemOrderByStartAsc(_ context.Context, itemID int64) (*bookingDomain.Booking, error) {
	return r.firstByItem(itemID, func(a, b *bookingDomain.Booking) bool { return a.Start().Before(b.Start()) }), nil
}

func (r *BookingRepository) FirstByItemOrderByEndDesc(_ context.Context, itemID int64) (*bookingDomain.Booking, error) {
	return r.firstByItem(itemID, func(a, b *bookingDomain.Booking) bool { return a.End().After(b.End()) }), nil
}

func (r *BookingRepository) Save(_ context.Context, bk *bookingDomain.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.seq++
	bk.AssignID(r.seq)
	r.rows[bk.ID()] = *bk
	r.order = append(r.order, bk.ID())
	return nil
}

// Update applies the same version check as the SQL store.
func (r *BookingRepository) Update(_ context.Context, bk *bookingDomain.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.rows[bk.ID()]
	if !ok || stored.Version() != bk.Version()-1 {
		return apperror.NewConflictError("booking was modified by another transaction")
	}
	r.rows[bk.ID()] = *bk
	return nil
}

func (r *BookingRepository) collect(keep func(*bookingDomain.Booking) bool) []*bookingDomain.Booking {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.finds++
	var out []*bookingDomain.Booking
	for _, id := range r.order {
		if b := r.resolve(r.rows[id]); keep(b) {
			out = append(out, b)
		}
	}
	return out
}

func (r *BookingRepository) firstByItem(itemID int64, less func(a, b *bookingDomain.Booking) bool) *bookingDomain.Booking {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var best *bookingDomain.Booking
	for _, id := range r.order {
		row := r.rows[id]
		if row.Item().ID != itemID {
			continue
		}
		if best == nil || less(&row, best) {
			best = &row
		}
	}
	if best == nil {
		return nil
	}
	return r.resolve(*best)
}

// resolve swaps the stored item and booker for their current catalog state.
// The snapshot taken at creation is kept when the catalog never knew them.
func (r *BookingRepository) resolve(row bookingDomain.Booking) *bookingDomain.Booking {
	item, booker := row.Item(), row.Booker()
	if r.items != nil {
		if current, ok := r.items.record(item.ID); ok {
			item = current
		}
	}
	if r.users != nil {
		if current, ok := r.users.record(booker.ID); ok {
			booker = current
		}
	}
	return bookingDomain.ReconstructBooking(
		row.ID(), item, booker, row.Start(), row.End(), row.Status(),
		row.Version(), row.CreatedAt(), row.UpdatedAt(),
	)
}

func window(bookings []*bookingDomain.Booking, page *pagination.Page) []*bookingDomain.Booking {
	if page == nil {
		return bookings
	}
	if page.Offset >= len(bookings) {
		return nil
	}
	end := page.Offset + page.Limit
	if end > len(bookings) {
		end = len(bookings)
	}
	return bookings[page.Offset:end]
}
