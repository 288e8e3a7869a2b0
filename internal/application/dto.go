package application

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	bookingDomain "github.com/shareit/service-booking/internal/domain/booking"
	"github.com/shareit/service-booking/internal/domain/catalog"
)

// DateTimeLayout is the zone-less wire format used by existing clients.
const DateTimeLayout = "2006-01-02T15:04:05"

// DateTime is a UTC timestamp that accepts RFC 3339 or zone-less input and
// always renders as DateTimeLayout.
type DateTime struct {
	time.Time
}

// NewDateTime wraps t.
func NewDateTime(t time.Time) DateTime {
	return DateTime{Time: t.UTC()}
}

func (d DateTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.UTC().Format(DateTimeLayout))
}

func (d *DateTime) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("timestamp must be a string: %w", err)
	}
	t, err := ParseDateTime(raw)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// ParseDateTime parses RFC 3339 (with or without fractions) or DateTimeLayout, the latter as UTC.
func ParseDateTime(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t.UTC(), nil
	}
	for _, layout := range []string{DateTimeLayout, DateTimeLayout + ".999999999"} {
		if t, err := time.ParseInLocation(layout, raw, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", raw)
}

// CreateBookingRequest holds the data needed to create a new booking.
type CreateBookingRequest struct {
	ItemID int64     `json:"itemId" binding:"required"`
	Start  *DateTime `json:"start" binding:"required"`
	End    *DateTime `json:"end" binding:"required"`
}

// UserDTO is the response representation of a user.
type UserDTO struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// ItemDTO is the response representation of an item.
type ItemDTO struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Available   bool   `json:"available"`
	RequestID   *int64 `json:"requestId,omitempty"`
}

// BookingDTO is the response representation of a booking.
type BookingDTO struct {
	ID     int64    `json:"id"`
	Start  DateTime `json:"start"`
	End    DateTime `json:"end"`
	Status string   `json:"status"`
	Item   ItemDTO  `json:"item"`
	Booker UserDTO  `json:"booker"`
}

// ShortBookingDTO is the compact booking view attached to an item.
type ShortBookingDTO struct {
	ID       int64    `json:"id"`
	Start    DateTime `json:"start"`
	End      DateTime `json:"end"`
	ItemID   int64    `json:"itemId"`
	BookerID int64    `json:"bookerId"`
	Status   string   `json:"status"`
}

// ItemBookingSummaryDTO carries an item's last and next bookings. Both are
// null unless the requester owns the item.
type ItemBookingSummaryDTO struct {
	ItemID      int64            `json:"itemId"`
	LastBooking *ShortBookingDTO `json:"lastBooking"`
	NextBooking *ShortBookingDTO `json:"nextBooking"`
}

// --- Helpers ---

func toUserDTO(u catalog.User) UserDTO {
	return UserDTO{ID: u.ID, Name: u.Name, Email: u.Email}
}

func toItemDTO(i catalog.Item) ItemDTO {
	return ItemDTO{
		ID:          i.ID,
		Name:        i.Name,
		Description: i.Description,
		Available:   i.Available,
		RequestID:   i.RequestID,
	}
}

func toBookingDTO(bk *bookingDomain.Booking) BookingDTO {
	return BookingDTO{
		ID:     bk.ID(),
		Start:  NewDateTime(bk.Start()),
		End:    NewDateTime(bk.End()),
		Status: bk.Status().String(),
		Item:   toItemDTO(bk.Item()),
		Booker: toUserDTO(bk.Booker()),
	}
}

func toBookingDTOs(bookings []*bookingDomain.Booking) []BookingDTO {
	dtos := make([]BookingDTO, len(bookings))
	for i, bk := range bookings {
		dtos[i] = toBookingDTO(bk)
	}
	return dtos
}

func toShortBookingDTO(bk *bookingDomain.Booking) *ShortBookingDTO {
	if bk == nil {
		return nil
	}
	return &ShortBookingDTO{
		ID:       bk.ID(),
		Start:    NewDateTime(bk.Start()),
		End:      NewDateTime(bk.End()),
		ItemID:   bk.Item().ID,
		BookerID: bk.Booker().ID,
		Status:   bk.Status().String(),
	}
}
