package booking

import (
	"time"

	"github.com/shareit/service-booking/internal/platform/apperror"
)

// State is a query-time bucket derived from a booking's status and its window
// relative to now. It is never persisted.
type State string

const (
	StateAll      State = "ALL"
	StateWaiting  State = "WAITING"
	StateRejected State = "REJECTED"
	StatePast     State = "PAST"
	StateFuture   State = "FUTURE"
	StateCurrent  State = "CURRENT"
)

// States lists every recognized state.
var States = []State{StateAll, StateWaiting, StateRejected, StatePast, StateFuture, StateCurrent}

func unknownState(s string) error {
	return apperror.NewValidationError("Unknown state: " + s)
}

// ParseState matches s case-sensitively against the recognized states.
func ParseState(s string) (State, error) {
	for _, state := range States {
		if string(state) == s {
			return state, nil
		}
	}
	return "", unknownState(s)
}

// Matches reports whether b falls in the state's bucket at now.
// CURRENT uses exclusive bounds: a booking is current strictly between start and end.
func (s State) Matches(b *Booking, now time.Time) (bool, error) {
	switch s {
	case StateAll:
		return true, nil
	case StateWaiting:
		return b.Status() == StatusWaiting, nil
	case StateRejected:
		return b.Status() == StatusRejected, nil
	case StatePast:
		return now.After(b.End()), nil
	case StateFuture:
		return now.Before(b.Start()), nil
	case StateCurrent:
		return now.After(b.Start()) && now.Before(b.End()), nil
	default:
		return false, unknownState(string(s))
	}
}

// Classify keeps the bookings in the state's bucket, preserving input order.
// ALL returns the input slice itself.
func Classify(state State, bookings []*Booking, now time.Time) ([]*Booking, error) {
	if state == StateAll {
		return bookings, nil
	}
	filtered := make([]*Booking, 0, len(bookings))
	for _, b := range bookings {
		ok, err := state.Matches(b, now)
		if err != nil {
			return nil, err
		}
		if ok {
			filtered = append(filtered, b)
		}
	}
	return filtered, nil
}
