package domain

import (
	"fmt"
	"time"
)

// Stay is a half-open date range [CheckIn, CheckOut): the checkout day is
// free for the next guest's check-in. Times are truncated to midnight UTC.
type Stay struct {
	CheckIn  time.Time `json:"start"`
	CheckOut time.Time `json:"end"`
}

// Day truncates a timestamp to its calendar day in UTC.
func Day(t time.Time) time.Time {
	return time.Date(t.UTC().Year(), t.UTC().Month(), t.UTC().Day(), 0, 0, 0, 0, time.UTC)
}

// NewStay normalizes both dates to days and validates ordering.
func NewStay(checkIn, checkOut time.Time) (Stay, error) {
	s := Stay{CheckIn: Day(checkIn), CheckOut: Day(checkOut)}
	if !s.CheckIn.Before(s.CheckOut) {
		return Stay{}, fmt.Errorf("%w: check-in must be before check-out", ErrInvalidStay)
	}
	return s, nil
}

// Nights is the stay length; always >= 1 for a valid Stay.
func (s Stay) Nights() int {
	return int(s.CheckOut.Sub(s.CheckIn) / (24 * time.Hour))
}

// Overlaps reports whether two half-open ranges intersect. Touching
// boundaries (one stay's checkout on another's check-in) do not conflict.
func (s Stay) Overlaps(o Stay) bool {
	return s.CheckIn.Before(o.CheckOut) && o.CheckIn.Before(s.CheckOut)
}

// Contains reports whether day falls inside the stay, checkout day excluded.
func (s Stay) Contains(day time.Time) bool {
	d := Day(day)
	return !d.Before(s.CheckIn) && d.Before(s.CheckOut)
}

// BookedInterval is a stay committed to a room by a paid or live pending
// booking. Exposed publicly without guest identity.
type BookedInterval struct {
	RoomID string `json:"roomId"`
	Stay
}
