package domain

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrUnknownRoom      = errors.New("unknown room")
	ErrUnknownBooking   = errors.New("unknown booking")
	ErrCapacityExceeded = errors.New("capacity exceeded")
	ErrInvalidNights    = errors.New("nights must be positive")
	ErrInvalidStay      = errors.New("invalid stay")
	ErrRoomUnavailable  = errors.New("room no longer available")
	ErrBookingExpired   = errors.New("booking expired")
	ErrValidation       = errors.New("validation failed")
)
