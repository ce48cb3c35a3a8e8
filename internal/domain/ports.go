package domain

import (
	"context"
	"time"
)

type BookingRepository interface {
	// Write paths
	// CreateBooking persists a pending booking after an authoritative
	// overlap re-check inside one transaction; ErrRoomUnavailable when a
	// live booking already covers part of the stay.
	CreateBooking(ctx context.Context, b Booking) error
	// MarkPaid flips pending -> paid. Idempotent: changed is false when
	// the booking was already paid. ErrUnknownBooking / ErrBookingExpired.
	MarkPaid(ctx context.Context, id string) (changed bool, err error)
	// Expire flips a stale pending booking to expired; no-op when paid.
	Expire(ctx context.Context, id string) (changed bool, err error)

	// Read paths
	GetBooking(ctx context.Context, id string) (Booking, error)
	// ListBookedIntervals returns stays of paid and live pending bookings,
	// without guest identity.
	ListBookedIntervals(ctx context.Context) ([]BookedInterval, error)
	// ListStalePending returns ids of pending bookings created before cutoff.
	ListStalePending(ctx context.Context, cutoff time.Time) ([]string, error)
}

type ReviewRepository interface {
	InsertReview(ctx context.Context, r Review) (Review, error)
	ListReviews(ctx context.Context, limit int) ([]Review, error)
}

type PaymentProvider interface {
	// InitiatePayment opens a checkout for the booking and returns the
	// redirect URL the guest completes payment on.
	InitiatePayment(ctx context.Context, bookingID string, amountCents int) (string, error)
	// VerifyPayment asks the provider whether the checkout completed.
	VerifyPayment(ctx context.Context, bookingID string) (bool, error)
}

type Mailer interface {
	SendConfirmation(ctx context.Context, b Booking) error
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}
