package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/nikola1125/villa-safira/internal/domain"
)

const bookedDatesKey = "booked-dates"

// AvailabilityResult is the multi-room answer of an availability query.
type AvailabilityResult struct {
	Available bool                `json:"available"`
	Nights    int                 `json:"nights"`
	Rooms     []domain.PricedRoom `json:"rooms"`
}

// RoomAvailability is the single-room confirmation answer.
type RoomAvailability struct {
	Available bool   `json:"available"`
	Nights    int    `json:"nights,omitempty"`
	Total     int    `json:"total,omitempty"`
	RoomName  string `json:"roomName,omitempty"`
}

type BookingService struct {
	repo     domain.BookingRepository
	pay      domain.PaymentProvider
	mail     domain.Mailer
	cache    domain.Cache
	cacheTTL time.Duration
	now      func() time.Time
}

func NewBookingService(r domain.BookingRepository, p domain.PaymentProvider, m domain.Mailer, c domain.Cache, ttl time.Duration) *BookingService {
	return &BookingService{repo: r, pay: p, mail: m, cache: c, cacheTTL: ttl, now: time.Now}
}

// BookedIntervals lists committed stays for the public calendar, cache-aside.
func (s *BookingService) BookedIntervals(ctx context.Context) ([]domain.BookedInterval, error) {
	var out []domain.BookedInterval
	if ok, _ := s.cache.Get(ctx, bookedDatesKey, &out); ok {
		return out, nil
	}
	out, err := s.repo.ListBookedIntervals(ctx)
	if err != nil {
		return nil, err
	}
	_ = s.cache.Set(ctx, bookedDatesKey, out, int(s.cacheTTL.Seconds()))
	return out, nil
}

// validateStay rejects ranges starting in the past on top of the ordering
// check done by NewStay.
func (s *BookingService) validateStay(st domain.Stay) error {
	if st.CheckIn.Before(domain.Day(s.now())) {
		return fmt.Errorf("%w: check-in is in the past", domain.ErrInvalidStay)
	}
	return nil
}

// CheckAvailability prices every free room that can seat the party.
// Advisory only: the authoritative overlap check happens again at create
// time inside the repository transaction.
func (s *BookingService) CheckAvailability(ctx context.Context, st domain.Stay, guests int, breakfast bool) (AvailabilityResult, error) {
	if err := s.validateStay(st); err != nil {
		return AvailabilityResult{}, err
	}
	booked, err := s.BookedIntervals(ctx)
	if err != nil {
		return AvailabilityResult{}, err
	}

	res := AvailabilityResult{Nights: st.Nights()}
	for _, room := range domain.Rooms() {
		if !room.CanSeat(guests) {
			continue
		}
		if overlapsAny(room.ID, st, booked) {
			continue
		}
		total, err := domain.TotalPrice(room.ID, guests, breakfast, st.Nights())
		if err != nil {
			// tier mismatch for this room only; skip it
			continue
		}
		res.Rooms = append(res.Rooms, domain.PricedRoom{RoomID: room.ID, Name: room.Name, TotalEuros: total})
	}
	res.Available = len(res.Rooms) > 0
	return res, nil
}

// CheckRoom confirms one specific room before the details step.
func (s *BookingService) CheckRoom(ctx context.Context, roomID string, st domain.Stay, guests int, breakfast bool) (RoomAvailability, error) {
	if err := s.validateStay(st); err != nil {
		return RoomAvailability{}, err
	}
	room, err := domain.RoomByID(roomID)
	if err != nil {
		return RoomAvailability{}, err
	}
	total, err := domain.TotalPrice(roomID, guests, breakfast, st.Nights())
	if err != nil {
		return RoomAvailability{}, err
	}
	booked, err := s.BookedIntervals(ctx)
	if err != nil {
		return RoomAvailability{}, err
	}
	if overlapsAny(roomID, st, booked) {
		return RoomAvailability{Available: false}, nil
	}
	return RoomAvailability{Available: true, Nights: st.Nights(), Total: total, RoomName: room.Name}, nil
}

// CreatePendingBooking stores the booking and opens a provider checkout.
// The repository re-validates availability under its own transaction, so a
// concurrent create for an overlapping stay fails with ErrRoomUnavailable.
func (s *BookingService) CreatePendingBooking(ctx context.Context, roomID string, st domain.Stay, guests int, breakfast bool, info domain.CustomerInfo) (domain.Booking, string, error) {
	if err := s.validateStay(st); err != nil {
		return domain.Booking{}, "", err
	}
	if guests < 1 {
		return domain.Booking{}, "", fmt.Errorf("%w: guests must be positive", domain.ErrValidation)
	}
	if err := info.Validate(); err != nil {
		return domain.Booking{}, "", fmt.Errorf("%w: name, email and phone are required", err)
	}
	total, err := domain.TotalPrice(roomID, guests, breakfast, st.Nights())
	if err != nil {
		return domain.Booking{}, "", err
	}

	b := domain.Booking{
		ID:            uuid.NewString(),
		RoomID:        roomID,
		CheckIn:       st.CheckIn,
		CheckOut:      st.CheckOut,
		Guests:        guests,
		Breakfast:     breakfast,
		TotalEuros:    total,
		CustomerName:  info.Name,
		CustomerEmail: info.Email,
		CustomerPhone: info.Phone,
		PaymentStatus: domain.PaymentPending,
		CreatedAt:     s.now().UTC(),
	}
	if err := s.repo.CreateBooking(ctx, b); err != nil {
		return domain.Booking{}, "", err
	}
	// the new pending stay blocks the calendar immediately
	_ = s.cache.Del(ctx, bookedDatesKey)

	url, err := s.pay.InitiatePayment(ctx, b.ID, b.TotalEuros*100)
	if err != nil {
		return domain.Booking{}, "", fmt.Errorf("initiate payment for %s: %w", b.ID, err)
	}
	return b, url, nil
}

// GetBooking reads a booking for the polling loop. While the booking is
// pending it also asks the provider whether the checkout completed, so the
// poll endpoint doubles as the verified payment callback.
func (s *BookingService) GetBooking(ctx context.Context, id string) (domain.Booking, error) {
	b, err := s.repo.GetBooking(ctx, id)
	if err != nil {
		return domain.Booking{}, err
	}
	if b.PaymentStatus != domain.PaymentPending {
		return b, nil
	}
	paid, err := s.pay.VerifyPayment(ctx, id)
	if err != nil {
		// provider glitch: keep serving the stored state, next poll retries
		log.Warn().Str("booking", id).Err(err).Msg("payment verification failed")
		return b, nil
	}
	if !paid {
		return b, nil
	}
	return s.MarkPaid(ctx, id)
}

// MarkPaid transitions the booking to paid and sends the confirmation email
// on the first transition only. Mail failures never roll back the payment.
func (s *BookingService) MarkPaid(ctx context.Context, id string) (domain.Booking, error) {
	changed, err := s.repo.MarkPaid(ctx, id)
	if err != nil {
		return domain.Booking{}, err
	}
	b, err := s.repo.GetBooking(ctx, id)
	if err != nil {
		return domain.Booking{}, err
	}
	if changed {
		if merr := s.mail.SendConfirmation(ctx, b); merr != nil {
			log.Warn().Str("booking", id).Err(merr).Msg("confirmation email failed")
		}
	}
	return b, nil
}

// SendConfirmation re-sends the confirmation email for a paid booking.
// Best effort; the handler acks regardless.
func (s *BookingService) SendConfirmation(ctx context.Context, id string) error {
	b, err := s.repo.GetBooking(ctx, id)
	if err != nil {
		return err
	}
	if b.PaymentStatus != domain.PaymentPaid {
		return fmt.Errorf("%w: booking %s is %s", domain.ErrValidation, id, b.PaymentStatus)
	}
	return s.mail.SendConfirmation(ctx, b)
}

func overlapsAny(roomID string, st domain.Stay, booked []domain.BookedInterval) bool {
	for _, iv := range booked {
		if iv.RoomID == roomID && st.Overlaps(iv.Stay) {
			return true
		}
	}
	return false
}
