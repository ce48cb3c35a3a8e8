package app

import (
	"context"
	"time"

	"github.com/nikola1125/villa-safira/internal/domain"
)

// SweepService expires pending bookings that never completed payment, so
// their stays stop blocking the calendar.
type SweepService struct {
	repo  domain.BookingRepository
	cache domain.Cache
}

func NewSweepService(r domain.BookingRepository, c domain.Cache) *SweepService {
	return &SweepService{repo: r, cache: c}
}

// StalePending lists pending bookings older than ttl.
func (s *SweepService) StalePending(ctx context.Context, ttl time.Duration) ([]string, error) {
	return s.repo.ListStalePending(ctx, time.Now().UTC().Add(-ttl))
}

// ExpireBooking expires one booking; changed is false when the booking was
// paid (or already expired) in the meantime.
func (s *SweepService) ExpireBooking(ctx context.Context, id string) (bool, error) {
	changed, err := s.repo.Expire(ctx, id)
	if err != nil {
		return false, err
	}
	if changed && s.cache != nil {
		// the stay no longer blocks the calendar
		_ = s.cache.Del(ctx, bookedDatesKey)
	}
	return changed, nil
}
