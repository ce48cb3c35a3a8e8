package domain_test

import (
	"errors"
	"testing"
	"time"

	"github.com/nikola1125/villa-safira/internal/domain"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func mustStay(t *testing.T, in, out time.Time) domain.Stay {
	t.Helper()
	s, err := domain.NewStay(in, out)
	if err != nil {
		t.Fatalf("NewStay: %v", err)
	}
	return s
}

func TestNewStay(t *testing.T) {
	s := mustStay(t, date(2026, 5, 1), date(2026, 5, 4))
	if s.Nights() != 3 {
		t.Fatalf("want 3 nights, got %d", s.Nights())
	}

	// zero-night and inverted stays are invalid
	if _, err := domain.NewStay(date(2026, 5, 1), date(2026, 5, 1)); !errors.Is(err, domain.ErrInvalidStay) {
		t.Fatalf("zero-night stay: want ErrInvalidStay, got %v", err)
	}
	if _, err := domain.NewStay(date(2026, 5, 4), date(2026, 5, 1)); !errors.Is(err, domain.ErrInvalidStay) {
		t.Fatalf("inverted stay: want ErrInvalidStay, got %v", err)
	}

	// times inside a day are normalized away
	s = mustStay(t,
		time.Date(2026, 5, 1, 14, 30, 0, 0, time.UTC),
		time.Date(2026, 5, 3, 10, 0, 0, 0, time.UTC),
	)
	if !s.CheckIn.Equal(date(2026, 5, 1)) || !s.CheckOut.Equal(date(2026, 5, 3)) {
		t.Fatalf("unexpected normalization: %+v", s)
	}
}

func TestStay_Overlaps(t *testing.T) {
	a := mustStay(t, date(2026, 5, 1), date(2026, 5, 3))
	b := mustStay(t, date(2026, 5, 2), date(2026, 5, 5))
	c := mustStay(t, date(2026, 5, 3), date(2026, 5, 5)) // adjacent to a

	if !a.Overlaps(b) || !b.Overlaps(a) {
		t.Fatal("expected symmetric overlap between a and b")
	}
	// half-open ranges: [May 1, May 3) does not conflict with [May 3, May 5)
	if a.Overlaps(c) || c.Overlaps(a) {
		t.Fatal("adjacent stays must not overlap")
	}
	// a range containing another overlaps it
	outer := mustStay(t, date(2026, 4, 30), date(2026, 5, 10))
	if !outer.Overlaps(a) || !a.Overlaps(outer) {
		t.Fatal("containing range must overlap")
	}
}

func TestStay_Contains(t *testing.T) {
	s := mustStay(t, date(2026, 5, 1), date(2026, 5, 3))
	if !s.Contains(date(2026, 5, 1)) || !s.Contains(date(2026, 5, 2)) {
		t.Fatal("stay days must be contained")
	}
	// checkout day is free for the next guest
	if s.Contains(date(2026, 5, 3)) {
		t.Fatal("checkout day must not be contained")
	}
}
