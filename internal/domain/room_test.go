package domain_test

import (
	"errors"
	"testing"

	"github.com/nikola1125/villa-safira/internal/domain"
)

func TestCatalog_BreakfastNeverCheaper(t *testing.T) {
	for _, room := range domain.Rooms() {
		for _, cap := range room.Capacities {
			rate, ok := room.Rates[cap]
			if !ok {
				t.Fatalf("room %s: capacity %d has no rate", room.ID, cap)
			}
			if rate.WithBreakfast < rate.WithoutBreakfast {
				t.Fatalf("room %s tier %d: breakfast rate %d below base %d",
					room.ID, cap, rate.WithBreakfast, rate.WithoutBreakfast)
			}
		}
	}
}

func TestPriceForNight_TierSelection(t *testing.T) {
	tests := []struct {
		name      string
		roomID    string
		guests    int
		breakfast bool
		want      int
		wantErr   error
	}{
		{"exact tier", "deluxe-double", 2, false, 50, nil},
		{"exact tier with breakfast", "deluxe-double", 2, true, 55, nil},
		{"upper tier", "deluxe-double-balcony", 3, true, 80, nil},
		{"below smallest tier charges smallest", "deluxe-family", 2, false, 80, nil},
		{"over capacity rejected", "deluxe-double", 3, false, 0, domain.ErrCapacityExceeded},
		{"over capacity family", "deluxe-family", 5, true, 0, domain.ErrCapacityExceeded},
		{"unknown room", "penthouse", 2, false, 0, domain.ErrUnknownRoom},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := domain.PriceForNight(tc.roomID, tc.guests, tc.breakfast)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("want %v, got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected err: %v", err)
			}
			if got != tc.want {
				t.Fatalf("want %d, got %d", tc.want, got)
			}
		})
	}
}

func TestTotalPrice(t *testing.T) {
	// deluxe-double, 3 nights with breakfast: 55 x 3 = 165
	got, err := domain.TotalPrice("deluxe-double", 2, true, 3)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got != 165 {
		t.Fatalf("want 165, got %d", got)
	}

	for _, nights := range []int{0, -1} {
		if _, err := domain.TotalPrice("deluxe-double", 2, true, nights); !errors.Is(err, domain.ErrInvalidNights) {
			t.Fatalf("nights=%d: want ErrInvalidNights, got %v", nights, err)
		}
	}
}
