package domain

import (
	"fmt"
	"sort"
)

// Rate is a per-night price pair in whole euros.
type Rate struct {
	WithoutBreakfast int `json:"withoutBreakfast"`
	WithBreakfast    int `json:"withBreakfast"`
}

// RoomType describes one bookable room of the property. Rates is keyed by
// guest count; every capacity listed in Capacities has an entry.
type RoomType struct {
	ID         string       `json:"id"`
	Name       string       `json:"name"`
	Capacities []int        `json:"capacities"`
	Rates      map[int]Rate `json:"rates"`
}

// rooms is the static catalog of the property. Four rooms, no persistence.
var rooms = []RoomType{
	{
		ID:         "deluxe-double",
		Name:       "Deluxe Double Room",
		Capacities: []int{2},
		Rates: map[int]Rate{
			2: {WithoutBreakfast: 50, WithBreakfast: 55},
		},
	},
	{
		ID:         "deluxe-double-balcony",
		Name:       "Deluxe Double Room With Balcony",
		Capacities: []int{2, 3},
		Rates: map[int]Rate{
			2: {WithoutBreakfast: 60, WithBreakfast: 65},
			3: {WithoutBreakfast: 75, WithBreakfast: 80},
		},
	},
	{
		ID:         "triple-garden",
		Name:       "Triple Room with garden view",
		Capacities: []int{2, 3},
		Rates: map[int]Rate{
			2: {WithoutBreakfast: 60, WithBreakfast: 65},
			3: {WithoutBreakfast: 75, WithBreakfast: 80},
		},
	},
	{
		ID:         "deluxe-family",
		Name:       "Deluxe Family Suite",
		Capacities: []int{3, 4},
		Rates: map[int]Rate{
			3: {WithoutBreakfast: 80, WithBreakfast: 85},
			4: {WithoutBreakfast: 95, WithBreakfast: 100},
		},
	},
}

// Rooms returns the room catalog. Callers must not mutate the result.
func Rooms() []RoomType { return rooms }

// RoomByID resolves a catalog room; ErrUnknownRoom if absent.
func RoomByID(id string) (RoomType, error) {
	for _, r := range rooms {
		if r.ID == id {
			return r, nil
		}
	}
	return RoomType{}, fmt.Errorf("%w: %s", ErrUnknownRoom, id)
}

// CanSeat reports whether the room declares any tier covering guests.
func (r RoomType) CanSeat(guests int) bool {
	for _, c := range r.Capacities {
		if c >= guests {
			return true
		}
	}
	return false
}

// tierFor picks the pricing tier for a guest count: exact match when
// declared, otherwise the largest declared tier at or below guests.
// Guests above every declared tier are rejected, not priced at the top
// tier, so overcapacity requests cannot slip through underpriced.
func (r RoomType) tierFor(guests int) (int, error) {
	tiers := append([]int(nil), r.Capacities...)
	sort.Ints(tiers)
	best := -1
	for _, c := range tiers {
		if c == guests {
			return c, nil
		}
		if c <= guests {
			best = c
		}
	}
	if guests > tiers[len(tiers)-1] {
		return 0, fmt.Errorf("%w: room %s holds at most %d guests", ErrCapacityExceeded, r.ID, tiers[len(tiers)-1])
	}
	if best < 0 {
		// guests below the smallest tier; charge the smallest tier
		return tiers[0], nil
	}
	return best, nil
}

// PriceForNight returns the nightly rate in euros for the given party.
func PriceForNight(roomID string, guests int, breakfast bool) (int, error) {
	r, err := RoomByID(roomID)
	if err != nil {
		return 0, err
	}
	tier, err := r.tierFor(guests)
	if err != nil {
		return 0, err
	}
	rate := r.Rates[tier]
	if breakfast {
		return rate.WithBreakfast, nil
	}
	return rate.WithoutBreakfast, nil
}

// TotalPrice is the stay total: nightly rate times nights.
func TotalPrice(roomID string, guests int, breakfast bool, nights int) (int, error) {
	if nights <= 0 {
		return 0, ErrInvalidNights
	}
	per, err := PriceForNight(roomID, guests, breakfast)
	if err != nil {
		return 0, err
	}
	return per * nights, nil
}
