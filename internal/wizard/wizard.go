package wizard

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/nikola1125/villa-safira/internal/app"
	"github.com/nikola1125/villa-safira/internal/domain"
)

// Step is the wizard's position in the booking flow. Transitions are
// linear: calendar -> selection -> details -> payment -> confirmation,
// with error and closed as terminal side exits.
type Step string

const (
	StepCalendar     Step = "calendar"
	StepSelection    Step = "selection"
	StepDetails      Step = "details"
	StepPayment      Step = "payment"
	StepConfirmation Step = "confirmation"
	StepError        Step = "error"
	StepClosed       Step = "closed"
)

// API is the slice of the REST surface the wizard consumes.
type API interface {
	BookedDates(ctx context.Context) ([]domain.Stay, error)
	CheckAvailability(ctx context.Context, st domain.Stay, guests int, breakfast bool) (app.AvailabilityResult, error)
	CheckRoom(ctx context.Context, roomID string, st domain.Stay, guests int, breakfast bool) (app.RoomAvailability, error)
	CreatePayment(ctx context.Context, roomID string, st domain.Stay, guests int, breakfast bool, info domain.CustomerInfo) (domain.Booking, string, error)
	BookingStatus(ctx context.Context, id string) (domain.Booking, error)
	SendConfirmation(ctx context.Context, bookingID string) error
}

// Options tune the payment poll; zero values take the production defaults
// (10s interval, 30 attempts, a 5 minute budget).
type Options struct {
	PollInterval time.Duration
	PollAttempts int
	// OpenURL opens the payment redirect in a new context (browser tab).
	OpenURL func(url string)
	Now     func() time.Time
}

// Wizard drives a guest through the booking flow. All waiting happens at
// network boundaries; the payment poll is the only background activity and
// is cancelled by Close.
type Wizard struct {
	api  API
	opts Options

	mu        sync.Mutex
	step      Step
	booked    []domain.Stay
	checkIn   time.Time
	checkOut  time.Time
	guests    int
	breakfast bool
	// available is the availability answer for the selected stay; rooms is
	// the render list derived from it for the current guests/breakfast.
	available  []domain.PricedRoom
	rooms      []domain.PricedRoom
	roomID     string
	booking    domain.Booking
	paymentURL string
	banner     string // recoverable error message, cleared on next action

	pollCancel context.CancelFunc
	pollDone   chan struct{}
}

func New(api API, opts Options) *Wizard {
	if opts.PollInterval <= 0 {
		opts.PollInterval = 10 * time.Second
	}
	if opts.PollAttempts <= 0 {
		opts.PollAttempts = 30
	}
	if opts.OpenURL == nil {
		opts.OpenURL = func(string) {}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Wizard{
		api:       api,
		opts:      opts,
		step:      StepCalendar,
		guests:    2,
		breakfast: true,
	}
}

// Start loads the booked ranges that gray out calendar days. Runs once
// when the wizard opens.
func (w *Wizard) Start(ctx context.Context) error {
	booked, err := w.api.BookedDates(ctx)
	if err != nil {
		w.setBanner("Failed to load booking calendar. Please refresh the page.")
		return err
	}
	w.mu.Lock()
	w.booked = booked
	w.mu.Unlock()
	return nil
}

func (w *Wizard) Step() Step {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.step
}

// Banner returns the current recoverable error message, if any.
func (w *Wizard) Banner() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.banner
}

func (w *Wizard) Booking() domain.Booking {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.booking
}

func (w *Wizard) PaymentURL() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.paymentURL
}

// Rooms returns the candidate rooms of the selection step.
func (w *Wizard) Rooms() []domain.PricedRoom {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]domain.PricedRoom(nil), w.rooms...)
}

// Selection returns the chosen range; zero times when incomplete.
func (w *Wizard) Selection() (checkIn, checkOut time.Time) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.checkIn, w.checkOut
}

func (w *Wizard) setBanner(msg string) {
	w.mu.Lock()
	w.banner = msg
	w.mu.Unlock()
}

func (w *Wizard) isBooked(day time.Time) bool {
	for _, st := range w.booked {
		if st.Contains(day) {
			return true
		}
	}
	return false
}

// rangeFree reports whether no booked interval intersects [start, end).
func (w *Wizard) rangeFree(start, end time.Time) bool {
	cand := domain.Stay{CheckIn: start, CheckOut: end}
	for _, st := range w.booked {
		if cand.Overlaps(st) {
			return false
		}
	}
	return true
}

// SelectDate implements the calendar click cycle: first click sets
// check-in, a later click sets check-out and queries availability, a third
// click restarts with a new check-in. A range crossing a booked interval
// resets the selection with a recoverable banner instead of silently
// accepting a partially booked stay.
func (w *Wizard) SelectDate(ctx context.Context, date time.Time) error {
	day := domain.Day(date)

	w.mu.Lock()
	if w.step != StepCalendar {
		w.mu.Unlock()
		return errors.New("date selection only available on the calendar step")
	}
	w.banner = ""
	if w.isBooked(day) || day.Before(domain.Day(w.opts.Now())) {
		w.mu.Unlock()
		return nil // disabled day, click ignored
	}

	switch {
	case w.checkIn.IsZero() || !w.checkOut.IsZero() || !day.After(w.checkIn):
		// fresh selection (also covers clicking before the current check-in)
		w.checkIn = day
		w.checkOut = time.Time{}
		w.mu.Unlock()
		return nil

	default:
		if !w.rangeFree(w.checkIn, day) {
			w.checkIn = day
			w.checkOut = time.Time{}
			w.banner = "Selected dates include booked periods. Please choose different dates."
			w.mu.Unlock()
			return nil
		}
		w.checkOut = day
		start, end := w.checkIn, w.checkOut
		guests, breakfast := w.guests, w.breakfast
		w.mu.Unlock()

		st := domain.Stay{CheckIn: start, CheckOut: end}
		res, err := w.api.CheckAvailability(ctx, st, guests, breakfast)
		if err != nil {
			w.setBanner("Failed to check availability. Please try again.")
			return err
		}
		w.mu.Lock()
		defer w.mu.Unlock()
		if !res.Available || len(res.Rooms) == 0 {
			w.banner = "No rooms available for selected dates"
			return nil
		}
		w.available = res.Rooms
		w.rooms = res.Rooms
		w.step = StepSelection
		return nil
	}
}

// SetGuests re-prices the candidate rooms locally from the rate table.
// Rooms that cannot seat the new party size drop out of the list.
func (w *Wizard) SetGuests(guests int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if guests < 1 {
		return
	}
	w.guests = guests
	w.reprice()
}

// SetBreakfast toggles breakfast and re-prices locally.
func (w *Wizard) SetBreakfast(breakfast bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.breakfast = breakfast
	w.reprice()
}

// reprice rebuilds the render list from the availability answer, so rooms
// hidden for one party size come back when the guest count drops again.
func (w *Wizard) reprice() {
	if w.step != StepSelection || w.checkIn.IsZero() || w.checkOut.IsZero() {
		return
	}
	nights := domain.Stay{CheckIn: w.checkIn, CheckOut: w.checkOut}.Nights()
	var priced []domain.PricedRoom
	for _, room := range w.available {
		total, err := domain.TotalPrice(room.RoomID, w.guests, w.breakfast, nights)
		if err != nil {
			continue // capacity does not fit this party size
		}
		priced = append(priced, domain.PricedRoom{RoomID: room.RoomID, Name: room.Name, TotalEuros: total})
	}
	w.rooms = priced
}

// ChooseRoom confirms the specific room is still free and advances to the
// details step.
func (w *Wizard) ChooseRoom(ctx context.Context, roomID string) error {
	w.mu.Lock()
	if w.step != StepSelection {
		w.mu.Unlock()
		return errors.New("room choice only available on the selection step")
	}
	w.banner = ""
	st := domain.Stay{CheckIn: w.checkIn, CheckOut: w.checkOut}
	guests, breakfast := w.guests, w.breakfast
	w.mu.Unlock()

	res, err := w.api.CheckRoom(ctx, roomID, st, guests, breakfast)
	if err != nil {
		w.setBanner("Error checking availability. Please try again.")
		return err
	}
	if !res.Available {
		w.setBanner("This room is no longer available for the selected dates.")
		return nil
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.roomID = roomID
	w.step = StepDetails
	return nil
}

// SubmitDetails validates the guest form, creates the pending booking and
// payment intent, opens the redirect URL, and starts the status poll.
func (w *Wizard) SubmitDetails(ctx context.Context, info domain.CustomerInfo) error {
	if err := info.Validate(); err != nil {
		w.setBanner("Please fill in all customer details")
		return err
	}

	w.mu.Lock()
	if w.step != StepDetails {
		w.mu.Unlock()
		return errors.New("details only accepted on the details step")
	}
	w.banner = ""
	st := domain.Stay{CheckIn: w.checkIn, CheckOut: w.checkOut}
	roomID, guests, breakfast := w.roomID, w.guests, w.breakfast
	w.mu.Unlock()

	booking, url, err := w.api.CreatePayment(ctx, roomID, st, guests, breakfast, info)
	if err != nil {
		w.setBanner("Error creating payment. Please try again.")
		return err
	}

	w.mu.Lock()
	w.booking = booking
	w.paymentURL = url
	w.step = StepPayment

	pollCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	w.pollCancel = cancel
	done := make(chan struct{})
	w.pollDone = done
	w.mu.Unlock()

	w.opts.OpenURL(url)
	go w.poll(pollCtx, booking.ID, done)
	return nil
}

// poll is the self-rescheduling payment status check: one request per
// interval, bounded by the attempt budget. Exhaustion leaves the booking
// pending server-side; the guest is told to contact support.
func (w *Wizard) poll(ctx context.Context, bookingID string, done chan struct{}) {
	defer close(done)

	t := time.NewTimer(w.opts.PollInterval)
	defer t.Stop()

	// one interval between submit and the first check, so the full budget
	// is attempts x interval
	for attempt := 1; attempt <= w.opts.PollAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}

		b, err := w.api.BookingStatus(ctx, bookingID)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Warn().Str("booking", bookingID).Err(err).Msg("payment status poll failed")
		} else if b.PaymentStatus == domain.PaymentPaid {
			// Close may have landed while the request was in flight; a
			// dismissed wizard stays closed
			w.mu.Lock()
			live := w.step == StepPayment
			if live {
				w.booking = b
				w.step = StepConfirmation
			}
			w.mu.Unlock()
			if live {
				if cerr := w.api.SendConfirmation(ctx, bookingID); cerr != nil {
					log.Warn().Str("booking", bookingID).Err(cerr).Msg("confirmation request failed")
				}
			}
			return
		}

		t.Reset(w.opts.PollInterval)
	}

	w.mu.Lock()
	if w.step == StepPayment {
		w.step = StepError
		w.banner = "Payment processing timed out. Please contact support."
	}
	w.mu.Unlock()
}

// WaitPayment blocks until the poll finishes or ctx expires. Test and CLI
// convenience; the poll itself needs no waiter.
func (w *Wizard) WaitPayment(ctx context.Context) error {
	w.mu.Lock()
	done := w.pollDone
	w.mu.Unlock()
	if done == nil {
		return errors.New("no payment in progress")
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}

// Close discards wizard state and cancels the payment poll so no timer
// keeps acting on a dismissed wizard.
func (w *Wizard) Close() {
	w.mu.Lock()
	cancel := w.pollCancel
	w.pollCancel = nil
	w.step = StepClosed
	w.booked = nil
	w.available = nil
	w.rooms = nil
	w.checkIn, w.checkOut = time.Time{}, time.Time{}
	w.roomID = ""
	w.booking = domain.Booking{}
	w.paymentURL = ""
	w.banner = ""
	w.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}
