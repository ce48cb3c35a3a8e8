package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/nikola1125/villa-safira/internal/adapters/observability"
	"github.com/nikola1125/villa-safira/internal/app"
	"github.com/nikola1125/villa-safira/internal/domain"
)

type Handlers struct {
	Bookings *app.BookingService
	Reviews  *app.ReviewService
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })

	s.mux.Route("/api", func(r chi.Router) {
		r.Post("/reviews", h.createReview)
		r.Get("/reviews", h.listReviews)
		r.Get("/booked-dates", h.bookedDates)
		r.Post("/check-availability", h.checkAvailability)
		r.Post("/create-payment", h.createPayment)
		r.Get("/booking-status/{id}", h.bookingStatus)
		r.Post("/send-confirmation", h.sendConfirmation)
	})
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

// writeCacheable answers with an ETag and short-circuits If-None-Match.
func writeCacheable(w http.ResponseWriter, r *http.Request, v any) {
	etag, body := calcETagAndBody(v)
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write response body")
	}
}

// writeError maps domain sentinels onto the HTTP taxonomy: 400 validation,
// 404 unknown resource, 409 booking conflict, 410 expired, 502 upstream.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidStay),
		errors.Is(err, domain.ErrInvalidNights),
		errors.Is(err, domain.ErrCapacityExceeded):
		writeProblem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, domain.ErrUnknownRoom),
		errors.Is(err, domain.ErrUnknownBooking),
		errors.Is(err, domain.ErrNotFound):
		writeProblem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, domain.ErrRoomUnavailable):
		writeProblem(w, http.StatusConflict, "Room No Longer Available", err.Error())
	case errors.Is(err, domain.ErrBookingExpired):
		writeProblem(w, http.StatusGone, "Booking Expired", err.Error())
	default:
		log.Error().Err(err).Msg("request failed")
		writeProblem(w, http.StatusBadGateway, "Upstream Unavailable", "please try again later")
	}
}

// ---- reviews ----

func (h *Handlers) createReview(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Name    string `json:"name"`
		Country string `json:"country"`
		Comment string `json:"comment"`
		Rating  int    `json:"rating"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Body", "malformed JSON")
		return
	}
	created, err := h.Reviews.AddReview(r.Context(), domain.Review{
		Name: in.Name, Country: in.Country, Comment: in.Comment, Rating: in.Rating,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handlers) listReviews(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if ls := r.URL.Query().Get("limit"); ls != "" {
		l, err := strconv.Atoi(ls)
		if err != nil || l <= 0 || l > 200 {
			writeProblem(w, http.StatusBadRequest, "Invalid limit", "limit must be an integer between 1 and 200")
			return
		}
		limit = l
	}
	out, err := h.Reviews.ListReviews(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	if out == nil {
		out = []domain.Review{}
	}
	writeCacheable(w, r, out)
}

// ---- booking flow ----

type bookedDate struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// bookedDates feeds the public calendar. Stays only, never guest identity.
func (h *Handlers) bookedDates(w http.ResponseWriter, r *http.Request) {
	ivs, err := h.Bookings.BookedIntervals(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]bookedDate, 0, len(ivs))
	for _, iv := range ivs {
		out = append(out, bookedDate{
			Start: iv.CheckIn.Format(time.RFC3339),
			End:   iv.CheckOut.Format(time.RFC3339),
		})
	}
	writeCacheable(w, r, out)
}

type availabilityRequest struct {
	RoomType  string `json:"roomType,omitempty"`
	CheckIn   string `json:"checkIn"`
	CheckOut  string `json:"checkOut"`
	Guests    int    `json:"guests"`
	Breakfast bool   `json:"breakfast"`
}

func (a availabilityRequest) stay() (domain.Stay, error) {
	in, err := time.Parse(time.RFC3339, a.CheckIn)
	if err != nil {
		return domain.Stay{}, domain.ErrInvalidStay
	}
	out, err := time.Parse(time.RFC3339, a.CheckOut)
	if err != nil {
		return domain.Stay{}, domain.ErrInvalidStay
	}
	return domain.NewStay(in, out)
}

// checkAvailability answers both wizard shapes: the multi-room query from
// the calendar step and the single-room confirmation from the selection step.
func (h *Handlers) checkAvailability(w http.ResponseWriter, r *http.Request) {
	var in availabilityRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Body", "malformed JSON")
		return
	}
	st, err := in.stay()
	if err != nil {
		writeError(w, err)
		return
	}
	if in.Guests <= 0 {
		writeProblem(w, http.StatusBadRequest, "Validation Failed", "guests must be positive")
		return
	}

	if in.RoomType != "" {
		out, err := h.Bookings.CheckRoom(r.Context(), in.RoomType, st, in.Guests, in.Breakfast)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
		return
	}

	out, err := h.Bookings.CheckAvailability(r.Context(), st, in.Guests, in.Breakfast)
	if err != nil {
		writeError(w, err)
		return
	}
	if out.Rooms == nil {
		out.Rooms = []domain.PricedRoom{}
	}
	writeJSON(w, http.StatusOK, out)
}

type createPaymentRequest struct {
	availabilityRequest
	CustomerInfo domain.CustomerInfo `json:"customerInfo"`
}

type createPaymentResponse struct {
	Booking    domain.Booking `json:"booking"`
	PaymentURL string         `json:"paymentUrl"`
}

func (h *Handlers) createPayment(w http.ResponseWriter, r *http.Request) {
	var in createPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Body", "malformed JSON")
		return
	}
	st, err := in.stay()
	if err != nil {
		writeError(w, err)
		return
	}
	b, url, err := h.Bookings.CreatePendingBooking(r.Context(), in.RoomType, st, in.Guests, in.Breakfast, in.CustomerInfo)
	if err != nil {
		writeError(w, err)
		return
	}
	observability.ObserveBooking("created")
	writeJSON(w, http.StatusOK, createPaymentResponse{Booking: b, PaymentURL: url})
}

func (h *Handlers) bookingStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	b, err := h.Bookings.GetBooking(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if b.PaymentStatus == domain.PaymentPaid {
		observability.ObserveBooking("paid_seen")
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *Handlers) sendConfirmation(w http.ResponseWriter, r *http.Request) {
	var in struct {
		BookingID string `json:"bookingId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.BookingID == "" {
		writeProblem(w, http.StatusBadRequest, "Invalid Body", "bookingId is required")
		return
	}
	// fire and forget: the guest already paid, a lost email must not 5xx
	if err := h.Bookings.SendConfirmation(r.Context(), in.BookingID); err != nil {
		log.Warn().Str("booking", in.BookingID).Err(err).Msg("send confirmation failed")
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
