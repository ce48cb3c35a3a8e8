package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/nikola1125/villa-safira/internal/app"
	"github.com/nikola1125/villa-safira/internal/domain"
)

// Client is the REST client the booking wizard and the review board use
// against the Villa Safira API.
type Client struct {
	base string
	hc   *http.Client
}

func New(base string) *Client {
	return &Client{
		base: strings.TrimRight(base, "/"),
		hc:   &http.Client{Timeout: 15 * time.Second},
	}
}

var ErrNotFound = errors.New("api: not found")

// problem mirrors the server's application/problem+json error shape.
type problem struct {
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail"`
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var rd io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, rd)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode >= 400 {
		var p problem
		if derr := json.NewDecoder(resp.Body).Decode(&p); derr == nil && p.Title != "" {
			return fmt.Errorf("%s: %s", p.Title, p.Detail)
		}
		return fmt.Errorf("api status %d", resp.StatusCode)
	}
	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// BookedDates returns the property-wide blocked ranges for the calendar.
func (c *Client) BookedDates(ctx context.Context) ([]domain.Stay, error) {
	var raw []struct {
		Start time.Time `json:"start"`
		End   time.Time `json:"end"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/booked-dates", nil, &raw); err != nil {
		return nil, err
	}
	out := make([]domain.Stay, 0, len(raw))
	for _, r := range raw {
		out = append(out, domain.Stay{CheckIn: domain.Day(r.Start), CheckOut: domain.Day(r.End)})
	}
	return out, nil
}

type availabilityRequest struct {
	RoomType  string `json:"roomType,omitempty"`
	CheckIn   string `json:"checkIn"`
	CheckOut  string `json:"checkOut"`
	Guests    int    `json:"guests"`
	Breakfast bool   `json:"breakfast"`
}

func stayRequest(st domain.Stay, guests int, breakfast bool) availabilityRequest {
	return availabilityRequest{
		CheckIn:   st.CheckIn.Format(time.RFC3339),
		CheckOut:  st.CheckOut.Format(time.RFC3339),
		Guests:    guests,
		Breakfast: breakfast,
	}
}

// CheckAvailability runs the multi-room query of the calendar step.
func (c *Client) CheckAvailability(ctx context.Context, st domain.Stay, guests int, breakfast bool) (app.AvailabilityResult, error) {
	var out app.AvailabilityResult
	err := c.do(ctx, http.MethodPost, "/api/check-availability", stayRequest(st, guests, breakfast), &out)
	return out, err
}

// CheckRoom runs the single-room confirmation of the selection step.
func (c *Client) CheckRoom(ctx context.Context, roomID string, st domain.Stay, guests int, breakfast bool) (app.RoomAvailability, error) {
	req := stayRequest(st, guests, breakfast)
	req.RoomType = roomID
	var out app.RoomAvailability
	err := c.do(ctx, http.MethodPost, "/api/check-availability", req, &out)
	return out, err
}

type createPaymentRequest struct {
	availabilityRequest
	CustomerInfo domain.CustomerInfo `json:"customerInfo"`
}

type createPaymentResponse struct {
	Booking    domain.Booking `json:"booking"`
	PaymentURL string         `json:"paymentUrl"`
}

// CreatePayment creates the pending booking and returns it with the
// provider redirect URL.
func (c *Client) CreatePayment(ctx context.Context, roomID string, st domain.Stay, guests int, breakfast bool, info domain.CustomerInfo) (domain.Booking, string, error) {
	req := createPaymentRequest{availabilityRequest: stayRequest(st, guests, breakfast), CustomerInfo: info}
	req.RoomType = roomID
	var out createPaymentResponse
	if err := c.do(ctx, http.MethodPost, "/api/create-payment", req, &out); err != nil {
		return domain.Booking{}, "", err
	}
	return out.Booking, out.PaymentURL, nil
}

// BookingStatus reads the booking for the payment poll.
func (c *Client) BookingStatus(ctx context.Context, id string) (domain.Booking, error) {
	var out domain.Booking
	err := c.do(ctx, http.MethodGet, "/api/booking-status/"+id, nil, &out)
	return out, err
}

// SendConfirmation asks the server to (re)send the confirmation email.
func (c *Client) SendConfirmation(ctx context.Context, bookingID string) error {
	return c.do(ctx, http.MethodPost, "/api/send-confirmation", map[string]string{"bookingId": bookingID}, nil)
}

// SubmitReview posts a new guest review.
func (c *Client) SubmitReview(ctx context.Context, r domain.Review) (domain.Review, error) {
	var out domain.Review
	err := c.do(ctx, http.MethodPost, "/api/reviews", r, &out)
	return out, err
}

// ListReviews fetches reviews, newest first.
func (c *Client) ListReviews(ctx context.Context) ([]domain.Review, error) {
	var out []domain.Review
	err := c.do(ctx, http.MethodGet, "/api/reviews", nil, &out)
	return out, err
}
