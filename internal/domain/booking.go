package domain

import (
	"strings"
	"time"
)

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
	PaymentExpired PaymentStatus = "expired"
)

// Booking is one guest reservation. Created pending, flipped to paid
// exactly once by the payment callback/poll, or expired by the sweeper
// when payment never arrives. Both paid and expired are terminal.
type Booking struct {
	ID            string        `json:"id"`
	RoomID        string        `json:"roomType"`
	CheckIn       time.Time     `json:"checkIn"`
	CheckOut      time.Time     `json:"checkOut"`
	Guests        int           `json:"guests"`
	Breakfast     bool          `json:"breakfast"`
	TotalEuros    int           `json:"total"`
	CustomerName  string        `json:"customerName"`
	CustomerEmail string        `json:"customerEmail"`
	CustomerPhone string        `json:"customerPhone"`
	PaymentStatus PaymentStatus `json:"paymentStatus"`
	CreatedAt     time.Time     `json:"createdAt"`
}

func (b Booking) Stay() Stay {
	return Stay{CheckIn: Day(b.CheckIn), CheckOut: Day(b.CheckOut)}
}

// CustomerInfo is the detail form of the wizard.
type CustomerInfo struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

func (c CustomerInfo) Validate() error {
	if strings.TrimSpace(c.Name) == "" || strings.TrimSpace(c.Email) == "" || strings.TrimSpace(c.Phone) == "" {
		return ErrValidation
	}
	return nil
}

// PricedRoom is one availability result: a free room with its stay total.
type PricedRoom struct {
	RoomID     string `json:"id"`
	Name       string `json:"name"`
	TotalEuros int    `json:"total"`
}
