package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/nikola1125/villa-safira/internal/domain"
)

// Mailer sends booking confirmations through a transactional mail API.
// Strictly best-effort: callers log failures and move on.
type Mailer struct {
	base string
	key  string
	from string
	hc   *http.Client
}

func New(base, key, from string) *Mailer {
	return &Mailer{
		base: strings.TrimRight(base, "/"),
		key:  key,
		from: from,
		hc:   &http.Client{Timeout: 10 * time.Second},
	}
}

type message struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Text    string `json:"text"`
}

func (m *Mailer) SendConfirmation(ctx context.Context, b domain.Booking) error {
	msg := message{
		From:    m.from,
		To:      b.CustomerEmail,
		Subject: "Your Villa Safira booking is confirmed",
		Text: fmt.Sprintf(
			"Dear %s,\n\nyour booking %s is confirmed.\n\nCheck-in: %s\nCheck-out: %s\nGuests: %d\nTotal: %d EUR\n\nSee you soon!",
			b.CustomerName, b.ID,
			b.CheckIn.Format("2006-01-02"), b.CheckOut.Format("2006-01-02"),
			b.Guests, b.TotalEuros,
		),
	}
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.base+"/messages", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", m.key)

	resp, err := m.hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("mail API status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	return nil
}
