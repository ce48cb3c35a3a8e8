package domain

import (
	"strings"
	"time"
)

// Review is a short guest rating. Immutable once created.
type Review struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Country   string    `json:"country"`
	Comment   string    `json:"comment"`
	Rating    int       `json:"rating"`
	CreatedAt time.Time `json:"date"`
}

func (r Review) Validate() error {
	if strings.TrimSpace(r.Name) == "" || strings.TrimSpace(r.Country) == "" || strings.TrimSpace(r.Comment) == "" {
		return ErrValidation
	}
	if r.Rating < 1 || r.Rating > 5 {
		return ErrValidation
	}
	return nil
}
