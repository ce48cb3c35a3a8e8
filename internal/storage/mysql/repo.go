package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/nikola1125/villa-safira/internal/domain"
)

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func day(t time.Time) string { return domain.Day(t).Format("2006-01-02") }

// CreateBooking inserts a pending booking after an authoritative overlap
// re-check. The room row is locked first so two concurrent creates for the
// same room serialize; the loser sees the winner's row and gets
// ErrRoomUnavailable.
func (r *Repo) CreateBooking(ctx context.Context, b domain.Booking) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var roomID string
	if err := tx.QueryRowContext(ctx, lockRoomSQL, b.RoomID).Scan(&roomID); err != nil {
		if err == sql.ErrNoRows {
			return fmt.Errorf("%w: %s", domain.ErrUnknownRoom, b.RoomID)
		}
		return err
	}

	st := b.Stay()
	var n int
	if err := tx.QueryRowContext(ctx, countOverlapSQL, b.RoomID, day(st.CheckOut), day(st.CheckIn)).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return domain.ErrRoomUnavailable
	}

	if _, err := tx.ExecContext(ctx, insertBookingSQL,
		b.ID,
		b.RoomID,
		day(st.CheckIn),
		day(st.CheckOut),
		b.Guests,
		b.Breakfast,
		b.TotalEuros,
		b.CustomerName,
		b.CustomerEmail,
		b.CustomerPhone,
		string(b.PaymentStatus),
		b.CreatedAt.UTC(),
	); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *Repo) MarkPaid(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, markPaidSQL, id)
	if err != nil {
		return false, err
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return true, nil
	}
	// no transition: distinguish missing / already paid / expired
	var status string
	if err := r.db.QueryRowContext(ctx, getStatusSQL, id).Scan(&status); err != nil {
		if err == sql.ErrNoRows {
			return false, fmt.Errorf("%w: %s", domain.ErrUnknownBooking, id)
		}
		return false, err
	}
	if domain.PaymentStatus(status) == domain.PaymentExpired {
		return false, fmt.Errorf("%w: %s", domain.ErrBookingExpired, id)
	}
	return false, nil
}

func (r *Repo) Expire(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, expireBookingSQL, id)
	if err != nil {
		return false, err
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return true, nil
	}
	var status string
	if err := r.db.QueryRowContext(ctx, getStatusSQL, id).Scan(&status); err != nil {
		if err == sql.ErrNoRows {
			return false, fmt.Errorf("%w: %s", domain.ErrUnknownBooking, id)
		}
		return false, err
	}
	return false, nil
}

func (r *Repo) GetBooking(ctx context.Context, id string) (domain.Booking, error) {
	row := r.db.QueryRowContext(ctx, getBookingSQL, id)

	var b domain.Booking
	var status string
	if err := row.Scan(
		&b.ID,
		&b.RoomID,
		&b.CheckIn,
		&b.CheckOut,
		&b.Guests,
		&b.Breakfast,
		&b.TotalEuros,
		&b.CustomerName,
		&b.CustomerEmail,
		&b.CustomerPhone,
		&status,
		&b.CreatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return domain.Booking{}, fmt.Errorf("%w: %s", domain.ErrUnknownBooking, id)
		}
		return domain.Booking{}, err
	}
	b.PaymentStatus = domain.PaymentStatus(status)
	return b, nil
}

func (r *Repo) ListBookedIntervals(ctx context.Context) ([]domain.BookedInterval, error) {
	rows, err := r.db.QueryContext(ctx, listBookedIntervalsSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.BookedInterval
	for rows.Next() {
		var iv domain.BookedInterval
		if err := rows.Scan(&iv.RoomID, &iv.CheckIn, &iv.CheckOut); err != nil {
			return nil, err
		}
		iv.CheckIn = domain.Day(iv.CheckIn)
		iv.CheckOut = domain.Day(iv.CheckOut)
		out = append(out, iv)
	}
	return out, rows.Err()
}

func (r *Repo) ListStalePending(ctx context.Context, cutoff time.Time) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, listStalePendingSQL, cutoff.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *Repo) InsertReview(ctx context.Context, rv domain.Review) (domain.Review, error) {
	res, err := r.db.ExecContext(ctx, insertReviewSQL, rv.Name, rv.Country, rv.Comment, rv.Rating)
	if err != nil {
		return domain.Review{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.Review{}, err
	}
	// read back for the server-assigned timestamp
	return r.getReview(ctx, id)
}

func (r *Repo) getReview(ctx context.Context, id int64) (domain.Review, error) {
	var rv domain.Review
	err := r.db.QueryRowContext(ctx, getReviewSQL, id).Scan(
		&rv.ID, &rv.Name, &rv.Country, &rv.Comment, &rv.Rating, &rv.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return domain.Review{}, domain.ErrNotFound
	}
	return rv, err
}

func (r *Repo) ListReviews(ctx context.Context, limit int) ([]domain.Review, error) {
	rows, err := r.db.QueryContext(ctx, listReviewsSQL, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Review
	for rows.Next() {
		var rv domain.Review
		if err := rows.Scan(&rv.ID, &rv.Name, &rv.Country, &rv.Comment, &rv.Rating, &rv.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, rv)
	}
	return out, rows.Err()
}
