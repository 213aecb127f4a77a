package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/karthikykr/MovieTicketBooking/internal/model"
)

// BookingRepo reads booking records and runs the cancellation path.
// Creation happens exclusively inside SeatMapRepo.CommitSeats so the seat
// flips and the booking row share one transaction.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// DB exposes the underlying handle for transaction composition.
func (r *BookingRepo) DB() *sql.DB { return r.db }

// BookingDetail is a booking joined with its show context and seats,
// shaped for API responses.
type BookingDetail struct {
	ID            uint64   `json:"id"`
	Reference     string   `json:"reference"`
	Status        string   `json:"status"`
	SlotID        uint64   `json:"slot_id"`
	MovieTitle    string   `json:"movie_title"`
	TheaterName   string   `json:"theater_name"`
	ShowDate      string   `json:"show_date"`
	StartsAt      string   `json:"starts_at"`
	Format        string   `json:"format"`
	TotalCents    uint32   `json:"total_cents"`
	TaxCents      uint32   `json:"tax_cents"`
	DiscountCents uint32   `json:"discount_cents"`
	FinalCents    uint32   `json:"final_cents"`
	RefundCents   uint32   `json:"refund_cents,omitempty"`
	SeatLabels    []string `json:"seats"`
}

const bookingSelect = `
	SELECT b.id, b.reference, b.status, b.slot_id, m.title, t.name,
	       DATE_FORMAT(ms.show_date, '%Y-%m-%d'), DATE_FORMAT(s.starts_at, '%Y-%m-%dT%H:%i:%sZ'),
	       s.format, b.total_cents, b.tax_cents, b.discount_cents, b.final_cents, b.refund_cents
	FROM bookings b
	JOIN showtime_slots s ON s.id = b.slot_id
	JOIN movie_showtimes ms ON ms.id = s.movie_showtime_id
	JOIN movies m ON m.id = ms.movie_id
	JOIN theaters t ON t.id = ms.theater_id`

// ListByUser returns all bookings of a user with seats, newest first.
func (r *BookingRepo) ListByUser(ctx context.Context, userID uint64) ([]BookingDetail, error) {
	rows, err := r.db.QueryContext(ctx, bookingSelect+` WHERE b.user_id = ? ORDER BY b.created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	details := []BookingDetail{}
	for rows.Next() {
		var d BookingDetail
		if err := scanBookingDetail(rows, &d); err != nil {
			return nil, err
		}
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range details {
		seats, err := r.seatLabels(ctx, details[i].ID)
		if err != nil {
			return nil, err
		}
		details[i].SeatLabels = seats
	}
	return details, nil
}

// GetByIDForUser returns one booking owned by the user. Ownership is
// enforced in the query, so a foreign booking reads as ErrBookingNotFound.
func (r *BookingRepo) GetByIDForUser(ctx context.Context, bookingID, userID uint64) (*BookingDetail, error) {
	row := r.db.QueryRowContext(ctx, bookingSelect+` WHERE b.id = ? AND b.user_id = ?`, bookingID, userID)
	var d BookingDetail
	if err := scanBookingDetail(row, &d); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	seats, err := r.seatLabels(ctx, d.ID)
	if err != nil {
		return nil, err
	}
	d.SeatLabels = seats
	return &d, nil
}

// Cancel cancels a confirmed booking owned by the user, releasing its seats
// back to AVAILABLE within one transaction. It returns ErrBookingNotFound
// for missing or foreign bookings and ErrConflict when the show has already
// started or the booking is not in a cancellable status. The released seat
// labels are returned so the caller can broadcast seat_released events.
func (r *BookingRepo) Cancel(ctx context.Context, seatMap *SeatMapRepo, bookingID, userID uint64, refundCents uint32) ([]string, uint64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, 0, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var (
		slotID   uint64
		status   string
		startsAt time.Time
	)
	err = tx.QueryRowContext(ctx,
		`SELECT b.slot_id, b.status, s.starts_at
		 FROM bookings b JOIN showtime_slots s ON s.id = b.slot_id
		 WHERE b.id = ? AND b.user_id = ? FOR UPDATE`,
		bookingID, userID).Scan(&slotID, &status, &startsAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, 0, ErrBookingNotFound
		}
		return nil, 0, err
	}
	if status != model.BookingConfirmed && status != model.BookingPending {
		return nil, 0, ErrConflict
	}
	if !startsAt.After(time.Now().UTC()) {
		return nil, 0, ErrConflict
	}

	seatRows, err := tx.QueryContext(ctx,
		`SELECT seat_label FROM booking_seats WHERE booking_id = ?`, bookingID)
	if err != nil {
		return nil, 0, err
	}
	var seats []string
	for seatRows.Next() {
		var label string
		if scanErr := seatRows.Scan(&label); scanErr != nil {
			seatRows.Close()
			return nil, 0, scanErr
		}
		seats = append(seats, label)
	}
	if err := seatRows.Close(); err != nil {
		return nil, 0, err
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE bookings SET status = ?, cancelled_at = UTC_TIMESTAMP(), refund_cents = ? WHERE id = ?`,
		model.BookingCancelled, refundCents, bookingID); err != nil {
		return nil, 0, err
	}
	if err := seatMap.ReleaseSeatsTx(ctx, tx, slotID, seats); err != nil {
		return nil, 0, err
	}
	if err := tx.Commit(); err != nil {
		return nil, 0, err
	}
	committed = true
	return seats, slotID, nil
}

func (r *BookingRepo) seatLabels(ctx context.Context, bookingID uint64) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT seat_label FROM booking_seats WHERE booking_id = ? ORDER BY seat_label`, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var seats []string
	for rows.Next() {
		var label string
		if err := rows.Scan(&label); err != nil {
			return nil, err
		}
		seats = append(seats, label)
	}
	return seats, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBookingDetail(row rowScanner, d *BookingDetail) error {
	return row.Scan(&d.ID, &d.Reference, &d.Status, &d.SlotID, &d.MovieTitle, &d.TheaterName,
		&d.ShowDate, &d.StartsAt, &d.Format, &d.TotalCents, &d.TaxCents,
		&d.DiscountCents, &d.FinalCents, &d.RefundCents)
}
