package repository

import (
	"context"
	"database/sql"
	"sort"
	"strings"
	"time"

	"github.com/karthikykr/MovieTicketBooking/internal/model"
	"github.com/karthikykr/MovieTicketBooking/internal/utils"
)

// SeatMapRepo is the durable source of truth for per-slot seat state. The
// only mutators are CommitSeats (available -> booked, creating a booking in
// the same transaction) and ReleaseSeats (the cancellation path). Every
// availability decision is made under row locks inside the transaction, not
// trusted from a possibly stale client view.
type SeatMapRepo struct {
	db *sql.DB
}

// NewSeatMapRepo returns a SeatMapRepo bound to the provided database.
func NewSeatMapRepo(db *sql.DB) *SeatMapRepo { return &SeatMapRepo{db: db} }

// DB exposes the underlying handle for callers that need to open their own
// transactions spanning other repositories.
func (r *SeatMapRepo) DB() *sql.DB { return r.db }

// GetSeats returns all seats of a slot ordered by seat label. It returns
// ErrSlotNotFound when the slot does not exist.
func (r *SeatMapRepo) GetSeats(ctx context.Context, slotID uint64) ([]model.SlotSeat, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM showtime_slots WHERE id = ?)`, slotID,
	).Scan(&exists)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrSlotNotFound
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, slot_id, seat_label, seat_type, status, price_cents, created_at, updated_at
		 FROM slot_seats WHERE slot_id = ?`, slotID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var seats []model.SlotSeat
	for rows.Next() {
		var s model.SlotSeat
		if err := rows.Scan(&s.ID, &s.SlotID, &s.SeatLabel, &s.SeatType, &s.Status,
			&s.PriceCents, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		seats = append(seats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	sort.Slice(seats, func(i, j int) bool {
		return seatLabelLess(seats[i].SeatLabel, seats[j].SeatLabel)
	})
	return seats, nil
}

// CommitRequest carries the inputs of an atomic seat commit.
type CommitRequest struct {
	SlotID        uint64
	SeatLabels    []string
	UserID        uint64
	TaxRateBps    int
	DiscountCents uint32
}

// CommitSeats atomically flips the requested seats from AVAILABLE to BOOKED
// and writes the booking plus its per-seat rows in one transaction. Either
// every requested seat transitions or none do.
//
// The requested rows are locked with SELECT ... FOR UPDATE and re-verified:
// a missing label yields ErrSeatNotFound, and any seat that is no longer
// AVAILABLE aborts the whole commit with a SeatUnavailableError naming the
// lost seats. Because availability is rechecked here, retrying an identical
// request after a transient failure can never double-book.
func (r *SeatMapRepo) CommitSeats(ctx context.Context, req CommitRequest) (*model.Booking, error) {
	if len(req.SeatLabels) == 0 {
		return nil, ErrSeatNotFound
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var exists bool
	if err := tx.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM showtime_slots WHERE id = ?)`, req.SlotID,
	).Scan(&exists); err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrSlotNotFound
	}

	// Lock the requested seat rows for the duration of the transaction.
	query := `SELECT seat_label, status, price_cents FROM slot_seats
	          WHERE slot_id = ? AND seat_label IN (` + placeholders(len(req.SeatLabels)) + `) FOR UPDATE`
	args := make([]interface{}, 0, len(req.SeatLabels)+1)
	args = append(args, req.SlotID)
	for _, l := range req.SeatLabels {
		args = append(args, l)
	}
	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	prices := make(map[string]uint32, len(req.SeatLabels))
	var unavailable []string
	for rows.Next() {
		var label, status string
		var price uint32
		if scanErr := rows.Scan(&label, &status, &price); scanErr != nil {
			rows.Close()
			return nil, scanErr
		}
		if status != model.SeatAvailable {
			unavailable = append(unavailable, label)
		}
		prices[label] = price
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	for _, l := range req.SeatLabels {
		if _, ok := prices[l]; !ok {
			return nil, ErrSeatNotFound
		}
	}
	if len(unavailable) > 0 {
		return nil, &SeatUnavailableError{SeatLabels: unavailable}
	}

	var total uint32
	for _, l := range req.SeatLabels {
		total += prices[l]
	}
	tax := uint32(uint64(total) * uint64(req.TaxRateBps) / 10000)
	discount := req.DiscountCents
	if discount > total {
		discount = total
	}
	final := total + tax - discount

	booking := &model.Booking{
		UserID:        req.UserID,
		SlotID:        req.SlotID,
		Reference:     utils.NewBookingReference(),
		Status:        model.BookingConfirmed,
		TotalCents:    total,
		TaxCents:      tax,
		DiscountCents: discount,
		FinalCents:    final,
	}
	res, err := tx.ExecContext(ctx,
		`INSERT INTO bookings (user_id, slot_id, reference, status, total_cents, tax_cents, discount_cents, final_cents)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		booking.UserID, booking.SlotID, booking.Reference, booking.Status,
		booking.TotalCents, booking.TaxCents, booking.DiscountCents, booking.FinalCents)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	booking.ID = uint64(id)
	booking.CreatedAt = time.Now().UTC()

	seatQuery := `INSERT INTO booking_seats (booking_id, slot_id, seat_label, price_cents) VALUES `
	seatArgs := make([]interface{}, 0, len(req.SeatLabels)*4)
	for i, l := range req.SeatLabels {
		if i > 0 {
			seatQuery += ","
		}
		seatQuery += "(?, ?, ?, ?)"
		seatArgs = append(seatArgs, booking.ID, req.SlotID, l, prices[l])
	}
	if _, err := tx.ExecContext(ctx, seatQuery, seatArgs...); err != nil {
		return nil, err
	}

	upd := `UPDATE slot_seats SET status = ? WHERE slot_id = ? AND status = ?
	        AND seat_label IN (` + placeholders(len(req.SeatLabels)) + `)`
	updArgs := make([]interface{}, 0, len(req.SeatLabels)+3)
	updArgs = append(updArgs, model.SeatBooked, req.SlotID, model.SeatAvailable)
	for _, l := range req.SeatLabels {
		updArgs = append(updArgs, l)
	}
	updRes, err := tx.ExecContext(ctx, upd, updArgs...)
	if err != nil {
		return nil, err
	}
	// The FOR UPDATE lock means this can only disagree if another session
	// mutated rows outside the lock; treat as losing the seats.
	if n, err := updRes.RowsAffected(); err == nil && n != int64(len(req.SeatLabels)) {
		return nil, &SeatUnavailableError{SeatLabels: req.SeatLabels}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return booking, nil
}

// ReleaseSeats flips booked seats back to AVAILABLE inside the provided
// transaction. Used by the booking cancellation path.
func (r *SeatMapRepo) ReleaseSeatsTx(ctx context.Context, tx *sql.Tx, slotID uint64, seatLabels []string) error {
	if len(seatLabels) == 0 {
		return nil
	}
	query := `UPDATE slot_seats SET status = ? WHERE slot_id = ? AND seat_label IN (` +
		placeholders(len(seatLabels)) + `)`
	args := make([]interface{}, 0, len(seatLabels)+2)
	args = append(args, model.SeatAvailable, slotID)
	for _, l := range seatLabels {
		args = append(args, l)
	}
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

// placeholders builds a "?, ?, ?" list for IN clauses.
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

// seatLabelLess orders "A2" before "A10" by comparing the row prefix
// alphabetically and the number numerically.
func seatLabelLess(a, b string) bool {
	ra, na := splitSeatLabel(a)
	rb, nb := splitSeatLabel(b)
	if ra != rb {
		return ra < rb
	}
	return na < nb
}

func splitSeatLabel(label string) (string, int) {
	i := 0
	for i < len(label) && (label[i] < '0' || label[i] > '9') {
		i++
	}
	n := 0
	for j := i; j < len(label); j++ {
		if label[j] < '0' || label[j] > '9' {
			return label, 0
		}
		n = n*10 + int(label[j]-'0')
	}
	return label[:i], n
}
