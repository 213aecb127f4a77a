package repository

import (
	"context"
	"database/sql"
	"time"
)

// ShowtimeRepo reads the movie_showtimes aggregates and their slots. It is
// the lookup service the booking core uses to validate slot existence and
// the browse API uses to render showtime listings.
type ShowtimeRepo struct {
	db *sql.DB
}

// NewShowtimeRepo returns a ShowtimeRepo bound to the given database.
func NewShowtimeRepo(db *sql.DB) *ShowtimeRepo { return &ShowtimeRepo{db: db} }

// SlotRecord is one screening slot joined with its aggregate context.
type SlotRecord struct {
	ID             uint64    `json:"id"`
	MovieID        uint64    `json:"movie_id"`
	MovieTitle     string    `json:"movie_title"`
	TheaterID      uint64    `json:"theater_id"`
	TheaterName    string    `json:"theater_name"`
	ShowDate       string    `json:"show_date"`
	StartsAt       time.Time `json:"starts_at"`
	Format         string    `json:"format"`
	BasePriceCents uint32    `json:"base_price_cents"`
}

const slotSelect = `
	SELECT s.id, ms.movie_id, m.title, ms.theater_id, t.name,
	       DATE_FORMAT(ms.show_date, '%Y-%m-%d'), s.starts_at, s.format, s.base_price_cents
	FROM showtime_slots s
	JOIN movie_showtimes ms ON ms.id = s.movie_showtime_id
	JOIN movies m ON m.id = ms.movie_id
	JOIN theaters t ON t.id = ms.theater_id`

// GetSlot retrieves one slot with its movie and theater context. Returns
// ErrSlotNotFound when absent.
func (r *ShowtimeRepo) GetSlot(ctx context.Context, slotID uint64) (*SlotRecord, error) {
	var s SlotRecord
	err := r.db.QueryRowContext(ctx, slotSelect+` WHERE s.id = ?`, slotID).Scan(
		&s.ID, &s.MovieID, &s.MovieTitle, &s.TheaterID, &s.TheaterName,
		&s.ShowDate, &s.StartsAt, &s.Format, &s.BasePriceCents)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrSlotNotFound
		}
		return nil, err
	}
	return &s, nil
}

// ListSlotsByMovie returns the slots for a movie, optionally restricted to
// a single show date (YYYY-MM-DD).
func (r *ShowtimeRepo) ListSlotsByMovie(ctx context.Context, movieID uint64, date string) ([]SlotRecord, error) {
	query := slotSelect + ` WHERE ms.movie_id = ?`
	args := []interface{}{movieID}
	if date != "" {
		query += ` AND ms.show_date = ?`
		args = append(args, date)
	}
	query += ` ORDER BY ms.show_date, s.starts_at`
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	slots := []SlotRecord{}
	for rows.Next() {
		var s SlotRecord
		if err := rows.Scan(&s.ID, &s.MovieID, &s.MovieTitle, &s.TheaterID, &s.TheaterName,
			&s.ShowDate, &s.StartsAt, &s.Format, &s.BasePriceCents); err != nil {
			return nil, err
		}
		slots = append(slots, s)
	}
	return slots, rows.Err()
}
