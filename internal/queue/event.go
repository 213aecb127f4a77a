// Package queue defines broker message payloads and the background consumer
// that turns booking.confirmed events into notification log entries.
package queue

// BookingConfirmedEvent is published after a booking commit succeeds. It
// carries the full show context so downstream consumers can notify or feed
// analytics without going back to the primary database.
type BookingConfirmedEvent struct {
	BookingID   uint64   `json:"booking_id"`
	Reference   string   `json:"reference"`
	UserID      uint64   `json:"user_id"`
	SlotID      uint64   `json:"slot_id"`
	MovieTitle  string   `json:"movie_title"`
	TheaterName string   `json:"theater_name"`
	ShowDate    string   `json:"show_date"`
	StartsAt    string   `json:"starts_at"`
	Format      string   `json:"format"`
	SeatLabels  []string `json:"seats"`
	TotalCents  uint32   `json:"total_cents"`
	TaxCents    uint32   `json:"tax_cents"`
	FinalCents  uint32   `json:"final_cents"`
	ConfirmedAt string   `json:"confirmed_at"`
}
