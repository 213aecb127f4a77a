package model

import "time"

// Seat status values persisted in slot_seats. Holds are deliberately not a
// persisted status; they live only in the in-memory hold registry, so the
// durable store never reports a seat as transiently held.
const (
	SeatAvailable = "AVAILABLE"
	SeatBooked    = "BOOKED"
)

// Seat type values, carried through to per-seat pricing.
const (
	SeatStandard   = "STANDARD"
	SeatPremium    = "PREMIUM"
	SeatWheelchair = "WHEELCHAIR"
)

// SlotSeat is one seat of a showtime slot: the durable source of truth for
// booked/available. SeatLabel is the row+number identifier (e.g. "A1"),
// unique within the slot.
//
// Fields:
//
//	ID         – primary key identifier.
//	SlotID     – owning showtime slot.
//	SeatLabel  – row+number identifier, unique per slot.
//	SeatType   – STANDARD, PREMIUM or WHEELCHAIR.
//	Status     – AVAILABLE or BOOKED.
//	PriceCents – price in cents for this seat.
//	CreatedAt  – creation timestamp.
//	UpdatedAt  – last update timestamp.
type SlotSeat struct {
	ID         uint64    // slot_seats.id
	SlotID     uint64    // slot_seats.slot_id
	SeatLabel  string    // slot_seats.seat_label
	SeatType   string    // slot_seats.seat_type
	Status     string    // slot_seats.status
	PriceCents uint32    // slot_seats.price_cents
	CreatedAt  time.Time // slot_seats.created_at
	UpdatedAt  time.Time // slot_seats.updated_at
}
