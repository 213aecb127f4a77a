package model

import "time"

// Booking status values.
const (
	BookingPending   = "PENDING"
	BookingConfirmed = "CONFIRMED"
	BookingCancelled = "CANCELLED"
	BookingCompleted = "COMPLETED"
	BookingRefunded  = "REFUNDED"
)

// Booking is the durable record produced by a successful seat commit. The
// seats of a confirmed booking are disjoint from those of every other
// confirmed booking for the same slot; the commit transaction enforces this
// by rechecking seat availability under row locks.
//
// Fields:
//
//	ID            – primary key identifier.
//	UserID        – user who booked.
//	SlotID        – showtime slot booked.
//	Reference     – unique human-readable booking code.
//	Status        – PENDING, CONFIRMED, CANCELLED, COMPLETED or REFUNDED.
//	TotalCents    – sum of per-seat prices.
//	TaxCents      – tax portion.
//	DiscountCents – discount applied.
//	FinalCents    – amount charged (total + tax - discount).
//	RefundCents   – amount refunded on cancellation.
//	CancelledAt   – when the booking was cancelled (nullable).
//	CreatedAt     – creation timestamp.
type Booking struct {
	ID            uint64     // bookings.id
	UserID        uint64     // bookings.user_id
	SlotID        uint64     // bookings.slot_id
	Reference     string     // bookings.reference
	Status        string     // bookings.status
	TotalCents    uint32     // bookings.total_cents
	TaxCents      uint32     // bookings.tax_cents
	DiscountCents uint32     // bookings.discount_cents
	FinalCents    uint32     // bookings.final_cents
	RefundCents   uint32     // bookings.refund_cents
	CancelledAt   *time.Time // bookings.cancelled_at (nullable)
	CreatedAt     time.Time  // bookings.created_at
}

// BookingSeat links a booking to one seat of the slot at the price paid.
type BookingSeat struct {
	ID         uint64    // booking_seats.id
	BookingID  uint64    // booking_seats.booking_id
	SlotID     uint64    // booking_seats.slot_id
	SeatLabel  string    // booking_seats.seat_label
	PriceCents uint32    // booking_seats.price_cents
	CreatedAt  time.Time // booking_seats.created_at
}
