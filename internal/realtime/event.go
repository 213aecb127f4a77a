// Package realtime fans hold/release/booked events out to every client
// viewing a showtime slot. It carries no authoritative state: holds can be
// reconstructed from the hold registry and seat status from the database,
// so losing the channel loses no correctness-relevant data.
package realtime

// Event types broadcast to room members.
const (
	EventSeatHeld     = "seat_held"
	EventSeatReleased = "seat_released"
	EventSeatBooked   = "seat_booked"
)

// Frame types used by non-broadcast messages on the socket.
const (
	frameSnapshot = "snapshot"
	frameAck      = "ack"
	frameError    = "error"
)

// Event is one seat-state notification delivered to room members. HolderID
// is set only for seat_held so clients can style their own holds
// differently from everyone else's.
type Event struct {
	Type      string `json:"type"`
	SeatLabel string `json:"seat"`
	HolderID  uint64 `json:"holder_id,omitempty"`
}

// clientMessage is an inbound request from a room member: hold or release
// one seat. The reply is an ackFrame on the same socket; the fan-out to
// other members happens separately.
type clientMessage struct {
	Action    string `json:"action"`
	SeatLabel string `json:"seat"`
}

// ackFrame is the synchronous answer to a clientMessage.
type ackFrame struct {
	Type      string `json:"type"`
	Action    string `json:"action"`
	SeatLabel string `json:"seat"`
	OK        bool   `json:"ok"`
	Code      string `json:"code,omitempty"`
}

// SeatView is one seat in the join snapshot, reconciled from the durable
// store and the hold registry.
type SeatView struct {
	SeatLabel  string `json:"seat"`
	SeatType   string `json:"seat_type"`
	Status     string `json:"status"` // available | held | booked
	HeldByMe   bool   `json:"held_by_me,omitempty"`
	PriceCents uint32 `json:"price_cents"`
}

// Snapshot is the first frame sent after joining a room. Clients render
// from it and then apply subsequent events; there is no event replay.
type Snapshot struct {
	Type   string     `json:"type"`
	SlotID uint64     `json:"slot_id"`
	Seats  []SeatView `json:"seats"`
}

// NewSnapshot builds the join snapshot frame.
func NewSnapshot(slotID uint64, seats []SeatView) Snapshot {
	return Snapshot{Type: frameSnapshot, SlotID: slotID, Seats: seats}
}
