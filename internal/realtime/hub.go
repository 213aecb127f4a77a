package realtime

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/karthikykr/MovieTicketBooking/internal/hold"
)

// Hub groups clients into per-slot rooms and broadcasts seat events to
// them. Membership management and broadcasting never block seat-state
// mutation: events are enqueued on buffered per-client channels, and a
// client that cannot keep up is dropped rather than slowing the room.
type Hub struct {
	mu       sync.RWMutex
	rooms    map[uint64]map[*Client]struct{}
	registry *hold.Registry
}

// NewHub returns a Hub that releases holds through the given registry when
// clients disconnect.
func NewHub(registry *hold.Registry) *Hub {
	return &Hub{
		rooms:    make(map[uint64]map[*Client]struct{}),
		registry: registry,
	}
}

// Join adds a client to its slot room.
func (h *Hub) Join(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	room, ok := h.rooms[c.slotID]
	if !ok {
		room = make(map[*Client]struct{})
		h.rooms[c.slotID] = room
	}
	room[c] = struct{}{}
}

// Leave removes a client from its room, releases every hold owned by the
// client's holder and broadcasts the resulting seat_released events to the
// affected rooms. Calling Leave twice is harmless.
func (h *Hub) Leave(c *Client) {
	h.mu.Lock()
	if room, ok := h.rooms[c.slotID]; ok {
		delete(room, c)
		if len(room) == 0 {
			delete(h.rooms, c.slotID)
		}
	}
	h.mu.Unlock()

	released := h.registry.ReleaseAllForHolder(c.holderID)
	for _, key := range released {
		h.Broadcast(key.SlotID, Event{Type: EventSeatReleased, SeatLabel: key.SeatLabel}, nil)
	}
	if len(released) > 0 {
		log.Printf("realtime: released %d hold(s) after disconnect of holder %d", len(released), c.holderID)
	}
}

// Broadcast delivers an event to every member of the slot room except the
// originator. Pass nil to reach everyone, including the originator.
func (h *Hub) Broadcast(slotID uint64, ev Event, except *Client) {
	payload, err := json.Marshal(ev)
	if err != nil {
		log.Printf("realtime: marshal event: %v", err)
		return
	}
	h.mu.RLock()
	room := h.rooms[slotID]
	members := make([]*Client, 0, len(room))
	for c := range room {
		if c != except {
			members = append(members, c)
		}
	}
	h.mu.RUnlock()
	for _, c := range members {
		c.enqueue(payload)
	}
}

// SeatBooked tells a room that a seat is now permanently unavailable.
// Used by the booking commit path.
func (h *Hub) SeatBooked(slotID uint64, seatLabel string) {
	h.Broadcast(slotID, Event{Type: EventSeatBooked, SeatLabel: seatLabel}, nil)
}

// SeatReleased tells a room that a seat went back to available. Implements
// the sweeper's notifier and serves the cancellation path.
func (h *Hub) SeatReleased(slotID uint64, seatLabel string) {
	h.Broadcast(slotID, Event{Type: EventSeatReleased, SeatLabel: seatLabel}, nil)
}

// RoomSize reports the current member count of a slot room.
func (h *Hub) RoomSize(slotID uint64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[slotID])
}
