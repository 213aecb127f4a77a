package realtime

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/karthikykr/MovieTicketBooking/internal/hold"
)

// drain reads every frame currently buffered for the client.
func drain(t *testing.T, c *Client) []Event {
	t.Helper()
	var events []Event
	for {
		select {
		case payload := <-c.send:
			var ev Event
			if err := json.Unmarshal(payload, &ev); err != nil {
				t.Fatalf("unmarshal frame %s: %v", payload, err)
			}
			events = append(events, ev)
		default:
			return events
		}
	}
}

func newTestClient(h *Hub, slotID, holderID uint64, connID string) *Client {
	c := NewClient(h, nil, slotID, holderID, connID)
	h.Join(c)
	return c
}

func TestBroadcastSkipsOriginator(t *testing.T) {
	registry := hold.NewRegistry(5 * time.Minute)
	h := NewHub(registry)
	a := newTestClient(h, 1, 10, "conn-a")
	b := newTestClient(h, 1, 20, "conn-b")
	other := newTestClient(h, 2, 30, "conn-c")

	h.Broadcast(1, Event{Type: EventSeatHeld, SeatLabel: "A1", HolderID: 10}, a)

	if got := drain(t, a); len(got) != 0 {
		t.Fatalf("originator must not receive its own event, got %v", got)
	}
	got := drain(t, b)
	if len(got) != 1 || got[0].Type != EventSeatHeld || got[0].SeatLabel != "A1" || got[0].HolderID != 10 {
		t.Fatalf("room member got %v", got)
	}
	if got := drain(t, other); len(got) != 0 {
		t.Fatalf("other room must not receive the event, got %v", got)
	}
}

func TestHandleHoldAcksAndBroadcasts(t *testing.T) {
	registry := hold.NewRegistry(5 * time.Minute)
	h := NewHub(registry)
	a := newTestClient(h, 1, 10, "conn-a")
	b := newTestClient(h, 1, 20, "conn-b")

	a.handle(clientMessage{Action: "hold", SeatLabel: "A1"})

	// Requester gets a synchronous ack.
	select {
	case payload := <-a.send:
		var ack ackFrame
		if err := json.Unmarshal(payload, &ack); err != nil {
			t.Fatalf("unmarshal ack: %v", err)
		}
		if !ack.OK || ack.SeatLabel != "A1" {
			t.Fatalf("unexpected ack %+v", ack)
		}
	default:
		t.Fatal("no ack queued for requester")
	}
	// Room member sees the hold.
	got := drain(t, b)
	if len(got) != 1 || got[0].Type != EventSeatHeld {
		t.Fatalf("expected seat_held for other member, got %v", got)
	}
	// Registry now owns the hold.
	if holds := registry.List(1); holds["A1"] != 10 {
		t.Fatalf("registry state %v", holds)
	}

	// Competing hold from the other member is rejected with a conflict ack.
	b.handle(clientMessage{Action: "hold", SeatLabel: "A1"})
	payload := <-b.send
	var ack ackFrame
	if err := json.Unmarshal(payload, &ack); err != nil {
		t.Fatalf("unmarshal ack: %v", err)
	}
	if ack.OK || ack.Code != "hold_conflict" {
		t.Fatalf("expected hold_conflict ack, got %+v", ack)
	}
}

func TestLeaveReleasesHoldsAndNotifiesRooms(t *testing.T) {
	registry := hold.NewRegistry(5 * time.Minute)
	h := NewHub(registry)
	a := newTestClient(h, 1, 10, "conn-a")
	b := newTestClient(h, 1, 20, "conn-b")
	c := newTestClient(h, 2, 30, "conn-c")

	// Holder 10 holds seats in two slots (second slot held via registry
	// directly, as if from an earlier session).
	if err := registry.Acquire(1, "A1", 10); err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if err := registry.Acquire(2, "B2", 10); err != nil {
		t.Fatalf("acquire: %v", err)
	}

	h.Leave(a)

	if holds := registry.List(1); len(holds) != 0 {
		t.Fatalf("slot 1 holds remain: %v", holds)
	}
	if holds := registry.List(2); len(holds) != 0 {
		t.Fatalf("slot 2 holds remain: %v", holds)
	}
	gotB := drain(t, b)
	if len(gotB) != 1 || gotB[0].Type != EventSeatReleased || gotB[0].SeatLabel != "A1" {
		t.Fatalf("slot 1 room got %v", gotB)
	}
	gotC := drain(t, c)
	if len(gotC) != 1 || gotC[0].Type != EventSeatReleased || gotC[0].SeatLabel != "B2" {
		t.Fatalf("slot 2 room got %v", gotC)
	}
	if h.RoomSize(1) != 1 {
		t.Fatalf("room 1 size after leave = %d", h.RoomSize(1))
	}
}

func TestSlowClientIsDropped(t *testing.T) {
	registry := hold.NewRegistry(5 * time.Minute)
	h := NewHub(registry)
	slow := newTestClient(h, 1, 10, "conn-slow")

	// Fill the outbound buffer past capacity; the overflowing event must
	// drop the client from the room instead of blocking the hub.
	for i := 0; i <= sendBufferSize; i++ {
		h.Broadcast(1, Event{Type: EventSeatReleased, SeatLabel: "A1"}, nil)
	}
	if h.RoomSize(1) != 0 {
		t.Fatalf("slow client still in room, size=%d", h.RoomSize(1))
	}
	// Safe to drop twice.
	slow.close()
}
