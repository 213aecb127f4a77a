package handler

import (
	"testing"
	"time"

	"github.com/karthikykr/MovieTicketBooking/internal/model"
)

func TestBuildSeatViewsOverlay(t *testing.T) {
	seats := []model.SlotSeat{
		{SeatLabel: "A1", SeatType: model.SeatStandard, Status: model.SeatAvailable, PriceCents: 1200},
		{SeatLabel: "A2", SeatType: model.SeatPremium, Status: model.SeatAvailable, PriceCents: 1800},
		{SeatLabel: "A3", SeatType: model.SeatStandard, Status: model.SeatBooked, PriceCents: 1200},
	}
	holds := map[string]uint64{
		"A2": 7,
		"A3": 9, // stale hold on a booked seat; booked must win
	}

	views := BuildSeatViews(seats, holds, 7)
	if len(views) != 3 {
		t.Fatalf("got %d views", len(views))
	}
	byLabel := map[string]string{}
	for _, v := range views {
		byLabel[v.SeatLabel] = v.Status
	}
	if byLabel["A1"] != "available" || byLabel["A2"] != "held" || byLabel["A3"] != "booked" {
		t.Fatalf("statuses %v", byLabel)
	}
	for _, v := range views {
		if v.SeatLabel == "A2" && !v.HeldByMe {
			t.Fatal("A2 held by viewer must be flagged held_by_me")
		}
		if v.SeatLabel == "A3" && v.HeldByMe {
			t.Fatal("booked seat must not report held_by_me")
		}
	}

	// Anonymous viewer never sees held_by_me.
	for _, v := range BuildSeatViews(seats, holds, 0) {
		if v.HeldByMe {
			t.Fatalf("anonymous view flagged held_by_me on %s", v.SeatLabel)
		}
	}
}

func TestRefundForWindow(t *testing.T) {
	far := time.Now().Add(48 * time.Hour).UTC().Format(time.RFC3339)
	if got := refundFor(2000, far); got != 2000 {
		t.Fatalf("early cancel refund = %d, want 2000", got)
	}
	near := time.Now().Add(2 * time.Hour).UTC().Format(time.RFC3339)
	if got := refundFor(2000, near); got != 1000 {
		t.Fatalf("late cancel refund = %d, want 1000", got)
	}
	if got := refundFor(2000, "not-a-time"); got != 1000 {
		t.Fatalf("unparsable start refund = %d, want 1000", got)
	}
}
